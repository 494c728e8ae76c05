package symbols

import "errors"

// ErrInvalidHandler is returned when a registered Func is not a function or returns
// something other than (), (T), (error) or (T, error).
var ErrInvalidHandler = errors.New("symbols: invalid handler function")
