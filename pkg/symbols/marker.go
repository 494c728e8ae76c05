package symbols

// Marker tags a registered method with the capability it provides to the dispatcher.
type Marker interface {
	capability() string
}

// Default confidence band of an action marker.
const (
	DefaultMinConfidence = 0.9
	DefaultMaxConfidence = 1.0
)

// ActionMarker tags a method as a dispatchable action.
type ActionMarker struct {
	MinConfidence   float64
	MaxConfidence   float64
	ValidatePartial bool
}

func (ActionMarker) capability() string { return "action" }

// ActionOption configures an ActionMarker.
type ActionOption func(*ActionMarker)

// WithConfidence sets the inclusive confidence band.
func WithConfidence(min, max float64) ActionOption {
	return func(m *ActionMarker) {
		m.MinConfidence = min
		m.MaxConfidence = max
	}
}

// WithPartial makes the action eligible for partial-response validation.
func WithPartial() ActionOption {
	return func(m *ActionMarker) {
		m.ValidatePartial = true
	}
}

// Action returns an action marker with the default band [0.9, 1.0].
func Action(opts ...ActionOption) ActionMarker {
	m := ActionMarker{
		MinConfidence: DefaultMinConfidence,
		MaxConfidence: DefaultMaxConfidence,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// ErrorHandlerMarker tags a method as the fallback for a dispatch key whose
// candidates all failed.
type ErrorHandlerMarker struct{}

func (ErrorHandlerMarker) capability() string { return "error_handler" }

// ErrorHandler returns an error-handler marker.
func ErrorHandler() ErrorHandlerMarker {
	return ErrorHandlerMarker{}
}
