package manifest

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidManifest is returned when a document cannot be decoded or violates the schema.
	ErrInvalidManifest = errors.New("invalid manifest")
	// ErrUnsupportedVersion is returned when the manifest version is outside SupportedVersions.
	ErrUnsupportedVersion = errors.New("unsupported manifest version")
)

// ResolutionError describes one manifest entry that failed to resolve.
type ResolutionError struct {
	Section string // "entity", "action" or "error handler"
	Name    string // Dispatch key or entity name
	ID      string
	Err     error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s %q (%s): %v", e.Section, e.Name, e.ID, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// AggregateError collects every resolution failure of a pass.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d resolution errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

func (e *AggregateError) Unwrap() []error { return e.Errors }

// ResolutionErrors returns the individual failures if err is an AggregateError.
// Otherwise returns nil.
func ResolutionErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
