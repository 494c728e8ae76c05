package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Status is the terminal state of a dispatch.
type Status int

const (
	// StatusUnhandled means no action and no error handler completed.
	StatusUnhandled Status = iota
	// StatusSuccess means an action candidate was invoked successfully.
	StatusSuccess
	// StatusErrorHandled means every candidate failed and an error handler ran.
	StatusErrorHandled
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusErrorHandled:
		return "error_handled"
	default:
		return "unhandled"
	}
}

// MarshalText renders the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name.
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "success":
		*s = StatusSuccess
	case "error_handled":
		*s = StatusErrorHandled
	case "unhandled":
		*s = StatusUnhandled
	default:
		return fmt.Errorf("unknown status %q", text)
	}
	return nil
}

// FailureKind classifies why a candidate was not completed.
type FailureKind string

const (
	FailureConfidence FailureKind = "confidence"
	FailurePartial    FailureKind = "partial"
	FailureBinding    FailureKind = "binding"
	FailureInvocation FailureKind = "invocation"
	FailureHandler    FailureKind = "error_handler"
	FailureNoIntent   FailureKind = "no_intent"
)

// Failure records one candidate that was skipped or faulted.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Handler string      `json:"handler"`
	Err     error       `json:"-"`
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %s: %v", f.Handler, f.Kind, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// Outcome is returned by every dispatch. Nothing is thrown across the dispatch boundary;
// failures are described here instead.
type Outcome struct {
	RequestID string    `json:"request_id"`
	Intent    string    `json:"intent"`
	Score     float64   `json:"score"`
	Partial   bool      `json:"partial,omitempty"`
	Status    Status    `json:"status"`
	Handler   string    `json:"handler,omitempty"`
	Result    any       `json:"result,omitempty"`
	Failures  []Failure `json:"-"`
	// ValidatedEarly is set when a final response was skipped because a partial
	// response of the same request already completed.
	ValidatedEarly bool `json:"validated_early,omitempty"`
}

// Handled reports whether an action or an error handler ran.
func (o Outcome) Handled() bool {
	return o.Status != StatusUnhandled
}

// Reason describes why no action completed. It is empty on success.
func (o Outcome) Reason() string {
	if len(o.Failures) == 0 {
		if o.Status == StatusUnhandled {
			return "no suitable handler"
		}
		return ""
	}
	parts := make([]string, 0, len(o.Failures))
	for _, f := range o.Failures {
		parts = append(parts, f.Error())
	}
	return strings.Join(parts, "; ")
}

// Err joins every recorded failure, or returns nil when there were none.
func (o Outcome) Err() error {
	if len(o.Failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(o.Failures))
	for _, f := range o.Failures {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}

// FailureReport is the encodable form of a Failure.
type FailureReport struct {
	Kind    FailureKind `json:"kind"`
	Handler string      `json:"handler,omitempty"`
	Error   string      `json:"error"`
}

// Report is the encodable form of an Outcome, with failures rendered as text.
type Report struct {
	Outcome
	Reason   string          `json:"reason,omitempty"`
	Failures []FailureReport `json:"failures,omitempty"`
}

// Report converts the outcome for encoding.
func (o Outcome) Report() Report {
	r := Report{Outcome: o}
	if o.Status != StatusSuccess {
		r.Reason = o.Reason()
	}
	for _, f := range o.Failures {
		msg := ""
		if f.Err != nil {
			msg = f.Err.Error()
		}
		r.Failures = append(r.Failures, FailureReport{Kind: f.Kind, Handler: f.Handler, Error: msg})
	}
	return r
}
