package domain

import "errors"

// Resolution errors.
var (
	// ErrInvalidID is returned when a method id has no <type>.<member> separator.
	ErrInvalidID = errors.New("invalid method id")
	// ErrTypeNotFound is returned when a qualified type name is not registered.
	ErrTypeNotFound = errors.New("type not found")
	// ErrParameterType is returned when a parameter type cannot be resolved.
	ErrParameterType = errors.New("unresolved parameter type")
	// ErrMethodNotFound is returned when no registered method matches the exact signature.
	ErrMethodNotFound = errors.New("method not found")
	// ErrMissingMarker is returned when a resolved method lacks the required capability marker.
	ErrMissingMarker = errors.New("missing capability marker")
	// ErrDuplicateSignature is returned when a dispatch key already holds the same signature.
	ErrDuplicateSignature = errors.New("duplicate signature")
	// ErrDuplicateSymbol is returned when the same symbol is registered twice.
	ErrDuplicateSymbol = errors.New("symbol already registered")
)

// Dispatch errors.
var (
	// ErrActionNotFound is returned when a dispatch key has no contexts.
	ErrActionNotFound = errors.New("action not found")
	// ErrBinding is returned when a parameter value is missing or cannot be converted.
	ErrBinding = errors.New("parameter binding failed")
	// ErrConfidence is returned when the score is outside a candidate's confidence band.
	ErrConfidence = errors.New("confidence out of band")
	// ErrPartialIneligible is returned when a partial response reaches a candidate that does not validate partials.
	ErrPartialIneligible = errors.New("candidate does not validate partial responses")
	// ErrInvocation wraps a handler error or a recovered panic.
	ErrInvocation = errors.New("invocation fault")
	// ErrNoIntent is returned when a response carries no intent.
	ErrNoIntent = errors.New("response has no intent")
	// ErrStreamOverride is returned when a streamed request also overrides the intent or confidence.
	ErrStreamOverride = errors.New("streamed requests cannot override intent or confidence")
)
