package ports

import "context"

// ValidationTracker remembers requests that were already handled from a partial response,
// so the final response of the same request is not dispatched a second time.
type ValidationTracker interface {
	// MarkValidated records that requestID was handled early.
	MarkValidated(ctx context.Context, requestID string) error

	// IsValidated reports whether requestID was handled early.
	IsValidated(ctx context.Context, requestID string) (bool, error)

	// Clear forgets requestID.
	Clear(ctx context.Context, requestID string) error
}
