package ports

import (
	"context"

	"github.com/aretw0/conduit/pkg/domain"
)

// Dispatcher selects and invokes the handler for a recognized intent.
// Implementations never return errors; failures are described by the Outcome.
type Dispatcher interface {
	Dispatch(ctx context.Context, intent string, score float64, response ResponseNode, partial bool) domain.Outcome
}
