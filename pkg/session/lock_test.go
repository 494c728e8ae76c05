package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/conduit/pkg/adapters/memory"
	"github.com/aretw0/conduit/pkg/domain"
	"github.com/aretw0/conduit/pkg/ports"
)

type nopDispatcher struct{}

func (nopDispatcher) Dispatch(_ context.Context, intent string, score float64, _ ports.ResponseNode, partial bool) domain.Outcome {
	return domain.Outcome{Intent: intent, Score: score, Partial: partial, Status: domain.StatusSuccess}
}

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(nopDispatcher{}, memory.NewTracker())
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		id := fmt.Sprintf("request-%d", i)
		_, _ = mgr.HandlePartial(ctx, id, "turn_on", 1, nil)
		_, _ = mgr.HandleFinal(ctx, id, "turn_on", 1, nil)
	}

	lockCount := len(mgr.locks)
	t.Logf("Requests handled: %d, Locks remaining: %d", count, lockCount)

	if lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after handling", lockCount)
	}
}
