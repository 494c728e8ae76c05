package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunValidationTrackerContract runs a suite of tests to verify that a ValidationTracker
// implementation adheres to the defined interface contract.
func RunValidationTrackerContract(t *testing.T, tracker ValidationTracker) {
	ctx := context.Background()
	requestID := "contract-test-request-" + time.Now().Format("20060102150405")

	t.Run("Unknown request is not validated", func(t *testing.T) {
		ok, err := tracker.IsValidated(ctx, "unknown-"+requestID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Mark and check", func(t *testing.T) {
		require.NoError(t, tracker.MarkValidated(ctx, requestID))

		ok, err := tracker.IsValidated(ctx, requestID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Mark is idempotent", func(t *testing.T) {
		require.NoError(t, tracker.MarkValidated(ctx, requestID))
		require.NoError(t, tracker.MarkValidated(ctx, requestID))

		ok, err := tracker.IsValidated(ctx, requestID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, tracker.MarkValidated(ctx, requestID))
		require.NoError(t, tracker.Clear(ctx, requestID))

		ok, err := tracker.IsValidated(ctx, requestID)
		require.NoError(t, err)
		assert.False(t, ok, "IsValidated after Clear should be false")
	})

	t.Run("Requests are independent", func(t *testing.T) {
		id1 := requestID + "-1"
		id2 := requestID + "-2"
		defer func() {
			_ = tracker.Clear(ctx, id1)
			_ = tracker.Clear(ctx, id2)
		}()

		require.NoError(t, tracker.MarkValidated(ctx, id1))

		ok, err := tracker.IsValidated(ctx, id2)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
