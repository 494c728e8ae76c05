package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/conduit/pkg/domain"
)

// LogHooks returns lifecycle hooks writing one record per dispatch event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDispatch: func(ctx context.Context, e *domain.DispatchEvent) {
			logger.DebugContext(ctx, "dispatch",
				"request_id", e.RequestID,
				"intent", e.Intent,
				"score", e.Score,
				"partial", e.Partial,
			)
		},
		OnInvoke: func(ctx context.Context, e *domain.InvokeEvent) {
			attrs := []any{
				"request_id", e.RequestID,
				"handler", e.Handler,
				"duration", e.Duration,
			}
			if e.Err != nil {
				logger.WarnContext(ctx, "handler_return", append(attrs, "err", e.Err)...)
				return
			}
			logger.DebugContext(ctx, "handler_return", attrs...)
		},
		OnOutcome: func(ctx context.Context, o *domain.Outcome) {
			logger.InfoContext(ctx, "outcome",
				"request_id", o.RequestID,
				"intent", o.Intent,
				"status", o.Status.String(),
				"handler", o.Handler,
				"validated_early", o.ValidatedEarly,
			)
		},
	}
}
