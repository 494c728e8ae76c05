package conduit

import (
	"context"
	"fmt"

	"github.com/aretw0/conduit/pkg/domain"
	"github.com/aretw0/conduit/pkg/ports"
	"github.com/aretw0/conduit/pkg/response"
)

// Request is one dispatch request as received by a front end (HTTP, MCP, CLI).
type Request struct {
	// Intent and Confidence override the top intent of Response and its confidence.
	Intent     string
	Confidence *float64
	Partial    bool
	// Stream names a streamed recognition. Partial then selects HandlePartial,
	// otherwise the response is the final one of the stream.
	Stream   string
	Response ports.ResponseNode
}

// Validate rejects overrides on streamed requests: every response of a stream is
// dispatched with its own top intent.
func (r Request) Validate() error {
	if r.Stream != "" && (r.Intent != "" || r.Confidence != nil) {
		return fmt.Errorf("%w: stream %q", domain.ErrStreamOverride, r.Stream)
	}
	return nil
}

// Handle routes req. Streamed requests go through early validation, requests with an
// override through Dispatch, everything else through DispatchResponse.
// An override without a confidence uses the response's confidence, else 1.
// An override without an intent uses the response's top intent.
func (c *Conduit) Handle(ctx context.Context, req Request) (domain.Outcome, error) {
	if err := req.Validate(); err != nil {
		return domain.Outcome{}, err
	}
	resp := req.Response
	if resp == nil {
		resp = response.Empty()
	}

	switch {
	case req.Stream != "" && req.Partial:
		return c.HandlePartial(ctx, req.Stream, resp)
	case req.Stream != "":
		return c.HandleFinal(ctx, req.Stream, resp)
	case req.Intent == "" && req.Confidence == nil:
		return c.DispatchResponse(ctx, resp, req.Partial), nil
	}

	intent := req.Intent
	if intent == "" {
		top, _, ok := topIntent(resp)
		if !ok {
			return c.noIntent(ctx, resp, req.Partial), nil
		}
		intent = top
	}
	score := 1.0
	if req.Confidence != nil {
		score = *req.Confidence
	} else if v, ok := response.IntentConfidence(resp); ok {
		score = v
	}
	return c.Dispatch(ctx, intent, score, resp, req.Partial), nil
}
