package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/conduit"
	"github.com/aretw0/conduit/pkg/domain"
	"github.com/aretw0/conduit/pkg/response"
	"golang.org/x/sync/errgroup"
)

// maxLine bounds one JSONL record.
const maxLine = 4 << 20

// Dispatcher is the dispatch surface used by replay.
type Dispatcher interface {
	Handle(ctx context.Context, req conduit.Request) (domain.Outcome, error)
}

// Record is one line of a replay file. A line that is not wrapped in a record is
// taken as the response itself.
type Record struct {
	Line       int             `json:"-"`
	Stream     string          `json:"stream,omitempty"`
	Partial    bool            `json:"partial,omitempty"`
	Intent     string          `json:"intent,omitempty"`
	Confidence *float64        `json:"confidence,omitempty"`
	Response   json.RawMessage `json:"response,omitempty"`
}

// Result is the outcome of one record.
type Result struct {
	Line int `json:"line"`
	domain.Report
	Error string `json:"error,omitempty"`
}

// ReadRecords parses a JSONL replay file. Blank lines are skipped.
func ReadRecords(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLine)

	var records []Record
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec.Response) == 0 && rec.Intent == "" {
			rec = Record{Response: append(json.RawMessage(nil), raw...)}
		}
		rec.Line = line
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Replay dispatches records concurrently with at most limit goroutines.
// Records of the same stream run in file order on one goroutine, so a partial
// response is always handled before the final one. Results keep the input order.
func Replay(ctx context.Context, d Dispatcher, records []Record, limit int) ([]Result, error) {
	results := make([]Result, len(records))

	var (
		order   []string
		streams = make(map[string][]int)
	)
	for i, rec := range records {
		key := rec.Stream
		if key == "" {
			key = fmt.Sprintf("\x00%d", i)
		}
		if _, ok := streams[key]; !ok {
			order = append(order, key)
		}
		streams[key] = append(streams[key], i)
	}

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, key := range order {
		indexes := streams[key]
		g.Go(func() error {
			for _, i := range indexes {
				if err := ctx.Err(); err != nil {
					return err
				}
				results[i] = replayOne(ctx, d, records[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func replayOne(ctx context.Context, d Dispatcher, rec Record) Result {
	res := Result{Line: rec.Line}

	resp := response.Empty()
	if len(rec.Response) > 0 {
		var err error
		if resp, err = response.ParseBytes(rec.Response); err != nil {
			res.Error = err.Error()
			return res
		}
	}

	out, err := d.Handle(ctx, conduit.Request{
		Intent:     rec.Intent,
		Confidence: rec.Confidence,
		Partial:    rec.Partial,
		Stream:     rec.Stream,
		Response:   resp,
	})
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Report = out.Report()
	return res
}

// Summarize counts results by status; failed records count as "error".
func Summarize(results []Result) map[string]int {
	counts := make(map[string]int)
	for _, r := range results {
		if r.Error != "" {
			counts["error"]++
			continue
		}
		counts[r.Status.String()]++
		if r.ValidatedEarly {
			counts["validated_early"]++
		}
	}
	return counts
}
