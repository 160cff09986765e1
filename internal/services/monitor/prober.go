package monitor

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/NordCoder/uptimed/internal/domain/check"
)

// Prober issues one request against a check's target and reports exactly
// one outcome.
type Prober interface {
	Probe(ctx context.Context, c *check.Check) check.Outcome
}

type HTTPProber struct {
	Client    *http.Client
	UserAgent string
}

var _ Prober = HTTPProber{}

// Probe races the response against the check's timeout. Whichever finishes
// first is the outcome; the loser is discarded through the buffered slot.
func (p HTTPProber) Probe(ctx context.Context, c *check.Check) check.Outcome {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(c.Method), c.Target(), nil)
	if err != nil {
		return check.ErrorOutcome(err)
	}
	if p.UserAgent != "" {
		req.Header.Set("User-Agent", p.UserAgent)
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	done := make(chan check.Outcome, 1)
	go func() {
		resp, err := client.Do(req)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				done <- check.TimeoutOutcome()
				return
			}
			done <- check.ErrorOutcome(err)
			return
		}
		_ = resp.Body.Close()
		done <- check.ResponseOutcome(resp.StatusCode)
	}()

	select {
	case out := <-done:
		return out
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return check.TimeoutOutcome()
		}
		return check.ErrorOutcome(ctx.Err())
	}
}
