package render

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
)

// NavResult reports how one page-load attempt completed.
type NavResult struct {
	// Strategy is the label of the completion strategy that succeeded.
	Strategy string

	// Elapsed is the total time spent across all attempted strategies.
	Elapsed time.Duration

	// TimedOut reports whether the attempt exhausted the whole budget.
	// Always false on success.
	TimedOut bool
}

// NavError is the failure of a whole Navigate call.
type NavError struct {
	Strategy string
	Elapsed  time.Duration
	TimedOut bool
	Err      error
}

func (e *NavError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("navigation timed out after %s (last strategy %q)", e.Elapsed.Round(time.Millisecond), e.Strategy)
	}
	return fmt.Sprintf("navigation failed at strategy %q: %v", e.Strategy, e.Err)
}

func (e *NavError) Unwrap() error { return e.Err }

// strategy is one completion strategy in the fallback ladder.
type strategy struct {
	name string
	wait func(p *rod.Page) error
}

// strategies is the fixed priority order: cheapest completion signal first,
// network idle last. Each runs under the full navigation budget.
var strategies = []strategy{
	{"domcontentloaded", func(p *rod.Page) error { return p.WaitDOMStable(300*time.Millisecond, 0.1) }},
	{"load", func(p *rod.Page) error { return p.WaitLoad() }},
	{"networkidle", func(p *rod.Page) error { return p.WaitIdle(2 * time.Second) }},
}

// rung is one ladder step: a strategy label plus the full attempt, the
// navigation and its completion wait under one shared budget.
type rung struct {
	name    string
	attempt func() error
}

// Navigate drives one page-load attempt through the strategy ladder.
//
// A timeout anywhere in a strategy attempt is soft: a slow main-document
// response and a slow completion wait both fall through to the next strategy,
// keeping the last timeout error. Any non-timeout failure (DNS, crash,
// protocol) is hard and aborts the remaining strategies immediately. After
// the first strategy that completes, a short wait for a body element papers
// over pages that fire load events before attaching their document; its own
// timeout is ignored.
func Navigate(page *rod.Page, url string, budget time.Duration) (*NavResult, error) {
	rungs := make([]rung, len(strategies))
	for i, s := range strategies {
		rungs[i] = rung{
			name: s.name,
			attempt: func() error {
				p := page.Timeout(budget)
				defer p.CancelTimeout()
				if err := p.Navigate(url); err != nil {
					return err
				}
				return s.wait(p)
			},
		}
	}
	settle := func() {
		p := page.Timeout(2 * time.Second)
		defer p.CancelTimeout()
		if _, err := p.Element("body"); err != nil {
			// structural marker missing; proceed with whatever rendered
		}
	}
	return climb(rungs, settle)
}

// climb runs the rungs in order under the soft-timeout contract: a timeout
// is recorded and the next rung tried, any other failure aborts, and the
// first rung to complete wins. settle runs best-effort after a win.
func climb(rungs []rung, settle func()) (*NavResult, error) {
	start := time.Now()
	var lastTimeout *NavError

	for _, r := range rungs {
		err := r.attempt()
		if err == nil {
			settle()
			return &NavResult{Strategy: r.name, Elapsed: time.Since(start)}, nil
		}
		if isTimeout(err) {
			lastTimeout = &NavError{Strategy: r.name, TimedOut: true, Err: err}
			continue
		}
		return nil, &NavError{Strategy: r.name, Elapsed: time.Since(start), Err: err}
	}

	lastTimeout.Elapsed = time.Since(start)
	return nil, lastTimeout
}

// isTimeout reports whether a strategy failure is a deadline expiry rather
// than a hard navigation error.
func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
