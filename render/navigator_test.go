package render

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func testRungs(errs ...error) ([]rung, *[]string) {
	var ran []string
	rungs := make([]rung, len(errs))
	for i, err := range errs {
		name := fmt.Sprintf("rung-%d", i)
		rungs[i] = rung{name: name, attempt: func() error {
			ran = append(ran, name)
			return err
		}}
	}
	return rungs, &ran
}

func TestClimb_FirstStrategyWins(t *testing.T) {
	rungs, ran := testRungs(nil, errors.New("never reached"))
	settled := false

	res, err := climb(rungs, func() { settled = true })
	if err != nil {
		t.Fatalf("climb: %v", err)
	}
	if res.Strategy != "rung-0" || res.TimedOut {
		t.Errorf("result = %+v", res)
	}
	if !settled {
		t.Error("settle must run after the winning strategy")
	}
	if len(*ran) != 1 {
		t.Errorf("later strategies must not run after a win: %v", *ran)
	}
}

func TestClimb_TimeoutFallsThrough(t *testing.T) {
	rungs, ran := testRungs(context.DeadlineExceeded, nil)

	res, err := climb(rungs, func() {})
	if err != nil {
		t.Fatalf("climb: %v", err)
	}
	if res.Strategy != "rung-1" {
		t.Errorf("Strategy = %q, want the strategy after the timeout", res.Strategy)
	}
	if len(*ran) != 2 {
		t.Errorf("ran = %v, want both strategies attempted", *ran)
	}
}

func TestClimb_WrappedTimeoutIsSoft(t *testing.T) {
	// A slow main-document response surfaces as a deadline error wrapped by
	// the transport layer; it must fall through like any other timeout.
	wrapped := fmt.Errorf("navigate to target: %w", context.DeadlineExceeded)
	rungs, ran := testRungs(wrapped, nil)

	res, err := climb(rungs, func() {})
	if err != nil {
		t.Fatalf("wrapped deadline must not abort the ladder: %v", err)
	}
	if res.Strategy != "rung-1" || len(*ran) != 2 {
		t.Errorf("result = %+v, ran = %v", res, *ran)
	}
}

func TestClimb_HardErrorAborts(t *testing.T) {
	hard := errors.New("net::ERR_NAME_NOT_RESOLVED")
	rungs, ran := testRungs(context.DeadlineExceeded, hard, nil)
	settled := false

	res, err := climb(rungs, func() { settled = true })
	if res != nil {
		t.Fatalf("result must be nil on hard failure, got %+v", res)
	}
	var navErr *NavError
	if !errors.As(err, &navErr) {
		t.Fatalf("error = %T, want *NavError", err)
	}
	if navErr.TimedOut {
		t.Error("hard failure must not be labeled a timeout")
	}
	if navErr.Strategy != "rung-1" || !errors.Is(err, hard) {
		t.Errorf("error = %+v", navErr)
	}
	if len(*ran) != 2 {
		t.Errorf("ran = %v, want abort after the hard failure", *ran)
	}
	if settled {
		t.Error("settle must not run on failure")
	}
}

func TestClimb_AllTimeouts(t *testing.T) {
	rungs, _ := testRungs(
		context.DeadlineExceeded,
		fmt.Errorf("wait load: %w", context.DeadlineExceeded),
		context.DeadlineExceeded,
	)

	res, err := climb(rungs, func() {})
	if res != nil {
		t.Fatalf("result must be nil when every strategy times out, got %+v", res)
	}
	var navErr *NavError
	if !errors.As(err, &navErr) {
		t.Fatalf("error = %T, want *NavError", err)
	}
	if !navErr.TimedOut {
		t.Error("exhausting the ladder with timeouts must be labeled a timeout")
	}
	if navErr.Strategy != "rung-2" {
		t.Errorf("Strategy = %q, want the last strategy", navErr.Strategy)
	}
}
