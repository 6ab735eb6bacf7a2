package render

import (
	"errors"
	"testing"
)

// seqRand replays a fixed sequence of Intn draws and a fixed Float64.
type seqRand struct {
	draws []int
	f     float64
	i     int
}

func (s *seqRand) Intn(n int) int {
	if len(s.draws) == 0 {
		return 0
	}
	v := s.draws[s.i%len(s.draws)] % n
	s.i++
	return v
}

func (s *seqRand) Float64() float64 { return s.f }

func TestNewIdentity_DrawsFromPools(t *testing.T) {
	id := NewIdentity(&seqRand{f: 0.9})

	found := false
	for _, ua := range userAgents {
		if id.UserAgent == ua {
			found = true
		}
	}
	if !found {
		t.Errorf("UserAgent %q not from the pool", id.UserAgent)
	}
	if id.DeviceScaleFactor != 1 {
		t.Errorf("DeviceScaleFactor = %v, want 1 for high draw", id.DeviceScaleFactor)
	}
}

func TestNewIdentity_ViewportJitterBounds(t *testing.T) {
	for _, draw := range []int{0, 7, 16, 24, 32} {
		id := NewIdentity(&seqRand{draws: []int{0, 0, draw, draw}, f: 0.9})
		base := viewports[0]
		if id.Width < base.width-16 || id.Width > base.width+16 {
			t.Errorf("Width %d outside jitter bounds of %d", id.Width, base.width)
		}
		if id.Height < base.height-12 || id.Height > base.height+12 {
			t.Errorf("Height %d outside jitter bounds of %d", id.Height, base.height)
		}
	}
}

func TestNewIdentity_RetinaDraw(t *testing.T) {
	id := NewIdentity(&seqRand{f: 0.1})
	if id.DeviceScaleFactor != 2 {
		t.Errorf("DeviceScaleFactor = %v, want 2 for low draw", id.DeviceScaleFactor)
	}
}

func TestNavError_Unwrap(t *testing.T) {
	cause := errors.New("net::ERR_NAME_NOT_RESOLVED")
	err := &NavError{Strategy: "load", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("NavError must unwrap to its cause")
	}
	if err.Error() == "" {
		t.Error("NavError must describe itself")
	}

	timeout := &NavError{Strategy: "networkidle", TimedOut: true}
	if timeout.Error() == err.Error() {
		t.Error("timeout and hard failure must read differently")
	}
}
