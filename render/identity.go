package render

import (
	"math/rand"
	"sync"
	"time"
)

// Rand is the injectable random source for all tactical randomness
// (identity picks, viewport jitter, proxy shuffle, human-like delays).
// Tests substitute a seeded source; behavior must be correct for any draw.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// NewRand returns a concurrency-safe random source seeded from the clock.
func NewRand() Rand {
	return &lockedRand{r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// userAgents is the fixed pool of desktop user agents used for rendered
// attempts. All are current-generation browsers on common platforms.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36 Edg/130.0.0.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.6 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:132.0) Gecko/20100101 Firefox/132.0",
}

// viewports is the fixed pool of base desktop resolutions.
var viewports = []struct{ width, height int }{
	{1920, 1080},
	{1536, 864},
	{1440, 900},
	{1366, 768},
	{1280, 800},
}

// Identity is one randomized browser identity applied to a render session.
type Identity struct {
	UserAgent         string
	Width             int
	Height            int
	DeviceScaleFactor float64
}

// NewIdentity draws a random user agent and a jittered viewport from the
// fixed pools. The jitter (±16px width, ±12px height) and the occasional 2x
// device scale make consecutive sessions look less like the same machine.
func NewIdentity(rnd Rand) Identity {
	vp := viewports[rnd.Intn(len(viewports))]
	id := Identity{
		UserAgent:         userAgents[rnd.Intn(len(userAgents))],
		Width:             vp.width + rnd.Intn(33) - 16,
		Height:            vp.height + rnd.Intn(25) - 12,
		DeviceScaleFactor: 1,
	}
	if rnd.Float64() < 0.2 {
		id.DeviceScaleFactor = 2
	}
	return id
}
