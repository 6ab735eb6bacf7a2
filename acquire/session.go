package acquire

import (
	"time"

	"github.com/prodsnap/prodsnap/config"
	"github.com/prodsnap/prodsnap/cookies"
	"github.com/prodsnap/prodsnap/render"
)

// Session is the render capability the orchestrator drives. The contract is
// explicit so the orchestrator never probes for optional methods at runtime;
// the production implementation wraps a rod browser, tests substitute fakes.
type Session interface {
	// Configure applies a randomized identity and per-target headers.
	// Must run before Navigate.
	Configure(id render.Identity, targetURL string) error

	// Authenticate arms proxy credential handling for the session.
	Authenticate(username, password string)

	// SetCookies attaches persisted cookies before navigation.
	SetCookies(cks []cookies.Cookie) error

	// ApplyFilter installs the resource policy; the disposer is idempotent.
	ApplyFilter(targetURL string) (stop func(), err error)

	// Navigate drives the completion-strategy ladder.
	Navigate(url string) (*render.NavResult, error)

	// HTML returns the rendered DOM.
	HTML() (string, error)

	// Close releases the page and the browser process. Safe to call twice.
	Close()
}

// Launcher creates one fresh render session per attempt, optionally routed
// through a proxy address.
type Launcher interface {
	Launch(proxyAddress string) (Session, error)
}

// rodLauncher is the production Launcher backed by render.Launch.
type rodLauncher struct {
	browser    config.BrowserConfig
	navTimeout time.Duration
}

// NewRodLauncher builds the rod-backed Launcher.
func NewRodLauncher(browser config.BrowserConfig, navTimeout time.Duration) Launcher {
	return &rodLauncher{browser: browser, navTimeout: navTimeout}
}

func (l *rodLauncher) Launch(proxyAddress string) (Session, error) {
	return render.Launch(l.browser, proxyAddress, l.navTimeout)
}
