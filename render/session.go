package render

import (
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/prodsnap/prodsnap/config"
	"github.com/prodsnap/prodsnap/cookies"
	"github.com/prodsnap/prodsnap/models"
)

// Session is one isolated browser process with a single page. Every render
// attempt gets a fresh session; Close kills the whole process tree so a
// failed attempt cannot leak state (or a zombie Chrome) into the next one.
type Session struct {
	launch     *launcher.Launcher
	browser    *rod.Browser
	page       *rod.Page
	navTimeout time.Duration
	filterStop func()
	closeOnce  sync.Once
}

// Launch starts a headless browser, optionally routed through a proxy
// address (scheme://host:port, credentials supplied separately via
// Authenticate), and opens a blank page with stealth JS pre-injected.
func Launch(cfg config.BrowserConfig, proxyAddress string, navTimeout time.Duration) (*Session, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}
	if proxyAddress != "" {
		l = l.Proxy(proxyAddress)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-ipc-flooding-protection"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-prompt-on-repost"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewAcquireError(models.ErrCodeBrowserCrash, "failed to launch browser", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, models.NewAcquireError(models.ErrCodeBrowserCrash, "failed to connect to browser", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, models.NewAcquireError(models.ErrCodeBrowserCrash, "failed to open page", err)
	}

	// Stealth JS must be injected before the first navigation.
	if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
		slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
	}

	return &Session{
		launch:     l,
		browser:    browser,
		page:       page,
		navTimeout: navTimeout,
	}, nil
}

// Configure applies a randomized identity (user agent, jittered viewport)
// and a Google-search referer for the target host to the page. It must run
// before Navigate.
func (s *Session) Configure(id Identity, targetURL string) error {
	if err := (proto.NetworkSetUserAgentOverride{UserAgent: id.UserAgent}).Call(s.page); err != nil {
		return err
	}
	if err := s.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             id.Width,
		Height:            id.Height,
		DeviceScaleFactor: id.DeviceScaleFactor,
		Mobile:            false,
	}); err != nil {
		return err
	}
	if u, err := url.Parse(targetURL); err == nil {
		headers := proto.NetworkHeaders{
			"Referer": gson.New("https://www.google.com/search?q=" + url.QueryEscape(u.Hostname())),
		}
		_ = proto.NetworkSetExtraHTTPHeaders{Headers: headers}.Call(s.page)
	}
	return nil
}

// Authenticate answers proxy authentication challenges for the session.
// Must be armed before navigation.
func (s *Session) Authenticate(username, password string) {
	waitAuth := s.browser.HandleAuth(username, password)
	go func() {
		if err := waitAuth(); err != nil {
			slog.Debug("proxy auth handler exited", "error", err)
		}
	}()
}

// SetCookies attaches persisted cookies to the page before navigation.
// Individual cookie failures are non-fatal.
func (s *Session) SetCookies(cks []cookies.Cookie) error {
	for _, ck := range cks {
		path := ck.Path
		if path == "" {
			path = "/"
		}
		_, err := proto.NetworkSetCookie{
			Name:   ck.Name,
			Value:  ck.Value,
			Domain: ck.Domain,
			Path:   path,
		}.Call(s.page)
		if err != nil {
			slog.Debug("failed to set cookie", "name", ck.Name, "domain", ck.Domain, "error", err)
		}
	}
	return nil
}

// ApplyFilter mounts the resource-acquisition policy for this session.
// The returned disposer is also invoked by Close.
func (s *Session) ApplyFilter(targetURL string) (func(), error) {
	stop, err := ApplyFilter(s.page, targetURL)
	if err != nil {
		return nil, err
	}
	s.filterStop = stop
	return stop, nil
}

// Navigate runs the strategy ladder against this session's page.
func (s *Session) Navigate(url string) (*NavResult, error) {
	return Navigate(s.page, url, s.navTimeout)
}

// HTML returns the rendered DOM as HTML.
func (s *Session) HTML() (string, error) {
	return s.page.HTML()
}

// Close disarms the request filter and tears down the page, the browser
// connection and the browser process. Safe to call multiple times.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.filterStop != nil {
			s.filterStop()
		}
		if err := s.page.Close(); err != nil {
			slog.Debug("page close failed", "error", err)
		}
		if err := s.browser.Close(); err != nil {
			slog.Debug("browser close failed", "error", err)
		}
		s.launch.Kill()
	})
}
