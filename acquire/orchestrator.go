// Package acquire implements the escalating acquisition state machine:
// direct render, then proxied render, then the remote unlocker. Each tier
// costs more and is more likely to get past anti-scraping defenses.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"time"

	"github.com/prodsnap/prodsnap/config"
	"github.com/prodsnap/prodsnap/cookies"
	"github.com/prodsnap/prodsnap/extract"
	"github.com/prodsnap/prodsnap/models"
	"github.com/prodsnap/prodsnap/render"
)

// Orchestrator runs the three-stage escalation ladder for single URLs.
// It is safe for concurrent use: every Acquire call owns all of its state,
// and the configuration fields are never mutated after construction.
type Orchestrator struct {
	cfg      config.AcquireConfig
	launcher Launcher
	proxies  []Proxy
	cookies  *cookies.Store
	unlocker *Unlocker
	rnd      render.Rand

	// delayUnit scales the human-like delays; tests shrink it so escalation
	// scenarios run in microseconds.
	delayUnit time.Duration
}

// NewOrchestrator wires the stage capabilities together. The proxy pool is
// parsed once here; malformed entries are dropped with a warning.
func NewOrchestrator(cfg config.AcquireConfig, launcher Launcher, store *cookies.Store, unlocker *Unlocker, rnd render.Rand) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		launcher:  launcher,
		proxies:   ParseProxyPool(cfg.ProxyPool),
		cookies:   store,
		unlocker:  unlocker,
		rnd:       rnd,
		delayUnit: time.Millisecond,
	}
}

// ProxyPoolSize reports how many usable stage-2 proxies are configured.
func (o *Orchestrator) ProxyPoolSize() int { return len(o.proxies) }

// UnlockerEnabled reports whether stage 3 is available.
func (o *Orchestrator) UnlockerEnabled() bool { return o.unlocker.Enabled() }

// stageFunc runs one stage attempt against a target.
type stageFunc func(ctx context.Context, rawURL string, target *url.URL) (*models.ExtractedContent, models.StageMeta, error)

// Acquire runs the escalation ladder for one URL and always returns a
// structured outcome for business-level failure; the error return is
// reserved for a missing or invalid URL argument.
func (o *Orchestrator) Acquire(ctx context.Context, rawURL string) (*models.StageOutcome, error) {
	target, err := url.Parse(rawURL)
	if err != nil || !target.IsAbs() || (target.Scheme != "http" && target.Scheme != "https") {
		return nil, models.NewAcquireError(models.ErrCodeInvalidInput, "url must be an absolute http(s) URL", err)
	}

	start := time.Now()
	defer func() { acquireDuration.Observe(time.Since(start).Seconds()) }()

	stages := []struct {
		name      string
		available func() bool
		run       stageFunc
	}{
		{models.StageDirect, func() bool { return true }, o.runDirect},
		{models.StageProxied, func() bool { return len(o.proxies) > 0 }, o.runProxied},
		{models.StageBrightData, o.UnlockerEnabled, o.runUnlocker},
	}

	steps := make(map[string]string, len(stages))
	var lastErr error
	var lastStage string

	for _, st := range stages {
		if !st.available() {
			steps[st.name] = models.DispositionSkipped
			stageAttempts.WithLabelValues(st.name, models.DispositionSkipped).Inc()
			slog.Info("stage skipped: not configured", "stage", st.name, "url", rawURL)
			continue
		}

		stageStart := time.Now()
		content, meta, err := st.run(ctx, rawURL, target)
		meta.DurationSeconds = roundSeconds(time.Since(stageStart))

		if err == nil && !content.Valid() {
			err = models.NewAcquireError(models.ErrCodeExtractionInvalid, "extracted content failed validity check", nil)
		}
		if err == nil {
			steps[st.name] = models.DispositionSuccess
			stageAttempts.WithLabelValues(st.name, models.DispositionSuccess).Inc()
			slog.Info("stage succeeded", "stage", st.name, "url", rawURL,
				"durationSeconds", meta.DurationSeconds, "images", len(content.Images))
			return &models.StageOutcome{
				OK:      true,
				Stage:   st.name,
				Content: content,
				Meta:    meta,
				Steps:   steps,
			}, nil
		}

		steps[st.name] = models.DispositionFailed
		stageAttempts.WithLabelValues(st.name, models.DispositionFailed).Inc()
		lastErr = err
		lastStage = st.name
		slog.Warn("stage failed, escalating", "stage", st.name, "url", rawURL, "error", err)

		if ctx.Err() != nil {
			break
		}
	}

	msg := "blocked"
	if lastErr != nil {
		msg = fmt.Sprintf("blocked: %v", lastErr)
	}
	return &models.StageOutcome{
		OK:    false,
		Stage: lastStage,
		Steps: steps,
		Error: msg,
		Meta:  models.StageMeta{DurationSeconds: roundSeconds(time.Since(start))},
	}, nil
}

// runDirect is stage 1: a fresh render session with no proxy.
func (o *Orchestrator) runDirect(ctx context.Context, rawURL string, _ *url.URL) (*models.ExtractedContent, models.StageMeta, error) {
	return o.renderAttempt(ctx, rawURL, Proxy{}, nil)
}

// runProxied is stage 2: the shuffled proxy pool with per-domain cookies.
// Stops at the first valid extraction; exhausting the pool is a stage
// failure carrying the attempt count and the last error.
func (o *Orchestrator) runProxied(ctx context.Context, rawURL string, target *url.URL) (*models.ExtractedContent, models.StageMeta, error) {
	cks, err := o.cookies.ForDomain(target.Hostname())
	if err != nil {
		slog.Warn("cookie store read failed, continuing without cookies",
			"domain", target.Hostname(), "error", err)
		cks = nil
	}

	pool := shuffled(o.proxies, o.rnd)
	var meta models.StageMeta
	var lastErr error
	attempts := 0

	for _, p := range pool {
		attempts++
		content, m, err := o.renderAttempt(ctx, rawURL, p, cks)
		m.Attempts = attempts
		meta = m
		if err == nil && content.Valid() {
			return content, meta, nil
		}
		if err == nil {
			err = models.NewAcquireError(models.ErrCodeExtractionInvalid, "extracted content failed validity check", nil)
		}
		lastErr = err
		slog.Warn("proxied attempt failed", "proxy", p.Address, "attempt", attempts, "error", err)

		if ctx.Err() != nil {
			break
		}
		if attempts < len(pool) {
			if serr := o.sleep(ctx, o.backoffDelay()); serr != nil {
				break
			}
		}
	}

	meta.Attempts = attempts
	code := models.ErrCodeNavFailure
	var ae *models.AcquireError
	if errors.As(lastErr, &ae) {
		code = ae.Code
	}
	return nil, meta, models.NewAcquireError(code,
		fmt.Sprintf("proxy pool exhausted after %d attempts", attempts), lastErr)
}

// runUnlocker is stage 3: one remote request, no local render, no retry.
func (o *Orchestrator) runUnlocker(ctx context.Context, rawURL string, _ *url.URL) (*models.ExtractedContent, models.StageMeta, error) {
	meta := models.StageMeta{Attempts: 1}
	markup, err := o.unlocker.Fetch(ctx, rawURL)
	if err != nil {
		return nil, meta, err
	}
	return extract.Extract(markup, rawURL, o.extractOptions()), meta, nil
}

// renderAttempt drives one full render-and-extract cycle through a session.
// The session is released on every exit path.
func (o *Orchestrator) renderAttempt(ctx context.Context, rawURL string, proxy Proxy, cks []cookies.Cookie) (*models.ExtractedContent, models.StageMeta, error) {
	meta := models.StageMeta{Proxy: proxy.Address}

	session, err := o.launcher.Launch(proxy.Address)
	if err != nil {
		return nil, meta, models.NewAcquireError(models.ErrCodeBrowserCrash, "failed to launch render session", err)
	}
	defer session.Close()

	id := render.NewIdentity(o.rnd)
	meta.UserAgent = id.UserAgent
	if err := session.Configure(id, rawURL); err != nil {
		return nil, meta, models.NewAcquireError(models.ErrCodeBrowserCrash, "failed to configure render session", err)
	}
	if proxy.Username != "" {
		session.Authenticate(proxy.Username, proxy.Password)
	}
	if len(cks) > 0 {
		if err := session.SetCookies(cks); err != nil {
			slog.Warn("failed to attach cookies", "error", err)
		}
	}

	stop, err := session.ApplyFilter(rawURL)
	if err != nil {
		slog.Warn("request filter unavailable, continuing unfiltered", "error", err)
	} else {
		defer stop()
	}

	if proxy.Address != "" {
		if serr := o.sleep(ctx, o.preNavDelay()); serr != nil {
			return nil, meta, models.NewAcquireError(models.ErrCodeNavFailure, "acquisition cancelled", serr)
		}
	}

	nav, err := session.Navigate(rawURL)
	if err != nil {
		var navErr *render.NavError
		if errors.As(err, &navErr) {
			meta.NavigationWaitUntil = navErr.Strategy
			meta.NavigationTimedOut = navErr.TimedOut
			code := models.ErrCodeNavFailure
			if navErr.TimedOut {
				code = models.ErrCodeNavTimeout
			}
			return nil, meta, models.NewAcquireError(code, "navigation failed", err)
		}
		return nil, meta, models.NewAcquireError(models.ErrCodeNavFailure, "navigation failed", err)
	}
	meta.NavigationWaitUntil = nav.Strategy
	meta.NavigationTimedOut = nav.TimedOut

	// Human-like pause between load and scrape; an instant read after the
	// load event is a strong automation signal.
	if serr := o.sleep(ctx, o.humanDelay()); serr != nil {
		return nil, meta, models.NewAcquireError(models.ErrCodeNavFailure, "acquisition cancelled", serr)
	}

	markup, err := session.HTML()
	if err != nil {
		return nil, meta, models.NewAcquireError(models.ErrCodeBrowserCrash, "failed to read rendered HTML", err)
	}

	return extract.Extract(markup, rawURL, o.extractOptions()), meta, nil
}

func (o *Orchestrator) extractOptions() extract.Options {
	return extract.Options{MaxImages: o.cfg.MaxImages, BestImages: o.cfg.BestImages}
}

// humanDelay is the 1.2-2.4s pause between page load and HTML read.
func (o *Orchestrator) humanDelay() time.Duration {
	return time.Duration(1200+o.rnd.Intn(1201)) * o.delayUnit
}

// preNavDelay is the 0.4-0.9s pause before a proxied navigation.
func (o *Orchestrator) preNavDelay() time.Duration {
	return time.Duration(400+o.rnd.Intn(501)) * o.delayUnit
}

// backoffDelay is the 0.8-1.5s pause between failed proxy attempts.
func (o *Orchestrator) backoffDelay() time.Duration {
	return time.Duration(800+o.rnd.Intn(701)) * o.delayUnit
}

// sleep waits for d or until the context is cancelled.
func (o *Orchestrator) sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}
