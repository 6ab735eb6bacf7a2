package acquire

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	tls "github.com/refraction-networking/utls"
	"golang.org/x/net/html"

	"github.com/prodsnap/prodsnap/config"
	"github.com/prodsnap/prodsnap/models"
)

// maxUnlockerBody caps how much of a remote response is read.
const maxUnlockerBody = 20 << 20

// chromeH1Spec builds a Chrome-like TLS ClientHello with ALPN forced to
// http/1.1 only, so the server never negotiates HTTP/2 (which Go's
// http.Transport cannot handle over a utls connection). A fresh spec is
// built per connection: the handshake mutates extension state, so a shared
// spec would race across concurrent dials.
func chromeH1Spec() (tls.ClientHelloSpec, error) {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return tls.ClientHelloSpec{}, err
	}
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	return spec, nil
}

// Unlocker is the stage-3 capability: a remote paid service that fetches a
// URL's HTML on our behalf using its own anti-blocking infrastructure.
type Unlocker struct {
	apiKey   string
	zone     string
	endpoint string
	client   *http.Client
}

// NewUnlocker builds the client. The request deadline is the same navigation
// timeout that bounds local renders; the redirect cap is the process-wide
// MaxRedirects value.
func NewUnlocker(cfg config.AcquireConfig) *Unlocker {
	transport := &http.Transport{
		DialTLSContext:    dialTLSChrome,
		ForceAttemptHTTP2: false,
	}
	maxRedirects := cfg.MaxRedirects
	client := &http.Client{
		Transport: transport,
		Timeout:   cfg.NavigationTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
	return &Unlocker{
		apiKey:   cfg.UnlockerAPIKey,
		zone:     cfg.UnlockerZone,
		endpoint: cfg.UnlockerEndpoint,
		client:   client,
	}
}

// Enabled reports whether the unlocker credential is configured; without it
// stage 3 is skipped entirely.
func (u *Unlocker) Enabled() bool {
	return u != nil && u.apiKey != ""
}

// Fetch issues the single remote request for a target URL and returns the
// raw HTML body. No internal retries: this one attempt is the unit of
// stage-3 success or failure.
func (u *Unlocker) Fetch(ctx context.Context, targetURL string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"zone":   u.zone,
		"url":    targetURL,
		"format": "raw",
	})
	if err != nil {
		return "", models.NewAcquireError(models.ErrCodeRemoteCall, "failed to encode unlocker payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", models.NewAcquireError(models.ErrCodeRemoteCall, "failed to build unlocker request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+u.apiKey)

	resp, err := u.client.Do(req)
	if err != nil {
		return "", models.NewAcquireError(models.ErrCodeRemoteCall, "unlocker request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUnlockerBody))
	if err != nil {
		return "", models.NewAcquireError(models.ErrCodeRemoteCall, "failed to read unlocker response", err)
	}
	if resp.StatusCode >= 400 {
		return "", models.NewAcquireError(models.ErrCodeRemoteCall,
			fmt.Sprintf("unlocker HTTP %d", resp.StatusCode), nil)
	}

	markup := extractUnlockerBody(body)
	if strings.TrimSpace(markup) == "" {
		return "", models.NewAcquireError(models.ErrCodeRemoteCall, "empty response from unlocker", nil)
	}
	if !looksLikeHTML(markup) {
		slog.Warn("unlocker returned body with no recognizable markup", "url", targetURL)
	}
	return markup, nil
}

// extractUnlockerBody accepts the HTML from the response shapes the service
// is known to produce: a raw string body, or a JSON envelope with the markup
// nested under common field names. A JSON envelope without a recognizable
// body field yields "" (it is an error payload, not markup).
func extractUnlockerBody(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}
	if trimmed[0] == '{' {
		var envelope map[string]any
		if err := json.Unmarshal(trimmed, &envelope); err == nil {
			return probeEnvelope(envelope)
		}
	}
	return string(trimmed)
}

func probeEnvelope(m map[string]any) string {
	for _, key := range []string{"body", "html", "response", "content"} {
		if s, ok := m[key].(string); ok && s != "" {
			return s
		}
	}
	for _, key := range []string{"result", "data", "solution"} {
		if nested, ok := m[key].(map[string]any); ok {
			if s := probeEnvelope(nested); s != "" {
				return s
			}
		}
	}
	return ""
}

// looksLikeHTML tokenizes the body and reports whether it contains at least
// one element tag.
func looksLikeHTML(s string) bool {
	tokenizer := html.NewTokenizer(strings.NewReader(s))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.SelfClosingTagToken:
			return true
		}
	}
}

// dialTLSChrome establishes a TLS connection with a Chrome ClientHello.
func dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	spec, err := chromeH1Spec()
	if err != nil {
		return nil, fmt.Errorf("unlocker: build tls spec: %w", err)
	}
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
	if err := tlsConn.ApplyPreset(&spec); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unlocker: apply tls spec: %w", err)
	}
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return tlsConn, nil
}
