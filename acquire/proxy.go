package acquire

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/prodsnap/prodsnap/render"
)

// Proxy is one entry of the stage-2 pool. Address carries no credentials;
// the browser authenticates separately with Username/Password.
type Proxy struct {
	Raw      string // as configured
	Address  string // scheme://host[:port], handed to the browser launcher
	Username string
	Password string
}

// ParseProxyPool parses a comma-delimited list of proxy URLs, trimming
// entries and deduplicating them case-insensitively. Malformed entries are
// skipped with a warning, never propagated.
func ParseProxyPool(s string) []Proxy {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	seen := make(map[string]struct{})
	var pool []Proxy
	for _, part := range strings.Split(s, ",") {
		raw := strings.TrimSpace(part)
		if raw == "" {
			continue
		}
		key := strings.ToLower(raw)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		p, err := parseProxy(raw)
		if err != nil {
			slog.Warn("skipping malformed proxy entry", "entry", raw, "error", err)
			continue
		}
		pool = append(pool, p)
	}
	return pool
}

func parseProxy(raw string) (Proxy, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Proxy{}, err
	}
	if u.Scheme == "" || u.Host == "" {
		return Proxy{}, fmt.Errorf("missing scheme or host")
	}
	p := Proxy{Raw: raw, Address: u.Scheme + "://" + u.Host}
	if u.User != nil {
		p.Username = u.User.Username()
		p.Password, _ = u.User.Password()
	}
	return p, nil
}

// shuffled returns a random permutation of the pool without mutating it.
// The pool is shuffled once per orchestration run.
func shuffled(pool []Proxy, rnd render.Rand) []Proxy {
	out := append([]Proxy(nil), pool...)
	for i := len(out) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
