package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != 8080 || cfg.Server.Mode != "release" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Acquire.NavigationTimeout != 45*time.Second {
		t.Errorf("NavigationTimeout = %v, want 45s", cfg.Acquire.NavigationTimeout)
	}
	if cfg.Acquire.MaxImages != 12 || cfg.Acquire.BestImages != 6 {
		t.Errorf("image limits = %d/%d, want 12/6", cfg.Acquire.MaxImages, cfg.Acquire.BestImages)
	}
	if cfg.Acquire.UnlockerZone != "unblocker" {
		t.Errorf("UnlockerZone = %q", cfg.Acquire.UnlockerZone)
	}
	if !cfg.Browser.Headless {
		t.Error("Headless should default to true")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q", cfg.Log.Format)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PRODSNAP_PORT", "9090")
	t.Setenv("PRODSNAP_NAV_TIMEOUT", "20s")
	t.Setenv("PRODSNAP_PROXY_POOL", "http://p1:8080,http://p2:8080")
	t.Setenv("PRODSNAP_API_KEYS", "k1, k2,")
	t.Setenv("PRODSNAP_HEADLESS", "false")

	cfg := Load()
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
	if cfg.Acquire.NavigationTimeout != 20*time.Second {
		t.Errorf("NavigationTimeout = %v", cfg.Acquire.NavigationTimeout)
	}
	if cfg.Acquire.ProxyPool != "http://p1:8080,http://p2:8080" {
		t.Errorf("ProxyPool = %q", cfg.Acquire.ProxyPool)
	}
	if len(cfg.Auth.APIKeys) != 2 || cfg.Auth.APIKeys[0] != "k1" || cfg.Auth.APIKeys[1] != "k2" {
		t.Errorf("APIKeys = %v", cfg.Auth.APIKeys)
	}
	if cfg.Browser.Headless {
		t.Error("Headless override ignored")
	}
}

func TestLoad_NavigationTimeoutFloor(t *testing.T) {
	t.Setenv("PRODSNAP_NAV_TIMEOUT", "1s")
	cfg := Load()
	if cfg.Acquire.NavigationTimeout != 5*time.Second {
		t.Errorf("NavigationTimeout = %v, want floor of 5s", cfg.Acquire.NavigationTimeout)
	}
}

func TestLoad_MalformedEnvFallsBack(t *testing.T) {
	t.Setenv("PRODSNAP_PORT", "not-a-number")
	t.Setenv("PRODSNAP_NAV_TIMEOUT", "soon")
	cfg := Load()
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want default", cfg.Server.Port)
	}
	if cfg.Acquire.NavigationTimeout != 45*time.Second {
		t.Errorf("NavigationTimeout = %v, want default", cfg.Acquire.NavigationTimeout)
	}
}
