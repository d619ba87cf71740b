package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != 7000 {
		t.Fatalf("expected default port 7000, got %d", cfg.Port)
	}
	if cfg.TargetLang != "pt-PT" || cfg.DefaultTone != "natural" {
		t.Fatalf("unexpected locale defaults: %q/%q", cfg.TargetLang, cfg.DefaultTone)
	}
	if cfg.CacheTTL != 24*time.Hour {
		t.Fatalf("expected 24h cache TTL, got %s", cfg.CacheTTL)
	}
	if cfg.CacheMaxItems != 500 {
		t.Fatalf("expected 500 max items, got %d", cfg.CacheMaxItems)
	}
	if cfg.GeminiModel != "gemini-1.5-flash" {
		t.Fatalf("unexpected model default %q", cfg.GeminiModel)
	}
	if cfg.RemoteRefresh != 5*time.Minute {
		t.Fatalf("expected 5m remote refresh, got %s", cfg.RemoteRefresh)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("TARGET_LANG", "es-ES")
	t.Setenv("CACHE_TTL", "60")
	t.Setenv("ENFORCE_TARGET_LANG", "true")
	t.Setenv("ALWAYS_SOURCE_EN", "1")
	t.Setenv("DISABLE_LANG_HEURISTIC", "0")
	t.Setenv("REMOTE_ADDONS", "https://a.example/manifest.json, https://b.example ,")

	cfg := Load()

	if cfg.Port != 8080 {
		t.Fatalf("expected port 8080, got %d", cfg.Port)
	}
	if cfg.TargetLang != "es-ES" {
		t.Fatalf("expected es-ES, got %q", cfg.TargetLang)
	}
	if cfg.CacheTTL != time.Minute {
		t.Fatalf("expected 60s TTL, got %s", cfg.CacheTTL)
	}
	if !cfg.EnforceTargetLang || !cfg.AlwaysSourceEN {
		t.Fatal("boolean flags not parsed")
	}
	if cfg.DisableLangHeuristic {
		t.Fatal("\"0\" must read as false")
	}
	if len(cfg.RemoteAddons) != 2 || cfg.RemoteAddons[1] != "https://b.example" {
		t.Fatalf("remote addon list not parsed: %+v", cfg.RemoteAddons)
	}
}

func TestLoadIgnoresInvalidInt(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	if cfg := Load(); cfg.Port != 7000 {
		t.Fatalf("expected fallback to default port, got %d", cfg.Port)
	}
}
