package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Backend != "sqlite" {
		t.Errorf("expected sqlite backend, got %s", cfg.Backend)
	}
	if cfg.DefaultCurrency != "THB" {
		t.Errorf("expected THB, got %s", cfg.DefaultCurrency)
	}
	if cfg.SummaryCacheSize != 64 {
		t.Errorf("expected cache size 64, got %d", cfg.SummaryCacheSize)
	}
	if cfg.FrequentLimit != 10 {
		t.Errorf("expected frequent limit 10, got %d", cfg.FrequentLimit)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SATANG_BACKEND", "memory")
	t.Setenv("SATANG_CURRENCY", "EUR")
	t.Setenv("SATANG_SUMMARY_CACHE_TTL", "30s")
	t.Setenv("SATANG_FREQUENT_LIMIT", "5")

	cfg := Load()
	if cfg.Backend != "memory" {
		t.Errorf("expected memory backend, got %s", cfg.Backend)
	}
	if cfg.DefaultCurrency != "EUR" {
		t.Errorf("expected EUR, got %s", cfg.DefaultCurrency)
	}
	if cfg.SummaryCacheTTL != 30*time.Second {
		t.Errorf("expected 30s TTL, got %v", cfg.SummaryCacheTTL)
	}
	if cfg.FrequentLimit != 5 {
		t.Errorf("expected frequent limit 5, got %d", cfg.FrequentLimit)
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := &Config{
		Backend:          "postgres",
		DefaultCurrency:  "x",
		SummaryCacheSize: 0,
		SummaryCacheTTL:  time.Millisecond,
		FrequentLimit:    0,
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"backend", "currency", "cache size", "cache TTL", "frequent limit"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to mention %q, got: %v", want, err)
		}
	}
}

func TestValidateOK(t *testing.T) {
	cfg := &Config{
		Backend:          "memory",
		DefaultCurrency:  "THB",
		SummaryCacheSize: 16,
		SummaryCacheTTL:  time.Minute,
		FrequentLimit:    10,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}
