package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("CHECKOUT_TTL", "not-a-duration")
	t.Setenv("FALLBACK_RATE", "")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("want port 9090, got %s", cfg.Port)
	}
	if cfg.BaseURL != "http://localhost:9090" {
		t.Fatalf("unexpected base url %s", cfg.BaseURL)
	}
	if len(cfg.KafkaBrokers) != 2 {
		t.Fatalf("want 2 brokers, got %v", cfg.KafkaBrokers)
	}
	if cfg.CheckoutTTL != 24*time.Hour {
		t.Fatalf("bad duration should fall back, got %s", cfg.CheckoutTTL)
	}
	if cfg.FallbackRate != 50.0 {
		t.Fatalf("want fallback 50, got %v", cfg.FallbackRate)
	}
}

func TestCheckoutTTLClamped(t *testing.T) {
	cases := map[string]time.Duration{
		"5m":  30 * time.Minute,
		"48h": 24 * time.Hour,
		"2h":  2 * time.Hour,
	}
	for in, want := range cases {
		t.Setenv("CHECKOUT_TTL", in)
		if got := Load().CheckoutTTL; got != want {
			t.Fatalf("CHECKOUT_TTL=%s: want %s, got %s", in, want, got)
		}
	}
}

func TestMask(t *testing.T) {
	if got := mask(""); got != "sandbox" {
		t.Fatalf("got %s", got)
	}
	if got := mask("sk_test_1234567890"); got != "sk_test****" {
		t.Fatalf("got %s", got)
	}
}
