package main

import (
	"strings"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"cert without key", func(c *Config) { c.tlsCert = "cert.pem" }, "--tls-key"},
		{"port too high", func(c *Config) { c.port = 70000 }, "invalid port"},
		{"no rounds", func(c *Config) { c.rounds = 0 }, "round count"},
		{"short turn", func(c *Config) { c.turnDuration = 500 * time.Millisecond }, "turn duration"},
		{"short review", func(c *Config) { c.reviewDuration = 0 }, "review duration"},
		{"no pause", func(c *Config) { c.reviewPause = 0 }, "review pause"},
		{"no broadcast", func(c *Config) { c.broadcastInterval = 0 }, "broadcast interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)

			err := cfg.validate()
			switch {
			case tt.wantErr == "" && err != nil:
				t.Errorf("unexpected error: %v", err)
			case tt.wantErr != "" && (err == nil || !strings.Contains(err.Error(), tt.wantErr)):
				t.Errorf("error = %v, want one mentioning %q", err, tt.wantErr)
			}
		})
	}
}

func TestScheme(t *testing.T) {
	cfg := testConfig()
	if got := cfg.scheme(); got != "http" {
		t.Errorf("scheme = %s, want http", got)
	}

	cfg.tlsCert, cfg.tlsKey = "cert.pem", "key.pem"
	if got := cfg.scheme(); got != "https" {
		t.Errorf("scheme = %s, want https", got)
	}
}

func TestFlagDefaults(t *testing.T) {
	cfg := &Config{}
	cmd := newCmd(cfg)

	if err := cmd.ParseFlags(nil); err != nil {
		t.Fatal(err)
	}

	if cfg.port != 8080 || cfg.rounds != 3 || cfg.turnDuration != 90*time.Second {
		t.Errorf("defaults = port %d, rounds %d, turn %s", cfg.port, cfg.rounds, cfg.turnDuration)
	}
	if cfg.reviewDuration != 10*time.Second || cfg.reviewPause != 3*time.Second {
		t.Errorf("review = %s / %s", cfg.reviewDuration, cfg.reviewPause)
	}
	if err := cfg.validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestFlagsFromEnv(t *testing.T) {
	t.Setenv("TABOO_PORT", "9090")
	t.Setenv("TABOO_TURN_DURATION", "45s")

	cfg := &Config{}
	newCmd(cfg)

	if cfg.port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.port)
	}
	if cfg.turnDuration != 45*time.Second {
		t.Errorf("turn duration = %s, want 45s", cfg.turnDuration)
	}
}

func TestFlagNormalization(t *testing.T) {
	cfg := &Config{}
	cmd := newCmd(cfg)

	if err := cmd.ParseFlags([]string{"--review_duration=20s", "--rounds", "5"}); err != nil {
		t.Fatal(err)
	}

	if cfg.reviewDuration != 20*time.Second {
		t.Errorf("review duration = %s, want 20s", cfg.reviewDuration)
	}
	if cfg.rounds != 5 {
		t.Errorf("rounds = %d, want 5", cfg.rounds)
	}
}
