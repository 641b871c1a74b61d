package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *SearchConfig)
		wantErr bool
	}{
		{"prefix ok", func(c *SearchConfig) { c.Mode = ModePrefix; c.Word = "abc" }, false},
		{"prefix without word", func(c *SearchConfig) { c.Mode = ModePrefix }, true},
		{"suffix without word", func(c *SearchConfig) { c.Mode = ModeSuffix }, true},
		{"regex without pattern", func(c *SearchConfig) { c.Mode = ModeRegex }, true},
		{"regex ok", func(c *SearchConfig) { c.Mode = ModeRegex; c.Pattern = "^A" }, false},
		{"repeating zero", func(c *SearchConfig) { c.Mode = ModeRepeating }, true},
		{"repeating ok", func(c *SearchConfig) { c.Mode = ModeRepeating; c.Count = 3 }, false},
		{"no mode", func(c *SearchConfig) {}, true},
		{"unknown mode", func(c *SearchConfig) { c.Mode = "glob"; c.Word = "x" }, true},
		{"zero limit", func(c *SearchConfig) { c.Mode = ModePrefix; c.Word = "a"; c.Limit = 0 }, true},
		{"negative threads", func(c *SearchConfig) { c.Mode = ModePrefix; c.Word = "a"; c.Threads = -1 }, true},
		{"negative core", func(c *SearchConfig) { c.Mode = ModePrefix; c.Word = "a"; c.Cores = []int{0, -2} }, true},
		{"fast progress", func(c *SearchConfig) {
			c.Mode = ModePrefix
			c.Word = "a"
			c.ProgressInterval = 100 * time.Millisecond
		}, true},
		{"negative regex timeout", func(c *SearchConfig) { c.Mode = ModeRegex; c.Pattern = "a"; c.RegexTimeout = -time.Second }, true},
		{"unknown scheme", func(c *SearchConfig) { c.Mode = ModePrefix; c.Word = "a"; c.Scheme = "btc" }, true},
		{"solana with password", func(c *SearchConfig) {
			c.Mode = ModePrefix
			c.Word = "a"
			c.KeystorePassword = "pw"
		}, true},
		{"evm with password", func(c *SearchConfig) {
			c.Mode = ModePrefix
			c.Word = "a"
			c.Scheme = "evm"
			c.KeystorePassword = "pw"
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				if !errors.Is(err, ErrInvalidConfig) {
					t.Fatalf("expected ErrInvalidConfig, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "search.yaml")
	body := "mode: suffix\nword: pump\nignore_case: true\nlimit: 3\nprogress_interval: 2s\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Mode != ModeSuffix || cfg.Word != "pump" || !cfg.IgnoreCase || cfg.Limit != 3 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.ProgressInterval != 2*time.Second {
		t.Fatalf("progress interval = %v", cfg.ProgressInterval)
	}
	if cfg.Window != DefaultWindow || cfg.Scheme != DefaultScheme {
		t.Fatalf("defaults not kept: %+v", cfg)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search.yaml")
	if err := os.WriteFile(path, []byte("mode: prefix\nword: a\nwrod: b\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}
