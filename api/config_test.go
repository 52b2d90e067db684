// ABOUTME: Tests for config loading and environment overrides
// ABOUTME: Uses t.Setenv so overrides never leak between tests
package api

import (
	"testing"
)

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("PACKSHARE_SERVER", "https://packs.example.com")
	t.Setenv("PACKSHARE_TOKEN", "tok-123")
	t.Setenv("PACKSHARE_USERNAME", "kay")
	t.Setenv("PACKSHARE_USER_ID", "7")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server != "https://packs.example.com" {
		t.Errorf("server = %q", cfg.Server)
	}
	if cfg.Token != "tok-123" {
		t.Errorf("token = %q", cfg.Token)
	}
	if cfg.Username != "kay" {
		t.Errorf("username = %q", cfg.Username)
	}
	if cfg.UserID != 7 {
		t.Errorf("user id = %d", cfg.UserID)
	}
}

func TestLoadConfigIgnoresBadUserID(t *testing.T) {
	t.Setenv("PACKSHARE_USER_ID", "not-a-number")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.UserID != 0 {
		t.Errorf("user id = %d, want 0", cfg.UserID)
	}
}

func TestIsConfigured(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{"empty", Config{}, false},
		{"server only", Config{Server: "https://x"}, false},
		{"token only", Config{Token: "t"}, false},
		{"both", Config{Server: "https://x", Token: "t"}, true},
	}

	for _, tt := range tests {
		if got := tt.cfg.IsConfigured(); got != tt.want {
			t.Errorf("%s: IsConfigured() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
