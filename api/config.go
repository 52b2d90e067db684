// ABOUTME: Service configuration and credential management for the pack service
// ABOUTME: Handles config storage at XDG paths and environment variable overrides
package api

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/adrg/xdg"
)

// Config stores pack service credentials and connection settings.
type Config struct {
	Server       string `json:"server"`
	Username     string `json:"username"`
	UserID       int64  `json:"user_id,omitempty"`
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenExpires string `json:"token_expires,omitempty"`
}

// ConfigDir returns the XDG-compliant directory for packshare data.
func ConfigDir() string {
	return filepath.Join(xdg.DataHome, "packshare")
}

// ConfigPath returns the XDG-compliant path of the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

// LoadConfig loads configuration from the XDG data directory.
// Returns an empty config if the file does not exist.
// Environment variables override file values:
// - PACKSHARE_SERVER
// - PACKSHARE_TOKEN
// - PACKSHARE_REFRESH_TOKEN
// - PACKSHARE_USERNAME
// - PACKSHARE_USER_ID.
func LoadConfig() (*Config, error) {
	path := ConfigPath()

	cfg := &Config{}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	if server := os.Getenv("PACKSHARE_SERVER"); server != "" {
		cfg.Server = server
	}
	if token := os.Getenv("PACKSHARE_TOKEN"); token != "" {
		cfg.Token = token
	}
	if refresh := os.Getenv("PACKSHARE_REFRESH_TOKEN"); refresh != "" {
		cfg.RefreshToken = refresh
	}
	if username := os.Getenv("PACKSHARE_USERNAME"); username != "" {
		cfg.Username = username
	}
	if userID := os.Getenv("PACKSHARE_USER_ID"); userID != "" {
		if id, err := strconv.ParseInt(userID, 10, 64); err == nil {
			cfg.UserID = id
		}
	}
}

// SaveConfig saves configuration to the XDG data directory.
func SaveConfig(cfg *Config) error {
	path := ConfigPath()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Restricted permissions, the file carries tokens
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// IsConfigured checks whether the config carries enough to talk to the service.
func (c *Config) IsConfigured() bool {
	return c.Server != "" && c.Token != ""
}
