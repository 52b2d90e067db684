// ABOUTME: Login CLI command
// ABOUTME: Exchanges credentials for a token and stores the local config
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/harperreed/packshare/api"
)

// LoginCommand authenticates against a server and writes the config file.
// The password is read from the terminal, never from a flag.
func LoginCommand(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	server := fs.String("server", "", "Server URL (required)")
	username := fs.String("username", "", "Username (required)")
	_ = fs.Parse(args)

	if *server == "" {
		return fmt.Errorf("--server is required")
	}
	if *username == "" {
		return fmt.Errorf("--username is required")
	}

	fmt.Printf("Password for %s: ", *username)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if len(password) == 0 {
		return fmt.Errorf("password must not be empty")
	}

	ctx := context.Background()
	cfg, err := api.Login(ctx, strings.TrimSpace(*server), *username, string(password))
	if err != nil {
		return err
	}

	// Resolve our own user ID so later sessions skip the lookup.
	client, err := api.NewClient(cfg)
	if err != nil {
		return err
	}
	user, err := client.ResolveUsername(ctx, *username)
	if err != nil {
		return fmt.Errorf("authenticated but could not resolve own user: %w", err)
	}
	cfg.UserID = user.ID

	if err := api.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("✓ Logged in as %s (ID: %d)\n", cfg.Username, cfg.UserID)
	fmt.Printf("  Config: %s\n", api.ConfigPath())
	return nil
}

// WhoamiCommand prints the current login state.
func WhoamiCommand(args []string) error {
	cfg, err := api.LoadConfig()
	if err != nil {
		return err
	}
	if !cfg.IsConfigured() {
		fmt.Fprintln(os.Stderr, "Not logged in. Run 'packshare login' first.")
		os.Exit(1)
	}

	fmt.Printf("Server:   %s\n", cfg.Server)
	fmt.Printf("Username: %s\n", cfg.Username)
	fmt.Printf("User ID:  %d\n", cfg.UserID)
	return nil
}
