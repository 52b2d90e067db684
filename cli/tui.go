// ABOUTME: TUI subcommand
// ABOUTME: Opens a collaboration session and runs the full-screen wizard
package cli

import (
	"context"
	"flag"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/packshare/share"
	"github.com/harperreed/packshare/tui"
)

// TUICommand opens the interactive sharing dialog for a pack or song.
func TUICommand(svc share.Service, journal *share.Journal, currentUser string, args []string) error {
	fs := flag.NewFlagSet("tui", flag.ExitOnError)
	packID := fs.Int64("pack", 0, "Pack ID")
	songID := fs.Int64("song", 0, "Song ID")
	_ = fs.Parse(args)

	target, targetID, err := parseTargetFlags(*packID, *songID)
	if err != nil {
		return err
	}

	session, err := share.OpenSession(context.Background(), svc, target, targetID, currentUser)
	if err != nil {
		return err
	}
	if journal != nil {
		session.AttachJournal(journal)
	}

	program := tea.NewProgram(tui.NewModel(session), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI failed: %w", err)
	}
	return nil
}
