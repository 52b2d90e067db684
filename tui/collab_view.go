// ABOUTME: Main TUI view listing collaborators and staged changes
// ABOUTME: Entry point for the grant wizard, removals, and commits
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/packshare/models"
)

func (m Model) renderCollaboratorsView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(m.targetLabel()))
	s.WriteString("\n\n")

	summaries := m.session.Summaries()
	if len(summaries) == 0 {
		s.WriteString(mutedStyle.Render("No collaborators yet."))
		s.WriteString("\n")
	} else {
		s.WriteString(headerStyle.Render("Collaborators"))
		s.WriteString("\n\n")
		for i, summary := range summaries {
			var row strings.Builder
			if i == m.selectedRow {
				row.WriteString("▶ ")
			} else {
				row.WriteString("  ")
			}

			line := fmt.Sprintf("%-16s %s", summary.Username, summary.Summary)
			switch {
			case m.session.IsRemovalPending(summary.UserID):
				row.WriteString(removalStyle.Render(line))
				row.WriteString(pendingStyle.Render("  (removal pending)"))
			case i == m.selectedRow:
				row.WriteString(selectedStyle.Render(line))
			default:
				row.WriteString(line)
			}

			s.WriteString(row.String())
			s.WriteString("\n")
		}
	}

	additions := m.session.PendingAdditions()
	if len(additions) > 0 {
		s.WriteString("\n")
		s.WriteString(headerStyle.Render("Staged Additions"))
		s.WriteString("\n\n")
		for i, addition := range additions {
			s.WriteString(pendingStyle.Render(fmt.Sprintf("  %d. %s", i+1, m.describeAddition(addition))))
			s.WriteString("\n")
		}
	}

	if m.err != nil {
		s.WriteString("\n")
		s.WriteString(errStyle.Render("Error: " + m.err.Error()))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(m.renderCollaboratorsHelp())
	return s.String()
}

func (m Model) targetLabel() string {
	if m.session.Target == models.TargetSong {
		if song := m.session.Song(); song != nil {
			return fmt.Sprintf("Sharing: %s", song.Title)
		}
		return fmt.Sprintf("Sharing song %d", m.session.TargetID)
	}
	return fmt.Sprintf("Sharing pack %d", m.session.TargetID)
}

func (m Model) describeAddition(a models.Addition) string {
	switch a.Kind {
	case models.KindFull:
		return fmt.Sprintf("%s: full access", a.Username)
	case models.KindPackShare:
		return fmt.Sprintf("%s: view only", a.Username)
	case models.KindSongEdit:
		return fmt.Sprintf("%s: song edit", a.Username)
	case models.KindSpecific:
		if m.session.Target == models.TargetSong {
			return fmt.Sprintf("%s: fields %s", a.Username, strings.Join(a.Fields, ", "))
		}
		return fmt.Sprintf("%s: %d selected songs", a.Username, len(a.SongIDs))
	}
	return a.Username
}

func (m Model) renderCollaboratorsHelp() string {
	help := []string{
		"a: Add collaborator",
		"r: Remove",
		"u: Undo removal",
		"d: Drop staged addition",
	}
	if m.session.Target == models.TargetSong {
		help = append(help, "e: Edit fields")
	}
	help = append(help, "c: Commit", "esc: Cancel", "q: Quit")
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleCollaboratorsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	summaries := m.session.Summaries()

	switch msg.String() {
	case "q":
		if m.session.HasPendingChanges() {
			m.viewMode = ViewConfirmCancel
			return m, nil
		}
		return m, tea.Quit
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < len(summaries)-1 {
			m.selectedRow++
		}
	case "a":
		m.err = nil
		m.wizardErr = ""
		m.usernameInput.SetValue("")
		m.usernameInput.Focus()
		m.viewMode = ViewWizard
		return m, nil
	case "r":
		if m.selectedRow < len(summaries) {
			m.session.RequestRemoval(summaries[m.selectedRow].UserID)
		}
	case "u":
		if m.selectedRow < len(summaries) {
			m.session.UndoRemoval(summaries[m.selectedRow].UserID)
		}
	case "d":
		if n := len(m.session.PendingAdditions()); n > 0 {
			m.session.RemovePendingChange(n - 1)
		}
	case "e":
		if m.session.Target == models.TargetSong && m.selectedRow < len(summaries) {
			if err := m.session.BeginEditExisting(context.Background(), summaries[m.selectedRow].UserID); err != nil {
				m.err = err
				return m, nil
			}
			m.err = nil
			m.viewMode = ViewEditExisting
		}
	case "c":
		if m.session.HasPendingChanges() {
			m.err = nil
			m.committing = true
			m.commitErr = nil
			m.commitSummary = nil
			m.viewMode = ViewCommit
			return m, m.commitChanges()
		}
	case "esc":
		if m.session.HasPendingChanges() {
			m.viewMode = ViewConfirmCancel
			return m, nil
		}
		return m, tea.Quit
	}

	return m, nil
}

// CommitCompleteMsg is sent when an asynchronous commit finishes.
type CommitCompleteMsg struct {
	Result models.CommitResult
	Err    error
}

func (m Model) commitChanges() tea.Cmd {
	session := m.session
	return func() tea.Msg {
		result, err := session.CommitAll(context.Background())
		return CommitCompleteMsg{Result: result, Err: err}
	}
}

func (m *Model) handleCommitComplete(msg CommitCompleteMsg) (tea.Model, tea.Cmd) {
	m.committing = false
	m.commitErr = msg.Err

	m.commitSummary = nil
	for _, op := range msg.Result.Outcomes {
		if op.Succeeded() {
			m.commitSummary = append(m.commitSummary, okStyle.Render("✓ ")+describeOutcome(op))
		} else {
			m.commitSummary = append(m.commitSummary, errStyle.Render("✗ ")+describeOutcome(op)+errStyle.Render(": "+op.Error))
		}
	}

	m.selectedRow = 0
	return *m, nil
}

func describeOutcome(op models.OpOutcome) string {
	switch op.Kind {
	case models.OpGrantPack:
		return fmt.Sprintf("pack grant for user %d", op.UserID)
	case models.OpGrantSong:
		return fmt.Sprintf("song %d grant for user %d", op.SongID, op.UserID)
	case models.OpRevokePack:
		return fmt.Sprintf("pack revocation for user %d", op.UserID)
	case models.OpRevokeSong:
		return fmt.Sprintf("song %d revocation for user %d", op.SongID, op.UserID)
	case models.OpReplaceAssignments:
		return fmt.Sprintf("assignment rewrite on song %d", op.SongID)
	}
	return string(op.Kind)
}
