// ABOUTME: Commit review view showing per-operation outcomes
// ABOUTME: Runs the commit asynchronously and lists successes and failures
package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) renderCommitView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Commit"))
	s.WriteString("\n\n")

	if m.committing {
		s.WriteString(pendingStyle.Render("⟳ Applying changes..."))
		s.WriteString("\n")
		return s.String()
	}

	if m.commitErr != nil {
		s.WriteString(errStyle.Render("Commit interrupted: " + m.commitErr.Error()))
		s.WriteString("\n\n")
	}

	if len(m.commitSummary) == 0 {
		s.WriteString(mutedStyle.Render("Nothing to commit."))
		s.WriteString("\n")
	} else {
		for _, line := range m.commitSummary {
			s.WriteString("  " + line)
			s.WriteString("\n")
		}
	}

	s.WriteString(helpStyle.Render("Enter/Esc: Back to collaborators"))
	return s.String()
}

func (m Model) handleCommitKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.committing {
		return m, nil
	}

	switch msg.String() {
	case "enter", "esc", "q":
		m.viewMode = ViewCollaborators
	}
	return m, nil
}
