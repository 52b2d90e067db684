// ABOUTME: Editing-existing view for one collaborator's field assignments
// ABOUTME: Saves immediately on confirm, bypassing the staged-change queue
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) renderEditExistingView() string {
	editing := m.session.Editing()
	if editing == nil {
		return ""
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render(fmt.Sprintf("EDIT FIELDS: %s", editing.Username)))
	s.WriteString("\n\n")

	for i, field := range m.songFields() {
		mark := "[ ]"
		if editing.Selected[field] {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %s", mark, field)
		if i == m.optionCursor {
			s.WriteString("▶ " + selectedStyle.Render(line))
		} else {
			s.WriteString("  " + line)
		}
		s.WriteString("\n")
	}

	if m.err != nil {
		s.WriteString("\n")
		s.WriteString(errStyle.Render("Error: " + m.err.Error()))
		s.WriteString("\n")
	}

	s.WriteString(helpStyle.Render("Space: Toggle • Enter: Save • Esc: Cancel"))
	return s.String()
}

func (m Model) handleEditExistingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	fields := m.songFields()

	switch msg.String() {
	case "up", "k":
		if m.optionCursor > 0 {
			m.optionCursor--
		}
	case "down", "j":
		if m.optionCursor < len(fields)-1 {
			m.optionCursor++
		}
	case " ":
		if m.optionCursor < len(fields) {
			m.session.ToggleExistingField(fields[m.optionCursor])
		}
	case "enter":
		if err := m.session.SaveEdit(context.Background()); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.optionCursor = 0
		m.viewMode = ViewCollaborators
	case "esc":
		m.session.CancelEdit()
		m.err = nil
		m.optionCursor = 0
		m.viewMode = ViewCollaborators
	}

	return m, nil
}
