// ABOUTME: Three-step grant wizard view
// ABOUTME: Select a user, choose an access kind, then pick songs or fields
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/packshare/models"
	"github.com/harperreed/packshare/share"
)

// packOptions are the access kinds offered at pack scope, in menu order.
var packOptions = []struct {
	label string
	kind  models.AdditionKind
}{
	{"Full access (view + edit everything)", models.KindFull},
	{"Specific songs", models.KindSpecific},
	{"View only", models.KindPackShare},
}

func (m Model) renderWizardView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Add Collaborator"))
	s.WriteString("\n\n")

	switch m.session.Step() {
	case share.StepSelectUser:
		s.WriteString("Who gets access?\n\n")
		s.WriteString("> " + m.usernameInput.View())
		s.WriteString("\n")
		if m.wizardErr != "" {
			s.WriteString("\n")
			s.WriteString(errStyle.Render(m.wizardErr))
			s.WriteString("\n")
		}
		s.WriteString(helpStyle.Render("Enter: Select • Esc: Back"))

	case share.StepChoosePermissionType:
		user := m.session.PendingUser()
		s.WriteString(fmt.Sprintf("Access for %s:\n\n", user.Username))
		for i, option := range packOptions {
			if i == m.optionCursor {
				s.WriteString("▶ " + selectedStyle.Render(option.label))
			} else {
				s.WriteString("  " + option.label)
			}
			s.WriteString("\n")
		}
		s.WriteString(helpStyle.Render("↑/↓: Move • Enter: Choose • Esc: Back"))

	case share.StepSelectSongsOrFields:
		if m.session.Target == models.TargetPack {
			s.WriteString(m.renderSongPicker())
		} else {
			s.WriteString(m.renderFieldPicker())
		}
	}

	return s.String()
}

func (m Model) renderSongPicker() string {
	var s strings.Builder
	user := m.session.PendingUser()
	s.WriteString(fmt.Sprintf("Songs %s can edit:\n\n", user.Username))

	songs := m.session.Songs()
	for i, song := range songs {
		mark := "[ ]"
		if m.session.SongSelected(song.ID) {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %s", mark, song.Title)
		if i == m.optionCursor {
			s.WriteString("▶ " + selectedStyle.Render(line))
		} else {
			s.WriteString("  " + line)
		}
		s.WriteString("\n")
	}

	s.WriteString(helpStyle.Render("Space: Toggle • Enter: Stage • Esc: Back"))
	return s.String()
}

func (m Model) renderFieldPicker() string {
	var s strings.Builder
	user := m.session.PendingUser()
	s.WriteString(fmt.Sprintf("Fields for %s:\n\n", user.Username))

	for i, field := range m.songFields() {
		mark := "[ ]"
		if m.session.FieldSelected(field) {
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

	s.WriteString(helpStyle.Render("Space: Toggle • Enter: Stage • f: Full song edit • Esc: Back"))
	return s.String()
}

func (m Model) songFields() []string {
	song := m.session.Song()
	if song == nil {
		return nil
	}
	fields := append([]string(nil), song.Fields...)
	sort.Strings(fields)
	return fields
}

func (m Model) handleWizardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.session.Step() {
	case share.StepSelectUser:
		return m.handleUserSelectKeys(msg)
	case share.StepChoosePermissionType:
		return m.handlePermissionTypeKeys(msg)
	case share.StepSelectSongsOrFields:
		return m.handleSelectionKeys(msg)
	}
	return m, nil
}

func (m Model) handleUserSelectKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewMode = ViewCollaborators
		return m, nil
	case "enter":
		username := strings.TrimSpace(m.usernameInput.Value())
		if username == "" {
			return m, nil
		}
		if err := m.session.SelectUser(context.Background(), username); err != nil {
			m.wizardErr = err.Error()
			return m, nil
		}
		m.wizardErr = ""
		m.optionCursor = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.usernameInput, cmd = m.usernameInput.Update(msg)
	return m, cmd
}

func (m Model) handlePermissionTypeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.optionCursor > 0 {
			m.optionCursor--
		}
	case "down", "j":
		if m.optionCursor < len(packOptions)-1 {
			m.optionCursor++
		}
	case "enter":
		m.session.ChoosePermissionType(packOptions[m.optionCursor].kind)
		m.optionCursor = 0
		// Full and view-only stage immediately and the wizard resets.
		if m.session.Step() == share.StepSelectUser {
			m.viewMode = ViewCollaborators
		}
	case "esc":
		m.session.ResetWizard()
		m.viewMode = ViewCollaborators
	}
	return m, nil
}

func (m Model) handleSelectionKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	atPack := m.session.Target == models.TargetPack
	var count int
	if atPack {
		count = len(m.session.Songs())
	} else {
		count = len(m.songFields())
	}

	switch msg.String() {
	case "up", "k":
		if m.optionCursor > 0 {
			m.optionCursor--
		}
	case "down", "j":
		if m.optionCursor < count-1 {
			m.optionCursor++
		}
	case " ":
		if atPack {
			songs := m.session.Songs()
			if m.optionCursor < len(songs) {
				m.session.ToggleSongSelection(songs[m.optionCursor].ID)
			}
		} else {
			fields := m.songFields()
			if m.optionCursor < len(fields) {
				m.session.ToggleFieldSelection(fields[m.optionCursor])
			}
		}
	case "f":
		if !atPack {
			m.session.ChoosePermissionType(models.KindSongEdit)
			if m.session.Step() == share.StepSelectUser {
				m.viewMode = ViewCollaborators
			}
		}
	case "enter":
		if m.session.AddPendingChange() {
			m.optionCursor = 0
			m.viewMode = ViewCollaborators
		}
	case "esc":
		m.session.ResetWizard()
		m.optionCursor = 0
		m.viewMode = ViewCollaborators
	}
	return m, nil
}
