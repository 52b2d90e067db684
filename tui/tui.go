// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Drives the collaborator list, the grant wizard, and commit review
package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/packshare/share"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewCollaborators ViewMode = iota
	ViewWizard
	ViewEditExisting
	ViewCommit
	ViewConfirmCancel
)

// Model is the main bubbletea model
type Model struct {
	session  *share.Session
	viewMode ViewMode

	// Collaborator list state
	selectedRow int

	// Wizard state
	usernameInput textinput.Model
	wizardErr     string
	optionCursor  int

	// Commit state
	committing    bool
	commitErr     error
	commitSummary []string

	// UI state
	width  int
	height int
	err    error
}

// NewModel creates a new TUI model around an open collaboration session.
func NewModel(session *share.Session) Model {
	input := textinput.New()
	input.Placeholder = "Username"
	input.CharLimit = 100

	return Model{
		session:       session,
		viewMode:      ViewCollaborators,
		usernameInput: input,
		width:         80,
		height:        24,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case CommitCompleteMsg:
		return m.handleCommitComplete(msg)
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewCollaborators:
		return m.renderCollaboratorsView()
	case ViewWizard:
		return m.renderWizardView()
	case ViewEditExisting:
		return m.renderEditExistingView()
	case ViewCommit:
		return m.renderCommitView()
	case ViewConfirmCancel:
		return m.renderConfirmCancelView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The wizard's username input needs raw keystrokes, so the global quit
	// shortcut only applies outside text entry.
	if m.viewMode != ViewWizard || m.session.Step() != share.StepSelectUser {
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		}
	}

	switch m.viewMode {
	case ViewCollaborators:
		return m.handleCollaboratorsKeys(msg)
	case ViewWizard:
		return m.handleWizardKeys(msg)
	case ViewEditExisting:
		return m.handleEditExistingKeys(msg)
	case ViewCommit:
		return m.handleCommitKeys(msg)
	case ViewConfirmCancel:
		return m.handleConfirmCancelKeys(msg)
	}

	return m, nil
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Underline(true)

	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255")).
			Bold(true)

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	removalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Strikethrough(true)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)
)
