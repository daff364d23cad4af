package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/adanyl0v/go-tasks/internal/client"
	"github.com/adanyl0v/go-tasks/internal/models"
	"github.com/adanyl0v/go-tasks/internal/session"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case sessionStartedMsg:
		m.busy = false
		if msg.err != nil {
			m.status = errorStatus(msg.err)
		}
		return m.routed()
	case authDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.status = errorStatus(msg.err)
			return m, nil
		}
		m.status = statusLine{}
		m.register = newRegisterForm()
		return m.routed()
	case loggedOutMsg:
		m = m.cleared()
		m.status = statusLine{text: "Logged out"}
		return m.routed()
	case dataLoadedMsg:
		m.busy = false
		if msg.err != nil {
			return m.failed(msg.err)
		}
		m.tasks = msg.tasks
		m.labels = msg.labels
		m = m.clamped()
		return m, nil
	case mutationDoneMsg:
		if msg.err != nil {
			m.busy = false
			return m.failed(msg.err)
		}
		m.status = statusLine{text: msg.done}
		switch m.screen {
		case screenTaskForm:
			m.screen = screenTasks
		case screenLabelForm:
			m.screen = screenLabels
		}
		return m, loadCmd(m.deps)
	case profileSavedMsg:
		m.busy = false
		if msg.err != nil {
			return m.failed(msg.err)
		}
		m.status = statusLine{text: "Profile updated"}
		m.screen = screenTasks
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}

	switch m.screen {
	case screenLogin:
		return m.handleLoginKey(msg)
	case screenRegister:
		return m.handleRegisterKey(msg)
	case screenTasks:
		return m.handleTasksKey(msg)
	case screenTaskForm:
		return m.handleTaskFormKey(msg)
	case screenLabels:
		return m.handleLabelsKey(msg)
	case screenLabelForm:
		return m.handleLabelFormKey(msg)
	case screenProfile:
		return m.handleProfileKey(msg)
	}
	return m, nil
}

type formAction int

const (
	formNone formAction = iota
	formSubmit
	formCancel
)

// formKey moves focus, submits from the last field or with ctrl+s, and
// forwards everything else to the focused input.
func (m Model) formKey(f form, msg tea.KeyMsg) (form, formAction, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return f, formCancel, nil
	case msg.String() == "ctrl+s":
		return f, formSubmit, nil
	case msg.String() == "enter":
		if f.onLastField() {
			return f, formSubmit, nil
		}
		return f.move(1), formNone, nil
	case key.Matches(msg, m.keys.Next):
		return f.move(1), formNone, nil
	case key.Matches(msg, m.keys.Prev):
		return f.move(-1), formNone, nil
	}
	f, cmd := f.update(msg)
	return f, formNone, cmd
}

// failed reports err. An expired session drops all data and returns to
// login; any other error leaves the current screen untouched.
func (m Model) failed(err error) (Model, tea.Cmd) {
	m.status = errorStatus(err)
	if errors.Is(err, client.ErrSessionExpired) {
		m = m.cleared()
		m.screen = screenLogin
		m.login = newLoginForm()
	}
	return m, nil
}

func (m Model) cleared() Model {
	m.tasks = nil
	m.labels = nil
	m.filters = m.filters.Reset()
	m.cursor = 0
	m.labelCursor = 0
	m.pendingDelete = ""
	m.editingID = ""
	return m
}

func (m Model) clamped() Model {
	m.cursor = clamp(m.cursor, len(m.visible()))
	m.labelCursor = clamp(m.labelCursor, len(m.labels))
	return m
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func errorStatus(err error) statusLine {
	if errors.Is(err, session.ErrNoChanges) {
		return statusLine{text: "No changes to save", isError: true}
	}
	return statusLine{text: client.ErrorDetail(err), isError: true}
}

func findLabel(labels []models.Label, id string) (models.Label, bool) {
	for _, label := range labels {
		if label.ID == id {
			return label, true
		}
	}
	return models.Label{}, false
}
