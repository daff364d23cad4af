// Package tui is the terminal front end. The top-level Model owns navigation:
// it asks the session where to go after every auth change and sends the user
// back to login when the session expires.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/adanyl0v/go-tasks/internal/filter"
	"github.com/adanyl0v/go-tasks/internal/models"
	"github.com/adanyl0v/go-tasks/internal/session"
)

type screen string

const (
	screenLoading   screen = "loading"
	screenLogin     screen = "login"
	screenRegister  screen = "register"
	screenTasks     screen = "tasks"
	screenTaskForm  screen = "task_form"
	screenLabels    screen = "labels"
	screenLabelForm screen = "label_form"
	screenProfile   screen = "profile"
)

type statusLine struct {
	text    string
	isError bool
}

type Model struct {
	deps Deps

	screen   screen
	width    int
	status   statusLine
	busy     bool
	quitting bool

	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	showHelp bool

	login    form
	register form
	taskForm form
	// editingID is the task or label being edited, empty when creating.
	editingID string
	labelForm form
	profile   form

	tasks   []models.Task
	labels  []models.Label
	filters filter.Options
	cursor  int
	// labelCursor indexes labels on the labels screen.
	labelCursor int
	// pendingDelete is the id awaiting a y/n confirmation.
	pendingDelete string

	markdown map[string]string
}

func NewModel(deps Deps) Model {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	m := Model{
		deps:     deps,
		screen:   screenLoading,
		keys:     newKeyMap(),
		help:     help.New(),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		filters:  filter.Default(),
		markdown: make(map[string]string),
		busy:     true,
	}
	m.login = newLoginForm()
	m.register = newRegisterForm()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, startCmd(m.deps.Session))
}

type sessionStartedMsg struct{ err error }

type authDoneMsg struct{ err error }

type loggedOutMsg struct{}

type dataLoadedMsg struct {
	tasks  []models.Task
	labels []models.Label
	err    error
}

// mutationDoneMsg reports a create, update or delete. On success the
// lists are reloaded from the backend.
type mutationDoneMsg struct {
	done string
	err  error
}

type profileSavedMsg struct {
	user *models.User
	err  error
}

// visible returns the tasks after the current filters.
func (m Model) visible() []models.Task {
	return filter.Apply(m.tasks, m.filters, m.deps.Now())
}

func (m Model) selectedTask() (models.Task, bool) {
	tasks := m.visible()
	if m.cursor < 0 || m.cursor >= len(tasks) {
		return models.Task{}, false
	}
	return tasks[m.cursor], true
}

func (m Model) selectedLabel() (models.Label, bool) {
	if m.labelCursor < 0 || m.labelCursor >= len(m.labels) {
		return models.Label{}, false
	}
	return m.labels[m.labelCursor], true
}

func (m Model) user() *models.User {
	return m.deps.Session.User()
}

// routed moves to the screen the session asks for.
func (m Model) routed() (Model, tea.Cmd) {
	switch m.deps.Session.Route() {
	case session.RouteTasks:
		m.screen = screenTasks
		m.busy = true
		return m, loadCmd(m.deps)
	case session.RouteLogin:
		m.screen = screenLogin
		m.login = newLoginForm()
		m.busy = false
		return m, nil
	default:
		m.screen = screenLoading
		return m, nil
	}
}
