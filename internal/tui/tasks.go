package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/adanyl0v/go-tasks/internal/filter"
	"github.com/adanyl0v/go-tasks/internal/models"
	"github.com/adanyl0v/go-tasks/internal/session"
)

const deadlineLayout = "2006-01-02 15:04"

func (m Model) handleTasksKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.pendingDelete != "" {
		id := m.pendingDelete
		m.pendingDelete = ""
		if !key.Matches(msg, m.keys.Confirm) {
			m.status = statusLine{text: "Delete cancelled"}
			return m, nil
		}
		m.busy = true
		return m, deleteTaskCmd(m.deps.Tasks, id)
	}

	switch {
	case msg.String() == "q":
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.cursor = clamp(m.cursor-1, len(m.visible()))
	case key.Matches(msg, m.keys.Down):
		m.cursor = clamp(m.cursor+1, len(m.visible()))
	case key.Matches(msg, m.keys.Add):
		m.screen = screenTaskForm
		m.editingID = ""
		m.taskForm = newTaskForm(nil, m.labels, m.deps.Now())
		m.status = statusLine{}
	case key.Matches(msg, m.keys.Edit):
		task, ok := m.selectedTask()
		if !ok {
			return m, nil
		}
		m.screen = screenTaskForm
		m.editingID = task.ID
		m.taskForm = newTaskForm(&task, m.labels, m.deps.Now())
		m.status = statusLine{}
	case key.Matches(msg, m.keys.Toggle):
		task, ok := m.selectedTask()
		if !ok {
			return m, nil
		}
		m.busy = true
		return m, toggleTaskCmd(m.deps.Tasks, task.ID)
	case key.Matches(msg, m.keys.Delete):
		task, ok := m.selectedTask()
		if !ok {
			return m, nil
		}
		m.pendingDelete = task.ID
		m.status = statusLine{text: fmt.Sprintf("Delete %q? (y/n)", task.Title)}
	case key.Matches(msg, m.keys.Priority):
		m.filters.Priority = nextPriority(m.filters.Priority)
	case key.Matches(msg, m.keys.Complete):
		m.filters.Completed = nextCompletion(m.filters.Completed)
	case key.Matches(msg, m.keys.Overdue):
		m.filters.Overdue = nextOverdue(m.filters.Overdue)
	case key.Matches(msg, m.keys.SortBy):
		m.filters.SortBy = nextSortKey(m.filters.SortBy)
	case key.Matches(msg, m.keys.Order):
		if m.filters.Order == filter.OrderAsc {
			m.filters.Order = filter.OrderDesc
		} else {
			m.filters.Order = filter.OrderAsc
		}
	case key.Matches(msg, m.keys.Label):
		i := int(msg.Runes[0] - '1')
		if i < len(m.labels) {
			m.filters = m.filters.ToggleLabel(m.labels[i].ID)
		}
	case key.Matches(msg, m.keys.Reset):
		m.filters = m.filters.Reset()
		m.cursor = 0
	case key.Matches(msg, m.keys.Refresh):
		m.busy = true
		return m, tea.Batch(m.spinner.Tick, loadCmd(m.deps))
	case key.Matches(msg, m.keys.Labels):
		m.screen = screenLabels
		m.status = statusLine{}
	case key.Matches(msg, m.keys.Profile):
		user := m.user()
		if user == nil {
			return m, nil
		}
		m.screen = screenProfile
		m.profile = newProfileForm(*user)
		m.status = statusLine{}
	case key.Matches(msg, m.keys.Logout):
		m.busy = true
		return m, tea.Batch(m.spinner.Tick, logoutCmd(m.deps.Session))
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
	}
	return m.clamped(), nil
}

func nextPriority(p models.Priority) models.Priority {
	switch p {
	case models.PriorityHigh:
		return models.PriorityMedium
	case models.PriorityMedium:
		return models.PriorityLow
	case models.PriorityLow:
		return filter.PriorityAll
	default:
		return models.PriorityHigh
	}
}

func nextCompletion(c filter.Completion) filter.Completion {
	switch c {
	case filter.CompletionCompleted:
		return filter.CompletionIncomplete
	case filter.CompletionIncomplete:
		return filter.CompletionAll
	default:
		return filter.CompletionCompleted
	}
}

func nextOverdue(o filter.Overdue) filter.Overdue {
	switch o {
	case filter.OverdueOnly:
		return filter.OverdueNot
	case filter.OverdueNot:
		return filter.OverdueAll
	default:
		return filter.OverdueOnly
	}
}

func nextSortKey(k filter.SortKey) filter.SortKey {
	switch k {
	case filter.SortDeadline:
		return filter.SortPriority
	case filter.SortPriority:
		return filter.SortCreatedAt
	default:
		return filter.SortDeadline
	}
}

// newTaskForm seeds the form from task, or with defaults when task is nil.
func newTaskForm(task *models.Task, labels []models.Label, now time.Time) form {
	title := "New task"
	values := [5]string{
		2: string(models.PriorityMedium),
		3: now.Add(24 * time.Hour).Local().Format(deadlineLayout),
	}
	if task != nil {
		title = "Edit task"
		values[0] = task.Title
		if task.Description != nil {
			values[1] = *task.Description
		}
		values[2] = string(task.Priority)
		values[3] = task.Deadline.Local().Format(deadlineLayout)
		names := make([]string, 0, len(task.LabelIDs))
		for _, id := range task.LabelIDs {
			if label, ok := findLabel(labels, id); ok {
				names = append(names, label.Name)
			}
		}
		values[4] = strings.Join(names, ", ")
	}

	return newForm(title,
		fieldSpec{label: "Title", value: values[0], limit: 200},
		fieldSpec{label: "Description (markdown)", value: values[1], limit: 1000},
		fieldSpec{label: "Priority (High, Medium, Low)", value: values[2], limit: 6},
		fieldSpec{label: "Deadline (YYYY-MM-DD HH:MM)", value: values[3], limit: 16},
		fieldSpec{label: "Labels (comma-separated names)", value: values[4]},
	)
}

// parseTaskForm validates the form and resolves label names to ids.
func parseTaskForm(f form, labels []models.Label) (models.TaskCreate, error) {
	var data models.TaskCreate

	data.Title = f.value(0)
	if data.Title == "" {
		return data, &session.ValidationError{Field: "Title", Message: "Title is required"}
	}
	if description := f.value(1); description != "" {
		data.Description = &description
	}

	priority, ok := parsePriority(f.value(2))
	if !ok {
		return data, &session.ValidationError{Field: "Priority", Message: "Priority must be High, Medium or Low"}
	}
	data.Priority = priority

	deadline, err := parseDeadline(f.value(3))
	if err != nil {
		return data, &session.ValidationError{Field: "Deadline", Message: "Deadline must look like 2026-01-31 18:00"}
	}
	data.Deadline = deadline

	data.LabelIDs = []string{}
	for _, name := range strings.Split(f.value(4), ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		id, found := labelIDByName(labels, name)
		if !found {
			return data, &session.ValidationError{Field: "Labels", Message: fmt.Sprintf("Unknown label: %s", name)}
		}
		data.LabelIDs = append(data.LabelIDs, id)
	}
	return data, nil
}

func parsePriority(s string) (models.Priority, bool) {
	for _, p := range models.Priorities {
		if strings.EqualFold(s, string(p)) {
			return p, true
		}
	}
	return "", false
}

func parseDeadline(s string) (time.Time, error) {
	t, err := time.ParseInLocation(deadlineLayout, s, time.Local)
	if err == nil {
		return t, nil
	}
	return time.ParseInLocation(time.DateOnly, s, time.Local)
}

func labelIDByName(labels []models.Label, name string) (string, bool) {
	for _, label := range labels {
		if strings.EqualFold(label.Name, name) {
			return label.ID, true
		}
	}
	return "", false
}

func (m Model) handleTaskFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f, action, cmd := m.formKey(m.taskForm, msg)
	m.taskForm = f
	switch action {
	case formCancel:
		m.screen = screenTasks
		m.status = statusLine{}
		return m, nil
	case formSubmit:
		data, err := parseTaskForm(m.taskForm, m.labels)
		if err != nil {
			m.status = errorStatus(err)
			return m, nil
		}
		m.busy = true
		if m.editingID == "" {
			return m, createTaskCmd(m.deps.Tasks, data)
		}
		return m, updateTaskCmd(m.deps.Tasks, m.editingID, models.TaskUpdate{
			Title:       &data.Title,
			Description: descriptionOrEmpty(data.Description),
			Priority:    &data.Priority,
			Deadline:    &data.Deadline,
			LabelIDs:    &data.LabelIDs,
		})
	}
	return m, cmd
}

func descriptionOrEmpty(description *string) *string {
	if description != nil {
		return description
	}
	empty := ""
	return &empty
}
