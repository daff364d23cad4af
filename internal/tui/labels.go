package tui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/adanyl0v/go-tasks/internal/models"
	"github.com/adanyl0v/go-tasks/internal/session"
)

const defaultLabelColor = "#3B82F6"

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

func (m Model) handleLabelsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.pendingDelete != "" {
		id := m.pendingDelete
		m.pendingDelete = ""
		if !key.Matches(msg, m.keys.Confirm) {
			m.status = statusLine{text: "Delete cancelled"}
			return m, nil
		}
		m.busy = true
		return m, deleteLabelCmd(m.deps.Labels, id)
	}

	switch {
	case key.Matches(msg, m.keys.Back), msg.String() == "q":
		m.screen = screenTasks
		m.status = statusLine{}
	case key.Matches(msg, m.keys.Up):
		m.labelCursor = clamp(m.labelCursor-1, len(m.labels))
	case key.Matches(msg, m.keys.Down):
		m.labelCursor = clamp(m.labelCursor+1, len(m.labels))
	case key.Matches(msg, m.keys.Add):
		m.screen = screenLabelForm
		m.editingID = ""
		m.labelForm = newLabelForm(nil)
		m.status = statusLine{}
	case key.Matches(msg, m.keys.Edit):
		label, ok := m.selectedLabel()
		if !ok {
			return m, nil
		}
		m.screen = screenLabelForm
		m.editingID = label.ID
		m.labelForm = newLabelForm(&label)
		m.status = statusLine{}
	case key.Matches(msg, m.keys.Delete):
		label, ok := m.selectedLabel()
		if !ok {
			return m, nil
		}
		m.pendingDelete = label.ID
		m.status = statusLine{text: fmt.Sprintf("Delete label %q? It is removed from every task. (y/n)", label.Name)}
	}
	return m, nil
}

func newLabelForm(label *models.Label) form {
	title, name, color := "New label", "", defaultLabelColor
	if label != nil {
		title, name, color = "Edit label", label.Name, label.Color
	}
	return newForm(title,
		fieldSpec{label: "Name", value: name, limit: 50},
		fieldSpec{label: "Color (#RRGGBB)", value: color, limit: 7},
	)
}

func parseLabelForm(f form) (models.LabelCreate, error) {
	data := models.LabelCreate{Name: f.value(0), Color: f.value(1)}
	if data.Name == "" {
		return data, &session.ValidationError{Field: "Name", Message: "Name is required"}
	}
	if len(data.Name) > 50 {
		return data, &session.ValidationError{Field: "Name", Message: "Name must be at most 50 characters"}
	}
	if !hexColorPattern.MatchString(data.Color) {
		return data, &session.ValidationError{Field: "Color", Message: "Color must be a hex color like #FF8800"}
	}
	return data, nil
}

// diffLabel keeps only the fields of data that differ from label.
func diffLabel(label models.Label, data models.LabelCreate) (models.LabelUpdate, bool) {
	var update models.LabelUpdate
	if data.Name != label.Name {
		update.Name = &data.Name
	}
	if !strings.EqualFold(data.Color, label.Color) {
		update.Color = &data.Color
	}
	return update, update.Name != nil || update.Color != nil
}

func (m Model) handleLabelFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f, action, cmd := m.formKey(m.labelForm, msg)
	m.labelForm = f
	switch action {
	case formCancel:
		m.screen = screenLabels
		m.status = statusLine{}
		return m, nil
	case formSubmit:
		data, err := parseLabelForm(m.labelForm)
		if err != nil {
			m.status = errorStatus(err)
			return m, nil
		}
		if m.editingID == "" {
			m.busy = true
			return m, createLabelCmd(m.deps.Labels, data)
		}
		label, _ := findLabel(m.labels, m.editingID)
		update, changed := diffLabel(label, data)
		if !changed {
			m.status = errorStatus(session.ErrNoChanges)
			return m, nil
		}
		m.busy = true
		return m, updateLabelCmd(m.deps.Labels, m.editingID, update)
	}
	return m, cmd
}
