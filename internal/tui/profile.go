package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/adanyl0v/go-tasks/internal/models"
	"github.com/adanyl0v/go-tasks/internal/session"
)

func newProfileForm(user models.User) form {
	seed := session.NewProfileForm(user)
	return newForm("Profile",
		fieldSpec{label: "Username", value: seed.Username, limit: 50},
		fieldSpec{label: "Email", value: seed.Email, limit: 255},
		fieldSpec{label: "Current password", secret: true, limit: 100},
		fieldSpec{label: "New password", secret: true, limit: 100},
		fieldSpec{label: "Confirm new password", secret: true, limit: 100},
	)
}

func profileFormValues(f form) session.ProfileForm {
	pf := session.ProfileForm{
		Username:        f.value(0),
		Email:           f.value(1),
		CurrentPassword: f.rawValue(2),
		NewPassword:     f.rawValue(3),
		ConfirmPassword: f.rawValue(4),
	}
	pf.ChangePassword = pf.CurrentPassword != "" || pf.NewPassword != "" || pf.ConfirmPassword != ""
	return pf
}

func (m Model) handleProfileKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f, action, cmd := m.formKey(m.profile, msg)
	m.profile = f
	switch action {
	case formCancel:
		m.screen = screenTasks
		m.status = statusLine{}
		return m, nil
	case formSubmit:
		m.busy = true
		m.status = statusLine{}
		return m, tea.Batch(m.spinner.Tick, updateProfileCmd(m.deps.Session, profileFormValues(m.profile)))
	}
	return m, cmd
}
