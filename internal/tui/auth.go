package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/adanyl0v/go-tasks/internal/session"
)

func newLoginForm() form {
	return newForm("Log in",
		fieldSpec{label: "Email", placeholder: "you@example.com", limit: 255},
		fieldSpec{label: "Password", secret: true, limit: 100},
	)
}

func newRegisterForm() form {
	return newForm("Create account",
		fieldSpec{label: "Email", placeholder: "you@example.com", limit: 255},
		fieldSpec{label: "Username", placeholder: "letters, digits, _", limit: 50},
		fieldSpec{label: "Password", secret: true, limit: 100},
		fieldSpec{label: "Confirm password", secret: true, limit: 100},
	)
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+r" {
		m.screen = screenRegister
		m.register = newRegisterForm()
		m.status = statusLine{}
		return m, nil
	}

	f, action, cmd := m.formKey(m.login, msg)
	m.login = f
	if action != formSubmit {
		return m, cmd
	}

	m.busy = true
	m.status = statusLine{}
	return m, tea.Batch(m.spinner.Tick, loginCmd(m.deps.Session, session.LoginForm{
		Email:    m.login.value(0),
		Password: m.login.rawValue(1),
	}))
}

func (m Model) handleRegisterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f, action, cmd := m.formKey(m.register, msg)
	m.register = f
	switch action {
	case formCancel:
		m.screen = screenLogin
		m.status = statusLine{}
		return m, nil
	case formSubmit:
		m.busy = true
		m.status = statusLine{}
		return m, tea.Batch(m.spinner.Tick, registerCmd(m.deps.Session, session.RegisterForm{
			Email:    m.register.value(0),
			Username: m.register.value(1),
			Password: m.register.rawValue(2),
			Confirm:  m.register.rawValue(3),
		}))
	}
	return m, cmd
}
