package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type field struct {
	label string
	input textinput.Model
}

// form is a vertical stack of text inputs with one focused at a time.
type form struct {
	title  string
	fields []field
	focus  int
}

type fieldSpec struct {
	label       string
	placeholder string
	value       string
	secret      bool
	limit       int
}

func newForm(title string, specs ...fieldSpec) form {
	f := form{title: title, fields: make([]field, len(specs))}
	for i, fs := range specs {
		in := textinput.New()
		in.Placeholder = fs.placeholder
		in.Prompt = ""
		in.CharLimit = fs.limit
		if fs.secret {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		in.SetValue(fs.value)
		f.fields[i] = field{label: fs.label, input: in}
	}
	f.fields[0].input.Focus()
	return f
}

func (f form) value(i int) string {
	return strings.TrimSpace(f.fields[i].input.Value())
}

// rawValue keeps surrounding spaces, for passwords.
func (f form) rawValue(i int) string {
	return f.fields[i].input.Value()
}

func (f form) onLastField() bool {
	return f.focus == len(f.fields)-1
}

func (f form) move(delta int) form {
	f.fields[f.focus].input.Blur()
	f.focus = (f.focus + delta + len(f.fields)) % len(f.fields)
	f.fields[f.focus].input.Focus()
	return f
}

func (f form) update(msg tea.Msg) (form, tea.Cmd) {
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return f, cmd
}

func (f form) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(f.title))
	b.WriteString("\n\n")
	for i, fd := range f.fields {
		label := labelStyle.Render(fd.label)
		if i == f.focus {
			label = focusedLabelStyle.Render(fd.label)
		}
		b.WriteString(label)
		b.WriteString("\n")
		b.WriteString(inputStyle.Render(fd.input.View()))
		b.WriteString("\n")
	}
	return b.String()
}
