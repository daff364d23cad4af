package tui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/adanyl0v/go-tasks/internal/filter"
	"github.com/adanyl0v/go-tasks/internal/models"
)

var (
	headerStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	titleStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	statusStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	footerStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	labelStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	focusedLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	inputStyle        = lipgloss.NewStyle().PaddingLeft(2)
	selectedStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	doneStyle         = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("8"))
	overdueStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))

	priorityStyles = map[models.Priority]lipgloss.Style{
		models.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		models.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		models.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	}
)

const displayDeadlineLayout = "Jan 02 2006 15:04"

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	header := "go-tasks"
	if user := m.user(); user != nil && m.screen != screenLogin && m.screen != screenRegister {
		header += " | " + user.Username
	}

	var body string
	switch m.screen {
	case screenLoading:
		body = m.spinner.View() + " Loading..."
	case screenLogin:
		body = panelStyle.Render(m.login.view())
	case screenRegister:
		body = panelStyle.Render(m.register.view())
	case screenTasks:
		body = m.tasksView()
	case screenTaskForm:
		body = panelStyle.Render(m.taskForm.view())
	case screenLabels:
		body = m.labelsView()
	case screenLabelForm:
		body = panelStyle.Render(m.labelForm.view())
	case screenProfile:
		body = panelStyle.Render(m.profile.view())
	}

	lines := []string{headerStyle.Render(header), body}
	if m.busy && m.screen != screenLoading {
		lines = append(lines, m.spinner.View()+" Working...")
	}
	if m.status.text != "" {
		style := statusStyle
		if m.status.isError {
			style = errorStyle
		}
		lines = append(lines, style.Render(m.status.text))
	}

	keys := m.keys
	keys.screen = m.screen
	h := m.help
	h.ShowAll = m.showHelp
	lines = append(lines, footerStyle.Render(h.View(keys)))
	return strings.Join(lines, "\n")
}

func (m Model) tasksView() string {
	visible := m.visible()
	now := m.deps.Now()

	var b strings.Builder
	b.WriteString(filterSummary(m.filters, m.labels))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Showing %d of %d tasks\n", len(visible), len(m.tasks))
	if legend := labelLegend(m.labels, m.filters.LabelIDs); legend != "" {
		b.WriteString(legend)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case len(m.tasks) == 0:
		b.WriteString(footerStyle.Render("No tasks yet. Press a to add one."))
	case len(visible) == 0:
		b.WriteString(footerStyle.Render("No tasks match the filters. Press x to reset."))
	default:
		for i, task := range visible {
			b.WriteString(m.taskRow(task, i == m.cursor, now))
			b.WriteString("\n")
		}
	}

	list := panelStyle.Render(strings.TrimRight(b.String(), "\n"))
	if task, ok := m.selectedTask(); ok {
		return lipgloss.JoinVertical(lipgloss.Left, list, panelStyle.Render(m.taskDetail(task)))
	}
	return list
}

func (m Model) taskRow(task models.Task, selected bool, now time.Time) string {
	cursor := "  "
	if selected {
		cursor = "> "
	}
	check := "[ ]"
	if task.Completed {
		check = "[x]"
	}

	title := task.Title
	switch {
	case task.Completed:
		title = doneStyle.Render(title)
	case selected:
		title = selectedStyle.Render(title)
	}

	parts := []string{
		cursor + check,
		priorityStyles[task.Priority].Render(fmt.Sprintf("%-6s", task.Priority)),
		title,
		footerStyle.Render(task.Deadline.Local().Format(displayDeadlineLayout)),
	}
	if task.OverdueAt(now) {
		parts = append(parts, overdueStyle.Render("OVERDUE"))
	}
	if swatches := labelSwatches(task.LabelIDs, m.labels); swatches != "" {
		parts = append(parts, swatches)
	}
	return strings.Join(parts, " ")
}

func labelSwatches(ids []string, labels []models.Label) string {
	swatches := make([]string, 0, len(ids))
	for _, id := range ids {
		label, ok := findLabel(labels, id)
		if !ok {
			continue
		}
		swatches = append(swatches, swatch(label)+" "+label.Name)
	}
	return strings.Join(swatches, " ")
}

func swatch(label models.Label) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(label.Color)).Render("●")
}

func (m Model) taskDetail(task models.Task) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(task.Title))
	b.WriteString("\n")
	if task.Description == nil || strings.TrimSpace(*task.Description) == "" {
		b.WriteString(footerStyle.Render("No description"))
		return b.String()
	}
	b.WriteString(m.renderMarkdown(*task.Description))
	return b.String()
}

// renderMarkdown caches rendered descriptions by source text.
func (m Model) renderMarkdown(md string) string {
	if out, ok := m.markdown[md]; ok {
		return out
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		m.deps.Logger.Warn().
			Err(err).
			Msg("failed to render markdown")
		out = md
	}
	out = strings.TrimSpace(out)
	m.markdown[md] = out
	return out
}

// labelLegend lists the first nine labels with the digit that toggles them.
func labelLegend(labels []models.Label, active []string) string {
	n := min(len(labels), 9)
	items := make([]string, 0, n)
	for i, label := range labels[:n] {
		name := label.Name
		if slices.Contains(active, label.ID) {
			name = selectedStyle.Render("[" + name + "]")
		}
		items = append(items, fmt.Sprintf("%d %s %s", i+1, swatch(label), name))
	}
	return strings.Join(items, "  ")
}

func filterSummary(opts filter.Options, labels []models.Label) string {
	if !opts.Active() {
		return footerStyle.Render("Filters: none")
	}
	parts := make([]string, 0, 6)
	if opts.Priority != "" && opts.Priority != filter.PriorityAll {
		parts = append(parts, "priority="+string(opts.Priority))
	}
	if opts.Completed != "" && opts.Completed != filter.CompletionAll {
		parts = append(parts, "status="+string(opts.Completed))
	}
	if opts.Overdue != "" && opts.Overdue != filter.OverdueAll {
		parts = append(parts, "overdue="+string(opts.Overdue))
	}
	if len(opts.LabelIDs) > 0 {
		names := make([]string, 0, len(opts.LabelIDs))
		for _, id := range opts.LabelIDs {
			if label, ok := findLabel(labels, id); ok {
				names = append(names, label.Name)
			}
		}
		parts = append(parts, "labels="+strings.Join(names, ","))
	}
	parts = append(parts, fmt.Sprintf("sort=%s %s", opts.SortBy, opts.Order))
	return statusStyle.Render("Filters: " + strings.Join(parts, " "))
}

func (m Model) labelsView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Labels"))
	b.WriteString("\n\n")
	if len(m.labels) == 0 {
		b.WriteString(footerStyle.Render("No labels yet. Press a to add one."))
		return panelStyle.Render(b.String())
	}
	for i, label := range m.labels {
		cursor := "  "
		name := label.Name
		if i == m.labelCursor {
			cursor = "> "
			name = selectedStyle.Render(name)
		}
		filterKey := " "
		if i < 9 {
			filterKey = fmt.Sprint(i + 1)
		}
		fmt.Fprintf(&b, "%s%s %s %s %s\n", cursor, filterKey, swatch(label), name, footerStyle.Render(label.Color))
	}
	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}
