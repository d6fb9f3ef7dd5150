package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dukerupert/chorecal/internal/model"
	"github.com/dukerupert/chorecal/internal/view"
)

const (
	dayLabelLayout     = "Monday, January 2, 2006"
	unknownColor       = "#9E9E9E"
	minColumnWidth     = 22
	defaultColumnWidth = 28
	transcriptLines    = 10
)

// Theme holds the colors used outside of user colors.
type Theme struct {
	Faint    lipgloss.Color
	Border   lipgloss.Color
	Selected lipgloss.Color
	Accent   lipgloss.Color
	Danger   lipgloss.Color
}

var DefaultTheme = Theme{
	Faint:    lipgloss.Color("245"),
	Border:   lipgloss.Color("240"),
	Selected: lipgloss.Color("237"),
	Accent:   lipgloss.Color("39"),
	Danger:   lipgloss.Color("196"),
}

// column is one user's chores on the selected day. The unknown column
// collects chores whose user was deleted.
type column struct {
	user    model.User
	unknown bool
	chores  []model.Chore
}

func columns(s view.State) []column {
	cols := make([]column, 0, len(s.Users)+1)
	for _, u := range s.Users {
		cols = append(cols, column{user: u, chores: s.EventsForUser(u.ID)})
	}
	if orphans := s.UnassignedEvents(); len(orphans) > 0 {
		cols = append(cols, column{
			user:    model.User{Name: view.UnknownOwner, Color: unknownColor},
			unknown: true,
			chores:  orphans,
		})
	}
	return cols
}

func cardLabel(c model.Chore) string {
	return c.At.Format(model.CardTimeLayout) + " — " + c.Title
}

func (m Model) View() string {
	theme := DefaultTheme
	sections := []string{m.renderHeader(theme), m.renderGrid(theme)}

	switch {
	case m.state.Alert != "":
		sections = append(sections, renderAlert(theme, m.state.Alert))
	case m.confirm != nil:
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.Danger).
			Render(m.confirm.prompt+" (y/n)"))
	}

	if m.form != nil {
		sections = append(sections, m.renderForm(theme))
	} else if m.state.Modals.Chat {
		sections = append(sections, m.renderChat(theme))
	}

	if m.form != nil || m.state.Modals.Chat {
		sections = append(sections, m.help.View(m.formKeys))
	} else {
		sections = append(sections, m.help.View(m.keys))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader(theme Theme) string {
	day := lipgloss.NewStyle().Bold(true).Render(m.state.Day.Format(dayLabelLayout))
	faint := lipgloss.NewStyle().Foreground(theme.Faint)
	return faint.Render("◀ h  ") + day + faint.Render("  l ▶   t today") + "\n"
}

func (m Model) columnWidth(n int) int {
	if m.width <= 0 || n == 0 {
		return defaultColumnWidth
	}
	// Two columns of border per box.
	w := m.width/n - 2
	if w < minColumnWidth {
		w = minColumnWidth
	}
	return w
}

func (m Model) renderGrid(theme Theme) string {
	cols := columns(m.state)
	if len(cols) == 0 {
		return lipgloss.NewStyle().Foreground(theme.Faint).
			Render("No users yet. Press u to add one.")
	}

	width := m.columnWidth(len(cols))
	boxes := make([]string, len(cols))
	for i, col := range cols {
		boxes[i] = m.renderColumn(theme, col, i == m.col, width)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

func (m Model) renderColumn(theme Theme, col column, focused bool, width int) string {
	name := lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.Color(col.user.Color)).
		Render(col.user.Name)
	lines := []string{name}

	if len(col.chores) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.Faint).Render("No chores"))
	}
	for i, c := range col.chores {
		card := lipgloss.NewStyle().Width(width)
		if focused && i == m.row {
			card = card.Background(theme.Selected).Bold(true)
		}
		text := cardLabel(c)
		if c.Description != "" {
			text += "\n" + lipgloss.NewStyle().Foreground(theme.Faint).Render(c.Description)
		}
		lines = append(lines, card.Render(text))
	}

	border := theme.Border
	if focused {
		border = theme.Accent
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(width).
		Render(strings.Join(lines, "\n"))
}

func (m Model) renderForm(theme Theme) string {
	f := m.form
	lines := []string{lipgloss.NewStyle().Bold(true).Render(f.title), ""}

	for i, fd := range f.fields {
		label := lipgloss.NewStyle().Width(13)
		if i == f.focus {
			label = label.Foreground(theme.Accent).Bold(true)
		}
		value := fd.input.View()
		if fd.isSelect() {
			value = "‹ " + selectLabel(fd) + " ›"
		}
		lines = append(lines, label.Render(fd.label+":")+value)
	}

	if m.state.FormError != "" {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(theme.Danger).Render(m.state.FormError))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Accent).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

func selectLabel(f field) string {
	if len(f.options) == 0 {
		return "no users"
	}
	return f.options[f.selected].label
}

func (m Model) renderChat(theme Theme) string {
	transcript := m.state.Transcript
	if len(transcript) > transcriptLines {
		transcript = transcript[len(transcript)-transcriptLines:]
	}

	bot := lipgloss.NewStyle().Foreground(theme.Accent).Render("Bot: ")
	you := lipgloss.NewStyle().Bold(true).Render("You: ")
	lines := []string{lipgloss.NewStyle().Bold(true).Render("Assistant"), ""}
	for _, msg := range transcript {
		prefix := bot
		if msg.Role == model.RoleUser {
			prefix = you
		}
		lines = append(lines, prefix+msg.Text)
	}
	lines = append(lines, "", m.chat.View())

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

func renderAlert(theme Theme, text string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.ThickBorder()).
		BorderForeground(theme.Danger).
		Padding(0, 1).
		Render(text + "\n\n[enter] OK")
}
