package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/toastbox/internal/toast"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginBottom(1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(1, 2)

	labelStyle    = lipgloss.NewStyle().Width(14).Foreground(lipgloss.Color("7"))
	focusedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	optionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))

	buttonStyle = lipgloss.NewStyle().
			Padding(0, 2).
			MarginRight(1).
			Background(lipgloss.Color("236"))
	focusedButtonStyle = buttonStyle.
				Background(lipgloss.Color("12")).
				Foreground(lipgloss.Color("0")).
				Bold(true)

	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	statusErrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// View renders the TUI.
func (m Model) View() string {
	body := m.viewForm()
	if m.showHelp {
		body = lipgloss.JoinVertical(lipgloss.Left, body, "", m.help.FullHelpView(m.keys.FullHelp()))
	}

	footer := m.help.ShortHelpView(m.keys.ShortHelp())
	if m.statusMsg != "" {
		style := statusStyle
		if m.statusErr {
			style = statusErrStyle
		}
		footer = style.Render(m.statusMsg) + "  " + footer
	}

	if m.width == 0 || m.height == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, body, m.viewToasts(), footer)
	}

	now := m.now()
	top := joinCorners(
		m.renderer.Render(m.toaster.Visible(toast.PositionTopLeft), toast.PositionTopLeft, now),
		m.renderer.Render(m.toaster.Visible(toast.PositionTopRight), toast.PositionTopRight, now),
		m.width, lipgloss.Top,
	)
	bottom := joinCorners(
		m.renderer.Render(m.toaster.Visible(toast.PositionBottomLeft), toast.PositionBottomLeft, now),
		m.renderer.Render(m.toaster.Visible(toast.PositionBottomRight), toast.PositionBottomRight, now),
		m.width, lipgloss.Bottom,
	)

	middle := m.height - lipgloss.Height(top) - lipgloss.Height(bottom) - lipgloss.Height(footer)
	if middle < lipgloss.Height(body) {
		// Too small to keep the corners free; stack everything.
		return lipgloss.JoinVertical(lipgloss.Left, top, body, bottom, footer)
	}
	center := lipgloss.Place(m.width, middle, lipgloss.Center, lipgloss.Center, body)
	return lipgloss.JoinVertical(lipgloss.Left, top, center, bottom, footer)
}

// viewToasts lists the toasts of every corner, for when the window size
// is unknown.
func (m Model) viewToasts() string {
	now := m.now()
	var parts []string
	for _, pos := range toast.Positions() {
		if out := m.renderer.Render(m.toaster.Visible(pos), pos, now); out != "" {
			parts = append(parts, out)
		}
	}
	return strings.Join(parts, "\n")
}

// joinCorners lays out a left and right block across width.
func joinCorners(left, right string, width int, align lipgloss.Position) string {
	if left == "" && right == "" {
		return ""
	}
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	spacer := strings.Repeat(" ", gap)
	return lipgloss.JoinHorizontal(align, left, spacer, right)
}

// viewForm renders the form panel.
func (m Model) viewForm() string {
	rows := []string{
		titleStyle.Render("Toast playground"),
		m.row(fieldMessage, m.message.View()),
		m.row(fieldExpiry, m.expiry.View()),
		m.row(fieldDismissable, checkbox(m.form.Dismissable.Get())),
		m.row(fieldExpiryEnabled, checkbox(m.form.ExpiryEnabled.Get())),
		m.row(fieldProgress, checkbox(m.form.ProgressEnabled.Get())),
		m.row(fieldLevel, renderChoice(levelChoice(m.form))),
		m.row(fieldPosition, renderChoice(positionChoice(m.form))),
		m.row(fieldStacked, checkbox(m.form.Stacked.Get())),
		"",
		m.buttons(),
	}
	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// row renders one labelled form row.
func (m Model) row(f field, widget string) string {
	marker := "  "
	label := labelStyle.Render(f.label())
	switch {
	case !f.enabled(m.form):
		label = disabledStyle.Width(14).Render(f.label())
		widget = disabledStyle.Render(stripANSI(widget))
	case m.focus == f:
		marker = focusedStyle.Render("› ")
		label = focusedStyle.Width(14).Render(f.label())
	}
	return marker + label + widget
}

func checkbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}

// renderChoice draws every option of c with the current one selected.
func renderChoice[T comparable](c choice[T]) string {
	current := c.read()
	opts := make([]string, 0, len(c.options))
	for _, o := range c.options {
		opts = append(opts, option(c.label(o), o == current))
	}
	return strings.Join(opts, " ")
}

// option renders a select option; the selected one is bracketed.
func option(label string, selected bool) string {
	if selected {
		return selectedStyle.Render("[" + label + "]")
	}
	return optionStyle.Render(" " + label + " ")
}

func (m Model) buttons() string {
	var out []string
	for _, f := range []field{fieldShow, fieldReset, fieldClear} {
		style := buttonStyle
		switch {
		case !f.enabled(m.form):
			style = buttonStyle.Foreground(lipgloss.Color("8"))
		case m.focus == f:
			style = focusedButtonStyle
		}
		out = append(out, style.Render(f.label()))
	}
	return "  " + lipgloss.JoinHorizontal(lipgloss.Top, out...)
}

// stripANSI removes ANSI escape codes so a widget can be restyled.
func stripANSI(s string) string {
	result := make([]byte, 0, len(s))
	inEscape := false
	for i := 0; i < len(s); i++ {
		if s[i] == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if s[i] == 'm' {
				inEscape = false
			}
			continue
		}
		result = append(result, s[i])
	}
	return string(result)
}
