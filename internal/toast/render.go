package toast

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// DefaultWidth is the default rendered toast width in cells.
const DefaultWidth = 36

// Default level colors (ANSI 256).
var defaultColors = map[Level]lipgloss.Color{
	LevelInfo:    lipgloss.Color("12"),
	LevelSuccess: lipgloss.Color("10"),
	LevelWarn:    lipgloss.Color("11"),
	LevelError:   lipgloss.Color("9"),
}

// Renderer draws the toasts of one screen corner.
type Renderer struct {
	width  int
	colors map[Level]lipgloss.Color
}

// NewRenderer creates a renderer for toasts of the given width.
func NewRenderer(width int) *Renderer {
	if width <= 0 {
		width = DefaultWidth
	}
	colors := make(map[Level]lipgloss.Color, len(defaultColors))
	for l, c := range defaultColors {
		colors[l] = c
	}
	return &Renderer{width: width, colors: colors}
}

// SetColor overrides the color for a level. Empty colors are ignored.
func (r *Renderer) SetColor(level Level, color string) {
	if color == "" {
		return
	}
	r.colors[level] = lipgloss.Color(color)
}

// Width returns the rendered toast width.
func (r *Renderer) Width() int {
	return r.width
}

// Render renders toasts for pos, as returned by Toaster.Visible (newest
// first). The newest toast is drawn closest to the screen edge.
// Returns empty string if no toasts to display.
func (r *Renderer) Render(toasts []Toast, pos Position, now time.Time) string {
	if len(toasts) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(toasts))
	for _, t := range toasts {
		rendered = append(rendered, r.renderOne(t, now))
	}

	// Bottom corners grow upwards.
	if !pos.IsTop() {
		for i, j := 0, len(rendered)-1; i < j; i, j = i+1, j-1 {
			rendered[i], rendered[j] = rendered[j], rendered[i]
		}
	}

	align := lipgloss.Right
	if pos.IsLeft() {
		align = lipgloss.Left
	}
	return lipgloss.JoinVertical(align, rendered...)
}

// renderOne renders a single toast box.
func (r *Renderer) renderOne(t Toast, now time.Time) string {
	color := r.colors[t.Level]
	style := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1).
		Width(r.width)

	inner := r.width - style.GetHorizontalPadding()
	if inner < 4 {
		inner = 4
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(color)
	title := titleStyle.Render(t.Level.Label())
	if t.Dismissable {
		marker := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("x")
		gap := inner - lipgloss.Width(title) - lipgloss.Width(marker)
		if gap < 1 {
			gap = 1
		}
		title = lipgloss.JoinHorizontal(lipgloss.Top, title, lipgloss.NewStyle().Width(gap).Render(""), marker)
	}

	body := lipgloss.NewStyle().Width(inner).Render(t.Message)
	content := title + "\n" + body

	if t.Progress && t.Expiry != nil {
		bar := progress.New(
			progress.WithSolidFill(string(color)),
			progress.WithoutPercentage(),
			progress.WithWidth(inner),
		)
		content += "\n" + bar.ViewAs(t.Remaining(now))
	}

	return style.Render(content)
}
