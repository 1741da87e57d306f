package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/atharvtrasi/playlist-stand-chart/internal/stands"
)

// barWidth is the number of cells a score of 100 fills.
const barWidth = 24

var styles = NewPalette("#7D56F4", "#04B575", "#FFA500", "#626262")

// Palette is a small stylesheet built from named [lipgloss.Style] fields.
type Palette struct {
	title    lipgloss.Style
	playlist lipgloss.Style
	stand    lipgloss.Style
	muted    lipgloss.Style
}

// NewPalette builds a palette from hex colors for the title, playlist bars, stand bars, and labels.
func NewPalette(title, playlist, stand, muted string) *Palette {
	return &Palette{
		title:    NewBold(title).MarginBottom(1),
		playlist: NewStyle(playlist),
		stand:    NewStyle(stand),
		muted:    NewEm(muted),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// bar draws a horizontal bar for a 0..100 score. Scores outside that range are clamped for display only.
func bar(score float64) string {
	cells := int(score/100*barWidth + 0.5)
	cells = max(0, min(cells, barWidth))
	return strings.Repeat("█", cells) + strings.Repeat("░", barWidth-cells)
}

// RenderChart draws the playlist and the matched Stand side by side as stat bars.
func RenderChart(r Report) string {
	return styles.RenderChart(r)
}

// RenderChart draws r with the palette's styles.
func (p *Palette) RenderChart(r Report) string {
	var b strings.Builder

	b.WriteString(p.title.Render(fmt.Sprintf("「%s」", r.Stand.Name)))
	b.WriteString("\n")

	for _, f := range stands.Features() {
		got, want := r.Playlist.At(f), r.Stand.Features.At(f)
		label := fmt.Sprintf("%-4s", f.Column())

		b.WriteString(fmt.Sprintf("%s %s %6.2f %s\n", label, p.playlist.Render(bar(got)), got, p.muted.Render(stands.Grade(got))))
		b.WriteString(fmt.Sprintf("%s %s %6.2f %s\n", "    ", p.stand.Render(bar(want)), want, p.muted.Render(stands.Grade(want))))
	}

	b.WriteString(p.muted.Render(fmt.Sprintf("distance %.2f", r.Distance)))

	if len(r.RunnersUp) > 0 {
		names := make([]string, 0, len(r.RunnersUp))
		for _, ru := range r.RunnersUp {
			names = append(names, ru.Stand)
		}
		b.WriteString("\n")
		b.WriteString(p.muted.Render("also close: " + strings.Join(names, ", ")))
	}

	return b.String()
}
