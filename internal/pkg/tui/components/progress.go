package components

import (
	"fmt"
	"strings"

	"github.com/emiliopalmerini/aglab/internal/pkg/tui/theme"
)

// Progress shows how far through a phase the participant is.
type Progress struct {
	Total   int
	Current int
	Width   int
	styles  *theme.Styles
}

// NewProgress creates a new progress indicator. Current is 1-based.
func NewProgress(total, current int) Progress {
	return Progress{
		Total:   total,
		Current: current,
		Width:   20,
		styles:  theme.Default(),
	}
}

// Filled returns how many bar cells are drawn as done.
func (p Progress) Filled() int {
	if p.Total <= 0 || p.Width <= 0 {
		return 0
	}
	cur := min(max(p.Current, 0), p.Total)
	return cur * p.Width / p.Total
}

// View renders the progress indicator as a counter plus a thin bar.
func (p Progress) View() string {
	if p.Total <= 0 {
		return ""
	}

	counter := p.styles.Muted.Render(fmt.Sprintf("[%d/%d]", p.Current, p.Total))

	filled := p.Filled()
	var bar strings.Builder
	bar.WriteString(p.styles.ProgressActive.Render(strings.Repeat("━", filled)))
	bar.WriteString(p.styles.ProgressInactive.Render(strings.Repeat("─", p.Width-filled)))

	return counter + " " + bar.String()
}
