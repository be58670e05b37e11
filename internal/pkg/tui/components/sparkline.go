package components

import (
	"strings"

	"github.com/emiliopalmerini/aglab/internal/pkg/tui/theme"
)

// RenderSparkline creates a simple ASCII sparkline from values using Unicode block characters
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	result := make([]rune, len(values))
	if hi == lo {
		for i := range result {
			result[i] = blocks[len(blocks)/2]
		}
		return string(result)
	}

	for i, v := range values {
		idx := int((v - lo) / (hi - lo) * float64(len(blocks)-1))
		result[i] = blocks[min(idx, len(blocks)-1)]
	}

	return string(result)
}

// RenderBar draws a horizontal bar for a fraction in [0,1].
func RenderBar(fraction float64, width int) string {
	if width <= 0 {
		return ""
	}
	fraction = min(max(fraction, 0), 1)
	filled := int(fraction*float64(width) + 0.5)

	s := theme.Default()
	return s.ProgressActive.Render(strings.Repeat("█", filled)) +
		s.ProgressInactive.Render(strings.Repeat("░", width-filled))
}
