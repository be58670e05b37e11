package report

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/emiliopalmerini/aglab/internal/pkg/tui/theme"
)

// MetricCard displays a single headline value
type MetricCard struct {
	Title    string
	Value    string
	Subtitle string
}

// View renders the card at the given outer width
func (m MetricCard) View(width int) string {
	styles := theme.Default()

	card := styles.Card.Width(width)

	value := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.White).
		Render(m.Value)

	title := lipgloss.NewStyle().
		Foreground(theme.Gray500).
		Render(m.Title)

	subtitle := styles.Muted.Render(m.Subtitle)

	return card.Render(lipgloss.JoinVertical(lipgloss.Left, title, value, subtitle))
}

// RenderMetricCards lays cards out two per row
func RenderMetricCards(cards []MetricCard, totalWidth int) string {
	if len(cards) == 0 {
		return ""
	}

	if totalWidth <= 0 {
		totalWidth = 80
	}

	cardWidth := max((totalWidth-4)/2, 20)

	var rows []string
	for i := 0; i < len(cards); i += 2 {
		rowCards := []string{cards[i].View(cardWidth)}
		if i+1 < len(cards) {
			rowCards = append(rowCards, cards[i+1].View(cardWidth))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, rowCards...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
