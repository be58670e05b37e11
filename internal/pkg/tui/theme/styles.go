package theme

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Styles contains all shared TUI styles
type Styles struct {
	// Text styles
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style

	// Trial screens
	Stimulus lipgloss.Style
	Mask     lipgloss.Style
	Feedback lipgloss.Style
	Input    lipgloss.Style

	// Interactive elements
	Cursor     lipgloss.Style
	Selected   lipgloss.Style
	Unselected lipgloss.Style

	// Help and hints
	Help    lipgloss.Style
	HelpKey lipgloss.Style

	// Layout
	Container lipgloss.Style
	Card      lipgloss.Style

	// Progress indicators
	ProgressActive   lipgloss.Style
	ProgressInactive lipgloss.Style

	// Report indicators
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Accent  lipgloss.Style
}

var (
	defaultStyles *Styles
	once          sync.Once
)

// Default returns the singleton default Styles instance
func Default() *Styles {
	once.Do(func() {
		defaultStyles = newStyles()
	})
	return defaultStyles
}

func newStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(White).
			MarginBottom(1),

		Subtitle: lipgloss.NewStyle().
			Foreground(Gray300).
			Bold(true),

		Body: lipgloss.NewStyle().
			Foreground(Gray300),

		Muted: lipgloss.NewStyle().
			Foreground(Gray600),

		Bold: lipgloss.NewStyle().
			Bold(true).
			Foreground(White),

		Stimulus: lipgloss.NewStyle().
			Bold(true).
			Foreground(White).
			Padding(1, 4),

		Mask: lipgloss.NewStyle().
			Foreground(Gray700).
			Padding(1, 4),

		Feedback: lipgloss.NewStyle().
			Bold(true).
			Foreground(White).
			Align(lipgloss.Center),

		Input: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(Gray600).
			Padding(0, 1),

		Cursor: lipgloss.NewStyle().
			Foreground(Black).
			Background(White).
			Bold(true),

		Selected: lipgloss.NewStyle().
			Foreground(White).
			Bold(true),

		Unselected: lipgloss.NewStyle().
			Foreground(Gray600),

		Help: lipgloss.NewStyle().
			Foreground(Gray700).
			MarginTop(1),

		HelpKey: lipgloss.NewStyle().
			Foreground(Gray500).
			Bold(true),

		Container: lipgloss.NewStyle().
			Padding(1, 2),

		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Gray800).
			Padding(1, 2),

		ProgressActive: lipgloss.NewStyle().
			Foreground(White),

		ProgressInactive: lipgloss.NewStyle().
			Foreground(Gray800),

		Success: lipgloss.NewStyle().
			Foreground(Success),

		Warning: lipgloss.NewStyle().
			Foreground(Warning),

		Error: lipgloss.NewStyle().
			Foreground(Error),

		Accent: lipgloss.NewStyle().
			Foreground(Accent),
	}
}
