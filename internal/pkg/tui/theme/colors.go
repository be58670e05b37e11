package theme

import "github.com/charmbracelet/lipgloss"

// Grayscale palette. Stimuli are shown on a plain background so that
// color never carries information during a trial.
var (
	White   = lipgloss.Color("#FFFFFF")
	Gray300 = lipgloss.Color("#E0E0E0")
	Gray500 = lipgloss.Color("#9E9E9E")
	Gray600 = lipgloss.Color("#757575")
	Gray700 = lipgloss.Color("#616161")
	Gray800 = lipgloss.Color("#424242")
	Black   = lipgloss.Color("#000000")

	// Used by reports only.
	Success = lipgloss.Color("#22C55E")
	Warning = lipgloss.Color("#F59E0B")
	Error   = lipgloss.Color("#EF4444")
	Accent  = lipgloss.Color("#3B82F6")
)
