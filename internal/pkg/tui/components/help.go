package components

import (
	"strings"

	"github.com/emiliopalmerini/aglab/internal/pkg/tui/theme"
)

// KeyHint names a key and what pressing it does on the current screen.
type KeyHint struct {
	Key    string
	Action string
}

const hintSeparator = "  ·  "

// KeyHints renders the footer line shown under a trial or form screen.
func KeyHints(hints ...KeyHint) string {
	s := theme.Default()
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		if h.Key == "" {
			continue
		}
		parts = append(parts, s.HelpKey.Render(h.Key)+" "+s.Muted.Render(h.Action))
	}
	return strings.Join(parts, s.Muted.Render(hintSeparator))
}
