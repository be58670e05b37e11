package components

import (
	"fmt"
	"strings"

	"github.com/emiliopalmerini/aglab/internal/pkg/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
)

// Selector is a single-choice list component
type Selector struct {
	Label   string
	Options []string
	Cursor  int
	Chosen  bool
	styles  *theme.Styles
}

// NewSelector creates a new selector with the cursor on the first option
func NewSelector(label string, options []string) Selector {
	return Selector{
		Label:   label,
		Options: options,
		styles:  theme.Default(),
	}
}

// Value returns the option under the cursor
func (s Selector) Value() string {
	if len(s.Options) == 0 {
		return ""
	}
	return s.Options[s.Cursor]
}

// Update handles key events for the selector. Number keys jump to an
// option; enter confirms.
func (s Selector) Update(msg tea.Msg) (Selector, tea.Cmd) {
	if len(s.Options) == 0 {
		return s, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "k", "up":
			if s.Cursor > 0 {
				s.Cursor--
			}
		case "j", "down", "tab":
			if s.Cursor < len(s.Options)-1 {
				s.Cursor++
			}
		case "enter", " ":
			s.Chosen = true
		default:
			if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
				if n := int(key[0] - '0'); n <= len(s.Options) {
					s.Cursor = n - 1
				}
			}
		}
	}

	return s, nil
}

// View renders the selector
func (s Selector) View() string {
	var b strings.Builder

	b.WriteString(s.styles.Subtitle.Render(s.Label))
	b.WriteString("\n\n")

	for i, opt := range s.Options {
		num := s.styles.Muted.Render(fmt.Sprintf("%d.", i+1))
		if i == s.Cursor {
			b.WriteString(fmt.Sprintf("  %s %s\n", num, s.styles.Cursor.Render(" "+opt+" ")))
		} else {
			b.WriteString(fmt.Sprintf("  %s %s\n", num, s.styles.Unselected.Render(opt)))
		}
	}

	return b.String()
}
