package presenter

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emiliopalmerini/aglab/internal/domain"
	"github.com/emiliopalmerini/aglab/internal/pkg/tui/components"
	"github.com/emiliopalmerini/aglab/internal/pkg/tui/theme"
)

type holdDoneMsg struct{}

type exposureDoneMsg struct{}

type timeoutMsg struct{}

func isAbort(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyCtrlC
}

func frame(width, height int, content string) string {
	if width == 0 || height == 0 {
		return theme.Default().Container.Render(content)
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

// screenModel shows a block of text until continue or its hold time.
type screenModel struct {
	title     string
	body      string
	hold      time.Duration
	done      bool
	cancelled bool
	width     int
	height    int
	styles    *theme.Styles
}

func newScreenModel(screen domain.Screen, body string) *screenModel {
	return &screenModel{
		title:  screen.Title,
		body:   body,
		hold:   screen.Hold,
		styles: theme.Default(),
	}
}

func (m *screenModel) Init() tea.Cmd {
	if m.hold > 0 {
		return tea.Tick(m.hold, func(time.Time) tea.Msg { return holdDoneMsg{} })
	}
	return nil
}

func (m *screenModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isAbort(msg) {
			m.cancelled = true
			return m, tea.Quit
		}
		if m.hold == 0 && (msg.Type == tea.KeySpace || msg.Type == tea.KeyEnter) {
			m.done = true
			return m, tea.Quit
		}
	case holdDoneMsg:
		m.done = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m *screenModel) View() string {
	if m.done || m.cancelled {
		return ""
	}

	var b strings.Builder
	if m.title != "" {
		b.WriteString(m.styles.Title.Render(strings.ToUpper(m.title)))
		b.WriteString("\n")
	}
	if m.hold > 0 {
		b.WriteString(m.styles.Feedback.Render(m.body))
	} else {
		b.WriteString(m.body)
		b.WriteString("\n")
		b.WriteString(components.KeyHints(components.KeyHint{Key: "space", Action: "continue"}))
	}
	return frame(m.width, m.height, b.String())
}

// The typing field accepts at least minInputRunes and always leaves
// inputSlack runes beyond the stimulus length.
const (
	minInputRunes = 64
	inputSlack    = 16
)

// typingModel shows a training word, masks it and collects one line.
type typingModel struct {
	prompt    domain.TypingPrompt
	input     textinput.Model
	uppercase bool
	exposing  bool
	opened    time.Time
	result    domain.TypedResponse
	done      bool
	cancelled bool
	now       func() time.Time
	width     int
	height    int
	styles    *theme.Styles
}

func newTypingModel(prompt domain.TypingPrompt, uppercase bool) *typingModel {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.CharLimit = max(minInputRunes, utf8.RuneCountInString(prompt.Stimulus)+inputSlack)
	ti.Width = 32

	return &typingModel{
		prompt:    prompt,
		input:     ti,
		uppercase: uppercase,
		exposing:  prompt.Exposure > 0,
		now:       time.Now,
		styles:    theme.Default(),
	}
}

func (m *typingModel) Init() tea.Cmd {
	if m.exposing {
		return tea.Tick(m.prompt.Exposure, func(time.Time) tea.Msg { return exposureDoneMsg{} })
	}
	return m.open()
}

// open focuses the input field. The response clock starts when the field
// is first drawn.
func (m *typingModel) open() tea.Cmd {
	m.exposing = false
	return m.input.Focus()
}

// startClock records the first moment the participant can respond.
func (m *typingModel) startClock() {
	if m.opened.IsZero() {
		m.opened = m.now()
	}
}

func (m *typingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case exposureDoneMsg:
		return m, m.open()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if isAbort(msg) {
			m.cancelled = true
			return m, tea.Quit
		}
		if m.exposing {
			return m, nil
		}
		if msg.Type == tea.KeyEnter {
			m.startClock()
			m.result = domain.TypedResponse{
				Text:    m.input.Value(),
				Elapsed: m.now().Sub(m.opened),
			}
			m.done = true
			return m, tea.Quit
		}
		if m.uppercase && msg.Type == tea.KeyRunes {
			msg.Runes = []rune(strings.Map(unicode.ToUpper, string(msg.Runes)))
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *typingModel) View() string {
	if m.done || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n\n")
	if m.exposing {
		b.WriteString(m.styles.Stimulus.Render(m.prompt.Stimulus))
	} else {
		if m.prompt.Exposure > 0 {
			b.WriteString(m.styles.Mask.Render(strings.Repeat("#", len([]rune(m.prompt.Stimulus)))))
		} else {
			b.WriteString(m.styles.Stimulus.Render(m.prompt.Stimulus))
		}
		b.WriteString("\n\n")
		b.WriteString(m.styles.Input.Render(m.input.View()))
		m.startClock()
		b.WriteString("\n")
		b.WriteString(components.KeyHints(components.KeyHint{Key: "enter", Action: "submit"}))
	}
	return frame(m.width, m.height, b.String())
}

func (m *typingModel) header() string {
	progress := components.NewProgress(m.prompt.TrialCount, m.prompt.TrialIndex)
	label := fmt.Sprintf("Block %d", m.prompt.Block)
	if m.prompt.Attempt > 1 {
		label += fmt.Sprintf("  attempt %d", m.prompt.Attempt)
	}
	return m.styles.Muted.Render(label) + "  " + progress.View()
}

// keyModel shows a test word and captures the first keypress.
type keyModel struct {
	prompt    domain.KeyPrompt
	start     time.Time
	result    domain.KeyResponse
	done      bool
	cancelled bool
	now       func() time.Time
	width     int
	height    int
	styles    *theme.Styles
}

func newKeyModel(prompt domain.KeyPrompt) *keyModel {
	return &keyModel{
		prompt: prompt,
		now:    time.Now,
		styles: theme.Default(),
	}
}

// Init arms the timeout. The reaction clock starts on the first draw of the
// stimulus, so program start-up is not counted.
func (m *keyModel) Init() tea.Cmd {
	if m.prompt.Timeout > 0 {
		return tea.Tick(m.prompt.Timeout, func(time.Time) tea.Msg { return timeoutMsg{} })
	}
	return nil
}

func (m *keyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.done {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isAbort(msg) {
			m.cancelled = true
			return m, tea.Quit
		}
		m.startClock()
		key := msg.String()
		if msg.Type == tea.KeyRunes && len(msg.Runes) > 0 {
			key = string(msg.Runes[0])
		}
		m.result = domain.KeyResponse{Key: key, Elapsed: m.now().Sub(m.start)}
		m.done = true
		return m, tea.Quit
	case timeoutMsg:
		m.startClock()
		m.result = domain.KeyResponse{TimedOut: true, Elapsed: m.now().Sub(m.start)}
		m.done = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m *keyModel) startClock() {
	if m.start.IsZero() {
		m.start = m.now()
	}
}

func (m *keyModel) View() string {
	if m.done || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(components.NewProgress(m.prompt.TrialCount, m.prompt.TrialIndex).View())
	b.WriteString("\n\n")
	b.WriteString(m.styles.Stimulus.Render(m.prompt.Stimulus))
	m.startClock()
	b.WriteString("\n\n")
	b.WriteString(components.KeyHints(
		components.KeyHint{Key: strings.ToUpper(m.prompt.Keys.Grammatical), Action: "grammatical"},
		components.KeyHint{Key: strings.ToUpper(m.prompt.Keys.Ungrammatical), Action: "ungrammatical"},
	))
	return frame(m.width, m.height, b.String())
}

// textModel collects one free-text answer.
type textModel struct {
	label     string
	input     textinput.Model
	done      bool
	cancelled bool
	styles    *theme.Styles
}

func newTextModel(label string) *textModel {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.CharLimit = 128
	ti.Width = 40
	return &textModel{label: label, input: ti, styles: theme.Default()}
}

func (m *textModel) Init() tea.Cmd {
	return m.input.Focus()
}

func (m *textModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if isAbort(msg) {
			m.cancelled = true
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEnter && strings.TrimSpace(m.input.Value()) != "" {
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *textModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	return m.styles.Container.Render(
		m.styles.Subtitle.Render(m.label) + "\n\n" + m.input.View(),
	)
}

// choiceModel wraps a selector.
type choiceModel struct {
	selector  components.Selector
	cancelled bool
	styles    *theme.Styles
}

func newChoiceModel(prompt domain.ChoicePrompt) *choiceModel {
	return &choiceModel{
		selector: components.NewSelector(prompt.Label, prompt.Options),
		styles:   theme.Default(),
	}
}

func (m *choiceModel) Init() tea.Cmd {
	return nil
}

func (m *choiceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && isAbort(msg) {
		m.cancelled = true
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.selector, cmd = m.selector.Update(msg)
	if m.selector.Chosen {
		return m, tea.Quit
	}
	return m, cmd
}

func (m *choiceModel) View() string {
	if m.selector.Chosen || m.cancelled {
		return ""
	}
	help := components.KeyHints(
		components.KeyHint{Key: "↑/↓", Action: "move"},
		components.KeyHint{Key: "1-9", Action: "jump"},
		components.KeyHint{Key: "enter", Action: "select"},
	)
	return m.styles.Container.Render(m.selector.View() + "\n" + help)
}
