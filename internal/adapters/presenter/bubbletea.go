package presenter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/emiliopalmerini/aglab/internal/domain"
)

// BubbleTeaPresenter runs every prompt as a short-lived full-screen program.
type BubbleTeaPresenter struct {
	in        io.Reader
	out       io.Writer
	logger    domain.Logger
	renderer  *glamour.TermRenderer
	uppercase bool
	opts      []tea.ProgramOption
}

// Option configures a BubbleTeaPresenter.
type Option func(*BubbleTeaPresenter)

// WithUppercase uppercases letters as they are typed in training trials.
func WithUppercase(on bool) Option {
	return func(p *BubbleTeaPresenter) {
		p.uppercase = on
	}
}

// WithProgramOptions appends options passed to every program.
func WithProgramOptions(opts ...tea.ProgramOption) Option {
	return func(p *BubbleTeaPresenter) {
		p.opts = append(p.opts, opts...)
	}
}

// NewBubbleTeaPresenter creates a presenter that reads from in and draws to out.
func NewBubbleTeaPresenter(in io.Reader, out io.Writer, logger domain.Logger, opts ...Option) *BubbleTeaPresenter {
	p := &BubbleTeaPresenter{in: in, out: out, logger: logger}
	for _, opt := range opts {
		opt(p)
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		logger.Debug("markdown renderer unavailable", "error", err)
	}
	p.renderer = renderer
	return p
}

// OpenBubbleTea creates a presenter on /dev/tty. The returned file must be
// closed by the caller.
func OpenBubbleTea(logger domain.Logger, opts ...Option) (*BubbleTeaPresenter, *os.File, error) {
	if os.Getenv("TERM") == "" {
		os.Setenv("TERM", "xterm-256color")
		logger.Debug("TERM was empty, set to xterm-256color")
	}

	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("opening tty: %w", err)
	}
	opts = append(opts, WithProgramOptions(tea.WithAltScreen()))
	return NewBubbleTeaPresenter(tty, tty, logger, opts...), tty, nil
}

func (p *BubbleTeaPresenter) run(ctx context.Context, m tea.Model) (tea.Model, error) {
	opts := append([]tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
	}, p.opts...)

	final, err := tea.NewProgram(m, opts...).Run()
	if ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAborted, ctx.Err())
	}
	if err != nil {
		if errors.Is(err, tea.ErrInterrupted) {
			return nil, domain.ErrAborted
		}
		return nil, fmt.Errorf("running prompt: %w", err)
	}
	return final, nil
}

func (p *BubbleTeaPresenter) render(screen domain.Screen) string {
	if !screen.Markdown || p.renderer == nil {
		return screen.Body
	}
	out, err := p.renderer.Render(screen.Body)
	if err != nil {
		p.logger.Debug("markdown render failed", "error", err)
		return screen.Body
	}
	return out
}

// Show displays a screen until space/enter or its hold time.
func (p *BubbleTeaPresenter) Show(ctx context.Context, screen domain.Screen) error {
	final, err := p.run(ctx, newScreenModel(screen, p.render(screen)))
	if err != nil {
		return err
	}
	if final.(*screenModel).cancelled {
		return domain.ErrAborted
	}
	return nil
}

// AwaitTyped shows a training word and collects one submission.
func (p *BubbleTeaPresenter) AwaitTyped(ctx context.Context, prompt domain.TypingPrompt) (domain.TypedResponse, error) {
	final, err := p.run(ctx, newTypingModel(prompt, p.uppercase))
	if err != nil {
		return domain.TypedResponse{}, err
	}
	m := final.(*typingModel)
	if m.cancelled {
		return domain.TypedResponse{}, domain.ErrAborted
	}
	return m.result, nil
}

// AwaitKey shows a test word and collects the first keypress.
func (p *BubbleTeaPresenter) AwaitKey(ctx context.Context, prompt domain.KeyPrompt) (domain.KeyResponse, error) {
	final, err := p.run(ctx, newKeyModel(prompt))
	if err != nil {
		return domain.KeyResponse{}, err
	}
	m := final.(*keyModel)
	if m.cancelled {
		return domain.KeyResponse{}, domain.ErrAborted
	}
	return m.result, nil
}

// AskText collects a non-empty line.
func (p *BubbleTeaPresenter) AskText(ctx context.Context, label string) (string, error) {
	final, err := p.run(ctx, newTextModel(label))
	if err != nil {
		return "", err
	}
	m := final.(*textModel)
	if m.cancelled {
		return "", domain.ErrAborted
	}
	return m.input.Value(), nil
}

// AskChoice collects one of the options.
func (p *BubbleTeaPresenter) AskChoice(ctx context.Context, prompt domain.ChoicePrompt) (string, error) {
	final, err := p.run(ctx, newChoiceModel(prompt))
	if err != nil {
		return "", err
	}
	m := final.(*choiceModel)
	if m.cancelled {
		return "", domain.ErrAborted
	}
	return m.selector.Value(), nil
}
