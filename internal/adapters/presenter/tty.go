package presenter

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/emiliopalmerini/aglab/internal/domain"
)

const eraseLine = "\033[1A\033[2K"

// TTYPresenter runs the experiment with line-based prompts. Every answer,
// including test judgements, is submitted with Enter, and typed text is
// taken as entered with no uppercasing.
type TTYPresenter struct {
	out    io.Writer
	lines  <-chan string
	logger domain.Logger
	// Mask hides the training word after its exposure time by erasing the
	// line it was printed on.
	mask bool
	// discardTypeAhead drops lines entered before a prompt opened.
	discardTypeAhead bool
}

// NewTTYPresenter creates a presenter reading lines from in and writing to out.
// Lines are read in the background until in returns an error.
func NewTTYPresenter(in io.Reader, out io.Writer, logger domain.Logger) *TTYPresenter {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return &TTYPresenter{out: out, lines: lines, logger: logger, mask: true}
}

// OpenTTY creates a presenter on /dev/tty. The returned file must be closed
// by the caller.
func OpenTTY(logger domain.Logger) (*TTYPresenter, *os.File, error) {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("opening tty: %w", err)
	}
	p := NewTTYPresenter(tty, tty, logger)
	p.discardTypeAhead = true
	return p, tty, nil
}

// SetMask toggles erasing the training word once its exposure ends.
func (p *TTYPresenter) SetMask(mask bool) {
	p.mask = mask
}

// readLine waits for the next line. A zero timeout waits indefinitely; the
// boolean is false when the timeout elapsed first.
func (p *TTYPresenter) readLine(ctx context.Context, timeout time.Duration) (string, bool, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case line, ok := <-p.lines:
		if !ok {
			return "", false, fmt.Errorf("reading input: %w", io.EOF)
		}
		return line, true, nil
	case <-expired:
		return "", false, nil
	case <-ctx.Done():
		return "", false, fmt.Errorf("%w: %w", domain.ErrAborted, ctx.Err())
	}
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", domain.ErrAborted, ctx.Err())
	}
}

// Show prints a screen and waits for Enter or its hold time.
func (p *TTYPresenter) Show(ctx context.Context, screen domain.Screen) error {
	fmt.Fprintln(p.out)
	if screen.Title != "" {
		fmt.Fprintln(p.out, strings.ToUpper(screen.Title))
		fmt.Fprintln(p.out)
	}
	if screen.Body != "" {
		fmt.Fprintln(p.out, screen.Body)
	}

	if screen.Hold > 0 {
		return wait(ctx, screen.Hold)
	}

	fmt.Fprintln(p.out)
	fmt.Fprint(p.out, "Press Enter to continue. ")
	_, _, err := p.readLine(ctx, 0)
	return err
}

// AwaitTyped prints the word, masks it after the exposure time and reads
// one line. Elapsed starts when the input prompt appears.
func (p *TTYPresenter) AwaitTyped(ctx context.Context, prompt domain.TypingPrompt) (domain.TypedResponse, error) {
	fmt.Fprintln(p.out)
	fmt.Fprintf(p.out, "[%d/%d]\n", prompt.TrialIndex, prompt.TrialCount)
	fmt.Fprintf(p.out, "    %s\n", prompt.Stimulus)

	if prompt.Exposure > 0 {
		if err := wait(ctx, prompt.Exposure); err != nil {
			return domain.TypedResponse{}, err
		}
		if p.mask {
			fmt.Fprint(p.out, eraseLine)
		}
		p.drain()
	}

	fmt.Fprint(p.out, "Type the word: ")
	start := time.Now()
	line, _, err := p.readLine(ctx, 0)
	if err != nil {
		return domain.TypedResponse{}, err
	}
	return domain.TypedResponse{Text: line, Elapsed: time.Since(start)}, nil
}

// AwaitKey prints a test word and reads one line. The first character of
// the line is the pressed key; an empty line is reported as an empty key.
// The reaction time runs until Enter.
func (p *TTYPresenter) AwaitKey(ctx context.Context, prompt domain.KeyPrompt) (domain.KeyResponse, error) {
	p.drain()
	fmt.Fprintln(p.out)
	fmt.Fprintf(p.out, "[%d/%d]\n", prompt.TrialIndex, prompt.TrialCount)
	fmt.Fprintf(p.out, "    %s\n", prompt.Stimulus)
	fmt.Fprintf(p.out, "%s = grammatical, %s = ungrammatical: ",
		strings.ToUpper(prompt.Keys.Grammatical), strings.ToUpper(prompt.Keys.Ungrammatical))

	start := time.Now()
	line, ok, err := p.readLine(ctx, prompt.Timeout)
	if err != nil {
		return domain.KeyResponse{}, err
	}
	if !ok {
		fmt.Fprintln(p.out)
		return domain.KeyResponse{TimedOut: true, Elapsed: time.Since(start)}, nil
	}

	var key string
	if trimmed := strings.TrimSpace(line); trimmed != "" {
		key = string([]rune(trimmed)[:1])
	}
	return domain.KeyResponse{Key: key, Elapsed: time.Since(start)}, nil
}

// AskText reads a single trimmed line.
func (p *TTYPresenter) AskText(ctx context.Context, label string) (string, error) {
	for {
		fmt.Fprintf(p.out, "%s: ", label)
		line, _, err := p.readLine(ctx, 0)
		if err != nil {
			return "", err
		}
		if v := strings.TrimSpace(line); v != "" {
			return v, nil
		}
	}
}

// AskChoice lists the options and accepts a number or an option name.
func (p *TTYPresenter) AskChoice(ctx context.Context, prompt domain.ChoicePrompt) (string, error) {
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, prompt.Label)
	for i, opt := range prompt.Options {
		fmt.Fprintf(p.out, "  [%d] %s\n", i+1, opt)
	}

	for {
		fmt.Fprint(p.out, "Enter a number: ")
		line, _, err := p.readLine(ctx, 0)
		if err != nil {
			return "", err
		}
		if choice, ok := matchChoice(strings.TrimSpace(line), prompt.Options); ok {
			return choice, nil
		}
		p.logger.Debug("invalid choice", "label", prompt.Label, "input", line)
	}
}

func matchChoice(input string, options []string) (string, bool) {
	if n, err := strconv.Atoi(input); err == nil {
		if n >= 1 && n <= len(options) {
			return options[n-1], true
		}
		return "", false
	}
	for _, opt := range options {
		if input != "" && strings.EqualFold(input, opt) {
			return opt, true
		}
	}
	return "", false
}

// drain discards lines typed while no prompt was open.
func (p *TTYPresenter) drain() {
	if !p.discardTypeAhead {
		return
	}
	for {
		select {
		case _, ok := <-p.lines:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
