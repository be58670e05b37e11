package cli

import (
	"io"
	"os"

	"golang.org/x/term"

	"github.com/emiliopalmerini/aglab/internal/adapters/presenter"
	"github.com/emiliopalmerini/aglab/internal/config"
	"github.com/emiliopalmerini/aglab/internal/domain"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openPresenter picks the display for a session. Scripted input on stdin
// gets the line presenter on stdin/stdout; --plain gets it on the terminal;
// otherwise the full-screen presenter runs on /dev/tty.
func openPresenter(cfg *config.Config, log domain.Logger) (domain.Presenter, io.Closer, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		log.Debug("stdin is not a terminal, using line presenter")
		p := presenter.NewTTYPresenter(os.Stdin, os.Stdout, log)
		p.SetMask(term.IsTerminal(int(os.Stdout.Fd())))
		return p, nopCloser{}, nil
	}

	if cfg.Display.Plain {
		p, tty, err := presenter.OpenTTY(log)
		if err != nil {
			return nil, nil, err
		}
		return p, tty, nil
	}

	p, tty, err := presenter.OpenBubbleTea(log, presenter.WithUppercase(cfg.Display.UppercaseInput))
	if err != nil {
		return nil, nil, err
	}
	return p, tty, nil
}
