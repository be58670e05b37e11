package presenter

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/aglab/internal/adapters/logger"
	"github.com/emiliopalmerini/aglab/internal/domain"
)

var (
	_ domain.Presenter = (*TTYPresenter)(nil)
	_ domain.Presenter = (*BubbleTeaPresenter)(nil)
)

func newTestTTY(input string) (*TTYPresenter, *bytes.Buffer) {
	var out bytes.Buffer
	return NewTTYPresenter(strings.NewReader(input), &out, logger.NewNop()), &out
}

func TestTTYPresenter_AwaitTyped(t *testing.T) {
	p, out := newTestTTY("  plofel \n")

	resp, err := p.AwaitTyped(context.Background(), domain.TypingPrompt{
		Stimulus:   "plofel",
		Exposure:   time.Millisecond,
		TrialIndex: 1,
		TrialCount: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, "  plofel ", resp.Text, "raw text is returned untrimmed")
	assert.Contains(t, out.String(), "plofel")
	assert.Contains(t, out.String(), eraseLine)
}

func TestTTYPresenter_AwaitTyped_NoMask(t *testing.T) {
	p, out := newTestTTY("plofel\n")
	p.SetMask(false)

	_, err := p.AwaitTyped(context.Background(), domain.TypingPrompt{Stimulus: "plofel", Exposure: time.Millisecond})
	require.NoError(t, err)
	assert.NotContains(t, out.String(), eraseLine)
}

func TestTTYPresenter_AwaitKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"first character", "fj\n", "f"},
		{"uppercase", "J\n", "J"},
		{"empty line", "\n", ""},
		{"other key", "x\n", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestTTY(tt.input)
			resp, err := p.AwaitKey(context.Background(), domain.KeyPrompt{
				Stimulus: "kijbostal",
				Keys:     domain.DefaultKeyMap(),
			})
			require.NoError(t, err)
			assert.False(t, resp.TimedOut)
			assert.Equal(t, tt.want, resp.Key)
		})
	}
}

func TestTTYPresenter_AwaitKey_Timeout(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	p := NewTTYPresenter(r, io.Discard, logger.NewNop())

	resp, err := p.AwaitKey(context.Background(), domain.KeyPrompt{
		Stimulus: "kijbostal",
		Keys:     domain.DefaultKeyMap(),
		Timeout:  10 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.True(t, resp.TimedOut)
	assert.Empty(t, resp.Key)
}

func TestTTYPresenter_Cancelled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	p := NewTTYPresenter(r, io.Discard, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.AwaitTyped(ctx, domain.TypingPrompt{Stimulus: "plofel"})
	assert.ErrorIs(t, err, domain.ErrAborted)

	err = p.Show(ctx, domain.Screen{Body: "hold", Hold: time.Hour})
	assert.ErrorIs(t, err, domain.ErrAborted)
}

func TestTTYPresenter_EOF(t *testing.T) {
	p, _ := newTestTTY("")
	_, err := p.AskText(context.Background(), "Name")
	assert.ErrorIs(t, err, io.EOF)
}

func TestTTYPresenter_AskChoice(t *testing.T) {
	p, out := newTestTTY("7\nnope\n2\n")
	got, err := p.AskChoice(context.Background(), domain.ChoicePrompt{
		Label:   "Gender",
		Options: domain.GenderOptions,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.GenderOptions[1], got)
	assert.Contains(t, out.String(), "[1] "+domain.GenderOptions[0])

	p, _ = newTestTTY("english\n")
	got, err = p.AskChoice(context.Background(), domain.ChoicePrompt{
		Label:   "Native language",
		Options: domain.LanguageOptions,
	})
	require.NoError(t, err)
	assert.Equal(t, "English", got)
}

func TestTTYPresenter_AskText_SkipsBlank(t *testing.T) {
	p, _ := newTestTTY("\n   \n Basque \n")
	got, err := p.AskText(context.Background(), "Language")
	require.NoError(t, err)
	assert.Equal(t, "Basque", got)
}

func TestTTYPresenter_Show(t *testing.T) {
	p, out := newTestTTY("\n")
	err := p.Show(context.Background(), domain.Screen{Title: "Training", Body: "Type each word."})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "TRAINING")
	assert.Contains(t, out.String(), "Press Enter")

	p, out = newTestTTY("")
	err = p.Show(context.Background(), domain.Screen{Body: "INCORRECT!", Hold: time.Millisecond})
	require.NoError(t, err)
	assert.NotContains(t, out.String(), "Press Enter")
}
