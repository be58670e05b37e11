package experiment

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/emiliopalmerini/aglab/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var errScriptExhausted = errors.New("fake presenter: script exhausted")

// fakePresenter replays scripted answers and records what was shown.
type fakePresenter struct {
	typed   []string
	keys    []domain.KeyResponse
	texts   []string
	choices map[string]string
	rt      time.Duration

	screens       []domain.Screen
	typingPrompts []domain.TypingPrompt
	keyPrompts    []domain.KeyPrompt
	asked         []string
}

func (p *fakePresenter) Show(ctx context.Context, screen domain.Screen) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.screens = append(p.screens, screen)
	return nil
}

func (p *fakePresenter) AwaitTyped(ctx context.Context, prompt domain.TypingPrompt) (domain.TypedResponse, error) {
	p.typingPrompts = append(p.typingPrompts, prompt)
	if len(p.typed) == 0 {
		return domain.TypedResponse{}, errScriptExhausted
	}
	text := p.typed[0]
	p.typed = p.typed[1:]
	return domain.TypedResponse{Text: text, Elapsed: p.rt}, nil
}

func (p *fakePresenter) AwaitKey(ctx context.Context, prompt domain.KeyPrompt) (domain.KeyResponse, error) {
	p.keyPrompts = append(p.keyPrompts, prompt)
	if len(p.keys) == 0 {
		return domain.KeyResponse{}, errScriptExhausted
	}
	resp := p.keys[0]
	p.keys = p.keys[1:]
	return resp, nil
}

func (p *fakePresenter) AskText(ctx context.Context, label string) (string, error) {
	p.asked = append(p.asked, label)
	if len(p.texts) == 0 {
		return "", errScriptExhausted
	}
	text := p.texts[0]
	p.texts = p.texts[1:]
	return text, nil
}

func (p *fakePresenter) AskChoice(ctx context.Context, prompt domain.ChoicePrompt) (string, error) {
	p.asked = append(p.asked, prompt.Label)
	v, ok := p.choices[prompt.Label]
	if !ok {
		return "", errScriptExhausted
	}
	return v, nil
}

// fakeWriter keeps every record in memory.
type fakeWriter struct {
	participants []domain.ParticipantInfo
	training     []*domain.TrainingTrial
	test         []domain.TestTrial
	err          error
	closed       bool
}

func (w *fakeWriter) WriteParticipant(info domain.ParticipantInfo) error {
	if w.err != nil {
		return w.err
	}
	w.participants = append(w.participants, info)
	return nil
}

func (w *fakeWriter) WriteTraining(trial *domain.TrainingTrial) error {
	if w.err != nil {
		return w.err
	}
	w.training = append(w.training, trial)
	return nil
}

func (w *fakeWriter) WriteTest(trial domain.TestTrial) error {
	if w.err != nil {
		return w.err
	}
	w.test = append(w.test, trial)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

// fakeMetrics counts recorded trials.
type fakeMetrics struct {
	training int
	test     int
}

func (m *fakeMetrics) RecordTraining(ctx context.Context, s *domain.Session, t *domain.TrainingTrial) {
	m.training++
}

func (m *fakeMetrics) RecordTest(ctx context.Context, s *domain.Session, t domain.TestTrial) {
	m.test++
}

func (m *fakeMetrics) Close(ctx context.Context) error { return nil }

func newTestSession(t *testing.T) *domain.Session {
	t.Helper()
	s, err := domain.NewSession(t.TempDir(), "p01", domain.ExperimentPilot, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func writeStimuli(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "stimuli-*.txt")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return f.Name()
}
