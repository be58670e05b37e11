package experiment

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/emiliopalmerini/aglab/internal/domain"
	"github.com/emiliopalmerini/aglab/internal/ports"
)

// TestOptions controls the judgement phase.
type TestOptions struct {
	Keys domain.KeyMap
	// Timeout closes the response window. Zero waits indefinitely.
	Timeout time.Duration
}

// TestRunner runs grammaticality judgements: one keypress per word, no retries.
type TestRunner struct {
	session   *domain.Session
	presenter domain.Presenter
	writer    ports.ResultWriter
	metrics   ports.MetricsExporter
	logger    domain.Logger
	opts      TestOptions
}

// NewTestRunner creates a test runner for one session.
func NewTestRunner(
	session *domain.Session,
	presenter domain.Presenter,
	writer ports.ResultWriter,
	metrics ports.MetricsExporter,
	logger domain.Logger,
	opts TestOptions,
) *TestRunner {
	return &TestRunner{
		session:   session,
		presenter: presenter,
		writer:    writer,
		metrics:   metrics,
		logger:    logger,
		opts:      opts,
	}
}

// RunTrial presents one labelled word and records the first response.
func (r *TestRunner) RunTrial(ctx context.Context, index, count int, item domain.StimulusItem) (domain.TestTrial, error) {
	var trial domain.TestTrial
	var prompt domain.KeyPrompt
	var resp domain.KeyResponse

	state := TestPresenting
	for state != TestComplete {
		if err := ctx.Err(); err != nil {
			return domain.TestTrial{}, fmt.Errorf("%w: %w", domain.ErrAborted, err)
		}

		switch state {
		case TestPresenting:
			prompt = domain.KeyPrompt{
				Stimulus:   item.Text,
				Keys:       r.opts.Keys,
				Timeout:    r.opts.Timeout,
				TrialIndex: index,
				TrialCount: count,
			}
			state = TestAwaitingResponse

		case TestAwaitingResponse:
			var err error
			resp, err = r.presenter.AwaitKey(ctx, prompt)
			if err != nil {
				return domain.TestTrial{}, fmt.Errorf("test trial %d: %w", index, err)
			}
			trial = r.classify(index, item, resp)
			state = TestComplete
		}
	}

	if err := r.writer.WriteTest(trial); err != nil {
		r.logger.Error("failed to write test trial", "trial", index, "error", err)
		return domain.TestTrial{}, fmt.Errorf("save test trial %d: %w", index, err)
	}
	r.metrics.RecordTest(ctx, r.session, trial)

	r.logger.Info("test trial complete",
		"trial", index,
		"stimulus", item.Text,
		"response", string(trial.Response),
		"correct", trial.Correct,
	)
	return trial, nil
}

func (r *TestRunner) classify(index int, item domain.StimulusItem, resp domain.KeyResponse) domain.TestTrial {
	if resp.TimedOut {
		return domain.NewTestTrial(r.session.ParticipantID, index, item, domain.ResponseOmitted, "", nil)
	}
	response := r.opts.Keys.Classify(resp.Key)
	if response == domain.ResponseInvalid {
		r.logger.Debug("invalid key", "trial", index, "key", resp.Key)
	}
	rt := resp.Elapsed
	return domain.NewTestTrial(r.session.ParticipantID, index, item, response, resp.Key, &rt)
}

// Run presents every item once, shuffled when rng is non-nil.
func (r *TestRunner) Run(ctx context.Context, list ports.StimulusList, rng *rand.Rand) (domain.TestCounts, error) {
	var counts domain.TestCounts

	order := list
	if rng != nil {
		order = list.Shuffled(rng)
	}

	index := 0
	for item := range order.All() {
		index++
		trial, err := r.RunTrial(ctx, index, order.Len(), item)
		if err != nil {
			return counts, err
		}
		counts.Add(trial)
	}
	return counts, nil
}
