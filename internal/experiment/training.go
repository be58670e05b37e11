package experiment

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/emiliopalmerini/aglab/internal/domain"
	"github.com/emiliopalmerini/aglab/internal/ports"
)

// TrainingOptions controls how training words are shown.
type TrainingOptions struct {
	Exposure time.Duration
	// Feedback is how long FeedbackText stays up after a wrong attempt.
	// Zero skips the feedback screen.
	Feedback     time.Duration
	FeedbackText string
}

// TrainingRunner runs copy trials: a trial repeats until the participant
// types the word exactly.
type TrainingRunner struct {
	session   *domain.Session
	presenter domain.Presenter
	writer    ports.ResultWriter
	metrics   ports.MetricsExporter
	logger    domain.Logger
	opts      TrainingOptions
}

// NewTrainingRunner creates a training runner for one session.
func NewTrainingRunner(
	session *domain.Session,
	presenter domain.Presenter,
	writer ports.ResultWriter,
	metrics ports.MetricsExporter,
	logger domain.Logger,
	opts TrainingOptions,
) *TrainingRunner {
	return &TrainingRunner{
		session:   session,
		presenter: presenter,
		writer:    writer,
		metrics:   metrics,
		logger:    logger,
		opts:      opts,
	}
}

// Position locates a trial within its phase. Index and Block are 1-based.
type Position struct {
	Block int
	Index int
	Count int
}

// RunTrial presents one word until it is reproduced, then writes the trial.
// The trial is written exactly once and only when complete.
func (r *TrainingRunner) RunTrial(ctx context.Context, pos Position, stimulus string) (*domain.TrainingTrial, error) {
	trial := domain.NewTrainingTrial(r.session.ParticipantID, pos.Block, pos.Index, stimulus)

	var prompt domain.TypingPrompt
	var typed domain.TypedResponse

	state := StatePresenting
	for state != StateComplete {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrAborted, err)
		}

		switch state {
		case StatePresenting:
			prompt = domain.TypingPrompt{
				Stimulus:   stimulus,
				Exposure:   r.opts.Exposure,
				Block:      pos.Block,
				TrialIndex: pos.Index,
				TrialCount: pos.Count,
				Attempt:    len(trial.Attempts) + 1,
			}
			state = StateAwaitingInput

		case StateAwaitingInput:
			resp, err := r.presenter.AwaitTyped(ctx, prompt)
			if err != nil {
				return nil, fmt.Errorf("training trial %d: %w", pos.Index, err)
			}
			typed = resp
			state = StateValidating

		case StateValidating:
			correct, err := trial.Record(typed.Text, typed.Elapsed)
			if err != nil {
				return nil, err
			}
			r.logger.Debug("training attempt",
				"trial", pos.Index,
				"attempt", len(trial.Attempts),
				"stimulus", stimulus,
				"typed", typed.Text,
				"correct", correct,
				"rt_ms", domain.DurationMs(typed.Elapsed),
			)
			if correct {
				state = StateComplete
			} else {
				state = StateRetry
			}

		case StateRetry:
			if r.opts.Feedback > 0 {
				screen := domain.Screen{Body: r.opts.FeedbackText, Hold: r.opts.Feedback}
				if err := r.presenter.Show(ctx, screen); err != nil {
					return nil, fmt.Errorf("training feedback %d: %w", pos.Index, err)
				}
			}
			state = StatePresenting
		}
	}

	if err := r.writer.WriteTraining(trial); err != nil {
		r.logger.Error("failed to write training trial", "trial", pos.Index, "error", err)
		return nil, fmt.Errorf("save training trial %d: %w", pos.Index, err)
	}
	r.metrics.RecordTraining(ctx, r.session, trial)

	r.logger.Info("training trial complete",
		"block", pos.Block,
		"trial", pos.Index,
		"stimulus", stimulus,
		"attempts", len(trial.Attempts),
	)
	return trial, nil
}

// Run presents the list blocks times, reshuffling before each block when
// rng is non-nil. Trial indices continue across blocks.
func (r *TrainingRunner) Run(ctx context.Context, list ports.StimulusList, blocks int, rng *rand.Rand) (domain.TrainingCounts, error) {
	var counts domain.TrainingCounts
	total := blocks * list.Len()
	index := 0

	for block := 1; block <= blocks; block++ {
		order := list
		if rng != nil {
			order = list.Shuffled(rng)
		}
		r.logger.Debug("training block start", "block", block, "trials", order.Len())

		for item := range order.All() {
			index++
			trial, err := r.RunTrial(ctx, Position{Block: block, Index: index, Count: total}, item.Text)
			if err != nil {
				return counts, err
			}
			counts.Add(trial)
		}
	}
	return counts, nil
}
