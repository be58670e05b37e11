// Package experiment runs an artificial grammar learning session: a
// training phase of copy trials followed by a grammaticality test.
package experiment

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/emiliopalmerini/aglab/internal/domain"
	"github.com/emiliopalmerini/aglab/internal/ports"
)

// Settings groups everything a session needs besides its collaborators.
type Settings struct {
	Training TrainingOptions
	Test     TestOptions
	Blocks   int

	ShuffleTraining bool
	ShuffleTest     bool
	Seed            int64

	// Instruction screens, rendered as markdown.
	TrainingInstructions string
	TestInstructions     string
}

// Summary reports the totals of a finished session.
type Summary struct {
	Training domain.TrainingCounts
	Test     domain.TestCounts
	Duration time.Duration
}

// Session drives one participant through both phases.
type Session struct {
	session   *domain.Session
	info      domain.ParticipantInfo
	training  ports.StimulusList
	test      ports.StimulusList
	presenter domain.Presenter
	writer    ports.ResultWriter
	metrics   ports.MetricsExporter
	logger    domain.Logger
	settings  Settings
	now       func() time.Time
}

// NewSession wires a session. Both stimulus lists must already be loaded.
func NewSession(
	session *domain.Session,
	info domain.ParticipantInfo,
	training ports.StimulusList,
	test ports.StimulusList,
	presenter domain.Presenter,
	writer ports.ResultWriter,
	metrics ports.MetricsExporter,
	logger domain.Logger,
	settings Settings,
) *Session {
	return &Session{
		session:   session,
		info:      info,
		training:  training,
		test:      test,
		presenter: presenter,
		writer:    writer,
		metrics:   metrics,
		logger:    logger,
		settings:  settings,
		now:       time.Now,
	}
}

func (s *Session) rng(stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(s.settings.Seed), stream))
}

// Run writes the participant record, runs training then test, and shows
// the exit screen. It stops at the first error; records written before the
// error stay on disk.
func (s *Session) Run(ctx context.Context) (Summary, error) {
	var summary Summary
	start := s.now()

	s.logger.Info("session start",
		"session_id", s.session.ID,
		"participant_id", s.session.ParticipantID,
		"experiment_type", string(s.session.ExperimentType),
		"seed", s.settings.Seed,
		"output_dir", s.session.OutputDir,
	)

	info := s.info
	info.ParticipantID = s.session.ParticipantID
	info.SessionID = s.session.ID
	info.Timestamp = s.session.StartedAt
	info.ExperimentType = s.session.ExperimentType
	info.Seed = s.settings.Seed
	if err := s.writer.WriteParticipant(info); err != nil {
		return summary, fmt.Errorf("save participant info: %w", err)
	}

	if err := s.show(ctx, domain.Screen{Body: s.settings.TrainingInstructions, Markdown: true}); err != nil {
		return summary, err
	}

	var trainingRNG *rand.Rand
	if s.settings.ShuffleTraining {
		trainingRNG = s.rng(1)
	}
	training := NewTrainingRunner(s.session, s.presenter, s.writer, s.metrics, s.logger, s.settings.Training)
	counts, err := training.Run(ctx, s.training, s.settings.Blocks, trainingRNG)
	summary.Training = counts
	if err != nil {
		return summary, fmt.Errorf("training phase: %w", err)
	}
	s.logger.Info("training phase complete", "trials", counts.Trials, "attempts", counts.Attempts)

	if err := s.show(ctx, domain.Screen{Body: trainingCompleteText}); err != nil {
		return summary, err
	}
	if err := s.show(ctx, domain.Screen{Body: s.settings.TestInstructions, Markdown: true}); err != nil {
		return summary, err
	}

	var testRNG *rand.Rand
	if s.settings.ShuffleTest {
		testRNG = s.rng(2)
	}
	test := NewTestRunner(s.session, s.presenter, s.writer, s.metrics, s.logger, s.settings.Test)
	testCounts, err := test.Run(ctx, s.test, testRNG)
	summary.Test = testCounts
	if err != nil {
		return summary, fmt.Errorf("test phase: %w", err)
	}
	s.logger.Info("test phase complete", "trials", testCounts.Trials, "correct", testCounts.Correct)

	if err := s.show(ctx, domain.Screen{Body: exitText}); err != nil {
		return summary, err
	}

	summary.Duration = s.now().Sub(start)
	s.logger.Info("session complete", "session_id", s.session.ID, "duration", summary.Duration.String())
	return summary, nil
}

func (s *Session) show(ctx context.Context, screen domain.Screen) error {
	if screen.Body == "" {
		return nil
	}
	if err := s.presenter.Show(ctx, screen); err != nil {
		return fmt.Errorf("show screen: %w", err)
	}
	return nil
}
