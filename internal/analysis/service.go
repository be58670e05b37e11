// Package analysis imports per-participant result files into a SQL database
// and computes participant and group statistics from it.
package analysis

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/emiliopalmerini/aglab/internal/domain"
	"github.com/emiliopalmerini/aglab/internal/ports"
)

// Service provides analysis business logic
type Service struct {
	source ports.ResultReader
	repo   Repository
	logger domain.Logger
	now    func() time.Time
}

// NewService creates a new analysis service
func NewService(source ports.ResultReader, repo Repository, logger domain.Logger) *Service {
	return &Service{
		source: source,
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

type sessionFiles struct {
	info     domain.ParticipantInfo
	training []domain.TrainingTrial
	test     []domain.TestTrial
}

// Import loads every participant directory into the repository. A directory
// that cannot be read is logged and reported as skipped; repository errors
// abort the import.
func (s *Service) Import(ctx context.Context) (ImportStats, error) {
	var stats ImportStats

	dirs, err := s.source.ListParticipantDirs()
	if err != nil {
		return stats, fmt.Errorf("list participant directories: %w", err)
	}

	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		files, err := s.readDir(dir)
		if err != nil {
			s.logger.Error("Skipping participant directory", "dir", dir, "error", err)
			stats.Skipped = append(stats.Skipped, SkippedDir{Dir: dir, Reason: err.Error()})
			continue
		}

		if err := s.store(ctx, files); err != nil {
			return stats, fmt.Errorf("import %s: %w", dir, err)
		}

		stats.Sessions++
		stats.TrainingTrials += len(files.training)
		stats.TestTrials += len(files.test)
		s.logger.Debug("Imported participant directory",
			"dir", dir,
			"session_id", files.info.SessionID,
			"training_trials", len(files.training),
			"test_trials", len(files.test))
	}

	s.logger.Info("Import finished",
		"sessions", stats.Sessions,
		"skipped", len(stats.Skipped))
	return stats, nil
}

func (s *Service) readDir(dir string) (sessionFiles, error) {
	info, err := s.source.ReadParticipant(dir)
	if err != nil {
		return sessionFiles{}, err
	}
	// Files written before session ids existed are keyed by directory.
	if info.SessionID == "" {
		info.SessionID = filepath.Base(dir)
	}

	training, err := s.source.ReadTraining(dir)
	if err != nil {
		return sessionFiles{}, err
	}
	test, err := s.source.ReadTest(dir)
	if err != nil {
		return sessionFiles{}, err
	}
	return sessionFiles{info: info, training: training, test: test}, nil
}

func (s *Service) store(ctx context.Context, files sessionFiles) error {
	id := files.info.SessionID
	if err := s.repo.SaveSession(ctx, files.info); err != nil {
		return err
	}
	for _, t := range files.training {
		if err := s.repo.SaveTraining(ctx, id, t); err != nil {
			return err
		}
	}
	for _, t := range files.test {
		if err := s.repo.SaveTest(ctx, id, t); err != nil {
			return err
		}
	}
	return nil
}

// Report computes participant and group statistics over the imported
// sessions that match filter.
func (s *Service) Report(ctx context.Context, filter SessionFilter) (Report, error) {
	s.logger.Debug("Building report", "experiment_type", filter.ExperimentType, "participant", filter.ParticipantID)

	sessions, err := s.repo.ListSessions(ctx, filter)
	if err != nil {
		return Report{}, fmt.Errorf("list sessions: %w", err)
	}

	report := Report{
		GeneratedAt:  s.now(),
		Participants: make([]ParticipantReport, 0, len(sessions)),
	}
	ids := make([]string, 0, len(sessions))

	for _, info := range sessions {
		p, err := s.participant(ctx, info)
		if err != nil {
			return Report{}, fmt.Errorf("session %s: %w", info.SessionID, err)
		}
		report.Participants = append(report.Participants, p)
		ids = append(ids, info.SessionID)
	}

	report.Group, err = s.group(ctx, ids, report.Participants)
	if err != nil {
		return Report{}, err
	}
	return report, nil
}

// Analyze imports the result files and builds a report in one call.
func (s *Service) Analyze(ctx context.Context, filter SessionFilter) (Report, error) {
	imported, err := s.Import(ctx)
	if err != nil {
		return Report{}, err
	}
	report, err := s.Report(ctx, filter)
	if err != nil {
		return Report{}, err
	}
	report.Skipped = imported.Skipped
	return report, nil
}

func (s *Service) participant(ctx context.Context, info SessionInfo) (ParticipantReport, error) {
	p := ParticipantReport{Session: info}
	var err error

	if p.Training, err = s.repo.TrainingStats(ctx, info.SessionID); err != nil {
		return p, fmt.Errorf("training stats: %w", err)
	}
	p.Training.Rates = p.Training.Counts.Rates()

	if p.Test, err = s.repo.TestStats(ctx, info.SessionID); err != nil {
		return p, fmt.Errorf("test stats: %w", err)
	}
	p.Test.Rates = p.Test.Counts.Rates()
	p.Test.DPrime = DPrime(p.Test.Counts)

	if p.ByGrammaticality, err = s.repo.ByGrammaticality(ctx, []string{info.SessionID}); err != nil {
		return p, fmt.Errorf("grammaticality breakdown: %w", err)
	}
	if p.TrainingRTs, err = s.repo.RTSeries(ctx, info.SessionID, domain.PhaseTraining); err != nil {
		return p, fmt.Errorf("training rt series: %w", err)
	}
	if p.TestRTs, err = s.repo.RTSeries(ctx, info.SessionID, domain.PhaseTest); err != nil {
		return p, fmt.Errorf("test rt series: %w", err)
	}
	return p, nil
}

// group describes participant-level values. Participants without rows for a
// phase are left out of that phase's statistics.
func (s *Service) group(ctx context.Context, ids []string, participants []ParticipantReport) (GroupReport, error) {
	var trainAcc, firstAcc, perTrial, testAcc, testRT, dprime []float64

	for _, p := range participants {
		if p.Training.Counts.Trials > 0 {
			trainAcc = append(trainAcc, p.Training.Rates.AttemptAccuracy)
			firstAcc = append(firstAcc, p.Training.Rates.FirstAttemptAccuracy)
			perTrial = append(perTrial, p.Training.Rates.AttemptsPerTrial)
		}
		if p.Test.Counts.Trials > 0 {
			testAcc = append(testAcc, p.Test.Rates.Accuracy)
			dprime = append(dprime, p.Test.DPrime)
		}
		if p.Test.Counts.Correct > 0 {
			testRT = append(testRT, p.Test.MeanCorrectRTMs)
		}
	}

	g := GroupReport{
		TrainingAccuracy:     Describe(trainAcc),
		FirstAttemptAccuracy: Describe(firstAcc),
		AttemptsPerTrial:     Describe(perTrial),
		TestAccuracy:         Describe(testAcc),
		TestMeanCorrectRTMs:  Describe(testRT),
		DPrime:               Describe(dprime),
	}

	var err error
	if g.ByGrammaticality, err = s.repo.ByGrammaticality(ctx, ids); err != nil {
		return g, fmt.Errorf("group grammaticality breakdown: %w", err)
	}
	if g.Overall, err = s.repo.Overall(ctx, ids); err != nil {
		return g, fmt.Errorf("overall averages: %w", err)
	}
	return g, nil
}
