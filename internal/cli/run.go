package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/aglab/internal/adapters/stimuli"
	"github.com/emiliopalmerini/aglab/internal/adapters/storage"
	"github.com/emiliopalmerini/aglab/internal/config"
	"github.com/emiliopalmerini/aglab/internal/domain"
	"github.com/emiliopalmerini/aglab/internal/experiment"
	"github.com/emiliopalmerini/aglab/internal/util"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an experiment session",
	Long: `Run one participant through the training and test phases.

Participant details not given as flags are asked for on screen. Results are
written to <data_dir>/<participant>_<YYYYMMDD>/ as each trial finishes.

With --plain, or when stdin is not a terminal, each answer is a line ended
with Enter. Test reaction times then include the Enter press and typing is
not uppercased, so plain-mode times are not comparable with full-screen ones.

Examples:
  aglab run
  aglab run --participant P07 --type experimental
  aglab run --config lab.yaml --seed 42 --plain`,
	RunE: runSession,
}

// Flags
var (
	runParticipant string
	runType        string
	runAge         string
	runGender      string
	runLanguage    string
	runDataDir     string
	runSeed        int64
	runBlocks      int
	runPlain       bool
	runUppercase   bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runParticipant, "participant", "p", "", "Participant ID")
	runCmd.Flags().StringVarP(&runType, "type", "t", "", "Experiment type: pilot, experimental")
	runCmd.Flags().StringVar(&runAge, "age", "", "Age group")
	runCmd.Flags().StringVar(&runGender, "gender", "", "Gender")
	runCmd.Flags().StringVar(&runLanguage, "language", "", "Native language")
	runCmd.Flags().StringVarP(&runDataDir, "data-dir", "d", "", "Results directory (overrides config)")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "Shuffle seed (overrides config)")
	runCmd.Flags().IntVar(&runBlocks, "blocks", 0, "Training blocks (overrides config)")
	runCmd.Flags().BoolVar(&runPlain, "plain", false, plainHelp)
	runCmd.Flags().BoolVar(&runUppercase, "uppercase", false, "Uppercase letters while typing")
}

const plainHelp = "Use line-based prompts instead of the full-screen display " +
	"(test RTs include the Enter press; --uppercase is ignored)"

// applyRunFlags copies explicitly set flags over the loaded configuration.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir = runDataDir
	}
	if flags.Changed("seed") {
		cfg.Seed = runSeed
	}
	if flags.Changed("blocks") {
		cfg.Training.Blocks = runBlocks
	}
	if flags.Changed("plain") {
		cfg.Display.Plain = runPlain
	}
	if flags.Changed("uppercase") {
		cfg.Display.UppercaseInput = runUppercase
	}
	return cfg.Validate()
}

// participantFromFlags returns the details given on the command line.
func participantFromFlags() (domain.ParticipantInfo, error) {
	info := domain.ParticipantInfo{
		ParticipantID:  runParticipant,
		Age:            runAge,
		Gender:         runGender,
		NativeLanguage: runLanguage,
	}
	if runParticipant != "" {
		if err := domain.ValidateParticipantID(runParticipant); err != nil {
			return info, err
		}
	}
	if runType != "" {
		t, err := domain.ParseExperimentType(runType)
		if err != nil {
			return info, err
		}
		info.ExperimentType = t
	}
	return info, nil
}

func runSession(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewAppContext(cfgPath)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close(context.Background()) }()

	cfg := app.Config
	if err := applyRunFlags(cmd, cfg); err != nil {
		return err
	}
	flagged, err := participantFromFlags()
	if err != nil {
		return err
	}

	training, err := stimuli.Load(cfg.TrainingFile, domain.PhaseTraining)
	if err != nil {
		return err
	}
	if err := training.CheckTypeable(cfg.Display.UppercaseInput); err != nil {
		return err
	}
	test, err := stimuli.Load(cfg.TestFile, domain.PhaseTest)
	if err != nil {
		return err
	}

	keys := cfg.KeyMap()
	trainingText, err := experiment.LoadInstructions(cfg.TrainingInstructions, experiment.DefaultTrainingInstructions())
	if err != nil {
		return err
	}
	testText, err := experiment.LoadInstructions(cfg.TestInstructions, experiment.DefaultTestInstructions(keys.Grammatical, keys.Ungrammatical))
	if err != nil {
		return err
	}

	pres, display, err := openPresenter(cfg, app.Logger)
	if err != nil {
		return fmt.Errorf("failed to open display: %w", err)
	}
	closeDisplay := sync.OnceFunc(func() { _ = display.Close() })
	defer closeDisplay()

	info, err := experiment.CollectParticipant(ctx, pres, flagged)
	if err != nil {
		return err
	}

	session, err := domain.NewSession(cfg.DataDir, info.ParticipantID, info.ExperimentType, time.Now())
	if err != nil {
		return err
	}
	store, err := storage.NewResultStore(session)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	seed := cfg.ResolveSeed(time.Now())
	runner := experiment.NewSession(session, info, training, test, pres, store, app.Metrics(ctx), app.Logger, experiment.Settings{
		Training: experiment.TrainingOptions{
			Exposure:     cfg.Training.Exposure,
			Feedback:     cfg.Training.Feedback,
			FeedbackText: cfg.Training.FeedbackText,
		},
		Test: experiment.TestOptions{
			Keys:    keys,
			Timeout: cfg.Test.Timeout,
		},
		Blocks:               cfg.Training.Blocks,
		ShuffleTraining:      cfg.Training.Shuffle,
		ShuffleTest:          cfg.Test.Shuffle,
		Seed:                 seed,
		TrainingInstructions: trainingText,
		TestInstructions:     testText,
	})

	summary, runErr := runner.Run(ctx)
	closeDisplay()

	out := cmd.OutOrStdout()
	if runErr != nil {
		if errors.Is(runErr, domain.ErrAborted) {
			fmt.Fprintf(cmd.ErrOrStderr(), "Session aborted. Partial results are in %s\n", session.OutputDir)
		}
		return runErr
	}
	printSummary(out, session, seed, summary)
	return nil
}

func printSummary(w io.Writer, session *domain.Session, seed int64, s experiment.Summary) {
	tr := s.Training.Rates()
	te := s.Test.Rates()
	fmt.Fprintf(w, "Session %s complete (%s)\n", session.ID, util.FormatDuration(s.Duration))
	fmt.Fprintf(w, "  Participant: %s (%s)\n", session.ParticipantID, session.ExperimentType)
	fmt.Fprintf(w, "  Seed:        %d\n", seed)
	fmt.Fprintf(w, "  Training:    %d trials, %d attempts, %s first-attempt accuracy\n",
		s.Training.Trials, s.Training.Attempts, util.FormatPercent(tr.FirstAttemptAccuracy))
	fmt.Fprintf(w, "  Test:        %d trials, %s correct, %d invalid, %d omitted\n",
		s.Test.Trials, util.FormatPercent(te.Accuracy), s.Test.Invalid, s.Test.Omitted)
	fmt.Fprintf(w, "  Results:     %s\n", session.OutputDir)
}
