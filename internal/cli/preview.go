package cli

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/aglab/internal/adapters/otel"
	"github.com/emiliopalmerini/aglab/internal/adapters/stimuli"
	"github.com/emiliopalmerini/aglab/internal/domain"
	"github.com/emiliopalmerini/aglab/internal/experiment"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Try the display with a short demo session",
	Long: `Run two training words and four test words through the configured
display. Nothing is written to the data directory.

Controls (full-screen display):
  Space/Enter   Continue past instruction screens
  Enter         Submit a typed word
  Ctrl+C        Abort`,
	RunE: runPreview,
}

var previewPlain bool

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().BoolVar(&previewPlain, "plain", false, plainHelp)
}

// discardWriter accepts every record and keeps none.
type discardWriter struct{}

func (discardWriter) WriteParticipant(domain.ParticipantInfo) error { return nil }
func (discardWriter) WriteTraining(*domain.TrainingTrial) error     { return nil }
func (discardWriter) WriteTest(domain.TestTrial) error              { return nil }
func (discardWriter) Close() error                                  { return nil }

func previewLists() (*stimuli.Sequence, *stimuli.Sequence) {
	training := stimuli.NewSequence(domain.PhaseTraining, []domain.StimulusItem{
		domain.NewTrainingItem("PVTRX"),
		domain.NewTrainingItem("TSXXS"),
	})
	test := stimuli.NewSequence(domain.PhaseTest, []domain.StimulusItem{
		domain.NewTestItem("PVPXS", true),
		domain.NewTestItem("TXXVS", false),
		domain.NewTestItem("TSSXS", true),
		domain.NewTestItem("PXTVV", false),
	})
	return training, test
}

func runPreview(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewAppContext(cfgPath)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close(ctx) }()

	cfg := app.Config
	if cmd.Flags().Changed("plain") {
		cfg.Display.Plain = previewPlain
	}

	pres, display, err := openPresenter(cfg, app.Logger)
	if err != nil {
		return fmt.Errorf("failed to open display: %w", err)
	}
	closeDisplay := sync.OnceFunc(func() { _ = display.Close() })
	defer closeDisplay()

	session, err := domain.NewSession(os.TempDir(), "preview", domain.ExperimentPilot, time.Now())
	if err != nil {
		return err
	}
	info := domain.ParticipantInfo{Age: "-", Gender: "-", NativeLanguage: "-"}

	keys := cfg.KeyMap()
	training, test := previewLists()
	runner := experiment.NewSession(session, info, training, test, pres, discardWriter{}, otel.NewNoOpExporter(), app.Logger, experiment.Settings{
		Training: experiment.TrainingOptions{
			Exposure:     cfg.Training.Exposure,
			Feedback:     cfg.Training.Feedback,
			FeedbackText: cfg.Training.FeedbackText,
		},
		Test:                 experiment.TestOptions{Keys: keys, Timeout: cfg.Test.Timeout},
		Blocks:               1,
		TrainingInstructions: experiment.DefaultTrainingInstructions(),
		TestInstructions:     experiment.DefaultTestInstructions(keys.Grammatical, keys.Ungrammatical),
	})

	summary, err := runner.Run(ctx)
	closeDisplay()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Preview finished: %d training attempts, %d/%d test words correct\n",
		summary.Training.Attempts, summary.Test.Correct, summary.Test.Trials)
	return nil
}
