package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/aglab/internal/adapters/stimuli"
	"github.com/emiliopalmerini/aglab/internal/config"
	"github.com/emiliopalmerini/aglab/internal/domain"
	"github.com/emiliopalmerini/aglab/internal/experiment"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and stimulus files",
	Long: `Load the configuration, both stimulus files and any instruction files
without starting a session, and report what a session would use.

Examples:
  aglab validate
  aglab validate --config lab.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return validateFiles(cmd.OutOrStdout(), cfg)
}

// validateFiles loads every file named by cfg and reports all problems at once.
func validateFiles(w io.Writer, cfg *config.Config) error {
	var errs []error

	training, err := stimuli.Load(cfg.TrainingFile, domain.PhaseTraining)
	if err != nil {
		errs = append(errs, err)
	} else {
		fmt.Fprintf(w, "training: %s, %d words x %d blocks = %d trials\n",
			training.Path(), training.Len(), cfg.Training.Blocks, training.Len()*cfg.Training.Blocks)
		if err := training.CheckTypeable(cfg.Display.UppercaseInput); err != nil {
			errs = append(errs, err)
		}
	}

	test, err := stimuli.Load(cfg.TestFile, domain.PhaseTest)
	if err != nil {
		errs = append(errs, err)
	} else {
		g := test.CountGrammatical()
		fmt.Fprintf(w, "test:     %s, %d words (%d grammatical, %d ungrammatical)\n",
			test.Path(), test.Len(), g, test.Len()-g)
	}

	for _, path := range []string{cfg.TrainingInstructions, cfg.TestInstructions} {
		if path == "" {
			continue
		}
		if _, err := experiment.LoadInstructions(path, ""); err != nil {
			errs = append(errs, err)
		}
	}

	if training != nil && test != nil {
		seen := make(map[string]bool, training.Len())
		for item := range training.All() {
			seen[item.Text] = true
		}
		overlap := 0
		for item := range test.All() {
			if seen[item.Text] {
				overlap++
			}
		}
		if overlap > 0 {
			fmt.Fprintf(w, "warning:  %d test words also appear in training\n", overlap)
		}
	}

	keys := cfg.KeyMap()
	fmt.Fprintf(w, "keys:     %s = grammatical, %s = ungrammatical\n", keys.Grammatical, keys.Ungrammatical)

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	fmt.Fprintln(w, "ok")
	return nil
}
