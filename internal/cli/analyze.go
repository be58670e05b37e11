package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/emiliopalmerini/aglab/internal/adapters/storage"
	"github.com/emiliopalmerini/aglab/internal/analysis"
	"github.com/emiliopalmerini/aglab/internal/analysis/inbound/report"
	"github.com/emiliopalmerini/aglab/internal/analysis/outbound/libsql"
	"github.com/emiliopalmerini/aglab/internal/domain"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Summarise results across participants",
	Long: `Import every participant directory under the data directory and report
training accuracy, test accuracy, d' and response times per participant and
for the group.

Examples:
  aglab analyze
  aglab analyze --type experimental --format json -o report.json
  aglab analyze --db analysis.db`,
	RunE: runAnalyze,
}

// Flags
var (
	analyzeFormat      string
	analyzeOutput      string
	analyzeDataDir     string
	analyzeType        string
	analyzeParticipant string
	analyzeDB          string
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "text", "Output format: text, json")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "Output file (default: stdout)")
	analyzeCmd.Flags().StringVarP(&analyzeDataDir, "data-dir", "d", "", "Results directory (overrides config)")
	analyzeCmd.Flags().StringVarP(&analyzeType, "type", "t", "", "Only include pilot or experimental sessions")
	analyzeCmd.Flags().StringVarP(&analyzeParticipant, "participant", "p", "", "Only include one participant")
	analyzeCmd.Flags().StringVar(&analyzeDB, "db", "", "Keep the imported rows in this database file (default: in memory)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	format, err := report.ParseFormat(analyzeFormat)
	if err != nil {
		return err
	}
	filter := analysis.SessionFilter{ParticipantID: analyzeParticipant}
	if analyzeType != "" {
		t, err := domain.ParseExperimentType(analyzeType)
		if err != nil {
			return err
		}
		filter.ExperimentType = t
	}

	app, err := NewAppContext(cfgPath)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close(ctx) }()

	dataDir := app.Config.DataDir
	if analyzeDataDir != "" {
		dataDir = analyzeDataDir
	}

	db, err := libsql.Open(ctx, analyzeDB)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := analysis.NewService(storage.NewResultReader(dataDir), libsql.NewRepository(db), app.Logger)
	result, err := svc.Analyze(ctx, filter)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	result.DataDir = dataDir

	out, closeOut, err := openOutput(cmd, analyzeOutput)
	if err != nil {
		return err
	}
	defer closeOut()

	return report.Write(out, result, format, outputWidth(out))
}

// openOutput returns the named file, or the command's stdout when name is
// empty.
func openOutput(cmd *cobra.Command, name string) (io.Writer, func(), error) {
	if name == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// outputWidth is the terminal width when w is a terminal, else 100.
func outputWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return 100
}
