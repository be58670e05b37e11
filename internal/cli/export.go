package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/aglab/internal/adapters/storage"
	"github.com/emiliopalmerini/aglab/internal/domain"
	"github.com/emiliopalmerini/aglab/internal/ports"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all participants' rows to JSON or CSV",
	Long: `Concatenate one kind of result file across every participant directory.

Examples:
  aglab export --phase test --format csv --output test.csv
  aglab export --phase training --format json
  aglab export --phase participants`,
	RunE: runExport,
}

// Flags
var (
	exportPhase   string
	exportFormat  string
	exportOutput  string
	exportDataDir string
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportPhase, "phase", "test", "Rows to export: training, test, participants")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "Output format: csv, json")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout)")
	exportCmd.Flags().StringVarP(&exportDataDir, "data-dir", "d", "", "Results directory (overrides config)")
}

type ExportParticipant struct {
	ParticipantID  string `json:"participant_id"`
	SessionID      string `json:"session_id"`
	Timestamp      string `json:"timestamp"`
	ExperimentType string `json:"experiment_type"`
	Age            string `json:"age"`
	Gender         string `json:"gender"`
	NativeLanguage string `json:"native_language"`
	Seed           int64  `json:"seed"`
}

type ExportTraining struct {
	ParticipantID   string           `json:"participant_id"`
	Block           int              `json:"block"`
	TrialIndex      int              `json:"trial_index"`
	Stimulus        string           `json:"stimulus"`
	AttemptCount    int              `json:"attempt_count"`
	Attempts        []domain.Attempt `json:"attempts"`
	FinalCorrect    bool             `json:"final_correct"`
	FirstResponseMs float64          `json:"first_response_ms"`
	FinalResponseMs float64          `json:"final_response_ms"`
	TotalResponseMs float64          `json:"total_response_ms"`
}

type ExportTest struct {
	ParticipantID  string   `json:"participant_id"`
	TrialIndex     int      `json:"trial_index"`
	Stimulus       string   `json:"stimulus"`
	Grammatical    bool     `json:"grammatical"`
	ResponseKey    string   `json:"response_key"`
	PressedKey     string   `json:"pressed_key"`
	Correct        bool     `json:"correct"`
	ReactionTimeMs *float64 `json:"reaction_time_ms"`
}

// exportTable holds the same rows as CSV records and as JSON values.
type exportTable struct {
	header  []string
	rows    [][]string
	records []any
	skipped []string
}

func (t *exportTable) add(row []string, record any) {
	t.rows = append(t.rows, row)
	t.records = append(t.records, record)
}

func runExport(cmd *cobra.Command, args []string) error {
	kind := strings.ToLower(strings.TrimSpace(exportPhase))
	if kind != "participants" {
		phase, err := domain.ParsePhase(kind)
		if err != nil {
			return fmt.Errorf("%w (or participants)", err)
		}
		kind = phase.String()
	}
	if exportFormat != "csv" && exportFormat != "json" {
		return fmt.Errorf("unsupported format: %s (use json or csv)", exportFormat)
	}

	app, err := NewAppContext(cfgPath)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close(cmd.Context()) }()

	dataDir := app.Config.DataDir
	if exportDataDir != "" {
		dataDir = exportDataDir
	}

	table, err := collectExport(storage.NewResultReader(dataDir), kind)
	if err != nil {
		return err
	}
	for _, dir := range table.skipped {
		app.Logger.Error("Export skipped directory", "dir", dir)
	}

	output, closeOut, err := openOutput(cmd, exportOutput)
	if err != nil {
		return err
	}
	defer closeOut()

	if err := writeExport(output, table, exportFormat); err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	for _, dir := range table.skipped {
		fmt.Fprintf(stderr, "Skipped %s\n", dir)
	}
	if exportOutput != "" {
		fmt.Fprintf(stderr, "Exported %d %s rows to %s\n", len(table.rows), kind, exportOutput)
	}
	return nil
}

// collectExport reads one kind of record from every participant directory.
// Directories that cannot be read are listed in skipped.
func collectExport(reader ports.ResultReader, kind string) (*exportTable, error) {
	dirs, err := reader.ListParticipantDirs()
	if err != nil {
		return nil, err
	}

	table := &exportTable{records: []any{}}
	switch kind {
	case "participants":
		table.header = storage.ParticipantHeader
	case "training":
		table.header = storage.TrainingHeader
	default:
		table.header = storage.TestHeader
	}

	for _, dir := range dirs {
		if err := collectDir(reader, dir, kind, table); err != nil {
			table.skipped = append(table.skipped, fmt.Sprintf("%s: %v", dir, err))
		}
	}
	return table, nil
}

func collectDir(reader ports.ResultReader, dir, kind string, table *exportTable) error {
	switch kind {
	case "participants":
		p, err := reader.ReadParticipant(dir)
		if err != nil {
			return err
		}
		table.add(storage.EncodeParticipant(p), ExportParticipant{
			ParticipantID:  p.ParticipantID,
			SessionID:      p.SessionID,
			Timestamp:      p.Timestamp.Format(time.RFC3339),
			ExperimentType: string(p.ExperimentType),
			Age:            p.Age,
			Gender:         p.Gender,
			NativeLanguage: p.NativeLanguage,
			Seed:           p.Seed,
		})

	case "training":
		trials, err := reader.ReadTraining(dir)
		if err != nil {
			return err
		}
		for i := range trials {
			t := &trials[i]
			row, err := storage.EncodeTraining(t)
			if err != nil {
				return err
			}
			table.add(row, ExportTraining{
				ParticipantID:   t.ParticipantID,
				Block:           t.Block,
				TrialIndex:      t.TrialIndex,
				Stimulus:        t.Stimulus,
				AttemptCount:    len(t.Attempts),
				Attempts:        t.Attempts,
				FinalCorrect:    t.FinalCorrect,
				FirstResponseMs: t.FirstResponseMs(),
				FinalResponseMs: t.FinalResponseMs(),
				TotalResponseMs: t.TotalResponseMs(),
			})
		}

	default:
		trials, err := reader.ReadTest(dir)
		if err != nil {
			return err
		}
		for _, t := range trials {
			table.add(storage.EncodeTest(t), ExportTest{
				ParticipantID:  t.ParticipantID,
				TrialIndex:     t.TrialIndex,
				Stimulus:       t.Stimulus,
				Grammatical:    t.Grammatical,
				ResponseKey:    string(t.Response),
				PressedKey:     t.PressedKey,
				Correct:        t.Correct,
				ReactionTimeMs: t.ReactionTimeMs,
			})
		}
	}
	return nil
}

func writeExport(w io.Writer, table *exportTable, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(table.records); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
	case "csv":
		writer := csv.NewWriter(w)
		if err := writer.Write(table.header); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
		if err := writer.WriteAll(table.rows); err != nil {
			return fmt.Errorf("failed to write CSV rows: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format: %s (use json or csv)", format)
	}
	return nil
}
