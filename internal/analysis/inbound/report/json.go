package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/emiliopalmerini/aglab/internal/analysis"
)

// JSON writes the report as indented JSON.
func JSON(w io.Writer, r analysis.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
