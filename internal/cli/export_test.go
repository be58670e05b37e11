package cli

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/aglab/internal/adapters/storage"
	"github.com/emiliopalmerini/aglab/internal/domain"
)

func TestCollectExport(t *testing.T) {
	dataDir := t.TempDir()
	writeSession(t, dataDir, "P01", domain.ExperimentPilot)
	writeSession(t, dataDir, "P02", domain.ExperimentExperimental)
	reader := storage.NewResultReader(dataDir)

	tests := []struct {
		kind   string
		header []string
		rows   int
	}{
		{"participants", storage.ParticipantHeader, 2},
		{"training", storage.TrainingHeader, 2},
		{"test", storage.TestHeader, 4},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			table, err := collectExport(reader, tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.header, table.header)
			assert.Len(t, table.rows, tt.rows)
			assert.Len(t, table.records, tt.rows)
			assert.Empty(t, table.skipped)
			for _, row := range table.rows {
				assert.Len(t, row, len(tt.header))
			}
		})
	}
}

func TestCollectExport_SkipsBrokenDir(t *testing.T) {
	dataDir := t.TempDir()
	writeSession(t, dataDir, "P01", domain.ExperimentPilot)

	broken := filepath.Join(dataDir, "P09_20250314")
	require.NoError(t, os.MkdirAll(broken, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(broken, "P09"+storage.TestSuffix), []byte("nonsense\n"), 0644))

	table, err := collectExport(storage.NewResultReader(dataDir), "test")
	require.NoError(t, err)
	assert.Len(t, table.rows, 2)
	require.Len(t, table.skipped, 1)
	assert.Contains(t, table.skipped[0], "P09_20250314")
}

func TestWriteExport(t *testing.T) {
	dataDir := t.TempDir()
	writeSession(t, dataDir, "P01", domain.ExperimentPilot)
	table, err := collectExport(storage.NewResultReader(dataDir), "test")
	require.NoError(t, err)

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeExport(&buf, table, "csv"))
		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, storage.TestHeader, records[0])
		assert.Equal(t, "omitted", records[2][4])
		assert.Empty(t, records[2][7], "omitted trials have no reaction time")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeExport(&buf, table, "json"))
		var rows []ExportTest
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
		require.Len(t, rows, 2)
		assert.Equal(t, "grammatical", rows[0].ResponseKey)
		require.NotNil(t, rows[0].ReactionTimeMs)
		assert.InDelta(t, 500, *rows[0].ReactionTimeMs, 1e-9)
		assert.Nil(t, rows[1].ReactionTimeMs)
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Error(t, writeExport(&bytes.Buffer{}, table, "xml"))
	})
}

func TestWriteExport_EmptyJSONIsArray(t *testing.T) {
	table, err := collectExport(storage.NewResultReader(t.TempDir()), "training")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeExport(&buf, table, "json"))
	assert.Equal(t, "[]\n", buf.String())
}
