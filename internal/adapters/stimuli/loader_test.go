package stimuli

import (
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/aglab/internal/domain"
	"github.com/emiliopalmerini/aglab/internal/ports"
)

var _ ports.StimulusList = (*Sequence)(nil)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stimuli.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func collect(seq ports.StimulusList) []domain.StimulusItem {
	return slices.Collect(seq.All())
}

func TestLoad_Training(t *testing.T) {
	path := writeFile(t, "PLOFEL\n  KIJBOSTAL  \n\n# comment\nMEVROS\n")

	seq, err := Load(path, domain.PhaseTraining)
	require.NoError(t, err)

	items := collect(seq)
	require.Len(t, items, 3)
	assert.Equal(t, "PLOFEL", items[0].Text)
	assert.Equal(t, "KIJBOSTAL", items[1].Text)
	assert.Equal(t, "MEVROS", items[2].Text)
	for _, item := range items {
		assert.Equal(t, domain.PhaseTraining, item.Phase)
		assert.Nil(t, item.Grammatical)
	}
}

func TestLoad_Test(t *testing.T) {
	path := writeFile(t, "kijbostal 1\nplofel\t0\nmevros grammatical\ntask false\n")

	seq, err := Load(path, domain.PhaseTest)
	require.NoError(t, err)

	items := collect(seq)
	require.Len(t, items, 4)
	assert.True(t, items[0].IsGrammatical())
	assert.False(t, items[1].IsGrammatical())
	assert.True(t, items[2].IsGrammatical())
	assert.False(t, items[3].IsGrammatical())
	assert.Equal(t, 2, seq.CountGrammatical())
	require.NotNil(t, items[1].Grammatical)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		phase   domain.Phase
		line    int
	}{
		{"empty file", "", domain.PhaseTraining, 0},
		{"only comments", "# nothing\n\n", domain.PhaseTraining, 0},
		{"two words in training", "PLOFEL\nPLOFEL EXTRA\n", domain.PhaseTraining, 2},
		{"missing label", "plofel 1\nkijbostal\n", domain.PhaseTest, 2},
		{"bad label", "plofel maybe\n", domain.PhaseTest, 1},
		{"extra field", "plofel 1 x\n", domain.PhaseTest, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.content)
			_, err := Load(path, tt.phase)
			require.Error(t, err)

			var loadErr *domain.LoadError
			require.True(t, errors.As(err, &loadErr), "expected LoadError, got %T", err)
			assert.Equal(t, tt.line, loadErr.Line)
			assert.Equal(t, path, loadErr.Path)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"), domain.PhaseTraining)

	var loadErr *domain.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "file does not exist", loadErr.Reason)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_Idempotent(t *testing.T) {
	path := writeFile(t, "a 1\nb 0\nc 1\n")

	first, err := Load(path, domain.PhaseTest)
	require.NoError(t, err)
	second, err := Load(path, domain.PhaseTest)
	require.NoError(t, err)

	assert.Equal(t, collect(first), collect(second))
}

func TestSequence_Restartable(t *testing.T) {
	path := writeFile(t, "A\nB\nC\n")
	seq, err := Load(path, domain.PhaseTraining)
	require.NoError(t, err)

	assert.Equal(t, collect(seq), collect(seq))

	// Stopping early must not affect the next iteration.
	for range seq.All() {
		break
	}
	assert.Len(t, collect(seq), 3)
}

func TestSequence_Shuffled(t *testing.T) {
	path := writeFile(t, "A\nB\nC\nD\nE\nF\nG\nH\n")
	seq, err := Load(path, domain.PhaseTraining)
	require.NoError(t, err)

	shuffled := seq.Shuffled(rand.New(rand.NewPCG(1, 2)))

	texts := func(items []domain.StimulusItem) []string {
		out := make([]string, len(items))
		for i, item := range items {
			out[i] = item.Text
		}
		return out
	}
	original := texts(collect(seq))
	permuted := texts(collect(shuffled))

	assert.Equal(t, []string{"A", "B", "C", "D", "E", "F", "G", "H"}, original, "receiver must be unchanged")
	assert.ElementsMatch(t, original, permuted)
	assert.Equal(t, seq.Len(), shuffled.Len())

	again := texts(collect(seq.Shuffled(rand.New(rand.NewPCG(1, 2)))))
	assert.Equal(t, permuted, again, "same seed must give the same order")
}

func TestNewSequence_CopiesItems(t *testing.T) {
	items := []domain.StimulusItem{domain.NewTestItem("A", true), domain.NewTestItem("B", false)}
	seq := NewSequence(domain.PhaseTest, items)
	items[0] = domain.NewTestItem("Z", false)

	got := collect(seq)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Text)
	assert.Equal(t, 1, seq.CountGrammatical())
	assert.Equal(t, domain.PhaseTest, seq.Phase())
}

func TestSequence_CheckTypeable(t *testing.T) {
	seq := NewSequence(domain.PhaseTraining, []domain.StimulusItem{
		domain.NewTrainingItem("PVTRX"),
		domain.NewTrainingItem("plofel"),
		domain.NewTrainingItem("Mevros"),
	})

	require.NoError(t, seq.CheckTypeable(false))

	err := seq.CheckTypeable(true)
	require.Error(t, err)
	var loadErr *domain.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Contains(t, err.Error(), `"plofel"`)
	assert.Contains(t, err.Error(), `"Mevros"`)
	assert.NotContains(t, err.Error(), "PVTRX")

	upper := NewSequence(domain.PhaseTraining, []domain.StimulusItem{domain.NewTrainingItem("PLOFEL")})
	assert.NoError(t, upper.CheckTypeable(true))
}
