package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/aglab/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aglab.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 2, cfg.Training.Blocks)
	assert.Equal(t, 4*time.Second, cfg.Training.Exposure)
	assert.Equal(t, 2*time.Second, cfg.Training.Feedback)
	assert.Equal(t, 6*time.Second, cfg.Test.Timeout)
	assert.Equal(t, domain.DefaultKeyMap(), cfg.KeyMap())
	assert.False(t, cfg.OTEL.Enabled)
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
data_dir: results
training_file: stimuli/train.txt
seed: 42
training:
  blocks: 3
  exposure: 2500ms
test:
  timeout: 0s
  grammatical_key: a
  ungrammatical_key: l
display:
  uppercase_input: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	dir := filepath.Dir(path)
	assert.Equal(t, filepath.Join(dir, "results"), cfg.DataDir)
	assert.Equal(t, filepath.Join(dir, "stimuli/train.txt"), cfg.TrainingFile)
	assert.Equal(t, filepath.Join(dir, "test_phase.txt"), cfg.TestFile)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, 3, cfg.Training.Blocks)
	assert.Equal(t, 2500*time.Millisecond, cfg.Training.Exposure)
	assert.Equal(t, 2*time.Second, cfg.Training.Feedback, "unset keys keep defaults")
	assert.Zero(t, cfg.Test.Timeout)
	assert.Equal(t, domain.KeyMap{Grammatical: "a", Ungrammatical: "l"}, cfg.KeyMap())
	assert.True(t, cfg.Display.UppercaseInput)
}

func TestLoad_UnknownField(t *testing.T) {
	path := writeConfig(t, "trainng:\n  blocks: 3\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "data_dir: from-file\nlog:\n  level: warn\n")

	t.Setenv("AGLAB_DATA_DIR", "/srv/aglab")
	t.Setenv("AGLAB_LOG_LEVEL", "debug")
	t.Setenv("AGLAB_LOG_DIR", "/var/log/aglab")
	t.Setenv("AGLAB_SEED", "7")
	t.Setenv("AGLAB_OTEL_ENABLED", "true")
	t.Setenv("AGLAB_OTEL_ENDPOINT", "collector:4317")
	t.Setenv("AGLAB_OTEL_INSECURE", "false")
	t.Setenv("AGLAB_TRAINING_BLOCKS", "4")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/aglab", cfg.DataDir)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/var/log/aglab", cfg.Log.Dir)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.True(t, cfg.OTEL.Enabled)
	assert.Equal(t, "collector:4317", cfg.OTEL.Endpoint)
	assert.False(t, cfg.OTEL.Insecure)
	assert.Equal(t, 4, cfg.Training.Blocks)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero blocks", func(c *Config) { c.Training.Blocks = 0 }},
		{"negative exposure", func(c *Config) { c.Training.Exposure = -time.Second }},
		{"negative feedback", func(c *Config) { c.Training.Feedback = -time.Second }},
		{"negative timeout", func(c *Config) { c.Test.Timeout = -time.Second }},
		{"empty key", func(c *Config) { c.Test.GrammaticalKey = " " }},
		{"same keys", func(c *Config) { c.Test.UngrammaticalKey = "F" }},
		{"no data dir", func(c *Config) { c.DataDir = "" }},
		{"no training file", func(c *Config) { c.TrainingFile = "" }},
		{"otel without endpoint", func(c *Config) { c.OTEL.Enabled = true; c.OTEL.Endpoint = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestResolveSeed(t *testing.T) {
	now := time.Unix(0, 12345)
	cfg := Default()
	assert.Equal(t, int64(12345), cfg.ResolveSeed(now))

	cfg.Seed = 9
	assert.Equal(t, int64(9), cfg.ResolveSeed(now))
}
