// Package config resolves session settings from defaults, an optional YAML
// file and AGLAB_* environment variables, in that order.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/emiliopalmerini/aglab/internal/domain"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "AGLAB"

// Config holds every setting of an experiment session.
type Config struct {
	DataDir              string `yaml:"data_dir" envconfig:"DATA_DIR"`
	TrainingFile         string `yaml:"training_file" envconfig:"TRAINING_FILE"`
	TestFile             string `yaml:"test_file" envconfig:"TEST_FILE"`
	TrainingInstructions string `yaml:"training_instructions" envconfig:"TRAINING_INSTRUCTIONS"`
	TestInstructions     string `yaml:"test_instructions" envconfig:"TEST_INSTRUCTIONS"`
	// Seed drives every shuffle. Zero picks a seed from the clock.
	Seed int64 `yaml:"seed" envconfig:"SEED"`

	Training TrainingConfig `yaml:"training" envconfig:"TRAINING"`
	Test     TestConfig     `yaml:"test" envconfig:"TEST"`
	Display  DisplayConfig  `yaml:"display" envconfig:"DISPLAY"`
	Log      LogConfig      `yaml:"log" envconfig:"LOG"`
	OTEL     OTELConfig     `yaml:"otel" envconfig:"OTEL"`
}

type TrainingConfig struct {
	Blocks       int           `yaml:"blocks" envconfig:"BLOCKS"`
	Shuffle      bool          `yaml:"shuffle" envconfig:"SHUFFLE"`
	Exposure     time.Duration `yaml:"exposure" envconfig:"EXPOSURE"`
	Feedback     time.Duration `yaml:"feedback" envconfig:"FEEDBACK"`
	FeedbackText string        `yaml:"feedback_text" envconfig:"FEEDBACK_TEXT"`
}

type TestConfig struct {
	Shuffle bool `yaml:"shuffle" envconfig:"SHUFFLE"`
	// Timeout closes the response window. Zero waits indefinitely.
	Timeout          time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	GrammaticalKey   string        `yaml:"grammatical_key" envconfig:"GRAMMATICAL_KEY"`
	UngrammaticalKey string        `yaml:"ungrammatical_key" envconfig:"UNGRAMMATICAL_KEY"`
}

type DisplayConfig struct {
	// UppercaseInput uppercases letters while the participant types.
	UppercaseInput bool `yaml:"uppercase_input" envconfig:"UPPERCASE_INPUT"`
	Plain          bool `yaml:"plain" envconfig:"PLAIN"`
}

type LogConfig struct {
	Level string `yaml:"level" envconfig:"LEVEL"`
	// Dir receives aglab.log. Empty uses the XDG state directory.
	Dir string `yaml:"dir" envconfig:"DIR"`
}

type OTELConfig struct {
	Enabled  bool   `yaml:"enabled" envconfig:"ENABLED"`
	Endpoint string `yaml:"endpoint" envconfig:"ENDPOINT"`
	Insecure bool   `yaml:"insecure" envconfig:"INSECURE"`
}

// Default returns the settings of the original lab procedure.
func Default() *Config {
	return &Config{
		DataDir:      "data",
		TrainingFile: "training_phase.txt",
		TestFile:     "test_phase.txt",
		Training: TrainingConfig{
			Blocks:       2,
			Shuffle:      true,
			Exposure:     4 * time.Second,
			Feedback:     2 * time.Second,
			FeedbackText: "INCORRECT!\n\nPLEASE TRY AGAIN.",
		},
		Test: TestConfig{
			Shuffle:          true,
			Timeout:          6 * time.Second,
			GrammaticalKey:   "f",
			UngrammaticalKey: "j",
		},
		Log: LogConfig{
			Level: "info",
		},
		OTEL: OTELConfig{
			Endpoint: "localhost:4317",
			Insecure: true,
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}

	c.resolvePaths(filepath.Dir(path))
	return nil
}

// resolvePaths makes relative file paths in a config file relative to the
// file's own directory.
func (c *Config) resolvePaths(base string) {
	for _, p := range []*string{&c.DataDir, &c.TrainingFile, &c.TestFile, &c.TrainingInstructions, &c.TestInstructions, &c.Log.Dir} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}

// Validate rejects settings that cannot run a session.
func (c *Config) Validate() error {
	var errs []error

	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}
	if c.TrainingFile == "" {
		errs = append(errs, errors.New("training_file is required"))
	}
	if c.TestFile == "" {
		errs = append(errs, errors.New("test_file is required"))
	}
	if c.Training.Blocks <= 0 {
		errs = append(errs, fmt.Errorf("training.blocks must be positive, got %d", c.Training.Blocks))
	}
	if c.Training.Exposure < 0 {
		errs = append(errs, fmt.Errorf("training.exposure must not be negative, got %s", c.Training.Exposure))
	}
	if c.Training.Feedback < 0 {
		errs = append(errs, fmt.Errorf("training.feedback must not be negative, got %s", c.Training.Feedback))
	}
	if c.Test.Timeout < 0 {
		errs = append(errs, fmt.Errorf("test.timeout must not be negative, got %s", c.Test.Timeout))
	}

	g := strings.TrimSpace(c.Test.GrammaticalKey)
	u := strings.TrimSpace(c.Test.UngrammaticalKey)
	switch {
	case g == "" || u == "":
		errs = append(errs, errors.New("test response keys must not be empty"))
	case strings.EqualFold(g, u):
		errs = append(errs, fmt.Errorf("test response keys must differ, both are %q", g))
	}

	if c.OTEL.Enabled && c.OTEL.Endpoint == "" {
		errs = append(errs, errors.New("otel.endpoint is required when otel is enabled"))
	}

	return errors.Join(errs...)
}

// KeyMap returns the configured response keys.
func (c *Config) KeyMap() domain.KeyMap {
	return domain.KeyMap{
		Grammatical:   strings.TrimSpace(c.Test.GrammaticalKey),
		Ungrammatical: strings.TrimSpace(c.Test.UngrammaticalKey),
	}
}

// ResolveSeed returns the configured seed or one derived from now.
func (c *Config) ResolveSeed(now time.Time) int64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return now.UnixNano()
}
