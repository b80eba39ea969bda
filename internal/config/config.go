// Package config loads the experiment configuration. All run state is
// carried in one explicit Config value handed to the pipeline runner;
// nothing is read from process-wide environment at run time.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Dataset locates the benchmark recordings.
type Dataset struct {
	// Root holds one directory per track, named by ISRC.
	Root string `toml:"root"`
}

// Results configures where outcomes are persisted.
type Results struct {
	DBPath string `toml:"db_path"`
}

// Models configures local whisper.cpp model storage.
type Models struct {
	Dir          string `toml:"dir"`
	AutoDownload bool   `toml:"auto_download"`
}

// Engines holds per-engine tool and endpoint settings.
type Engines struct {
	// WhisperCLI overrides the whisper-cli executable path.
	WhisperCLI string `toml:"whisper_cli"`
	// WhisperXBin overrides the whisperx executable path.
	WhisperXBin string `toml:"whisperx_bin"`
	// APIBaseURL is an OpenAI-compatible transcription endpoint.
	APIBaseURL string `toml:"api_base_url"`
	APIKey     string `toml:"api_key"`
	// APITimeoutSeconds bounds one hosted transcription request.
	APITimeoutSeconds int `toml:"api_timeout_seconds"`
}

// Separation holds separation tool overrides.
type Separation struct {
	DemucsBin   string `toml:"demucs_bin"`
	SpleeterBin string `toml:"spleeter_bin"`
}

// SilenceGate configures the vocal-stem silence gate.
type SilenceGate struct {
	Enabled       bool    `toml:"enabled"`
	ThresholdDBFS float64 `toml:"threshold_dbfs"`
}

// Pipeline is one named model x preprocessing combination to benchmark.
type Pipeline struct {
	// Name identifies the configuration in result rows and tables.
	// Empty names are derived as <model>_<separation|orig>_<vad|novad>.
	Name string `toml:"name"`
	// Engine selects the STT implementation: whispercpp, whisperx, api.
	Engine string `toml:"engine"`
	// Model is the model reference the engine understands.
	Model string `toml:"model"`
	// Separation names the vocal-isolation stage, empty for none.
	Separation string `toml:"separation"`
	// VAD toggles the engine's voice-activity detection.
	VAD bool `toml:"vad"`
	// Language is an optional hint; empty or "auto" means detect.
	Language string `toml:"language"`
}

// Config is the full experiment configuration.
type Config struct {
	Dataset     Dataset     `toml:"dataset"`
	Results     Results     `toml:"results"`
	Models      Models      `toml:"models"`
	Engines     Engines     `toml:"engines"`
	Separation  Separation  `toml:"separation"`
	SilenceGate SilenceGate `toml:"silence_gate"`
	Pipelines   []Pipeline  `toml:"pipeline"`
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	return filepath.Join("~", ".config", "lyricscribe", "config.toml")
}

// Sample returns the annotated sample configuration file.
func Sample() string {
	return sampleConfig
}

// Load reads the configuration at path, falling back to defaults when
// the file does not exist. An empty path means DefaultPath.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath()
	}
	expanded, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	raw, err := os.ReadFile(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if err := cfg.normalize(); err != nil {
				return nil, err
			}
			return &cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", expanded, err)
	}

	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", expanded, err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	for _, field := range []*string{&c.Dataset.Root, &c.Results.DBPath, &c.Models.Dir} {
		expanded, err := ExpandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}

	for i := range c.Pipelines {
		pipeline := &c.Pipelines[i]
		pipeline.Engine = strings.ToLower(strings.TrimSpace(pipeline.Engine))
		pipeline.Separation = strings.ToLower(strings.TrimSpace(pipeline.Separation))
		if pipeline.Separation == "none" {
			pipeline.Separation = ""
		}
		if strings.TrimSpace(pipeline.Name) == "" {
			pipeline.Name = DeriveName(*pipeline)
		}
	}
	return nil
}

// DeriveName builds the result-table configuration name the published
// artifacts use: <model>_<separation|orig>_<vad|novad>.
func DeriveName(p Pipeline) string {
	model := strings.TrimSpace(p.Model)
	if model == "" {
		model = "default"
	}
	model = filepath.Base(model)

	source := p.Separation
	if source == "" {
		source = "orig"
	}

	vad := "novad"
	if p.VAD {
		vad = "vad"
	}

	return fmt.Sprintf("%s_%s_%s", model, source, vad)
}

// ExpandPath resolves a leading ~ against the current user's home.
func ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}
