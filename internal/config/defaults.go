package config

const (
	defaultDatasetRoot          = "~/lyricscribe/songs"
	defaultResultsDBPath        = "~/.local/share/lyricscribe/results.db"
	defaultModelsDir            = "~/.local/share/lyricscribe/models"
	defaultAPITimeoutSeconds    = 1800
	defaultSilenceThresholdDBFS = -65.0
)

// Default returns a Config populated with repository defaults. The
// default pipeline set mirrors the headline benchmark: whisper.cpp
// large-v3 over the original audio and over the Demucs fine-tuned stem.
func Default() Config {
	return Config{
		Dataset: Dataset{Root: defaultDatasetRoot},
		Results: Results{DBPath: defaultResultsDBPath},
		Models: Models{
			Dir:          defaultModelsDir,
			AutoDownload: true,
		},
		Engines: Engines{
			APITimeoutSeconds: defaultAPITimeoutSeconds,
		},
		SilenceGate: SilenceGate{
			Enabled:       true,
			ThresholdDBFS: defaultSilenceThresholdDBFS,
		},
		Pipelines: []Pipeline{
			{Engine: "whispercpp", Model: "large-v3"},
			{Engine: "whispercpp", Model: "large-v3", Separation: "demucs_ft"},
		},
	}
}
