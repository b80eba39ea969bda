package stt

import (
	"time"

	"go.uber.org/zap"
)

// Options carries the shared settings engines are built from.
type Options struct {
	Logger *zap.Logger

	// WhisperCLI overrides the whisper-cli executable path. When empty
	// the engine falls back to the LYRICSCRIBE_WHISPER_PATH environment
	// variable and then to $PATH lookup.
	WhisperCLI string

	// WhisperXBin overrides the whisperx executable path.
	WhisperXBin string

	// APIBaseURL is the transcription endpoint for the api engine,
	// any OpenAI-compatible audio/transcriptions service.
	APIBaseURL string
	// APIKey is the bearer token for the api engine.
	APIKey string
	// APITimeout bounds one api engine request. Zero means the
	// default of 30 minutes; sung audio on slow hosted models is slow.
	APITimeout time.Duration
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}
