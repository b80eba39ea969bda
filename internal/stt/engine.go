// Package stt provides the speech-to-text engines the benchmark can
// drive. All implementations are thin wrappers over external tools or
// APIs behind a single Transcribe contract so pipeline configurations
// can swap them freely.
package stt

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Request describes one transcription invocation.
type Request struct {
	// AudioPath is the file to transcribe, original audio or a
	// separated vocal stem.
	AudioPath string
	// ModelPath points at a local model file for engines that load
	// models from disk (whisper.cpp). Empty for API engines.
	ModelPath string
	// Model is the model name as the engine understands it
	// (e.g. "large-v3", "whisper-1").
	Model string
	// Language is an optional hint; "auto" or empty lets the engine
	// detect it.
	Language string
	// VAD controls the engine's voice-activity detection where the
	// engine supports toggling it.
	VAD bool
}

// Result is the transcript an engine produced.
type Result struct {
	// Text is the hypothesis transcript.
	Text string
	// Language is the language the engine detected or was told to use.
	Language string
	// Elapsed is how long the engine call took.
	Elapsed time.Duration
}

// Engine transcribes audio files.
type Engine interface {
	// Name identifies the engine implementation, e.g. "whispercpp".
	Name() string
	// Transcribe runs the engine on one audio file.
	Transcribe(ctx context.Context, req Request) (Result, error)
}

// Factory builds an engine from shared options.
type Factory func(opts Options) (Engine, error)

var factories = map[string]Factory{
	EngineWhisperCPP: newWhisperCPPEngine,
	EngineWhisperX:   newWhisperXEngine,
	EngineAPI:        newAPIEngine,
}

// Known engine identifiers.
const (
	EngineWhisperCPP = "whispercpp"
	EngineWhisperX   = "whisperx"
	EngineAPI        = "api"
)

// EngineNames lists the known engine identifiers, sorted.
func EngineNames() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New constructs the engine with the given identifier.
func New(id string, opts Options) (Engine, error) {
	factory, ok := factories[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return nil, fmt.Errorf("unknown engine %q (known engines: %s)", id, strings.Join(EngineNames(), ", "))
	}
	return factory(opts)
}

func languageArg(language string) string {
	lang := strings.ToLower(strings.TrimSpace(language))
	if lang == "auto" {
		return ""
	}
	return lang
}
