// Package separate isolates vocals from mixed recordings by shelling
// out to the source-separation tools the benchmark compares. Each stage
// writes its stem next to the original audio so repeated runs reuse it.
package separate

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Stage identifiers, matching the stem file names in the dataset.
const (
	StageNone       = ""
	StageDemucsBase = "demucs_base"
	StageDemucsFT   = "demucs_ft"
	StageSpleeter11 = "spleeter_11"
	StageSpleeter16 = "spleeter_16"
)

// Separator produces a vocals-only audio file from a mixed recording.
type Separator interface {
	// Stage identifies the separation variant, e.g. "demucs_ft".
	Stage() string
	// Separate returns the path of the vocals stem for audioPath,
	// running the external tool unless the stem already exists.
	Separate(ctx context.Context, audioPath string) (string, error)
}

// Options carries shared separator settings.
type Options struct {
	Logger *zap.Logger

	// DemucsBin and SpleeterBin override executable lookup on $PATH.
	DemucsBin   string
	SpleeterBin string
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

type factory func(opts Options) (Separator, error)

var factories = map[string]factory{
	StageDemucsBase: func(opts Options) (Separator, error) {
		return newDemucsSeparator(StageDemucsBase, "htdemucs", opts)
	},
	StageDemucsFT: func(opts Options) (Separator, error) {
		return newDemucsSeparator(StageDemucsFT, "htdemucs_ft", opts)
	},
	StageSpleeter11: func(opts Options) (Separator, error) {
		return newSpleeterSeparator(StageSpleeter11, "spleeter:2stems", opts)
	},
	StageSpleeter16: func(opts Options) (Separator, error) {
		return newSpleeterSeparator(StageSpleeter16, "spleeter:2stems-16kHz", opts)
	},
}

// StageNames lists the known separation stages, sorted.
func StageNames() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New constructs the separator for a stage name. StageNone yields a
// nil Separator, meaning the pipeline transcribes the original audio.
func New(stage string, opts Options) (Separator, error) {
	stage = strings.ToLower(strings.TrimSpace(stage))
	if stage == StageNone || stage == "none" {
		return nil, nil
	}

	build, ok := factories[stage]
	if !ok {
		return nil, fmt.Errorf("unknown separation stage %q (known stages: %s)", stage, strings.Join(StageNames(), ", "))
	}
	return build(opts)
}
