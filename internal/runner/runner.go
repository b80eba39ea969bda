// Package runner drives the benchmark batch: every recording through
// every pipeline configuration, scoring and persisting each outcome.
// Processing is sequential; one failing recording never aborts the rest
// of the batch.
package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Ryan5453/lyricscribe/internal/audio"
	"github.com/Ryan5453/lyricscribe/internal/dataset"
	"github.com/Ryan5453/lyricscribe/internal/results"
	"github.com/Ryan5453/lyricscribe/internal/separate"
	"github.com/Ryan5453/lyricscribe/internal/stt"
	"github.com/Ryan5453/lyricscribe/internal/wer"
)

// Pipeline is one fully wired configuration ready to execute.
type Pipeline struct {
	Name string
	// Engine transcribes the (possibly separated) audio.
	Engine stt.Engine
	// Separator is nil when the original audio is transcribed.
	Separator separate.Separator
	// Model and ModelPath are passed through to the engine.
	Model     string
	ModelPath string
	// Language is the optional hint; empty or "auto" means detect.
	Language string
	// VAD toggles engine-side voice-activity detection.
	VAD bool
}

// Runner executes pipelines over a dataset and persists outcomes.
type Runner struct {
	store  *results.Store
	logger *zap.Logger

	gateEnabled   bool
	gateThreshold float64

	// analyzeFn is swapped in tests to avoid real WAV fixtures.
	analyzeFn func(path string) (audio.Metrics, error)

	// OnResult, when set, observes every persisted row; the CLI uses
	// it to advance its progress bar.
	OnResult func(results.Result)
}

// Options configures a Runner.
type Options struct {
	Store              *results.Store
	Logger             *zap.Logger
	SilenceGateEnabled bool
	SilenceGateDBFS    float64
}

// New builds a Runner.
func New(opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		store:         opts.Store,
		logger:        logger,
		gateEnabled:   opts.SilenceGateEnabled,
		gateThreshold: opts.SilenceGateDBFS,
		analyzeFn:     audio.Analyze,
	}
}

// Summary counts outcomes for one executed pipeline.
type Summary struct {
	Pipeline string
	OK       int
	Skipped  int
}

// Run executes every pipeline over every recording, writing one result
// row per (recording, pipeline) pair under the given run. Only a
// persistence failure or context cancellation aborts the batch.
func (r *Runner) Run(ctx context.Context, run *results.Run, recordings []dataset.Recording, pipelines []Pipeline) ([]Summary, error) {
	summaries := make([]Summary, 0, len(pipelines))

	for _, pipeline := range pipelines {
		summary := Summary{Pipeline: pipeline.Name}
		r.logger.Info("running pipeline",
			zap.String("pipeline", pipeline.Name),
			zap.Int("recordings", len(recordings)))

		for _, recording := range recordings {
			if err := ctx.Err(); err != nil {
				return summaries, err
			}

			result := r.processOne(ctx, pipeline, recording)
			result.RunID = run.ID

			if err := r.store.InsertResult(ctx, result); err != nil {
				return summaries, fmt.Errorf("persist result for %s: %w", recording.ISRC, err)
			}
			if r.OnResult != nil {
				r.OnResult(result)
			}

			if result.Status == results.StatusOK {
				summary.OK++
			} else {
				summary.Skipped++
			}
		}

		summaries = append(summaries, summary)
	}

	return summaries, nil
}

func (r *Runner) processOne(ctx context.Context, pipeline Pipeline, recording dataset.Recording) results.Result {
	result := results.Result{
		ISRC:       recording.ISRC,
		Language:   recording.Language,
		ConfigName: pipeline.Name,
		Status:     results.StatusOK,
	}

	audioPath := recording.OriginalAudioPath()
	if pipeline.Separator != nil {
		separated, err := pipeline.Separator.Separate(ctx, audioPath)
		if err != nil {
			r.logger.Warn("separation failed; skipping recording",
				zap.String("isrc", recording.ISRC),
				zap.String("pipeline", pipeline.Name),
				zap.Error(err))
			return skipped(result, err)
		}
		audioPath = separated
	}

	hypothesis, gated := r.silenceGated(recording, audioPath)
	if !gated {
		transcribed, err := pipeline.Engine.Transcribe(ctx, stt.Request{
			AudioPath: audioPath,
			ModelPath: pipeline.ModelPath,
			Model:     pipeline.Model,
			Language:  pipeline.Language,
			VAD:       pipeline.VAD,
		})
		if err != nil {
			r.logger.Warn("transcription failed; skipping recording",
				zap.String("isrc", recording.ISRC),
				zap.String("pipeline", pipeline.Name),
				zap.Error(err))
			return skipped(result, err)
		}

		hypothesis = transcribed.Text
		result.Elapsed = transcribed.Elapsed
		if result.Language == "" {
			result.Language = transcribed.Language
		}
	}
	if result.Language == "" {
		result.Language = "und"
	}

	score, err := wer.Word(recording.Reference, hypothesis)
	if err != nil {
		r.logger.Warn("scoring failed; skipping recording",
			zap.String("isrc", recording.ISRC),
			zap.Error(err))
		return skipped(result, err)
	}

	result.Hypothesis = hypothesis
	result.WER = &score
	r.logger.Info("scored recording",
		zap.String("isrc", recording.ISRC),
		zap.String("pipeline", pipeline.Name),
		zap.String("language", result.Language),
		zap.Float64("wer", score))
	return result
}

// silenceGated reports whether the stem is silent enough to score as an
// empty hypothesis without invoking the engine. Only WAV stems are
// gated; analysis errors fall through to normal transcription.
func (r *Runner) silenceGated(recording dataset.Recording, audioPath string) (string, bool) {
	if !r.gateEnabled {
		return "", false
	}
	if !strings.EqualFold(filepath.Ext(audioPath), ".wav") {
		return "", false
	}

	metrics, err := r.analyzeFn(audioPath)
	if err != nil {
		r.logger.Warn("silence analysis failed; transcribing anyway",
			zap.String("audio", audioPath), zap.Error(err))
		return "", false
	}
	if !metrics.Silent(r.gateThreshold) {
		return "", false
	}

	r.logger.Info("stem is silent; scoring empty hypothesis",
		zap.String("isrc", recording.ISRC),
		zap.String("audio", audioPath),
		zap.Float64("rms_dbfs", metrics.RMSdBFS),
		zap.Float64("peak_dbfs", metrics.PeakdBFS))
	return "", true
}

func skipped(result results.Result, err error) results.Result {
	result.Status = results.StatusSkipped
	result.WER = nil
	result.Hypothesis = ""
	result.Error = err.Error()
	return result
}
