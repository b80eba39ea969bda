package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// whisperXEngine shells out to the whisperx command line tool, which
// runs faster-whisper with a VAD front end. Disabling VAD is done the
// way the upstream project recommends for sung audio: setting the
// onset/offset thresholds low enough that every frame counts as speech.
type whisperXEngine struct {
	executable string
	logger     *zap.Logger
}

const (
	vadDisabledOnset  = "0.0001"
	vadDisabledOffset = "0.0001"
)

func newWhisperXEngine(opts Options) (Engine, error) {
	executable := strings.TrimSpace(opts.WhisperXBin)
	if executable == "" {
		path, err := exec.LookPath("whisperx")
		if err != nil {
			return nil, fmt.Errorf("whisperx not found in PATH: %w", err)
		}
		executable = path
	} else if err := ensureExecutable(executable); err != nil {
		return nil, fmt.Errorf("whisperx at %s is not executable: %w", executable, err)
	}

	return &whisperXEngine{executable: executable, logger: opts.logger()}, nil
}

func (e *whisperXEngine) Name() string { return EngineWhisperX }

type whisperXSegment struct {
	Text string `json:"text"`
}

type whisperXOutput struct {
	Segments []whisperXSegment `json:"segments"`
	Language string            `json:"language"`
}

func (e *whisperXEngine) Transcribe(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.AudioPath) == "" {
		return Result{}, errors.New("audio path is required")
	}
	if strings.TrimSpace(req.Model) == "" {
		return Result{}, errors.New("model name is required")
	}

	outDir, err := os.MkdirTemp("", "lyricscribe-whisperx-")
	if err != nil {
		return Result{}, fmt.Errorf("create whisperx output dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	args := []string{
		req.AudioPath,
		"--model", req.Model,
		"--output_dir", outDir,
		"--output_format", "json",
	}
	if lang := languageArg(req.Language); lang != "" {
		args = append(args, "--language", lang)
	}
	if !req.VAD {
		args = append(args, "--vad_onset", vadDisabledOnset, "--vad_offset", vadDisabledOffset)
	}

	cmd := exec.CommandContext(ctx, e.executable, args...)
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	e.logger.Debug("running whisperx", zap.String("executable", e.executable), zap.Strings("args", args))
	started := time.Now()
	if err := cmd.Run(); err != nil {
		return Result{}, fmt.Errorf("whisperx transcribe failed: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}
	elapsed := time.Since(started)

	output, err := readWhisperXOutput(outDir, req.AudioPath)
	if err != nil {
		return Result{}, err
	}

	segments := make([]string, 0, len(output.Segments))
	for _, segment := range output.Segments {
		if text := strings.TrimSpace(segment.Text); text != "" {
			segments = append(segments, text)
		}
	}

	return Result{
		Text:     strings.Join(segments, "\n"),
		Language: output.Language,
		Elapsed:  elapsed,
	}, nil
}

func readWhisperXOutput(outDir, audioPath string) (whisperXOutput, error) {
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	jsonPath := filepath.Join(outDir, base+".json")

	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return whisperXOutput{}, fmt.Errorf("read whisperx output %s: %w", jsonPath, err)
	}

	var output whisperXOutput
	if err := json.Unmarshal(raw, &output); err != nil {
		return whisperXOutput{}, fmt.Errorf("decode whisperx output: %w", err)
	}
	return output, nil
}
