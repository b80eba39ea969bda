package stt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
)

// whisperCPPEngine shells out to the whisper.cpp command line tool
// (whisper-cli) with a local ggml model. VAD is not toggleable in the
// decode path, so Request.VAD is ignored here; silence handling for
// this engine happens in the pipeline's own gate.
type whisperCPPEngine struct {
	executable string
	logger     *zap.Logger
}

func newWhisperCPPEngine(opts Options) (Engine, error) {
	executable, err := resolveWhisperCLI(opts.WhisperCLI)
	if err != nil {
		return nil, err
	}
	return &whisperCPPEngine{executable: executable, logger: opts.logger()}, nil
}

func resolveWhisperCLI(override string) (string, error) {
	if path := strings.TrimSpace(override); path != "" {
		if err := ensureExecutable(path); err != nil {
			return "", fmt.Errorf("whisper-cli at %s is not executable: %w", path, err)
		}
		return path, nil
	}

	if path := strings.TrimSpace(os.Getenv("LYRICSCRIBE_WHISPER_PATH")); path != "" {
		if err := ensureExecutable(path); err != nil {
			return "", fmt.Errorf("LYRICSCRIBE_WHISPER_PATH is not executable: %w", err)
		}
		return path, nil
	}

	path, err := exec.LookPath(whisperCLIBinaryName())
	if err != nil {
		return "", fmt.Errorf("whisper-cli not found in PATH; install whisper.cpp or set LYRICSCRIBE_WHISPER_PATH: %w", err)
	}
	return path, nil
}

func (e *whisperCPPEngine) Name() string { return EngineWhisperCPP }

func (e *whisperCPPEngine) Transcribe(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.AudioPath) == "" {
		return Result{}, errors.New("audio path is required")
	}
	if strings.TrimSpace(req.ModelPath) == "" {
		return Result{}, errors.New("model path is required")
	}

	outBase := filepath.Join(os.TempDir(), fmt.Sprintf("lyricscribe-%d", time.Now().UnixNano()))
	txtOut := outBase + ".txt"

	args := []string{"-m", req.ModelPath, "-f", req.AudioPath, "-nt", "-otxt", "-of", outBase}
	if lang := languageArg(req.Language); lang != "" {
		args = append(args, "-l", lang)
	}

	cmd := exec.CommandContext(ctx, e.executable, args...)
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	e.logger.Debug("running whisper-cli", zap.String("executable", e.executable), zap.Strings("args", args))
	started := time.Now()
	if err := cmd.Run(); err != nil {
		errText := strings.TrimSpace(stderr.String())
		if isMissingSharedLibraryError(errText) {
			return Result{}, fmt.Errorf("whisper-cli at %s is missing required shared libraries (%s); rebuild whisper.cpp with BUILD_SHARED_LIBS=OFF", e.executable, errText)
		}
		if isIllegalInstructionError(errText) || isIllegalInstructionError(err.Error()) {
			return Result{}, fmt.Errorf("whisper-cli crashed with an illegal CPU instruction; " +
				"the binary was likely built for a different CPU; " +
				"point LYRICSCRIBE_WHISPER_PATH at a build matching this machine")
		}
		return Result{}, fmt.Errorf("whisper-cli transcribe failed: %w (%s)", err, errText)
	}
	elapsed := time.Since(started)

	defer os.Remove(txtOut)
	content, err := os.ReadFile(txtOut)
	if err != nil {
		return Result{}, fmt.Errorf("read whisper-cli output: %w", err)
	}

	return Result{
		Text:     strings.TrimSpace(string(content)),
		Language: languageArg(req.Language),
		Elapsed:  elapsed,
	}, nil
}

func whisperCLIBinaryName() string {
	if runtime.GOOS == "windows" {
		return "whisper-cli.exe"
	}
	return "whisper-cli"
}

func ensureExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if runtime.GOOS != "windows" && info.Mode()&0o111 == 0 {
		return fmt.Errorf("%s is not executable", path)
	}
	return nil
}

func isMissingSharedLibraryError(stderr string) bool {
	value := strings.ToLower(strings.TrimSpace(stderr))
	if value == "" {
		return false
	}

	patterns := []string{
		"error while loading shared libraries",
		"cannot open shared object file",
		"dyld: library not loaded",
		"image not found",
	}

	for _, pattern := range patterns {
		if strings.Contains(value, pattern) {
			return true
		}
	}

	return false
}

func isIllegalInstructionError(stderr string) bool {
	return strings.Contains(strings.ToLower(stderr), "illegal instruction")
}
