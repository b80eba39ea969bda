package separate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// spleeterSeparator runs the spleeter CLI with a 2stems configuration.
type spleeterSeparator struct {
	stage      string
	config     string
	executable string
	logger     *zap.Logger
}

func newSpleeterSeparator(stage, config string, opts Options) (Separator, error) {
	executable := strings.TrimSpace(opts.SpleeterBin)
	if executable == "" {
		path, err := exec.LookPath("spleeter")
		if err != nil {
			return nil, fmt.Errorf("spleeter not found in PATH: %w", err)
		}
		executable = path
	}

	return &spleeterSeparator{
		stage:      stage,
		config:     config,
		executable: executable,
		logger:     opts.logger(),
	}, nil
}

func (s *spleeterSeparator) Stage() string { return s.stage }

func (s *spleeterSeparator) Separate(ctx context.Context, audioPath string) (string, error) {
	stemPath := stemPathFor(audioPath, s.stage)
	if _, err := os.Stat(stemPath); err == nil {
		s.logger.Debug("reusing existing stem", zap.String("stem", stemPath))
		return stemPath, nil
	}

	workDir, err := os.MkdirTemp("", "lyricscribe-spleeter-")
	if err != nil {
		return "", fmt.Errorf("create spleeter work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	args := []string{"separate", "-p", s.config, "-o", workDir, audioPath}
	cmd := exec.CommandContext(ctx, s.executable, args...)
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	s.logger.Debug("running spleeter", zap.String("config", s.config), zap.String("audio", audioPath))
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("spleeter separation failed: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}

	produced := filepath.Join(workDir, trackName(audioPath), "vocals.wav")
	if err := moveFile(produced, stemPath); err != nil {
		return "", fmt.Errorf("collect spleeter vocals stem: %w", err)
	}
	return stemPath, nil
}
