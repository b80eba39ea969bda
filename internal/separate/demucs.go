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

// demucsSeparator runs the demucs CLI with --two-stems so only the
// vocals/accompaniment split is computed.
type demucsSeparator struct {
	stage      string
	model      string
	executable string
	logger     *zap.Logger
}

func newDemucsSeparator(stage, model string, opts Options) (Separator, error) {
	executable := strings.TrimSpace(opts.DemucsBin)
	if executable == "" {
		path, err := exec.LookPath("demucs")
		if err != nil {
			return nil, fmt.Errorf("demucs not found in PATH: %w", err)
		}
		executable = path
	}

	return &demucsSeparator{
		stage:      stage,
		model:      model,
		executable: executable,
		logger:     opts.logger(),
	}, nil
}

func (d *demucsSeparator) Stage() string { return d.stage }

func (d *demucsSeparator) Separate(ctx context.Context, audioPath string) (string, error) {
	stemPath := stemPathFor(audioPath, d.stage)
	if _, err := os.Stat(stemPath); err == nil {
		d.logger.Debug("reusing existing stem", zap.String("stem", stemPath))
		return stemPath, nil
	}

	workDir, err := os.MkdirTemp("", "lyricscribe-demucs-")
	if err != nil {
		return "", fmt.Errorf("create demucs work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	args := []string{"--two-stems", "vocals", "-n", d.model, "-o", workDir, audioPath}
	cmd := exec.CommandContext(ctx, d.executable, args...)
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	d.logger.Debug("running demucs", zap.String("model", d.model), zap.String("audio", audioPath))
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("demucs separation failed: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}

	track := trackName(audioPath)
	produced := filepath.Join(workDir, d.model, track, "vocals.wav")
	if err := moveFile(produced, stemPath); err != nil {
		return "", fmt.Errorf("collect demucs vocals stem: %w", err)
	}
	return stemPath, nil
}
