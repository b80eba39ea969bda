package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Ryan5453/lyricscribe/internal/config"
	"github.com/Ryan5453/lyricscribe/internal/download"
	"github.com/Ryan5453/lyricscribe/internal/stt"
)

func newSetupCmd(app *appState) *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Download whisper.cpp models ahead of a run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}

			resolved, err := app.ensureModelAvailable(cmd.Context(), cfg, model)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "model %s ready at %s\n", resolved.Name, resolved.Path)
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", stt.DefaultModel, "Model to download")
	return cmd
}

func (a *appState) ensureModelAvailable(ctx context.Context, cfg *config.Config, modelRef string) (stt.ResolvedModel, error) {
	modelDir, err := config.ExpandPath(cfg.Models.Dir)
	if err != nil {
		return stt.ResolvedModel{}, err
	}
	if err := os.MkdirAll(modelDir, 0o755); err != nil {
		return stt.ResolvedModel{}, fmt.Errorf("create model directory %s: %w", modelDir, err)
	}

	resolved, err := stt.ResolveModel(modelRef, modelDir)
	if err != nil {
		return stt.ResolvedModel{}, err
	}
	if !resolved.NeedsDownload {
		return resolved, nil
	}

	if !cfg.Models.AutoDownload {
		return stt.ResolvedModel{}, fmt.Errorf("model %q is missing at %s; run `lyricscribe setup --model %s` or enable models.auto_download", resolved.Name, resolved.Path, resolved.Name)
	}

	a.log().Info("model not found, downloading",
		zap.String("model", resolved.Name),
		zap.String("destination", resolved.Path))
	if err := download.File(ctx, download.Options{
		URL:            resolved.URL,
		Destination:    resolved.Path,
		ExpectedSHA256: resolved.SHA256,
		NoProgress:     !a.progressEnabled(),
		Logger:         a.log(),
	}); err != nil {
		return stt.ResolvedModel{}, fmt.Errorf("download model %q: %w", resolved.Name, err)
	}

	resolved.NeedsDownload = false
	return resolved, nil
}

func apiTimeout(cfg *config.Config) time.Duration {
	if cfg.Engines.APITimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(cfg.Engines.APITimeoutSeconds) * time.Second
}
