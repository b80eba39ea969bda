// Package cli wires the lyricscribe commands together. Commands share
// one appState carrying flags, the logger, and injectable hooks so
// tests can run the command surface without external tools.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/Ryan5453/lyricscribe/internal/config"
	"github.com/Ryan5453/lyricscribe/internal/logging"
	"github.com/Ryan5453/lyricscribe/internal/separate"
	"github.com/Ryan5453/lyricscribe/internal/stt"
	"github.com/Ryan5453/lyricscribe/internal/version"
)

type appState struct {
	verbose    bool
	jsonLogs   bool
	noProgress bool
	configPath string

	logger *zap.Logger
	out    io.Writer

	// Injectable seams for tests.
	engineFn    func(id string, opts stt.Options) (stt.Engine, error)
	separatorFn func(stage string, opts separate.Options) (separate.Separator, error)
}

func NewRootCmd() *cobra.Command {
	app := &appState{
		out:         os.Stdout,
		engineFn:    stt.New,
		separatorFn: separate.New,
	}

	cmd := &cobra.Command{
		Use:           "lyricscribe",
		Short:         "Benchmark speech-to-text accuracy on sung audio",
		Long: "lyricscribe runs dataset recordings through STT models and vocal\n" +
			"separation stages, scores transcripts against reference lyrics, and\n" +
			"aggregates word error rates per language and configuration.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Resolve(),
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			logger, err := logging.New(logging.Options{Verbose: app.verbose, JSON: app.jsonLogs})
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			app.logger = logger
			return nil
		},
	}

	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	bindGlobalFlags(cmd, app)

	cmd.AddCommand(newRunCmd(app))
	cmd.AddCommand(newTranscribeCmd(app))
	cmd.AddCommand(newScoreCmd(app))
	cmd.AddCommand(newReportCmd(app))
	cmd.AddCommand(newSetupCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func bindGlobalFlags(cmd *cobra.Command, app *appState) {
	cmd.PersistentFlags().BoolVar(&app.verbose, "verbose", app.verbose, "Enable verbose logs")
	cmd.PersistentFlags().BoolVar(&app.jsonLogs, "json", app.jsonLogs, "Enable JSON logging")
	cmd.PersistentFlags().BoolVar(&app.noProgress, "no-progress", app.noProgress, "Disable progress indicators")
	cmd.PersistentFlags().StringVar(&app.configPath, "config", app.configPath, "Config file path (default ~/.config/lyricscribe/config.toml)")
}

func (a *appState) loadConfig() (*config.Config, error) {
	return config.Load(a.configPath)
}

func (a *appState) log() *zap.Logger {
	if a.logger == nil {
		return zap.NewNop()
	}
	return a.logger
}

func (a *appState) progressEnabled() bool {
	if a.noProgress {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func (a *appState) outWriter() io.Writer {
	if a.out == nil {
		return os.Stdout
	}
	return a.out
}

// newEngine builds the configured engine through the injectable seam.
func (a *appState) newEngine(ctx context.Context, cfg *config.Config, pipeline config.Pipeline) (stt.Engine, string, error) {
	engine, err := a.engineFn(pipeline.Engine, stt.Options{
		Logger:      a.log(),
		WhisperCLI:  cfg.Engines.WhisperCLI,
		WhisperXBin: cfg.Engines.WhisperXBin,
		APIBaseURL:  cfg.Engines.APIBaseURL,
		APIKey:      cfg.Engines.APIKey,
		APITimeout:  apiTimeout(cfg),
	})
	if err != nil {
		return nil, "", err
	}

	modelPath := ""
	if pipeline.Engine == stt.EngineWhisperCPP {
		resolved, err := a.ensureModelAvailable(ctx, cfg, pipeline.Model)
		if err != nil {
			return nil, "", err
		}
		modelPath = resolved.Path
	}

	return engine, modelPath, nil
}
