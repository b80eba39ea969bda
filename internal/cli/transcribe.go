package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Ryan5453/lyricscribe/internal/config"
	"github.com/Ryan5453/lyricscribe/internal/separate"
	"github.com/Ryan5453/lyricscribe/internal/stt"
)

func newTranscribeCmd(app *appState) *cobra.Command {
	var (
		pipelineRef singlePipelineFlags
		outputPath  string
	)

	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe a single audio file",
		Long: "Transcribes one audio file through a pipeline built from flags,\n" +
			"falling back to the first configured pipeline when --engine is\n" +
			"not given. Useful for spot-checking a model before a full run.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}

			pc, err := resolveSinglePipeline(cfg, pipelineRef)
			if err != nil {
				return err
			}

			audioPath := args[0]
			if _, err := os.Stat(audioPath); err != nil {
				return fmt.Errorf("audio file %s: %w", audioPath, err)
			}

			ctx := cmd.Context()
			engine, modelPath, err := app.newEngine(ctx, cfg, pc)
			if err != nil {
				return err
			}

			sep, err := app.separatorFn(pc.Separation, separate.Options{
				Logger:      app.log(),
				DemucsBin:   cfg.Separation.DemucsBin,
				SpleeterBin: cfg.Separation.SpleeterBin,
			})
			if err != nil {
				return err
			}

			if sep != nil {
				stopSep := startSpinner(app.progressEnabled(), "Separating vocals...")
				separated, err := sep.Separate(ctx, audioPath)
				stopSep()
				if err != nil {
					return fmt.Errorf("separate vocals: %w", err)
				}
				audioPath = separated
			}

			stop := startSpinner(app.progressEnabled(), "Transcribing...")
			result, err := engine.Transcribe(ctx, stt.Request{
				AudioPath: audioPath,
				ModelPath: modelPath,
				Model:     pc.Model,
				Language:  pc.Language,
				VAD:       pc.VAD,
			})
			stop()
			if err != nil {
				return err
			}

			app.log().Info("transcription finished",
				zap.String("engine", engine.Name()),
				zap.String("language", result.Language),
				zap.Duration("elapsed", result.Elapsed))

			text := strings.TrimSpace(result.Text)
			if outputPath != "" {
				if err := os.WriteFile(outputPath, []byte(text+"\n"), 0o644); err != nil {
					return fmt.Errorf("write transcript: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "transcript written to %s\n", outputPath)
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	pipelineRef.bind(cmd)
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the transcript to a file instead of stdout")
	return cmd
}

// resolveSinglePipeline prefers flags, then the first configured
// pipeline, then a bare default engine.
func resolveSinglePipeline(cfg *config.Config, flags singlePipelineFlags) (config.Pipeline, error) {
	var pc config.Pipeline
	switch {
	case flags.engine != "":
		pc = flags.toPipeline()
	case len(cfg.Pipelines) > 0:
		pc = cfg.Pipelines[0]
	default:
		pc = config.Pipeline{Engine: stt.EngineWhisperCPP, Model: stt.DefaultModel}
		pc.Name = config.DeriveName(pc)
	}

	single := *cfg
	single.Pipelines = []config.Pipeline{pc}
	if err := single.Validate(); err != nil {
		return config.Pipeline{}, err
	}
	return single.Pipelines[0], nil
}
