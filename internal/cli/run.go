package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Ryan5453/lyricscribe/internal/config"
	"github.com/Ryan5453/lyricscribe/internal/dataset"
	"github.com/Ryan5453/lyricscribe/internal/report"
	"github.com/Ryan5453/lyricscribe/internal/results"
	"github.com/Ryan5453/lyricscribe/internal/runner"
	"github.com/Ryan5453/lyricscribe/internal/separate"
)

func newRunCmd(app *appState) *cobra.Command {
	var (
		datasetRoot string
		dbPath      string
		pipelineRef singlePipelineFlags
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the benchmark over the dataset",
		Long: "Runs every configured pipeline over every dataset recording,\n" +
			"persists one result row per pair, and prints the aggregate WER\n" +
			"tables. With --engine set, a single one-off pipeline built from\n" +
			"flags replaces the configured set.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}

			if datasetRoot != "" {
				cfg.Dataset.Root = datasetRoot
			}
			if dbPath != "" {
				cfg.Results.DBPath = dbPath
			}
			if pipelineRef.engine != "" {
				cfg.Pipelines = []config.Pipeline{pipelineRef.toPipeline()}
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			return app.runBenchmark(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&datasetRoot, "dataset", "", "Dataset root directory (overrides config)")
	cmd.Flags().StringVar(&dbPath, "db", "", "Results database path (overrides config)")
	pipelineRef.bind(cmd)
	return cmd
}

// singlePipelineFlags builds a one-off pipeline without a config file,
// the way per-job cluster scripts invoke one model x preprocessing
// combination.
type singlePipelineFlags struct {
	engine     string
	model      string
	separation string
	vad        bool
	language   string
}

func (f *singlePipelineFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.engine, "engine", "", "STT engine for a one-off pipeline (whispercpp|whisperx|api)")
	cmd.Flags().StringVar(&f.model, "model", "", "Model for the one-off pipeline")
	cmd.Flags().StringVar(&f.separation, "separation", "", "Separation stage (demucs_base|demucs_ft|spleeter_11|spleeter_16)")
	cmd.Flags().BoolVar(&f.vad, "vad", false, "Enable engine voice-activity detection")
	cmd.Flags().StringVar(&f.language, "language", "", "Language hint (auto when empty)")
}

func (f singlePipelineFlags) toPipeline() config.Pipeline {
	separation := strings.ToLower(f.separation)
	if separation == "none" {
		separation = ""
	}
	p := config.Pipeline{
		Engine:     strings.ToLower(f.engine),
		Model:      f.model,
		Separation: separation,
		VAD:        f.vad,
		Language:   f.language,
	}
	p.Name = config.DeriveName(p)
	return p
}

func (a *appState) runBenchmark(cmd *cobra.Command, cfg *config.Config) error {
	ctx := cmd.Context()

	recordings, err := dataset.Scan(cfg.Dataset.Root, a.log())
	if err != nil {
		return err
	}
	a.log().Info("dataset scanned",
		zap.String("root", cfg.Dataset.Root),
		zap.Int("recordings", len(recordings)))

	pipelines, err := a.buildPipelines(ctx, cfg)
	if err != nil {
		return err
	}

	store, err := results.Open(cfg.Results.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.BeginRun(ctx, cfg.Dataset.Root)
	if err != nil {
		return err
	}

	batch := runner.New(runner.Options{
		Store:              store,
		Logger:             a.log(),
		SilenceGateEnabled: cfg.SilenceGate.Enabled,
		SilenceGateDBFS:    cfg.SilenceGate.ThresholdDBFS,
	})

	total := len(recordings) * len(pipelines)
	advance, stopProgress := startCounter(a.progressEnabled(), "Benchmarking", total)
	batch.OnResult = func(results.Result) { advance() }

	summaries, err := batch.Run(ctx, run, recordings, pipelines)
	stopProgress()
	if err != nil {
		return err
	}

	if err := store.FinishRun(ctx, run.ID); err != nil {
		return err
	}

	for _, summary := range summaries {
		a.log().Info("pipeline finished",
			zap.String("pipeline", summary.Pipeline),
			zap.Int("ok", summary.OK),
			zap.Int("skipped", summary.Skipped))
	}

	groups, err := store.Groups(ctx, run.ID)
	if err != nil {
		return err
	}
	rows, err := report.Build(groups)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no scored results to aggregate")
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), report.Render(rows))
	return nil
}

func (a *appState) buildPipelines(ctx context.Context, cfg *config.Config) ([]runner.Pipeline, error) {
	pipelines := make([]runner.Pipeline, 0, len(cfg.Pipelines))
	for _, pc := range cfg.Pipelines {
		engine, modelPath, err := a.newEngine(ctx, cfg, pc)
		if err != nil {
			return nil, fmt.Errorf("pipeline %s: %w", pc.Name, err)
		}

		sep, err := a.separatorFn(pc.Separation, separate.Options{
			Logger:      a.log(),
			DemucsBin:   cfg.Separation.DemucsBin,
			SpleeterBin: cfg.Separation.SpleeterBin,
		})
		if err != nil {
			return nil, fmt.Errorf("pipeline %s: %w", pc.Name, err)
		}

		pipelines = append(pipelines, runner.Pipeline{
			Name:      pc.Name,
			Engine:    engine,
			Separator: sep,
			Model:     pc.Model,
			ModelPath: modelPath,
			Language:  pc.Language,
			VAD:       pc.VAD,
		})
	}
	return pipelines, nil
}
