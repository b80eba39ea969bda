package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ryan5453/lyricscribe/internal/report"
	"github.com/Ryan5453/lyricscribe/internal/results"
)

func newReportCmd(app *appState) *cobra.Command {
	var (
		dbPath   string
		runID    string
		allRuns  bool
		listRuns bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print aggregate WER tables from stored results",
		Long: "Aggregates persisted results into per-configuration, per-language\n" +
			"WER tables. Defaults to the most recent run; --all pools every\n" +
			"run in the database.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}
			if dbPath == "" {
				dbPath = cfg.Results.DBPath
			}

			store, err := results.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()

			if listRuns {
				runs, err := store.ListRuns(ctx)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
					return nil
				}
				for _, run := range runs {
					state := "running"
					if run.FinishedAt != nil {
						state = "finished"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s  %s\n",
						run.ID, run.StartedAt.Format("2006-01-02 15:04:05"), state, run.DatasetRoot)
				}
				return nil
			}

			if runID == "" && !allRuns {
				runs, err := store.ListRuns(ctx)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
					return nil
				}
				runID = runs[0].ID
			}

			groups, err := store.Groups(ctx, runID)
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
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Results database path (overrides config)")
	cmd.Flags().StringVar(&runID, "run", "", "Report a specific run ID (default: most recent)")
	cmd.Flags().BoolVar(&allRuns, "all", false, "Pool results across every run")
	cmd.Flags().BoolVar(&listRuns, "list", false, "List recorded runs instead of aggregating")
	return cmd
}
