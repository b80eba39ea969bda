// Package report turns stored benchmark results into the published
// per-configuration, per-language WER tables.
package report

import (
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Ryan5453/lyricscribe/internal/results"
	"github.com/Ryan5453/lyricscribe/internal/stats"
)

// OverallLanguage labels the pooled row covering every language of a
// configuration.
const OverallLanguage = "all"

// Row is one aggregate line of the benchmark table.
type Row struct {
	Config   string
	Language string
	Summary  stats.Summary
}

// Build aggregates grouped scores into table rows: for every
// configuration an overall row pooling all languages, then one row per
// language. Rows are ordered by configuration, with the overall row
// first and languages sorted.
func Build(groups []results.Group) ([]Row, error) {
	pooled := map[string][]float64{}
	var configs []string

	for _, group := range groups {
		if _, seen := pooled[group.ConfigName]; !seen {
			configs = append(configs, group.ConfigName)
		}
		pooled[group.ConfigName] = append(pooled[group.ConfigName], group.Scores...)
	}
	sort.Strings(configs)

	byConfig := map[string][]results.Group{}
	for _, group := range groups {
		byConfig[group.ConfigName] = append(byConfig[group.ConfigName], group)
	}

	var rows []Row
	for _, config := range configs {
		summary, err := stats.Summarize(pooled[config])
		if err != nil {
			return nil, fmt.Errorf("aggregate %s: %w", config, err)
		}
		rows = append(rows, Row{Config: config, Language: OverallLanguage, Summary: summary})

		languageGroups := byConfig[config]
		sort.Slice(languageGroups, func(i, j int) bool {
			return languageGroups[i].Language < languageGroups[j].Language
		})
		for _, group := range languageGroups {
			summary, err := stats.Summarize(group.Scores)
			if err != nil {
				return nil, fmt.Errorf("aggregate %s/%s: %w", config, group.Language, err)
			}
			rows = append(rows, Row{Config: config, Language: group.Language, Summary: summary})
		}
	}

	return rows, nil
}

// Render formats rows as the benchmark table.
func Render(rows []Row) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Configuration", "Language", "Samples", "Mean WER", "Filtered WER", "Outliers"})

	previousConfig := ""
	for _, row := range rows {
		config := row.Config
		if config == previousConfig {
			config = ""
		} else {
			if previousConfig != "" {
				tw.AppendSeparator()
			}
			previousConfig = row.Config
		}

		filtered := fmt.Sprintf("%.4f", row.Summary.FilteredMean)
		if row.Summary.Degenerate {
			filtered += " (raw)"
		}

		tw.AppendRow(table.Row{
			config,
			row.Language,
			row.Summary.Count,
			fmt.Sprintf("%.4f", row.Summary.Mean),
			filtered,
			row.Summary.Removed(),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})

	return tw.Render()
}
