package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Ryan5453/lyricscribe/internal/separate"
	"github.com/Ryan5453/lyricscribe/internal/stt"
)

// Validate checks the configuration, collecting every problem rather
// than stopping at the first.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Dataset.Root) == "" {
		problems = append(problems, "dataset.root must be set")
	}
	if strings.TrimSpace(c.Results.DBPath) == "" {
		problems = append(problems, "results.db_path must be set")
	}
	if len(c.Pipelines) == 0 {
		problems = append(problems, "at least one [[pipeline]] must be configured")
	}

	seen := map[string]struct{}{}
	knownEngines := toSet(stt.EngineNames())
	knownStages := toSet(separate.StageNames())

	for i, pipeline := range c.Pipelines {
		label := fmt.Sprintf("pipeline[%d] (%s)", i, pipeline.Name)

		if _, ok := knownEngines[pipeline.Engine]; !ok {
			problems = append(problems, fmt.Sprintf("%s: unknown engine %q", label, pipeline.Engine))
		}
		if pipeline.Separation != "" {
			if _, ok := knownStages[pipeline.Separation]; !ok {
				problems = append(problems, fmt.Sprintf("%s: unknown separation stage %q", label, pipeline.Separation))
			}
		}
		if pipeline.Engine == stt.EngineAPI && strings.TrimSpace(c.Engines.APIBaseURL) == "" {
			problems = append(problems, fmt.Sprintf("%s: engines.api_base_url must be set for the api engine", label))
		}

		if _, dup := seen[pipeline.Name]; dup {
			problems = append(problems, fmt.Sprintf("%s: duplicate pipeline name", label))
		}
		seen[pipeline.Name] = struct{}{}
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New("invalid configuration:\n  - " + strings.Join(problems, "\n  - "))
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		set[value] = struct{}{}
	}
	return set
}
