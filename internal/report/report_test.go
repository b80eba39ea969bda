package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ryan5453/lyricscribe/internal/results"
)

func TestBuildPoolsLanguagesPerConfig(t *testing.T) {
	t.Parallel()

	rows, err := Build([]results.Group{
		{ConfigName: "cfg", Language: "es", Scores: []float64{0.6, 0.7}},
		{ConfigName: "cfg", Language: "en", Scores: []float64{0.4, 0.5}},
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, OverallLanguage, rows[0].Language)
	assert.Equal(t, 4, rows[0].Summary.Count)
	assert.InDelta(t, 0.55, rows[0].Summary.Mean, 1e-9)

	// Languages sorted after the overall row.
	assert.Equal(t, "en", rows[1].Language)
	assert.Equal(t, "es", rows[2].Language)
	assert.InDelta(t, 0.45, rows[1].Summary.Mean, 1e-9)
}

func TestBuildOrdersConfigs(t *testing.T) {
	t.Parallel()

	rows, err := Build([]results.Group{
		{ConfigName: "b_cfg", Language: "en", Scores: []float64{0.5}},
		{ConfigName: "a_cfg", Language: "en", Scores: []float64{0.4}},
	})
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "a_cfg", rows[0].Config)
	assert.Equal(t, "b_cfg", rows[2].Config)
}

func TestBuildEmptyGroups(t *testing.T) {
	t.Parallel()

	rows, err := Build(nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRenderFormatsScores(t *testing.T) {
	t.Parallel()

	rows, err := Build([]results.Group{
		{ConfigName: "large-v3_demucs_ft_novad", Language: "en", Scores: []float64{0.40, 0.42, 0.45, 0.44, 0.95}},
	})
	require.NoError(t, err)

	rendered := Render(rows)
	assert.Contains(t, rendered, "large-v3_demucs_ft_novad")
	assert.Contains(t, rendered, "Mean WER")
	assert.Contains(t, rendered, "0.5320")
	assert.Contains(t, rendered, "0.4275")

	// Config name appears once, continuation rows leave it blank.
	assert.Equal(t, 1, strings.Count(rendered, "large-v3_demucs_ft_novad"))
}
