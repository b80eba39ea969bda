package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeEmptyGroup(t *testing.T) {
	t.Parallel()

	_, err := Summarize(nil)
	require.ErrorIs(t, err, ErrNoData)

	_, err = Summarize([]float64{})
	require.ErrorIs(t, err, ErrNoData)
}

func TestSummarizeSingleScore(t *testing.T) {
	t.Parallel()

	summary, err := Summarize([]float64{0.5})
	require.NoError(t, err)
	assert.Equal(t, 0.5, summary.Mean)
	assert.Equal(t, 0.5, summary.FilteredMean)
	assert.Equal(t, 0.5, summary.Q1)
	assert.Equal(t, 0.5, summary.Q3)
	assert.Equal(t, 1, summary.Retained)
	assert.False(t, summary.Degenerate)
}

func TestSummarizeNoOutliersKeepsRawMean(t *testing.T) {
	t.Parallel()

	summary, err := Summarize([]float64{0.40, 0.41, 0.42, 0.43, 0.44})
	require.NoError(t, err)
	assert.InDelta(t, summary.Mean, summary.FilteredMean, 1e-12)
	assert.Equal(t, 5, summary.Retained)
	assert.Zero(t, summary.Removed())
}

func TestSummarizeExcludesExtremeScore(t *testing.T) {
	t.Parallel()

	summary, err := Summarize([]float64{0.40, 0.42, 0.45, 0.44, 0.95})
	require.NoError(t, err)

	assert.InDelta(t, 0.532, summary.Mean, 1e-9)
	assert.InDelta(t, 0.4275, summary.FilteredMean, 1e-9)
	assert.Equal(t, 4, summary.Retained)
	assert.Equal(t, 1, summary.Removed())
	assert.False(t, summary.Degenerate)
}

func TestSummarizeOutlierMovesRawMeanMore(t *testing.T) {
	t.Parallel()

	base := []float64{0.40, 0.41, 0.42, 0.43}
	withOutlier := append(append([]float64{}, base...), 5.0)

	before, err := Summarize(base)
	require.NoError(t, err)
	after, err := Summarize(withOutlier)
	require.NoError(t, err)

	rawShift := after.Mean - before.Mean
	filteredShift := after.FilteredMean - before.FilteredMean
	assert.Greater(t, rawShift, filteredShift)
	assert.InDelta(t, before.FilteredMean, after.FilteredMean, 0.02)
}

func TestSummarizeOrderIndependent(t *testing.T) {
	t.Parallel()

	a, err := Summarize([]float64{0.95, 0.40, 0.44, 0.42, 0.45})
	require.NoError(t, err)
	b, err := Summarize([]float64{0.40, 0.42, 0.44, 0.45, 0.95})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFilterReturnsRetainedScores(t *testing.T) {
	t.Parallel()

	retained, err := Filter([]float64{0.40, 0.42, 0.45, 0.44, 0.95})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.40, 0.42, 0.44, 0.45}, retained)

	_, err = Filter(nil)
	require.ErrorIs(t, err, ErrNoData)
}

func TestQuantileInterpolation(t *testing.T) {
	t.Parallel()

	sorted := []float64{1, 2, 3, 4}
	assert.InDelta(t, 1.75, quantile(sorted, 0.25), 1e-12)
	assert.InDelta(t, 3.25, quantile(sorted, 0.75), 1e-12)
	assert.InDelta(t, 4.0, quantile(sorted, 1.0), 1e-12)
}
