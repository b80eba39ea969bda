// Package stats aggregates per-recording WER scores into the published
// group means, removing outliers with the IQR rule.
package stats

import (
	"errors"
	"sort"
)

// ErrNoData is returned when aggregation is requested over an empty group.
var ErrNoData = errors.New("no scores in group")

// Summary holds the aggregate figures for one group of scores.
type Summary struct {
	Count        int
	Mean         float64
	FilteredMean float64
	// Retained is how many scores survived outlier filtering.
	Retained int
	// Degenerate is set when the IQR bounds would have removed every
	// score and the filtered mean fell back to the raw mean.
	Degenerate bool

	Q1  float64
	Q3  float64
	IQR float64
}

// Removed reports how many scores the IQR filter discarded.
func (s Summary) Removed() int {
	return s.Count - s.Retained
}

// Summarize computes the raw mean and the IQR outlier-filtered mean of a
// group of WER scores. Quartiles use linear interpolation at ranks
// 0.25*(n-1) and 0.75*(n-1) on the sorted sample; the same formula is
// applied for small groups, so with n=1 Q1 and Q3 both equal the single
// value. Scores inside [Q1-1.5*IQR, Q3+1.5*IQR], bounds inclusive, are
// retained. If the bounds would discard everything the filtered mean
// falls back to the raw mean rather than reporting nothing.
func Summarize(scores []float64) (Summary, error) {
	if len(scores) == 0 {
		return Summary{}, ErrNoData
	}

	sorted := make([]float64, len(scores))
	copy(sorted, scores)
	sort.Float64s(sorted)

	raw := mean(sorted)
	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	var retained []float64
	for _, score := range sorted {
		if score >= lower && score <= upper {
			retained = append(retained, score)
		}
	}

	summary := Summary{
		Count:    len(scores),
		Mean:     raw,
		Retained: len(retained),
		Q1:       q1,
		Q3:       q3,
		IQR:      iqr,
	}

	if len(retained) == 0 {
		summary.FilteredMean = raw
		summary.Degenerate = true
		return summary, nil
	}

	summary.FilteredMean = mean(retained)
	return summary, nil
}

// Filter returns the scores that survive the IQR outlier bounds, in
// sorted order. An empty input yields ErrNoData.
func Filter(scores []float64) ([]float64, error) {
	summary, err := Summarize(scores)
	if err != nil {
		return nil, err
	}

	sorted := make([]float64, len(scores))
	copy(sorted, scores)
	sort.Float64s(sorted)

	if summary.Degenerate {
		return sorted, nil
	}

	lower := summary.Q1 - 1.5*summary.IQR
	upper := summary.Q3 + 1.5*summary.IQR
	retained := make([]float64, 0, len(sorted))
	for _, score := range sorted {
		if score >= lower && score <= upper {
			retained = append(retained, score)
		}
	}
	return retained, nil
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// quantile interpolates linearly at rank p*(n-1) of an ascending sample.
func quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := p * float64(len(sorted)-1)
	low := int(rank)
	high := low + 1
	if high >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	fraction := rank - float64(low)
	return sorted[low] + fraction*(sorted[high]-sorted[low])
}
