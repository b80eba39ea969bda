package results

import "time"

// Status marks how a recording fared under one pipeline configuration.
type Status string

const (
	// StatusOK means the pipeline produced a scored hypothesis.
	StatusOK Status = "ok"
	// StatusSkipped means an external stage failed or the input was
	// unusable; the row records the error and carries no WER.
	StatusSkipped Status = "skipped"
)

// Run is one experiment execution over a dataset.
type Run struct {
	ID          string
	DatasetRoot string
	StartedAt   time.Time
	FinishedAt  *time.Time
}

// Result is one (recording, pipeline configuration) outcome. Rows are
// append-only; a re-run creates a new run rather than mutating old rows.
type Result struct {
	ID         int64
	RunID      string
	ISRC       string
	Language   string
	ConfigName string
	Hypothesis string
	// WER is nil for skipped rows.
	WER       *float64
	Status    Status
	Error     string
	Elapsed   time.Duration
	CreatedAt time.Time
}

// Group is the set of WER scores sharing a configuration and language,
// the unit the aggregator works on.
type Group struct {
	ConfigName string
	Language   string
	Scores     []float64
}
