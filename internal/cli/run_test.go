package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/Ryan5453/lyricscribe/internal/results"
)

func executeWithApp(t *testing.T, cmd *cobra.Command, args []string) (string, error) {
	t.Helper()

	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	if args == nil {
		// nil makes cobra fall back to os.Args, which carries test flags.
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunCommandBenchmarksDatasetWithFakeEngine(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	datasetRoot := filepath.Join(dir, "dataset")
	dbPath := filepath.Join(dir, "results.db")
	writeDatasetTrack(t, datasetRoot, "USUM71703861", "hello world", "en")
	writeDatasetTrack(t, datasetRoot, "GBUM72000001", "hello there world", "en")

	engine := &fakeEngine{name: "api", text: "hello world"}
	app, _ := newFakeApp(t, engine)
	app.configPath = writeTestConfig(t, dir, datasetRoot, dbPath)

	stdout, err := executeWithApp(t, newRunCmd(app), nil)
	require.NoError(t, err)

	// One request per (recording, pipeline) pair.
	require.Len(t, engine.requests, 2)
	// "hello world" scores 0.0, "hello there world" scores 1/3.
	require.Contains(t, stdout, "whisper-1_orig_novad")
	require.Contains(t, stdout, "0.1667")

	store, err := results.Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	runs, err := store.ListRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.NotNil(t, runs[0].FinishedAt)

	rows, err := store.ResultsByRun(context.Background(), runs[0].ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		require.Equal(t, results.StatusOK, row.Status)
		require.NotNil(t, row.WER)
	}
}

func TestRunCommandOneOffPipelineFromFlags(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	datasetRoot := filepath.Join(dir, "dataset")
	dbPath := filepath.Join(dir, "results.db")
	writeDatasetTrack(t, datasetRoot, "USUM71703861", "hello world", "en")

	engine := &fakeEngine{name: "api", text: "hello world"}
	app, _ := newFakeApp(t, engine)
	app.configPath = writeTestConfig(t, dir, datasetRoot, dbPath)

	stdout, err := executeWithApp(t, newRunCmd(app), []string{
		"--engine", "api", "--model", "gpt-4o-transcribe", "--language", "en",
	})
	require.NoError(t, err)

	// The one-off pipeline replaces the configured set.
	require.Len(t, engine.requests, 1)
	require.Equal(t, "en", engine.requests[0].Language)
	require.Contains(t, stdout, "gpt-4o-transcribe_orig_novad")
}

func TestRunCommandFailsOnEmptyDataset(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	datasetRoot := filepath.Join(dir, "dataset")
	require.NoError(t, os.MkdirAll(datasetRoot, 0o755))

	engine := &fakeEngine{name: "api", text: "irrelevant"}
	app, _ := newFakeApp(t, engine)
	app.configPath = writeTestConfig(t, dir, datasetRoot, filepath.Join(dir, "results.db"))

	_, err := executeWithApp(t, newRunCmd(app), nil)
	require.Error(t, err)
	require.Empty(t, engine.requests)
}

func TestRunCommandRejectsUnknownEngine(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	datasetRoot := filepath.Join(dir, "dataset")
	writeDatasetTrack(t, datasetRoot, "USUM71703861", "hello world", "en")

	engine := &fakeEngine{name: "api", text: "irrelevant"}
	app, _ := newFakeApp(t, engine)
	app.configPath = writeTestConfig(t, dir, datasetRoot, filepath.Join(dir, "results.db"))

	_, err := executeWithApp(t, newRunCmd(app), []string{"--engine", "carrier-pigeon"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "carrier-pigeon")
}
