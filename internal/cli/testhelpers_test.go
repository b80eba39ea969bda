package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Ryan5453/lyricscribe/internal/separate"
	"github.com/Ryan5453/lyricscribe/internal/stt"
)

func runCommand(t *testing.T, args []string) (stdout string, stderr string, err error) {
	t.Helper()

	cmd := NewRootCmd()
	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)

	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

// fakeEngine returns a fixed transcript for every request.
type fakeEngine struct {
	name string
	text string
	// requests records what the commands asked for.
	requests []stt.Request
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) Transcribe(_ context.Context, req stt.Request) (stt.Result, error) {
	f.requests = append(f.requests, req)
	return stt.Result{Text: f.text, Language: "en"}, nil
}

// newFakeApp builds an appState whose engine and separator factories
// never touch external tools.
func newFakeApp(t *testing.T, engine *fakeEngine) (*appState, *bytes.Buffer) {
	t.Helper()

	out := new(bytes.Buffer)
	app := &appState{
		out:        out,
		noProgress: true,
		engineFn: func(string, stt.Options) (stt.Engine, error) {
			return engine, nil
		},
		separatorFn: func(stage string, _ separate.Options) (separate.Separator, error) {
			if stage == "" {
				return nil, nil
			}
			return nil, fmt.Errorf("unexpected separation stage %q", stage)
		},
	}
	return app, out
}

// writeDatasetTrack lays out one ISRC folder with audio and lyrics.
func writeDatasetTrack(t *testing.T, root, isrc, lyrics, language string) {
	t.Helper()

	dir := filepath.Join(root, isrc)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "audio.mp3"), []byte("not-real-audio"), 0o644))

	doc := fmt.Sprintf(`{"language": %q, "unsynced": {"data": %q}}`, language, lyrics)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lyrics.json"), []byte(doc), 0o644))
}

// writeTestConfig writes a TOML config pointing at temp locations and
// returns its path.
func writeTestConfig(t *testing.T, dir, datasetRoot, dbPath string) string {
	t.Helper()

	cfgPath := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf(`
[dataset]
root = %q

[results]
db_path = %q

[engines]
api_base_url = "http://localhost:1"

[[pipeline]]
engine = "api"
model = "whisper-1"
`, datasetRoot, dbPath)
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))
	return cfgPath
}
