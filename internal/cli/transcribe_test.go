package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTranscribeCommandPrintsTranscript(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	audioPath := filepath.Join(dir, "song.mp3")
	require.NoError(t, os.WriteFile(audioPath, []byte("not-real-audio"), 0o644))

	engine := &fakeEngine{name: "api", text: "  some sung lyrics\n"}
	app, _ := newFakeApp(t, engine)
	app.configPath = writeTestConfig(t, dir, dir, filepath.Join(dir, "results.db"))

	stdout, err := executeWithApp(t, newTranscribeCmd(app), []string{audioPath})
	require.NoError(t, err)
	require.Equal(t, "some sung lyrics\n", stdout)
	require.Len(t, engine.requests, 1)
	require.Equal(t, audioPath, engine.requests[0].AudioPath)
	require.Equal(t, "whisper-1", engine.requests[0].Model)
}

func TestTranscribeCommandWritesOutputFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	audioPath := filepath.Join(dir, "song.mp3")
	outputPath := filepath.Join(dir, "transcript.txt")
	require.NoError(t, os.WriteFile(audioPath, []byte("not-real-audio"), 0o644))

	engine := &fakeEngine{name: "api", text: "some sung lyrics"}
	app, _ := newFakeApp(t, engine)
	app.configPath = writeTestConfig(t, dir, dir, filepath.Join(dir, "results.db"))

	stdout, err := executeWithApp(t, newTranscribeCmd(app), []string{audioPath, "--output", outputPath})
	require.NoError(t, err)
	require.Contains(t, stdout, outputPath)

	written, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	require.Equal(t, "some sung lyrics\n", string(written))
}

func TestTranscribeCommandMissingAudioFails(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	engine := &fakeEngine{name: "api", text: "irrelevant"}
	app, _ := newFakeApp(t, engine)
	app.configPath = writeTestConfig(t, dir, dir, filepath.Join(dir, "results.db"))

	_, err := executeWithApp(t, newTranscribeCmd(app), []string{filepath.Join(dir, "absent.mp3")})
	require.Error(t, err)
	require.Empty(t, engine.requests)
}
