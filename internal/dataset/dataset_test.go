package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeTrack(t *testing.T, root, isrc, lyricsJSON string, withAudio bool) string {
	t.Helper()

	dir := filepath.Join(root, isrc)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	if withAudio {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "audio.mp3"), []byte("mp3"), 0o644))
	}
	if lyricsJSON != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "lyrics.json"), []byte(lyricsJSON), 0o644))
	}
	return dir
}

func TestScanFindsRecordings(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTrack(t, root, "USUM71703861", `{"language":"EN","unsynced":{"data":"first line\n\nsecond line"}}`, true)
	writeTrack(t, root, "GBAYE0601498", `{"unsynced":{"data":"some lyrics"}}`, true)

	recordings, err := Scan(root, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, recordings, 2)

	// Sorted by ISRC.
	assert.Equal(t, "GBAYE0601498", recordings[0].ISRC)
	assert.Equal(t, "USUM71703861", recordings[1].ISRC)

	assert.Equal(t, "en", recordings[1].Language)
	assert.Equal(t, "first line\nsecond line", recordings[1].Reference)
	assert.Empty(t, recordings[0].Language)
}

func TestScanSkipsIncompleteFolders(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTrack(t, root, "OKOKOK0000001", `{"unsynced":{"data":"lyrics"}}`, true)
	writeTrack(t, root, "NOAUDIO000001", `{"unsynced":{"data":"lyrics"}}`, false)
	writeTrack(t, root, "NOLYRICS00001", "", true)
	writeTrack(t, root, "EMPTYREF00001", `{"unsynced":{"data":"  "}}`, true)
	writeTrack(t, root, "BADJSON000001", `{not json`, true)

	recordings, err := Scan(root, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, recordings, 1)
	assert.Equal(t, "OKOKOK0000001", recordings[0].ISRC)
}

func TestScanEmptyRootErrors(t *testing.T) {
	t.Parallel()

	_, err := Scan(t.TempDir(), zap.NewNop())
	require.ErrorIs(t, err, ErrNoRecordings)
}

func TestScanMissingRootErrors(t *testing.T) {
	t.Parallel()

	_, err := Scan(filepath.Join(t.TempDir(), "nope"), zap.NewNop())
	require.Error(t, err)
}

func TestAudioPathResolvesStems(t *testing.T) {
	t.Parallel()

	rec := Recording{Dir: "/data/USUM71703861"}
	assert.Equal(t, filepath.Join("/data/USUM71703861", "audio.mp3"), rec.AudioPath(""))
	assert.Equal(t, filepath.Join("/data/USUM71703861", "demucs_ft.wav"), rec.AudioPath("demucs_ft"))
	assert.Equal(t, rec.AudioPath(""), rec.OriginalAudioPath())
}
