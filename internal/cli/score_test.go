package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScoreCommandComputesWER(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	refPath := filepath.Join(dir, "reference.txt")
	hypPath := filepath.Join(dir, "hypothesis.txt")
	require.NoError(t, os.WriteFile(refPath, []byte("the cat sat\n"), 0o644))
	require.NoError(t, os.WriteFile(hypPath, []byte("the cat sat on mat\n"), 0o644))

	stdout, _, err := runCommand(t, []string{"score", refPath, hypPath})
	require.NoError(t, err)
	require.Contains(t, stdout, "wer: 0.6667")
}

func TestScoreCommandPerfectMatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	refPath := filepath.Join(dir, "reference.txt")
	hypPath := filepath.Join(dir, "hypothesis.txt")
	require.NoError(t, os.WriteFile(refPath, []byte("Hello World"), 0o644))
	require.NoError(t, os.WriteFile(hypPath, []byte("hello world"), 0o644))

	stdout, _, err := runCommand(t, []string{"score", refPath, hypPath, "--chars"})
	require.NoError(t, err)
	require.Contains(t, stdout, "wer: 0.0000")
	require.Contains(t, stdout, "cer: 0.0000")
}

func TestScoreCommandEmptyReferenceFails(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	refPath := filepath.Join(dir, "reference.txt")
	hypPath := filepath.Join(dir, "hypothesis.txt")
	require.NoError(t, os.WriteFile(refPath, []byte("   \n"), 0o644))
	require.NoError(t, os.WriteFile(hypPath, []byte("something"), 0o644))

	_, _, err := runCommand(t, []string{"score", refPath, hypPath})
	require.Error(t, err)
}

func TestScoreCommandMissingFileFails(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	hypPath := filepath.Join(dir, "hypothesis.txt")
	require.NoError(t, os.WriteFile(hypPath, []byte("something"), 0o644))

	_, _, err := runCommand(t, []string{"score", filepath.Join(dir, "absent.txt"), hypPath})
	require.Error(t, err)
}
