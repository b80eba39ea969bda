package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Ryan5453/lyricscribe/internal/cli"
)

func TestIsUsageError(t *testing.T) {
	t.Parallel()

	require.True(t, isUsageError(errors.New("unknown command \"bad\" for \"lyricscribe\"")))
	require.True(t, isUsageError(errors.New("unknown flag: --oops")))
	require.True(t, isUsageError(errors.New("accepts 2 arg(s), received 0")))
	require.True(t, isUsageError(errors.New("invalid argument \"x\" for \"--vad\" flag")))
	require.False(t, isUsageError(errors.New("download model \"small\": context deadline exceeded")))
	require.False(t, isUsageError(nil))
}

func TestHintCommandPath(t *testing.T) {
	t.Parallel()

	root := cli.NewRootCmd()
	require.Equal(t, "lyricscribe", hintCommandPath(root, nil))
	require.Equal(t, "lyricscribe", hintCommandPath(root, []string{"--badflag"}))
	require.Equal(t, "lyricscribe", hintCommandPath(root, []string{"badcmd"}))
	require.Equal(t, "lyricscribe score", hintCommandPath(root, []string{"score"}))
	require.Equal(t, "lyricscribe run", hintCommandPath(root, []string{"run", "--engine"}))
}
