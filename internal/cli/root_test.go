package cli

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistersGlobalFlags(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	require.NotNil(t, cmd.PersistentFlags().Lookup("verbose"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("json"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("no-progress"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	require.Equal(t, "false", cmd.PersistentFlags().Lookup("verbose").DefValue)
}

func TestRootHelpParsesSuccessfully(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	require.NoError(t, err)
	require.Contains(t, out.String(), "run")
	require.Contains(t, out.String(), "transcribe")
	require.Contains(t, out.String(), "score")
	require.Contains(t, out.String(), "report")
	require.Contains(t, out.String(), "setup")
}

func TestSubcommandHelpParsesSuccessfully(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		contains string
	}{
		{name: "run", args: []string{"run", "--help"}, contains: "Run the benchmark over the dataset"},
		{name: "transcribe", args: []string{"transcribe", "--help"}, contains: "Transcribe a single audio file"},
		{name: "score", args: []string{"score", "--help"}, contains: "Score a transcript against reference lyrics"},
		{name: "report", args: []string{"report", "--help"}, contains: "Print aggregate WER tables"},
		{name: "setup", args: []string{"setup", "--help"}, contains: "Download whisper.cpp models"},
		{name: "config", args: []string{"config", "--help"}, contains: "Configuration utilities"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd := NewRootCmd()
			out := new(bytes.Buffer)
			cmd.SetOut(out)
			cmd.SetErr(out)
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			require.NoError(t, err)
			require.Contains(t, out.String(), tt.contains)
		})
	}
}

func TestUnknownCommandFails(t *testing.T) {
	t.Parallel()

	_, _, err := runCommand(t, []string{"frobnicate"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown command")
}

func TestVersionCommandPrintsVersion(t *testing.T) {
	t.Parallel()

	stdout, _, err := runCommand(t, []string{"version"})
	require.NoError(t, err)
	require.Contains(t, stdout, "lyricscribe v")
	require.Contains(t, stdout, runtime.GOOS+"/"+runtime.GOARCH)
}
