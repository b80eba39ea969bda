package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Ryan5453/lyricscribe/internal/cli"
)

func main() {
	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if isUsageError(err) {
			fmt.Fprintf(os.Stderr, "Run '%s --help' for usage.\n", hintCommandPath(cmd, os.Args[1:]))
		}
		os.Exit(1)
	}
}

// usageErrFragments are the cobra argument/flag error shapes worth a
// help hint; engine and pipeline failures print their own diagnostics.
var usageErrFragments = []string{
	"unknown command",
	"unknown flag",
	"unknown shorthand",
	"accepts ",
	"requires at least",
	"requires at most",
	"requires between",
	"required flag",
	"invalid argument",
}

func isUsageError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, fragment := range usageErrFragments {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

// hintCommandPath picks the most specific command path to point the
// help hint at, falling back to the root when the first argument is a
// flag or names no known subcommand.
func hintCommandPath(root *cobra.Command, args []string) string {
	target := root.CommandPath()
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return target
	}
	if found, _, err := root.Find(args); err == nil && found != nil {
		target = found.CommandPath()
	}
	return target
}
