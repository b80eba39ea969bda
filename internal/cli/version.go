package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/Ryan5453/lyricscribe/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "lyricscribe v%s (%s, %s/%s)\n",
				version.Resolve(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}
}
