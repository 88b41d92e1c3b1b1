package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/bnema/watchlist-cli/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	var build bool

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !build {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Version)
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wl %s\ncommit: %s\ngo: %s %s/%s\n",
				version.Version, vcsRevision(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
			return err
		},
	}

	versionCmd.Flags().BoolVar(&build, "build", false, "Include commit and toolchain details")

	return versionCmd
}

func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && setting.Value != "" {
			return setting.Value
		}
	}

	return "unknown"
}
