package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version information (can be overridden at build time with -ldflags)
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pipectl version %s\n", version)

		if info, ok := debug.ReadBuildInfo(); ok {
			vcsCommit, vcsDate := commit, date
			for _, setting := range info.Settings {
				switch setting.Key {
				case "vcs.revision":
					vcsCommit = setting.Value
				case "vcs.time":
					vcsDate = setting.Value
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n  built:  %s\n  go:     %s\n",
				vcsCommit, vcsDate, info.GoVersion)
		}
	},
}
