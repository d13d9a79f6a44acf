package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/postcraft/contentpipe/internal/schedule"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule <when>",
	Short: "Normalize a scheduled publish time to canonical UTC",
	Long: `Schedule accepts an ISO 8601 timestamp (Z, numeric offset or naive UTC)
or a relative offset such as +1d, +2h or +30m, and prints the canonical
2006-01-02T15:04:05Z form that posting APIs expect. A blank value means
"post now" and prints nothing.`,
	Args: cobra.ExactArgs(1),
	RunE: runSchedule,
}

func runSchedule(cmd *cobra.Command, args []string) error {
	normalized, err := schedule.ParseScheduledTime(args[0], time.Now)
	if err != nil {
		return err
	}
	if normalized != "" {
		fmt.Fprintln(cmd.OutOrStdout(), normalized)
	}
	return nil
}
