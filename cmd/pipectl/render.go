package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/postcraft/contentpipe"
)

var (
	flagValidate  bool
	flagMaxLength int
	flagStats     bool
)

var renderCmd = &cobra.Command{
	Use:   "render [content...]",
	Short: "Resolve placeholders in one or more content strings",
	Long: `Render substitutes placeholders in each content argument and prints the
results in order, one per line. With no arguments, content strings are read
from stdin, one per line. All strings of a single run share one JSON root
fetch, so a [RANDOM] selection is consistent across them.

Examples:
  pipectl render 'Story: @{json.title | case_title}'
  pipectl render --content-json 'https://example.com/feed.json | stories[RANDOM]' \
      'Title: @{json.title}' 'Tags: @{json.tags | each:prefix("#") | join(" ")}'
  echo 'Posted @{builtin.CURR_DATE}' | pipectl render --validate --max-length 280`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().BoolVar(&flagValidate, "validate", false, "reject blank or over-length results")
	renderCmd.Flags().IntVar(&flagMaxLength, "max-length", 0, "length limit in characters for --validate (default from config)")
	renderCmd.Flags().BoolVar(&flagStats, "stats", false, "print resolution counters to stderr")
}

var statsStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))

func runRender(cmd *cobra.Command, args []string) error {
	contents := args
	if len(contents) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			contents = append(contents, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
	}
	if len(contents) == 0 {
		return fmt.Errorf("no content to render")
	}

	p, err := newProcessor()
	if err != nil {
		return err
	}

	results, err := p.ProcessContents(cmd.Context(), contents...)
	if err != nil {
		return fmt.Errorf("rendering failed: %w", err)
	}

	maxLength := flagMaxLength
	if maxLength == 0 {
		maxLength = cfg.MaxLength
	}
	for _, result := range results {
		if flagValidate {
			if err := contentpipe.ValidatePostContent(result, maxLength); err != nil {
				return fmt.Errorf("invalid content %q: %w", result, err)
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), result)
	}

	if flagStats {
		s := p.Metrics()
		fmt.Fprintln(os.Stderr, statsStyle.Render(fmt.Sprintf(
			"resolved=%d unresolved=%d fetches=%d fetch_failures=%d",
			s.PlaceholdersResolved, s.PlaceholdersUnresolved, s.RootFetches, s.FetchFailures)))
	}
	return nil
}
