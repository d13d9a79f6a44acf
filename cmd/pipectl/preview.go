package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/postcraft/contentpipe/cmd/pipectl/internal/ui"
)

var previewCmd = &cobra.Command{
	Use:   "preview [template]",
	Short: "Interactively edit a template and watch it render",
	Long: `Preview opens an editable prompt; the rendered result updates on every
keystroke. Each re-render is an independent run, so a [RANDOM] selection can
change between edits.`,
	Args: cobra.ArbitraryArgs,
	RunE: runPreview,
}

func runPreview(cmd *cobra.Command, args []string) error {
	render := func(template string) (string, error) {
		p, err := newProcessor()
		if err != nil {
			return "", err
		}
		results, err := p.ProcessContents(cmd.Context(), template)
		if err != nil {
			return "", err
		}
		return results[0], nil
	}
	return ui.RunPreview(strings.Join(args, " "), render)
}
