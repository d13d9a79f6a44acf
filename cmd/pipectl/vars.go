package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/postcraft/contentpipe/internal/vars"
)

var flagVarDefault string

var varsCmd = &cobra.Command{
	Use:   "vars <name>...",
	Short: "Resolve named variables from the environment or input.json",
	Long: `Vars prints the value of each named variable, one per line. The process
environment wins; misses fall back to the JSON input file (input.json, or the
file named by INPUT_FILE). File values convert the way placeholders do:
lists become comma-joined, booleans become true/false.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVars,
}

func init() {
	varsCmd.Flags().StringVar(&flagVarDefault, "default", "", "value to print for variables found nowhere")
}

func runVars(cmd *cobra.Command, args []string) error {
	store := vars.NewStore(nil, newLogger())
	for _, name := range args {
		v, ok := store.Lookup(name)
		if !ok {
			if !cmd.Flags().Changed("default") {
				return fmt.Errorf("variable %s not found in environment or input file", name)
			}
			v = flagVarDefault
		}
		fmt.Fprintln(cmd.OutOrStdout(), v)
	}
	return nil
}
