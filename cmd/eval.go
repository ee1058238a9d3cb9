package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stevehiehn/calcengine/internal/expr"
)

var evalVars []string

var evalCmd = &cobra.Command{
	Use:   "eval <expression>",
	Short: "Evaluate a single sandboxed expression",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vars, err := parseVars(evalVars)
		if err != nil {
			return err
		}
		v, err := expr.Evaluate(args[0], vars)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOutput {
			return writeJSON(out, map[string]any{"expression": args[0], "result": v})
		}
		fmt.Fprintln(out, v.String())
		return nil
	},
}

func init() {
	evalCmd.Flags().StringArrayVar(&evalVars, "var", nil, "Variable bindings (name=value)")
	rootCmd.AddCommand(evalCmd)
}
