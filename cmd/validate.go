package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stevehiehn/calcengine/internal/calculator"
)

var validateCmd = &cobra.Command{
	Use:   "validate <definition.yaml|sample-id>",
	Short: "Validate a calculator definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		d, err := loadDefinition(args[0])
		if err == nil {
			err = calculator.Validate(d)
		}
		if err != nil {
			if jsonOutput {
				writeJSON(out, map[string]any{"valid": false, "error": err.Error()})
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "Validation failed: %s\n", err)
			}
			return fmt.Errorf("definition %s is invalid", args[0])
		}
		if jsonOutput {
			return writeJSON(out, map[string]any{"valid": true, "calculator_id": d.ID})
		}
		fmt.Fprintf(out, "Calculator %q is valid.\n", d.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
