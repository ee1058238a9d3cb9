package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stevehiehn/calcengine/internal/engine"
)

var (
	dryRunInputs     []string
	dryRunInputsFile string
)

var dryRunCmd = &cobra.Command{
	Use:   "dry-run <definition.yaml|sample-id>",
	Short: "Check inputs and the definition without evaluating",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDefinition(args[0])
		if err != nil {
			return err
		}
		inputs, err := loadInputs(dryRunInputsFile, dryRunInputs)
		if err != nil {
			return err
		}

		result := engine.Execute(d, engine.NewRunContext(inputs, logger), engine.ModeDryRun)

		out := cmd.OutOrStdout()
		if jsonOutput {
			if err := writeJSON(out, result); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(out, "Dry-run: %s\n\n", d.Name)
			if !result.Success {
				printFailure(out, result)
			}
			for _, st := range result.Steps {
				fmt.Fprintf(out, "Step: %s [%s]\n", st.StepID, st.Status)
				if st.Method == engine.MethodExpression {
					fmt.Fprintf(out, "  Would evaluate: %s\n", st.Expression)
				} else {
					fmt.Fprintf(out, "  Would call rule: %s\n", st.RuleFunction)
				}
				fmt.Fprintln(out)
			}
		}
		if !result.Success {
			return fmt.Errorf("calculator %q would fail", d.ID)
		}
		return nil
	},
}

func init() {
	dryRunCmd.Flags().StringArrayVar(&dryRunInputs, "input", nil, "Input values (key=value)")
	dryRunCmd.Flags().StringVar(&dryRunInputsFile, "inputs-file", "", "JSON file of input values")
	rootCmd.AddCommand(dryRunCmd)
}
