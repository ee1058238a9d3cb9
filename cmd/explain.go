package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stevehiehn/calcengine/internal/engine"
	"github.com/stevehiehn/calcengine/internal/rules"
)

var explainCmd = &cobra.Command{
	Use:   "explain <definition.yaml|sample-id>",
	Short: "Describe a calculator's inputs, steps and outputs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDefinition(args[0])
		if err != nil {
			return err
		}

		result := engine.Execute(d, engine.NewRunContext(nil, logger), engine.ModeExplain)

		out := cmd.OutOrStdout()
		if jsonOutput {
			if err := writeJSON(out, result); err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("calculator %q is invalid", d.ID)
			}
			return nil
		}

		fmt.Fprintf(out, "Calculator: %s (%s)\n", d.Name, d.ID)
		if d.Description != "" {
			fmt.Fprintf(out, "  %s\n", d.Description)
		}
		fmt.Fprintln(out)
		if !result.Success {
			printFailure(out, result)
			return fmt.Errorf("calculator %q is invalid", d.ID)
		}

		fmt.Fprintln(out, "Inputs:")
		for _, in := range d.Inputs {
			req := "optional"
			if in.Required {
				req = "required"
			}
			fmt.Fprintf(out, "  %s (%s, %s): %s\n", in.Key, in.Type, req, in.Label)
		}
		fmt.Fprintln(out)

		for _, st := range result.Steps {
			fmt.Fprintf(out, "Step: %s\n", st.StepID)
			if st.Description != "" {
				fmt.Fprintf(out, "  Description: %s\n", st.Description)
			}
			if st.Method == engine.MethodExpression {
				fmt.Fprintf(out, "  Expression: %s\n", st.Expression)
			} else {
				fmt.Fprintf(out, "  Rule: %s\n", st.RuleFunction)
				if r, err := rules.Get(st.RuleFunction); err == nil {
					fmt.Fprintf(out, "  Info: %s\n", r.Description)
				}
			}
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "Outputs: %v\n", d.Outputs)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(explainCmd)
}
