package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/stevehiehn/calcengine/internal/artifact"
	"github.com/stevehiehn/calcengine/internal/calculator"
	"github.com/stevehiehn/calcengine/internal/engine"
)

var (
	runInputs     []string
	runInputsFile string
	runSave       bool
)

var runCmd = &cobra.Command{
	Use:   "run <definition.yaml|sample-id>",
	Short: "Execute a calculator",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDefinition(args[0])
		if err != nil {
			return err
		}
		inputs, err := loadInputs(runInputsFile, runInputs)
		if err != nil {
			return err
		}

		result := engine.Execute(d, engine.NewRunContext(inputs, logger), engine.ModeRun)

		var saved string
		if runSave || cfg.Engine.SaveRuns {
			store, err := artifact.Save(cfg.Engine.ArtifactsDir, d, result)
			if err != nil {
				return fmt.Errorf("saving run: %w", err)
			}
			saved = store.BaseDir
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			if err := writeJSON(out, result); err != nil {
				return err
			}
		} else {
			printRun(out, d, result)
			if saved != "" {
				fmt.Fprintf(out, "Execution log: %s\n", saved)
			}
		}
		if !result.Success {
			return fmt.Errorf("calculator %q failed", d.ID)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringArrayVar(&runInputs, "input", nil, "Input values (key=value)")
	runCmd.Flags().StringVar(&runInputsFile, "inputs-file", "", "JSON file of input values")
	runCmd.Flags().BoolVar(&runSave, "save", false, "Write the execution log under the artifacts dir")
	rootCmd.AddCommand(runCmd)
}

func printRun(w io.Writer, d *calculator.Definition, result *engine.Result) {
	fmt.Fprintf(w, "%s (%s)\n\n", d.Name, d.ID)
	if len(result.Steps) > 0 {
		fmt.Fprintln(w, "Steps:")
		for i, st := range result.Steps {
			value := ""
			if st.Result != nil {
				value = formatValue(*st.Result)
			}
			fmt.Fprintf(w, "  %d. %s = %s\n", i+1, st.StepID, value)
			if st.Method == engine.MethodExpression {
				fmt.Fprintf(w, "     %s\n", st.Expression)
			} else {
				fmt.Fprintf(w, "     rule: %s\n", st.RuleFunction)
			}
		}
		fmt.Fprintln(w)
	}

	if result.Success {
		fmt.Fprintln(w, "Outputs:")
		for _, b := range result.Outputs {
			fmt.Fprintf(w, "  %-20s %s\n", b.Name, formatValue(b.Value))
		}
		fmt.Fprintln(w)
	} else {
		printFailure(w, result)
	}
	fmt.Fprintf(w, "Run ID: %s (%.2f ms)\n", result.RunID, result.ExecutionTime)
}

func printFailure(w io.Writer, result *engine.Result) {
	if result.FailedStepID != "" {
		fmt.Fprintf(w, "Failed at step %q.\n", result.FailedStepID)
	} else {
		fmt.Fprintln(w, "Failed.")
	}
	for _, e := range result.Errors {
		fmt.Fprintf(w, "  Error: %s\n", e.Message)
		if e.Hint != "" {
			fmt.Fprintf(w, "  Hint: %s\n", e.Hint)
		}
	}
	fmt.Fprintln(w)
}
