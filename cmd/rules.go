package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/stevehiehn/calcengine/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the built-in rule functions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog := rules.Catalog()
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), catalog)
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "KEY\tPARAMETERS\tDESCRIPTION")
		for _, r := range catalog {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Key, strings.Join(r.Params, ", "), r.Description)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
