package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/stevehiehn/calcengine/internal/calculator"
)

var samplesWriteDir string

var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "List the built-in sample calculators",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		defs, err := calculator.Samples()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if samplesWriteDir != "" {
			if err := os.MkdirAll(samplesWriteDir, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", samplesWriteDir, err)
			}
			for _, d := range defs {
				src, err := calculator.SampleSource(d.ID)
				if err != nil {
					return err
				}
				path := filepath.Join(samplesWriteDir, d.ID+".yaml")
				if err := os.WriteFile(path, src, 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", path, err)
				}
				logger.Info("sample written", "path", path)
				if !jsonOutput {
					fmt.Fprintf(out, "Wrote %s\n", path)
				}
			}
		}

		if jsonOutput {
			return writeJSON(out, defs)
		}
		if samplesWriteDir != "" {
			return nil
		}
		title := cases.Title(language.Und)
		for _, d := range defs {
			fmt.Fprintf(out, "%-18s %s [%s]\n", d.ID, d.Name, title.String(d.Category))
			if d.Description != "" {
				fmt.Fprintf(out, "%-18s %s\n", "", d.Description)
			}
		}
		return nil
	},
}

func init() {
	samplesCmd.Flags().StringVar(&samplesWriteDir, "write", "", "Write the sample definitions into this directory")
	rootCmd.AddCommand(samplesCmd)
}
