// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"fmt"
	"io"
	"os"

	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/core/format"
	"github.com/spf13/cobra"
)

func getGenerateCmd() *cobra.Command {
	generateCmd := &cobra.Command{
		Use:   "generate [audit-file]",
		Short: "Generate an execution plan from an audit",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			configPath, _ := cmd.Flags().GetString("config")
			outputFile, _ := cmd.Flags().GetString("output")
			verbose, _ := cmd.Flags().GetBool("verbose")

			err := generatePlan(os.Stdout, configPath, args[0], outputFile, verbose)
			exitOnError("generating execution plan", err)
		},
	}

	generateCmd.Flags().StringP("output", "o", "", "Output file for the execution plan (YAML or JSON by extension)")
	generateCmd.Flags().BoolP("verbose", "v", false, "Enable verbose output")

	return generateCmd
}

func generatePlan(out io.Writer, configPath, auditFile, outputFile string, verbose bool) error {
	pc, err := buildPlan(configPath, auditFile, verbose, out, os.Stderr)
	if err != nil {
		return err
	}

	if outputFile == "" {
		planOutput, err := format.FormatData(pc.plan, format.YAML)
		if err != nil {
			return fmt.Errorf("error formatting plan: %w", err)
		}
		fmt.Fprint(out, planOutput)
		return nil
	}

	if verbose {
		fmt.Fprintf(out, "Saving execution plan to: %s\n", outputFile)
	}
	if err := format.WriteFile(outputFile, pc.plan); err != nil {
		return fmt.Errorf("error writing output file: %w", err)
	}
	fmt.Fprintf(out, "Execution plan saved to %s\n", outputFile)
	return nil
}
