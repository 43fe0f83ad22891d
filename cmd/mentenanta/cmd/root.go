// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/ichimbogdancristian/script-mentenanta-sub008/cmd/mentenanta/cmd/graph"
	"github.com/ichimbogdancristian/script-mentenanta-sub008/cmd/mentenanta/cmd/plan"
	"github.com/ichimbogdancristian/script-mentenanta-sub008/internal/version"
	"github.com/spf13/cobra"
)

// Configuration path, read by subcommands through the "config" flag
var configFile string

var rootCmd = &cobra.Command{
	Use:   "mentenanta",
	Short: "Mentenanta - Windows Maintenance Planning Tool",
	Long: `Mentenanta turns a system audit into an execution plan of maintenance modules
and runs the plan, retrying or skipping modules according to the failure policy.`,
	Version: fmt.Sprintf("%s (commit: %s)", version.Version, version.Commit),
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default is ~/.mentenanta/config.yaml)")

	rootCmd.AddCommand(plan.GetPlanCmd())
	rootCmd.AddCommand(graph.GetGraphCmd())
}
