package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "golang-stock-analysis",
	Short: "Quantitative stock analysis engine",
	Long:  "Computes technical, fundamental, sentiment and risk indicators from raw text inputs and aggregates them into a scored recommendation report.",
}

func Execute() error {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(analyzeCmd)
	return rootCmd.Execute()
}
