package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev" // Will be set during build

var rootCmd = &cobra.Command{
	Use:   "cistat",
	Short: "CI pipeline performance and reliability analysis",
	Long: `Cistat fetches build records from a hosted CI provider, caches them locally
and renders charts plus a step-key table summarizing pipeline health:
duration trends, build rate and build stability over rolling time windows.`,
	Version: version,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(bkCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
