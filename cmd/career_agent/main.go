// Package main provides the career_agent CLI: role recommendations, learning
// roadmaps, catalog tooling and the HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	catalogPath string
)

var rootCmd = &cobra.Command{
	Use:          "career_agent",
	Short:        "Career role recommender",
	Long:         "career_agent matches free-form skills against a role catalog, ranks the roles a person is closest to and plans the learning needed to close the gap.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON config file")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "Path to the role catalog (.json, .yaml); overrides config and CAREER_CATALOG")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
