// Package main provides the entry point for the job-hunter CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "job_hunter",
	Short: "Find and rank remote job postings against a candidate profile",
	Long: `job_hunter collects postings from remote job boards, judges each one against
your keywords and CV with a language model, and prints the best matches first.`,
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
