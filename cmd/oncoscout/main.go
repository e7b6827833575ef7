// Package main provides the oncoscout CLI: a discovery pipeline that watches
// regulatory, literature, newsroom, and trial-registry sources for new
// oncology molecular diagnostics.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "oncoscout",
	Short: "Discovery pipeline for oncology molecular diagnostics",
	Long: `OncoScout monitors FDA clearances, PubMed, company newsrooms, and
ClinicalTrials.gov for new oncology diagnostic tests, classifies detections
with a generative model, deduplicates them against the curated dataset, and
emits ranked draft records plus an email digest for human review.`,
}

func main() {
	// Load .env if it exists; real environments set variables directly.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
