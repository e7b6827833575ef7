package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/oncoscout/internal/output"
)

var digestCommand = &cobra.Command{
	Use:   "digest",
	Short: "Render the digest for a saved candidates file",
	Long: `Re-renders the plain-text digest from the classified candidates of a
previous run and prints it to stdout.`,
	RunE: runDigestCmd,
}

var digestInputPath string

func init() {
	digestCommand.Flags().StringVar(&digestInputPath, "input", "", "Path to a candidates_YYYY-MM-DD.json file from a previous run")
	_ = digestCommand.MarkFlagRequired("input")

	rootCmd.AddCommand(digestCommand)
}

func runDigestCmd(_ *cobra.Command, _ []string) error {
	candidates, err := loadCandidates(digestInputPath)
	if err != nil {
		return err
	}

	output.SortCandidates(candidates)
	fmt.Print(output.RenderDigest(candidates, digestRunDate(digestInputPath)))
	return nil
}

// digestRunDate recovers the run date from the input filename, falling back
// to the bare name when it does not follow the candidates_YYYY-MM-DD pattern.
func digestRunDate(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), ".json")
	if date, ok := strings.CutPrefix(name, "candidates_"); ok {
		return date
	}
	return name
}
