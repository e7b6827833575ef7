package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/oncoscout/internal/config"
	"github.com/jonathan/oncoscout/internal/seen"
)

var seenCommand = &cobra.Command{
	Use:   "seen",
	Short: "Inspect the seen store",
	Long: `Prints how many candidates the pipeline has already handled, newest
first. Handy for confirming that a run actually recorded its discoveries.`,
	RunE: runSeenCmd,
}

var (
	seenConfigPath string
	seenLimit      int
	seenSource     string
)

func init() {
	seenCommand.Flags().StringVar(&seenConfigPath, "config", "", "Path to config YAML")
	seenCommand.Flags().IntVar(&seenLimit, "limit", 20, "Show at most this many entries (0 for all)")
	seenCommand.Flags().StringVar(&seenSource, "source", "", "Only show entries from the named source")

	rootCmd.AddCommand(seenCommand)
}

func runSeenCmd(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(seenConfigPath)
	if err != nil {
		return err
	}

	store, err := seen.Load(cfg.SeenPath)
	if err != nil {
		return err
	}

	entries := store.Entries()
	if seenSource != "" {
		filtered := entries[:0]
		for _, e := range entries {
			if strings.EqualFold(e.Source, seenSource) {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	fmt.Printf("%d seen candidates", len(entries))
	if seenSource != "" {
		fmt.Printf(" from %s", seenSource)
	}
	fmt.Printf(" (%s)\n", cfg.SeenPath)

	shown := entries
	if seenLimit > 0 && len(shown) > seenLimit {
		shown = shown[:seenLimit]
	}
	for _, e := range shown {
		line := fmt.Sprintf("  %s  [%s] %s", e.DiscoveredAt, e.Source, e.Title)
		if e.Company != "" {
			line += fmt.Sprintf(" (%s)", e.Company)
		}
		fmt.Println(line)
	}
	if len(shown) < len(entries) {
		fmt.Printf("  ... and %d more\n", len(entries)-len(shown))
	}
	return nil
}
