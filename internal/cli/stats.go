package cli

import (
	"flag"
	"fmt"
	"io"

	"mirage/internal/config"
	"mirage/internal/item"
)

func runStats(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		configPath := fs.String("config", "mirage.yaml", "Path to config file")
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}

		cfg, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
			return ExitError
		}

		items, err := item.LoadDataset(cfg.Dataset.Dir, cfg.Dataset.Version, nil)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load dataset: %v\n", err)
			return ExitError
		}

		counts := item.CountByTrack(items)
		fmt.Fprintf(stdout, "Dataset %s: %d items\n\n", cfg.Dataset.Version, len(items))
		fmt.Fprintf(stdout, "%-6s %-25s %s\n", "Track", "Name", "Items")
		for _, track := range item.Tracks() {
			fmt.Fprintf(stdout, "%-6s %-25s %d\n", track, track.Name(), counts[track])
		}
		return ExitOK
	}
}
