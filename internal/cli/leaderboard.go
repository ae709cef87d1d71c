package cli

import (
	"context"
	"flag"
	"fmt"
	"io"

	"mirage/internal/config"
	"mirage/internal/report"
)

func runLeaderboard(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		configPath := fs.String("config", "mirage.yaml", "Path to config file")
		asJSON := fs.Bool("json", false, "Emit entries as JSON")
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}

		cfg, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
			return ExitError
		}

		db, err := openStore(databasePath(cfg))
		if err != nil {
			fmt.Fprintf(stderr, "Failed to open results database: %v\n", err)
			return ExitError
		}
		defer db.Close()

		entries, err := db.Leaderboard(context.Background())
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load leaderboard: %v\n", err)
			return ExitError
		}

		if *asJSON {
			data, err := report.LeaderboardJSON(entries)
			if err != nil {
				fmt.Fprintf(stderr, "Failed to encode leaderboard: %v\n", err)
				return ExitError
			}
			stdout.Write(data)
			return ExitOK
		}

		if len(entries) == 0 {
			fmt.Fprintln(stdout, "Leaderboard is empty. Run \"mirage evaluate\" first.")
			return ExitOK
		}
		fmt.Fprintf(stdout, "%-5s %-28s %-8s %-11s %-10s %s\n",
			"Rank", "Model", "Score", "Percentile", "Latency", "Cost")
		for _, entry := range entries {
			fmt.Fprintf(stdout, "%-5d %-28s %-8.2f %-11.1f %-10.0f %.6f\n",
				entry.Rank, entry.ModelName, entry.OverallScore, entry.Percentile,
				entry.AvgLatency, entry.AvgCost)
		}
		return ExitOK
	}
}
