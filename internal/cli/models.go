package cli

import (
	"flag"
	"fmt"
	"io"
	"sort"

	"mirage/internal/config"
)

func runModels(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		configPath := fs.String("config", "mirage.yaml", "Path to config file")
		all := fs.Bool("all", false, "Include disabled models")
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}

		cfg, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
			return ExitError
		}

		providerIDs := make([]string, 0, len(cfg.Providers))
		for id := range cfg.Providers {
			providerIDs = append(providerIDs, id)
		}
		sort.Strings(providerIDs)

		for _, providerID := range providerIDs {
			providerCfg := cfg.Providers[providerID]
			fmt.Fprintf(stdout, "%s (%s)\n", providerCfg.Name, providerID)
			for _, model := range providerCfg.Models {
				if !model.Enabled && !*all {
					continue
				}
				status := "enabled"
				if !model.Enabled {
					status = "disabled"
				}
				fmt.Fprintf(stdout, "  %-40s %-24s %s\n", model.ID, model.Name, status)
			}
		}
		return ExitOK
	}
}
