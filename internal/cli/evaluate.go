package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"mirage/internal/config"
	"mirage/internal/item"
	"mirage/internal/provider"
	"mirage/internal/report"
	"mirage/internal/runner"
	"mirage/internal/store"
	"mirage/internal/ui/live"
)

// Seams for tests.
var (
	newProvider = func() (*provider.OpenRouter, error) { return provider.FromEnv(nil) }
	openStore   = store.Open
	startLiveUI = func(stdout io.Writer) *live.Controller {
		return live.Start(stdout, live.Options{})
	}
)

func runEvaluate(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		configPath := fs.String("config", "mirage.yaml", "Path to config file")
		modelID := fs.String("model", "", "Candidate model id (required)")
		modelName := fs.String("name", "", "Display name (defaults to model id)")
		seed := fs.Int64("seed", 42, "Variant generation seed")
		tracksFlag := fs.String("tracks", "", "Comma-separated tracks (default all)")
		limit := fs.Int("limit", 0, "Per-track item cap (default from config)")
		temperature := fs.Float64("temperature", 0.0, "Sampling temperature")
		maxTokens := fs.Int("max-tokens", 0, "Max completion tokens (default from config)")
		uiMode := fs.String("ui", "auto", "UI mode: auto, live, or plain")
		outputDir := fs.String("output-dir", "", "Override output directory")
		if err := fs.Parse(args); err != nil {
			return ExitUsage
		}
		if *modelID == "" {
			fmt.Fprintln(stderr, "evaluate: --model is required")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		cfg, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
			return ExitError
		}
		tracks, err := parseTracks(*tracksFlag)
		if err != nil {
			fmt.Fprintf(stderr, "Invalid tracks: %v\n", err)
			return ExitUsage
		}
		decision, err := resolveUIMode(*uiMode, stdout)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return ExitUsage
		}
		if decision.warning != "" {
			fmt.Fprintln(stderr, decision.warning)
		}

		instructions, err := judgeInstructions(cfg, *configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load judge instructions: %v\n", err)
			return ExitError
		}

		client, err := newProvider()
		if err != nil {
			fmt.Fprintf(stderr, "Provider setup failed: %v\n", err)
			return ExitError
		}

		db, err := openStore(databasePath(cfg))
		if err != nil {
			fmt.Fprintf(stderr, "Failed to open results database: %v\n", err)
			return ExitError
		}
		defer db.Close()

		ctx := context.Background()
		baseline, err := db.BaselineScores(ctx, *modelID)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load baseline scores: %v\n", err)
			return ExitError
		}

		var observer runner.Observer
		var controller *live.Controller
		if decision.useLive {
			controller = startLiveUI(stdout)
			observer = controller
		} else {
			observer = plainObserver(stdout)
		}

		eval, err := runner.New(runner.Config{
			DatasetDir:        cfg.Dataset.Dir,
			DatasetVersion:    cfg.Dataset.Version,
			SlotsPath:         cfg.Dataset.SlotsFile,
			JudgeModel:        cfg.Judge.Model,
			JudgeInstructions: instructions,
			DefaultLimit:      cfg.Defaults.Limit,
			Temperature:       cfg.Defaults.Temperature,
			MaxTokens:         cfg.Defaults.MaxTokens,
		}, runner.Deps{
			Responses: client,
			Judge:     client,
			Observer:  observer,
			Warn:      stderr,
		})
		if err != nil {
			fmt.Fprintf(stderr, "Runner setup failed: %v\n", err)
			return ExitError
		}

		run, err := eval.Run(ctx, runner.Params{
			ModelID:        *modelID,
			ModelName:      *modelName,
			Seed:           *seed,
			Tracks:         tracks,
			Limit:          *limit,
			Temperature:    *temperature,
			MaxTokens:      *maxTokens,
			BaselineScores: baseline,
		})
		if controller != nil {
			controller.Close()
			controller.Wait()
		}
		if err != nil {
			fmt.Fprintf(stderr, "Evaluation failed: %v\n", err)
			return ExitError
		}

		if err := db.SaveRun(ctx, run); err != nil {
			fmt.Fprintf(stderr, "Failed to save run: %v\n", err)
			return ExitError
		}
		if err := db.UpsertLeaderboard(ctx, report.Entry(run)); err != nil {
			fmt.Fprintf(stderr, "Failed to update leaderboard: %v\n", err)
			return ExitError
		}

		dir := cfg.Output.Dir
		if *outputDir != "" {
			dir = *outputDir
		}
		paths, err := report.WriteRunOutputs(dir, run)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to write outputs: %v\n", err)
			return ExitError
		}

		fmt.Fprintf(stdout, "Run %s completed\n", run.RunID)
		fmt.Fprintf(stdout, "Overall score: %.2f / 10\n", run.OverallScore)
		if run.Percentile != nil {
			fmt.Fprintf(stdout, "Percentile: %.1f%%\n", *run.Percentile)
		}
		fmt.Fprintf(stdout, "Results: %s\n", paths.ResultsJSON)
		fmt.Fprintf(stdout, "Report: %s\n", paths.Markdown)
		return ExitOK
	}
}

// plainObserver writes one progress line per item to stdout.
func plainObserver(stdout io.Writer) runner.Observer {
	return runner.ObserverFunc(func(event runner.Event) {
		switch event.Type {
		case runner.EventRunStart:
			fmt.Fprintf(stdout, "Evaluating %s over %d items (run %s)\n",
				event.ModelID, event.ItemCount, event.RunID)
		case runner.EventItemFinish:
			fmt.Fprintf(stdout, "[%d/%d] %s (%s): %d/10\n",
				event.ItemIndex, event.ItemCount, event.ItemID, event.Track, event.TotalScore)
		case runner.EventRunFinish:
			fmt.Fprintf(stdout, "Overall: %.2f/10\n", event.Overall)
		}
	})
}

// parseTracks parses a comma-separated track list.
func parseTracks(value string) ([]item.Track, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	var tracks []item.Track
	for _, part := range strings.Split(value, ",") {
		track := item.Track(strings.ToUpper(strings.TrimSpace(part)))
		if !track.Valid() {
			return nil, fmt.Errorf("unknown track %q", part)
		}
		tracks = append(tracks, track)
	}
	return tracks, nil
}

// judgeInstructions loads the judge instruction file, resolved relative to
// the config file when the path is not absolute.
func judgeInstructions(cfg config.Config, configPath string) (string, error) {
	path := cfg.Judge.InstructionsFile
	if path == "" {
		return "", fmt.Errorf("judge.instructions_file is required")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(configPath), path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// databasePath falls back to a database file under the output directory.
func databasePath(cfg config.Config) string {
	if cfg.Output.Database != "" {
		return cfg.Output.Database
	}
	return filepath.Join(cfg.Output.Dir, "mirage.duckdb")
}
