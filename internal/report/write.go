package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mirage/internal/result"
)

// Paths locates the output files for one run.
type Paths struct {
	ResultsJSON string
	Markdown    string
}

// OutputPaths derives file paths for a run under the output directory. The
// model ID's slashes are flattened so it is filesystem-safe.
func OutputPaths(outputDir string, run result.EvaluationRun) Paths {
	modelSlug := strings.ReplaceAll(run.ModelCard.ModelID, "/", "_")
	base := filepath.Join(outputDir, fmt.Sprintf("%s_%s", modelSlug, run.RunID))
	return Paths{
		ResultsJSON: base + ".json",
		Markdown:    base + ".md",
	}
}

// WriteRunOutputs writes the JSON results document and Markdown summary
// for a run, creating the output directory if needed.
func WriteRunOutputs(outputDir string, run result.EvaluationRun) (Paths, error) {
	paths := OutputPaths(outputDir, run)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("create output dir: %w", err)
	}

	payload, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return Paths{}, fmt.Errorf("marshal run: %w", err)
	}
	if err := os.WriteFile(paths.ResultsJSON, append(payload, '\n'), 0o644); err != nil {
		return Paths{}, fmt.Errorf("write results json: %w", err)
	}

	if err := os.WriteFile(paths.Markdown, []byte(BuildMarkdown(run)), 0o644); err != nil {
		return Paths{}, fmt.Errorf("write markdown report: %w", err)
	}
	return paths, nil
}
