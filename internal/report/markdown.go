// Package report renders evaluation runs as JSON result files, Markdown
// summaries, and leaderboard entries.
package report

import (
	"fmt"
	"strings"

	"mirage/internal/result"
)

// BuildMarkdown renders a human-readable summary of a run.
func BuildMarkdown(run result.EvaluationRun) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Evaluation Report\n\n")
	fmt.Fprintf(&b, "**Model**: %s (`%s`)\n", run.ModelCard.ModelName, run.ModelCard.ModelID)
	fmt.Fprintf(&b, "**Date**: %s\n", run.Timestamp.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "**Dataset Version**: %s\n", run.DatasetVersion)
	fmt.Fprintf(&b, "**Seed**: %d\n\n", run.Seed)

	fmt.Fprintf(&b, "## Overall Score\n\n")
	fmt.Fprintf(&b, "**%.2f / 10**\n\n", run.OverallScore)
	if run.Percentile != nil {
		fmt.Fprintf(&b, "Percentile: %.1f%%\n\n", *run.Percentile)
	}

	fmt.Fprintf(&b, "## Track Breakdown\n\n")
	fmt.Fprintf(&b, "| Track | Name | Items | Score |\n")
	fmt.Fprintf(&b, "|-------|------|-------|-------|\n")
	for _, summary := range run.TrackSummaries {
		fmt.Fprintf(&b, "| %s | %s | %d | %.2f |\n",
			summary.Track, summary.TrackName, summary.ItemCount, summary.MeanScore)
	}

	fmt.Fprintf(&b, "\n## Axis Breakdown\n\n")
	fmt.Fprintf(&b, "| Axis | Mean Score | Out of |\n")
	fmt.Fprintf(&b, "|------|------------|--------|\n")
	for _, axis := range result.Axes() {
		mean := 0.0
		if len(run.ItemResults) > 0 {
			sum := 0
			for _, r := range run.ItemResults {
				sum += r.FinalScores.Axis(axis).Score
			}
			mean = float64(sum) / float64(len(run.ItemResults))
		}
		fmt.Fprintf(&b, "| %s | %.2f | 2 |\n", result.AxisDisplayName(axis), mean)
	}

	if profile := run.FailureProfile; profile != nil {
		fmt.Fprintf(&b, "\n## Failure Profile\n\n")
		if len(profile.WeakestAxes) > 0 {
			names := make([]string, len(profile.WeakestAxes))
			for i, axis := range profile.WeakestAxes {
				names[i] = result.AxisDisplayName(axis)
			}
			fmt.Fprintf(&b, "**Weakest Axes**: %s\n", strings.Join(names, ", "))
		}
		if len(profile.WeakestTracks) > 0 {
			names := make([]string, len(profile.WeakestTracks))
			for i, track := range profile.WeakestTracks {
				names[i] = track.Name()
			}
			fmt.Fprintf(&b, "**Weakest Tracks**: %s\n", strings.Join(names, ", "))
		}
		if len(profile.CommonFailures) > 0 {
			fmt.Fprintf(&b, "\n**Common Failure Modes**:\n\n")
			for _, mode := range profile.CommonFailures {
				fmt.Fprintf(&b, "- %s (%d occurrences)\n", mode.Mode, mode.Frequency)
			}
		}
	}

	return b.String()
}
