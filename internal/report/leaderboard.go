package report

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"mirage/internal/item"
	"mirage/internal/result"
)

// Entry builds an unranked leaderboard entry from a completed run. Axis
// scores are per-axis means over all items (two decimals); latency is
// rounded to two decimals and cost to six.
func Entry(run result.EvaluationRun) result.LeaderboardEntry {
	trackScores := make(map[item.Track]float64, len(run.TrackSummaries))
	for _, summary := range run.TrackSummaries {
		trackScores[summary.Track] = summary.MeanScore
	}

	axisScores := make(map[string]float64, len(result.Axes()))
	for _, axis := range result.Axes() {
		if len(run.ItemResults) == 0 {
			axisScores[axis] = 0
			continue
		}
		sum := 0
		for _, r := range run.ItemResults {
			sum += r.FinalScores.Axis(axis).Score
		}
		axisScores[axis] = round(float64(sum)/float64(len(run.ItemResults)), 2)
	}

	var latencySum, costSum float64
	for _, r := range run.ItemResults {
		latencySum += r.Usage.LatencyMS
		costSum += r.Usage.Cost
	}
	var avgLatency, avgCost float64
	if len(run.ItemResults) > 0 {
		avgLatency = round(latencySum/float64(len(run.ItemResults)), 2)
		avgCost = round(costSum/float64(len(run.ItemResults)), 6)
	}

	percentile := 50.0
	if run.Percentile != nil {
		percentile = *run.Percentile
	}

	return result.LeaderboardEntry{
		ModelID:      run.ModelCard.ModelID,
		ModelName:    run.ModelCard.ModelName,
		OverallScore: run.OverallScore,
		Percentile:   percentile,
		TrackScores:  trackScores,
		AxisScores:   axisScores,
		AvgLatency:   avgLatency,
		AvgCost:      avgCost,
		EvaluatedAt:  run.Timestamp,
	}
}

// Rank orders entries by overall score descending, ties broken by earlier
// evaluation time, and assigns 1-based ranks. The input is not modified.
func Rank(entries []result.LeaderboardEntry) []result.LeaderboardEntry {
	ranked := make([]result.LeaderboardEntry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].OverallScore != ranked[j].OverallScore {
			return ranked[i].OverallScore > ranked[j].OverallScore
		}
		return ranked[i].EvaluatedAt.Before(ranked[j].EvaluatedAt)
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// LeaderboardJSON renders ranked entries as indented JSON for consumers
// outside the CLI, preserving the order the entries arrive in.
func LeaderboardJSON(entries []result.LeaderboardEntry) ([]byte, error) {
	if entries == nil {
		entries = []result.LeaderboardEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode leaderboard: %w", err)
	}
	return append(data, '\n'), nil
}

func round(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
