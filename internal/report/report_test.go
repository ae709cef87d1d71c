package report

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"mirage/internal/item"
	"mirage/internal/result"
)

func sampleRun() result.EvaluationRun {
	axis := result.AxisScore{Score: 2, Justification: "j"}
	scores := result.JudgeScores{
		AmbiguityDetection:        axis,
		HallucinationAvoidance:    axis,
		LocalizationOfUncertainty: axis,
		ResponseStrategy:          result.AxisScore{Score: 1, Justification: "j"},
		EpistemicTone:             result.AxisScore{Score: 0, Justification: "j"},
	}
	percentile := 82.5
	return result.EvaluationRun{
		RunID:          "20260801T120000Z-abcdef123456",
		Timestamp:      time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		DatasetVersion: "canonical",
		Seed:           42,
		ModelCard:      result.ModelCard{ModelID: "test/model", ModelName: "Test Model", MaxTokens: 2048},
		JudgeModel:     "judge/model",
		ItemResults: []result.ItemResult{{
			ItemID:      "A-001",
			Track:       item.TrackNoisyPerception,
			Usage:       result.Usage{LatencyMS: 800, Cost: 0.0012},
			JudgeScores: scores,
			FinalScores: scores,
		}},
		TrackSummaries: []result.TrackSummary{{
			Track:     item.TrackNoisyPerception,
			TrackName: item.TrackNoisyPerception.Name(),
			ItemCount: 1,
			MeanScore: 7.0,
		}},
		OverallScore: 7.0,
		Percentile:   &percentile,
		FailureProfile: &result.FailureProfile{
			WeakestAxes:    []string{result.AxisEpistemicTone},
			WeakestTracks:  []item.Track{},
			CommonFailures: []result.FailureMode{{Mode: "confident_guess", Frequency: 3}},
		},
	}
}

// TestBuildMarkdownSections verifies the report carries every section.
func TestBuildMarkdownSections(t *testing.T) {
	md := BuildMarkdown(sampleRun())
	for _, want := range []string{
		"# Evaluation Report",
		"**Model**: Test Model (`test/model`)",
		"**7.00 / 10**",
		"Percentile: 82.5%",
		"## Track Breakdown",
		"| A | Noisy Perception | 1 | 7.00 |",
		"## Axis Breakdown",
		"| Epistemic Tone | 0.00 | 2 |",
		"## Failure Profile",
		"**Weakest Axes**: Epistemic Tone",
		"- confident_guess (3 occurrences)",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

// TestBuildMarkdownWithoutPercentile verifies optional sections drop out.
func TestBuildMarkdownWithoutPercentile(t *testing.T) {
	run := sampleRun()
	run.Percentile = nil
	run.FailureProfile = nil
	md := BuildMarkdown(run)
	if strings.Contains(md, "Percentile") {
		t.Fatalf("expected no percentile line:\n%s", md)
	}
	if strings.Contains(md, "Failure Profile") {
		t.Fatalf("expected no failure profile section:\n%s", md)
	}
}

// TestEntryFromRun verifies leaderboard entry derivation.
func TestEntryFromRun(t *testing.T) {
	entry := Entry(sampleRun())
	if entry.ModelID != "test/model" || entry.OverallScore != 7.0 {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if entry.Percentile != 82.5 {
		t.Fatalf("expected percentile 82.5, got %v", entry.Percentile)
	}
	if entry.TrackScores[item.TrackNoisyPerception] != 7.0 {
		t.Fatalf("unexpected track scores %v", entry.TrackScores)
	}
	if entry.AxisScores[result.AxisEpistemicTone] != 0.0 || entry.AxisScores[result.AxisAmbiguityDetection] != 2.0 {
		t.Fatalf("unexpected axis scores %v", entry.AxisScores)
	}
	if entry.AvgLatency != 800 || entry.AvgCost != 0.0012 {
		t.Fatalf("unexpected averages %+v", entry)
	}
	if entry.Rank != 0 {
		t.Fatalf("expected unranked entry, got rank %d", entry.Rank)
	}
}

// TestEntryDefaultsPercentile verifies a run without a percentile lands at
// the neutral 50.
func TestEntryDefaultsPercentile(t *testing.T) {
	run := sampleRun()
	run.Percentile = nil
	if entry := Entry(run); entry.Percentile != 50.0 {
		t.Fatalf("expected percentile 50.0, got %v", entry.Percentile)
	}
}

// TestRankOrdersByScoreThenTime verifies ranking order and tie-breaking.
func TestRankOrdersByScoreThenTime(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	entries := []result.LeaderboardEntry{
		{ModelID: "a", OverallScore: 5.0, EvaluatedAt: base.Add(time.Hour)},
		{ModelID: "b", OverallScore: 7.0, EvaluatedAt: base},
		{ModelID: "c", OverallScore: 5.0, EvaluatedAt: base},
	}
	ranked := Rank(entries)
	wantOrder := []string{"b", "c", "a"}
	for i, want := range wantOrder {
		if ranked[i].ModelID != want || ranked[i].Rank != i+1 {
			t.Fatalf("position %d: expected %s rank %d, got %s rank %d",
				i, want, i+1, ranked[i].ModelID, ranked[i].Rank)
		}
	}
	if entries[0].Rank != 0 {
		t.Fatalf("expected input unmodified")
	}
}

// TestWriteRunOutputs verifies both files land on disk and the JSON
// round-trips.
func TestWriteRunOutputs(t *testing.T) {
	dir := t.TempDir()
	run := sampleRun()
	paths, err := WriteRunOutputs(dir, run)
	if err != nil {
		t.Fatalf("write outputs: %v", err)
	}
	if !strings.Contains(paths.ResultsJSON, "test_model_") {
		t.Fatalf("expected flattened model id in path, got %s", paths.ResultsJSON)
	}

	payload, err := os.ReadFile(paths.ResultsJSON)
	if err != nil {
		t.Fatalf("read results json: %v", err)
	}
	var loaded result.EvaluationRun
	if err := json.Unmarshal(payload, &loaded); err != nil {
		t.Fatalf("decode results json: %v", err)
	}
	if loaded.RunID != run.RunID || loaded.OverallScore != run.OverallScore {
		t.Fatalf("round-trip mismatch: %+v", loaded)
	}

	md, err := os.ReadFile(paths.Markdown)
	if err != nil {
		t.Fatalf("read markdown: %v", err)
	}
	if !strings.Contains(string(md), "# Evaluation Report") {
		t.Fatalf("unexpected markdown content")
	}
}

// TestLeaderboardJSON verifies the export round-trips and renders an empty
// leaderboard as an empty array.
func TestLeaderboardJSON(t *testing.T) {
	entries := Rank([]result.LeaderboardEntry{Entry(sampleRun())})
	data, err := LeaderboardJSON(entries)
	if err != nil {
		t.Fatalf("encode leaderboard: %v", err)
	}
	var loaded []result.LeaderboardEntry
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("decode leaderboard: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Rank != 1 {
		t.Fatalf("unexpected entries %+v", loaded)
	}

	empty, err := LeaderboardJSON(nil)
	if err != nil {
		t.Fatalf("encode empty leaderboard: %v", err)
	}
	if strings.TrimSpace(string(empty)) != "[]" {
		t.Fatalf("expected empty array, got %q", empty)
	}
}
