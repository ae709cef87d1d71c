// Package scorer aggregates item results into track summaries, overall
// scores, percentile ranks, and failure profiles. Every function is pure
// over its inputs and defines non-error fallbacks for empty input.
package scorer

import (
	"math"
	"sort"

	"mirage/internal/item"
	"mirage/internal/result"
)

// TrackSummaries groups results by track and computes, for each track with
// at least one result, the per-axis mean and 0/1/2 score distribution plus
// the track's mean total score rounded to two decimals. Tracks without
// results are omitted.
func TrackSummaries(results []result.ItemResult) []result.TrackSummary {
	byTrack := groupByTrack(results)

	summaries := make([]result.TrackSummary, 0, len(byTrack))
	for _, track := range item.Tracks() {
		trackResults := byTrack[track]
		if len(trackResults) == 0 {
			continue
		}

		axisSummaries := make([]result.AxisSummary, 0, len(result.Axes()))
		for _, axis := range result.Axes() {
			distribution := map[int]int{0: 0, 1: 0, 2: 0}
			sum := 0
			for _, r := range trackResults {
				score := r.FinalScores.Axis(axis).Score
				sum += score
				distribution[score]++
			}
			axisSummaries = append(axisSummaries, result.AxisSummary{
				AxisName:          axis,
				MeanScore:         float64(sum) / float64(len(trackResults)),
				ScoreDistribution: distribution,
			})
		}

		totalSum := 0
		for _, r := range trackResults {
			totalSum += r.TotalScore()
		}
		summaries = append(summaries, result.TrackSummary{
			Track:         track,
			TrackName:     track.Name(),
			ItemCount:     len(trackResults),
			MeanScore:     round2(float64(totalSum) / float64(len(trackResults))),
			AxisSummaries: axisSummaries,
		})
	}
	return summaries
}

// OverallScore is the unweighted mean of track mean scores, rounded to two
// decimals. Tracks weigh equally regardless of item count. Empty input
// yields 0.0.
func OverallScore(summaries []result.TrackSummary) float64 {
	if len(summaries) == 0 {
		return 0.0
	}
	total := 0.0
	for _, summary := range summaries {
		total += summary.MeanScore
	}
	return round2(total / float64(len(summaries)))
}

// Percentile ranks a score within a baseline population using the mid-rank
// convention, rounded to one decimal. An empty baseline carries no
// information and yields the neutral 50.0.
func Percentile(score float64, baseline []float64) float64 {
	if len(baseline) == 0 {
		return 50.0
	}
	below, equal := 0, 0
	for _, b := range baseline {
		switch {
		case b < score:
			below++
		case b == score:
			equal++
		}
	}
	return round1((float64(below) + float64(equal)/2) / float64(len(baseline)) * 100)
}

// FailureModeDetector derives named recurring failure modes from a result
// set. It is the extension point for structured failure-mode signals; no
// detector ships today, so profiles carry an empty (never nil) list.
type FailureModeDetector func(results []result.ItemResult) []result.FailureMode

// FailureProfile identifies the weakest axes (mean strictly below the
// cross-axis average, ascending, at most three) and weakest tracks (same
// over mean total scores, at most two). Detectors, when supplied,
// contribute common failure modes.
func FailureProfile(results []result.ItemResult, detectors ...FailureModeDetector) result.FailureProfile {
	profile := result.FailureProfile{
		WeakestAxes:    []string{},
		WeakestTracks:  []item.Track{},
		CommonFailures: []result.FailureMode{},
	}

	axisMeans := axisMeans(results)
	average := 0.0
	for _, axis := range result.Axes() {
		average += axisMeans[axis]
	}
	average /= float64(len(result.Axes()))

	weakAxes := make([]string, 0, len(result.Axes()))
	for _, axis := range result.Axes() {
		if axisMeans[axis] < average {
			weakAxes = append(weakAxes, axis)
		}
	}
	sort.SliceStable(weakAxes, func(i, j int) bool {
		return axisMeans[weakAxes[i]] < axisMeans[weakAxes[j]]
	})
	if len(weakAxes) > 3 {
		weakAxes = weakAxes[:3]
	}
	profile.WeakestAxes = weakAxes

	trackMeans := trackMeans(results)
	if len(trackMeans) > 0 {
		trackAverage := 0.0
		presentTracks := make([]item.Track, 0, len(trackMeans))
		for _, track := range item.Tracks() {
			if mean, ok := trackMeans[track]; ok {
				trackAverage += mean
				presentTracks = append(presentTracks, track)
			}
		}
		trackAverage /= float64(len(presentTracks))

		weakTracks := make([]item.Track, 0, len(presentTracks))
		for _, track := range presentTracks {
			if trackMeans[track] < trackAverage {
				weakTracks = append(weakTracks, track)
			}
		}
		sort.SliceStable(weakTracks, func(i, j int) bool {
			return trackMeans[weakTracks[i]] < trackMeans[weakTracks[j]]
		})
		if len(weakTracks) > 2 {
			weakTracks = weakTracks[:2]
		}
		profile.WeakestTracks = weakTracks
	}

	for _, detect := range detectors {
		if modes := detect(results); len(modes) > 0 {
			profile.CommonFailures = append(profile.CommonFailures, modes...)
		}
	}
	return profile
}

// AxisPercentiles ranks the current per-axis means against per-group axis
// means from baseline result sets. Without baseline groups every axis gets
// the neutral 50.0.
func AxisPercentiles(results []result.ItemResult, baselineGroups [][]result.ItemResult) map[string]float64 {
	percentiles := make(map[string]float64, len(result.Axes()))
	if baselineGroups == nil {
		for _, axis := range result.Axes() {
			percentiles[axis] = 50.0
		}
		return percentiles
	}

	currentMeans := axisMeans(results)
	for _, axis := range result.Axes() {
		baselineMeans := make([]float64, 0, len(baselineGroups))
		for _, group := range baselineGroups {
			if len(group) == 0 {
				continue
			}
			baselineMeans = append(baselineMeans, axisMeans(group)[axis])
		}
		percentiles[axis] = Percentile(currentMeans[axis], baselineMeans)
	}
	return percentiles
}

// axisMeans computes the mean final score per axis; zero when results are
// empty so callers never divide by zero.
func axisMeans(results []result.ItemResult) map[string]float64 {
	means := make(map[string]float64, len(result.Axes()))
	for _, axis := range result.Axes() {
		if len(results) == 0 {
			means[axis] = 0
			continue
		}
		sum := 0
		for _, r := range results {
			sum += r.FinalScores.Axis(axis).Score
		}
		means[axis] = float64(sum) / float64(len(results))
	}
	return means
}

// trackMeans computes the mean total score per track present in results.
func trackMeans(results []result.ItemResult) map[item.Track]float64 {
	sums := make(map[item.Track]int)
	counts := make(map[item.Track]int)
	for _, r := range results {
		sums[r.Track] += r.TotalScore()
		counts[r.Track]++
	}
	means := make(map[item.Track]float64, len(sums))
	for track, sum := range sums {
		means[track] = float64(sum) / float64(counts[track])
	}
	return means
}

func groupByTrack(results []result.ItemResult) map[item.Track][]result.ItemResult {
	byTrack := make(map[item.Track][]result.ItemResult)
	for _, r := range results {
		byTrack[r.Track] = append(byTrack[r.Track], r)
	}
	return byTrack
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
