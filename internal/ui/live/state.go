package live

import (
	"time"

	"mirage/internal/item"
	"mirage/internal/runner"
)

// ItemRow holds UI state for one evaluated item.
type ItemRow struct {
	Index      int
	ID         string
	Track      item.Track
	Done       bool
	TotalScore int
	StartedAt  time.Time
	FinishedAt time.Time
}

// State captures the live UI state for an evaluation run.
type State struct {
	RunID     string
	ModelID   string
	ItemCount int
	Completed int
	ScoreSum  int
	Overall   float64
	Finished  bool
	StartedAt time.Time
	Rows      []ItemRow
}

// applyRunnerEvent folds one runner event into the state.
func applyRunnerEvent(state State, event runner.Event) State {
	switch event.Type {
	case runner.EventRunStart:
		state.RunID = event.RunID
		state.ModelID = event.ModelID
		state.ItemCount = event.ItemCount
		if state.StartedAt.IsZero() {
			state.StartedAt = event.EmittedAt
		}
	case runner.EventItemStart:
		state.Rows = append(state.Rows, ItemRow{
			Index:     event.ItemIndex,
			ID:        event.ItemID,
			Track:     event.Track,
			StartedAt: event.EmittedAt,
		})
	case runner.EventItemFinish:
		for i := len(state.Rows) - 1; i >= 0; i-- {
			if state.Rows[i].Index == event.ItemIndex {
				state.Rows[i].Done = true
				state.Rows[i].TotalScore = event.TotalScore
				state.Rows[i].FinishedAt = event.EmittedAt
				break
			}
		}
		state.Completed++
		state.ScoreSum += event.TotalScore
	case runner.EventRunFinish:
		state.Overall = event.Overall
		state.Finished = true
	}
	return state
}

// meanScore is the running mean total score over completed items.
func (s State) meanScore() float64 {
	if s.Completed == 0 {
		return 0
	}
	return float64(s.ScoreSum) / float64(s.Completed)
}

// progress is the completed fraction in [0,1].
func (s State) progress() float64 {
	if s.ItemCount == 0 {
		return 0
	}
	return float64(s.Completed) / float64(s.ItemCount)
}
