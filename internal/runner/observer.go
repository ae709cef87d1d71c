package runner

import (
	"time"

	"mirage/internal/item"
	"mirage/internal/result"
)

// EventType identifies an evaluation lifecycle update for observers.
type EventType string

const (
	// EventRunStart marks the start of an evaluation run.
	EventRunStart EventType = "run_start"
	// EventItemStart marks the start of one item evaluation.
	EventItemStart EventType = "item_start"
	// EventItemFinish marks completion of one item, scores attached.
	EventItemFinish EventType = "item_finish"
	// EventRunFinish marks run completion with aggregates computed.
	EventRunFinish EventType = "run_finish"
)

// Event carries a single evaluation status update. ItemIndex is 1-based
// and strictly increasing; items are evaluated sequentially so observers
// never see interleaved item events.
type Event struct {
	Type       EventType
	RunID      string
	ModelID    string
	ItemIndex  int
	ItemCount  int
	ItemID     string
	Track      item.Track
	TotalScore int
	Overall    float64
	EmittedAt  time.Time
}

// Observer receives run lifecycle events for UI or logging.
type Observer interface {
	OnEvent(event Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(event Event)

func (f ObserverFunc) OnEvent(event Event) { f(event) }

// itemFinishEvent builds an ItemFinish event from a completed result.
func itemFinishEvent(base Event, r result.ItemResult) Event {
	base.Type = EventItemFinish
	base.ItemID = r.ItemID
	base.Track = r.Track
	base.TotalScore = r.TotalScore()
	return base
}
