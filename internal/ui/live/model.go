// Package live renders evaluation progress as a console UI built on
// Bubble Tea. A Controller adapts runner events onto the event channel the
// model consumes.
package live

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mirage/internal/runner"
)

// Model renders a live evaluation UI using Bubble Tea.
type Model struct {
	state        State
	bar          progress.Model
	events       <-chan runner.Event
	tickInterval time.Duration
	now          time.Time
	noColor      bool
}

// Options configures the live UI model.
type Options struct {
	NoColor      bool
	TickInterval time.Duration
}

// NewModel constructs a live UI model for an event stream.
func NewModel(events <-chan runner.Event, opts Options) Model {
	tickInterval := opts.TickInterval
	if tickInterval <= 0 {
		tickInterval = 200 * time.Millisecond
	}
	bar := progress.New(progress.WithDefaultGradient())
	if opts.NoColor {
		bar = progress.New(progress.WithSolidFill("7"))
	}
	return Model{
		state:        State{},
		bar:          bar,
		events:       events,
		tickInterval: tickInterval,
		now:          time.Now(),
		noColor:      opts.NoColor,
	}
}

// Init starts ticking and waits for the first event.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), tick(m.tickInterval))
}

// Update consumes runner events and timer ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = max(typed.Width-8, 10)
		return m, nil
	case tea.KeyMsg:
		if typed.String() == "ctrl+c" || typed.String() == "q" {
			return m, tea.Quit
		}
		return m, nil
	case eventMsg:
		m.state = applyRunnerEvent(m.state, typed.event)
		return m, waitForEvent(m.events)
	case tickMsg:
		m.now = time.Time(typed)
		return m, tick(m.tickInterval)
	}
	return m, nil
}

// View renders the live UI.
func (m Model) View() string {
	header := m.renderHeader()
	bar := m.bar.ViewAs(m.state.progress())
	status := m.renderStatus()
	lastItems := m.renderRecentItems()
	return lipgloss.JoinVertical(lipgloss.Left, header, bar, status, lastItems)
}

func (m Model) renderHeader() string {
	elapsed := ""
	if !m.state.StartedAt.IsZero() {
		elapsed = m.now.Sub(m.state.StartedAt).Round(100 * time.Millisecond).String()
	}
	line := "Evaluating " + m.state.ModelID + " | Run " + m.state.RunID
	if elapsed != "" {
		line += " | Elapsed: " + elapsed
	}
	return m.stylize(line, lipgloss.Color("33"))
}

func (m Model) renderStatus() string {
	line := fmt.Sprintf("Items: %d/%d | Mean score: %.2f/10",
		m.state.Completed, m.state.ItemCount, m.state.meanScore())
	if m.state.Finished {
		line = fmt.Sprintf("Done | Items: %d | Overall: %.2f/10",
			m.state.Completed, m.state.Overall)
	}
	return m.stylize(line, lipgloss.Color("242"))
}

// renderRecentItems shows the last few finished items.
func (m Model) renderRecentItems() string {
	const window = 5
	start := len(m.state.Rows) - window
	if start < 0 {
		start = 0
	}
	out := ""
	for _, row := range m.state.Rows[start:] {
		status := "…"
		if row.Done {
			status = fmt.Sprintf("%d/10", row.TotalScore)
		}
		out += fmt.Sprintf("  [%s] %-12s %s\n", row.Track, row.ID, status)
	}
	return m.stylize(out, lipgloss.Color("240"))
}

func (m Model) stylize(text string, color lipgloss.Color) string {
	if m.noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}

// eventMsg wraps a runner event for Bubble Tea.
type eventMsg struct {
	event runner.Event
}

// tickMsg carries a clock tick for elapsed-time updates.
type tickMsg time.Time

// waitForEvent blocks until a runner event is available.
func waitForEvent(events <-chan runner.Event) tea.Cmd {
	return func() tea.Msg {
		if events == nil {
			return nil
		}
		event, ok := <-events
		if !ok {
			return tea.Quit()
		}
		return eventMsg{event: event}
	}
}

// tick emits a periodic tick message.
func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}
