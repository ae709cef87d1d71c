package live

import (
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"mirage/internal/runner"
)

// Controller runs the live UI and implements runner.Observer.
type Controller struct {
	events    chan runner.Event
	program   *tea.Program
	done      chan struct{}
	closeOnce sync.Once
}

// Start launches a live UI controller that writes to stdout.
func Start(stdout io.Writer, opts Options) *Controller {
	if stdout == nil {
		stdout = os.Stdout
	}
	events := make(chan runner.Event, 256)
	model := NewModel(events, opts)
	program := tea.NewProgram(model, tea.WithOutput(stdout))
	controller := &Controller{
		events:  events,
		program: program,
		done:    make(chan struct{}),
	}
	go func() {
		_, _ = program.Run()
		close(controller.done)
	}()
	return controller
}

// OnEvent forwards runner events to the UI; the run-finish event also
// closes it.
func (c *Controller) OnEvent(event runner.Event) {
	c.send(event)
	if event.Type == runner.EventRunFinish {
		c.Close()
	}
}

// Close signals the UI to stop.
func (c *Controller) Close() {
	if c == nil {
		return
	}
	c.closeOnce.Do(func() {
		close(c.events)
	})
}

// Wait blocks until the UI has exited.
func (c *Controller) Wait() {
	if c == nil {
		return
	}
	<-c.done
}

// send enqueues an event without blocking the caller.
func (c *Controller) send(event runner.Event) {
	if c == nil {
		return
	}
	select {
	case c.events <- event:
	default:
	}
}
