package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/RoriAtlas/internal/core"
	"github.com/Rorical/RoriAtlas/internal/eventbus"
	"github.com/Rorical/RoriAtlas/internal/schema"
)

// RunEventMsg wraps loop events for Bubble Tea
type RunEventMsg struct {
	Event eventbus.RunEvent
}

// RunDoneMsg carries the result of Run.Execute
type RunDoneMsg struct {
	Record *schema.CityDetails
	Err    error
}

type TickMsg time.Time

func TickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// BusClosedMsg means every event the run published has been delivered
type BusClosedMsg struct{}

// executeCmd runs the loop and closes the bus once it returns, so the
// listener sees every event before it sees the close
func executeCmd(ctx context.Context, run *core.Run, bus *eventbus.EventBus) tea.Cmd {
	return func() tea.Msg {
		record, err := run.Execute(ctx)
		bus.Close()
		return RunDoneMsg{Record: record, Err: err}
	}
}

// listenCmd waits for the next loop event. It is the bus's only reader.
func listenCmd(bus *eventbus.EventBus) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-bus.Events()
		if !ok {
			return BusClosedMsg{}
		}
		return RunEventMsg{Event: event}
	}
}

func statusFor(state core.State) string {
	switch state {
	case core.AwaitModel:
		return "Asking the model"
	case core.AwaitTool:
		return "Searching the web"
	case core.Done:
		return "Done"
	case core.Failed:
		return "Failed"
	}
	return string(state)
}

// HandleKeyMsg lets the user abandon the run
func HandleKeyMsg(view *ViewState, keyMsg tea.KeyMsg, cancel context.CancelFunc) tea.Cmd {
	switch keyMsg.String() {
	case "ctrl+c", "q", "esc":
		if cancel != nil {
			cancel()
		}
		view.Loading = false
		view.Status = "Cancelled"
		return tea.Quit
	}
	return nil
}

// HandleRunEvent folds loop progress into the view
func HandleRunEvent(view *ViewState, msg RunEventMsg) {
	switch event := msg.Event.(type) {
	case eventbus.TransitionEvent:
		view.Transitions = append(view.Transitions, event)
		view.Status = statusFor(core.State(event.To))
	case eventbus.RunFinishedEvent:
		if event.Err != nil {
			view.Status = "Failed"
		}
	}
}

// HandleRunDone records the outcome; the program quits right after
func HandleRunDone(view *ViewState, msg RunDoneMsg) {
	view.Done = true
	view.Loading = false
	view.Record = msg.Record
	view.Err = msg.Err
	if msg.Err != nil {
		view.Status = "Failed"
	} else {
		view.Status = "Done"
	}
}

func HandleWindowSizeMsg(view *ViewState, sizeMsg tea.WindowSizeMsg) {
	view.Width = sizeMsg.Width
}

func HandleTickMsg(view *ViewState) tea.Cmd {
	// Only handle UI animations - loading dots
	if view.Loading {
		view.LoadingDots = (view.LoadingDots + 1) % 4
	}
	return TickCmd()
}
