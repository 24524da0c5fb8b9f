package app

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/RoriAtlas/internal/core"
	"github.com/Rorical/RoriAtlas/internal/eventbus"
	"github.com/Rorical/RoriAtlas/internal/schema"
	"github.com/Rorical/RoriAtlas/ui/components"
	"github.com/Rorical/RoriAtlas/ui/styles"
)

// ViewState is what the screen shows; it is only touched from Update
type ViewState struct {
	Prompt      string
	Transitions []eventbus.TransitionEvent
	Status      string
	Loading     bool
	LoadingDots int
	Width       int
	Done        bool
	Record      *schema.CityDetails
	Err         error
}

type AppModel struct {
	view      ViewState
	run       *core.Run
	bus       *eventbus.EventBus
	ctx       context.Context
	cancel    context.CancelFunc
	result    *RunDoneMsg // Held until the bus is drained
	busClosed bool
}

func newAppModel(prompt string, run *core.Run, bus *eventbus.EventBus) *AppModel {
	return &AppModel{
		view: ViewState{
			Prompt:  prompt,
			Status:  statusFor(run.State()),
			Loading: true,
		},
		run: run,
		bus: bus,
		ctx: context.Background(),
	}
}

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(
		TickCmd(),
		executeCmd(m.ctx, m.run, m.bus),
		listenCmd(m.bus),
	)
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, HandleKeyMsg(&m.view, msg, m.cancel)
	case tea.WindowSizeMsg:
		HandleWindowSizeMsg(&m.view, msg)
		return m, nil
	case TickMsg:
		return m, HandleTickMsg(&m.view)
	case RunEventMsg:
		HandleRunEvent(&m.view, msg)
		return m, listenCmd(m.bus)
	case BusClosedMsg:
		m.busClosed = true
		return m, m.finish()
	case RunDoneMsg:
		m.result = &msg
		return m, m.finish()
	}
	return m, nil
}

// finish shows the outcome once the run has returned and its last event
// has been folded in
func (m *AppModel) finish() tea.Cmd {
	if m.result == nil || !m.busClosed {
		return nil
	}
	HandleRunDone(&m.view, *m.result)
	return tea.Quit
}

func (m *AppModel) View() string {
	var b strings.Builder

	b.WriteString(styles.UserStyle().Render("You: "+m.view.Prompt) + "\n\n")
	b.WriteString(components.RenderTransitions(m.view.Transitions))
	b.WriteString("\n")

	if m.view.Done {
		if m.view.Err != nil {
			b.WriteString(styles.ErrorStyle().Render("Error: "+m.view.Err.Error()) + "\n")
		} else {
			b.WriteString(components.RenderRecord(m.view.Record) + "\n")
		}
	}

	b.WriteString(components.RenderStatus(m.view.Status, m.view.Loading, m.view.LoadingDots, m.view.Width))
	b.WriteString("\n")
	return b.String()
}
