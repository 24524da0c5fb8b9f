package app

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/RoriAtlas/internal/core"
	"github.com/Rorical/RoriAtlas/internal/eventbus"
	"github.com/Rorical/RoriAtlas/internal/schema"
)

// Application shows one control loop run in the terminal as it progresses
type Application struct {
	bus   *eventbus.EventBus
	run   *core.Run
	model *AppModel
	opts  []tea.ProgramOption
}

// NewApplication prepares a run of loop for prompt. bus must be the bus the
// loop publishes to.
func NewApplication(loop *core.Loop, bus *eventbus.EventBus, prompt string, opts ...tea.ProgramOption) *Application {
	run := loop.NewRun(prompt)
	return &Application{
		bus:   bus,
		run:   run,
		model: newAppModel(prompt, run, bus),
		opts:  opts,
	}
}

// Start runs the UI until the loop finishes or the user quits
func (app *Application) Start(ctx context.Context) (*schema.CityDetails, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	app.model.ctx = ctx
	app.model.cancel = cancel

	p := tea.NewProgram(app.model, app.opts...)
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("terminal UI failed: %w", err)
	}

	m := final.(*AppModel)
	if !m.view.Done {
		return nil, fmt.Errorf("run interrupted: %w", context.Canceled)
	}
	return m.view.Record, m.view.Err
}

// Run exposes the underlying run, e.g. to print its conversation afterwards
func (app *Application) Run() *core.Run {
	return app.run
}

func (app *Application) Stop() {
	app.bus.Close()
}
