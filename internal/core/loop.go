package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/Rorical/RoriAtlas/internal/eventbus"
	"github.com/Rorical/RoriAtlas/internal/models"
	"github.com/Rorical/RoriAtlas/internal/schema"
)

// DefaultMaxToolCalls bounds how many times one run may call a tool
const DefaultMaxToolCalls = 5

// ModelInvoker sends the conversation to a language model
type ModelInvoker interface {
	Complete(ctx context.Context, conversation models.Conversation) (models.ModelResponse, error)
}

// ToolInvoker runs a tool the model asked for
type ToolInvoker interface {
	Invoke(ctx context.Context, req models.ToolInvocationRequest) (models.ToolResult, error)
}

// RecordParser turns the model's final text into the structured record
type RecordParser interface {
	Parse(text string) (*schema.CityDetails, error)
}

type Options struct {
	MaxToolCalls int
	Logger       logr.Logger
	Bus          *eventbus.EventBus // Optional, receives progress events
}

// Loop drives runs through AWAIT_MODEL, AWAIT_TOOL and DONE. A Loop holds
// no per-run state and may start any number of runs.
type Loop struct {
	model        ModelInvoker
	tools        ToolInvoker
	parser       RecordParser
	maxToolCalls int
	log          logr.Logger
	bus          *eventbus.EventBus
}

func NewLoop(model ModelInvoker, tools ToolInvoker, parser RecordParser, opts Options) *Loop {
	l := &Loop{
		model:        model,
		tools:        tools,
		parser:       parser,
		maxToolCalls: opts.MaxToolCalls,
		log:          opts.Logger,
		bus:          opts.Bus,
	}
	if l.maxToolCalls <= 0 {
		l.maxToolCalls = DefaultMaxToolCalls
	}
	if l.log.GetSink() == nil {
		l.log = logr.Discard()
	}
	return l
}

// Run executes a fresh run for prompt and returns its record
func (l *Loop) Run(ctx context.Context, prompt string) (*schema.CityDetails, error) {
	return l.NewRun(prompt).Execute(ctx)
}

// NewRun prepares a run without starting it
func (l *Loop) NewRun(prompt string) *Run {
	id := uuid.NewString()
	return &Run{
		id:    id,
		loop:  l,
		conv:  newConversationState(prompt, l.maxToolCalls),
		state: InitialState(),
		log:   l.log.WithValues("run", id),
	}
}

// Run is one pass of the control loop over a single conversation
type Run struct {
	id   string
	loop *Loop
	conv *conversationState
	log  logr.Logger

	mu      sync.RWMutex
	state   State
	started bool
	pending *models.ToolInvocationRequest
}

func (r *Run) ID() string {
	return r.id
}

// State returns the current state of the run
func (r *Run) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Conversation returns a copy of the messages appended so far
func (r *Run) Conversation() models.Conversation {
	return r.conv.Messages()
}

// ToolCalls returns how many tool invocations the run has requested
func (r *Run) ToolCalls() int {
	return r.conv.ToolCalls()
}

// Execute drives the run to a terminal state. Calls to the model and the tool
// are strictly sequential. A run can only be executed once.
func (r *Run) Execute(ctx context.Context) (*schema.CityDetails, error) {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return nil, errors.New("run already executed")
	}
	r.started = true
	r.mu.Unlock()

	r.log.V(1).Info("run started", "state", r.State())

	for {
		if err := ctx.Err(); err != nil {
			return nil, r.fail(fmt.Errorf("run cancelled: %w", err))
		}

		switch r.State() {
		case AwaitModel:
			record, err := r.callModel(ctx)
			if err != nil {
				return nil, r.fail(err)
			}
			if record != nil {
				published, out := *record, *record
				r.publish(eventbus.RunFinishedEvent{RunID: r.id, Record: &published})
				r.log.Info("run complete", "toolCalls", r.ToolCalls(), "messages", r.conv.Len())
				return &out, nil
			}
		case AwaitTool:
			if err := r.callTool(ctx); err != nil {
				return nil, r.fail(err)
			}
		default:
			return nil, fmt.Errorf("run in unexpected state %s", r.State())
		}
	}
}

// callModel handles AWAIT_MODEL. It returns a record only on DONE.
func (r *Run) callModel(ctx context.Context) (*schema.CityDetails, error) {
	resp, err := r.loop.model.Complete(ctx, r.conv.Messages())
	if err != nil {
		var upstream *models.UpstreamModelError
		if errors.As(err, &upstream) {
			return nil, err
		}
		return nil, &models.UpstreamModelError{Operation: "complete", Err: err}
	}

	switch resp := resp.(type) {
	case models.ToolCallResponse:
		if !r.conv.CanCallTool() {
			return nil, fmt.Errorf("%w (%d)", models.ErrToolCallLimit, r.loop.maxToolCalls)
		}
		req := resp.Request
		r.conv.AddToolCall(resp.Content, req)
		r.mu.Lock()
		r.pending = &req
		r.mu.Unlock()
		r.transition(AwaitTool, TriggerToolCall, req.Argument)
		return nil, nil

	case models.TextResponse:
		r.conv.AddFinalText(resp.Text)
		record, err := r.loop.parser.Parse(resp.Text)
		if err != nil {
			var schemaErr *models.SchemaValidationError
			if errors.As(err, &schemaErr) {
				return nil, err
			}
			return nil, &models.SchemaValidationError{Err: err}
		}
		r.transition(Done, TriggerFinalText, "")
		return record, nil

	default:
		return nil, &models.UpstreamModelError{
			Operation: "complete",
			Err:       fmt.Errorf("unrecognised model response %T", resp),
		}
	}
}

// callTool handles AWAIT_TOOL
func (r *Run) callTool(ctx context.Context) error {
	r.mu.RLock()
	req := r.pending
	r.mu.RUnlock()
	if req == nil {
		return errors.New("no pending tool call")
	}

	result, err := r.loop.tools.Invoke(ctx, *req)
	if err != nil {
		var toolErr *models.ToolInvocationError
		if errors.As(err, &toolErr) {
			return err
		}
		return &models.ToolInvocationError{Tool: req.Name, Query: req.Argument, Err: err}
	}
	if result.CallID == "" {
		result.CallID = req.ID
	}
	if result.Name == "" {
		result.Name = req.Name
	}

	r.conv.AddToolResult(result)
	r.mu.Lock()
	r.pending = nil
	r.mu.Unlock()
	r.transition(AwaitModel, TriggerToolResult, "")
	return nil
}

func (r *Run) transition(to State, trigger Trigger, detail string) {
	r.mu.Lock()
	from := r.state
	if !allowed(from, to, trigger) {
		r.mu.Unlock()
		panic(fmt.Sprintf("core: illegal transition %s -> %s on %s", from, to, trigger))
	}
	r.state = to
	r.mu.Unlock()

	r.log.V(1).Info("transition", "from", from, "to", to, "trigger", trigger, "detail", detail)
	r.publish(eventbus.TransitionEvent{
		RunID:   r.id,
		From:    string(from),
		To:      string(to),
		Trigger: string(trigger),
		Detail:  detail,
		At:      time.Now(),
	})
}

func (r *Run) fail(err error) error {
	if !r.State().Terminal() {
		r.transition(Failed, TriggerError, err.Error())
	}
	r.log.Error(err, "run failed", "toolCalls", r.ToolCalls(), "messages", r.conv.Len())
	r.publish(eventbus.RunFinishedEvent{RunID: r.id, Err: err})
	return err
}

func (r *Run) publish(event eventbus.RunEvent) {
	if r.loop.bus == nil {
		return
	}
	if err := r.loop.bus.Publish(event); err != nil {
		r.log.V(1).Info("dropped run event", "error", err.Error())
	}
}
