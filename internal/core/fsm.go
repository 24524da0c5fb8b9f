package core

// State is a control loop state
type State string

const (
	AwaitModel State = "AWAIT_MODEL"
	AwaitTool  State = "AWAIT_TOOL"
	Done       State = "DONE"
	// Failed marks a run that ended with an error. It is terminal like Done
	// but is not part of the drawn topology.
	Failed State = "FAILED"
)

// Trigger names the guard that selects a transition
type Trigger string

const (
	TriggerToolCall   Trigger = "tool_call"
	TriggerToolResult Trigger = "tool_result"
	TriggerFinalText  Trigger = "final_text"
	TriggerError      Trigger = "error"
)

// Graph node names, one per non-failed state
const (
	NodeCallModel = "call_model"
	NodeCallTool  = "call_tool"
	NodeRespond   = "respond"
)

// Transition is one edge of the loop's state machine
type Transition struct {
	From    State
	To      State
	Trigger Trigger
}

var transitions = []Transition{
	{From: AwaitModel, To: AwaitTool, Trigger: TriggerToolCall},
	{From: AwaitTool, To: AwaitModel, Trigger: TriggerToolResult},
	{From: AwaitModel, To: Done, Trigger: TriggerFinalText},
}

// Transitions returns the static transition table. Error exits to Failed
// are allowed from every non-terminal state and are not listed.
func Transitions() []Transition {
	out := make([]Transition, len(transitions))
	copy(out, transitions)
	return out
}

// InitialState is where every run starts
func InitialState() State {
	return AwaitModel
}

// Terminal reports whether no transition leaves s
func (s State) Terminal() bool {
	return s == Done || s == Failed
}

// Node maps a state to the graph node that does its work
func (s State) Node() string {
	switch s {
	case AwaitModel:
		return NodeCallModel
	case AwaitTool:
		return NodeCallTool
	case Done:
		return NodeRespond
	}
	return ""
}

func allowed(from, to State, trigger Trigger) bool {
	if trigger == TriggerError {
		return !from.Terminal() && to == Failed
	}
	for _, t := range transitions {
		if t.From == from && t.To == to && t.Trigger == trigger {
			return true
		}
	}
	return false
}
