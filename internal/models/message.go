package models

// Role tags who produced a message in the conversation
type Role string

const (
	User      Role = "user"
	Assistant Role = "assistant"
	Tool      Role = "tool"
)

// ToolInvocationRequest is a structured request from the model to call a tool
type ToolInvocationRequest struct {
	ID           string // Provider-assigned call ID, echoed back on the tool result
	Name         string // Tool name as registered
	Argument     string // The single string argument (the search query)
	RawArguments string // Arguments exactly as the model sent them (JSON)
}

// ToolResult is the raw payload returned by a tool
type ToolResult struct {
	CallID  string
	Name    string
	Content string
}

type Message struct {
	Role    Role
	Content string
	// Set only on assistant messages that request a tool
	ToolCall *ToolInvocationRequest
	// Set only on tool messages
	ToolCallID string
	ToolName   string
}

// Conversation is the chronological, append-only message history of one run
type Conversation []Message

// UserMessage builds the opening message of a run
func UserMessage(content string) Message {
	return Message{Role: User, Content: content}
}

// ToolCallMessage records the assistant turn that asked for a tool
func ToolCallMessage(content string, req ToolInvocationRequest) Message {
	call := req
	return Message{Role: Assistant, Content: content, ToolCall: &call}
}

// ToolResultMessage records a tool's payload
func ToolResultMessage(result ToolResult) Message {
	return Message{
		Role:       Tool,
		Content:    result.Content,
		ToolCallID: result.CallID,
		ToolName:   result.Name,
	}
}

// AssistantMessage records a plain-text assistant turn
func AssistantMessage(content string) Message {
	return Message{Role: Assistant, Content: content}
}

// Clone returns a copy that shares nothing with c
func (c Conversation) Clone() Conversation {
	out := make(Conversation, len(c))
	for i, msg := range c {
		if msg.ToolCall != nil {
			call := *msg.ToolCall
			msg.ToolCall = &call
		}
		out[i] = msg
	}
	return out
}

// ToolCalls counts the assistant messages that requested a tool
func (c Conversation) ToolCalls() int {
	n := 0
	for _, msg := range c {
		if msg.Role == Assistant && msg.ToolCall != nil {
			n++
		}
	}
	return n
}
