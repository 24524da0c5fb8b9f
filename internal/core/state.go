package core

import (
	"sync"

	"github.com/Rorical/RoriAtlas/internal/models"
)

// conversationState owns the message history of a single run
type conversationState struct {
	mu           sync.RWMutex
	history      models.Conversation // Single source of truth for the run
	toolCalls    int                 // Tool invocations requested so far
	maxToolCalls int                 // Maximum allowed tool invocations
}

func newConversationState(prompt string, maxToolCalls int) *conversationState {
	return &conversationState{
		history:      models.Conversation{models.UserMessage(prompt)},
		maxToolCalls: maxToolCalls,
	}
}

func (cs *conversationState) Messages() models.Conversation {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.history.Clone()
}

func (cs *conversationState) Len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.history)
}

// AddToolCall appends the assistant turn that requested a tool
func (cs *conversationState) AddToolCall(content string, req models.ToolInvocationRequest) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.history = append(cs.history, models.ToolCallMessage(content, req))
	cs.toolCalls++
}

// AddToolResult appends a tool's payload
func (cs *conversationState) AddToolResult(result models.ToolResult) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.history = append(cs.history, models.ToolResultMessage(result))
}

// AddFinalText appends the model's closing plain-text answer
func (cs *conversationState) AddFinalText(text string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.history = append(cs.history, models.AssistantMessage(text))
}

func (cs *conversationState) ToolCalls() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.toolCalls
}

func (cs *conversationState) CanCallTool() bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.toolCalls < cs.maxToolCalls
}
