package models

// ModelResponse is what one model completion produced: either a request to
// call a tool or final text. Implementations are closed to this package.
type ModelResponse interface {
	modelResponse()
}

// ToolCallResponse carries a structured tool invocation
type ToolCallResponse struct {
	Request ToolInvocationRequest
	Content string // Optional text the model sent alongside the call
}

// TextResponse carries the model's final free-form text
type TextResponse struct {
	Text string
}

func (ToolCallResponse) modelResponse() {}
func (TextResponse) modelResponse()     {}
