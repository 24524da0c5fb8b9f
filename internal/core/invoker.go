package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	"github.com/sashabaranov/go-openai"

	"github.com/Rorical/RoriAtlas/internal/models"
	"github.com/Rorical/RoriAtlas/internal/schema"
)

const (
	DefaultModel = "gpt-4o-mini"

	DefaultSystemPrompt = `You are a helpful assistant that answers questions about where a city is.
Use the search tool whenever you are not certain of a fact.
When you know the answer, reply with only a JSON object with the keys
"state_name", "state_capital", "country_name" and "country_capital".`
)

// ChatCompleter is the subset of the OpenAI client the invoker needs
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ToolCatalog describes the tools the model may call
type ToolCatalog interface {
	OpenAITools() []openai.Tool
	ArgumentName(tool string) (string, bool)
}

type InvokerOptions struct {
	Model            string
	SystemPrompt     string
	Temperature      float32
	StructuredOutput bool // Request the record's json_schema response format
	Logger           logr.Logger
}

// OpenAIInvoker asks an OpenAI-compatible chat endpoint for the next step
type OpenAIInvoker struct {
	client         ChatCompleter
	tools          ToolCatalog
	model          string
	systemPrompt   string
	temperature    float32
	responseFormat *openai.ChatCompletionResponseFormat
	log            logr.Logger
}

// NewOpenAIClient builds a client for apiKey, pointing at baseURL when set
func NewOpenAIClient(apiKey, baseURL string) *openai.Client {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(clientConfig)
}

func NewOpenAIInvoker(client ChatCompleter, tools ToolCatalog, opts InvokerOptions) (*OpenAIInvoker, error) {
	if client == nil {
		return nil, errors.New("OpenAI integration not available")
	}
	inv := &OpenAIInvoker{
		client:       client,
		tools:        tools,
		model:        opts.Model,
		systemPrompt: opts.SystemPrompt,
		temperature:  opts.Temperature,
		log:          opts.Logger,
	}
	if inv.model == "" {
		inv.model = DefaultModel
	}
	if inv.systemPrompt == "" {
		inv.systemPrompt = DefaultSystemPrompt
	}
	if inv.log.GetSink() == nil {
		inv.log = logr.Discard()
	}
	if opts.StructuredOutput {
		format, err := schema.ResponseFormat()
		if err != nil {
			return nil, err
		}
		inv.responseFormat = format
	}
	return inv, nil
}

// Complete sends the conversation and classifies the reply by whether it
// carries a tool call
func (i *OpenAIInvoker) Complete(ctx context.Context, conversation models.Conversation) (models.ModelResponse, error) {
	messages, err := i.chatHistoryWithSystemPrompt(conversation)
	if err != nil {
		return nil, &models.UpstreamModelError{Operation: "encode conversation", Err: err}
	}

	req := openai.ChatCompletionRequest{
		Model:          i.model,
		Messages:       messages,
		Temperature:    i.temperature,
		ResponseFormat: i.responseFormat,
	}
	if i.tools != nil {
		req.Tools = i.tools.OpenAITools()
		if len(req.Tools) > 0 {
			req.ParallelToolCalls = false
		}
	}

	i.log.V(1).Info("calling model", "model", i.model, "messages", len(messages), "tools", len(req.Tools))

	resp, err := i.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			i.log.V(1).Info("model API error", "status", apiErr.HTTPStatusCode, "type", apiErr.Type)
		}
		return nil, &models.UpstreamModelError{Operation: "chat completion", Err: err}
	}

	if len(resp.Choices) == 0 {
		return nil, &models.UpstreamModelError{Operation: "chat completion", Err: errors.New("no choices in response")}
	}

	message := resp.Choices[0].Message
	if len(message.ToolCalls) > 0 {
		if len(message.ToolCalls) > 1 {
			i.log.Info("model requested several tools at once, keeping the first", "count", len(message.ToolCalls))
		}
		req, err := i.toolRequest(message.ToolCalls[0])
		if err != nil {
			return nil, &models.UpstreamModelError{Operation: "decode tool call", Err: err}
		}
		return models.ToolCallResponse{Request: req, Content: message.Content}, nil
	}

	if message.Refusal != "" {
		return nil, &models.UpstreamModelError{Operation: "chat completion", Err: fmt.Errorf("model refused: %s", message.Refusal)}
	}

	return models.TextResponse{Text: strings.TrimSpace(message.Content)}, nil
}

func (i *OpenAIInvoker) toolRequest(call openai.ToolCall) (models.ToolInvocationRequest, error) {
	req := models.ToolInvocationRequest{
		ID:           call.ID,
		Name:         call.Function.Name,
		RawArguments: call.Function.Arguments,
	}
	if req.Name == "" {
		return req, errors.New("tool call has no function name")
	}

	var argName string
	var known bool
	if i.tools != nil {
		argName, known = i.tools.ArgumentName(req.Name)
	}
	if !known {
		// The registry rejects the call when it is invoked
		return req, nil
	}

	var args map[string]interface{}
	if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
		return req, fmt.Errorf("error parsing arguments for %s: %w", req.Name, err)
	}
	value, ok := args[argName].(string)
	if !ok {
		return req, fmt.Errorf("%s parameter of %s must be a string", argName, req.Name)
	}
	req.Argument = value
	return req, nil
}

// chatHistoryWithSystemPrompt converts the conversation to the wire format
func (i *OpenAIInvoker) chatHistoryWithSystemPrompt(conversation models.Conversation) ([]openai.ChatCompletionMessage, error) {
	out := make([]openai.ChatCompletionMessage, 0, len(conversation)+1)
	out = append(out, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: i.systemPrompt,
	})

	for _, msg := range conversation {
		switch msg.Role {
		case models.User:
			out = append(out, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: msg.Content,
			})
		case models.Assistant:
			openaiMsg := openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: msg.Content,
			}
			if msg.ToolCall != nil {
				args, err := i.rawArguments(*msg.ToolCall)
				if err != nil {
					return nil, err
				}
				openaiMsg.ToolCalls = []openai.ToolCall{{
					ID:   msg.ToolCall.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      msg.ToolCall.Name,
						Arguments: args,
					},
				}}
			}
			out = append(out, openaiMsg)
		case models.Tool:
			out = append(out, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    msg.Content,
				ToolCallID: msg.ToolCallID,
			})
		default:
			return nil, fmt.Errorf("unknown message role %q", msg.Role)
		}
	}

	return out, nil
}

func (i *OpenAIInvoker) rawArguments(req models.ToolInvocationRequest) (string, error) {
	if req.RawArguments != "" {
		return req.RawArguments, nil
	}
	argName := "query"
	if i.tools != nil {
		if name, ok := i.tools.ArgumentName(req.Name); ok {
			argName = name
		}
	}
	data, err := json.Marshal(map[string]string{argName: req.Argument})
	if err != nil {
		return "", err
	}
	return string(data), nil
}
