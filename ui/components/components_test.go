package components

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Rorical/RoriAtlas/internal/eventbus"
	"github.com/Rorical/RoriAtlas/internal/models"
	"github.com/Rorical/RoriAtlas/internal/schema"
)

func TestRenderRecord(t *testing.T) {
	out := RenderRecord(&schema.CityDetails{
		StateName:      "Madhya Pradesh",
		StateCapital:   "Bhopal",
		CountryName:    "India",
		CountryCapital: "New Delhi",
	})
	for _, s := range []string{"State capital", "Madhya Pradesh", "Bhopal", "India", "New Delhi"} {
		assert.Contains(t, out, s)
	}
	assert.Empty(t, RenderRecord(nil))
}

func TestRenderConversation(t *testing.T) {
	out := RenderConversation(models.Conversation{
		models.UserMessage("where is gwalior?"),
		models.ToolCallMessage("", models.ToolInvocationRequest{Name: "tavily_search_results_json", Argument: "gwalior"}),
		models.ToolResultMessage(models.ToolResult{Name: "tavily_search_results_json", Content: "[]"}),
		models.AssistantMessage("{}"),
	})
	assert.Contains(t, out, "You: where is gwalior?")
	assert.Contains(t, out, "tavily_search_results_json(gwalior)")
	assert.Contains(t, out, "Assistant: {}")
}

func TestRenderTransitions(t *testing.T) {
	out := RenderTransitions([]eventbus.TransitionEvent{
		{From: "AWAIT_MODEL", To: "AWAIT_TOOL", Trigger: "tool_call", Detail: "gwalior"},
	})
	assert.Contains(t, out, "AWAIT_MODEL → AWAIT_TOOL")
	assert.Contains(t, out, "gwalior")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "ab…", truncate("abc", 2))
}

func TestRenderStatus(t *testing.T) {
	assert.Contains(t, RenderStatus("Searching", true, 3, 0), "Searching...")
}

func TestRenderMarkdown(t *testing.T) {
	out := RenderMarkdown("## Gwalior\n\n- **State**: Madhya Pradesh\n1. see [wiki](https://en.wikipedia.org)\n```json\n{\"state_name\": \"Madhya Pradesh\"}\n```")

	assert.Contains(t, out, "Gwalior")
	assert.NotContains(t, out, "##")
	assert.NotContains(t, out, "```")
	assert.NotContains(t, out, "**")
	assert.Contains(t, out, "• ")
	assert.Contains(t, out, "State")
	assert.Contains(t, out, "(https://en.wikipedia.org)")
	assert.Contains(t, out, `"state_name"`)
}
