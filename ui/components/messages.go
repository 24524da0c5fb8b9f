package components

import (
	"strings"

	"github.com/Rorical/RoriAtlas/internal/models"
	"github.com/Rorical/RoriAtlas/ui/styles"
)

const maxToolResultChars = 400

// RenderConversation prints a run's history, one block per message
func RenderConversation(conversation models.Conversation) string {
	var b strings.Builder

	userStyle := styles.UserStyle()
	assistantStyle := styles.AssistantStyle()
	toolCallStyle := styles.ToolCallStyle()
	toolResultStyle := styles.ToolResultStyle()

	for _, msg := range conversation {
		switch msg.Role {
		case models.User:
			b.WriteString(userStyle.Render("You: "+msg.Content) + "\n\n")
		case models.Assistant:
			if msg.Content != "" {
				b.WriteString(assistantStyle.Render("Assistant: "+RenderMarkdown(msg.Content)) + "\n\n")
			}
			if msg.ToolCall != nil {
				b.WriteString(toolCallStyle.Render("→ "+msg.ToolCall.Name+"("+msg.ToolCall.Argument+")") + "\n\n")
			}
		case models.Tool:
			b.WriteString(toolResultStyle.Render("← "+msg.ToolName+": "+truncate(msg.Content, maxToolResultChars)) + "\n\n")
		}
	}

	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
