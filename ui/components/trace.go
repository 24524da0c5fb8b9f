package components

import (
	"fmt"
	"strings"

	"github.com/Rorical/RoriAtlas/internal/eventbus"
	"github.com/Rorical/RoriAtlas/ui/styles"
)

// RenderTransitions lists the state changes of a run in order
func RenderTransitions(events []eventbus.TransitionEvent) string {
	var b strings.Builder
	labelStyle := styles.LabelStyle()

	for _, e := range events {
		line := fmt.Sprintf("%s → %s %s", e.From, e.To, labelStyle.Render("["+e.Trigger+"]"))
		if e.Detail != "" {
			line += " " + e.Detail
		}
		b.WriteString(styles.ProgramStyle().Render(line) + "\n")
	}

	return b.String()
}
