package components

import (
	"regexp"
	"strings"

	"github.com/Rorical/RoriAtlas/ui/styles"
)

var (
	orderedItem = regexp.MustCompile(`^(\d+)\.\s+(.*)`)
	inlineCode  = regexp.MustCompile("`([^`]*)`")
	boldText    = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	linkText    = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
)

// RenderMarkdown styles the small subset of markdown models tend to answer
// with. Fenced blocks keep their line breaks so JSON stays readable.
func RenderMarkdown(text string) string {
	var out []string
	inFence := false

	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			out = append(out, styles.CodeBlockStyle().Render(line))
			continue
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "#"):
			title := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
			out = append(out, styles.TitleStyle().Render(renderInline(title)))
		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
			out = append(out, "• "+renderInline(trimmed[2:]))
		case orderedItem.MatchString(trimmed):
			m := orderedItem.FindStringSubmatch(trimmed)
			out = append(out, m[1]+". "+renderInline(m[2]))
		default:
			out = append(out, renderInline(line))
		}
	}

	return strings.Join(out, "\n")
}

func renderInline(line string) string {
	line = inlineCode.ReplaceAllStringFunc(line, func(match string) string {
		return styles.CodeBlockStyle().Render(strings.Trim(match, "`"))
	})
	line = linkText.ReplaceAllStringFunc(line, func(match string) string {
		m := linkText.FindStringSubmatch(match)
		return styles.LinkStyle().Render(m[1]) + " (" + m[2] + ")"
	})
	return boldText.ReplaceAllStringFunc(line, func(match string) string {
		return styles.BoldStyle().Render(strings.Trim(match, "*"))
	})
}
