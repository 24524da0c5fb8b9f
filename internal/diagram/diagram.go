// Package diagram draws the control loop's node/edge topology. It reads the
// static transition table only and never touches a running loop.
package diagram

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/RoriAtlas/internal/core"
	"github.com/Rorical/RoriAtlas/ui/styles"
)

const (
	StartNode = "__start__"
	EndNode   = "__end__"
)

type Edge struct {
	From        string
	To          string
	Label       string
	Conditional bool // Chosen by a guard rather than always taken
}

type Graph struct {
	Nodes []string
	Edges []Edge
}

// FromTransitions builds the drawable graph for a transition table
func FromTransitions(table []core.Transition) Graph {
	outgoing := make(map[core.State]int)
	for _, t := range table {
		outgoing[t.From]++
	}

	g := Graph{Nodes: []string{StartNode}}
	seen := map[string]bool{StartNode: true}
	addNode := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			g.Nodes = append(g.Nodes, name)
		}
	}

	initial := core.InitialState().Node()
	addNode(initial)
	g.Edges = append(g.Edges, Edge{From: StartNode, To: initial})

	var terminal []string
	for _, t := range table {
		from, to := t.From.Node(), t.To.Node()
		addNode(from)
		addNode(to)
		g.Edges = append(g.Edges, Edge{
			From:        from,
			To:          to,
			Label:       string(t.Trigger),
			Conditional: outgoing[t.From] > 1,
		})
		if t.To.Terminal() {
			terminal = append(terminal, to)
		}
	}

	for _, node := range terminal {
		g.Edges = append(g.Edges, Edge{From: node, To: EndNode})
	}
	addNode(EndNode)
	return g
}

// Default is the graph of the loop this binary runs
func Default() Graph {
	return FromTransitions(core.Transitions())
}

// Mermaid renders g as a Mermaid flowchart
func Mermaid(g Graph) string {
	var b strings.Builder
	b.WriteString("flowchart TD\n")
	for _, node := range g.Nodes {
		if node == StartNode || node == EndNode {
			fmt.Fprintf(&b, "\t%s([%s])\n", node, node)
		} else {
			fmt.Fprintf(&b, "\t%s(%s)\n", node, node)
		}
	}
	for _, e := range g.Edges {
		switch {
		case e.Conditional:
			fmt.Fprintf(&b, "\t%s -. %s .-> %s\n", e.From, e.Label, e.To)
		case e.Label != "":
			fmt.Fprintf(&b, "\t%s -- %s --> %s\n", e.From, e.Label, e.To)
		default:
			fmt.Fprintf(&b, "\t%s --> %s\n", e.From, e.To)
		}
	}
	return b.String()
}

// Boxes renders g for a terminal: nodes stacked on the left, edges listed on
// the right
func Boxes(g Graph) string {
	nodeStyle := styles.NodeStyle()
	terminalStyle := styles.TerminalNodeStyle()

	var column []string
	for i, node := range g.Nodes {
		if i > 0 {
			column = append(column, styles.EdgeStyle().Render("  │"))
		}
		if node == StartNode || node == EndNode {
			column = append(column, terminalStyle.Render(node))
		} else {
			column = append(column, nodeStyle.Render(node))
		}
	}

	var edges []string
	for _, e := range g.Edges {
		arrow := "──▶"
		if e.Conditional {
			arrow = "╌╌▶"
		}
		line := fmt.Sprintf("%s %s %s", e.From, arrow, e.To)
		if e.Label != "" {
			line += "  " + styles.LabelStyle().Render("["+e.Label+"]")
		}
		edges = append(edges, styles.EdgeStyle().Render(line))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.JoinVertical(lipgloss.Left, column...),
		"    ",
		lipgloss.JoinVertical(lipgloss.Left, edges...),
	)
}
