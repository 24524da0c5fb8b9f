package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/RoriAtlas/internal/schema"
	"github.com/Rorical/RoriAtlas/ui/styles"
)

// RenderRecord lays the four fields out as a two-column box
func RenderRecord(record *schema.CityDetails) string {
	if record == nil {
		return ""
	}

	keyStyle := styles.RecordKeyStyle()
	valueStyle := styles.RecordValueStyle()

	rows := []struct{ key, value string }{
		{"State", record.StateName},
		{"State capital", record.StateCapital},
		{"Country", record.CountryName},
		{"Country capital", record.CountryCapital},
	}

	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = lipgloss.JoinHorizontal(lipgloss.Top, keyStyle.Render(row.key), valueStyle.Render(row.value))
	}

	return styles.RecordBoxStyle().Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
