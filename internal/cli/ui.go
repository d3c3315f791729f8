package cli

import (
	"github.com/charmbracelet/lipgloss"
)

var summaryStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#10B981")).
	Padding(1, 2)

// renderSummary draws the report inside a rounded box
func renderSummary(report string) string {
	return summaryStyle.Render(report)
}
