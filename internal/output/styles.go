package output

import (
	"github.com/charmbracelet/lipgloss"

	"vtscan/internal/vt"
)

// Shared panel styles.
var (
	styleField  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	styleBold   = lipgloss.NewStyle().Bold(true)
	styleOK     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleWarn   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleDanger = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleInfo   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	styleLink   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Underline(true)

	panelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// SeverityEmoji returns the marker shown beside a verdict.
func SeverityEmoji(s vt.Severity) string {
	switch s {
	case vt.SeverityClean:
		return "✅"
	case vt.SeveritySuspicious:
		return "⚠️"
	case vt.SeverityMalicious:
		return "🚨"
	default:
		return "❓"
	}
}

func severityStyle(s vt.Severity) lipgloss.Style {
	switch s {
	case vt.SeverityClean:
		return styleOK
	case vt.SeveritySuspicious:
		return styleWarn
	case vt.SeverityMalicious:
		return styleDanger
	default:
		return styleInfo
	}
}

func severityColor(s vt.Severity) lipgloss.Color {
	switch s {
	case vt.SeverityClean:
		return lipgloss.Color("10")
	case vt.SeveritySuspicious:
		return lipgloss.Color("11")
	case vt.SeverityMalicious:
		return lipgloss.Color("9")
	default:
		return lipgloss.Color("12")
	}
}
