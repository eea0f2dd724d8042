// Package tui renders triage sessions and the statistics dashboard in
// the terminal.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/pesio-ai/be-tbc-triage/internal/result"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().Bold(true)

	barStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

var toneColors = map[result.Tone]lipgloss.Color{
	result.ToneInfo:    lipgloss.Color("39"),
	result.ToneSuccess: lipgloss.Color("42"),
	result.ToneWarning: lipgloss.Color("214"),
	result.ToneDanger:  lipgloss.Color("196"),
}

// CardStyle is the bordered box a result of tone t is drawn in
func CardStyle(t result.Tone) lipgloss.Style {
	color, ok := toneColors[t]
	if !ok {
		color = toneColors[result.ToneInfo]
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1).
		Width(72)
}
