package timertui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/amonks/pomo/timer"
)

var (
	modeColors = map[timer.Mode]lipgloss.Color{
		timer.ModeWork:       lipgloss.Color("203"),
		timer.ModeShortBreak: lipgloss.Color("78"),
		timer.ModeLongBreak:  lipgloss.Color("75"),
	}

	clockStyle   = lipgloss.NewStyle().Bold(true).Padding(1, 0)
	labelStyle   = lipgloss.NewStyle().Bold(true)
	valueMuted   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	overrunStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	frameStyle   = lipgloss.NewStyle().Padding(1, 2)
)

func modeStyle(mode timer.Mode) lipgloss.Style {
	return labelStyle.Foreground(modeColors[mode])
}
