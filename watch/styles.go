package watch

import (
	"github.com/charmbracelet/lipgloss"

	"robojobs/state"
)

// Run-state palette
const (
	colorBrand    = "#E8453C"
	colorIdle     = "#8A8F98"
	colorRunning  = "#F5A623"
	colorComplete = "#3FB950"
	colorFailed   = "#F85149"
	colorMuted    = "#6E7681"
	colorPanel    = "#30363D"
)

var (
	HeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colorBrand)).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(lipgloss.Color(colorPanel)).
		MarginTop(1)

	IdleStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorIdle))

	RunningStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colorRunning))

	CompleteStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colorComplete))

	FailedStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colorFailed))

	// ProgressStyle colors the step bar under a running state
	ProgressStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorRunning))

	LogStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorMuted))

	HintStyle = lipgloss.NewStyle().
		Italic(true).
		Foreground(lipgloss.Color(colorMuted))

	SummaryStyle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(lipgloss.Color(colorPanel)).
		PaddingLeft(2)

	LabelStyle = lipgloss.NewStyle().
		Bold(true).
		Underline(true)
)

// stateStyle picks the style for a run state; unknown states render idle
func stateStyle(s state.State) lipgloss.Style {
	switch s {
	case state.StateRunning:
		return RunningStyle
	case state.StateComplete:
		return CompleteStyle
	case state.StateError:
		return FailedStyle
	default:
		return IdleStyle
	}
}
