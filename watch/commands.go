package watch

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"robojobs/state"
)

// StatusUpdateMsg carries the result of one status poll
type StatusUpdateMsg struct {
	Status *state.Status
	Err    error
}

// TickMsg triggers the next poll
type TickMsg struct {
	Time time.Time
}

// RunStartedMsg reports the result of a run request
type RunStartedMsg struct {
	Err error
}

const pollInterval = time.Second

func pollStatus(client *Client) tea.Cmd {
	return func() tea.Msg {
		status, err := client.GetStatus()
		return StatusUpdateMsg{Status: status, Err: err}
	}
}

func startRun(client *Client, test bool) tea.Cmd {
	return func() tea.Msg {
		return RunStartedMsg{Err: client.StartRun("", test)}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}
