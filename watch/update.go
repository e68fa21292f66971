package watch

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"robojobs/state"
)

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case TickMsg:
		return m, tea.Batch(pollStatus(m.Client), tickCmd())
	case StatusUpdateMsg:
		return m.handleStatus(msg), nil
	case RunStartedMsg:
		return m.handleRunStarted(msg)
	}
	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "r", "R":
		if m.canStart() {
			m.Notice = "Requesting run..."
			return m, startRun(m.Client, false)
		}
	case "t", "T":
		if m.canStart() {
			m.Notice = "Requesting test run..."
			return m, startRun(m.Client, true)
		}
	}
	return m, nil
}

func (m Model) canStart() bool {
	return m.Connected && m.Status.State != state.StateRunning
}

func (m Model) handleStatus(msg StatusUpdateMsg) Model {
	if msg.Err != nil {
		m.Connected = false
		m.Err = msg.Err
		return m
	}
	m.Connected = true
	m.Err = nil
	if msg.Status != nil {
		m.Status = *msg.Status
	}
	return m
}

func (m Model) handleRunStarted(msg RunStartedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.Notice = fmt.Sprintf("Run not started: %v", msg.Err)
		return m, nil
	}
	m.Notice = "Run started"
	return m, pollStatus(m.Client)
}
