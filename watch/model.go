// Package watch is a terminal dashboard that follows a running robojobs server.
package watch

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"robojobs/state"
)

// Model is the dashboard state, synced from GET /api/status
type Model struct {
	Client *Client

	Status    state.Status
	Connected bool
	Err       error
	Notice    string
}

// NewModel creates a dashboard polling the server at baseURL
func NewModel(baseURL string) Model {
	return Model{
		Client: NewClient(baseURL),
		Status: state.Status{State: state.StateIdle},
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		pollStatus(m.Client),
		tickCmd(),
	)
}

func (m Model) stateText() string {
	if !m.Connected {
		msg := "❌ Not connected to server"
		if m.Err != nil {
			msg += ": " + m.Err.Error()
		}
		return FailedStyle.Render(msg)
	}

	s := m.Status
	style := stateStyle(s.State)
	switch s.State {
	case state.StateIdle:
		return style.Render("👋 Idle") + "\n\n" +
			HintStyle.Render("Press 'r' to start a run or 't' for a test run")
	case state.StateRunning:
		if s.Step == "" {
			return style.Render("⏳ Starting run...")
		}
		return style.Render(fmt.Sprintf("⏳ [%d/%d] %s", s.StepNumber, s.TotalSteps, s.Step)) +
			"\n" + ProgressStyle.Render(progressBar(s.StepNumber, s.TotalSteps, 30))
	case state.StateComplete:
		return style.Render("✅ COMPLETE")
	case state.StateError:
		return style.Render("❌ Error: " + s.Error)
	default:
		return ""
	}
}

func (m Model) summary() string {
	s := m.Status
	var b strings.Builder

	b.WriteString(LabelStyle.Render("Last Run"))
	b.WriteString("\n\n")
	if s.Topic != "" {
		b.WriteString(fmt.Sprintf("Topic: %s\n", s.Topic))
	}
	if s.ProjectID != "" {
		b.WriteString(fmt.Sprintf("Project: %s\n", s.ProjectID))
	}
	if s.Output != "" {
		b.WriteString(fmt.Sprintf("Output: %s\n", CompleteStyle.Render(s.Output)))
	}
	if s.StartedAt != nil && s.FinishedAt != nil {
		b.WriteString(fmt.Sprintf("Elapsed: %s\n", s.FinishedAt.Sub(*s.StartedAt).Round(time.Second)))
	}
	return b.String()
}

func progressBar(n, total, width int) string {
	if total <= 0 {
		return ""
	}
	n = min(max(n, 0), total)
	filled := n * width / total
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}
