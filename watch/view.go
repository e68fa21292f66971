package watch

import (
	"strings"

	"robojobs/state"
)

// View implements tea.Model
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render("🤖 Robojobs"))
	b.WriteString("\n\n")

	b.WriteString(m.stateText())
	b.WriteString("\n\n")

	if m.Notice != "" {
		b.WriteString(HintStyle.Render(m.Notice))
		b.WriteString("\n\n")
	}

	if len(m.Status.Logs) > 0 {
		b.WriteString(LabelStyle.Render("📝 Recent Activity"))
		b.WriteString("\n")
		for _, entry := range m.Status.Logs {
			line := entry.Timestamp.Format("15:04:05") + "  " + entry.Message
			b.WriteString(LogStyle.Render("   " + line))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.Connected && (m.Status.State == state.StateComplete || m.Status.State == state.StateError) {
		b.WriteString(SummaryStyle.Render(m.summary()))
		b.WriteString("\n\n")
	}

	if m.canStart() {
		b.WriteString(HintStyle.Render("Press 'r' to run | 't' for a test run | 'q' to quit"))
	} else {
		b.WriteString(HintStyle.Render("Press 'q' or Ctrl+C to quit"))
	}

	return b.String()
}
