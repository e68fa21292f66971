package watch

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"robojobs/state"
)

func TestStatusUpdate(t *testing.T) {
	m := NewModel("http://unused")

	next, _ := m.Update(StatusUpdateMsg{Status: &state.Status{
		State:      state.StateRunning,
		Step:       "Visual Sourcing",
		StepNumber: 3,
		TotalSteps: 8,
		Logs:       []state.LogEntry{{Timestamp: time.Now(), Message: "[3/8] Visual Sourcing"}},
	}})
	m = next.(Model)

	if !m.Connected {
		t.Fatal("expected connected")
	}
	view := m.View()
	for _, want := range []string{"[3/8] Visual Sourcing", "Press 'q'"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "'r' to run") {
		t.Error("run hint shown while running")
	}
}

func TestStatusError(t *testing.T) {
	m := NewModel("http://unused")
	next, _ := m.Update(StatusUpdateMsg{Err: errors.New("connection refused")})
	m = next.(Model)

	if m.Connected {
		t.Fatal("expected disconnected")
	}
	if !strings.Contains(m.View(), "connection refused") {
		t.Errorf("view = %s", m.View())
	}
}

func TestRunKeyOnlyWhenIdle(t *testing.T) {
	m := NewModel("http://unused")
	m.Connected = true
	m.Status.State = state.StateRunning

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")}); cmd != nil {
		t.Error("run requested while busy")
	}

	m.Status.State = state.StateComplete
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	if cmd == nil {
		t.Fatal("expected a run command")
	}
	if got := next.(Model).Notice; got != "Requesting test run..." {
		t.Errorf("notice = %q", got)
	}
}

func TestCompleteSummary(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(95 * time.Second)
	m := NewModel("http://unused")
	m.Connected = true
	m.Status = state.Status{
		State:      state.StateComplete,
		Topic:      "Solid-state batteries",
		ProjectID:  "video_20260301_090000",
		Output:     "output/video_20260301_090000.mp4",
		StartedAt:  &start,
		FinishedAt: &end,
	}

	view := m.View()
	for _, want := range []string{"COMPLETE", "Solid-state batteries", "video_20260301_090000.mp4", "1m35s"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestStateStyle(t *testing.T) {
	tests := []struct {
		state state.State
		color string
	}{
		{state.StateIdle, colorIdle},
		{state.StateRunning, colorRunning},
		{state.StateComplete, colorComplete},
		{state.StateError, colorFailed},
		{state.State("paused"), colorIdle},
	}
	for _, tt := range tests {
		if got := stateStyle(tt.state).GetForeground(); got != lipgloss.Color(tt.color) {
			t.Errorf("stateStyle(%q) foreground = %v, want %s", tt.state, got, tt.color)
		}
	}
}

func TestProgressBar(t *testing.T) {
	if got := progressBar(4, 8, 10); got != "[█████░░░░░]" {
		t.Errorf("progressBar = %q", got)
	}
	if got := progressBar(1, 0, 10); got != "" {
		t.Errorf("zero total = %q", got)
	}
}

func TestClient(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/status":
			json.NewEncoder(w).Encode(state.Status{State: state.StateIdle, TotalSteps: 8})
		case "/api/runs":
			json.NewDecoder(r.Body).Decode(&body)
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"error":"busy"}`))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	status, err := c.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.State != state.StateIdle || status.TotalSteps != 8 {
		t.Errorf("status = %+v", status)
	}

	err = c.StartRun("", true)
	if err == nil || !strings.Contains(err.Error(), "409") {
		t.Errorf("StartRun err = %v", err)
	}
	if body["test"] != true {
		t.Errorf("body = %v", body)
	}
}
