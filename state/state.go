// Package state tracks the current pipeline run for the HTTP surface.
package state

import (
	"fmt"
	"sync"
	"time"
)

// State is the lifecycle of the service's single run slot
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateComplete State = "complete"
	StateError    State = "error"
)

// LogEntry represents a single log line with timestamp
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// Status is the JSON response for GET /api/status
type Status struct {
	State      State      `json:"state"`
	RunID      string     `json:"run_id,omitempty"`
	Topic      string     `json:"topic,omitempty"`
	ProjectID  string     `json:"project_id,omitempty"`
	Step       string     `json:"step,omitempty"`
	StepNumber int        `json:"step_number"`
	TotalSteps int        `json:"total_steps"`
	Output     string     `json:"output,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Logs       []LogEntry `json:"logs"`
	Error      string     `json:"error,omitempty"`
}

// Manager holds the run state with thread-safe access
type Manager struct {
	mu sync.RWMutex

	state      State
	runID      string
	topic      string
	projectID  string
	step       string
	stepNumber int
	totalSteps int
	output     string
	startedAt  time.Time
	finishedAt time.Time
	lastErr    error

	// ring buffer
	logs    []LogEntry
	maxLogs int

	now func() time.Time
}

// NewManager creates a new state manager keeping the last maxLogs entries
func NewManager(maxLogs int) *Manager {
	if maxLogs <= 0 {
		maxLogs = 50
	}
	return &Manager{
		state:   StateIdle,
		logs:    make([]LogEntry, 0),
		maxLogs: maxLogs,
		now:     time.Now,
	}
}

// TryStart claims the run slot. It returns false while another run is in
// progress.
func (m *Manager) TryStart(runID, topic string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateRunning {
		return false
	}

	m.state = StateRunning
	m.runID = runID
	m.topic = topic
	m.projectID = ""
	m.step = ""
	m.stepNumber = 0
	m.totalSteps = 0
	m.output = ""
	m.lastErr = nil
	m.startedAt = m.now()
	m.finishedAt = time.Time{}

	if topic == "" {
		topic = "auto-discover"
	}
	m.addLog(fmt.Sprintf("Run %s started (%s)", runID, topic))
	return true
}

// Busy reports whether a run holds the slot
func (m *Manager) Busy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateRunning
}

// GetState gets the current state (thread-safe)
func (m *Manager) GetState() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// StepStarted records pipeline progress
func (m *Manager) StepStarted(n, total int, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.step = name
	m.stepNumber = n
	m.totalSteps = total
	m.addLog(fmt.Sprintf("[%d/%d] %s", n, total, name))
}

// SetProject records the project ID once the run has one
func (m *Manager) SetProject(projectID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projectID = projectID
}

// Complete releases the slot after a successful run
func (m *Manager) Complete(output string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateComplete
	m.output = output
	m.finishedAt = m.now()
	m.addLog("Run complete")
}

// Fail releases the slot after a failed run
func (m *Manager) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateError
	m.lastErr = err
	m.finishedAt = m.now()
	m.addLog(fmt.Sprintf("Error: %v", err))
}

// AddLog adds a log entry (thread-safe)
func (m *Manager) AddLog(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addLog(message)
}

// addLog must be called with the lock held
func (m *Manager) addLog(message string) {
	m.logs = append(m.logs, LogEntry{Timestamp: m.now(), Message: message})
	if len(m.logs) > m.maxLogs {
		m.logs = m.logs[len(m.logs)-m.maxLogs:]
	}
}

// GetStatus returns a snapshot of the current state (thread-safe)
func (m *Manager) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Status{
		State:      m.state,
		RunID:      m.runID,
		Topic:      m.topic,
		ProjectID:  m.projectID,
		Step:       m.step,
		StepNumber: m.stepNumber,
		TotalSteps: m.totalSteps,
		Output:     m.output,
		Logs:       append([]LogEntry{}, m.logs...),
	}
	if !m.startedAt.IsZero() {
		t := m.startedAt
		s.StartedAt = &t
	}
	if !m.finishedAt.IsZero() {
		t := m.finishedAt
		s.FinishedAt = &t
	}
	if m.lastErr != nil {
		s.Error = m.lastErr.Error()
	}
	return s
}
