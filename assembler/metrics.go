package assembler

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// StepRecord is one completed assembly transition
type StepRecord struct {
	Step      int            `json:"step"`
	Name      string         `json:"name"`
	Timestamp string         `json:"timestamp"`
	DurationS float64        `json:"duration_s"`
	Details   map[string]any `json:"details"`
}

// ErrorRecord is a failure seen while assembling, fatal or not
type ErrorRecord struct {
	Type        string `json:"type"`
	Message     string `json:"message"`
	Timestamp   string `json:"timestamp"`
	Recoverable bool   `json:"recoverable"`
	Step        int    `json:"step"`
}

// Signal is a quality measurement compared against its target
type Signal struct {
	Value       float64 `json:"value"`
	Target      float64 `json:"target"`
	MeetsTarget bool    `json:"meets_target"`
}

// Metrics is the structured log of a single assembly, written once at the end
type Metrics struct {
	ProjectID      string            `json:"project_id"`
	StartedAt      string            `json:"started_at"`
	CompletedAt    string            `json:"completed_at,omitempty"`
	Steps          []StepRecord      `json:"steps"`
	Errors         []ErrorRecord     `json:"errors"`
	QualitySignals map[string]Signal `json:"quality_signals"`
	TotalDurationS float64           `json:"total_duration_s"`
	Success        bool              `json:"success"`
	TotalSteps     int               `json:"total_steps"`
	TotalErrors    int               `json:"total_errors"`

	dir   string
	start time.Time
	now   func() time.Time
}

func newMetrics(projectID, dir string, now func() time.Time) *Metrics {
	start := now()
	return &Metrics{
		ProjectID:      projectID,
		StartedAt:      start.Format(time.RFC3339),
		Steps:          []StepRecord{},
		Errors:         []ErrorRecord{},
		QualitySignals: map[string]Signal{},
		dir:            dir,
		start:          start,
		now:            now,
	}
}

// Step records a finished transition
func (m *Metrics) Step(name string, details map[string]any, took time.Duration) {
	m.Steps = append(m.Steps, StepRecord{
		Step:      len(m.Steps) + 1,
		Name:      name,
		Timestamp: m.now().Format(time.RFC3339),
		DurationS: took.Seconds(),
		Details:   details,
	})
	log.Printf("📊 Step %d: %s (%.2fs)", len(m.Steps), name, took.Seconds())
}

// Error records a failure at the current step
func (m *Metrics) Error(kind, message string, recoverable bool) {
	m.Errors = append(m.Errors, ErrorRecord{
		Type:        kind,
		Message:     message,
		Timestamp:   m.now().Format(time.RFC3339),
		Recoverable: recoverable,
		Step:        len(m.Steps),
	})
	log.Printf("❌ Error at step %d: %s - %s", len(m.Steps), kind, message)
}

// Signal records a quality measurement against its target
func (m *Metrics) Signal(name string, value, target float64) {
	m.QualitySignals[name] = Signal{Value: value, Target: target, MeetsTarget: value >= target}
}

// Finalize stamps the totals and writes assembly_<project>_<ts>.json
func (m *Metrics) Finalize(success bool) (string, error) {
	end := m.now()
	m.CompletedAt = end.Format(time.RFC3339)
	m.TotalDurationS = end.Sub(m.start).Seconds()
	m.Success = success
	m.TotalSteps = len(m.Steps)
	m.TotalErrors = len(m.Errors)

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", fmt.Errorf("create metrics dir: %w", err)
	}
	path := filepath.Join(m.dir, fmt.Sprintf("assembly_%s_%s.json", m.ProjectID, end.Format("20060102_150405")))
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal metrics: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write metrics: %w", err)
	}
	log.Printf("📈 Assembly metrics saved: %s", filepath.Base(path))
	return path, nil
}
