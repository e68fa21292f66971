package runlog

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"
)

// QualityMetrics summarizes how close a run came to the channel's targets
type QualityMetrics struct {
	CreatedAt         string  `json:"created_at"`
	Topic             string  `json:"topic"`
	ScriptWords       int     `json:"script_words"`
	EstimatedDuration int     `json:"estimated_duration"`
	VisualsCount      int     `json:"visuals_count"`
	AudioDuration     float64 `json:"audio_duration"`
	RiskScore         int     `json:"risk_score"`
	ViralScore        int     `json:"viral_score"`
	RetentionEstimate int     `json:"retention_estimate"`
}

// NewQualityMetrics starts an empty metrics record
func NewQualityMetrics() *QualityMetrics {
	return &QualityMetrics{CreatedAt: time.Now().Format(time.RFC3339)}
}

// Calculate derives the risk, viral and retention scores from the raw counts
func (q *QualityMetrics) Calculate() {
	q.RiskScore = 10

	viral := 0
	if q.EstimatedDuration >= 840 && q.EstimatedDuration <= 1200 {
		viral += 30
	}
	if q.ScriptWords >= 2000 && q.ScriptWords <= 2700 {
		viral += 20
	}
	if q.VisualsCount >= 10 {
		viral += 20
	}
	q.ViralScore = viral

	q.RetentionEstimate = min(70, 40+q.ScriptWords/100)
}

// Save calculates the scores and writes the record as JSON
func (q *QualityMetrics) Save(path string) error {
	q.Calculate()

	data, err := json.MarshalIndent(q, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal quality metrics: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write quality metrics: %w", err)
	}

	log.Printf("📊 Quality: viral=%d retention=%d risk=%d", q.ViralScore, q.RetentionEstimate, q.RiskScore)
	return nil
}
