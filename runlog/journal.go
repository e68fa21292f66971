// Package runlog records what a pipeline run thought, decided and learned.
package runlog

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Thought categories
const (
	CategoryAnalysis    = "analysis"
	CategoryDecision    = "decision"
	CategoryObservation = "observation"
	CategoryError       = "error"
	CategoryInsight     = "insight"
)

const defaultConfidence = 0.8

// Recorder is what pipeline components use to leave a trail in the run journal
type Recorder interface {
	Think(category, content string, evidence ...string)
	Decide(decision, reasoning string)
}

// Nop discards everything. Components fall back to it when no journal is wired.
type Nop struct{}

func (Nop) Think(string, string, ...string) {}
func (Nop) Decide(string, string)           {}

// Thought is one reasoning step
type Thought struct {
	Timestamp  string   `json:"timestamp"`
	Category   string   `json:"category"`
	Content    string   `json:"content"`
	Confidence float64  `json:"confidence"`
	Evidence   []string `json:"evidence"`
}

// Decision is a choice made during the run with the reason for it
type Decision struct {
	Decision   string  `json:"decision"`
	Reasoning  string  `json:"reasoning"`
	Confidence float64 `json:"confidence"`
	Timestamp  string  `json:"timestamp"`
}

// Chain is the complete journal of one task
type Chain struct {
	TaskID    string     `json:"task_id"`
	Goal      string     `json:"goal"`
	StartedAt string     `json:"started_at"`
	Thoughts  []Thought  `json:"thoughts"`
	Decisions []Decision `json:"decisions_made"`
	Patterns  []string   `json:"patterns_recognized"`
	Lessons   []string   `json:"lessons_learned"`
	Outcome   string     `json:"outcome"`
	Success   bool       `json:"success"`
}

// Pattern is knowledge carried from one run to the next
type Pattern struct {
	Description    string   `json:"description"`
	Keywords       []string `json:"keywords"`
	Decisions      []string `json:"successful_decisions,omitempty"`
	Insights       []string `json:"insights,omitempty"`
	FailureContext string   `json:"failure_context,omitempty"`
	ErrorDetails   []string `json:"error_details,omitempty"`
	Timestamp      string   `json:"timestamp"`
	SuccessCount   int      `json:"success_count,omitempty"`
}

// Journal collects the chain for the current task and persists learned
// patterns under dir
type Journal struct {
	mu       sync.Mutex
	dir      string
	verbose  bool
	chain    *Chain
	patterns map[string]Pattern
	now      func() time.Time
}

// NewJournal opens the knowledge directory and loads previously learned patterns
func NewJournal(dir string, verbose bool) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create knowledge dir: %w", err)
	}

	j := &Journal{
		dir:      dir,
		verbose:  verbose,
		patterns: make(map[string]Pattern),
		now:      time.Now,
	}

	data, err := os.ReadFile(j.patternsPath())
	if err == nil {
		if err := json.Unmarshal(data, &j.patterns); err != nil {
			log.Printf("⚠️  Ignoring unreadable patterns file: %v", err)
			j.patterns = make(map[string]Pattern)
		} else {
			log.Printf("📚 Loaded %d learned patterns", len(j.patterns))
		}
	}

	return j, nil
}

func (j *Journal) patternsPath() string {
	return filepath.Join(j.dir, "patterns.json")
}

func (j *Journal) stamp() string {
	return j.now().Format(time.RFC3339)
}

// Begin starts a new chain for the task and reports relevant patterns
func (j *Journal) Begin(taskID, goal string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.begin(taskID, goal)
}

func (j *Journal) begin(taskID, goal string) {
	j.chain = &Chain{TaskID: taskID, Goal: goal, StartedAt: j.stamp()}
	j.think(CategoryAnalysis, "Beginning task: "+goal, "Pipeline initialized")

	if relevant := j.relevantPatterns(goal); len(relevant) > 0 {
		if len(relevant) > 3 {
			relevant = relevant[:3]
		}
		j.think(CategoryInsight, fmt.Sprintf("Found %d relevant patterns from previous executions", len(relevant)), relevant...)
	}

	log.Printf("🧠 Journal started: %s", truncate(goal, 50))
}

// Think appends a thought to the current chain, starting an untracked chain
// when none is open
func (j *Journal) Think(category, content string, evidence ...string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.chain == nil {
		j.begin("unknown", "Untracked run")
	}
	j.think(category, content, evidence...)
}

func (j *Journal) think(category, content string, evidence ...string) {
	confidence := defaultConfidence
	if category == CategoryError {
		confidence = 0.3
	}
	j.chain.Thoughts = append(j.chain.Thoughts, Thought{
		Timestamp:  j.stamp(),
		Category:   category,
		Content:    content,
		Confidence: confidence,
		Evidence:   append([]string{}, evidence...),
	})
	if j.verbose {
		log.Printf("💭 [%s] %s", strings.ToUpper(category), content)
	}
}

// Decide records a decision on the current chain
func (j *Journal) Decide(decision, reasoning string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.chain == nil {
		return
	}
	j.chain.Decisions = append(j.chain.Decisions, Decision{
		Decision:   decision,
		Reasoning:  reasoning,
		Confidence: defaultConfidence,
		Timestamp:  j.stamp(),
	})
	log.Printf("🎯 Decision: %s", decision)
}

// Pattern records a recognized pattern on the current chain
func (j *Journal) Pattern(pattern string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.chain == nil {
		return
	}
	j.chain.Patterns = append(j.chain.Patterns, pattern)
	log.Printf("🔍 Pattern: %s", pattern)
}

// Lesson records a lesson on the current chain
func (j *Journal) Lesson(lesson string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.chain == nil {
		return
	}
	j.lesson(lesson)
}

func (j *Journal) lesson(lesson string) {
	j.chain.Lessons = append(j.chain.Lessons, lesson)
	log.Printf("📚 Lesson: %s", lesson)
}

// End closes the current chain, extracts patterns and writes both the chain
// and the pattern store to disk
func (j *Journal) End(success bool, outcome string) (*Chain, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.chain == nil {
		return nil, nil
	}

	chain := j.chain
	chain.Success = success
	chain.Outcome = outcome

	if success {
		j.extractSuccess()
	} else {
		j.extractFailure()
	}
	j.chain = nil

	name := fmt.Sprintf("chain_%s_%s.json", chain.TaskID, j.now().Format("20060102_150405"))
	if err := writeJSON(filepath.Join(j.dir, name), chain); err != nil {
		return chain, fmt.Errorf("save chain: %w", err)
	}
	if err := writeJSON(j.patternsPath(), j.patterns); err != nil {
		return chain, fmt.Errorf("save patterns: %w", err)
	}

	status := "✅ Success"
	if !success {
		status = "❌ Failed"
	}
	log.Printf("🧠 Journal complete: %s", status)
	return chain, nil
}

// Patterns returns a copy of the learned pattern store
func (j *Journal) Patterns() map[string]Pattern {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make(map[string]Pattern, len(j.patterns))
	for k, v := range j.patterns {
		out[k] = v
	}
	return out
}

func (j *Journal) relevantPatterns(goal string) []string {
	goal = strings.ToLower(goal)
	var relevant []string
	for key, p := range j.patterns {
		for _, kw := range p.Keywords {
			if kw != "" && strings.Contains(goal, kw) {
				desc := p.Description
				if desc == "" {
					desc = key
				}
				relevant = append(relevant, desc)
				break
			}
		}
	}
	return relevant
}

func (j *Journal) extractSuccess() {
	key := shortHash(j.chain.Goal)

	decisions := make([]string, 0, len(j.chain.Decisions))
	for _, d := range j.chain.Decisions {
		decisions = append(decisions, d.Decision)
	}
	var insights []string
	for _, t := range j.chain.Thoughts {
		if t.Category == CategoryInsight {
			insights = append(insights, t.Content)
		}
	}

	keywords := strings.Fields(strings.ToLower(j.chain.Goal))
	if len(keywords) > 5 {
		keywords = keywords[:5]
	}

	j.patterns[key] = Pattern{
		Description:  "Successful: " + truncate(j.chain.Goal, 50),
		Keywords:     keywords,
		Decisions:    decisions,
		Insights:     insights,
		Timestamp:    j.stamp(),
		SuccessCount: j.patterns[key].SuccessCount + 1,
	}
	j.lesson("Pattern stored: " + key)
}

func (j *Journal) extractFailure() {
	var errs []string
	for _, t := range j.chain.Thoughts {
		if t.Category == CategoryError {
			errs = append(errs, t.Content)
		}
	}
	if len(errs) == 0 {
		return
	}

	words := strings.Fields(strings.ToLower(errs[0]))
	if len(words) > 3 {
		words = words[:3]
	}

	j.patterns["avoid_"+shortHash(errs[0])] = Pattern{
		Description:    "Avoid: " + truncate(errs[0], 50),
		Keywords:       append([]string{"error", "fail"}, words...),
		FailureContext: j.chain.Goal,
		ErrorDetails:   errs,
		Timestamp:      j.stamp(),
	}
}

func shortHash(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])[:8]
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
