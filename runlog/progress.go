package runlog

import (
	"fmt"
	"log"
	"time"
)

// Progress prints numbered pipeline steps
type Progress struct {
	total   int
	current int
	started time.Time
}

// NewProgress creates a tracker for total steps
func NewProgress(total int) *Progress {
	return &Progress{total: total, started: time.Now()}
}

// Step advances the tracker and returns the rendered progress line
func (p *Progress) Step(message string) string {
	p.current++
	pct := p.current * 100 / p.total
	line := fmt.Sprintf("[%d/%d] (%d%%) %s", p.current, p.total, pct, message)
	log.Print(line)
	return line
}

// Complete logs the elapsed time since the tracker was created
func (p *Progress) Complete() time.Duration {
	elapsed := time.Since(p.started)
	log.Printf("✅ Pipeline complete in %.1fs", elapsed.Seconds())
	return elapsed
}
