// Package topics discovers and ranks news and discussion items worth a video.
package topics

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"robojobs/config"
	"robojobs/retry"
	"robojobs/runlog"
	"robojobs/types"
)

// Scoring weights
const (
	keywordWeight   = 20
	highValueWeight = 15
	viralWeight     = 5
	yearWeight      = 10
	maxEngagement   = 20
)

var (
	highValueTerms = []string{"layoff", "unemploy", "job loss", "replace", "automat", "robot"}
	viralTerms     = []string{"breaking", "shock", "warn", "crisis", "fear", "million"}
	targetYears    = []string{"2026", "2025"}
)

// Source fetches raw, unscored topics
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]types.Topic, error)
}

// Ranker fetches candidates from every source, scores, deduplicates and ranks them
type Ranker struct {
	sources  []Source
	keywords []string
	seen     SeenStore
	journal  runlog.Recorder
	policy   retry.Policy
	now      func() time.Time
}

// Option customizes a Ranker
type Option func(*Ranker)

// WithSeenStore skips topics already produced
func WithSeenStore(s SeenStore) Option {
	return func(r *Ranker) { r.seen = s }
}

// WithRecorder sends ranking notes to the run journal
func WithRecorder(rec runlog.Recorder) Option {
	return func(r *Ranker) { r.journal = rec }
}

// WithRetryPolicy overrides the per-source retry policy
func WithRetryPolicy(p retry.Policy) Option {
	return func(r *Ranker) { r.policy = p }
}

// WithClock overrides the time used for recency scoring
func WithClock(now func() time.Time) Option {
	return func(r *Ranker) { r.now = now }
}

// NewRanker creates a ranker over the given sources and relevance keywords
func NewRanker(sources []Source, keywords []string, opts ...Option) *Ranker {
	r := &Ranker{
		sources:  sources,
		keywords: keywords,
		journal:  runlog.Nop{},
		policy:   retry.Policy{Attempts: config.SourceAttempts, Delay: config.SourceDelay},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Discover returns up to limit topics, highest score first. A failing source
// contributes nothing; if every source fails the result is empty.
func (r *Ranker) Discover(ctx context.Context, limit int) []types.Topic {
	log.Printf("🔍 Starting topic discovery across %d sources...", len(r.sources))

	var all []types.Topic
	for _, src := range r.sources {
		policy := r.policy
		policy.Name = "fetch " + src.Name()
		fetched := retry.DoWithFallback(ctx, policy, []types.Topic(nil), src.Fetch)
		if fetched == nil {
			r.journal.Think(runlog.CategoryObservation, fmt.Sprintf("Source %s returned nothing", src.Name()))
		}
		all = append(all, fetched...)
	}

	now := r.now()
	for i := range all {
		all[i].Score, all[i].Keywords = Score(all[i], r.keywords, now)
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].Score > all[j].Score })
	ranked := r.dropSeen(ctx, Dedup(all))
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	log.Printf("✓ Discovered %d relevant topics", len(ranked))
	for i, t := range ranked {
		if i == 5 {
			break
		}
		log.Printf("  %d. [%.0f] %s", i+1, t.Score, truncate(t.Title, 60))
	}
	r.journal.Think(runlog.CategoryObservation, fmt.Sprintf("Ranked %d topics from %d candidates", len(ranked), len(all)))

	return ranked
}

// Best returns the single highest ranked topic, or false when there is none
func (r *Ranker) Best(ctx context.Context) (types.Topic, bool) {
	ranked := r.Discover(ctx, 1)
	if len(ranked) == 0 {
		return types.Topic{}, false
	}
	return ranked[0], true
}

func (r *Ranker) dropSeen(ctx context.Context, topics []types.Topic) []types.Topic {
	if r.seen == nil {
		return topics
	}
	out := topics[:0:0]
	for _, t := range topics {
		seen, err := r.seen.Seen(ctx, t.ID)
		if err != nil {
			log.Printf("⚠️  Seen-topic lookup failed for %s: %v", t.ID, err)
		}
		if seen {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Score computes a topic's relevance and the configured keywords it matched
func Score(t types.Topic, keywords []string, now time.Time) (float64, []string) {
	text := strings.ToLower(t.Title + " " + t.Summary)
	score := 0.0

	matched := []string{}
	for _, kw := range keywords {
		if matchesKeyword(text, kw) {
			score += keywordWeight
			matched = append(matched, kw)
		}
	}

	for _, term := range highValueTerms {
		if strings.Contains(text, term) {
			score += highValueWeight
		}
	}
	for _, term := range viralTerms {
		if strings.Contains(text, term) {
			score += viralWeight
		}
	}
	for _, year := range targetYears {
		if strings.Contains(text, year) {
			score += yearWeight
			break
		}
	}

	if strings.HasPrefix(t.Source, types.SourceReddit) {
		score += min(float64(t.Engagement)/100, maxEngagement)
	}

	score += recencyBonus(t.Published, now)
	return score, matched
}

// matchesKeyword accepts the full phrase or every one of its words
func matchesKeyword(text, keyword string) bool {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return false
	}
	if strings.Contains(text, keyword) {
		return true
	}
	for _, word := range strings.Fields(keyword) {
		if !strings.Contains(text, word) {
			return false
		}
	}
	return true
}

func recencyBonus(published string, now time.Time) float64 {
	if published == "" {
		return 0
	}
	pub, err := dateparse.ParseAny(published)
	if err != nil {
		return 0
	}

	days := int(now.Sub(pub).Hours() / 24)
	switch {
	case days <= 1:
		return 30
	case days <= 3:
		return 15
	case days <= 7:
		return 5
	}
	return 0
}

// Dedup keeps the first topic for each 50-character lowercased title prefix
func Dedup(topics []types.Topic) []types.Topic {
	seen := make(map[string]bool, len(topics))
	out := make([]types.Topic, 0, len(topics))
	for _, t := range topics {
		key := truncate(strings.ToLower(t.Title), config.DedupPrefixChars)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
