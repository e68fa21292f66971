package visuals

import (
	"context"
	"fmt"
	"log"
	"time"

	"robojobs/config"
	"robojobs/retry"
	"robojobs/runlog"
	"robojobs/types"
)

// Collector gathers stock footage, stock photos and AI images for a video
type Collector struct {
	providers []StockProvider
	ai        *Pollinations
	keywords  []string
	journal   runlog.Recorder
	policy    retry.Policy
	pause     time.Duration
}

// NewCollector creates a collector querying providers for the given visual keywords
func NewCollector(providers []StockProvider, ai *Pollinations, keywords []string, journal runlog.Recorder) *Collector {
	if journal == nil {
		journal = runlog.Nop{}
	}
	return &Collector{
		providers: providers,
		ai:        ai,
		keywords:  keywords,
		journal:   journal,
		policy:    retry.Policy{Attempts: config.SearchAttempts, Delay: config.SearchDelay},
		pause:     config.ProviderPause,
	}
}

// Collect returns up to target unique visuals: stock videos for the first
// keywords, stock photos for more, then AI images from the script's cues
func (c *Collector) Collect(ctx context.Context, topic, script string, target int) []types.Visual {
	log.Printf("🎬 Collecting visuals for: %s...", truncate(topic, 50))

	keywords := c.keywords
	if len(keywords) > config.StockPhotoQueries {
		keywords = keywords[:config.StockPhotoQueries]
	}

	var all []types.Visual
	for i, kw := range keywords {
		if i == config.StockVideoQueries {
			break
		}
		for _, p := range c.providers {
			all = append(all, c.search(ctx, p.Name()+" videos", kw, p.SearchVideos)...)
		}
		c.wait(ctx)
	}
	for _, kw := range keywords {
		for _, p := range c.providers {
			all = append(all, c.search(ctx, p.Name()+" photos", kw, p.SearchPhotos)...)
		}
		c.wait(ctx)
	}

	aiCount := max(config.MinAIImages, target-len(all))
	all = append(all, c.ai.FromScript(script, aiCount)...)

	final := Dedup(all)
	if len(final) > target {
		final = final[:target]
	}

	videos := 0
	for _, v := range final {
		if v.Kind == types.KindVideo {
			videos++
		}
	}
	log.Printf("✓ Collected %d visuals (%d videos, %d images)", len(final), videos, len(final)-videos)
	c.journal.Think(runlog.CategoryObservation, fmt.Sprintf("Collected %d visuals", len(final)))

	return final
}

// TopUp adds AI images until the collection reaches target, skipping any
// that are already present
func (c *Collector) TopUp(script string, visuals []types.Visual, target int) []types.Visual {
	if len(visuals) >= target {
		return visuals
	}
	extra := c.ai.FromScript(script, target-len(visuals))
	return Dedup(append(visuals, extra...))
}

type searchFunc func(ctx context.Context, query string, count int) ([]types.Visual, error)

func (c *Collector) search(ctx context.Context, name, query string, fn searchFunc) []types.Visual {
	policy := c.policy
	policy.Name = fmt.Sprintf("%s %q", name, query)
	return retry.DoWithFallback(ctx, policy, []types.Visual{}, func(ctx context.Context) ([]types.Visual, error) {
		return fn(ctx, query, config.StockResultsPerQuery)
	})
}

func (c *Collector) wait(ctx context.Context) {
	if c.pause <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(c.pause):
	}
}

// Dedup keeps the first visual for each identifier
func Dedup(visuals []types.Visual) []types.Visual {
	seen := make(map[string]bool, len(visuals))
	out := make([]types.Visual, 0, len(visuals))
	for _, v := range visuals {
		if seen[v.ID] {
			continue
		}
		seen[v.ID] = true
		out = append(out, v)
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
