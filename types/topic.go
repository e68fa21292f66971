package types

import (
	"strings"
	"time"
)

// Source tags for topics
const (
	SourceGoogleNews = "google_news"
	SourceReddit     = "reddit"
	SourceManual     = "manual"
)

// ManualTopicScore is the fixed score given to a topic supplied by hand
const ManualTopicScore = 100

// Topic represents a candidate news or discussion item scored for relevance
type Topic struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Source     string    `json:"source"`
	URL        string    `json:"url"`
	Published  string    `json:"published"`
	Score      float64   `json:"score"`
	Keywords   []string  `json:"keywords"`
	Summary    string    `json:"summary,omitempty"`
	Engagement int       `json:"engagement,omitempty"`
	Content    string    `json:"content,omitempty"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// ManualTopic wraps a hand-written title as a synthetic, maximally scored topic
func ManualTopic(title string) Topic {
	keywords := strings.Fields(strings.ToLower(title))
	if len(keywords) > 5 {
		keywords = keywords[:5]
	}

	now := time.Now()
	return Topic{
		ID:        GenerateID(title),
		Title:     title,
		Source:    SourceManual,
		Published: now.Format(time.RFC3339),
		Score:     ManualTopicScore,
		Keywords:  keywords,
		FetchedAt: now,
	}
}
