package topics

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"robojobs/config"
	"robojobs/types"
)

// publisherSuffix matches the " - Publisher" tail Google News appends to titles
var publisherSuffix = regexp.MustCompile(`\s*[-–—]\s*[A-Za-z\s]+$`)

// GoogleNews reads one Google News RSS search feed
type GoogleNews struct {
	feedURL string
	parser  *gofeed.Parser
}

// NewGoogleNews creates a source for a single RSS feed URL
func NewGoogleNews(feedURL string) *GoogleNews {
	return &GoogleNews{feedURL: feedURL, parser: gofeed.NewParser()}
}

func (g *GoogleNews) Name() string { return "google_news " + truncate(g.feedURL, 50) }

// Fetch parses the feed and normalizes the first entries into topics
func (g *GoogleNews) Fetch(ctx context.Context) ([]types.Topic, error) {
	log.Printf("📰 Fetching Google News: %s...", truncate(g.feedURL, 50))

	feed, err := g.parser.ParseURLWithContext(g.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	count := min(len(feed.Items), config.FeedEntriesPerSource)
	topics := make([]types.Topic, 0, count)
	for _, item := range feed.Items[:count] {
		idSource := item.Link
		if idSource == "" {
			idSource = item.Title
		}

		published := item.Published
		if item.PublishedParsed != nil {
			published = item.PublishedParsed.Format(time.RFC3339)
		}

		summary := item.Description
		if summary == "" {
			summary = item.Content
		}

		topics = append(topics, types.Topic{
			ID:        types.GenerateID(idSource),
			Title:     CleanTitle(item.Title),
			Source:    types.SourceGoogleNews,
			URL:       item.Link,
			Published: published,
			Keywords:  []string{},
			Summary:   truncate(stripHTML(summary), config.SummaryMaxChars),
			FetchedAt: time.Now(),
		})
	}

	log.Printf("Found %d topics from Google News", len(topics))
	return topics, nil
}

// CleanTitle removes the trailing publisher name from a news headline
func CleanTitle(title string) string {
	return strings.TrimSpace(publisherSuffix.ReplaceAllString(title, ""))
}

func stripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
