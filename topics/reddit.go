package topics

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/vartanbeno/go-reddit/v2/reddit"

	"robojobs/config"
	"robojobs/types"
)

// Reddit reads the newest posts of one subreddit without authentication
type Reddit struct {
	client    *reddit.Client
	subreddit string
	now       func() time.Time
}

// NewReddit creates a read-only source for a subreddit. baseURL may be empty
// to use reddit.com.
func NewReddit(subreddit, baseURL string) (*Reddit, error) {
	opts := []reddit.Opt{reddit.WithUserAgent("robojobs/1.0 (topic discovery)")}
	if baseURL != "" {
		opts = append(opts, reddit.WithBaseURL(baseURL))
	}

	client, err := reddit.NewReadonlyClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create reddit client: %w", err)
	}
	return &Reddit{client: client, subreddit: subreddit, now: time.Now}, nil
}

func (r *Reddit) Name() string { return "reddit r/" + r.subreddit }

// Fetch returns posts from the last week, keeping the post score as engagement
func (r *Reddit) Fetch(ctx context.Context) ([]types.Topic, error) {
	log.Printf("👽 Fetching Reddit r/%s...", r.subreddit)

	posts, _, err := r.client.Subreddit.NewPosts(ctx, r.subreddit, &reddit.ListOptions{Limit: config.RedditPostsPerSub})
	if err != nil {
		return nil, fmt.Errorf("reddit fetch failed for r/%s: %w", r.subreddit, err)
	}

	now := r.now()
	topics := make([]types.Topic, 0, len(posts))
	for i, post := range posts {
		if i == config.RedditPostsPerSub {
			break
		}
		var created time.Time
		if post.Created != nil {
			created = post.Created.Time
		}
		if now.Sub(created) > config.RedditMaxAge {
			continue
		}

		topics = append(topics, types.Topic{
			ID:         types.GenerateID(post.ID),
			Title:      post.Title,
			Source:     types.SourceReddit + "_r/" + r.subreddit,
			URL:        "https://reddit.com" + post.Permalink,
			Published:  created.Format(time.RFC3339),
			Keywords:   []string{},
			Summary:    truncate(post.Body, config.SummaryMaxChars),
			Engagement: post.Score,
			FetchedAt:  now,
		})
	}

	log.Printf("Found %d topics from r/%s", len(topics), r.subreddit)
	return topics, nil
}
