package youtube

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sort"

	"robojobs/config"
	"robojobs/runlog"
)

// ErrNoUploadsPlaylist is returned when the authenticated channel has no
// uploads playlist
var ErrNoUploadsPlaylist = errors.New("channel has no uploads playlist")

// Stats are the public counters of one video
type Stats struct {
	VideoID  string `json:"video_id"`
	Title    string `json:"title"`
	Views    uint64 `json:"views"`
	Likes    uint64 `json:"likes"`
	Comments uint64 `json:"comments"`
}

// Patterns summarize what has worked on the channel
type Patterns struct {
	AnalyzedVideos int      `json:"analyzed_videos"`
	AverageViews   float64  `json:"avg_views"`
	BestTitles     []string `json:"best_performing_titles"`
}

// VideoStats fetches counters for one video
func (c *Client) VideoStats(ctx context.Context, videoID string) (Stats, error) {
	resp, err := c.svc.Videos.List([]string{"statistics", "snippet"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		return Stats{}, fmt.Errorf("failed to fetch video statistics: %w", err)
	}
	if len(resp.Items) == 0 {
		return Stats{}, fmt.Errorf("video %s not found", videoID)
	}

	item := resp.Items[0]
	stats := Stats{VideoID: item.Id}
	if item.Snippet != nil {
		stats.Title = item.Snippet.Title
	}
	if item.Statistics != nil {
		stats.Views = item.Statistics.ViewCount
		stats.Likes = item.Statistics.LikeCount
		stats.Comments = item.Statistics.CommentCount
	}
	return stats, nil
}

// ChannelVideos returns the IDs of the most recent uploads on the
// authenticated channel
func (c *Client) ChannelVideos(ctx context.Context, max int64) ([]string, error) {
	channels, err := c.svc.Channels.List([]string{"contentDetails"}).Mine(true).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch channel: %w", err)
	}
	if len(channels.Items) == 0 || channels.Items[0].ContentDetails == nil ||
		channels.Items[0].ContentDetails.RelatedPlaylists == nil ||
		channels.Items[0].ContentDetails.RelatedPlaylists.Uploads == "" {
		return nil, ErrNoUploadsPlaylist
	}
	uploads := channels.Items[0].ContentDetails.RelatedPlaylists.Uploads

	items, err := c.svc.PlaylistItems.List([]string{"contentDetails"}).
		PlaylistId(uploads).
		MaxResults(max).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch uploads: %w", err)
	}

	ids := make([]string, 0, len(items.Items))
	for _, item := range items.Items {
		if item.ContentDetails != nil && item.ContentDetails.VideoId != "" {
			ids = append(ids, item.ContentDetails.VideoId)
		}
	}
	return ids, nil
}

// AnalyzePatterns ranks recent uploads by views and saves the summary to
// youtube_patterns.json next to the upload history
func (c *Client) AnalyzePatterns(ctx context.Context) (Patterns, error) {
	c.journal.Think(runlog.CategoryAnalysis, "Analyzing channel performance patterns")

	ids, err := c.ChannelVideos(ctx, config.AnalyticsVideoLimit)
	if err != nil {
		return Patterns{}, err
	}

	var all []Stats
	for _, id := range ids {
		stats, err := c.VideoStats(ctx, id)
		if err != nil {
			log.Printf("⚠️ Skipping %s: %v", id, err)
			continue
		}
		all = append(all, stats)
	}

	patterns := summarize(all)
	if err := writeJSON(filepath.Join(filepath.Dir(c.historyPath), "youtube_patterns.json"), patterns); err != nil {
		return patterns, fmt.Errorf("save patterns: %w", err)
	}

	c.journal.Think(runlog.CategoryInsight,
		fmt.Sprintf("Analyzed %d videos, avg views: %.0f", patterns.AnalyzedVideos, patterns.AverageViews))
	return patterns, nil
}

func summarize(all []Stats) Patterns {
	p := Patterns{AnalyzedVideos: len(all), BestTitles: []string{}}
	if len(all) == 0 {
		return p
	}

	var total uint64
	for _, s := range all {
		total += s.Views
	}
	p.AverageViews = float64(total) / float64(len(all))

	sorted := append([]Stats(nil), all...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Views > sorted[j].Views })
	for i := 0; i < len(sorted) && i < 5; i++ {
		p.BestTitles = append(p.BestTitles, sorted[i].Title)
	}
	return p
}
