package youtube

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"robojobs/config"
	"robojobs/metadata"
)

// UploadFromOutput finds the newest rendered video and metadata file for
// projectID in outputDir and uploads it
func (c *Client) UploadFromOutput(ctx context.Context, outputDir, projectID string, public bool) (string, error) {
	videoPath, err := newest(filepath.Join(outputDir, projectID+"*.mp4"))
	if err != nil {
		return "", err
	}
	metaPath, err := newest(filepath.Join(outputDir, projectID+"*_metadata.json"))
	if err != nil {
		return "", err
	}

	meta, err := metadata.Load(metaPath)
	if err != nil {
		return "", fmt.Errorf("load metadata: %w", err)
	}

	privacy := config.YouTubePrivacyStatus
	if public {
		privacy = "public"
	}

	title := meta.BestTitle
	if title == "" {
		title = projectID
	}
	return c.Upload(ctx, Video{
		Title:       title,
		Description: meta.Description,
		Tags:        meta.Tags,
		Privacy:     privacy,
		Path:        videoPath,
	})
}

// newest returns the last match of pattern in name order, which for
// timestamped file names is the most recent one
func newest(pattern string) (string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", err
	}
	var files []string
	for _, m := range matches {
		if strings.Contains(filepath.Base(m), "_short_") {
			continue
		}
		if info, err := os.Stat(m); err == nil && !info.IsDir() {
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no files match %s", filepath.Base(pattern))
	}
	sort.Strings(files)
	return files[len(files)-1], nil
}
