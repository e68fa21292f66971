package visuals

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"robojobs/types"
)

// Pexels searches the Pexels video and photo APIs
type Pexels struct {
	apiKey    string
	videosURL string
	photosURL string
	client    *http.Client
}

func NewPexels(apiKey, videosURL, photosURL string) *Pexels {
	return &Pexels{apiKey: apiKey, videosURL: videosURL, photosURL: photosURL, client: newHTTPClient()}
}

func (p *Pexels) Name() string { return "pexels" }

type pexelsVideoResponse struct {
	Videos []struct {
		ID       int     `json:"id"`
		URL      string  `json:"url"`
		Duration float64 `json:"duration"`
		Files    []struct {
			Quality string `json:"quality"`
			Link    string `json:"link"`
			Width   int    `json:"width"`
			Height  int    `json:"height"`
		} `json:"video_files"`
	} `json:"videos"`
}

type pexelsPhotoResponse struct {
	Photos []struct {
		ID     int    `json:"id"`
		URL    string `json:"url"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Src    struct {
			Large2x string `json:"large2x"`
		} `json:"src"`
	} `json:"photos"`
}

func (p *Pexels) params(query string, count int) url.Values {
	return url.Values{
		"query":       {query},
		"per_page":    {strconv.Itoa(count)},
		"orientation": {"landscape"},
	}
}

// SearchVideos prefers the HD rendition of each result
func (p *Pexels) SearchVideos(ctx context.Context, query string, count int) ([]types.Visual, error) {
	if p.apiKey == "" {
		log.Printf("⚠️  No Pexels API key - skipping Pexels videos")
		return []types.Visual{}, nil
	}

	var data pexelsVideoResponse
	if err := getJSON(ctx, p.client, p.videosURL, p.params(query, count), map[string]string{"Authorization": p.apiKey}, &data); err != nil {
		return nil, fmt.Errorf("pexels videos %q: %w", query, err)
	}

	visuals := []types.Visual{}
	for _, v := range data.Videos {
		if len(v.Files) == 0 {
			continue
		}
		file := v.Files[0]
		for _, f := range v.Files {
			if f.Quality == "hd" {
				file = f
				break
			}
		}

		visuals = append(visuals, types.Visual{
			ID:          fmt.Sprintf("pexels_%d", v.ID),
			Kind:        types.KindVideo,
			Source:      "pexels",
			URL:         v.URL,
			DownloadURL: file.Link,
			Width:       file.Width,
			Height:      file.Height,
			Duration:    v.Duration,
			Description: query,
		})
	}

	log.Printf("Pexels videos '%s': found %d", query, len(visuals))
	return visuals, nil
}

// SearchPhotos uses the large2x rendition of each result
func (p *Pexels) SearchPhotos(ctx context.Context, query string, count int) ([]types.Visual, error) {
	if p.apiKey == "" {
		return []types.Visual{}, nil
	}

	var data pexelsPhotoResponse
	if err := getJSON(ctx, p.client, p.photosURL, p.params(query, count), map[string]string{"Authorization": p.apiKey}, &data); err != nil {
		return nil, fmt.Errorf("pexels photos %q: %w", query, err)
	}

	visuals := make([]types.Visual, 0, len(data.Photos))
	for _, ph := range data.Photos {
		visuals = append(visuals, types.Visual{
			ID:          fmt.Sprintf("pexels_%d", ph.ID),
			Kind:        types.KindImage,
			Source:      "pexels",
			URL:         ph.URL,
			DownloadURL: ph.Src.Large2x,
			Width:       ph.Width,
			Height:      ph.Height,
			Description: query,
		})
	}

	log.Printf("Pexels photos '%s': found %d", query, len(visuals))
	return visuals, nil
}
