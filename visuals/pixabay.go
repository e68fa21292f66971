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

// Pixabay searches the Pixabay video and image APIs
type Pixabay struct {
	apiKey    string
	imagesURL string
	videosURL string
	client    *http.Client
}

func NewPixabay(apiKey, imagesURL, videosURL string) *Pixabay {
	return &Pixabay{apiKey: apiKey, imagesURL: imagesURL, videosURL: videosURL, client: newHTTPClient()}
}

func (p *Pixabay) Name() string { return "pixabay" }

type pixabayRendition struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type pixabayVideoResponse struct {
	Hits []struct {
		ID       int     `json:"id"`
		PageURL  string  `json:"pageURL"`
		Duration float64 `json:"duration"`
		Videos   struct {
			Large  pixabayRendition `json:"large"`
			Medium pixabayRendition `json:"medium"`
		} `json:"videos"`
	} `json:"hits"`
}

type pixabayImageResponse struct {
	Hits []struct {
		ID            int    `json:"id"`
		PageURL       string `json:"pageURL"`
		LargeImageURL string `json:"largeImageURL"`
		ImageWidth    int    `json:"imageWidth"`
		ImageHeight   int    `json:"imageHeight"`
	} `json:"hits"`
}

// SearchVideos prefers the large rendition, then medium
func (p *Pixabay) SearchVideos(ctx context.Context, query string, count int) ([]types.Visual, error) {
	if p.apiKey == "" {
		log.Printf("⚠️  No Pixabay API key - skipping Pixabay videos")
		return []types.Visual{}, nil
	}

	params := url.Values{
		"key":        {p.apiKey},
		"q":          {query},
		"per_page":   {strconv.Itoa(count)},
		"video_type": {"all"},
	}

	var data pixabayVideoResponse
	if err := getJSON(ctx, p.client, p.videosURL, params, nil, &data); err != nil {
		return nil, fmt.Errorf("pixabay videos %q: %w", query, err)
	}

	visuals := []types.Visual{}
	for _, hit := range data.Hits {
		rendition := hit.Videos.Large
		if rendition.URL == "" {
			rendition = hit.Videos.Medium
		}
		if rendition.URL == "" {
			continue
		}

		visuals = append(visuals, types.Visual{
			ID:          fmt.Sprintf("pixabay_%d", hit.ID),
			Kind:        types.KindVideo,
			Source:      "pixabay",
			URL:         hit.PageURL,
			DownloadURL: rendition.URL,
			Width:       rendition.Width,
			Height:      rendition.Height,
			Duration:    hit.Duration,
			Description: query,
		})
	}

	log.Printf("Pixabay videos '%s': found %d", query, len(visuals))
	return visuals, nil
}

func (p *Pixabay) SearchPhotos(ctx context.Context, query string, count int) ([]types.Visual, error) {
	if p.apiKey == "" {
		return []types.Visual{}, nil
	}

	params := url.Values{
		"key":         {p.apiKey},
		"q":           {query},
		"per_page":    {strconv.Itoa(count)},
		"image_type":  {"all"},
		"orientation": {"horizontal"},
	}

	var data pixabayImageResponse
	if err := getJSON(ctx, p.client, p.imagesURL, params, nil, &data); err != nil {
		return nil, fmt.Errorf("pixabay images %q: %w", query, err)
	}

	visuals := make([]types.Visual, 0, len(data.Hits))
	for _, hit := range data.Hits {
		visuals = append(visuals, types.Visual{
			ID:          fmt.Sprintf("pixabay_%d", hit.ID),
			Kind:        types.KindImage,
			Source:      "pixabay",
			URL:         hit.PageURL,
			DownloadURL: hit.LargeImageURL,
			Width:       hit.ImageWidth,
			Height:      hit.ImageHeight,
			Description: query,
		})
	}

	log.Printf("Pixabay images '%s': found %d", query, len(visuals))
	return visuals, nil
}
