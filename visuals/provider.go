// Package visuals finds, generates and downloads b-roll for a video.
package visuals

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"robojobs/config"
	"robojobs/types"
)

// StockProvider searches a stock media library
type StockProvider interface {
	Name() string
	SearchVideos(ctx context.Context, query string, count int) ([]types.Visual, error)
	SearchPhotos(ctx context.Context, query string, count int) ([]types.Visual, error)
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: config.SearchTimeout}
}

// getJSON issues a GET with optional headers and decodes the JSON body into out
func getJSON(ctx context.Context, client *http.Client, endpoint string, params url.Values, headers map[string]string, out any) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("parse endpoint: %w", err)
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("search failed: status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
