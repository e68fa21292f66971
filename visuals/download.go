package visuals

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"robojobs/config"
	"robojobs/retry"
	"robojobs/types"
)

// Downloader stores visuals on local disk
type Downloader struct {
	dir    string
	client *http.Client
	policy retry.Policy
}

// NewDownloader creates the download directory if needed
func NewDownloader(dir string) (*Downloader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create download dir: %w", err)
	}
	return &Downloader{
		dir:    dir,
		client: &http.Client{Timeout: config.DownloadTimeout},
		policy: retry.Policy{Attempts: config.DownloadAttempts, Delay: config.DownloadDelay},
	}, nil
}

// Download fetches one visual unless a local copy already exists
func (d *Downloader) Download(ctx context.Context, v types.Visual) (types.Visual, error) {
	path := filepath.Join(d.dir, fmt.Sprintf("%s.%s", types.SanitizeFilename(v.ID), v.Extension()))

	if _, err := os.Stat(path); err == nil {
		v.LocalPath = path
		return v, nil
	}

	policy := d.policy
	policy.Name = "download " + v.ID
	_, err := retry.Do(ctx, policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, d.downloadFile(ctx, v.DownloadURL, path)
	})
	if err != nil {
		return v, err
	}

	v.LocalPath = path
	log.Printf("Downloaded: %s", filepath.Base(path))
	return v, nil
}

// DownloadAll downloads every visual and drops the ones that fail
func (d *Downloader) DownloadAll(ctx context.Context, visuals []types.Visual) []types.Visual {
	log.Printf("⬇️  Downloading %d visuals...", len(visuals))

	downloaded := make([]types.Visual, 0, len(visuals))
	for _, v := range visuals {
		got, err := d.Download(ctx, v)
		if err != nil {
			log.Printf("⚠️  Failed to download %s: %v", v.ID, err)
			continue
		}
		downloaded = append(downloaded, got)
	}

	log.Printf("✓ Downloaded %d/%d visuals", len(downloaded), len(visuals))
	return downloaded
}

// downloadFile streams url to path, removing the partial file on failure
func (d *Downloader) downloadFile(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; robojobs/1.0)")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download: status %d", resp.StatusCode)
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(path)
		return err
	}
	return out.Close()
}
