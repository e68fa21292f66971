// Package youtube uploads finished videos and reads channel statistics.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"robojobs/config"
	"robojobs/retry"
	"robojobs/runlog"
)

// ErrNoCredentials is returned when neither a refresh token nor a service
// account is configured
var ErrNoCredentials = errors.New("no YouTube credentials configured")

// Video is an upload request
type Video struct {
	Title       string
	Description string
	Tags        []string
	CategoryID  string
	Privacy     string
	Path        string
	Thumbnail   string
}

// Upload is one entry of the upload history
type Upload struct {
	VideoID    string `json:"video_id"`
	Title      string `json:"title"`
	UploadTime string `json:"upload_time"`
	Privacy    string `json:"privacy"`
	LocalPath  string `json:"local_path"`
}

// HistoryStore keeps upload history somewhere besides the local JSON file
type HistoryStore interface {
	RecordUpload(ctx context.Context, u Upload) error
}

// Client talks to the YouTube Data API
type Client struct {
	svc         *youtube.Service
	historyPath string
	store       HistoryStore
	journal     runlog.Recorder
	policy      retry.Policy
	now         func() time.Time

	mu sync.Mutex
}

// NewClient authenticates with a refresh token when one is configured and
// with a service account otherwise
func NewClient(ctx context.Context, cfg config.YouTubeConfig, logsDir string, journal runlog.Recorder) (*Client, error) {
	if journal == nil {
		journal = runlog.Nop{}
	}
	var opt option.ClientOption

	switch {
	case cfg.ClientID != "" && cfg.ClientSecret != "" && cfg.RefreshToken != "":
		conf := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{youtube.YoutubeUploadScope, youtube.YoutubeReadonlyScope},
		}
		token := &oauth2.Token{
			RefreshToken: cfg.RefreshToken,
			Expiry:       time.Now().Add(-time.Hour), // force refresh
		}
		opt = option.WithTokenSource(conf.TokenSource(ctx, token))

	case cfg.ServiceAccount != "":
		data, err := os.ReadFile(cfg.ServiceAccount)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account file: %w", err)
		}
		jwt, err := google.JWTConfigFromJSON(data, youtube.YoutubeUploadScope, youtube.YoutubeReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account: %w", err)
		}
		opt = option.WithHTTPClient(jwt.Client(ctx))

	default:
		return nil, ErrNoCredentials
	}

	svc, err := youtube.NewService(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("unable to create YouTube service: %w", err)
	}
	journal.Think(runlog.CategoryObservation, "YouTube API authenticated successfully")
	return NewClientWithService(svc, logsDir, journal), nil
}

// NewClientWithService wraps an existing service
func NewClientWithService(svc *youtube.Service, logsDir string, journal runlog.Recorder) *Client {
	if journal == nil {
		journal = runlog.Nop{}
	}
	return &Client{
		svc:         svc,
		historyPath: filepath.Join(logsDir, "youtube_history.json"),
		journal:     journal,
		policy:      retry.Policy{Attempts: config.UploadAttempts, Delay: config.UploadDelay},
		now:         time.Now,
	}
}

// WithHistoryStore also records uploads in store
func (c *Client) WithHistoryStore(store HistoryStore) *Client {
	c.store = store
	return c
}

// Upload sends the video and returns its ID. The thumbnail is optional and
// a failure to set it does not fail the upload.
func (c *Client) Upload(ctx context.Context, v Video) (string, error) {
	if v.Privacy == "" {
		v.Privacy = config.YouTubePrivacyStatus
	}
	if v.CategoryID == "" {
		v.CategoryID = config.YouTubeCategoryID
	}

	c.journal.Think(runlog.CategoryAnalysis, fmt.Sprintf("Uploading video: %s...", truncate(v.Title, 40)))

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       truncate(v.Title, 100),
			Description: v.Description,
			Tags:        v.Tags,
			CategoryId:  v.CategoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           v.Privacy,
			SelfDeclaredMadeForKids: false,
			ForceSendFields:         []string{"SelfDeclaredMadeForKids"},
		},
	}

	policy := c.policy
	policy.Name = "upload " + filepath.Base(v.Path)
	videoID, err := retry.Do(ctx, policy, func(ctx context.Context) (string, error) {
		file, err := os.Open(v.Path)
		if err != nil {
			return "", fmt.Errorf("failed to open video file: %w", err)
		}
		defer file.Close()

		if info, err := file.Stat(); err == nil {
			log.Printf("📤 Uploading: %s (%.2f MB)", truncate(v.Title, 50), float64(info.Size())/(1024*1024))
		}

		resp, err := c.svc.Videos.Insert([]string{"snippet", "status"}, video).Media(file).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("failed to upload video: %w", err)
		}
		return resp.Id, nil
	})
	if err != nil {
		c.journal.Think(runlog.CategoryError, "Upload failed: "+err.Error())
		return "", err
	}

	if v.Thumbnail != "" {
		c.setThumbnail(ctx, videoID, v.Thumbnail)
	}

	entry := Upload{
		VideoID:    videoID,
		Title:      v.Title,
		UploadTime: c.now().Format(time.RFC3339),
		Privacy:    v.Privacy,
		LocalPath:  v.Path,
	}
	if err := c.appendHistory(entry); err != nil {
		log.Printf("⚠️ Could not save upload history: %v", err)
	}
	if c.store != nil {
		if err := c.store.RecordUpload(ctx, entry); err != nil {
			log.Printf("⚠️ Could not record upload in history store: %v", err)
		}
	}

	c.journal.Think(runlog.CategoryInsight, "Video uploaded: "+videoID)
	log.Printf("✅ Uploaded: https://youtube.com/watch?v=%s", videoID)
	return videoID, nil
}

func (c *Client) setThumbnail(ctx context.Context, videoID, path string) {
	file, err := os.Open(path)
	if err != nil {
		log.Printf("   ⚠️ Thumbnail failed: %v", err)
		return
	}
	defer file.Close()

	if _, err := c.svc.Thumbnails.Set(videoID).Media(file).Context(ctx).Do(); err != nil {
		log.Printf("   ⚠️ Thumbnail failed: %v", err)
		return
	}
	log.Printf("   ✓ Thumbnail set")
}

// History returns the uploads recorded in the local history file
func (c *Client) History() ([]Upload, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadHistory()
}

func (c *Client) loadHistory() ([]Upload, error) {
	data, err := os.ReadFile(c.historyPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var history []Upload
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("decode upload history: %w", err)
	}
	return history, nil
}

func (c *Client) appendHistory(entry Upload) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	history, err := c.loadHistory()
	if err != nil {
		return err
	}
	history = append(history, entry)
	return writeJSON(c.historyPath, history)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
