package types

// Visual kinds
const (
	KindVideo = "video"
	KindImage = "image"
)

// Visual is a downloadable image or video asset used as b-roll
type Visual struct {
	ID          string  `json:"id"`
	Kind        string  `json:"type"`
	Source      string  `json:"source"`
	URL         string  `json:"url"`
	DownloadURL string  `json:"download_url"`
	LocalPath   string  `json:"local_path,omitempty"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Duration    float64 `json:"duration,omitempty"`
	Description string  `json:"description,omitempty"`
}

// Extension returns the file extension used when the asset is stored locally
func (v Visual) Extension() string {
	if v.Kind == KindVideo {
		return "mp4"
	}
	return "jpg"
}

// NarrationAudio is the synthesized narration track and its duration in seconds
type NarrationAudio struct {
	Path     string  `json:"path"`
	Duration float64 `json:"duration"`
}
