package types

// VideoProject accumulates everything the assembler needs and produces
type VideoProject struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Script        string   `json:"script"`
	Visuals       []Visual `json:"visuals"`
	AudioPath     string   `json:"audio_path"`
	AudioDuration float64  `json:"audio_duration"`
	OutputPath    string   `json:"output_path,omitempty"`
	Shorts        []string `json:"shorts_paths,omitempty"`
}

// VideoMetadata is the publishing metadata derived from a script
type VideoMetadata struct {
	Titles           []string `json:"titles"`
	BestTitle        string   `json:"best_title"`
	Description      string   `json:"description"`
	Tags             []string `json:"tags"`
	Hashtags         []string `json:"hashtags"`
	ThumbnailPrompts []string `json:"thumbnail_prompts"`
	Timestamps       []string `json:"timestamps"`
	Category         string   `json:"category"`
}

// ProjectManifest is the on-disk record of a finished run, enough to re-check
// or upload the project later
type ProjectManifest struct {
	ProjectID string   `json:"project_id"`
	Topic     Topic    `json:"topic"`
	Script    Script   `json:"script"`
	Visuals   []Visual `json:"visuals"`
	VideoPath string   `json:"video_path,omitempty"`
	Shorts    []string `json:"shorts,omitempty"`
	CreatedAt string   `json:"created_at"`
}
