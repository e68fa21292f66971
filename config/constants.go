package config

import "time"

// Video Output Constants
const (
	// VideoWidth is the long-form output width (16:9)
	VideoWidth = 1920

	// VideoHeight is the long-form output height (16:9)
	VideoHeight = 1080

	// VideoFPS is the render frame rate
	VideoFPS = 30

	// VideoCodec is the video encoding codec
	VideoCodec = "libx264"

	// AudioCodec is the audio encoding codec
	AudioCodec = "aac"

	// AudioBitrate is the audio quality bitrate
	AudioBitrate = "192k"

	// VideoPreset is the ffmpeg encoding speed preset for the main render
	VideoPreset = "medium"

	// PlaceholderColor fills a visual slot whose asset could not be loaded
	PlaceholderColor = "black"

	// TitleFontSize is the title card font size
	TitleFontSize = 72

	// TitleCardDuration is how long the title overlay stays on screen, in seconds
	TitleCardDuration = 5.0
)

// Shorts Constants
const (
	// ShortsWidth is the vertical clip width (9:16 aspect ratio)
	ShortsWidth = 1080

	// ShortsHeight is the vertical clip height (9:16 aspect ratio)
	ShortsHeight = 1920

	// ShortsMaxDuration keeps every clip under the one minute Shorts limit
	ShortsMaxDuration = 59.0

	// ShortsPreset trades size for speed on the derivative clips
	ShortsPreset = "ultrafast"

	// ShortsHookFraction sizes the opening hook clip relative to the video
	ShortsHookFraction = 0.03
)

// ShortsOffsets are the proportional start positions of the derived clips
var ShortsOffsets = []float64{0, 0.3, 0.5}

// Duration Targets
const (
	// TargetDuration is the intended long-form length in seconds (15 minutes)
	TargetDuration = 900

	// MinDuration is the shortest acceptable long-form length (14 minutes)
	MinDuration = 840

	// MaxDuration is the longest acceptable long-form length (20 minutes)
	MaxDuration = 1200
)

// Script Constants
const (
	// WordsPerMinute is the assumed narration speaking rate
	WordsPerMinute = 150

	// TargetWords is roughly fifteen minutes of narration
	TargetWords = 2250

	// ShortScriptWords is the length below which a script is flagged as short
	ShortScriptWords = 1500

	// ScriptTemperature is the sampling temperature for script generation
	ScriptTemperature = 0.7

	// ScriptMaxTokens caps the generated script length
	ScriptMaxTokens = 4000

	// MaxShortsExcerpts is the number of short excerpts kept from a script
	MaxShortsExcerpts = 5

	// MinExcerptLength is the shortest excerpt, in characters, worth keeping
	MinExcerptLength = 50
)

// Narration Constants
const (
	// NarrationChunkChars is the synthesis provider's per-request character budget
	NarrationChunkChars = 5000

	// NarrationGap is the silence inserted between synthesized chunks
	NarrationGap = 300 * time.Millisecond

	// NarrationLanguage is the synthesis language code
	NarrationLanguage = "en-US"
)

// Visual Constants
const (
	// TargetVisuals is the number of visuals collected per video
	TargetVisuals = 15

	// MinVisuals is the count below which extra AI images are generated
	MinVisuals = 10

	// StockVideoQueries is how many visual keywords are used for stock video
	StockVideoQueries = 3

	// StockPhotoQueries is how many visual keywords are used for stock photos
	StockPhotoQueries = 5

	// StockResultsPerQuery is the page size requested from stock providers
	StockResultsPerQuery = 2

	// ProviderPause throttles consecutive stock provider queries
	ProviderPause = 500 * time.Millisecond

	// MinAIImages is the floor for cue-based AI images in a collection
	MinAIImages = 5
)

// Topic Constants
const (
	// FeedEntriesPerSource caps entries taken from each RSS feed
	FeedEntriesPerSource = 20

	// RedditPostsPerSub caps posts taken from each subreddit
	RedditPostsPerSub = 15

	// RedditMaxAge drops posts older than a week
	RedditMaxAge = 7 * 24 * time.Hour

	// SummaryMaxChars truncates topic summaries
	SummaryMaxChars = 500

	// DedupPrefixChars is the title prefix length used for deduplication
	DedupPrefixChars = 50

	// DefaultTopicLimit is the number of ranked topics returned by discovery
	DefaultTopicLimit = 10

	// SeenTopicTTL keeps produced topic IDs out of discovery for a month
	SeenTopicTTL = 30 * 24 * time.Hour
)

// Retry Policies
const (
	// SourceAttempts and SourceDelay apply to every topic source fetch
	SourceAttempts = 3
	SourceDelay    = 2 * time.Second

	// ScriptAttempts and ScriptDelay apply to script generation (no fallback)
	ScriptAttempts = 3
	ScriptDelay    = 5 * time.Second

	// SearchAttempts and SearchDelay apply to each stock search (empty fallback)
	SearchAttempts = 2
	SearchDelay    = 1 * time.Second

	// DownloadAttempts and DownloadDelay apply to each visual download
	DownloadAttempts = 3
	DownloadDelay    = 2 * time.Second

	// SynthesisAttempts and SynthesisDelay apply to each narration chunk
	SynthesisAttempts = 2
	SynthesisDelay    = 2 * time.Second

	// LoadAttempts and LoadDelay apply to preparing one visual slot for assembly
	LoadAttempts = 2
	LoadDelay    = 1 * time.Second

	// MetadataAttempts and MetadataDelay apply to title generation (template fallback)
	MetadataAttempts = 2
	MetadataDelay    = 1 * time.Second

	// UploadAttempts and UploadDelay apply to hosting API calls
	UploadAttempts = 2
	UploadDelay    = 1 * time.Second
)

// HTTP Timeouts
const (
	// SearchTimeout bounds a single stock provider request
	SearchTimeout = 15 * time.Second

	// DownloadTimeout bounds a single asset download
	DownloadTimeout = 60 * time.Second

	// ExtractTimeout bounds readability extraction of a topic's article
	ExtractTimeout = 30 * time.Second
)

// Compliance Constants
const (
	// PassScore is the minimum overall compliance score
	PassScore = 70

	// LongScriptWords earns the originality length bonus
	LongScriptWords = 2000
)

// YouTube Constants
const (
	// YouTubeCategoryID for Science & Technology
	YouTubeCategoryID = "28"

	// YouTubePrivacyStatus is the default visibility until a human reviews the upload
	YouTubePrivacyStatus = "private"

	// MaxTags is the tag count accepted by the hosting API
	MaxTags = 30

	// AnalyticsVideoLimit caps per-video statistics calls during analysis
	AnalyticsVideoLimit = 20
)

// Directory Constants
const (
	// OutputDir holds rendered videos, shorts, metadata and reports
	OutputDir = "output"

	// TempDir holds downloads, narration chunks and intermediate renders
	TempDir = "temp"

	// LogsDir holds journals, assembly metrics and upload history
	LogsDir = "logs"
)
