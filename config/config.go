package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	openAIKeyEnv         = "OPENAI_API_KEY"
	cohereKeyEnv         = "COHERE_API_KEY"
	llmProviderEnv       = "LLM_PROVIDER"
	pexelsKeyEnv         = "PEXELS_API_KEY"
	pixabayKeyEnv        = "PIXABAY_API_KEY"
	ttsKeyEnv            = "GOOGLE_CLOUD_TTS_KEY"
	youtubeClientIDEnv   = "YOUTUBE_CLIENT_ID"
	youtubeSecretEnv     = "YOUTUBE_CLIENT_SECRET"
	youtubeRefreshEnv    = "YOUTUBE_REFRESH_TOKEN"
	youtubeServiceAccEnv = "YOUTUBE_SERVICE_ACCOUNT"
	redisAddrEnv         = "REDIS_ADDR"
	redisPassEnv         = "REDIS_PASS"
	s3BucketEnv          = "S3_BUCKET"
	s3RegionEnv          = "S3_REGION"
	s3ProfileEnv         = "S3_PROFILE"
	s3PrefixEnv          = "S3_PREFIX"
	s3PathStyleEnv       = "S3_USE_PATH_STYLE"
	databaseURLEnv       = "DATABASE_URL"
	kafkaBrokersEnv      = "KAFKA_BOOTSTRAP_SERVERS"
	telegramTokenEnv     = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv    = "TELEGRAM_CHAT_ID"
	portEnv              = "PORT"
)

// Config holds every setting the pipeline and its outer surfaces need.
type Config struct {
	Channel   ChannelConfig   `yaml:"channel"`
	Video     VideoConfig     `yaml:"video"`
	Script    ScriptConfig    `yaml:"script"`
	Content   ContentConfig   `yaml:"content"`
	LLM       LLMConfig       `yaml:"llm"`
	Providers ProviderConfig  `yaml:"providers"`
	Narration NarrationConfig `yaml:"narration"`
	YouTube   YouTubeConfig   `yaml:"youtube"`
	Redis     RedisConfig     `yaml:"redis"`
	S3        S3Config        `yaml:"s3"`
	Database  DatabaseConfig  `yaml:"database"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Server    ServerConfig    `yaml:"server"`
	Paths     PathsConfig     `yaml:"paths"`
}

// ChannelConfig identifies the publishing channel.
type ChannelConfig struct {
	Name   string `yaml:"name"`
	Handle string `yaml:"handle"`
}

// VideoConfig describes render targets for long-form output and shorts.
type VideoConfig struct {
	TargetDuration int `yaml:"target_duration"`
	MinDuration    int `yaml:"min_duration"`
	MaxDuration    int `yaml:"max_duration"`
	Width          int `yaml:"width"`
	Height         int `yaml:"height"`
	FPS            int `yaml:"fps"`
	ShortsDuration int `yaml:"shorts_duration"`
	ShortsWidth    int `yaml:"shorts_width"`
	ShortsHeight   int `yaml:"shorts_height"`
}

// ScriptConfig bounds generated script length.
type ScriptConfig struct {
	TargetWords int `yaml:"target_words"`
	MinWords    int `yaml:"min_words"`
	MaxWords    int `yaml:"max_words"`
}

// ContentConfig lists what to track and where to look for it.
type ContentConfig struct {
	Keywords       []string `yaml:"keywords"`
	RSSFeeds       []string `yaml:"rss_feeds"`
	Subreddits     []string `yaml:"reddit_subs"`
	VisualKeywords []string `yaml:"visual_keywords"`
}

// LLMConfig selects and authenticates the generative text provider.
type LLMConfig struct {
	Provider     string `yaml:"provider"`
	OpenAIKey    string `yaml:"openai_key"`
	OpenAIModel  string `yaml:"openai_model"`
	CohereKey    string `yaml:"cohere_key"`
	CohereModel  string `yaml:"cohere_model"`
	SystemPrompt string `yaml:"system_prompt"`
}

// ProviderConfig holds stock and AI image endpoints and keys.
type ProviderConfig struct {
	PexelsKey     string `yaml:"pexels_key"`
	PixabayKey    string `yaml:"pixabay_key"`
	PexelsVideos  string `yaml:"pexels_videos"`
	PexelsPhotos  string `yaml:"pexels_photos"`
	PixabayImages string `yaml:"pixabay_images"`
	PixabayVideos string `yaml:"pixabay_videos"`
	Pollinations  string `yaml:"pollinations"`
	RedditBaseURL string `yaml:"reddit_base_url"`
}

// NarrationConfig selects the speech synthesizer.
type NarrationConfig struct {
	Engine   string `yaml:"engine"`
	TTSKey   string `yaml:"tts_key"`
	Voice    string `yaml:"voice"`
	EdgeTTS  string `yaml:"edge_tts_bin"`
	Language string `yaml:"language"`
}

// YouTubeConfig carries upload credentials.
type YouTubeConfig struct {
	ClientID       string `yaml:"client_id"`
	ClientSecret   string `yaml:"client_secret"`
	RefreshToken   string `yaml:"refresh_token"`
	ServiceAccount string `yaml:"service_account"`
}

// RedisConfig locates the seen-topic store.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
}

// S3Config locates the artifact archive bucket.
type S3Config struct {
	Bucket       string `yaml:"bucket"`
	Region       string `yaml:"region"`
	Profile      string `yaml:"profile"`
	Prefix       string `yaml:"prefix"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

// DatabaseConfig describes the Postgres upload-history connection.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// KafkaConfig wires run events and run requests.
type KafkaConfig struct {
	Brokers       []string `yaml:"brokers"`
	EventsTopic   string   `yaml:"events_topic"`
	RequestsTopic string   `yaml:"requests_topic"`
	GroupID       string   `yaml:"group_id"`
}

// TelegramConfig wires review notifications.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

// ServerConfig drives serve mode.
type ServerConfig struct {
	Port     string `yaml:"port"`
	Schedule string `yaml:"schedule"`
}

// PathsConfig places run artifacts on disk.
type PathsConfig struct {
	Output string `yaml:"output"`
	Temp   string `yaml:"temp"`
	Logs   string `yaml:"logs"`
}

// Load reads the YAML file at path (when non-empty) over the defaults and
// applies environment overrides. A missing or malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg = merge(cfg, fileCfg)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Missing lists the credentials that are not configured, by env name.
func (c Config) Missing() []string {
	var missing []string
	if c.LLM.OpenAIKey == "" && c.LLM.CohereKey == "" {
		missing = append(missing, openAIKeyEnv+" or "+cohereKeyEnv)
	}
	if c.Providers.PexelsKey == "" {
		missing = append(missing, pexelsKeyEnv)
	}
	if c.Providers.PixabayKey == "" {
		missing = append(missing, pixabayKeyEnv)
	}
	return missing
}

func (c *Config) applyEnvOverrides() {
	setString(&c.LLM.OpenAIKey, openAIKeyEnv)
	setString(&c.LLM.CohereKey, cohereKeyEnv)
	setString(&c.LLM.Provider, llmProviderEnv)
	setString(&c.Providers.PexelsKey, pexelsKeyEnv)
	setString(&c.Providers.PixabayKey, pixabayKeyEnv)
	setString(&c.Narration.TTSKey, ttsKeyEnv)
	setString(&c.YouTube.ClientID, youtubeClientIDEnv)
	setString(&c.YouTube.ClientSecret, youtubeSecretEnv)
	setString(&c.YouTube.RefreshToken, youtubeRefreshEnv)
	setString(&c.YouTube.ServiceAccount, youtubeServiceAccEnv)
	setString(&c.Redis.Addr, redisAddrEnv)
	setString(&c.Redis.Password, redisPassEnv)
	setString(&c.S3.Bucket, s3BucketEnv)
	setString(&c.S3.Region, s3RegionEnv)
	setString(&c.S3.Profile, s3ProfileEnv)
	setString(&c.S3.Prefix, s3PrefixEnv)
	setString(&c.Database.URL, databaseURLEnv)
	setString(&c.Telegram.BotToken, telegramTokenEnv)
	setString(&c.Server.Port, portEnv)

	if v := os.Getenv(s3PathStyleEnv); v != "" {
		c.S3.UsePathStyle = v == "true" || v == "1"
	}
	if v := os.Getenv(kafkaBrokersEnv); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			log.Printf("⚠️  config: invalid %s %q: %v", telegramChatIDEnv, v, err)
		} else {
			c.Telegram.ChatID = id
		}
	}
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func merge(base, override Config) Config {
	if override.Channel.Name != "" {
		base.Channel.Name = override.Channel.Name
	}
	if override.Channel.Handle != "" {
		base.Channel.Handle = override.Channel.Handle
	}

	mergeInt(&base.Video.TargetDuration, override.Video.TargetDuration)
	mergeInt(&base.Video.MinDuration, override.Video.MinDuration)
	mergeInt(&base.Video.MaxDuration, override.Video.MaxDuration)
	mergeInt(&base.Video.Width, override.Video.Width)
	mergeInt(&base.Video.Height, override.Video.Height)
	mergeInt(&base.Video.FPS, override.Video.FPS)
	mergeInt(&base.Video.ShortsDuration, override.Video.ShortsDuration)
	mergeInt(&base.Video.ShortsWidth, override.Video.ShortsWidth)
	mergeInt(&base.Video.ShortsHeight, override.Video.ShortsHeight)

	mergeInt(&base.Script.TargetWords, override.Script.TargetWords)
	mergeInt(&base.Script.MinWords, override.Script.MinWords)
	mergeInt(&base.Script.MaxWords, override.Script.MaxWords)

	if len(override.Content.Keywords) > 0 {
		base.Content.Keywords = override.Content.Keywords
	}
	if len(override.Content.RSSFeeds) > 0 {
		base.Content.RSSFeeds = override.Content.RSSFeeds
	}
	if len(override.Content.Subreddits) > 0 {
		base.Content.Subreddits = override.Content.Subreddits
	}
	if len(override.Content.VisualKeywords) > 0 {
		base.Content.VisualKeywords = override.Content.VisualKeywords
	}

	mergeString(&base.LLM.Provider, override.LLM.Provider)
	mergeString(&base.LLM.OpenAIKey, override.LLM.OpenAIKey)
	mergeString(&base.LLM.OpenAIModel, override.LLM.OpenAIModel)
	mergeString(&base.LLM.CohereKey, override.LLM.CohereKey)
	mergeString(&base.LLM.CohereModel, override.LLM.CohereModel)
	mergeString(&base.LLM.SystemPrompt, override.LLM.SystemPrompt)

	mergeString(&base.Providers.PexelsKey, override.Providers.PexelsKey)
	mergeString(&base.Providers.PixabayKey, override.Providers.PixabayKey)
	mergeString(&base.Providers.PexelsVideos, override.Providers.PexelsVideos)
	mergeString(&base.Providers.PexelsPhotos, override.Providers.PexelsPhotos)
	mergeString(&base.Providers.PixabayImages, override.Providers.PixabayImages)
	mergeString(&base.Providers.PixabayVideos, override.Providers.PixabayVideos)
	mergeString(&base.Providers.Pollinations, override.Providers.Pollinations)
	mergeString(&base.Providers.RedditBaseURL, override.Providers.RedditBaseURL)

	mergeString(&base.Narration.Engine, override.Narration.Engine)
	mergeString(&base.Narration.TTSKey, override.Narration.TTSKey)
	mergeString(&base.Narration.Voice, override.Narration.Voice)
	mergeString(&base.Narration.EdgeTTS, override.Narration.EdgeTTS)
	mergeString(&base.Narration.Language, override.Narration.Language)

	mergeString(&base.YouTube.ClientID, override.YouTube.ClientID)
	mergeString(&base.YouTube.ClientSecret, override.YouTube.ClientSecret)
	mergeString(&base.YouTube.RefreshToken, override.YouTube.RefreshToken)
	mergeString(&base.YouTube.ServiceAccount, override.YouTube.ServiceAccount)

	mergeString(&base.Redis.Addr, override.Redis.Addr)
	mergeString(&base.Redis.Password, override.Redis.Password)

	mergeString(&base.S3.Bucket, override.S3.Bucket)
	mergeString(&base.S3.Region, override.S3.Region)
	mergeString(&base.S3.Profile, override.S3.Profile)
	mergeString(&base.S3.Prefix, override.S3.Prefix)
	if override.S3.UsePathStyle {
		base.S3.UsePathStyle = true
	}

	mergeString(&base.Database.URL, override.Database.URL)

	if len(override.Kafka.Brokers) > 0 {
		base.Kafka.Brokers = override.Kafka.Brokers
	}
	mergeString(&base.Kafka.EventsTopic, override.Kafka.EventsTopic)
	mergeString(&base.Kafka.RequestsTopic, override.Kafka.RequestsTopic)
	mergeString(&base.Kafka.GroupID, override.Kafka.GroupID)

	mergeString(&base.Telegram.BotToken, override.Telegram.BotToken)
	if override.Telegram.ChatID != 0 {
		base.Telegram.ChatID = override.Telegram.ChatID
	}

	mergeString(&base.Server.Port, override.Server.Port)
	mergeString(&base.Server.Schedule, override.Server.Schedule)

	mergeString(&base.Paths.Output, override.Paths.Output)
	mergeString(&base.Paths.Temp, override.Paths.Temp)
	mergeString(&base.Paths.Logs, override.Paths.Logs)

	return base
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func mergeInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

// Default returns the built-in configuration for the AI and automation channel.
func Default() Config {
	return Config{
		Channel: ChannelConfig{
			Name:   "Ai / Robots / Unemployment",
			Handle: "@airobotsunemployment",
		},
		Video: VideoConfig{
			TargetDuration: TargetDuration,
			MinDuration:    MinDuration,
			MaxDuration:    MaxDuration,
			Width:          VideoWidth,
			Height:         VideoHeight,
			FPS:            VideoFPS,
			ShortsDuration: int(ShortsMaxDuration),
			ShortsWidth:    ShortsWidth,
			ShortsHeight:   ShortsHeight,
		},
		Script: ScriptConfig{
			TargetWords: TargetWords,
			MinWords:    2000,
			MaxWords:    2700,
		},
		Content: ContentConfig{
			Keywords: []string{
				"AI layoffs 2026",
				"robotics unemployment",
				"artificial intelligence jobs",
				"automation job loss",
				"humanoid robots workers",
				"ChatGPT replacing jobs",
				"AI mass unemployment",
				"robot workforce 2026",
			},
			RSSFeeds: []string{
				"https://news.google.com/rss/search?q=AI+robots+jobs+2026&hl=en-US&gl=US&ceid=US:en",
				"https://news.google.com/rss/search?q=artificial+intelligence+unemployment&hl=en-US&gl=US&ceid=US:en",
			},
			Subreddits: []string{"Futurology", "singularity", "artificial", "technology"},
			VisualKeywords: []string{
				"humanoid robot",
				"artificial intelligence",
				"office automation",
				"futuristic technology",
				"robot worker",
				"digital brain",
				"job interview",
				"unemployment line",
			},
		},
		LLM: LLMConfig{
			Provider:     "openai",
			OpenAIModel:  "gpt-4o-mini",
			CohereModel:  "command-r-plus",
			SystemPrompt: "You are a professional YouTube scriptwriter covering AI, robotics and the future of work.",
		},
		Providers: ProviderConfig{
			PexelsVideos:  "https://api.pexels.com/videos/search",
			PexelsPhotos:  "https://api.pexels.com/v1/search",
			PixabayImages: "https://pixabay.com/api/",
			PixabayVideos: "https://pixabay.com/api/videos/",
			Pollinations:  "https://image.pollinations.ai/prompt/",
			RedditBaseURL: "https://www.reddit.com",
		},
		Narration: NarrationConfig{
			Engine:   "google",
			Voice:    "en-US-Neural2-D",
			EdgeTTS:  "edge-tts",
			Language: NarrationLanguage,
		},
		Redis: RedisConfig{},
		S3:    S3Config{Region: "us-east-1", Prefix: "robojobs/"},
		Kafka: KafkaConfig{
			EventsTopic:   "robojobs.run-events",
			RequestsTopic: "robojobs.run-requests",
			GroupID:       "robojobs-worker",
		},
		Server: ServerConfig{Port: "8080", Schedule: "0 9 * * *"},
		Paths:  PathsConfig{Output: OutputDir, Temp: TempDir, Logs: LogsDir},
	}
}
