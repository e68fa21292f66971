package pipeline

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"robojobs/assembler"
	"robojobs/compliance"
	"robojobs/config"
	"robojobs/events"
	"robojobs/llm"
	"robojobs/metadata"
	"robojobs/narration"
	"robojobs/notify"
	"robojobs/script"
	"robojobs/storage"
	"robojobs/topics"
	"robojobs/types"
	"robojobs/visuals"
)

// Build wires every production component from cfg. Optional integrations
// that fail to connect are logged and left disabled. The returned func
// releases their connections.
func Build(ctx context.Context, cfg config.Config, journal Journal) (*Pipeline, func(), error) {
	var closers []func() error
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Printf("⚠️ Close failed: %v", err)
			}
		}
	}

	deps := Deps{Journal: journal, Enrich: topics.Enrich}

	gen, err := llm.New(cfg.LLM)
	if err != nil {
		log.Printf("⚠️ Generative text unavailable: %v", err)
		deps.Scripts = unavailableScripts{err: err}
		deps.Metadata = metadata.NewProducer(nil, cfg.Channel.Name, journal)
	} else {
		log.Printf("🧠 Using %s for text generation", gen.Name())
		deps.Scripts = script.NewProducer(gen, cfg.LLM.SystemPrompt, journal)
		deps.Metadata = metadata.NewProducer(gen, cfg.Channel.Name, journal)
	}

	seen := topicStore(cfg, &closers)
	deps.Seen = seen
	deps.Topics = topics.NewRanker(topicSources(cfg), cfg.Content.Keywords,
		topics.WithSeenStore(seen),
		topics.WithRecorder(journal),
	)

	providers := []visuals.StockProvider{
		visuals.NewPexels(cfg.Providers.PexelsKey, cfg.Providers.PexelsVideos, cfg.Providers.PexelsPhotos),
		visuals.NewPixabay(cfg.Providers.PixabayKey, cfg.Providers.PixabayImages, cfg.Providers.PixabayVideos),
	}
	ai := visuals.NewPollinations(cfg.Providers.Pollinations, cfg.Video.Width, cfg.Video.Height)
	deps.Visuals = visuals.NewCollector(providers, ai, cfg.Content.VisualKeywords, journal)

	downloader, err := visuals.NewDownloader(filepath.Join(cfg.Paths.Temp, "visuals"))
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	deps.Downloader = downloader

	synth, err := narration.NewSynthesizer(ctx, cfg.Narration)
	if err != nil {
		log.Printf("⚠️ Narration unavailable: %v", err)
		deps.Narrator = unavailableNarrator{err: err}
	} else {
		narrator, err := narration.NewNarrator(synth, filepath.Join(cfg.Paths.Temp, "audio"), journal)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		deps.Narrator = narrator
	}

	asm, err := assembler.New(cfg.Paths.Output, cfg.Paths.Temp, cfg.Paths.Logs, journal)
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	deps.Assembler = asm
	deps.Compliance = compliance.NewChecker(cfg.Paths.Output)

	if cfg.S3.Bucket != "" {
		s3, err := storage.NewS3(ctx, cfg.S3)
		if err != nil {
			log.Printf("⚠️ S3 archive disabled: %v", err)
		} else {
			deps.Archive = storage.NewArchive(s3, cfg.S3.Bucket, cfg.S3.Prefix)
		}
	}

	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic)
		if err != nil {
			log.Printf("⚠️ Run events disabled: %v", err)
		} else {
			deps.Events = producer
			closers = append(closers, producer.Close)
		}
	}

	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != 0 {
		tg, err := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			log.Printf("⚠️ Telegram notifications disabled: %v", err)
		} else {
			deps.Notifier = tg
		}
	}

	return New(cfg, deps), closeAll, nil
}

func topicSources(cfg config.Config) []topics.Source {
	var sources []topics.Source
	for _, feed := range cfg.Content.RSSFeeds {
		sources = append(sources, topics.NewGoogleNews(feed))
	}
	for _, sub := range cfg.Content.Subreddits {
		r, err := topics.NewReddit(sub, cfg.Providers.RedditBaseURL)
		if err != nil {
			log.Printf("⚠️ Skipping r/%s: %v", sub, err)
			continue
		}
		sources = append(sources, r)
	}
	return sources
}

func topicStore(cfg config.Config, closers *[]func() error) topics.SeenStore {
	if cfg.Redis.Addr == "" {
		return topics.NewMemorySeen()
	}
	rs, err := topics.NewRedisSeen(cfg.Redis.Addr, cfg.Redis.Password, config.SeenTopicTTL)
	if err != nil {
		log.Printf("⚠️ Using in-memory seen topics: %v", err)
		return topics.NewMemorySeen()
	}
	*closers = append(*closers, rs.Close)
	return rs
}

type unavailableScripts struct{ err error }

func (u unavailableScripts) Generate(context.Context, types.Topic, string) (types.Script, error) {
	return types.Script{}, fmt.Errorf("script generation: %w", u.err)
}

type unavailableNarrator struct{ err error }

func (u unavailableNarrator) Narrate(context.Context, string, string) (types.NarrationAudio, error) {
	return types.NarrationAudio{}, u.err
}
