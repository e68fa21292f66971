package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"robojobs/api"
	"robojobs/compliance"
	"robojobs/config"
	"robojobs/events"
	"robojobs/pipeline"
	"robojobs/runlog"
	"robojobs/state"
	"robojobs/storage"
	"robojobs/types"
	"robojobs/youtube"
)

type options struct {
	configPath string
	topic      string
	discover   bool
	test       bool
	verbose    bool
	compliance string
	upload     string
	public     bool
	analyze    bool
	serve      bool
	port       string
	schedule   string
}

func main() {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	flag.StringVar(&opts.topic, "topic", "", "Produce a video about this topic")
	flag.BoolVar(&opts.discover, "discover", false, "Discover a trending topic (default when no -topic is given)")
	flag.BoolVar(&opts.test, "test", false, "Test mode: produce everything except the rendered video")
	flag.BoolVar(&opts.verbose, "verbose", false, "Echo every journal thought")
	flag.StringVar(&opts.compliance, "compliance", "", "Re-check compliance for a finished project ID")
	flag.StringVar(&opts.upload, "upload", "", "Upload a finished project ID to YouTube")
	flag.BoolVar(&opts.public, "public", false, "Upload as public instead of private")
	flag.BoolVar(&opts.analyze, "analyze", false, "Analyze the channel's recent uploads")
	flag.BoolVar(&opts.serve, "serve", false, "Run the HTTP API with scheduled runs")
	flag.StringVar(&opts.port, "port", "", "API port in serve mode")
	flag.StringVar(&opts.schedule, "cron", "", "Cron schedule for automated runs in serve mode")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		log.Printf("❌ %v", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.port != "" {
		cfg.Server.Port = opts.port
	}
	if opts.schedule != "" {
		cfg.Server.Schedule = opts.schedule
	}

	journal, err := runlog.NewJournal(filepath.Join(cfg.Paths.Logs, "knowledge"), opts.verbose)
	if err != nil {
		return err
	}

	switch {
	case opts.compliance != "":
		return checkCompliance(cfg, journal, opts.compliance)
	case opts.upload != "":
		return upload(ctx, cfg, journal, opts.upload, opts.public)
	case opts.analyze:
		return analyze(ctx, cfg, journal)
	case opts.serve:
		return serve(ctx, cfg, journal)
	default:
		return produce(ctx, cfg, journal, opts)
	}
}

func produce(ctx context.Context, cfg config.Config, journal *runlog.Journal, opts options) error {
	if missing := cfg.Missing(); len(missing) > 0 {
		log.Printf("⚠️ Missing configuration: %v", missing)
	}

	p, closeAll, err := pipeline.Build(ctx, cfg, journal)
	if err != nil {
		return err
	}
	defer closeAll()

	res, err := p.Run(ctx, pipeline.Request{
		Topic:      opts.topic,
		Discover:   opts.discover || opts.topic == "",
		SkipRender: opts.test,
	})
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}

	fmt.Println()
	fmt.Printf("✅ Project %s complete in %s\n", res.ProjectID, res.Elapsed.Round(time.Second))
	if res.VideoPath != "" {
		fmt.Printf("   Video: %s\n", res.VideoPath)
	}
	fmt.Printf("   Shorts: %d | Files: %d\n", len(res.Shorts), len(res.Files))
	printReport(res.Compliance)
	fmt.Printf("\nUpload with: robojobs -upload %s\n", res.ProjectID)
	return nil
}

func checkCompliance(cfg config.Config, journal *runlog.Journal, projectID string) error {
	p := pipeline.New(cfg, pipeline.Deps{
		Journal:    journal,
		Compliance: compliance.NewChecker(cfg.Paths.Output),
	})

	report, err := p.CheckProject(projectID)
	if err != nil {
		return err
	}
	writeCompliance(os.Stdout, report)
	return nil
}

// writeCompliance prints the report, its recommendations and the
// monetization guide
func writeCompliance(w io.Writer, report types.ComplianceReport) {
	writeReport(w, report)
	for _, item := range report.Recommendations {
		fmt.Fprintln(w, "   "+item)
	}
	fmt.Fprint(w, compliance.BestPractices)
}

func upload(ctx context.Context, cfg config.Config, journal *runlog.Journal, projectID string, public bool) error {
	client, err := youtube.NewClient(ctx, cfg.YouTube, cfg.Paths.Logs, journal)
	if err != nil {
		return err
	}

	if cfg.Database.URL != "" {
		repo, err := storage.OpenHistory(ctx, cfg.Database.URL)
		if err != nil {
			log.Printf("⚠️ Upload history database unavailable: %v", err)
		} else {
			defer repo.Close()
			client.WithHistoryStore(repo)
		}
	}

	videoID, err := client.UploadFromOutput(ctx, cfg.Paths.Output, projectID, public)
	if err != nil {
		return err
	}
	fmt.Printf("✅ Uploaded: https://youtube.com/watch?v=%s\n", videoID)
	return nil
}

func analyze(ctx context.Context, cfg config.Config, journal *runlog.Journal) error {
	client, err := youtube.NewClient(ctx, cfg.YouTube, cfg.Paths.Logs, journal)
	if err != nil {
		return err
	}

	patterns, err := client.AnalyzePatterns(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("📊 Analyzed %d videos, average views %.0f\n", patterns.AnalyzedVideos, patterns.AverageViews)
	for i, title := range patterns.BestTitles {
		fmt.Printf("  %d. %s\n", i+1, title)
	}
	return nil
}

func serve(ctx context.Context, cfg config.Config, journal *runlog.Journal) error {
	p, closeAll, err := pipeline.Build(ctx, cfg, journal)
	if err != nil {
		return err
	}
	defer closeAll()

	srv := api.NewServer(p, state.NewManager(0), cfg.Server.Port)
	if err := srv.Start(); err != nil {
		return err
	}
	if cfg.Server.Schedule != "" {
		if err := srv.StartCron(cfg.Server.Schedule); err != nil {
			return err
		}
	}

	if len(cfg.Kafka.Brokers) > 0 {
		consumer, err := events.NewConsumer(events.ConsumerConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.RequestsTopic,
			GroupID: cfg.Kafka.GroupID,
			Handler: events.RunRequests(func(_ context.Context, req events.RunRequest) error {
				_, err := srv.StartRun(req)
				return err
			}),
		})
		if err != nil {
			log.Printf("⚠️ Run requests disabled: %v", err)
		} else {
			defer consumer.Close()
			go func() {
				if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Printf("⚠️ Kafka consumer failed to start: %v", err)
				}
			}()
		}
	}

	log.Println("API endpoints available:")
	log.Println("  GET  /health")
	log.Println("  GET  /api/status")
	log.Println("  POST /api/runs")
	log.Println("  POST /api/compliance/:project")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func printReport(r types.ComplianceReport) {
	writeReport(os.Stdout, r)
}

func writeReport(w io.Writer, r types.ComplianceReport) {
	status := "✅ PASSED"
	if !r.Passed {
		status = "❌ NEEDS REVIEW"
	}
	fmt.Fprintf(w, "\n🛡️ Compliance: %s (score %d/100)\n", status, r.Score)
	fmt.Fprintf(w, "   Visual safety: %s | Originality: %s\n", r.VisualSafety, r.Originality)
	for _, issue := range r.Issues {
		fmt.Fprintf(w, "   • %s\n", issue)
	}
}
