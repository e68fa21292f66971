// Package pipeline runs one end-to-end video production: topic, script,
// visuals, narration, assembly, metadata and compliance.
package pipeline

import (
	"context"
	"errors"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"robojobs/assembler"
	"robojobs/config"
	"robojobs/events"
	"robojobs/notify"
	"robojobs/runlog"
	"robojobs/topics"
	"robojobs/types"
)

// Step names in run order
const (
	StepTopic     = "Topic Discovery"
	StepScript    = "Script Generation"
	StepVisuals   = "Visual Sourcing"
	StepNarration = "Voiceover Generation"
	StepAssembly  = "Video Assembly"
	StepMetadata  = "Metadata Generation"
	StepExport    = "Exporting Assets"
	StepQuality   = "Quality Report"
)

// TotalSteps is the number of progress steps in a run
const TotalSteps = 8

const (
	pipelineGoal   = "Generate complete YouTube video about AI/robotics"
	pipelineStepID = "Pipeline"
)

// ErrNoTopic is returned when auto-discovery finds nothing to produce
var ErrNoTopic = errors.New("failed to discover any topics")

// Journal is the run journal's lifecycle plus its recorder
type Journal interface {
	runlog.Recorder
	Begin(taskID, goal string)
	End(success bool, outcome string) (*runlog.Chain, error)
}

type TopicFinder interface {
	Best(ctx context.Context) (types.Topic, bool)
}

type ScriptWriter interface {
	Generate(ctx context.Context, topic types.Topic, extra string) (types.Script, error)
}

type VisualCollector interface {
	Collect(ctx context.Context, topic, script string, target int) []types.Visual
	TopUp(script string, visuals []types.Visual, target int) []types.Visual
}

type Downloader interface {
	DownloadAll(ctx context.Context, visuals []types.Visual) []types.Visual
}

type Narrator interface {
	Narrate(ctx context.Context, text, name string) (types.NarrationAudio, error)
}

type VideoAssembler interface {
	Assemble(ctx context.Context, project types.VideoProject, opts assembler.Options) (types.VideoProject, error)
}

type MetadataWriter interface {
	Generate(ctx context.Context, script types.Script, duration int) types.VideoMetadata
}

type ComplianceChecker interface {
	Check(visuals []types.Visual, script string) types.ComplianceReport
	Save(report types.ComplianceReport) (string, error)
}

type Archiver interface {
	Upload(ctx context.Context, projectID string, files ...string) ([]string, error)
}

// Observer is told when each step begins
type Observer interface {
	StepStarted(n, total int, name string)
}

// Deps are the components a run is built from. Seen, Enrich, Archive,
// Events and Notifier are optional.
type Deps struct {
	Journal    Journal
	Topics     TopicFinder
	Enrich     func([]types.Topic)
	Seen       topics.SeenStore
	Scripts    ScriptWriter
	Visuals    VisualCollector
	Downloader Downloader
	Narrator   Narrator
	Assembler  VideoAssembler
	Metadata   MetadataWriter
	Compliance ComplianceChecker
	Archive    Archiver
	Events     events.Publisher
	Notifier   notify.Notifier
}

// Request selects what a run produces
type Request struct {
	RunID      string
	Topic      string
	Discover   bool
	SkipRender bool
	Observer   Observer
}

// Result is everything a finished run produced
type Result struct {
	RunID        string
	ProjectID    string
	Topic        types.Topic
	Script       types.Script
	Visuals      []types.Visual
	Audio        types.NarrationAudio
	VideoPath    string
	Shorts       []string
	Metadata     types.VideoMetadata
	Compliance   types.ComplianceReport
	Files        []string
	ArchivedKeys []string
	Elapsed      time.Duration
}

// Pipeline sequences every component into one run
type Pipeline struct {
	cfg  config.Config
	deps Deps
	now  func() time.Time
}

// New creates a pipeline. Optional dependencies left nil are disabled.
func New(cfg config.Config, deps Deps) *Pipeline {
	if deps.Events == nil {
		deps.Events = events.Nop{}
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}
	return &Pipeline{cfg: cfg, deps: deps, now: time.Now}
}

// VerifyConfiguration warns about missing credentials and records what the
// run will fall back to
func (p *Pipeline) VerifyConfiguration() []string {
	j := p.deps.Journal
	j.Think(runlog.CategoryAnalysis, "Verifying configuration and API keys")

	var warnings []string
	if p.cfg.LLM.OpenAIKey == "" && p.cfg.LLM.CohereKey == "" {
		warnings = append(warnings, "No LLM API key set - script generation will fail")
	} else {
		j.Think(runlog.CategoryObservation, "LLM API key present ✓")
	}

	if p.cfg.Providers.PexelsKey == "" {
		warnings = append(warnings, "PEXELS_API_KEY not set - using Pollinations.ai only for visuals")
		j.Decide("Use AI-generated images only", "No stock API keys available")
	} else {
		j.Think(runlog.CategoryObservation, "Pexels API key present ✓")
	}

	for _, w := range warnings {
		log.Printf("⚠️ %s", w)
	}
	return warnings
}

// Run executes all steps. Any stage-fatal error ends the run and is
// returned after the journal is closed.
func (p *Pipeline) Run(ctx context.Context, req Request) (res Result, err error) {
	start := p.now()
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}
	res.RunID = req.RunID
	res.ProjectID = "video_" + start.Format("20060102_150405")

	j := p.deps.Journal
	j.Begin("pipeline_"+start.Format("20060102_150405"), pipelineGoal)
	p.VerifyConfiguration()

	r := &run{
		Pipeline: p,
		req:      req,
		res:      &res,
		progress: runlog.NewProgress(TotalSteps),
		quality:  runlog.NewQualityMetrics(),
	}

	j.Think(runlog.CategoryAnalysis, "Starting pipeline run: "+res.ProjectID)
	log.Printf("%s", strings.Repeat("=", 60))
	log.Printf("🚀 AI VIDEO GENERATOR PIPELINE")
	log.Printf("%s", strings.Repeat("=", 60))

	defer func() {
		if err == nil {
			return
		}
		j.Think(runlog.CategoryError, "Pipeline failed: "+err.Error())
		if _, endErr := j.End(false, err.Error()); endErr != nil {
			log.Printf("⚠️ Could not save journal: %v", endErr)
		}
		r.emit(ctx, pipelineStepID, events.StatusFailed, err.Error())
		log.Printf("❌ PIPELINE FAILED: %v", err)
	}()

	for _, s := range []struct {
		name string
		fn   func(context.Context) error
	}{
		{StepTopic, r.topic},
		{StepScript, r.script},
		{StepVisuals, r.visuals},
		{StepNarration, r.narrate},
		{StepAssembly, r.assemble},
		{StepMetadata, r.metadata},
		{StepExport, r.export},
		{StepQuality, r.report},
	} {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		r.step(ctx, s.name)
		if err := s.fn(ctx); err != nil {
			return res, err
		}
		r.emit(ctx, s.name, events.StatusCompleted, "")
	}

	res.Elapsed = p.now().Sub(start)
	p.summarize(r)

	if _, err := j.End(true, "Generated video: "+truncate(res.Topic.Title, 50)); err != nil {
		log.Printf("⚠️ Could not save journal: %v", err)
	}
	r.progress.Complete()
	r.emit(ctx, pipelineStepID, events.StatusCompleted, res.VideoPath)
	return res, nil
}

func (p *Pipeline) summarize(r *run) {
	res := r.res
	log.Printf("%s", strings.Repeat("=", 60))
	log.Printf("✅ PIPELINE COMPLETE")
	log.Printf("%s", strings.Repeat("=", 60))
	log.Printf("   Topic: %s...", truncate(res.Topic.Title, 50))
	log.Printf("   Duration: ~%.0f min", res.Audio.Duration/60)
	log.Printf("   Visuals: %d", len(res.Visuals))
	log.Printf("   Processing Time: %.1fs", res.Elapsed.Seconds())
	if res.VideoPath != "" {
		log.Printf("   Output: %s", res.VideoPath)
	}
	log.Printf("   Quality: viral=%d retention=%d", r.quality.ViralScore, r.quality.RetentionEstimate)

	log.Printf("🎯 TITLE OPTIONS:")
	for i, title := range res.Metadata.Titles {
		if i == 5 {
			break
		}
		log.Printf("   %d. %s", i+1, title)
	}
}

func (p *Pipeline) outputPath(name string) string {
	return filepath.Join(p.cfg.Paths.Output, name)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
