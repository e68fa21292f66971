package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"robojobs/assembler"
	"robojobs/compliance"
	"robojobs/config"
	"robojobs/events"
	"robojobs/notify"
	"robojobs/runlog"
	"robojobs/topics"
	"robojobs/types"
)

type fakeJournal struct {
	thoughts  []string
	decisions []string
	began     string
	ended     bool
	success   bool
	outcome   string
}

func (f *fakeJournal) Think(category, content string, _ ...string) {
	f.thoughts = append(f.thoughts, category+": "+content)
}

func (f *fakeJournal) Decide(decision, _ string) { f.decisions = append(f.decisions, decision) }

func (f *fakeJournal) Begin(taskID, _ string) { f.began = taskID }

func (f *fakeJournal) End(success bool, outcome string) (*runlog.Chain, error) {
	f.ended, f.success, f.outcome = true, success, outcome
	return nil, nil
}

func (f *fakeJournal) has(prefix string) bool {
	for _, t := range f.thoughts {
		if strings.HasPrefix(t, prefix) {
			return true
		}
	}
	return false
}

type fakeTopics struct {
	topic types.Topic
	ok    bool
	calls int
}

func (f *fakeTopics) Best(context.Context) (types.Topic, bool) {
	f.calls++
	return f.topic, f.ok
}

type fakeScripts struct {
	words int
	err   error
	got   types.Topic
}

func (f *fakeScripts) Generate(_ context.Context, topic types.Topic, _ string) (types.Script, error) {
	f.got = topic
	if f.err != nil {
		return types.Script{}, f.err
	}
	text := "## HOOK\n" + strings.Repeat("robots ", f.words)
	return types.NewScript(topic.Title, text), nil
}

type fakeVisuals struct {
	collected int
	topUps    int
}

func makeVisuals(n int, source string) []types.Visual {
	vs := make([]types.Visual, n)
	for i := range vs {
		vs[i] = types.Visual{ID: source + "_" + string(rune('a'+i)), Kind: types.KindImage, Source: source}
	}
	return vs
}

func (f *fakeVisuals) Collect(context.Context, string, string, int) []types.Visual {
	return makeVisuals(f.collected, "pexels")
}

func (f *fakeVisuals) TopUp(_ string, visuals []types.Visual, target int) []types.Visual {
	f.topUps++
	return append(visuals, makeVisuals(target-len(visuals), "pollinations")...)
}

type fakeDownloader struct{}

func (fakeDownloader) DownloadAll(_ context.Context, visuals []types.Visual) []types.Visual {
	out := make([]types.Visual, len(visuals))
	for i, v := range visuals {
		v.LocalPath = "/tmp/" + v.ID + ".jpg"
		out[i] = v
	}
	return out
}

type fakeNarrator struct {
	err  error
	name string
}

func (f *fakeNarrator) Narrate(_ context.Context, _, name string) (types.NarrationAudio, error) {
	f.name = name
	if f.err != nil {
		return types.NarrationAudio{}, f.err
	}
	return types.NarrationAudio{Path: "/tmp/" + name, Duration: 912.4}, nil
}

type fakeAssembler struct {
	dir     string
	err     error
	project types.VideoProject
	calls   int
}

func (f *fakeAssembler) Assemble(_ context.Context, p types.VideoProject, _ assembler.Options) (types.VideoProject, error) {
	f.calls++
	f.project = p
	if f.err != nil {
		return p, f.err
	}
	p.OutputPath = filepath.Join(f.dir, p.ID+"_render.mp4")
	os.WriteFile(p.OutputPath, []byte("video"), 0o644)
	return p, nil
}

type fakeMetadata struct{}

func (fakeMetadata) Generate(_ context.Context, s types.Script, duration int) types.VideoMetadata {
	titles := []string{"One", "Two", "Three", "Four", "Five", "Six"}
	return types.VideoMetadata{Titles: titles, BestTitle: titles[0], Description: s.Topic}
}

type fakeArchive struct {
	files []string
}

func (f *fakeArchive) Upload(_ context.Context, projectID string, files ...string) ([]string, error) {
	f.files = files
	keys := make([]string, len(files))
	for i, file := range files {
		keys[i] = "runs/" + projectID + "/" + filepath.Base(file)
	}
	return keys, nil
}

type recordingPublisher struct {
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	r.events = append(r.events, e)
	return nil
}

type recordingNotifier struct {
	reviews []notify.Review
}

func (r *recordingNotifier) NotifyReview(_ context.Context, rev notify.Review) error {
	r.reviews = append(r.reviews, rev)
	return nil
}

type recordingObserver struct {
	steps []string
}

func (r *recordingObserver) StepStarted(n, total int, name string) {
	r.steps = append(r.steps, name)
}

type fixture struct {
	cfg       config.Config
	journal   *fakeJournal
	topics    *fakeTopics
	scripts   *fakeScripts
	visuals   *fakeVisuals
	narrator  *fakeNarrator
	assembler *fakeAssembler
	archive   *fakeArchive
	events    *recordingPublisher
	notifier  *recordingNotifier
	seen      *topics.MemorySeen
	pipeline  *Pipeline
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	out := t.TempDir()
	cfg := config.Default()
	cfg.Paths.Output = out
	cfg.LLM.OpenAIKey = "sk-test"
	cfg.Providers.PexelsKey = "pexels"

	f := &fixture{
		cfg:     cfg,
		journal: &fakeJournal{},
		topics: &fakeTopics{ok: true, topic: types.Topic{
			ID: "abc123", Title: "AI layoffs hit 2 million workers in 2026", Source: types.SourceGoogleNews, Score: 85,
		}},
		scripts:   &fakeScripts{words: 2100},
		visuals:   &fakeVisuals{collected: 15},
		narrator:  &fakeNarrator{},
		assembler: &fakeAssembler{dir: out},
		archive:   &fakeArchive{},
		events:    &recordingPublisher{},
		notifier:  &recordingNotifier{},
		seen:      topics.NewMemorySeen(),
	}

	checker := compliance.NewChecker(out)
	f.pipeline = New(cfg, Deps{
		Journal:    f.journal,
		Topics:     f.topics,
		Seen:       f.seen,
		Scripts:    f.scripts,
		Visuals:    f.visuals,
		Downloader: fakeDownloader{},
		Narrator:   f.narrator,
		Assembler:  f.assembler,
		Metadata:   fakeMetadata{},
		Compliance: checker,
		Archive:    f.archive,
		Events:     f.events,
		Notifier:   f.notifier,
	})
	f.pipeline.now = func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC) }
	return f
}

func TestRunDiscoversAndProduces(t *testing.T) {
	f := newFixture(t)
	obs := &recordingObserver{}

	res, err := f.pipeline.Run(context.Background(), Request{RunID: "run-1", Discover: true, Observer: obs})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.ProjectID != "video_20260301_093000" {
		t.Errorf("project id = %q", res.ProjectID)
	}
	if res.Topic.ID != "abc123" || f.scripts.got.ID != "abc123" {
		t.Errorf("topic not passed through: %+v", res.Topic)
	}
	if len(res.Visuals) != 15 || f.visuals.topUps != 0 {
		t.Errorf("visuals = %d topUps = %d", len(res.Visuals), f.visuals.topUps)
	}
	if f.narrator.name != "video_20260301_093000_voice.mp3" {
		t.Errorf("narration name = %q", f.narrator.name)
	}
	if f.assembler.project.AudioDuration != 912.4 {
		t.Errorf("assembler audio duration = %v", f.assembler.project.AudioDuration)
	}
	if !strings.HasSuffix(res.VideoPath, "_render.mp4") {
		t.Errorf("video path = %q", res.VideoPath)
	}

	out := f.cfg.Paths.Output
	for _, name := range []string{
		"video_20260301_093000_metadata.json",
		"video_20260301_093000_script.md",
		"video_20260301_093000_project.json",
		"quality_metrics.json",
	} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	if reports, _ := filepath.Glob(filepath.Join(out, "compliance_report_*.json")); len(reports) != 1 {
		t.Errorf("compliance reports = %v", reports)
	}

	if len(obs.steps) != TotalSteps || obs.steps[0] != StepTopic || obs.steps[7] != StepQuality {
		t.Errorf("observed steps = %v", obs.steps)
	}
	if len(f.archive.files) != len(res.Files) || len(res.ArchivedKeys) != len(res.Files) {
		t.Errorf("archived %d of %d files", len(f.archive.files), len(res.Files))
	}
	if len(f.notifier.reviews) != 1 || f.notifier.reviews[0].Title != "One" {
		t.Errorf("reviews = %+v", f.notifier.reviews)
	}
	if seen, _ := f.seen.Seen(context.Background(), "abc123"); !seen {
		t.Error("topic not marked as produced")
	}

	last := f.events.events[len(f.events.events)-1]
	if last.Step != pipelineStepID || last.Status != events.StatusCompleted || last.RunID != "run-1" {
		t.Errorf("last event = %+v", last)
	}
	if !f.journal.ended || !f.journal.success || f.journal.began != "pipeline_20260301_093000" {
		t.Errorf("journal = %+v", f.journal)
	}
	if len(f.journal.decisions) == 0 || f.journal.decisions[0] != "Auto-discover trending topic" {
		t.Errorf("decisions = %v", f.journal.decisions)
	}
}

func TestRunManualTopicSkipsDiscovery(t *testing.T) {
	f := newFixture(t)

	res, err := f.pipeline.Run(context.Background(), Request{Topic: "  Robots in warehouses  ", SkipRender: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if f.topics.calls != 0 {
		t.Errorf("discovery called %d times", f.topics.calls)
	}
	if res.Topic.Title != "Robots in warehouses" || res.Topic.Source != types.SourceManual {
		t.Errorf("topic = %+v", res.Topic)
	}
	if f.assembler.calls != 0 || res.VideoPath != "" {
		t.Errorf("render should be skipped in test mode")
	}
	if !f.journal.has(runlog.CategoryDecision + ": Skipping video render") {
		t.Errorf("missing skip decision in %v", f.journal.thoughts)
	}
}

func TestRunTopsUpVisuals(t *testing.T) {
	f := newFixture(t)
	f.visuals.collected = 4

	res, err := f.pipeline.Run(context.Background(), Request{Topic: "x", SkipRender: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if f.visuals.topUps != 1 || len(res.Visuals) != config.TargetVisuals {
		t.Errorf("topUps = %d visuals = %d", f.visuals.topUps, len(res.Visuals))
	}
	if res.Compliance.VisualSafety != types.VisualSafe {
		t.Errorf("visual safety = %q", res.Compliance.VisualSafety)
	}
}

func TestRunShortScriptObservation(t *testing.T) {
	f := newFixture(t)
	f.scripts.words = 300

	if _, err := f.pipeline.Run(context.Background(), Request{Topic: "x", SkipRender: true}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !f.journal.has(runlog.CategoryObservation + ": Script shorter than optimal") {
		t.Errorf("missing short-script observation in %v", f.journal.thoughts)
	}
}

func TestRunFailures(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(f *fixture)
		req     Request
		wantErr error
	}{
		{
			name:    "no topics",
			setup:   func(f *fixture) { f.topics.ok = false },
			req:     Request{Discover: true},
			wantErr: ErrNoTopic,
		},
		{
			name:    "script",
			setup:   func(f *fixture) { f.scripts.err = errScript },
			req:     Request{Topic: "x"},
			wantErr: errScript,
		},
		{
			name:    "narration",
			setup:   func(f *fixture) { f.narrator.err = errNarration },
			req:     Request{Topic: "x"},
			wantErr: errNarration,
		},
		{
			name:    "assembly",
			setup:   func(f *fixture) { f.assembler.err = assembler.ErrNoVisuals },
			req:     Request{Topic: "x"},
			wantErr: assembler.ErrNoVisuals,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f)

			_, err := f.pipeline.Run(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if !f.journal.ended || f.journal.success {
				t.Errorf("journal should end unsuccessfully: %+v", f.journal)
			}
			if !f.journal.has(runlog.CategoryError + ": Pipeline failed") {
				t.Errorf("failure not journaled: %v", f.journal.thoughts)
			}
			last := f.events.events[len(f.events.events)-1]
			if last.Status != events.StatusFailed {
				t.Errorf("last event = %+v", last)
			}
			if len(f.notifier.reviews) != 0 || len(f.archive.files) != 0 {
				t.Error("failed run should not notify or archive")
			}
			if seen, _ := f.seen.Seen(context.Background(), "abc123"); seen {
				t.Error("failed run marked topic as produced")
			}
		})
	}
}

var (
	errScript    = errors.New("script generation: retries exhausted")
	errNarration = errors.New("no chunk produced audio")
)

func TestVerifyConfiguration(t *testing.T) {
	f := newFixture(t)
	f.pipeline.cfg.LLM.OpenAIKey = ""
	f.pipeline.cfg.Providers.PexelsKey = ""

	warnings := f.pipeline.VerifyConfiguration()
	if len(warnings) != 2 {
		t.Fatalf("warnings = %v", warnings)
	}
	if len(f.journal.decisions) != 1 || f.journal.decisions[0] != "Use AI-generated images only" {
		t.Errorf("decisions = %v", f.journal.decisions)
	}
}

func TestCheckProject(t *testing.T) {
	f := newFixture(t)
	if _, err := f.pipeline.Run(context.Background(), Request{Topic: "x", SkipRender: true}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	f.pipeline.now = func() time.Time { return time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) }
	report, err := f.pipeline.CheckProject("video_20260301_093000")
	if err != nil {
		t.Fatalf("CheckProject: %v", err)
	}
	if report.VisualSafety != types.VisualSafe {
		t.Errorf("report = %+v", report)
	}

	_, err = f.pipeline.CheckProject("video_missing")
	if !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("err = %v, want ErrProjectNotFound", err)
	}
}

func TestLoadManifestDerivesScriptCounts(t *testing.T) {
	dir := t.TempDir()
	s := types.NewScript("Robots", strings.Repeat("word ", 150))
	s.WordCount = 1
	s.Duration = 1
	if err := SaveManifest(ManifestPath(dir, "video_1"), types.ProjectManifest{ProjectID: "video_1", Script: s}); err != nil {
		t.Fatalf("SaveManifest: %v", err)
	}

	m, err := LoadManifest(dir, "video_1")
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Script.WordCount != 150 || m.Script.Duration != types.EstimateDuration(150) {
		t.Fatalf("script counts = %d words, %ds", m.Script.WordCount, m.Script.Duration)
	}
}

func TestExportScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.md")
	s := types.NewScript("Robots", strings.Repeat("word ", 150))
	if err := ExportScript(path, types.Topic{Title: "Robots"}, s); err != nil {
		t.Fatalf("ExportScript: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	for _, want := range []string{"# Robots\n\n", "**Word Count:** 150\n", "**Estimated Duration:** " + types.FormatTimestamp(60), "---\n\nword word"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}
