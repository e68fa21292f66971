// Package assembler renders the final video from narration and visuals and
// derives the vertical shorts.
package assembler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"robojobs/config"
	"robojobs/media"
	"robojobs/retry"
	"robojobs/runlog"
	"robojobs/types"
)

// State is a stage of the assembly state machine
type State string

const (
	StateIdle            State = "idle"
	StateLoadedAudio     State = "loaded_audio"
	StateTimed           State = "timed"
	StateVisualsLoaded   State = "visuals_loaded"
	StateSequenced       State = "sequenced"
	StateCaptioned       State = "captioned"
	StateMuxed           State = "muxed"
	StateRendered        State = "rendered"
	StateShortsExtracted State = "shorts_extracted"
	StateDone            State = "done"
	StateFailed          State = "failed"
)

var (
	// ErrNoVisuals is returned before anything is rendered when the project has no visuals
	ErrNoVisuals = errors.New("no visuals to assemble")
	// ErrNoAudio is returned when the project has no narration track
	ErrNoAudio = errors.New("no narration audio")
)

// Options toggles the optional transitions
type Options struct {
	Captions bool
	Shorts   bool
}

// Assembler turns a VideoProject into a rendered video
type Assembler struct {
	outputDir string
	workDir   string
	logsDir   string
	runner    media.Runner
	durations media.DurationReader
	journal   runlog.Recorder
	policy    retry.Policy
	now       func() time.Time

	mu    sync.Mutex
	state State
}

// New creates an assembler writing videos to outputDir, intermediate slot
// clips to workDir and metrics to logsDir
func New(outputDir, workDir, logsDir string, journal runlog.Recorder) (*Assembler, error) {
	for _, dir := range []string{outputDir, workDir, logsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if journal == nil {
		journal = runlog.Nop{}
	}
	return &Assembler{
		outputDir: outputDir,
		workDir:   workDir,
		logsDir:   logsDir,
		runner:    media.Run,
		durations: media.FFProbe{},
		journal:   journal,
		policy:    retry.Policy{Attempts: config.LoadAttempts, Delay: config.LoadDelay},
		now:       time.Now,
		state:     StateIdle,
	}, nil
}

// WithMedia replaces the ffprobe and ffmpeg backends
func (a *Assembler) WithMedia(durations media.DurationReader, runner media.Runner) *Assembler {
	a.durations = durations
	a.runner = runner
	return a
}

// State reports where the most recent assembly got to
func (a *Assembler) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Assembler) setState(s State) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
}

// assembly carries one project through the transitions
type assembly struct {
	project  types.VideoProject
	opts     Options
	metrics  *Metrics
	work     string
	duration float64
	segment  float64
	slots    []string
	sequence *ffmpeg.Stream
	video    *ffmpeg.Stream
	output   *ffmpeg.Stream
	rendered string
}

type transition struct {
	state State
	name  string
	run   func(context.Context, *assembly) (map[string]any, error)
}

// Assemble renders the project. Any failure moves the machine to
// StateFailed, removes partial output and is returned to the caller.
func (a *Assembler) Assemble(ctx context.Context, project types.VideoProject, opts Options) (types.VideoProject, error) {
	log.Printf("🎬 Assembling video: %s...", truncate(project.Title, 50))
	start := a.now()

	run := &assembly{
		project: project,
		opts:    opts,
		metrics: newMetrics(project.ID, a.logsDir, a.now),
		work:    filepath.Join(a.workDir, "video_work", project.ID),
	}
	defer os.RemoveAll(run.work)

	if len(project.Visuals) == 0 {
		return project, a.fail(run, "no_visuals", ErrNoVisuals)
	}

	transitions := []transition{
		{StateLoadedAudio, "load_audio", a.loadAudio},
		{StateTimed, "calculate_timing", a.calculateTiming},
		{StateVisualsLoaded, "load_visuals", a.loadVisuals},
		{StateSequenced, "concatenate_visuals", a.sequence},
		{StateCaptioned, "add_captions", a.caption},
		{StateMuxed, "add_audio", a.mux},
		{StateRendered, "render_video", a.render},
		{StateShortsExtracted, "generate_shorts", a.shorts},
	}

	for _, t := range transitions {
		if err := ctx.Err(); err != nil {
			return project, a.fail(run, "cancelled", err)
		}
		stepStart := a.now()
		details, err := t.run(ctx, run)
		if err != nil {
			kind := "assembly_failed"
			if errors.Is(err, ErrNoVisuals) {
				kind = "no_visuals"
			}
			return project, a.fail(run, kind, fmt.Errorf("%s: %w", t.name, err))
		}
		run.metrics.Step(t.name, details, a.now().Sub(stepStart))
		a.setState(t.state)
	}

	total := a.now().Sub(start)
	run.metrics.Signal("total_assembly_time", total.Seconds(), 300)
	run.metrics.Signal("output_duration", run.duration, config.MinDuration)
	if _, err := run.metrics.Finalize(true); err != nil {
		log.Printf("⚠️ %v", err)
	}
	a.setState(StateDone)

	log.Printf("✅ Video assembled successfully!")
	log.Printf("   Output: %s", run.project.OutputPath)
	log.Printf("   Duration: %s", types.FormatTimestamp(int(run.duration)))
	log.Printf("   Shorts: %d", len(run.project.Shorts))
	log.Printf("   Time: %.1fs", total.Seconds())
	a.journal.Think(runlog.CategoryInsight, fmt.Sprintf("Video rendered: %s", run.project.OutputPath))

	return run.project, nil
}

func (a *Assembler) fail(run *assembly, kind string, err error) error {
	run.metrics.Error(kind, err.Error(), false)
	if _, ferr := run.metrics.Finalize(false); ferr != nil {
		log.Printf("⚠️ %v", ferr)
	}
	if run.rendered != "" {
		os.Remove(run.rendered)
	}
	a.setState(StateFailed)
	a.journal.Think(runlog.CategoryError, fmt.Sprintf("Video assembly failed: %v", err))
	log.Printf("❌ Video assembly failed: %v", err)
	return err
}

func (a *Assembler) loadAudio(_ context.Context, run *assembly) (map[string]any, error) {
	if run.project.AudioPath == "" {
		return nil, ErrNoAudio
	}
	run.duration = run.project.AudioDuration
	if run.duration <= 0 {
		d, err := a.durations.Duration(run.project.AudioPath)
		if err != nil {
			return nil, err
		}
		run.duration = d
	}
	if run.duration <= 0 {
		return nil, ErrNoAudio
	}
	run.metrics.Signal("audio_duration", run.duration, config.MinDuration)
	return map[string]any{"duration": run.duration, "file": run.project.AudioPath}, nil
}

func (a *Assembler) calculateTiming(_ context.Context, run *assembly) (map[string]any, error) {
	count := len(run.project.Visuals)
	if count == 0 {
		return nil, ErrNoVisuals
	}
	run.segment = Timeline(run.duration, count)[0]
	return map[string]any{
		"total_duration":   run.duration,
		"num_visuals":      count,
		"segment_duration": run.segment,
	}, nil
}

// loadVisuals renders every visual into a normalized slot clip of exactly
// one segment. A visual that cannot be loaded gets a placeholder slot so
// the slot count always matches the narration.
func (a *Assembler) loadVisuals(ctx context.Context, run *assembly) (map[string]any, error) {
	if err := os.MkdirAll(run.work, 0o755); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}

	loaded := 0
	for i, v := range run.project.Visuals {
		path := filepath.Join(run.work, fmt.Sprintf("slot_%03d.mp4", i))
		if err := a.loadVisual(ctx, v, run.segment, path); err != nil {
			run.metrics.Error("visual_load_failed", fmt.Sprintf("Visual %d failed, using placeholder: %v", i, err), true)
			if err := a.runner(placeholderStream(run.segment, path)); err != nil {
				return nil, fmt.Errorf("placeholder for slot %d: %w", i, err)
			}
		} else {
			loaded++
		}
		run.slots = append(run.slots, path)
	}

	total := len(run.project.Visuals)
	run.metrics.Signal("visuals_loaded_pct", float64(loaded)/float64(total)*100, 80)
	return map[string]any{"total": total, "loaded": loaded, "failed": total - loaded}, nil
}

func (a *Assembler) loadVisual(ctx context.Context, v types.Visual, segment float64, path string) error {
	if v.LocalPath == "" {
		return fmt.Errorf("visual %s was never downloaded", v.ID)
	}
	if _, err := os.Stat(v.LocalPath); err != nil {
		return fmt.Errorf("visual file not found: %s", v.LocalPath)
	}

	policy := a.policy
	policy.Name = "load visual " + v.ID
	_, err := retry.Do(ctx, policy, func(context.Context) (struct{}, error) {
		return struct{}{}, a.runner(slotStream(v, segment, path))
	})
	return err
}

func (a *Assembler) sequence(_ context.Context, run *assembly) (map[string]any, error) {
	list := filepath.Join(run.work, "slots.txt")
	var b strings.Builder
	for _, slot := range run.slots {
		abs, err := filepath.Abs(slot)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(abs, "'", `'\''`))
	}
	if err := os.WriteFile(list, []byte(b.String()), 0o644); err != nil {
		return nil, fmt.Errorf("write slot list: %w", err)
	}

	run.sequence = ffmpeg.Input(list, ffmpeg.KwArgs{"f": "concat", "safe": 0})
	run.video = run.sequence.Video()
	return map[string]any{"slots": len(run.slots), "result_duration": run.segment * float64(len(run.slots))}, nil
}

func (a *Assembler) caption(_ context.Context, run *assembly) (map[string]any, error) {
	if !run.opts.Captions {
		return map[string]any{"skipped": true}, nil
	}
	assPath := filepath.Join(run.work, "title.ass")
	if err := writeTitleCard(assPath, run.project.Title, config.TitleCardDuration); err != nil {
		return nil, fmt.Errorf("write title card: %w", err)
	}
	run.video = ffmpeg.Filter([]*ffmpeg.Stream{run.video}, "ass", ffmpeg.Args{filterPath(assPath)})
	return map[string]any{"title_duration": config.TitleCardDuration}, nil
}

func (a *Assembler) mux(_ context.Context, run *assembly) (map[string]any, error) {
	audio := ffmpeg.Input(run.project.AudioPath).Audio()
	run.rendered = filepath.Join(a.outputDir, fmt.Sprintf("%s_%s.mp4", run.project.ID, a.now().Format("20060102_150405")))

	run.output = ffmpeg.Output([]*ffmpeg.Stream{run.video, audio}, run.rendered, ffmpeg.KwArgs{
		"c:v":      config.VideoCodec,
		"c:a":      config.AudioCodec,
		"b:a":      config.AudioBitrate,
		"preset":   config.VideoPreset,
		"r":        config.VideoFPS,
		"pix_fmt":  "yuv420p",
		"shortest": "",
	}).OverWriteOutput()
	return map[string]any{"video_duration": run.segment * float64(len(run.slots)), "audio_duration": run.duration}, nil
}

func (a *Assembler) render(_ context.Context, run *assembly) (map[string]any, error) {
	log.Printf("🔄 Rendering video... (this may take a while)")
	if err := a.runner(run.output); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %w", err)
	}
	info, err := os.Stat(run.rendered)
	if err != nil {
		return nil, fmt.Errorf("rendered file missing: %w", err)
	}
	run.project.OutputPath = run.rendered
	return map[string]any{
		"output_file":  run.rendered,
		"file_size_mb": float64(info.Size()) / (1024 * 1024),
	}, nil
}

func (a *Assembler) shorts(_ context.Context, run *assembly) (map[string]any, error) {
	if !run.opts.Shorts {
		return map[string]any{"skipped": true}, nil
	}
	paths, err := a.extractShorts(run.rendered, run.project.ID, run.duration, run.metrics)
	if err != nil {
		return nil, err
	}
	run.project.Shorts = paths
	return map[string]any{"count": len(paths)}, nil
}

// slotStream normalizes one visual to the output resolution and frame rate
// and holds it for exactly segment seconds. Videos loop, images are stills.
func slotStream(v types.Visual, segment float64, output string) *ffmpeg.Stream {
	kw := ffmpeg.KwArgs{"t": media.Seconds(segment)}
	if v.Kind == types.KindVideo {
		kw["stream_loop"] = -1
	} else {
		kw["loop"] = 1
	}
	return normalize(ffmpeg.Input(v.LocalPath, kw), segment, output)
}

func placeholderStream(segment float64, output string) *ffmpeg.Stream {
	src := fmt.Sprintf("color=c=%s:s=%dx%d:r=%d", config.PlaceholderColor, config.VideoWidth, config.VideoHeight, config.VideoFPS)
	return normalize(ffmpeg.Input(src, ffmpeg.KwArgs{"f": "lavfi", "t": media.Seconds(segment)}), segment, output)
}

func normalize(in *ffmpeg.Stream, segment float64, output string) *ffmpeg.Stream {
	video := in.Video().
		Filter("scale", ffmpeg.Args{}, ffmpeg.KwArgs{
			"w":                           config.VideoWidth,
			"h":                           config.VideoHeight,
			"force_original_aspect_ratio": "decrease",
		}).
		Filter("pad", ffmpeg.Args{}, ffmpeg.KwArgs{
			"w": config.VideoWidth,
			"h": config.VideoHeight,
			"x": "(ow-iw)/2",
			"y": "(oh-ih)/2",
		}).
		Filter("setsar", ffmpeg.Args{"1"}).
		Filter("fps", ffmpeg.Args{strconv.Itoa(config.VideoFPS)})

	return ffmpeg.Output([]*ffmpeg.Stream{video}, output, ffmpeg.KwArgs{
		"c:v":     config.VideoCodec,
		"preset":  config.ShortsPreset,
		"pix_fmt": "yuv420p",
		"t":       media.Seconds(segment),
		"an":      "",
	}).OverWriteOutput()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
