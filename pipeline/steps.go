package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"robojobs/assembler"
	"robojobs/config"
	"robojobs/events"
	"robojobs/metadata"
	"robojobs/notify"
	"robojobs/runlog"
	"robojobs/types"
)

// run carries the state of one Pipeline.Run
type run struct {
	*Pipeline
	req      Request
	res      *Result
	progress *runlog.Progress
	quality  *runlog.QualityMetrics
}

func (r *run) step(ctx context.Context, name string) {
	r.progress.Step(name)
	if r.req.Observer != nil {
		r.req.Observer.StepStarted(r.stepNumber(name), TotalSteps, name)
	}
	r.emit(ctx, name, events.StatusStarted, "")
}

func (r *run) stepNumber(name string) int {
	for i, s := range []string{StepTopic, StepScript, StepVisuals, StepNarration, StepAssembly, StepMetadata, StepExport, StepQuality} {
		if s == name {
			return i + 1
		}
	}
	return 0
}

func (r *run) emit(ctx context.Context, step, status, message string) {
	err := r.deps.Events.Publish(ctx, events.Event{
		RunID:     r.res.RunID,
		ProjectID: r.res.ProjectID,
		Step:      step,
		Status:    status,
		Message:   message,
		Time:      r.now().UTC(),
	})
	if err != nil {
		log.Printf("⚠️ Could not publish %s event: %v", step, err)
	}
}

func (r *run) addFile(path string) {
	if path != "" {
		r.res.Files = append(r.res.Files, path)
	}
}

func (r *run) topic(ctx context.Context) error {
	j := r.deps.Journal
	j.Think(runlog.CategoryAnalysis, "Beginning topic discovery phase")

	manual := strings.TrimSpace(r.req.Topic)
	if r.req.Discover || manual == "" {
		j.Decide("Auto-discover trending topic", "No specific topic provided, will find best trending topic")
		t, ok := r.deps.Topics.Best(ctx)
		if !ok {
			j.Think(runlog.CategoryError, "No topics discovered from news sources")
			return ErrNoTopic
		}
		if r.deps.Enrich != nil && t.URL != "" {
			batch := []types.Topic{t}
			r.deps.Enrich(batch)
			t = batch[0]
		}
		j.Think(runlog.CategoryInsight, fmt.Sprintf("Best topic scored %.0f: %s", t.Score, truncate(t.Title, 50)))
		r.res.Topic = t
	} else {
		r.res.Topic = types.ManualTopic(manual)
		j.Think(runlog.CategoryObservation, "Using provided topic: "+truncate(manual, 50))
	}

	r.quality.Topic = r.res.Topic.Title
	log.Printf("📰 Topic: %s", r.res.Topic.Title)
	return nil
}

func (r *run) script(ctx context.Context) error {
	j := r.deps.Journal
	j.Think(runlog.CategoryAnalysis, "Beginning script generation")

	s, err := r.deps.Scripts.Generate(ctx, r.res.Topic, "")
	if err != nil {
		return err
	}

	if s.WordCount < config.ShortScriptWords {
		j.Think(runlog.CategoryObservation, fmt.Sprintf("Script shorter than optimal (%d words)", s.WordCount))
	} else {
		j.Think(runlog.CategoryInsight, fmt.Sprintf("Script meets target length: %d words", s.WordCount))
	}

	r.res.Script = s
	r.quality.ScriptWords = s.WordCount
	r.quality.EstimatedDuration = s.Duration
	log.Printf("📝 Script: %d words, ~%d min", s.WordCount, s.Duration/60)
	return nil
}

func (r *run) visuals(ctx context.Context) error {
	j := r.deps.Journal
	j.Think(runlog.CategoryAnalysis, "Sourcing visuals from stock + AI generation")

	text := r.res.Script.FullText
	vs := r.deps.Visuals.Collect(ctx, r.res.Topic.Title, text, config.TargetVisuals)
	j.Think(runlog.CategoryObservation, fmt.Sprintf("Collected %d visuals", len(vs)))

	if len(vs) < config.MinVisuals {
		j.Decide("Generate additional AI images",
			fmt.Sprintf("Only %d visuals found, need more for 15+ min video", len(vs)))
		vs = r.deps.Visuals.TopUp(text, vs, config.TargetVisuals)
	}

	vs = r.deps.Downloader.DownloadAll(ctx, vs)
	r.res.Visuals = vs
	r.quality.VisualsCount = len(vs)
	log.Printf("🎬 Visuals: %d downloaded", len(vs))
	return nil
}

func (r *run) narrate(ctx context.Context) error {
	j := r.deps.Journal
	j.Think(runlog.CategoryAnalysis, "Generating voiceover audio")

	audio, err := r.deps.Narrator.Narrate(ctx, r.res.Script.FullText, r.res.ProjectID+"_voice.mp3")
	if err != nil {
		return fmt.Errorf("narration: %w", err)
	}

	j.Think(runlog.CategoryObservation, fmt.Sprintf("Voiceover duration: %.1fs", audio.Duration))
	r.res.Audio = audio
	r.quality.AudioDuration = audio.Duration
	log.Printf("🎙️ Voiceover: %s", types.FormatTimestamp(int(audio.Duration)))
	return nil
}

func (r *run) assemble(ctx context.Context) error {
	j := r.deps.Journal
	if r.req.SkipRender {
		j.Think(runlog.CategoryDecision, "Skipping video render (test mode)")
		log.Printf("⏭️ Skipping video render (test mode)")
		return nil
	}
	j.Think(runlog.CategoryAnalysis, "Beginning video assembly with ffmpeg")

	project := types.VideoProject{
		ID:            r.res.ProjectID,
		Title:         r.res.Topic.Title,
		Script:        r.res.Script.FullText,
		Visuals:       r.res.Visuals,
		AudioPath:     r.res.Audio.Path,
		AudioDuration: r.res.Audio.Duration,
	}
	out, err := r.deps.Assembler.Assemble(ctx, project, assembler.Options{Captions: true, Shorts: true})
	if err != nil {
		return fmt.Errorf("assembly: %w", err)
	}

	r.res.VideoPath = out.OutputPath
	r.res.Shorts = out.Shorts
	r.addFile(out.OutputPath)
	for _, s := range out.Shorts {
		r.addFile(s)
	}
	j.Think(runlog.CategoryInsight, "Video rendered: "+out.OutputPath)
	return nil
}

func (r *run) metadata(ctx context.Context) error {
	j := r.deps.Journal
	j.Think(runlog.CategoryAnalysis, "Generating YouTube metadata")

	meta := r.deps.Metadata.Generate(ctx, r.res.Script, int(r.res.Audio.Duration))
	path := r.outputPath(r.res.ProjectID + "_metadata.json")
	if err := metadata.Save(path, meta); err != nil {
		return fmt.Errorf("save metadata: %w", err)
	}

	r.res.Metadata = meta
	r.addFile(path)
	j.Think(runlog.CategoryObservation, fmt.Sprintf("Generated %d title options", len(meta.Titles)))
	log.Printf("📋 Metadata saved: %s_metadata.json", r.res.ProjectID)
	return nil
}

func (r *run) export(ctx context.Context) error {
	j := r.deps.Journal
	id := r.res.ProjectID

	scriptPath := r.outputPath(id + "_script.md")
	if err := ExportScript(scriptPath, r.res.Topic, r.res.Script); err != nil {
		return err
	}
	r.addFile(scriptPath)
	log.Printf("📄 Script saved: %s_script.md", id)

	manifestPath := ManifestPath(r.cfg.Paths.Output, id)
	err := SaveManifest(manifestPath, types.ProjectManifest{
		ProjectID: id,
		Topic:     r.res.Topic,
		Script:    r.res.Script,
		Visuals:   r.res.Visuals,
		VideoPath: r.res.VideoPath,
		Shorts:    r.res.Shorts,
		CreatedAt: r.now().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	r.addFile(manifestPath)

	report := r.deps.Compliance.Check(r.res.Visuals, r.res.Script.FullText)
	r.res.Compliance = report
	reportPath, err := r.deps.Compliance.Save(report)
	if err != nil {
		j.Think(runlog.CategoryError, "Compliance report not saved: "+err.Error())
		log.Printf("⚠️ Compliance report not saved: %v", err)
	}
	r.addFile(reportPath)

	if report.Passed {
		j.Think(runlog.CategoryInsight, fmt.Sprintf("Compliance passed with score %d", report.Score))
	} else {
		j.Think(runlog.CategoryObservation, fmt.Sprintf("Compliance flagged for review (score %d)", report.Score))
	}

	err = r.deps.Notifier.NotifyReview(ctx, notify.Review{
		ProjectID:  id,
		Title:      r.res.Metadata.BestTitle,
		VideoPath:  r.res.VideoPath,
		Duration:   r.res.Audio.Duration,
		Compliance: report,
	})
	if err != nil {
		log.Printf("⚠️ Review notification failed: %v", err)
	}
	return nil
}

func (r *run) report(ctx context.Context) error {
	path := r.outputPath("quality_metrics.json")
	if err := r.quality.Save(path); err != nil {
		return err
	}
	r.addFile(path)

	if r.deps.Archive != nil {
		keys, err := r.deps.Archive.Upload(ctx, r.res.ProjectID, r.res.Files...)
		if err != nil {
			r.deps.Journal.Think(runlog.CategoryError, "Archive upload failed: "+err.Error())
			log.Printf("⚠️ Archive upload failed: %v", err)
		}
		r.res.ArchivedKeys = keys
	}

	if r.deps.Seen != nil {
		if err := r.deps.Seen.Mark(ctx, r.res.Topic.ID); err != nil {
			log.Printf("⚠️ Could not mark topic as produced: %v", err)
		}
	}
	return nil
}
