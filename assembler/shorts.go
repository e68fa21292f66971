package assembler

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"robojobs/config"
	"robojobs/media"
)

// Window is a span of the rendered video, in seconds
type Window struct {
	Start    float64
	Duration float64
}

// ShortWindows returns the clip windows that fit inside a video of the
// given length. The opening hook is a short slice of the video; the later
// windows are full length and are left out when they run past the end.
func ShortWindows(total float64) []Window {
	if total <= 0 {
		return nil
	}

	var windows []Window
	for i, offset := range config.ShortsOffsets {
		start := total * offset
		if i == 0 {
			windows = append(windows, Window{Start: start, Duration: min(config.ShortsMaxDuration, total*config.ShortsHookFraction)})
			continue
		}
		if start+config.ShortsMaxDuration > total {
			continue
		}
		windows = append(windows, Window{Start: start, Duration: config.ShortsMaxDuration})
	}
	return windows
}

// Timeline splits the narration evenly across count visual slots
func Timeline(duration float64, count int) []float64 {
	if count <= 0 {
		return nil
	}
	segment := duration / float64(count)
	slots := make([]float64, count)
	for i := range slots {
		slots[i] = segment
	}
	return slots
}

func shortStream(video string, w Window, output string) *ffmpeg.Stream {
	in := ffmpeg.Input(video, ffmpeg.KwArgs{"ss": media.Seconds(w.Start), "t": media.Seconds(w.Duration)})

	// Center crop to 9:16, then scale to the Shorts resolution
	vertical := ffmpeg.Filter(
		[]*ffmpeg.Stream{in.Video()},
		"crop",
		ffmpeg.Args{},
		ffmpeg.KwArgs{"w": "ih*9/16", "h": "ih"},
	).Filter(
		"scale",
		ffmpeg.Args{},
		ffmpeg.KwArgs{"w": config.ShortsWidth, "h": config.ShortsHeight},
	)

	return ffmpeg.Output([]*ffmpeg.Stream{vertical, in.Audio()}, output, ffmpeg.KwArgs{
		"c:v":    config.VideoCodec,
		"c:a":    config.AudioCodec,
		"b:a":    config.AudioBitrate,
		"preset": config.ShortsPreset,
		"r":      config.VideoFPS,
	}).OverWriteOutput()
}

// extractShorts cuts vertical clips out of the rendered video. A clip that
// fails is logged and skipped.
func (a *Assembler) extractShorts(video, projectID string, total float64, metrics *Metrics) ([]string, error) {
	dir := filepath.Join(a.outputDir, "shorts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create shorts dir: %w", err)
	}

	var paths []string
	for i, w := range ShortWindows(total) {
		path := filepath.Join(dir, fmt.Sprintf("%s_short_%d.mp4", projectID, i+1))
		if err := a.runner(shortStream(video, w, path)); err != nil {
			log.Printf("⚠️ Failed to extract short %d: %v", i+1, err)
			metrics.Error("short_failed", fmt.Sprintf("short %d: %v", i+1, err), true)
			os.Remove(path)
			continue
		}
		paths = append(paths, path)
	}
	return paths, nil
}
