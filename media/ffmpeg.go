// Package media wraps the ffmpeg and ffprobe invocations shared by narration
// and assembly.
package media

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"robojobs/config"
)

// Runner executes a fully built ffmpeg graph. Tests swap it for a recorder.
type Runner func(*ffmpeg.Stream) error

// Run is the production Runner
func Run(s *ffmpeg.Stream) error {
	return s.Run()
}

// DurationReader reports the playable duration of a media file in seconds
type DurationReader interface {
	Duration(path string) (float64, error)
}

// FFProbe asks ffprobe for the container duration
type FFProbe struct{}

func (FFProbe) Duration(path string) (float64, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return 0, fmt.Errorf("reading duration of %s: %w", path, err)
	}
	return ParseDuration(out)
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ParseDuration extracts format.duration from ffprobe's JSON output
func ParseDuration(raw string) (float64, error) {
	var res ffprobeOutput
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return 0, fmt.Errorf("decoding ffprobe output: %w", err)
	}
	if res.Format.Duration == "" {
		return 0, fmt.Errorf("ffprobe output has no duration")
	}
	d, err := strconv.ParseFloat(res.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing duration %q: %w", res.Format.Duration, err)
	}
	return d, nil
}

// Seconds formats a duration in seconds the way ffmpeg options expect
func Seconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}

// ConcatAudio joins the inputs in order into one mp3, padding every input
// except the last with gap of silence.
func ConcatAudio(inputs []string, gap time.Duration, output string) *ffmpeg.Stream {
	streams := make([]*ffmpeg.Stream, 0, len(inputs))
	for i, in := range inputs {
		s := ffmpeg.Input(in).Audio()
		if gap > 0 && i < len(inputs)-1 {
			s = s.Filter("apad", ffmpeg.Args{}, ffmpeg.KwArgs{"pad_dur": Seconds(gap.Seconds())})
		}
		streams = append(streams, s)
	}

	joined := ffmpeg.Concat(streams, ffmpeg.KwArgs{"v": 0, "a": 1})
	return ffmpeg.Output([]*ffmpeg.Stream{joined}, output, ffmpeg.KwArgs{
		"c:a": "libmp3lame",
		"b:a": config.AudioBitrate,
	}).OverWriteOutput()
}
