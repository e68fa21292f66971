// Package narration turns a script into a single narration track.
package narration

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"robojobs/config"
	"robojobs/media"
	"robojobs/retry"
	"robojobs/runlog"
	"robojobs/types"
)

var (
	// ErrEmptyText is returned when nothing speakable is left after cleaning
	ErrEmptyText = errors.New("narration text is empty")
	// ErrNoAudio is returned when every chunk failed to synthesize
	ErrNoAudio = errors.New("no narration chunk could be synthesized")
)

// Narrator synthesizes a script chunk by chunk and stitches the chunks together
type Narrator struct {
	synth      Synthesizer
	durations  media.DurationReader
	runner     media.Runner
	journal    runlog.Recorder
	dir        string
	chunkChars int
	gap        time.Duration
	policy     retry.Policy
}

// NewNarrator writes narration tracks into dir
func NewNarrator(synth Synthesizer, dir string, journal runlog.Recorder) (*Narrator, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create narration dir: %w", err)
	}
	if journal == nil {
		journal = runlog.Nop{}
	}
	return &Narrator{
		synth:      synth,
		durations:  media.FFProbe{},
		runner:     media.Run,
		journal:    journal,
		dir:        dir,
		chunkChars: config.NarrationChunkChars,
		gap:        config.NarrationGap,
		policy:     retry.Policy{Attempts: config.SynthesisAttempts, Delay: config.SynthesisDelay},
	}, nil
}

// WithMedia replaces the ffprobe and ffmpeg backends
func (n *Narrator) WithMedia(durations media.DurationReader, runner media.Runner) *Narrator {
	n.durations = durations
	n.runner = runner
	return n
}

// Narrate synthesizes text into dir/name. A chunk that keeps failing is
// dropped, and the reported duration only counts the audio actually present.
func (n *Narrator) Narrate(ctx context.Context, text, name string) (types.NarrationAudio, error) {
	clean := Clean(text)
	if clean == "" {
		return types.NarrationAudio{}, ErrEmptyText
	}

	chunks := Chunk(clean, n.chunkChars)
	log.Printf("🎙️ Synthesizing %d chunk(s) with %s", len(chunks), n.synth.Name())

	base := trimExt(name)
	var (
		paths []string
		total float64
	)
	for i, chunk := range chunks {
		path := filepath.Join(n.dir, fmt.Sprintf("%s_chunk_%03d.mp3", base, i))

		policy := n.policy
		policy.Name = fmt.Sprintf("synthesize chunk %d/%d", i+1, len(chunks))
		_, err := retry.Do(ctx, policy, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, n.synth.Synthesize(ctx, chunk, path)
		})
		if err != nil {
			n.dropChunk(i, path, err)
			continue
		}

		d, err := n.durations.Duration(path)
		if err != nil {
			n.dropChunk(i, path, err)
			continue
		}
		paths = append(paths, path)
		total += d
	}
	defer removeAll(paths)

	if len(paths) == 0 {
		n.journal.Think(runlog.CategoryError, ErrNoAudio.Error())
		return types.NarrationAudio{}, ErrNoAudio
	}

	out := filepath.Join(n.dir, name)
	if err := n.runner(media.ConcatAudio(paths, n.gap, out)); err != nil {
		n.journal.Think(runlog.CategoryError, fmt.Sprintf("Narration concat failed: %v", err))
		return types.NarrationAudio{}, fmt.Errorf("concatenate narration: %w", err)
	}

	total += n.gap.Seconds() * float64(len(paths)-1)
	if dropped := len(chunks) - len(paths); dropped > 0 {
		n.journal.Think(runlog.CategoryObservation,
			fmt.Sprintf("Narration is missing %d of %d chunks", dropped, len(chunks)))
	}
	log.Printf("✓ Narration ready: %s (%s)", filepath.Base(out), types.FormatTimestamp(int(total)))

	return types.NarrationAudio{Path: out, Duration: total}, nil
}

func (n *Narrator) dropChunk(i int, path string, err error) {
	log.Printf("⚠️ Dropping narration chunk %d: %v", i+1, err)
	n.journal.Think(runlog.CategoryError, fmt.Sprintf("Narration chunk %d dropped: %v", i+1, err))
	os.Remove(path)
}

func removeAll(paths []string) {
	for _, p := range paths {
		os.Remove(p)
	}
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
