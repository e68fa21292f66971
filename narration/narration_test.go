package narration

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"google.golang.org/api/option"

	"robojobs/retry"
)

type fakeSynth struct {
	fail  map[string]bool
	calls int
}

func (f *fakeSynth) Name() string { return "fake" }

func (f *fakeSynth) Synthesize(_ context.Context, text, path string) error {
	f.calls++
	if f.fail[text] {
		return errors.New("synthesis unavailable")
	}
	return os.WriteFile(path, []byte(text), 0o644)
}

type fakeDurations struct {
	duration float64
}

func (p fakeDurations) Duration(path string) (float64, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, err
	}
	return p.duration, nil
}

type recordingRunner struct {
	args [][]string
}

func (r *recordingRunner) run(s *ffmpeg.Stream) error {
	args := s.GetArgs()
	r.args = append(r.args, args)
	return os.WriteFile(outputArg(args), []byte("audio"), 0o644)
}

func outputArg(args []string) string {
	for i := len(args) - 1; i >= 0; i-- {
		if args[i] != "" && !strings.HasPrefix(args[i], "-") {
			return args[i]
		}
	}
	return ""
}

func newTestNarrator(t *testing.T, synth Synthesizer, runner *recordingRunner) *Narrator {
	t.Helper()
	n, err := NewNarrator(synth, t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewNarrator: %v", err)
	}
	n.policy = retry.Policy{Attempts: 2}
	return n.WithMedia(fakeDurations{duration: 10}, runner.run)
}

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "heading", in: "## HOOK (0:00-0:30)\nWhat if", want: "HOOK (0:00-0:30) What if"},
		{name: "visual cue", in: "Robots work. [VISUAL: factory floor] Humans watch.", want: "Robots work. Humans watch."},
		{name: "emphasis", in: "**Point 1: Scale** and *speed*", want: "Point 1: Scale and speed"},
		{name: "pause", in: "Wait [PAUSE] for it", want: "Wait ... for it"},
		{name: "long ellipsis", in: "And then.....", want: "And then..."},
		{name: "url", in: "Read https://example.com/a?b=c now", want: "Read now"},
		{name: "whitespace", in: "  many\n\n  spaces\t here ", want: "many spaces here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Fatalf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestChunkNeverSplitsWords(t *testing.T) {
	var words []string
	for i := 0; i < 400; i++ {
		words = append(words, fmt.Sprintf("word%d", i))
	}
	words = append(words, strings.Repeat("x", 120))
	text := strings.Join(words, " ")

	chunks := Chunk(text, 100)
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c == "" {
			t.Fatalf("chunk %d is empty", i)
		}
		if len(c) > 100 && strings.Contains(c, " ") {
			t.Fatalf("chunk %d exceeds the limit: %d bytes", i, len(c))
		}
	}
	if rejoined := strings.Join(strings.Fields(strings.Join(chunks, " ")), " "); rejoined != text {
		t.Fatalf("rejoined chunks differ from the original text")
	}
}

func TestChunkEmpty(t *testing.T) {
	if chunks := Chunk("   ", 100); len(chunks) != 0 {
		t.Fatalf("expected no chunks, got %v", chunks)
	}
}

func TestNarrateJoinsChunks(t *testing.T) {
	synth := &fakeSynth{}
	runner := &recordingRunner{}
	n := newTestNarrator(t, synth, runner)
	n.chunkChars = 20

	audio, err := n.Narrate(context.Background(), "one two three four five six seven eight nine ten", "video_voice.mp3")
	if err != nil {
		t.Fatalf("Narrate: %v", err)
	}

	// 3 chunks of 10s plus two 0.3s gaps
	if math.Abs(audio.Duration-30.6) > 1e-9 {
		t.Fatalf("duration = %v, want 30.6", audio.Duration)
	}
	if filepath.Base(audio.Path) != "video_voice.mp3" {
		t.Fatalf("unexpected path %s", audio.Path)
	}
	if _, err := os.Stat(audio.Path); err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if len(runner.args) != 1 {
		t.Fatalf("expected one ffmpeg run, got %d", len(runner.args))
	}

	leftovers, _ := filepath.Glob(filepath.Join(n.dir, "*_chunk_*.mp3"))
	if len(leftovers) != 0 {
		t.Fatalf("chunk files not cleaned up: %v", leftovers)
	}
}

func TestNarrateDropsFailedChunk(t *testing.T) {
	synth := &fakeSynth{fail: map[string]bool{"beta": true}}
	runner := &recordingRunner{}
	n := newTestNarrator(t, synth, runner)
	n.chunkChars = 5

	audio, err := n.Narrate(context.Background(), "alpha beta gamma", "voice.mp3")
	if err != nil {
		t.Fatalf("Narrate: %v", err)
	}
	// beta exhausted both attempts and is missing from the track
	if synth.calls != 4 {
		t.Fatalf("expected 4 synth calls, got %d", synth.calls)
	}
	if math.Abs(audio.Duration-20.3) > 1e-9 {
		t.Fatalf("duration = %v, want 20.3 for two chunks and one gap", audio.Duration)
	}
	args := strings.Join(runner.args[0], " ")
	if strings.Contains(args, "voice_chunk_001") {
		t.Fatalf("dropped chunk passed to ffmpeg: %s", args)
	}
}

func TestNarrateAllChunksFail(t *testing.T) {
	synth := &fakeSynth{fail: map[string]bool{"hello": true}}
	runner := &recordingRunner{}
	n := newTestNarrator(t, synth, runner)

	_, err := n.Narrate(context.Background(), "hello", "voice.mp3")
	if !errors.Is(err, ErrNoAudio) {
		t.Fatalf("expected ErrNoAudio, got %v", err)
	}
	if len(runner.args) != 0 {
		t.Fatalf("ffmpeg should not run without audio")
	}
}

func TestNarrateEmptyText(t *testing.T) {
	n := newTestNarrator(t, &fakeSynth{}, &recordingRunner{})
	if _, err := n.Narrate(context.Background(), "## [VISUAL: nothing]", "voice.mp3"); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
}

func TestGoogleTTS(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "text:synthesize") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Input struct {
				Text string `json:"text"`
			} `json:"input"`
			Voice struct {
				LanguageCode string `json:"languageCode"`
			} `json:"voice"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Input.Text != "hello there" || req.Voice.LanguageCode != "en-US" {
			t.Errorf("unexpected request %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"audioContent": base64.StdEncoding.EncodeToString([]byte("mp3-bytes")),
		})
	}))
	defer srv.Close()

	tts, err := NewGoogleTTS(context.Background(), "en-US-Neural2-D", "en-US",
		option.WithEndpoint(srv.URL+"/"), option.WithAPIKey("test-key"))
	if err != nil {
		t.Fatalf("NewGoogleTTS: %v", err)
	}

	path := filepath.Join(t.TempDir(), "chunk.mp3")
	if err := tts.Synthesize(context.Background(), "hello there", path); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "mp3-bytes" {
		t.Fatalf("unexpected audio %q (%v)", data, err)
	}
}
