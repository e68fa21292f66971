package narration

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"google.golang.org/api/option"
	"google.golang.org/api/texttospeech/v1"

	"robojobs/config"
)

// ErrNoEngine is returned when neither speech engine can be used
var ErrNoEngine = errors.New("no speech synthesis engine available")

// Synthesizer turns one chunk of text into an audio file at path
type Synthesizer interface {
	Synthesize(ctx context.Context, text, path string) error
	Name() string
}

// NewSynthesizer picks Google Cloud TTS when a key is configured and falls
// back to the edge-tts command line tool.
func NewSynthesizer(ctx context.Context, cfg config.NarrationConfig) (Synthesizer, error) {
	if cfg.Engine == "google" && cfg.TTSKey != "" {
		return NewGoogleTTS(ctx, cfg.Voice, cfg.Language, option.WithAPIKey(cfg.TTSKey))
	}
	if bin, err := exec.LookPath(cfg.EdgeTTS); err == nil {
		return NewEdgeTTS(bin, ""), nil
	}
	return nil, ErrNoEngine
}

// GoogleTTS synthesizes MP3 speech with the Cloud Text-to-Speech API
type GoogleTTS struct {
	svc      *texttospeech.Service
	voice    string
	language string
}

func NewGoogleTTS(ctx context.Context, voice, language string, opts ...option.ClientOption) (*GoogleTTS, error) {
	svc, err := texttospeech.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create text-to-speech service: %w", err)
	}
	return &GoogleTTS{svc: svc, voice: voice, language: language}, nil
}

func (g *GoogleTTS) Name() string { return "google-tts:" + g.voice }

func (g *GoogleTTS) Synthesize(ctx context.Context, text, path string) error {
	resp, err := g.svc.Text.Synthesize(&texttospeech.SynthesizeSpeechRequest{
		Input: &texttospeech.SynthesisInput{Text: text},
		Voice: &texttospeech.VoiceSelectionParams{
			LanguageCode: g.language,
			Name:         g.voice,
		},
		AudioConfig: &texttospeech.AudioConfig{
			AudioEncoding: "MP3",
			SpeakingRate:  1.0,
		},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}

	audio, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return fmt.Errorf("decode audio content: %w", err)
	}
	if len(audio) == 0 {
		return fmt.Errorf("synthesize: empty audio")
	}
	return os.WriteFile(path, audio, 0o644)
}

// EdgeTTS shells out to the edge-tts command line tool
type EdgeTTS struct {
	bin   string
	voice string
}

func NewEdgeTTS(bin, voice string) *EdgeTTS {
	if voice == "" {
		voice = "en-US-GuyNeural"
	}
	return &EdgeTTS{bin: bin, voice: voice}
}

func (e *EdgeTTS) Name() string { return "edge-tts:" + e.voice }

func (e *EdgeTTS) Synthesize(ctx context.Context, text, path string) error {
	cmd := exec.CommandContext(ctx, e.bin, "--voice", e.voice, "--text", text, "--write-media", path)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("edge-tts: %w: %s", err, out)
	}
	return nil
}
