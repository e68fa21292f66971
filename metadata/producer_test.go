package metadata

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"robojobs/llm"
	"robojobs/retry"
	"robojobs/types"
)

type fakeGenerator struct {
	text  string
	err   error
	calls int
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) Generate(context.Context, llm.Request) (string, error) {
	f.calls++
	return f.text, f.err
}

func testProducer(gen llm.Generator) *Producer {
	p := NewProducer(gen, "Ai / Robots / Unemployment", nil)
	p.policy = retry.Policy{Name: "generate titles", Attempts: 2}
	return p
}

func TestParseTitles(t *testing.T) {
	text := `Here you go:
1. WARNING: Robots Are Coming for Warehouse Jobs
2) "The 2026 Layoff Wave Nobody Saw Coming"

3.   AI Replaced 2 Million Workers - Now What?
Not a title`

	got := ParseTitles(text)
	want := []string{
		"WARNING: Robots Are Coming for Warehouse Jobs",
		"The 2026 Layoff Wave Nobody Saw Coming",
		"AI Replaced 2 Million Workers - Now What?",
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("title %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTitlesFromGenerator(t *testing.T) {
	var lines []string
	for i := 1; i <= 12; i++ {
		lines = append(lines, strings.Repeat("x", i)+" title")
	}
	numbered := make([]string, len(lines))
	for i, l := range lines {
		numbered[i] = string(rune('0'+i%10)) + ". " + l
	}
	gen := &fakeGenerator{text: strings.Join(numbered, "\n")}

	titles := testProducer(gen).Titles(context.Background(), "AI layoffs")
	if len(titles) != 10 {
		t.Fatalf("expected 10 titles, got %d", len(titles))
	}
}

func TestTitlesFallBackToTemplates(t *testing.T) {
	tests := []struct {
		name string
		gen  llm.Generator
	}{
		{name: "no generator", gen: nil},
		{name: "generator error", gen: &fakeGenerator{err: errors.New("quota exceeded")}},
		{name: "unnumbered response", gen: &fakeGenerator{text: "I cannot help with that."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			titles := testProducer(tt.gen).Titles(context.Background(), "AI Layoffs")
			if len(titles) != 10 {
				t.Fatalf("expected 10 template titles, got %d", len(titles))
			}
			if titles[1] != "WARNING: AI Layoffs Is Changing Everything" {
				t.Fatalf("unexpected template title %q", titles[1])
			}
		})
	}
}

func TestTimestampsScaleWithDuration(t *testing.T) {
	full := Timestamps(900)
	if len(full) != 10 {
		t.Fatalf("expected 10 timestamps, got %d", len(full))
	}
	if full[2] != "2:00 - The Current State of AI & Robotics" {
		t.Fatalf("unexpected chapter %q", full[2])
	}
	if full[9] != "15:00 - Conclusion & What You Can Do" {
		t.Fatalf("unexpected conclusion %q", full[9])
	}

	half := Timestamps(450)
	if half[2] != "1:00 - The Current State of AI & Robotics" {
		t.Fatalf("chapter not scaled: %q", half[2])
	}
	if half[8] != "7:00 - Expert Predictions" {
		t.Fatalf("chapter not scaled: %q", half[8])
	}
	if half[9] != "7:00 - Conclusion & What You Can Do" {
		t.Fatalf("unexpected conclusion %q", half[9])
	}
}

func TestTags(t *testing.T) {
	tags := Tags("Humanoid robots, Tesla and the AI jobs crisis")

	has := func(tag string) bool {
		for _, t := range tags {
			if t == tag {
				return true
			}
		}
		return false
	}
	for _, want := range []string{"AI", "robotics", "humanoid", "tesla", "crisis"} {
		if !has(want) {
			t.Fatalf("missing tag %q in %v", want, tags)
		}
	}
	for _, unwanted := range []string{"the", "and", "jobs,"} {
		if has(unwanted) {
			t.Fatalf("unexpected tag %q", unwanted)
		}
	}

	long := Tags(strings.Repeat("wordy ", 5) + "alpha bravo charlie delta echoes foxtrot golfing hotels indigo juliet kilos")
	if len(long) != 30 {
		t.Fatalf("tags should be capped at 30, got %d", len(long))
	}
}

func TestGenerate(t *testing.T) {
	script := types.Script{
		Topic: "AI Mass Layoffs in 2026",
		Hook:  strings.Repeat("What if robots replaced you? ", 20),
	}

	meta := testProducer(nil).Generate(context.Background(), script, 960)
	if meta.BestTitle != meta.Titles[0] {
		t.Fatalf("best title should be the first option")
	}
	if len(meta.Hashtags) != 10 || len(meta.ThumbnailPrompts) != 5 {
		t.Fatalf("unexpected hashtags/prompts: %d/%d", len(meta.Hashtags), len(meta.ThumbnailPrompts))
	}
	if meta.Category != "Science & Technology" {
		t.Fatalf("unexpected category %q", meta.Category)
	}
	if !strings.Contains(meta.Description, "16:00 - Conclusion & What You Can Do") {
		t.Fatalf("description missing scaled conclusion:\n%s", meta.Description)
	}
	if !strings.Contains(meta.Description, "© 2026 Ai / Robots / Unemployment") {
		t.Fatalf("description missing channel name")
	}
	if strings.Contains(meta.Description, strings.Repeat("What if robots replaced you? ", 8)) {
		t.Fatalf("hook should be truncated to 200 characters")
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "video_metadata.json")
	meta := types.VideoMetadata{Titles: []string{"a"}, BestTitle: "a", Tags: []string{"AI"}}
	if err := Save(path, meta); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.BestTitle != "a" || len(got.Tags) != 1 {
		t.Fatalf("unexpected metadata %+v", got)
	}
}
