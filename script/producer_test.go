package script

import (
	"context"
	"errors"
	"strings"
	"testing"

	"robojobs/llm"
	"robojobs/retry"
	"robojobs/types"
)

type fakeGenerator struct {
	responses []string
	errs      []error
	calls     int
	lastReq   llm.Request
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) Generate(_ context.Context, req llm.Request) (string, error) {
	i := f.calls
	f.calls++
	f.lastReq = req
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", errors.New("no more responses")
}

const sampleScript = `## HOOK (0:00-0:30)
What if the robot you are about to see replaced a million jobs?

## OVERVIEW (0:30-2:00)
Today we look at humanoid robots.

## DEEP BREAKDOWN (2:00-12:00)
**Point 1: Warehouses**
Robots move boxes. [VISUAL: warehouse robot]

## IMPLICATIONS & BALANCE (12:00-15:00)
There are fears and opportunities.

## CONCLUSION & CTA (15:00+)
Subscribe for more.

## SHORTS EXCERPTS
1. By the end of 2026 humanoid robots could be working in every major warehouse in America.
2. Too short.
- Nobody is talking about what happens to the truck drivers once the warehouses are automated.
`

func fastPolicy() retry.Policy {
	return retry.Policy{Name: "generate script", Attempts: 3}
}

func TestParseSections(t *testing.T) {
	s := Parse("robots", sampleScript)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"hook", s.Hook, "What if the robot you are about to see replaced a million jobs?"},
		{"overview", s.Overview, "Today we look at humanoid robots."},
		{"breakdown", s.Breakdown, "**Point 1: Warehouses**\nRobots move boxes. [VISUAL: warehouse robot]"},
		{"implications", s.Implications, "There are fears and opportunities."},
		{"conclusion", s.Conclusion, "Subscribe for more."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Fatalf("%s = %q, want %q", tt.name, tt.got, tt.want)
			}
		})
	}

	if len(s.Shorts) != 2 {
		t.Fatalf("expected 2 shorts excerpts, got %d: %q", len(s.Shorts), s.Shorts)
	}
	if !strings.HasPrefix(s.Shorts[0], "By the end of 2026") {
		t.Fatalf("unexpected first excerpt %q", s.Shorts[0])
	}
	if s.WordCount != types.CountWords(sampleScript) {
		t.Fatalf("word count mismatch: %d", s.WordCount)
	}
}

func TestParseMissingHeadingLeavesSectionEmpty(t *testing.T) {
	s := Parse("robots", "## OVERVIEW\nOnly an overview here.\n")
	if s.Hook != "" || s.Conclusion != "" {
		t.Fatalf("expected missing sections to be empty, got hook=%q conclusion=%q", s.Hook, s.Conclusion)
	}
	if s.Overview != "Only an overview here." {
		t.Fatalf("unexpected overview %q", s.Overview)
	}
	if s.Shorts != nil {
		t.Fatalf("expected no shorts, got %v", s.Shorts)
	}
}

func TestExtractShortsCapsAtFive(t *testing.T) {
	var b strings.Builder
	b.WriteString("## SHORTS\n")
	for i := 1; i <= 7; i++ {
		b.WriteString("\n")
		b.WriteString(string(rune('0' + i)))
		b.WriteString(". This excerpt is comfortably longer than the fifty character minimum.")
	}

	if got := ExtractShorts(b.String()); len(got) != 5 {
		t.Fatalf("expected 5 excerpts, got %d", len(got))
	}
}

func TestGenerateRetriesThenSucceeds(t *testing.T) {
	gen := &fakeGenerator{
		errs:      []error{errors.New("rate limited"), nil},
		responses: []string{"", sampleScript},
	}
	p := NewProducer(gen, "system", nil).WithPolicy(fastPolicy())

	topic := types.Topic{Title: "Robots in warehouses", Source: "google_news", Keywords: []string{"robot workforce 2026"}}
	s, err := p.Generate(context.Background(), topic, "")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if gen.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", gen.calls)
	}
	if s.Topic != "Robots in warehouses" || s.Hook == "" {
		t.Fatalf("unexpected script %+v", s)
	}
	if gen.lastReq.Temperature != 0.7 || gen.lastReq.MaxTokens != 4000 {
		t.Fatalf("unexpected request settings %+v", gen.lastReq)
	}
	if !strings.Contains(gen.lastReq.Prompt, "Keywords: robot workforce 2026") {
		t.Fatal("prompt missing keywords")
	}
}

func TestGenerateFailsWithoutFallback(t *testing.T) {
	gen := &fakeGenerator{responses: []string{" ", "", "\n"}}
	p := NewProducer(gen, "", nil).WithPolicy(fastPolicy())

	_, err := p.Generate(context.Background(), types.ManualTopic("robots"), "")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
	if !errors.Is(err, retry.ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
	if gen.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", gen.calls)
	}
}

func TestBuildPrompt(t *testing.T) {
	topic := types.Topic{Title: "AI layoffs", Source: "reddit_r/technology", Summary: "Big cuts", Keywords: []string{"a", "b"}}
	prompt := BuildPrompt(topic, "Extra note")

	for _, want := range []string{"TOPIC: AI layoffs", "Source: reddit_r/technology", "Summary: Big cuts", "Keywords: a, b", "Extra note", "## SHORTS EXCERPTS"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}
