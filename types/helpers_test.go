package types

import (
	"strings"
	"testing"
)

func TestEstimateDuration(t *testing.T) {
	if got := EstimateDuration(150); got != 60 {
		t.Fatalf("EstimateDuration(150) = %d, want 60", got)
	}
	if got := EstimateDuration(2250); got != 900 {
		t.Fatalf("EstimateDuration(2250) = %d, want 900", got)
	}

	prev := -1
	for words := 0; words <= 3000; words += 7 {
		got := EstimateDuration(words)
		if got < prev {
			t.Fatalf("EstimateDuration not monotonic at %d words: %d < %d", words, got, prev)
		}
		prev = got
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "0:00"},
		{30, "0:30"},
		{125, "2:05"},
		{900, "15:00"},
		{3725, "1:02:05"},
	}

	for _, tt := range tests {
		if got := FormatTimestamp(tt.seconds); got != tt.want {
			t.Fatalf("FormatTimestamp(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestGenerateID(t *testing.T) {
	a := GenerateID("AI layoffs hit 2 million workers")
	b := GenerateID("AI layoffs hit 2 million workers")
	if a != b {
		t.Fatalf("GenerateID not deterministic: %s vs %s", a, b)
	}
	if len(a) != 12 {
		t.Fatalf("expected 12 character id, got %q", a)
	}
	if a == GenerateID("something else") {
		t.Fatal("expected different content to produce different ids")
	}
}

func TestSanitizeFilename(t *testing.T) {
	got := SanitizeFilename(`AI: "robots" <take> jobs/now?`)
	want := "AI_ _robots_ _take_ jobs_now_"
	if got != want {
		t.Fatalf("SanitizeFilename = %q, want %q", got, want)
	}

	long := make([]byte, 150)
	for i := range long {
		long[i] = 'a'
	}
	if got := SanitizeFilename(string(long)); len(got) != 100 {
		t.Fatalf("expected 100 characters, got %d", len(got))
	}
}

func TestNewScript(t *testing.T) {
	s := NewScript("robots", "one two three")
	if s.WordCount != 3 {
		t.Fatalf("expected 3 words, got %d", s.WordCount)
	}
	if s.Duration != 1 {
		t.Fatalf("expected 1 second, got %d", s.Duration)
	}
}

func TestScriptRecount(t *testing.T) {
	s := NewScript("robots", "one two three")
	s.WordCount = 9000
	s.Duration = 3600
	s.FullText = strings.Repeat("word ", 300)

	s = s.Recount()
	if s.WordCount != 300 {
		t.Fatalf("expected 300 words, got %d", s.WordCount)
	}
	if s.Duration != EstimateDuration(300) {
		t.Fatalf("expected %d seconds, got %d", EstimateDuration(300), s.Duration)
	}
}

func TestManualTopic(t *testing.T) {
	topic := ManualTopic("AI Mass Layoffs in the Tech Industry 2026")
	if topic.Score != ManualTopicScore || topic.Source != SourceManual {
		t.Fatalf("unexpected manual topic %+v", topic)
	}
	if len(topic.Keywords) != 5 || topic.Keywords[0] != "ai" {
		t.Fatalf("unexpected keywords %v", topic.Keywords)
	}
}
