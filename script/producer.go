// Package script turns a topic into a sectioned narration script.
package script

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"unicode/utf8"

	"robojobs/config"
	"robojobs/llm"
	"robojobs/retry"
	"robojobs/runlog"
	"robojobs/types"
)

// ErrEmptyResponse is returned when the generator answers with no text
var ErrEmptyResponse = errors.New("generator returned an empty script")

var excerptBoundary = regexp.MustCompile(`\n\d+\.|\n[-•]`)

// Producer generates scripts with a generative text service
type Producer struct {
	gen     llm.Generator
	system  string
	journal runlog.Recorder
	policy  retry.Policy
}

// NewProducer creates a script producer. system is sent as the system prompt.
func NewProducer(gen llm.Generator, system string, journal runlog.Recorder) *Producer {
	if journal == nil {
		journal = runlog.Nop{}
	}
	return &Producer{
		gen:     gen,
		system:  system,
		journal: journal,
		policy: retry.Policy{
			Name:     "generate script",
			Attempts: config.ScriptAttempts,
			Delay:    config.ScriptDelay,
		},
	}
}

// WithPolicy returns a copy of the producer using a different retry policy
func (p *Producer) WithPolicy(policy retry.Policy) *Producer {
	cp := *p
	cp.policy = policy
	return &cp
}

// Generate writes a complete script for the topic. There is no fallback:
// exhausting the retries is fatal to the run.
func (p *Producer) Generate(ctx context.Context, topic types.Topic, extra string) (types.Script, error) {
	log.Printf("📝 Generating script for: %s...", truncate(topic.Title, 50))

	req := llm.Request{
		System:      p.system,
		Prompt:      BuildPrompt(topic, extra),
		Temperature: config.ScriptTemperature,
		MaxTokens:   config.ScriptMaxTokens,
	}

	text, err := retry.Do(ctx, p.policy, func(ctx context.Context) (string, error) {
		out, err := p.gen.Generate(ctx, req)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(out) == "" {
			return "", ErrEmptyResponse
		}
		return out, nil
	})
	if err != nil {
		p.journal.Think(runlog.CategoryError, "Script generation failed: "+err.Error())
		return types.Script{}, fmt.Errorf("script generation: %w", err)
	}

	s := Parse(topic.Title, text)
	log.Printf("✓ Script generated: %d words, ~%d min", s.WordCount, s.Duration/60)
	p.journal.Think(runlog.CategoryObservation, fmt.Sprintf("Script has %d words, %d shorts excerpts", s.WordCount, len(s.Shorts)))
	return s, nil
}

// Parse builds a Script from generated text. Missing sections are left empty.
func Parse(topic, text string) types.Script {
	s := types.NewScript(topic, text)
	s.Hook = Section(text, "HOOK")
	s.Overview = Section(text, "OVERVIEW")
	s.Breakdown = Section(text, "DEEP BREAKDOWN")
	s.Implications = Section(text, "IMPLICATIONS")
	s.Conclusion = Section(text, "CONCLUSION")
	s.Shorts = ExtractShorts(text)
	return s
}

// Section returns the body under the first "## <name>" heading, up to the
// next "##" or the end of the text
func Section(text, name string) string {
	heading := regexp.MustCompile(`(?i)##\s*` + regexp.QuoteMeta(name) + `[^\n]*\n`)
	loc := heading.FindStringIndex(text)
	if loc == nil {
		return ""
	}

	body := text[loc[1]:]
	if next := strings.Index(body, "##"); next >= 0 {
		body = body[:next]
	}
	return strings.TrimSpace(body)
}

// ExtractShorts splits the shorts section on numbered or bulleted items and
// keeps up to five excerpts long enough to stand alone
func ExtractShorts(text string) []string {
	section := Section(text, "SHORTS")
	if section == "" {
		return nil
	}

	var shorts []string
	for _, item := range excerptBoundary.Split("\n"+section, -1) {
		item = strings.TrimSpace(item)
		if utf8.RuneCountInString(item) < config.MinExcerptLength {
			continue
		}
		shorts = append(shorts, item)
		if len(shorts) == config.MaxShortsExcerpts {
			break
		}
	}
	return shorts
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
