// Package metadata builds titles, descriptions, tags and thumbnail prompts
// for a finished script.
package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"

	"robojobs/config"
	"robojobs/llm"
	"robojobs/retry"
	"robojobs/runlog"
	"robojobs/types"
)

const (
	titleCount   = 10
	hookChars    = 200
	category     = "Science & Technology"
	baseDuration = 900
)

const titlePrompt = `Generate 10 viral YouTube video titles for this topic:

Topic: %s

Requirements:
- Mix of emotional hooks (fear, curiosity, urgency)
- Include numbers/years where relevant (e.g., "2026")
- Some should be mild clickbait, some straightforward
- 50-70 characters each (YouTube optimal)
- Use power words: Breaking, Shocking, Warning, Finally, etc.

Examples of good patterns:
- "The AI Revolution Is Here: How X Is Changing Everything in 2026"
- "WARNING: X Could Replace Your Job by 2026 (Here's What to Do)"
- "I Spent 30 Days Researching AI Job Loss - This Is What I Found"

Return ONLY the 10 titles, numbered 1-10:`

var (
	errNoTitles   = errors.New("no titles in response")
	titlePrefixRe = regexp.MustCompile(`^\d+[\.\)]\s*`)
	tagStopwords  = map[string]bool{"the": true, "and": true, "for": true, "that": true, "this": true, "with": true, "from": true}
)

var baseTags = []string{
	"AI", "artificial intelligence", "robots", "robotics",
	"automation", "future of work", "job loss", "unemployment",
	"technology 2026", "AI news", "robot workers", "ChatGPT",
	"machine learning", "tech news", "job displacement",
	"AI revolution", "workforce automation", "career advice",
	"AI jobs", "technology trends",
}

var hashtags = []string{
	"#AI2026", "#Robotics", "#FutureOfWork", "#Automation",
	"#TechNews", "#ArtificialIntelligence", "#JobsOfTheFuture",
	"#MachineLearning", "#Innovation", "#TechTrends",
}

// chapter is a fixed section of the video, positioned for a 15 minute cut
type chapter struct {
	offset int
	label  string
}

var chapters = []chapter{
	{0, "Introduction & Hook"},
	{30, "Overview: What We'll Cover"},
	{120, "The Current State of AI & Robotics"},
	{240, "Key Development #1"},
	{360, "Key Development #2"},
	{480, "Key Development #3"},
	{600, "Job Displacement Analysis"},
	{720, "Implications: Fears vs Opportunities"},
	{840, "Expert Predictions"},
}

// Producer generates publishing metadata. Titles come from the generator
// when one is configured and fall back to templates otherwise.
type Producer struct {
	gen     llm.Generator
	channel string
	journal runlog.Recorder
	policy  retry.Policy
}

func NewProducer(gen llm.Generator, channel string, journal runlog.Recorder) *Producer {
	if journal == nil {
		journal = runlog.Nop{}
	}
	if gen == nil {
		log.Printf("⚠️ No generative text provider - using template-based titles")
	}
	return &Producer{
		gen:     gen,
		channel: channel,
		journal: journal,
		policy: retry.Policy{
			Name:     "generate titles",
			Attempts: config.MetadataAttempts,
			Delay:    config.MetadataDelay,
		},
	}
}

// Generate builds the complete metadata for a script and a video of
// duration seconds
func (p *Producer) Generate(ctx context.Context, script types.Script, duration int) types.VideoMetadata {
	log.Printf("📝 Generating video metadata...")

	meta := types.VideoMetadata{
		Titles:           p.Titles(ctx, script.Topic),
		Timestamps:       Timestamps(duration),
		Tags:             Tags(script.Topic),
		Hashtags:         append([]string(nil), hashtags...),
		ThumbnailPrompts: ThumbnailPrompts(script.Topic),
		Category:         category,
	}
	meta.BestTitle = "Untitled Video"
	if len(meta.Titles) > 0 {
		meta.BestTitle = meta.Titles[0]
	}
	meta.Description = p.Description(script, duration)

	log.Printf("✓ Generated metadata: %d titles, %d tags, %d thumbnails",
		len(meta.Titles), len(meta.Tags), len(meta.ThumbnailPrompts))
	return meta
}

// Titles asks the generator for ten titles, falling back to TemplateTitles
func (p *Producer) Titles(ctx context.Context, topic string) []string {
	if p.gen == nil {
		return TemplateTitles(topic)
	}

	req := llm.Request{Prompt: fmt.Sprintf(titlePrompt, topic), Temperature: 0.9}
	titles := retry.DoWithFallback(ctx, p.policy, []string(nil), func(ctx context.Context) ([]string, error) {
		text, err := p.gen.Generate(ctx, req)
		if err != nil {
			return nil, err
		}
		titles := ParseTitles(text)
		if len(titles) == 0 {
			return nil, errNoTitles
		}
		return titles, nil
	})
	if titles == nil {
		p.journal.Decide("Use template titles", "Title generation failed")
		return TemplateTitles(topic)
	}
	return titles
}

// ParseTitles reads a numbered list, dropping the numbering
func ParseTitles(text string) []string {
	var titles []string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line[0] < '0' || line[0] > '9' {
			continue
		}
		title := strings.TrimSpace(titlePrefixRe.ReplaceAllString(line, ""))
		title = strings.Trim(title, `"`)
		if title != "" {
			titles = append(titles, title)
		}
		if len(titles) == titleCount {
			break
		}
	}
	return titles
}

// TemplateTitles is the fixed fallback title set
func TemplateTitles(topic string) []string {
	return []string{
		fmt.Sprintf("🤖 %s - What You Need to Know in 2026", topic),
		fmt.Sprintf("WARNING: %s Is Changing Everything", topic),
		fmt.Sprintf("The Truth About %s (Nobody's Talking About This)", topic),
		fmt.Sprintf("How %s Will Affect Your Career in 2026", topic),
		fmt.Sprintf("%s Explained: The Complete 2026 Breakdown", topic),
		fmt.Sprintf("🚨 BREAKING: %s - Full Analysis", topic),
		fmt.Sprintf("Why %s Should Worry Everyone", topic),
		fmt.Sprintf("I Researched %s - Here's What I Found", topic),
		fmt.Sprintf("%s: Opportunities vs Threats [Expert Analysis]", topic),
		fmt.Sprintf("The Future of Work: %s in 2026", topic),
	}
}

// Timestamps scales the chapter skeleton to the video's real length and
// closes with the conclusion on the last whole minute
func Timestamps(duration int) []string {
	if duration <= 0 {
		duration = baseDuration
	}
	out := make([]string, 0, len(chapters)+1)
	for _, c := range chapters {
		at := c.offset * duration / baseDuration
		out = append(out, fmt.Sprintf("%s - %s", types.FormatTimestamp(at), c.label))
	}
	return append(out, fmt.Sprintf("%s - Conclusion & What You Can Do", types.FormatTimestamp(duration/60*60)))
}

// Description renders the video description around the script's hook
func (p *Producer) Description(script types.Script, duration int) string {
	hook := script.Hook
	if r := []rune(hook); len(r) > hookChars {
		hook = string(r[:hookChars])
	}
	channel := p.channel
	if channel == "" {
		channel = "[Channel Name]"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📺 %s\n\n", script.Topic)
	if hook != "" {
		fmt.Fprintf(&b, "%s\n\n", hook)
	}
	b.WriteString("In this comprehensive breakdown, we explore the latest developments in AI and robotics, analyzing the real implications for jobs and the economy in 2026 and beyond.\n\n")
	b.WriteString("⏱️ TIMESTAMPS:\n")
	b.WriteString(strings.Join(Timestamps(duration), "\n"))
	b.WriteString("\n\n")
	b.WriteString("🔔 SUBSCRIBE for more AI & technology analysis!\n")
	b.WriteString("👍 LIKE if you found this informative\n")
	b.WriteString("💬 COMMENT your thoughts - Do you think AI will help or hurt workers?\n\n")
	b.WriteString("#AI #Robotics #Technology #FutureOfWork #Automation #ArtificialIntelligence #Jobs2026\n\n")
	b.WriteString("📚 SOURCES & RESEARCH:\n")
	b.WriteString("This video compiles analysis from various news sources and studies. All visuals are stock footage or AI-generated for educational purposes.\n\n")
	b.WriteString("⚠️ DISCLAIMER:\n")
	b.WriteString("This content is for educational and informational purposes only. Always do your own research before making career or financial decisions.\n\n")
	fmt.Fprintf(&b, "© 2026 %s - All Rights Reserved", channel)
	return b.String()
}

// Tags unions the base tags with the topic's longer words, capped at the
// hosting limit
func Tags(topic string) []string {
	seen := make(map[string]bool)
	var tags []string
	add := func(tag string) {
		key := strings.ToLower(tag)
		if seen[key] || len(tags) == config.MaxTags {
			return
		}
		seen[key] = true
		tags = append(tags, tag)
	}

	for _, t := range baseTags {
		add(t)
	}
	for _, w := range strings.Fields(strings.ToLower(strings.ReplaceAll(topic, ",", ""))) {
		w = strings.Trim(w, `.:;!?"'()`)
		if len([]rune(w)) > 3 && !tagStopwords[w] {
			add(w)
		}
	}
	return tags
}

// ThumbnailPrompts returns five image prompts for thumbnail generation
func ThumbnailPrompts(topic string) []string {
	return []string{
		fmt.Sprintf("Dramatic thumbnail about %s: humanoid robot in office replacing human worker, red warning colors, bold text space, photorealistic, 4K, cinematic lighting", topic),
		fmt.Sprintf("Shocked person looking at futuristic AI robot, %s, split image, before/after style, dramatic lighting, YouTube thumbnail style", topic),
		"Robot hand and human hand reaching toward each other, dramatic blue and orange lighting, movie poster style, 4K",
		"Futuristic cityscape with robots, worried crowd of workers, dramatic sky, news broadcast style, bold colors",
		"AI brain visualization with job icons being absorbed, dark dramatic background, glowing elements, tech aesthetic",
	}
}

// Save writes metadata as indented JSON
func Save(path string, meta types.VideoMetadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads metadata written by Save
func Load(path string) (types.VideoMetadata, error) {
	var meta types.VideoMetadata
	data, err := os.ReadFile(path)
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("decode metadata %s: %w", path, err)
	}
	return meta, nil
}
