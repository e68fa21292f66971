package script

import (
	"fmt"
	"strings"

	"robojobs/types"
)

const promptTemplate = `You are an expert YouTube script writer specializing in AI and technology content.
Create a compelling, well-researched script for a 15-20 minute video.

TOPIC: %s

ADDITIONAL CONTEXT:
%s

SCRIPT STRUCTURE (follow this exactly):

## HOOK (0:00-0:30) - ~75 words
Start with a shocking statistic or provocative question that stops scrollers.
Create immediate emotional impact about AI/job displacement.

## OVERVIEW (0:30-2:00) - ~200 words
Summarize what this video covers and why viewers should watch until the end.
Establish credibility and promise valuable insights.
Tease the most surprising finding coming later.

## DEEP BREAKDOWN (2:00-12:00) - ~1500 words
Cover 5-7 key points with:
- Specific facts, statistics, and timelines
- Real company names and announcements
- Original analysis on unemployment implications
- Cause-and-effect explanations
- Visual cue suggestions in [VISUAL: description] format

Structure each point as:
**Point X: [Compelling Title]**
[Detailed explanation with facts]
[VISUAL: suggestion for b-roll or graphic]
[Analysis of job displacement impact]

## IMPLICATIONS & BALANCE (12:00-15:00) - ~400 words
Present both sides fairly:
- The fears and genuine concerns about mass unemployment
- The opportunities and potential positive outcomes
- Expert quotes or predictions (attribute properly)
- What workers can do to adapt

## CONCLUSION & CTA (15:00+) - ~150 words
- Summarize the 3 most important takeaways
- Make a bold but reasonable prediction
- Ask viewers an engaging question to comment on
- Strong subscribe call-to-action
- Tease next video topic

## SHORTS EXCERPTS
Provide 3-5 standalone 30-second excerpts that could go viral as YouTube Shorts.
Each should be self-contained with a hook and payoff.

---

WRITING STYLE GUIDELINES:
- Conversational but authoritative
- Use "you" and "we" to engage viewers
- Include natural pauses marked with "..." or "[PAUSE]"
- Avoid clickbait feel and deliver on promises
- Be factual but create emotional impact
- Support fair use by providing heavy original analysis and commentary

NOW WRITE THE COMPLETE SCRIPT:`

// BuildPrompt embeds the topic and its context in the script template
func BuildPrompt(topic types.Topic, extra string) string {
	var ctx strings.Builder
	fmt.Fprintf(&ctx, "Title: %s\n", topic.Title)
	fmt.Fprintf(&ctx, "Source: %s\n", topic.Source)
	fmt.Fprintf(&ctx, "Summary: %s\n", topic.Summary)
	fmt.Fprintf(&ctx, "Keywords: %s\n", strings.Join(topic.Keywords, ", "))
	if topic.Content != "" {
		fmt.Fprintf(&ctx, "Article: %s\n", topic.Content)
	}
	ctx.WriteString(extra)

	return fmt.Sprintf(promptTemplate, topic.Title, strings.TrimSpace(ctx.String()))
}
