package narration

import (
	"regexp"
	"strings"
)

var (
	headingRe   = regexp.MustCompile(`#{1,6}\s*`)
	visualCueRe = regexp.MustCompile(`(?i)\[VISUAL:[^\]]*\]`)
	emphasisRe  = regexp.MustCompile(`\*{1,2}([^*]+)\*{1,2}`)
	pauseRe     = regexp.MustCompile(`(?i)\[PAUSE\]`)
	ellipsisRe  = regexp.MustCompile(`\.{3,}`)
	urlRe       = regexp.MustCompile(`https?://\S+`)
)

// Clean turns a markdown script into plain speakable text. Pause markers
// become an ellipsis so the voice breathes there.
func Clean(text string) string {
	text = headingRe.ReplaceAllString(text, "")
	text = visualCueRe.ReplaceAllString(text, "")
	text = emphasisRe.ReplaceAllString(text, "$1")
	text = pauseRe.ReplaceAllString(text, "...")
	text = ellipsisRe.ReplaceAllString(text, "...")
	text = urlRe.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

// Chunk splits text on word boundaries into pieces of at most limit bytes.
// A single word longer than limit becomes a chunk of its own.
func Chunk(text string, limit int) []string {
	var (
		chunks  []string
		current strings.Builder
	)
	for _, word := range strings.Fields(text) {
		if current.Len() > 0 && current.Len()+1+len(word) > limit {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
