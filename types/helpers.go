package types

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

// WordsPerMinute is the assumed narration speaking rate
const WordsPerMinute = 150

// GenerateID returns a short content-derived identifier
func GenerateID(content string) string {
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:])[:12]
}

// CountWords counts whitespace-separated words
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// EstimateDuration converts a word count into whole seconds of speech
func EstimateDuration(words int) int {
	return words * 60 / WordsPerMinute
}

// FormatTimestamp renders seconds as M:SS, or H:MM:SS past an hour
func FormatTimestamp(seconds int) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

var filenameReplacer = strings.NewReplacer(
	"<", "_", ">", "_", ":", "_", `"`, "_", "/", "_",
	`\`, "_", "|", "_", "?", "_", "*", "_",
)

// SanitizeFilename replaces characters that are unsafe in file names and
// caps the result at 100 characters
func SanitizeFilename(name string) string {
	name = filenameReplacer.Replace(name)
	runes := []rune(name)
	if len(runes) > 100 {
		runes = runes[:100]
	}
	return string(runes)
}
