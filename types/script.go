package types

// Script is the narration text for one video, split into named sections.
// WordCount and Duration are derived from FullText: build a Script with
// NewScript and call Recount after changing FullText.
type Script struct {
	Topic        string   `json:"topic"`
	FullText     string   `json:"full_text"`
	Hook         string   `json:"hook"`
	Overview     string   `json:"overview"`
	Breakdown    string   `json:"breakdown"`
	Implications string   `json:"implications"`
	Conclusion   string   `json:"conclusion"`
	WordCount    int      `json:"word_count"`
	Duration     int      `json:"estimated_duration"`
	Shorts       []string `json:"shorts_excerpts"`
}

// NewScript derives word count and estimated duration from the full text.
// Sections and shorts are filled in by the caller.
func NewScript(topic, fullText string) Script {
	words := CountWords(fullText)
	return Script{
		Topic:     topic,
		FullText:  fullText,
		WordCount: words,
		Duration:  EstimateDuration(words),
	}
}

// Recount returns s with WordCount and Duration derived again from FullText
func (s Script) Recount() Script {
	s.WordCount = CountWords(s.FullText)
	s.Duration = EstimateDuration(s.WordCount)
	return s
}
