package visuals

import (
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strings"

	"robojobs/types"
)

var visualCue = regexp.MustCompile(`(?i)\[VISUAL:\s*([^\]]+)\]`)

var genericPrompts = []string{
	"futuristic humanoid robot in modern office, photorealistic, 4k",
	"artificial intelligence neural network visualization, blue glow, cinematic",
	"worried office workers looking at computer screens, corporate setting",
	"automation factory with robots, dramatic lighting",
	"person shaking hands with android robot, photorealistic",
}

// Pollinations builds AI image URLs. The image is generated when the URL is
// first fetched, so building a visual makes no network call.
type Pollinations struct {
	baseURL string
	width   int
	height  int
}

func NewPollinations(baseURL string, width, height int) *Pollinations {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Pollinations{baseURL: baseURL, width: width, height: height}
}

// Image returns the visual for a single prompt
func (p *Pollinations) Image(prompt string) types.Visual {
	clean := strings.TrimSpace(strings.ReplaceAll(prompt, "\n", " "))
	imageURL := fmt.Sprintf("%s%s?width=%d&height=%d", p.baseURL, url.PathEscape(clean), p.width, p.height)

	return types.Visual{
		ID:          "pollinations_" + types.GenerateID(clean),
		Kind:        types.KindImage,
		Source:      "pollinations",
		URL:         imageURL,
		DownloadURL: imageURL,
		Width:       p.width,
		Height:      p.height,
		Description: clean,
	}
}

// Cues returns the descriptions inside [VISUAL: ...] markers
func Cues(script string) []string {
	matches := visualCue.FindAllStringSubmatch(script, -1)
	cues := make([]string, 0, len(matches))
	for _, m := range matches {
		cues = append(cues, strings.TrimSpace(m[1]))
	}
	return cues
}

// FromScript creates up to count images from the script's visual cues and
// pads with generic prompts when there are too few cues
func (p *Pollinations) FromScript(script string, count int) []types.Visual {
	var visuals []types.Visual
	for _, cue := range Cues(script) {
		if len(visuals) == count {
			break
		}
		visuals = append(visuals, p.Image(fmt.Sprintf("photorealistic, 4k, cinematic lighting, %s, technology, futuristic", cue)))
	}

	for _, prompt := range genericPrompts {
		if len(visuals) >= count {
			break
		}
		visuals = append(visuals, p.Image(prompt))
	}

	log.Printf("🎨 Generated %d AI images", len(visuals))
	return visuals
}
