package assembler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"robojobs/config"
)

var assTextEscaper = strings.NewReplacer("{", "(", "}", ")", "\n", " ", "\r", "")

// writeTitleCard creates an ASS subtitle file showing title centered on
// screen from 0 to duration seconds
func writeTitleCard(path, title string, duration float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintln(file, "[Script Info]")
	fmt.Fprintln(file, "Title: Title Card")
	fmt.Fprintln(file, "ScriptType: v4.00+")
	fmt.Fprintf(file, "PlayResX: %d\n", config.VideoWidth)
	fmt.Fprintf(file, "PlayResY: %d\n", config.VideoHeight)
	fmt.Fprintln(file, "WrapStyle: 0")
	fmt.Fprintln(file, "")
	fmt.Fprintln(file, "[V4+ Styles]")
	fmt.Fprintln(file, "Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding")

	// White bold text, black 2px outline, alignment 5 is middle-center
	fmt.Fprintf(file, "Style: Title,Arial,%d,&H00FFFFFF,&H00FFFFFF,&H00000000,&H00000000,-1,0,0,0,100,100,0,0,1,2,0,5,50,50,0,1\n", config.TitleFontSize)

	fmt.Fprintln(file, "")
	fmt.Fprintln(file, "[Events]")
	fmt.Fprintln(file, "Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text")
	fmt.Fprintf(file, "Dialogue: 0,%s,%s,Title,,0,0,0,,%s\n",
		formatASSTimestamp(0),
		formatASSTimestamp(duration),
		assTextEscaper.Replace(title))

	return nil
}

// formatASSTimestamp converts seconds to ASS timestamp format (h:mm:ss.cc)
func formatASSTimestamp(seconds float64) string {
	hours := int(seconds / 3600)
	minutes := int((seconds - float64(hours*3600)) / 60)
	secs := int(seconds) % 60
	centisecs := int((seconds - float64(int(seconds))) * 100)

	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, secs, centisecs)
}

// filterPath converts a path to the forward-slash form ffmpeg filters expect.
// ffmpeg-go escapes the separators itself.
func filterPath(path string) string {
	return filepath.ToSlash(path)
}
