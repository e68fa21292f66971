package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"robojobs/types"
)

// ErrProjectNotFound is returned when no manifest exists for a project
var ErrProjectNotFound = errors.New("project not found")

// ManifestPath is where a project's manifest lives
func ManifestPath(outputDir, projectID string) string {
	return filepath.Join(outputDir, projectID+"_project.json")
}

func SaveManifest(path string, m types.ProjectManifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// LoadManifest reads the manifest of projectID from outputDir
func LoadManifest(outputDir, projectID string) (types.ProjectManifest, error) {
	var m types.ProjectManifest
	data, err := os.ReadFile(ManifestPath(outputDir, projectID))
	if errors.Is(err, os.ErrNotExist) {
		return m, fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
	}
	if err != nil {
		return m, fmt.Errorf("read manifest: %w", err)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("decode manifest: %w", err)
	}
	m.Script = m.Script.Recount()
	return m, nil
}

// ExportScript writes the script as markdown with a word count and duration
// header
func ExportScript(path string, topic types.Topic, s types.Script) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", topic.Title)
	fmt.Fprintf(&b, "**Word Count:** %d\n", s.WordCount)
	fmt.Fprintf(&b, "**Estimated Duration:** %s\n\n", types.FormatTimestamp(s.Duration))
	b.WriteString("---\n\n")
	b.WriteString(s.FullText)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write script: %w", err)
	}
	return nil
}

// CheckProject re-runs the compliance gate on a finished project and saves
// a fresh report
func (p *Pipeline) CheckProject(projectID string) (types.ComplianceReport, error) {
	m, err := LoadManifest(p.cfg.Paths.Output, projectID)
	if err != nil {
		return types.ComplianceReport{}, err
	}

	log.Printf("🔎 Checking compliance for %s (%d visuals, %d words)", projectID, len(m.Visuals), m.Script.WordCount)
	report := p.deps.Compliance.Check(m.Visuals, m.Script.FullText)
	if _, err := p.deps.Compliance.Save(report); err != nil {
		return report, err
	}
	return report, nil
}
