package types

// Visual safety tiers
const (
	VisualSafe    = "safe"
	VisualWarning = "warning"
	VisualRisk    = "risk"
	VisualUnknown = "unknown"
)

// Originality tiers
const (
	OriginalityHigh    = "high"
	OriginalityMedium  = "medium"
	OriginalityLow     = "low"
	OriginalityUnknown = "unknown"
)

// ComplianceReport is the scored copyright and originality assessment of a run
type ComplianceReport struct {
	Passed            bool     `json:"passed"`
	Score             int      `json:"score"`
	VisualSafety      string   `json:"visual_safety"`
	Originality       string   `json:"originality"`
	MonetizationReady bool     `json:"monetization_ready"`
	Issues            []string `json:"issues"`
	Recommendations   []string `json:"recommendations"`
	CheckedAt         string   `json:"checked_at"`
}
