package main

import (
	"bytes"
	"strings"
	"testing"

	"robojobs/compliance"
	"robojobs/types"
)

func TestWriteCompliance(t *testing.T) {
	var buf bytes.Buffer
	writeCompliance(&buf, types.ComplianceReport{
		Passed:          false,
		Score:           55,
		VisualSafety:    types.VisualRisk,
		Originality:     types.OriginalityLow,
		Issues:          []string{"1 visual from a risky source"},
		Recommendations: []string{"✓ Review video fully before making public"},
	})

	out := buf.String()
	for _, want := range []string{"❌ NEEDS REVIEW (score 55/100)", "• 1 visual from a risky source", "✓ Review video fully"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.HasSuffix(out, compliance.BestPractices) {
		t.Fatalf("output should end with the best practices guide")
	}
	if strings.HasSuffix(out, "\n\n") {
		t.Errorf("guide printed with a trailing blank line")
	}
}
