package domain

import (
	"encoding/json"
	"testing"
)

func TestHypothesisUnmarshalLegacyEvidenceShape(t *testing.T) {
	raw := `{
		"id": "H1",
		"statement": "Onboarding is too long",
		"confidenceScore": 0.3,
		"confidence": 0.57,
		"supportingEvidence": [{"text": "ramp data", "source": "Dana", "relationship": "Supports"}],
		"refutingEvidence": [{"text": "exit interviews", "source": "Sam", "relationship": "Refutes"}]
	}`

	var h Hypothesis
	if err := json.Unmarshal([]byte(raw), &h); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(h.Evidence.Supporting) != 1 || h.Evidence.Supporting[0].Source != "Dana" {
		t.Errorf("legacy supporting evidence not folded: %+v", h.Evidence.Supporting)
	}
	if len(h.Evidence.Refuting) != 1 || h.Evidence.Refuting[0].Source != "Sam" {
		t.Errorf("legacy refuting evidence not folded: %+v", h.Evidence.Refuting)
	}
}

func TestHypothesisUnmarshalPrefersCanonicalShape(t *testing.T) {
	raw := `{
		"id": "H1",
		"statement": "x",
		"evidence": {"supporting": [{"source": "canonical"}], "refuting": []},
		"supportingEvidence": [{"source": "legacy"}]
	}`

	var h Hypothesis
	if err := json.Unmarshal([]byte(raw), &h); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(h.Evidence.Supporting) != 1 || h.Evidence.Supporting[0].Source != "canonical" {
		t.Errorf("canonical evidence should win over legacy keys: %+v", h.Evidence.Supporting)
	}
}

func TestHypothesisCloneIsDeep(t *testing.T) {
	h := Hypothesis{
		ID: "H1",
		Evidence: Evidence{
			Supporting: []EvidenceEntry{{Source: "a"}},
		},
		AuditLog: []AuditEntry{{User: "u"}},
	}

	c := h.Clone()
	c.Evidence.Supporting[0].Source = "changed"
	c.AuditLog[0].User = "changed"

	if h.Evidence.Supporting[0].Source != "a" {
		t.Error("clone shares supporting evidence backing array")
	}
	if h.AuditLog[0].User != "u" {
		t.Error("clone shares audit log backing array")
	}
}
