package llm

import (
	"strings"
	"testing"

	"github.com/dogtuna/thoughtify/internal/domain"
)

func TestBuildTriagePromptListsIDsVerbatim(t *testing.T) {
	req := domain.TriageRequest{
		Hypotheses: []domain.Hypothesis{
			{ID: "H1", Statement: "Onboarding is too long"},
			{ID: "H7", Statement: "The sales team lacks product knowledge"},
		},
		Stakeholders: []domain.Contact{
			{Name: "Dana", Role: "VP Sales"},
		},
		EvidenceText: "Ramp time is 6 months on average",
	}

	prompt := BuildTriagePrompt(req)

	if !strings.Contains(prompt, "H1: Onboarding is too long") {
		t.Error("prompt missing H1 line")
	}
	if !strings.Contains(prompt, "H7: The sales team lacks product knowledge") {
		t.Error("prompt missing H7 line")
	}
	if !strings.Contains(prompt, "Dana (VP Sales)") {
		t.Error("prompt missing stakeholder line")
	}
	if !strings.Contains(prompt, "Ramp time is 6 months on average") {
		t.Error("prompt missing evidence text")
	}
}

func TestBuildTriagePromptNoStakeholders(t *testing.T) {
	prompt := BuildTriagePrompt(domain.TriageRequest{
		Hypotheses:   []domain.Hypothesis{{ID: "H1", Statement: "x"}},
		EvidenceText: "y",
	})
	if !strings.Contains(prompt, "(none listed)") {
		t.Error("expected placeholder for empty stakeholder list")
	}
}

func TestBuildAnalysisPromptOmitsEmptyExtra(t *testing.T) {
	req := domain.AnalysisRequest{
		ContextBlock: "Business Goal: reduce churn",
		QuestionText: "What frustrates customers most?",
		AnswerText:   "Slow support responses",
	}

	prompt := BuildAnalysisPrompt(req)
	if strings.Contains(prompt, "Additional notes:") {
		t.Error("extra-notes line should be omitted when extra text is empty")
	}

	req.ExtraText = "from the Q2 survey"
	prompt = BuildAnalysisPrompt(req)
	if !strings.Contains(prompt, "Additional notes: from the Q2 survey") {
		t.Error("extra-notes line missing")
	}
}
