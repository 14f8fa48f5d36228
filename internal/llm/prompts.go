package llm

import (
	"fmt"
	"strings"

	"github.com/dogtuna/thoughtify/internal/domain"
)

const analysisPrompt = `You are a discovery assistant for instructional designers. A stakeholder has answered a discovery question. Analyze the answer in the context of the project and propose follow-up actions.

Project context:
%s

Question: %s
Answer: %s
%s
Respond ONLY with JSON, no markdown fences:
{
  "analysis": "2-4 sentence analysis of what this answer tells us",
  "suggestions": [
    {"text": "follow-up action", "category": "question|meeting|email|research|instructional-design", "who": "person responsible or target", "hypothesisId": "existing hypothesis id or null", "taskType": "validate|refute|explore"}
  ]
}

If no follow-up actions are warranted, return an empty suggestions array.`

const triagePrompt = `You are an evidence triage system. Classify how a new piece of evidence relates to each competing project hypothesis.

Hypotheses (id: statement):
%s

Known stakeholders:
%s

New evidence:
%s

For every hypothesis the evidence bears on, produce a link with:
- hypothesisId: the EXACT id from the list above, copied verbatim. Never invent, rename, or renumber ids.
- relationship: "Supports" or "Refutes"
- impact: "High", "Medium", or "Low"
- source: who or what the evidence comes from (prefer a named stakeholder)
- sourceAuthority: "High", "Medium", or "Low"
- evidenceType: "Quantitative" or "Qualitative"
- directness: "Direct" or "Indirect"

If the evidence suggests an explanation none of the hypotheses cover, propose at most one newHypothesis with a statement and an initial confidence estimate between 0 and 1. Otherwise set newHypothesis to null.

Respond ONLY with JSON, no markdown fences:
{
  "analysisSummary": "1-2 sentence summary of what the evidence shows",
  "hypothesisLinks": [{"hypothesisId": "...", "relationship": "Supports", "impact": "Medium", "source": "...", "sourceAuthority": "Medium", "evidenceType": "Qualitative", "directness": "Direct"}],
  "newHypothesis": null
}`

// BuildAnalysisPrompt assembles the analyze-answer prompt. Only non-empty
// extra text is included.
func BuildAnalysisPrompt(req domain.AnalysisRequest) string {
	extra := ""
	if req.ExtraText != "" {
		extra = "Additional notes: " + req.ExtraText + "\n"
	}
	return fmt.Sprintf(analysisPrompt, req.ContextBlock, req.QuestionText, req.AnswerText, extra)
}

// BuildTriagePrompt assembles the evidence-triage prompt. Hypotheses are
// listed one per line keyed by their exact identifier.
func BuildTriagePrompt(req domain.TriageRequest) string {
	var hyps strings.Builder
	for _, h := range req.Hypotheses {
		hyps.WriteString(h.ID)
		hyps.WriteString(": ")
		hyps.WriteString(h.Statement)
		hyps.WriteString("\n")
	}

	var stakeholders strings.Builder
	for _, c := range req.Stakeholders {
		stakeholders.WriteString(c.Name)
		if c.Role != "" {
			stakeholders.WriteString(" (")
			stakeholders.WriteString(c.Role)
			stakeholders.WriteString(")")
		}
		stakeholders.WriteString("\n")
	}
	if stakeholders.Len() == 0 {
		stakeholders.WriteString("(none listed)\n")
	}

	return fmt.Sprintf(triagePrompt, hyps.String(), stakeholders.String(), req.EvidenceText)
}
