package domain

import "time"

// HypothesisLink is the classifier's judgment connecting one evidence
// instance to one hypothesis. Consumed once by the confidence update; not
// persisted verbatim.
type HypothesisLink struct {
	HypothesisID    string          `json:"hypothesisId"`
	Relationship    Relationship    `json:"relationship"`
	Impact          Impact          `json:"impact"`
	Source          string          `json:"source"`
	SourceAuthority SourceAuthority `json:"sourceAuthority"`
	EvidenceType    EvidenceType    `json:"evidenceType"`
	Directness      Directness      `json:"directness"`
}

// ProposedHypothesis is the classifier's optional new-hypothesis proposal.
type ProposedHypothesis struct {
	Statement  string  `json:"statement"`
	Confidence float64 `json:"confidence"`
}

// TriageResult is the parsed output of the triage classifier call.
type TriageResult struct {
	AnalysisSummary string              `json:"analysisSummary"`
	HypothesisLinks []HypothesisLink    `json:"hypothesisLinks"`
	NewHypothesis   *ProposedHypothesis `json:"newHypothesis,omitempty"`
}

// SuggestedHypothesis is a classifier-proposed hypothesis parked on the
// initiative until someone promotes it into the working set.
type SuggestedHypothesis struct {
	ID         string    `json:"id"`
	Statement  string    `json:"statement"`
	Confidence float64   `json:"confidence"`
	CreatedAt  time.Time `json:"createdAt"`
}

// AnswerAnalysis is the parsed output of the first classifier call and the
// pipeline's return value.
type AnswerAnalysis struct {
	Analysis    string       `json:"analysis"`
	Suggestions []Suggestion `json:"suggestions"`
}

// AnalysisRequest carries the inputs for the analyze-answer classifier call.
type AnalysisRequest struct {
	ContextBlock string
	QuestionText string
	AnswerText   string
	ExtraText    string
}

// TriageRequest carries the inputs for the evidence-triage classifier call.
type TriageRequest struct {
	Hypotheses   []Hypothesis
	Stakeholders []Contact
	EvidenceText string
}
