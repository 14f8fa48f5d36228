package domain

import (
	"encoding/json"
	"time"
)

// Impact is the classifier's judgment of how much a piece of evidence matters.
type Impact string

const (
	ImpactHigh   Impact = "High"
	ImpactMedium Impact = "Medium"
	ImpactLow    Impact = "Low"
)

// SourceAuthority rates how much weight the evidence source carries.
type SourceAuthority string

const (
	AuthorityHigh   SourceAuthority = "High"
	AuthorityMedium SourceAuthority = "Medium"
	AuthorityLow    SourceAuthority = "Low"
)

// EvidenceType distinguishes measured data from anecdote.
type EvidenceType string

const (
	EvidenceQuantitative EvidenceType = "Quantitative"
	EvidenceQualitative  EvidenceType = "Qualitative"
)

// Directness says whether the evidence bears on the hypothesis itself or on
// something adjacent to it.
type Directness string

const (
	DirectnessDirect   Directness = "Direct"
	DirectnessIndirect Directness = "Indirect"
)

// Relationship is how a piece of evidence relates to a hypothesis.
type Relationship string

const (
	RelationshipSupports  Relationship = "Supports"
	RelationshipRefutes   Relationship = "Refutes"
	RelationshipUnrelated Relationship = "Unrelated"
)

// EvidenceEntry is one classified piece of evidence attached to a hypothesis
// side. Entries are immutable once appended.
type EvidenceEntry struct {
	Text            string          `json:"text"`
	AnalysisSummary string          `json:"analysisSummary"`
	Impact          Impact          `json:"impact"`
	Delta           float64         `json:"delta"`
	Source          string          `json:"source"`
	SourceAuthority SourceAuthority `json:"sourceAuthority"`
	EvidenceType    EvidenceType    `json:"evidenceType"`
	Directness      Directness      `json:"directness"`
	Relationship    Relationship    `json:"relationship"`
	Timestamp       time.Time       `json:"timestamp"`
	User            string          `json:"user"`
}

// AuditEntry records one confidence update. The audit log is append-only.
type AuditEntry struct {
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user"`
	Evidence  string    `json:"evidence"`
	Source    string    `json:"source"`
	Weight    float64   `json:"weight"`
	Message   string    `json:"message"`
}

// Evidence holds the two ordered evidence sequences. Insertion order is
// chronological; corroboration detection depends on it.
type Evidence struct {
	Supporting []EvidenceEntry `json:"supporting"`
	Refuting   []EvidenceEntry `json:"refuting"`
}

// Hypothesis is a candidate explanation under test. ConfidenceScore is the
// unbounded raw accumulator; Confidence is always the logistic transform of
// it and is never stored independently.
type Hypothesis struct {
	ID              string       `json:"id"`
	Statement       string       `json:"statement"`
	ConfidenceScore float64      `json:"confidenceScore"`
	Confidence      float64      `json:"confidence"`
	Evidence        Evidence     `json:"evidence"`
	Contested       bool         `json:"contested"`
	AuditLog        []AuditEntry `json:"auditLog"`
}

// hypothesisJSON mirrors Hypothesis plus the legacy top-level evidence keys
// written by older documents. Decoding collapses both shapes into
// Evidence.{Supporting,Refuting}.
type hypothesisJSON struct {
	ID              string          `json:"id"`
	Statement       string          `json:"statement"`
	ConfidenceScore float64         `json:"confidenceScore"`
	Confidence      float64         `json:"confidence"`
	Evidence        Evidence        `json:"evidence"`
	Contested       bool            `json:"contested"`
	AuditLog        []AuditEntry    `json:"auditLog"`
	LegacySupport   []EvidenceEntry `json:"supportingEvidence"`
	LegacyRefute    []EvidenceEntry `json:"refutingEvidence"`
}

func (h *Hypothesis) UnmarshalJSON(data []byte) error {
	var raw hypothesisJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	h.ID = raw.ID
	h.Statement = raw.Statement
	h.ConfidenceScore = raw.ConfidenceScore
	h.Confidence = raw.Confidence
	h.Evidence = raw.Evidence
	h.Contested = raw.Contested
	h.AuditLog = raw.AuditLog
	if len(h.Evidence.Supporting) == 0 && len(raw.LegacySupport) > 0 {
		h.Evidence.Supporting = raw.LegacySupport
	}
	if len(h.Evidence.Refuting) == 0 && len(raw.LegacyRefute) > 0 {
		h.Evidence.Refuting = raw.LegacyRefute
	}
	return nil
}

// Clone returns a deep copy. Evidence and audit slices are copied so the
// caller can mutate the clone without touching the original.
func (h Hypothesis) Clone() Hypothesis {
	out := h
	out.Evidence.Supporting = append([]EvidenceEntry(nil), h.Evidence.Supporting...)
	out.Evidence.Refuting = append([]EvidenceEntry(nil), h.Evidence.Refuting...)
	out.AuditLog = append([]AuditEntry(nil), h.AuditLog...)
	return out
}

// EvidenceCount is the total number of entries on both sides.
func (h Hypothesis) EvidenceCount() int {
	return len(h.Evidence.Supporting) + len(h.Evidence.Refuting)
}
