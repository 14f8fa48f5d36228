package service

import (
	"fmt"
	"math"
	"time"

	"github.com/dogtuna/thoughtify/internal/domain"
)

// EvidenceUpdate carries one classified evidence link plus its provenance
// into the confidence update.
type EvidenceUpdate struct {
	Link            domain.HypothesisLink
	EvidenceText    string
	AnalysisSummary string
	User            string
	Now             time.Time
}

// ApplyEvidence folds one classified evidence link into a hypothesis. It is
// pure: the input hypothesis is not mutated, a deep copy comes back. The
// returned recommendations are non-empty only when the update put the
// hypothesis into a contested state.
//
// An unrelated link returns the hypothesis unchanged: nothing is appended
// and the score does not move.
func (cfg ScoringConfig) ApplyEvidence(h domain.Hypothesis, upd EvidenceUpdate) (domain.Hypothesis, []domain.Recommendation) {
	out := h.Clone()
	link := upd.Link

	var multiplier float64
	switch link.Relationship {
	case domain.RelationshipSupports:
		multiplier = 1
	case domain.RelationshipRefutes:
		multiplier = cfg.RefuteMultiplier
	default:
		return out, nil
	}

	// Each additional piece of evidence contributes less: saturating belief
	// revision.
	evidenceCount := h.EvidenceCount()
	diminishing := 1.0 / math.Max(1, float64(evidenceCount)*0.5)

	weightedImpact := cfg.impactScore(link.Impact) *
		cfg.authorityWeight(link.SourceAuthority) *
		cfg.typeWeight(link.EvidenceType) *
		cfg.directnessWeight(link.Directness)

	delta := weightedImpact * diminishing * multiplier

	entry := domain.EvidenceEntry{
		Text:            upd.EvidenceText,
		AnalysisSummary: upd.AnalysisSummary,
		Impact:          link.Impact,
		Delta:           delta,
		Source:          link.Source,
		SourceAuthority: link.SourceAuthority,
		EvidenceType:    link.EvidenceType,
		Directness:      link.Directness,
		Relationship:    link.Relationship,
		Timestamp:       upd.Now,
		User:            upd.User,
	}

	hadCorroboration := hasConvergentSupport(out.Evidence.Supporting)
	if link.Relationship == domain.RelationshipSupports {
		out.Evidence.Supporting = append(out.Evidence.Supporting, entry)
	} else {
		out.Evidence.Refuting = append(out.Evidence.Refuting, entry)
	}

	newScore := h.ConfidenceScore + delta
	// Independent convergent evidence (not mere volume) doubles the score,
	// once, the first time the supporting side reaches that state.
	if !hadCorroboration && hasConvergentSupport(out.Evidence.Supporting) {
		newScore *= cfg.CorroborationMultiplier
	}

	var recs []domain.Recommendation
	if link.SourceAuthority == domain.AuthorityHigh {
		opposite := out.Evidence.Refuting
		if link.Relationship == domain.RelationshipRefutes {
			opposite = out.Evidence.Supporting
		}
		if prior := firstHighAuthority(opposite); prior != nil {
			out.Contested = true
			recs = append(recs, domain.Recommendation{
				Text: fmt.Sprintf(
					"High-authority sources disagree on %q: schedule a reconciliation meeting between %s and %s.",
					h.Statement, prior.Source, link.Source),
				HypothesisID: h.ID,
				CreatedAt:    upd.Now,
			})
		}
	}

	oldConfidence := h.Confidence
	if oldConfidence == 0 {
		oldConfidence = cfg.transform(h.ConfidenceScore)
	}
	newConfidence := cfg.transform(newScore)
	deltaPct := (newConfidence - oldConfidence) * 100

	out.ConfidenceScore = newScore
	out.Confidence = newConfidence
	out.AuditLog = append(out.AuditLog, domain.AuditEntry{
		Timestamp: upd.Now,
		User:      upd.User,
		Evidence:  upd.EvidenceText,
		Source:    link.Source,
		Weight:    delta,
		Message:   fmt.Sprintf("Confidence %+.1f%% (now %.1f%%)", deltaPct, newConfidence*100),
	})

	return out, recs
}

// hasConvergentSupport reports whether the supporting evidence contains at
// least one quantitative and one qualitative entry drawn from more than one
// distinct source.
func hasConvergentSupport(entries []domain.EvidenceEntry) bool {
	var quantitative, qualitative bool
	sources := map[string]struct{}{}
	for _, e := range entries {
		switch e.EvidenceType {
		case domain.EvidenceQuantitative:
			quantitative = true
		case domain.EvidenceQualitative:
			qualitative = true
		}
		sources[e.Source] = struct{}{}
	}
	return quantitative && qualitative && len(sources) > 1
}

func firstHighAuthority(entries []domain.EvidenceEntry) *domain.EvidenceEntry {
	for i := range entries {
		if entries[i].SourceAuthority == domain.AuthorityHigh {
			return &entries[i]
		}
	}
	return nil
}
