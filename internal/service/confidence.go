package service

import (
	"math"

	"github.com/dogtuna/thoughtify/internal/domain"
)

const (
	DefaultSlope                   = 1.0
	DefaultCorroborationMultiplier = 2.0
	DefaultConfidenceThreshold     = 0.80

	// minConfidence/maxConfidence keep the transform strictly inside (0,1)
	// even when the exponential under/overflows at extreme scores.
	minConfidence = 1e-9
	maxConfidence = 1 - 1e-9
)

// ConfidenceTransform maps an unbounded accumulated score to a confidence in
// (0,1) via a logistic curve. Monotonic, symmetric around score 0 -> 0.5.
func ConfidenceTransform(score, slope float64) float64 {
	x := slope * score
	var p float64
	if x >= 0 {
		p = 1.0 / (1.0 + math.Exp(-x))
	} else {
		// exp(x) underflows to 0 for very negative x; this form stays finite.
		e := math.Exp(x)
		p = e / (1.0 + e)
	}
	if p < minConfidence {
		return minConfidence
	}
	if p > maxConfidence {
		return maxConfidence
	}
	return p
}

// Logit is the inverse transform, used when seeding a raw score from a
// confidence estimate (e.g. promoting a suggested hypothesis).
func Logit(p float64) float64 {
	if p < minConfidence {
		p = minConfidence
	}
	if p > maxConfidence {
		p = maxConfidence
	}
	return math.Log(p / (1 - p))
}

// ScoringConfig holds every constant of the confidence update algorithm.
// The two historical implementations of this algorithm evolved different
// constants, so the whole table is injectable rather than hard-coded; pick a
// profile with ClientScoring or ServerScoring.
type ScoringConfig struct {
	Slope                   float64
	ImpactScores            map[domain.Impact]float64
	AuthorityWeights        map[domain.SourceAuthority]float64
	TypeWeights             map[domain.EvidenceType]float64
	DirectnessWeights       map[domain.Directness]float64
	RefuteMultiplier        float64
	CorroborationMultiplier float64
	ConfidenceThreshold     float64
}

// ClientScoring reproduces the client-side constants: refutation and support
// move belief at the same rate.
func ClientScoring() ScoringConfig {
	return ScoringConfig{
		Slope: DefaultSlope,
		ImpactScores: map[domain.Impact]float64{
			domain.ImpactHigh:   0.2,
			domain.ImpactMedium: 0.1,
			domain.ImpactLow:    0.05,
		},
		AuthorityWeights: map[domain.SourceAuthority]float64{
			domain.AuthorityHigh:   1.5,
			domain.AuthorityMedium: 1.0,
			domain.AuthorityLow:    0.7,
		},
		TypeWeights: map[domain.EvidenceType]float64{
			domain.EvidenceQuantitative: 1.2,
			domain.EvidenceQualitative:  1.0,
		},
		DirectnessWeights: map[domain.Directness]float64{
			domain.DirectnessDirect:   1.2,
			domain.DirectnessIndirect: 0.9,
		},
		RefuteMultiplier:        -1.0,
		CorroborationMultiplier: DefaultCorroborationMultiplier,
		ConfidenceThreshold:     DefaultConfidenceThreshold,
	}
}

// ServerScoring reproduces the server-side constants: disconfirming evidence
// moves belief faster than confirming evidence, and the authority spread is
// wider.
func ServerScoring() ScoringConfig {
	return ScoringConfig{
		Slope: DefaultSlope,
		ImpactScores: map[domain.Impact]float64{
			domain.ImpactHigh:   0.2,
			domain.ImpactMedium: 0.1,
			domain.ImpactLow:    0.05,
		},
		AuthorityWeights: map[domain.SourceAuthority]float64{
			domain.AuthorityHigh:   2.0,
			domain.AuthorityMedium: 1.0,
			domain.AuthorityLow:    0.5,
		},
		TypeWeights: map[domain.EvidenceType]float64{
			domain.EvidenceQuantitative: 1.5,
			domain.EvidenceQualitative:  1.0,
		},
		DirectnessWeights: map[domain.Directness]float64{
			domain.DirectnessDirect:   1.5,
			domain.DirectnessIndirect: 0.8,
		},
		RefuteMultiplier:        -1.5,
		CorroborationMultiplier: DefaultCorroborationMultiplier,
		ConfidenceThreshold:     DefaultConfidenceThreshold,
	}
}

// ScoringProfile selects a preset by name. Defaults to the server profile.
func ScoringProfile(name string) ScoringConfig {
	if name == "client" {
		return ClientScoring()
	}
	return ServerScoring()
}

func (cfg ScoringConfig) impactScore(i domain.Impact) float64 {
	if v, ok := cfg.ImpactScores[i]; ok {
		return v
	}
	return 0.05
}

func (cfg ScoringConfig) authorityWeight(a domain.SourceAuthority) float64 {
	if v, ok := cfg.AuthorityWeights[a]; ok {
		return v
	}
	return 1.0
}

func (cfg ScoringConfig) typeWeight(t domain.EvidenceType) float64 {
	if v, ok := cfg.TypeWeights[t]; ok {
		return v
	}
	return 1.0
}

func (cfg ScoringConfig) directnessWeight(d domain.Directness) float64 {
	if v, ok := cfg.DirectnessWeights[d]; ok {
		return v
	}
	return 1.0
}

func (cfg ScoringConfig) transform(score float64) float64 {
	return ConfidenceTransform(score, cfg.Slope)
}
