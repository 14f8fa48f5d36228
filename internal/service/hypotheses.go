package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dogtuna/thoughtify/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrStatementRequired  = errors.New("hypothesis statement is required")
	ErrSuggestionNotFound = errors.New("suggested hypothesis not found")
	ErrWeakerThanExisting = errors.New("suggested hypothesis is weaker than every existing hypothesis")
	ErrUpdateContention   = errors.New("hypothesis update contention")
)

// HypothesisService covers the manual lifecycle operations on the hypothesis
// collection: creating a hypothesis by hand and promoting a classifier
// suggestion into the working set.
type HypothesisService struct {
	initiatives   domain.InitiativeStore
	hypEmbeddings domain.HypothesisEmbeddingStore
	embedder      domain.EmbeddingClient
	scoring       ScoringConfig
	logger        *zap.Logger
}

func NewHypothesisService(initiatives domain.InitiativeStore, scoring ScoringConfig, logger *zap.Logger) *HypothesisService {
	return &HypothesisService{
		initiatives: initiatives,
		scoring:     scoring,
		logger:      logger,
	}
}

// SetEmbeddingIndex enables indexing of new hypothesis statements so later
// classifier proposals can be matched against them.
func (s *HypothesisService) SetEmbeddingIndex(store domain.HypothesisEmbeddingStore, client domain.EmbeddingClient) {
	s.hypEmbeddings = store
	s.embedder = client
}

// Create adds a user-authored hypothesis with a neutral starting score.
func (s *HypothesisService) Create(ctx context.Context, userID, initiativeID uuid.UUID, statement string) (*domain.Hypothesis, error) {
	statement = strings.TrimSpace(statement)
	if statement == "" {
		return nil, ErrStatementRequired
	}

	for attempt := 0; attempt < casAttempts; attempt++ {
		init, err := s.initiatives.Get(ctx, userID, initiativeID)
		if err != nil {
			return nil, fmt.Errorf("load initiative: %w", err)
		}

		h := domain.Hypothesis{
			ID:         nextHypothesisID(init.Hypotheses),
			Statement:  statement,
			Confidence: s.scoring.transform(0),
		}

		hyps := append(append([]domain.Hypothesis(nil), init.Hypotheses...), h)
		ok, err := s.initiatives.UpdateHypotheses(ctx, userID, initiativeID, hyps, init.SuggestedHypotheses, init.Recommendations, init.Version)
		if err != nil {
			return nil, fmt.Errorf("persist hypothesis: %w", err)
		}
		if !ok {
			continue
		}

		s.indexStatement(ctx, initiativeID, h.ID, h.Statement)
		return &h, nil
	}
	return nil, ErrUpdateContention
}

// Promote moves a suggested hypothesis into the working set. The suggestion
// must arrive with a confidence estimate above the weakest existing
// hypothesis; otherwise it stays in the suggestion list. The estimate seeds
// the raw score through the inverse transform so subsequent evidence updates
// continue from it.
func (s *HypothesisService) Promote(ctx context.Context, userID, initiativeID uuid.UUID, suggestedID string) (*domain.Hypothesis, error) {
	for attempt := 0; attempt < casAttempts; attempt++ {
		init, err := s.initiatives.Get(ctx, userID, initiativeID)
		if err != nil {
			return nil, fmt.Errorf("load initiative: %w", err)
		}

		idx := -1
		for i := range init.SuggestedHypotheses {
			if init.SuggestedHypotheses[i].ID == suggestedID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, ErrSuggestionNotFound
		}
		sug := init.SuggestedHypotheses[idx]

		if len(init.Hypotheses) > 0 && sug.Confidence <= weakestConfidence(s.scoring, init.Hypotheses) {
			return nil, ErrWeakerThanExisting
		}

		score := Logit(sug.Confidence)
		h := domain.Hypothesis{
			ID:              nextHypothesisID(init.Hypotheses),
			Statement:       sug.Statement,
			ConfidenceScore: score,
			Confidence:      s.scoring.transform(score),
		}

		hyps := append(append([]domain.Hypothesis(nil), init.Hypotheses...), h)
		suggested := append([]domain.SuggestedHypothesis(nil), init.SuggestedHypotheses[:idx]...)
		suggested = append(suggested, init.SuggestedHypotheses[idx+1:]...)

		ok, err := s.initiatives.UpdateHypotheses(ctx, userID, initiativeID, hyps, suggested, init.Recommendations, init.Version)
		if err != nil {
			return nil, fmt.Errorf("persist hypothesis: %w", err)
		}
		if !ok {
			continue
		}

		s.indexStatement(ctx, initiativeID, h.ID, h.Statement)
		return &h, nil
	}
	return nil, ErrUpdateContention
}

func (s *HypothesisService) indexStatement(ctx context.Context, initiativeID uuid.UUID, hypothesisID, statement string) {
	if s.embedder == nil || s.hypEmbeddings == nil {
		return
	}
	vec, err := s.embedder.Embed(ctx, statement)
	if err != nil {
		s.logger.Warn("embed hypothesis statement failed", zap.Error(err))
		return
	}
	if err := s.hypEmbeddings.Add(ctx, initiativeID, hypothesisID, statement, vec); err != nil {
		s.logger.Warn("index hypothesis statement failed", zap.Error(err))
	}
}

func weakestConfidence(cfg ScoringConfig, hyps []domain.Hypothesis) float64 {
	weakest := 1.0
	for _, h := range hyps {
		c := h.Confidence
		if c == 0 {
			c = cfg.transform(h.ConfidenceScore)
		}
		if c < weakest {
			weakest = c
		}
	}
	return weakest
}

// nextHypothesisID allocates the next H<n> identifier. IDs are never reused:
// the allocator walks past the highest number ever assigned, not the count.
func nextHypothesisID(hyps []domain.Hypothesis) string {
	max := 0
	for _, h := range hyps {
		if !strings.HasPrefix(h.ID, "H") {
			continue
		}
		if n, err := strconv.Atoi(h.ID[1:]); err == nil && n > max {
			max = n
		}
	}
	return "H" + strconv.Itoa(max+1)
}
