package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dogtuna/thoughtify/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// casAttempts bounds the read-apply-write retries when concurrent runs touch
// the same initiative. Link application is pure, so replaying a batch against
// a fresh snapshot is safe.
const casAttempts = 3

// AnswerInput is everything the pipeline needs to process one answer.
type AnswerInput struct {
	UserID       uuid.UUID
	InitiativeID uuid.UUID
	QuestionID   string
	MessageID    string
	QuestionText string
	AnswerText   string
	ExtraText    string
	Respondent   string
	Subject      string
}

// AnswerService runs the answer-processing pipeline: analyze the answer,
// persist follow-up work items, then triage the answer as evidence against
// the initiative's hypotheses. Every phase degrades instead of failing;
// recording an answer must never break because enrichment did.
type AnswerService struct {
	initiatives   domain.InitiativeStore
	tasks         domain.TaskStore
	questions     domain.QuestionStore
	messages      domain.MessageStore
	notifications domain.NotificationStore
	llm           domain.LLMClient
	scoring       ScoringConfig
	logger        *zap.Logger

	hypEmbeddings       domain.HypothesisEmbeddingStore
	embedder            domain.EmbeddingClient
	similarityThreshold float32

	now func() time.Time
}

func NewAnswerService(
	initiatives domain.InitiativeStore,
	tasks domain.TaskStore,
	questions domain.QuestionStore,
	messages domain.MessageStore,
	notifications domain.NotificationStore,
	llm domain.LLMClient,
	scoring ScoringConfig,
	logger *zap.Logger,
) *AnswerService {
	return &AnswerService{
		initiatives:   initiatives,
		tasks:         tasks,
		questions:     questions,
		messages:      messages,
		notifications: notifications,
		llm:           llm,
		scoring:       scoring,
		logger:        logger,
		now:           time.Now,
	}
}

// SetEmbeddingIndex enables duplicate detection for suggested hypotheses.
// Without it every classifier proposal is treated as new.
func (s *AnswerService) SetEmbeddingIndex(store domain.HypothesisEmbeddingStore, client domain.EmbeddingClient, threshold float32) {
	s.hypEmbeddings = store
	s.embedder = client
	s.similarityThreshold = threshold
}

// ProcessAnswer runs the pipeline for one answer. It always returns a
// result; missing preconditions yield an empty one with no side effects,
// and downstream failures are logged rather than surfaced.
func (s *AnswerService) ProcessAnswer(ctx context.Context, in AnswerInput) *domain.AnswerAnalysis {
	empty := &domain.AnswerAnalysis{Analysis: "", Suggestions: []domain.Suggestion{}}
	if in.UserID == uuid.Nil || in.InitiativeID == uuid.Nil || strings.TrimSpace(in.AnswerText) == "" || s.llm == nil {
		return empty
	}

	init, err := s.initiatives.Get(ctx, in.UserID, in.InitiativeID)
	if err != nil {
		s.logger.Warn("load initiative failed",
			zap.String("initiative_id", in.InitiativeID.String()),
			zap.Error(err))
		return empty
	}

	analysis, err := s.llm.AnalyzeAnswer(ctx, domain.AnalysisRequest{
		ContextBlock: buildContextBlock(init),
		QuestionText: in.QuestionText,
		AnswerText:   in.AnswerText,
		ExtraText:    in.ExtraText,
	})
	if err != nil {
		s.logger.Warn("answer analysis failed", zap.Error(err))
		analysis = &domain.AnswerAnalysis{}
	}

	suggestions := s.normalizeAgainstExisting(ctx, init.ID, analysis.Suggestions)
	result := &domain.AnswerAnalysis{Analysis: analysis.Analysis, Suggestions: suggestions}

	s.persistSuggestions(ctx, init.ID, suggestions)
	s.recordMessage(ctx, in, result)

	if err := s.runTriage(ctx, in, init); err != nil {
		s.logger.Warn("evidence triage skipped",
			zap.String("initiative_id", in.InitiativeID.String()),
			zap.Error(err))
	}

	return result
}

// normalizeAgainstExisting loads current task and question texts and filters
// the raw suggestions against them. Store errors leave the existing sets
// empty; a duplicate slipping through is better than dropping the batch.
func (s *AnswerService) normalizeAgainstExisting(ctx context.Context, initiativeID uuid.UUID, raw []domain.Suggestion) []domain.Suggestion {
	var existingTasks, existingQuestions []string

	tasks, err := s.tasks.ListByInitiative(ctx, initiativeID)
	if err != nil {
		s.logger.Warn("list tasks failed", zap.Error(err))
	}
	for _, t := range tasks {
		existingTasks = append(existingTasks, t.Message)
	}

	questions, err := s.questions.ListByInitiative(ctx, initiativeID)
	if err != nil {
		s.logger.Warn("list questions failed", zap.Error(err))
	}
	for _, q := range questions {
		existingQuestions = append(existingQuestions, q.Text)
	}

	return NormalizeSuggestions(raw, existingTasks, existingQuestions)
}

// persistSuggestions writes each surviving suggestion as a pending task or a
// suggested question. The new documents are disjoint, so the writes run
// concurrently; all are awaited before returning. Unread counters are bumped
// once per category for the documents that actually landed.
func (s *AnswerService) persistSuggestions(ctx context.Context, initiativeID uuid.UUID, suggestions []domain.Suggestion) {
	if len(suggestions) == 0 {
		return
	}

	var mu sync.Mutex
	created := map[string]int{}

	g, gctx := errgroup.WithContext(ctx)
	for _, sug := range suggestions {
		sug := sug
		g.Go(func() error {
			var err error
			if sug.Category == domain.CategoryQuestion {
				err = s.questions.Create(gctx, &domain.Question{
					InitiativeID: initiativeID,
					Text:         sug.Text,
					Who:          sug.Who,
					HypothesisID: sug.HypothesisID,
					Source:       domain.QuestionSourceSuggested,
				})
			} else {
				err = s.tasks.Create(gctx, &domain.Task{
					InitiativeID: initiativeID,
					Message:      sug.Text,
					Category:     string(sug.Category),
					Who:          sug.Who,
					HypothesisID: sug.HypothesisID,
					TaskType:     string(sug.TaskType),
					Status:       domain.TaskStatusPending,
				})
			}
			if err != nil {
				// Siblings keep going; a failed write costs one suggestion.
				s.logger.Warn("persist suggestion failed",
					zap.String("category", string(sug.Category)),
					zap.Error(err))
				return nil
			}
			mu.Lock()
			created[string(sug.Category)]++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for category, n := range created {
		if err := s.initiatives.IncrementUnread(ctx, initiativeID, category, n); err != nil {
			s.logger.Warn("increment unread counter failed",
				zap.String("category", category),
				zap.Error(err))
		}
	}
}

// recordMessage attaches the analysis to the originating message (creating
// one when none was supplied) and emits the answer-received notification.
func (s *AnswerService) recordMessage(ctx context.Context, in AnswerInput, result *domain.AnswerAnalysis) {
	var messageID uuid.UUID

	if id, err := uuid.Parse(in.MessageID); err == nil && id != uuid.Nil {
		messageID = id
		if err := s.messages.AttachAnalysis(ctx, id, result.Analysis, result.Suggestions); err != nil {
			s.logger.Warn("attach analysis to message failed", zap.Error(err))
			return
		}
	} else {
		msg := &domain.MessageRecord{
			InitiativeID: in.InitiativeID,
			QuestionID:   in.QuestionID,
			Subject:      in.Subject,
			Respondent:   in.Respondent,
			QuestionText: in.QuestionText,
			AnswerText:   in.AnswerText,
			Analysis:     result.Analysis,
			Suggestions:  result.Suggestions,
		}
		if err := s.messages.Create(ctx, msg); err != nil {
			s.logger.Warn("create answer message failed", zap.Error(err))
			return
		}
		messageID = msg.ID
	}

	n := &domain.Notification{
		InitiativeID: in.InitiativeID,
		Type:         domain.NotificationAnswerReceived,
		Count:        1,
		Href:         fmt.Sprintf("/initiatives/%s/messages/%s", in.InitiativeID, messageID),
	}
	if err := s.notifications.Upsert(ctx, n); err != nil {
		s.logger.Warn("answer notification failed", zap.Error(err))
	}
}

// runTriage performs the second classifier call and folds every returned
// link into the hypothesis collection, writing the whole collection back
// under a version check. Errors here never reach the pipeline's caller.
func (s *AnswerService) runTriage(ctx context.Context, in AnswerInput, loaded *domain.Initiative) error {
	evidenceText := strings.TrimSpace(in.AnswerText)
	if strings.TrimSpace(in.ExtraText) != "" {
		evidenceText += "\n" + strings.TrimSpace(in.ExtraText)
	}

	res, err := s.llm.TriageEvidence(ctx, domain.TriageRequest{
		Hypotheses:   loaded.Hypotheses,
		Stakeholders: loaded.Contacts,
		EvidenceText: evidenceText,
	})
	if err != nil {
		return fmt.Errorf("triage classification: %w", err)
	}

	user := in.Respondent
	if user == "" {
		user = in.UserID.String()
	}

	// The classifier's proposal is vetted once, up front; the CAS loop only
	// re-applies pure state transitions.
	var proposal *domain.SuggestedHypothesis
	var proposalVec []float32
	if res.NewHypothesis != nil && strings.TrimSpace(res.NewHypothesis.Statement) != "" {
		vec, dup := s.duplicateStatement(ctx, loaded.ID, res.NewHypothesis.Statement)
		if dup {
			s.logger.Info("suggested hypothesis skipped as duplicate",
				zap.String("statement", res.NewHypothesis.Statement))
		} else {
			proposal = &domain.SuggestedHypothesis{
				ID:         uuid.NewString(),
				Statement:  strings.TrimSpace(res.NewHypothesis.Statement),
				Confidence: res.NewHypothesis.Confidence,
				CreatedAt:  s.now(),
			}
			proposalVec = vec
		}
	}

	init := loaded
	for attempt := 0; attempt < casAttempts; attempt++ {
		if attempt > 0 {
			init, err = s.initiatives.Get(ctx, in.UserID, in.InitiativeID)
			if err != nil {
				return fmt.Errorf("reload initiative: %w", err)
			}
		}

		working := make([]domain.Hypothesis, len(init.Hypotheses))
		for i, h := range init.Hypotheses {
			working[i] = h.Clone()
		}

		// Threshold crossings are judged for the run as a whole, not per
		// link: a batch that pushes a hypothesis above 0.80 and back down
		// again must not notify.
		startConfidence := make(map[string]float64, len(working))
		for _, h := range working {
			c := h.Confidence
			if c == 0 {
				c = s.scoring.transform(h.ConfidenceScore)
			}
			startConfidence[h.ID] = c
		}

		now := s.now()
		var newRecs []domain.Recommendation
		for _, link := range res.HypothesisLinks {
			idx := indexByID(working, link.HypothesisID)
			if idx < 0 {
				s.logger.Debug("triage link references unknown hypothesis",
					zap.String("hypothesis_id", link.HypothesisID))
				continue
			}
			updated, recs := s.scoring.ApplyEvidence(working[idx], EvidenceUpdate{
				Link:            link,
				EvidenceText:    evidenceText,
				AnalysisSummary: res.AnalysisSummary,
				User:            user,
				Now:             now,
			})
			working[idx] = updated
			newRecs = append(newRecs, recs...)
		}

		var crossed []string
		for _, h := range working {
			if startConfidence[h.ID] < s.scoring.ConfidenceThreshold && h.Confidence >= s.scoring.ConfidenceThreshold {
				crossed = append(crossed, h.ID)
			}
		}

		suggested := append([]domain.SuggestedHypothesis(nil), init.SuggestedHypotheses...)
		if proposal != nil {
			suggested = append(suggested, *proposal)
		}
		recs := append(append([]domain.Recommendation(nil), init.Recommendations...), newRecs...)

		ok, err := s.initiatives.UpdateHypotheses(ctx, in.UserID, in.InitiativeID, working, suggested, recs, init.Version)
		if err != nil {
			return fmt.Errorf("persist hypotheses: %w", err)
		}
		if !ok {
			s.logger.Debug("hypothesis write lost the race, retrying",
				zap.Int("attempt", attempt+1))
			continue
		}

		s.afterTriageCommit(ctx, init.ID, proposal, proposalVec, crossed)
		return nil
	}

	return fmt.Errorf("hypothesis update contention after %d attempts", casAttempts)
}

func (s *AnswerService) afterTriageCommit(ctx context.Context, initiativeID uuid.UUID, proposal *domain.SuggestedHypothesis, proposalVec []float32, crossed []string) {
	if proposal != nil {
		if s.hypEmbeddings != nil && proposalVec != nil {
			if err := s.hypEmbeddings.Add(ctx, initiativeID, proposal.ID, proposal.Statement, proposalVec); err != nil {
				s.logger.Warn("index suggested hypothesis failed", zap.Error(err))
			}
		}
		if err := s.initiatives.IncrementUnread(ctx, initiativeID, "hypotheses", 1); err != nil {
			s.logger.Warn("increment hypothesis counter failed", zap.Error(err))
		}
	}

	for _, hypothesisID := range crossed {
		n := &domain.Notification{
			InitiativeID: initiativeID,
			Type:         domain.NotificationHypothesisConfidence,
			Count:        1,
			Href:         fmt.Sprintf("/initiatives/%s/hypotheses/%s", initiativeID, hypothesisID),
		}
		if err := s.notifications.Upsert(ctx, n); err != nil {
			s.logger.Warn("threshold notification failed",
				zap.String("hypothesis_id", hypothesisID),
				zap.Error(err))
		}
	}
}

// duplicateStatement embeds the proposed statement and checks it against the
// initiative's indexed hypothesis statements. Any failure counts as "not a
// duplicate": losing dedupe is cheaper than losing the proposal.
func (s *AnswerService) duplicateStatement(ctx context.Context, initiativeID uuid.UUID, statement string) ([]float32, bool) {
	if s.embedder == nil || s.hypEmbeddings == nil {
		return nil, false
	}
	vec, err := s.embedder.Embed(ctx, statement)
	if err != nil {
		s.logger.Warn("embed suggested hypothesis failed", zap.Error(err))
		return nil, false
	}
	matches, err := s.hypEmbeddings.FindSimilar(ctx, initiativeID, vec, s.similarityThreshold)
	if err != nil {
		s.logger.Warn("similarity lookup failed", zap.Error(err))
		return vec, false
	}
	return vec, len(matches) > 0
}

// buildContextBlock assembles the textual project context for the analysis
// prompt. Only non-empty fields appear, each on its own labeled line.
func buildContextBlock(init *domain.Initiative) string {
	var b strings.Builder
	add := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			b.WriteString(label)
			b.WriteString(": ")
			b.WriteString(strings.TrimSpace(value))
			b.WriteString("\n")
		}
	}

	add("Business Goal", init.BusinessGoal)
	add("Audience Profile", init.AudienceProfile)
	add("Constraints", init.ProjectConstraints)
	for _, c := range init.Contacts {
		line := c.Name
		if c.Role != "" {
			line += " (" + c.Role + ")"
		}
		add("Contact", line)
	}
	for _, qa := range init.PriorQA {
		add("Q", qa.Question)
		add("A", qa.Answer)
	}
	for _, sm := range init.SourceMaterials {
		add("Source Material", sm)
	}
	return b.String()
}

func indexByID(hyps []domain.Hypothesis, id string) int {
	for i := range hyps {
		if hyps[i].ID == id {
			return i
		}
	}
	return -1
}
