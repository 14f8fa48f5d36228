package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dogtuna/thoughtify/internal/domain"
	"github.com/dogtuna/thoughtify/internal/embedding"
	"github.com/dogtuna/thoughtify/internal/llm"
	"github.com/dogtuna/thoughtify/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeInitiativeStore implements domain.InitiativeStore over a map.
type fakeInitiativeStore struct {
	initiatives map[uuid.UUID]*domain.Initiative
	unread      map[string]int
	failUpdates int
}

func newFakeInitiativeStore() *fakeInitiativeStore {
	return &fakeInitiativeStore{
		initiatives: make(map[uuid.UUID]*domain.Initiative),
		unread:      make(map[string]int),
	}
}

func (f *fakeInitiativeStore) Create(ctx context.Context, in *domain.Initiative) error {
	in.ID = uuid.New()
	in.Version = 1
	f.initiatives[in.ID] = in
	return nil
}

func (f *fakeInitiativeStore) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Initiative, error) {
	in, ok := f.initiatives[id]
	if !ok || in.UserID != userID {
		return nil, store.ErrNotFound
	}
	cp := *in
	return &cp, nil
}

func (f *fakeInitiativeStore) UpdateHypotheses(ctx context.Context, userID, id uuid.UUID, hyps []domain.Hypothesis, suggested []domain.SuggestedHypothesis, recs []domain.Recommendation, expectedVersion int64) (bool, error) {
	in, ok := f.initiatives[id]
	if !ok || in.UserID != userID {
		return false, store.ErrNotFound
	}
	if f.failUpdates > 0 {
		f.failUpdates--
		in.Version++
		return false, nil
	}
	if in.Version != expectedVersion {
		return false, nil
	}
	in.Hypotheses = hyps
	in.SuggestedHypotheses = suggested
	in.Recommendations = recs
	in.Version++
	return true, nil
}

func (f *fakeInitiativeStore) IncrementUnread(ctx context.Context, id uuid.UUID, category string, n int) error {
	f.unread[category] += n
	return nil
}

func (f *fakeInitiativeStore) UnreadCounts(ctx context.Context, id uuid.UUID) (map[string]int, error) {
	return f.unread, nil
}

type fakeTaskStore struct {
	tasks []domain.Task
	err   error
}

func (f *fakeTaskStore) Create(ctx context.Context, t *domain.Task) error {
	if f.err != nil {
		return f.err
	}
	t.ID = uuid.New()
	f.tasks = append(f.tasks, *t)
	return nil
}

func (f *fakeTaskStore) ListByInitiative(ctx context.Context, initiativeID uuid.UUID) ([]domain.Task, error) {
	return f.tasks, nil
}

type fakeQuestionStore struct {
	questions []domain.Question
}

func (f *fakeQuestionStore) Create(ctx context.Context, q *domain.Question) error {
	q.ID = uuid.New()
	f.questions = append(f.questions, *q)
	return nil
}

func (f *fakeQuestionStore) ListByInitiative(ctx context.Context, initiativeID uuid.UUID) ([]domain.Question, error) {
	return f.questions, nil
}

type fakeMessageStore struct {
	created  []domain.MessageRecord
	attached map[uuid.UUID]string
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{attached: make(map[uuid.UUID]string)}
}

func (f *fakeMessageStore) Create(ctx context.Context, m *domain.MessageRecord) error {
	m.ID = uuid.New()
	f.created = append(f.created, *m)
	return nil
}

func (f *fakeMessageStore) AttachAnalysis(ctx context.Context, id uuid.UUID, analysis string, suggestions []domain.Suggestion) error {
	f.attached[id] = analysis
	return nil
}

func (f *fakeMessageStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.MessageRecord, error) {
	for i := range f.created {
		if f.created[i].ID == id {
			return &f.created[i], nil
		}
	}
	return nil, store.ErrNotFound
}

type fakeNotificationStore struct {
	upserts []domain.Notification
}

func (f *fakeNotificationStore) Upsert(ctx context.Context, n *domain.Notification) error {
	f.upserts = append(f.upserts, *n)
	return nil
}

func (f *fakeNotificationStore) ListByInitiative(ctx context.Context, initiativeID uuid.UUID) ([]domain.Notification, error) {
	return f.upserts, nil
}

type fakeEmbeddingIndex struct {
	added   []string
	matches []domain.SimilarStatement
}

func (f *fakeEmbeddingIndex) Add(ctx context.Context, initiativeID uuid.UUID, hypothesisID, statement string, embedding []float32) error {
	f.added = append(f.added, statement)
	return nil
}

func (f *fakeEmbeddingIndex) FindSimilar(ctx context.Context, initiativeID uuid.UUID, embedding []float32, threshold float32) ([]domain.SimilarStatement, error) {
	return f.matches, nil
}

type pipelineFixture struct {
	svc           *AnswerService
	initiatives   *fakeInitiativeStore
	tasks         *fakeTaskStore
	questions     *fakeQuestionStore
	messages      *fakeMessageStore
	notifications *fakeNotificationStore
	index         *fakeEmbeddingIndex
	mock          *llm.MockClient
	userID        uuid.UUID
	initiativeID  uuid.UUID
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()

	initiatives := newFakeInitiativeStore()
	tasks := &fakeTaskStore{}
	questions := &fakeQuestionStore{}
	messages := newFakeMessageStore()
	notifications := &fakeNotificationStore{}
	index := &fakeEmbeddingIndex{}
	mock := llm.NewMockClient()

	userID := uuid.New()
	init := &domain.Initiative{
		UserID:       userID,
		Name:         "Sales ramp",
		BusinessGoal: "Cut new-hire ramp time",
		Contacts:     []domain.Contact{{Name: "Dana", Role: "VP Sales"}},
		Hypotheses: []domain.Hypothesis{
			{ID: "H1", Statement: "Onboarding is too long", ConfidenceScore: 1.2},
		},
	}
	require.NoError(t, initiatives.Create(context.Background(), init))

	svc := NewAnswerService(initiatives, tasks, questions, messages, notifications, mock, ServerScoring(), zap.NewNop())
	svc.SetEmbeddingIndex(index, embedding.NewMockClient(), 0.92)

	return &pipelineFixture{
		svc:           svc,
		initiatives:   initiatives,
		tasks:         tasks,
		questions:     questions,
		messages:      messages,
		notifications: notifications,
		index:         index,
		mock:          mock,
		userID:        userID,
		initiativeID:  init.ID,
	}
}

func (f *pipelineFixture) input() AnswerInput {
	return AnswerInput{
		UserID:       f.userID,
		InitiativeID: f.initiativeID,
		QuestionText: "How long does ramp take today?",
		AnswerText:   "New reps need about six months to hit quota.",
		Respondent:   "dana@example.com",
	}
}

func TestProcessAnswerEndToEnd(t *testing.T) {
	f := newPipelineFixture(t)
	f.mock.AnalyzeAnswerResponse = &domain.AnswerAnalysis{
		Analysis: "Ramp time far exceeds industry norms.",
		Suggestions: []domain.Suggestion{
			{Text: "Ask enablement for the current curriculum", Category: domain.CategoryQuestion, Who: "Dana", TaskType: domain.TaskTypeExplore},
			{Text: "Schedule a ramp review meeting", Category: domain.CategoryMeeting, Who: "Dana", HypothesisID: "H1", TaskType: domain.TaskTypeValidate},
		},
	}
	f.mock.TriageEvidenceResponse = &domain.TriageResult{
		AnalysisSummary: "Six-month ramp supports the onboarding hypothesis.",
		HypothesisLinks: []domain.HypothesisLink{{
			HypothesisID:    "H1",
			Relationship:    domain.RelationshipSupports,
			Impact:          domain.ImpactHigh,
			Source:          "Dana",
			SourceAuthority: domain.AuthorityHigh,
			EvidenceType:    domain.EvidenceQuantitative,
			Directness:      domain.DirectnessDirect,
		}},
		NewHypothesis: &domain.ProposedHypothesis{
			Statement:  "Quota targets are set before reps finish training",
			Confidence: 0.6,
		},
	}

	result := f.svc.ProcessAnswer(context.Background(), f.input())

	require.NotNil(t, result)
	assert.Equal(t, "Ramp time far exceeds industry norms.", result.Analysis)
	assert.Len(t, result.Suggestions, 2)

	// One question document and one task document, with unread bumps per category.
	require.Len(t, f.questions.questions, 1)
	assert.Equal(t, domain.QuestionSourceSuggested, f.questions.questions[0].Source)
	require.Len(t, f.tasks.tasks, 1)
	assert.Equal(t, string(domain.CategoryMeeting), f.tasks.tasks[0].Category)
	assert.Equal(t, domain.TaskStatusPending, f.tasks.tasks[0].Status)
	assert.Equal(t, 1, f.initiatives.unread["question"])
	assert.Equal(t, 1, f.initiatives.unread["meeting"])

	// The answer message is recorded and announced.
	require.Len(t, f.messages.created, 1)
	assert.Equal(t, "Ramp time far exceeds industry norms.", f.messages.created[0].Analysis)
	var answerNote, confidenceNote *domain.Notification
	for i := range f.notifications.upserts {
		switch f.notifications.upserts[i].Type {
		case domain.NotificationAnswerReceived:
			answerNote = &f.notifications.upserts[i]
		case domain.NotificationHypothesisConfidence:
			confidenceNote = &f.notifications.upserts[i]
		}
	}
	require.NotNil(t, answerNote)
	assert.Contains(t, answerNote.Href, f.messages.created[0].ID.String())

	// H1 gained high-weight supporting evidence and crossed the threshold.
	updated := f.initiatives.initiatives[f.initiativeID]
	h1 := updated.Hypotheses[0]
	assert.Greater(t, h1.ConfidenceScore, 1.2)
	assert.GreaterOrEqual(t, h1.Confidence, 0.80)
	require.Len(t, h1.Evidence.Supporting, 1)
	assert.Equal(t, "Dana", h1.Evidence.Supporting[0].Source)
	require.NotNil(t, confidenceNote)
	assert.Equal(t, fmt.Sprintf("/initiatives/%s/hypotheses/H1", f.initiativeID), confidenceNote.Href)

	// The proposed hypothesis was parked, indexed, and counted.
	require.Len(t, updated.SuggestedHypotheses, 1)
	assert.Equal(t, "Quota targets are set before reps finish training", updated.SuggestedHypotheses[0].Statement)
	assert.Len(t, f.index.added, 1)
	assert.Equal(t, 1, f.initiatives.unread["hypotheses"])
}

func TestProcessAnswerHighAuthorityRefutation(t *testing.T) {
	f := newPipelineFixture(t)
	f.initiatives.initiatives[f.initiativeID].Hypotheses[0].ConfidenceScore = 0
	f.mock.TriageEvidenceResponse = &domain.TriageResult{
		AnalysisSummary: "Directly contradicts the onboarding hypothesis.",
		HypothesisLinks: []domain.HypothesisLink{{
			HypothesisID:    "H1",
			Relationship:    domain.RelationshipRefutes,
			Impact:          domain.ImpactHigh,
			Source:          "CFO",
			SourceAuthority: domain.AuthorityHigh,
			EvidenceType:    domain.EvidenceQuantitative,
			Directness:      domain.DirectnessDirect,
		}},
	}

	f.svc.ProcessAnswer(context.Background(), f.input())

	h1 := f.initiatives.initiatives[f.initiativeID].Hypotheses[0]
	require.Len(t, h1.Evidence.Refuting, 1)
	assert.Empty(t, h1.Evidence.Supporting)
	assert.Negative(t, h1.ConfidenceScore)
	assert.Less(t, h1.Confidence, 0.5)
	require.Len(t, h1.AuditLog, 1)
	assert.Negative(t, h1.AuditLog[0].Weight)
}

func TestProcessAnswerNoNotificationWhenRunEndsBelowThreshold(t *testing.T) {
	f := newPipelineFixture(t)
	support := domain.HypothesisLink{
		HypothesisID:    "H1",
		Relationship:    domain.RelationshipSupports,
		Impact:          domain.ImpactHigh,
		Source:          "Dana",
		SourceAuthority: domain.AuthorityHigh,
		EvidenceType:    domain.EvidenceQuantitative,
		Directness:      domain.DirectnessDirect,
	}
	refute := support
	refute.Relationship = domain.RelationshipRefutes
	refute.Source = "CFO"
	// The support alone lifts H1 past 0.80; the refutation pulls it back
	// below before the run commits.
	f.mock.TriageEvidenceResponse = &domain.TriageResult{
		HypothesisLinks: []domain.HypothesisLink{support, refute},
	}

	f.svc.ProcessAnswer(context.Background(), f.input())

	h1 := f.initiatives.initiatives[f.initiativeID].Hypotheses[0]
	require.Len(t, h1.Evidence.Supporting, 1)
	require.Len(t, h1.Evidence.Refuting, 1)
	assert.Less(t, h1.Confidence, 0.80)

	for _, n := range f.notifications.upserts {
		assert.NotEqual(t, domain.NotificationHypothesisConfidence, n.Type,
			"a hypothesis that ends the run below the threshold must not announce a crossing")
	}
}

func TestProcessAnswerMissingInputsIsNoOp(t *testing.T) {
	f := newPipelineFixture(t)

	for name, in := range map[string]AnswerInput{
		"no user":       {InitiativeID: f.initiativeID, AnswerText: "x"},
		"no initiative": {UserID: f.userID, AnswerText: "x"},
		"blank answer":  {UserID: f.userID, InitiativeID: f.initiativeID, AnswerText: "   "},
	} {
		t.Run(name, func(t *testing.T) {
			result := f.svc.ProcessAnswer(context.Background(), in)
			require.NotNil(t, result)
			assert.Empty(t, result.Analysis)
			assert.Empty(t, result.Suggestions)
		})
	}

	assert.Empty(t, f.mock.AnalyzeAnswerCalls)
	assert.Empty(t, f.mock.TriageEvidenceCalls)
	assert.Empty(t, f.messages.created)
}

func TestProcessAnswerAnalysisFailureStillTriages(t *testing.T) {
	f := newPipelineFixture(t)
	f.mock.AnalyzeAnswerError = errors.New("model unavailable")
	f.mock.TriageEvidenceResponse = &domain.TriageResult{
		AnalysisSummary: "supports H1",
		HypothesisLinks: []domain.HypothesisLink{{
			HypothesisID: "H1",
			Relationship: domain.RelationshipSupports,
			Impact:       domain.ImpactMedium,
			Source:       "Dana",
		}},
	}

	result := f.svc.ProcessAnswer(context.Background(), f.input())

	require.NotNil(t, result)
	assert.Empty(t, result.Analysis)

	updated := f.initiatives.initiatives[f.initiativeID]
	assert.Greater(t, updated.Hypotheses[0].ConfidenceScore, 1.2,
		"triage should run even when analysis failed")
}

func TestProcessAnswerTriageFailureIsolated(t *testing.T) {
	f := newPipelineFixture(t)
	f.mock.AnalyzeAnswerResponse = &domain.AnswerAnalysis{Analysis: "useful answer"}
	f.mock.TriageEvidenceError = errors.New("model unavailable")

	result := f.svc.ProcessAnswer(context.Background(), f.input())

	require.NotNil(t, result)
	assert.Equal(t, "useful answer", result.Analysis)
	assert.Len(t, f.messages.created, 1, "message recording must survive triage failure")

	updated := f.initiatives.initiatives[f.initiativeID]
	assert.Equal(t, 1.2, updated.Hypotheses[0].ConfidenceScore)
}

func TestProcessAnswerRetriesOnVersionConflict(t *testing.T) {
	f := newPipelineFixture(t)
	f.initiatives.failUpdates = 1
	f.mock.TriageEvidenceResponse = &domain.TriageResult{
		HypothesisLinks: []domain.HypothesisLink{{
			HypothesisID: "H1",
			Relationship: domain.RelationshipSupports,
			Impact:       domain.ImpactMedium,
			Source:       "Dana",
		}},
	}

	f.svc.ProcessAnswer(context.Background(), f.input())

	updated := f.initiatives.initiatives[f.initiativeID]
	require.Len(t, updated.Hypotheses[0].Evidence.Supporting, 1,
		"update should land on the retry after a version conflict")
}

func TestProcessAnswerSkipsDuplicateSuggestedHypothesis(t *testing.T) {
	f := newPipelineFixture(t)
	f.index.matches = []domain.SimilarStatement{
		{HypothesisID: "H1", Statement: "Onboarding is too long", Score: 0.97},
	}
	f.mock.TriageEvidenceResponse = &domain.TriageResult{
		NewHypothesis: &domain.ProposedHypothesis{
			Statement:  "Onboarding takes too much time",
			Confidence: 0.5,
		},
	}

	f.svc.ProcessAnswer(context.Background(), f.input())

	updated := f.initiatives.initiatives[f.initiativeID]
	assert.Empty(t, updated.SuggestedHypotheses)
	assert.Empty(t, f.index.added)
	assert.Zero(t, f.initiatives.unread["hypotheses"])
}

func TestProcessAnswerTaskFailureDoesNotAbortSiblings(t *testing.T) {
	f := newPipelineFixture(t)
	f.tasks.err = errors.New("insert failed")
	f.mock.AnalyzeAnswerResponse = &domain.AnswerAnalysis{
		Analysis: "ok",
		Suggestions: []domain.Suggestion{
			{Text: "Schedule a ramp review", Category: domain.CategoryMeeting, Who: "Dana", TaskType: domain.TaskTypeValidate},
			{Text: "Ask enablement about the curriculum", Category: domain.CategoryQuestion, Who: "Dana", TaskType: domain.TaskTypeExplore},
		},
	}

	f.svc.ProcessAnswer(context.Background(), f.input())

	assert.Empty(t, f.tasks.tasks)
	require.Len(t, f.questions.questions, 1)
	assert.Equal(t, 1, f.initiatives.unread["question"])
	assert.Zero(t, f.initiatives.unread["meeting"], "failed writes must not bump counters")
}

func TestProcessAnswerIgnoresUnknownHypothesisLinks(t *testing.T) {
	f := newPipelineFixture(t)
	f.mock.TriageEvidenceResponse = &domain.TriageResult{
		HypothesisLinks: []domain.HypothesisLink{{
			HypothesisID: "H99",
			Relationship: domain.RelationshipSupports,
			Impact:       domain.ImpactHigh,
			Source:       "Dana",
		}},
	}

	f.svc.ProcessAnswer(context.Background(), f.input())

	updated := f.initiatives.initiatives[f.initiativeID]
	assert.Equal(t, 1.2, updated.Hypotheses[0].ConfidenceScore)
	assert.Empty(t, updated.Hypotheses[0].Evidence.Supporting)
}

func TestBuildContextBlock(t *testing.T) {
	init := &domain.Initiative{
		BusinessGoal: "Cut ramp time",
		Contacts:     []domain.Contact{{Name: "Dana", Role: "VP Sales"}},
		PriorQA: []domain.QAEntry{
			{Question: "What is ramp today?", Answer: "Six months"},
		},
		SourceMaterials: []string{"Q2 enablement survey"},
	}

	block := buildContextBlock(init)

	for _, line := range []string{
		"Business Goal: Cut ramp time",
		"Contact: Dana (VP Sales)",
		"Q: What is ramp today?",
		"A: Six months",
		"Source Material: Q2 enablement survey",
	} {
		assert.Contains(t, block, line)
	}
	assert.NotContains(t, block, "Audience Profile", "empty fields are omitted")
	assert.False(t, strings.Contains(block, "Constraints:"))
}
