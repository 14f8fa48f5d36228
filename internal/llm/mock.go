package llm

import (
	"context"

	"github.com/dogtuna/thoughtify/internal/domain"
)

// MockClient is a configurable classifier for testing. Set the response
// fields to control what each method returns.
type MockClient struct {
	AnalyzeAnswerResponse  *domain.AnswerAnalysis
	AnalyzeAnswerError     error
	TriageEvidenceResponse *domain.TriageResult
	TriageEvidenceError    error

	// Call tracking for assertions
	AnalyzeAnswerCalls  []domain.AnalysisRequest
	TriageEvidenceCalls []domain.TriageRequest
}

func NewMockClient() *MockClient {
	return &MockClient{
		AnalyzeAnswerResponse: &domain.AnswerAnalysis{
			Analysis:    "Mock analysis",
			Suggestions: []domain.Suggestion{},
		},
		TriageEvidenceResponse: &domain.TriageResult{
			AnalysisSummary: "Mock triage summary",
			HypothesisLinks: []domain.HypothesisLink{},
		},
	}
}

func (c *MockClient) AnalyzeAnswer(ctx context.Context, req domain.AnalysisRequest) (*domain.AnswerAnalysis, error) {
	c.AnalyzeAnswerCalls = append(c.AnalyzeAnswerCalls, req)
	if c.AnalyzeAnswerError != nil {
		return nil, c.AnalyzeAnswerError
	}
	return c.AnalyzeAnswerResponse, nil
}

func (c *MockClient) TriageEvidence(ctx context.Context, req domain.TriageRequest) (*domain.TriageResult, error) {
	c.TriageEvidenceCalls = append(c.TriageEvidenceCalls, req)
	if c.TriageEvidenceError != nil {
		return nil, c.TriageEvidenceError
	}
	return c.TriageEvidenceResponse, nil
}
