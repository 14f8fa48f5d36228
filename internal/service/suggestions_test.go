package service

import (
	"testing"

	"github.com/dogtuna/thoughtify/internal/domain"
)

func TestNormalizeSuggestionsDropsIncomplete(t *testing.T) {
	raw := []domain.Suggestion{
		{Text: "", Category: domain.CategoryQuestion, Who: "Dana"},
		{Text: "Ask about ramp time", Category: "", Who: "Dana"},
		{Text: "Ask about ramp time", Category: domain.CategoryQuestion, Who: ""},
		{Text: "Ask about ramp time", Category: domain.CategoryQuestion, Who: "Dana", TaskType: domain.TaskTypeValidate},
	}

	out := NormalizeSuggestions(raw, nil, nil)
	if len(out) != 1 {
		t.Fatalf("expected 1 surviving suggestion, got %d", len(out))
	}
	if out[0].Text != "Ask about ramp time" {
		t.Errorf("unexpected survivor: %+v", out[0])
	}
}

func TestNormalizeSuggestionsRejectsUnknownCategory(t *testing.T) {
	raw := []domain.Suggestion{
		{Text: "Do a thing", Category: "carrier-pigeon", Who: "Dana"},
	}
	if out := NormalizeSuggestions(raw, nil, nil); len(out) != 0 {
		t.Errorf("unknown category should be dropped, got %+v", out)
	}
}

func TestNormalizeSuggestionsDeduplicatesCaseInsensitive(t *testing.T) {
	raw := []domain.Suggestion{
		{Text: "Review the Q2 survey", Category: domain.CategoryResearch, Who: "Sam", TaskType: domain.TaskTypeExplore},
		{Text: "review the q2 survey", Category: domain.CategoryResearch, Who: "Sam", TaskType: domain.TaskTypeExplore},
		{Text: "Schedule a sync", Category: domain.CategoryMeeting, Who: "Sam", TaskType: domain.TaskTypeExplore},
	}

	out := NormalizeSuggestions(raw, []string{"SCHEDULE A SYNC"}, nil)
	if len(out) != 1 {
		t.Fatalf("expected 1 suggestion after dedupe, got %d: %+v", len(out), out)
	}
	if out[0].Text != "Review the Q2 survey" {
		t.Errorf("wrong survivor: %+v", out[0])
	}
}

func TestNormalizeSuggestionsDefaultsTaskType(t *testing.T) {
	raw := []domain.Suggestion{
		{Text: "Email the CFO", Category: domain.CategoryEmail, Who: "Sam", TaskType: "demolish"},
		{Text: "Interview new hires", Category: domain.CategoryQuestion, Who: "Sam", TaskType: "REFUTE"},
	}

	out := NormalizeSuggestions(raw, nil, nil)
	if len(out) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(out))
	}
	if out[0].TaskType != domain.TaskTypeExplore {
		t.Errorf("invalid task type should default to explore, got %q", out[0].TaskType)
	}
	if out[1].TaskType != domain.TaskTypeRefute {
		t.Errorf("task type should be case-normalized, got %q", out[1].TaskType)
	}
}

func TestNormalizeSuggestionsNormalizesCategoryCase(t *testing.T) {
	raw := []domain.Suggestion{
		{Text: "Set up a workshop", Category: "Meeting", Who: "Dana", TaskType: domain.TaskTypeExplore},
	}

	out := NormalizeSuggestions(raw, nil, nil)
	if len(out) != 1 || out[0].Category != domain.CategoryMeeting {
		t.Errorf("category should be lowercased: %+v", out)
	}
}
