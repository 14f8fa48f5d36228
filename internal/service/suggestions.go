package service

import (
	"strings"

	"github.com/dogtuna/thoughtify/internal/domain"
)

// NormalizeSuggestions validates and deduplicates classifier-proposed
// follow-up actions. Candidates missing text, category, or who are dropped,
// as are unknown categories and case-insensitive duplicates of existing
// tasks or questions. Surviving items keep input order.
func NormalizeSuggestions(raw []domain.Suggestion, existingTasks, existingQuestions []string) []domain.Suggestion {
	seen := make(map[string]struct{}, len(existingTasks)+len(existingQuestions))
	for _, t := range existingTasks {
		seen[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	for _, q := range existingQuestions {
		seen[strings.ToLower(strings.TrimSpace(q))] = struct{}{}
	}

	out := make([]domain.Suggestion, 0, len(raw))
	for _, s := range raw {
		text := strings.TrimSpace(s.Text)
		category := strings.ToLower(strings.TrimSpace(string(s.Category)))
		who := strings.TrimSpace(s.Who)

		if text == "" || category == "" || who == "" {
			continue
		}
		if !domain.ValidSuggestionCategory(category) {
			continue
		}
		if _, dup := seen[strings.ToLower(text)]; dup {
			continue
		}

		taskType := strings.ToLower(strings.TrimSpace(string(s.TaskType)))
		if !domain.ValidTaskType(taskType) {
			taskType = string(domain.TaskTypeExplore)
		}

		out = append(out, domain.Suggestion{
			Text:         text,
			Category:     domain.SuggestionCategory(category),
			Who:          who,
			HypothesisID: strings.TrimSpace(s.HypothesisID),
			TaskType:     domain.TaskType(taskType),
		})
		// Survivors join the seen set so one batch cannot carry the same
		// text twice.
		seen[strings.ToLower(text)] = struct{}{}
	}
	return out
}
