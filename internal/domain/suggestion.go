package domain

// SuggestionCategory classifies a proposed follow-up action.
type SuggestionCategory string

const (
	CategoryQuestion            SuggestionCategory = "question"
	CategoryMeeting             SuggestionCategory = "meeting"
	CategoryEmail               SuggestionCategory = "email"
	CategoryResearch            SuggestionCategory = "research"
	CategoryInstructionalDesign SuggestionCategory = "instructional-design"
)

// TaskType says what a follow-up action is meant to do to a hypothesis.
type TaskType string

const (
	TaskTypeValidate TaskType = "validate"
	TaskTypeRefute   TaskType = "refute"
	TaskTypeExplore  TaskType = "explore"
)

// Suggestion is a classifier-proposed follow-up action. It is ephemeral:
// produced per pipeline run and persisted as a Task or Question document.
type Suggestion struct {
	Text         string             `json:"text"`
	Category     SuggestionCategory `json:"category"`
	Who          string             `json:"who"`
	HypothesisID string             `json:"hypothesisId,omitempty"`
	TaskType     TaskType           `json:"taskType"`
}

func ValidSuggestionCategory(c string) bool {
	switch SuggestionCategory(c) {
	case CategoryQuestion, CategoryMeeting, CategoryEmail, CategoryResearch, CategoryInstructionalDesign:
		return true
	}
	return false
}

func ValidTaskType(t string) bool {
	switch TaskType(t) {
	case TaskTypeValidate, TaskTypeRefute, TaskTypeExplore:
		return true
	}
	return false
}
