package models

import "strings"

// WizardStep is a screen of the project wizard
type WizardStep string

const (
	StepInitial  WizardStep = "initial"
	StepFollowUp WizardStep = "followUp"
	StepPreview  WizardStep = "preview"
)

// Valid reports whether s is a known wizard step
func (s WizardStep) Valid() bool {
	switch s {
	case StepInitial, StepFollowUp, StepPreview:
		return true
	}
	return false
}

// MinDescriptionLength is the shortest project description accepted for analysis
const MinDescriptionLength = 10

// ProjectFormData is the user-entered part of the wizard
type ProjectFormData struct {
	ProjectName       string            `json:"projectName"`
	Description       string            `json:"description"`
	FollowUpResponses map[string]string `json:"followUpResponses"`
}

// HasBasics reports whether both the project name and description are filled in
func (d ProjectFormData) HasBasics() bool {
	return strings.TrimSpace(d.ProjectName) != "" && strings.TrimSpace(d.Description) != ""
}

// ProjectFormPatch is a partial update of ProjectFormData. Nil fields are left
// untouched and responses are merged into the existing ones.
type ProjectFormPatch struct {
	ProjectName       *string           `json:"projectName,omitempty"`
	Description       *string           `json:"description,omitempty"`
	FollowUpResponses map[string]string `json:"followUpResponses,omitempty"`
}

// FollowUpQuestion is a clarifying question produced by the initial analysis
type FollowUpQuestion struct {
	ID              string `json:"id"`
	Question        string `json:"question"`
	SuggestedAnswer string `json:"suggestedAnswer,omitempty"`
}

// InitialAnalysisResponse is the reply of the initial analysis call
type InitialAnalysisResponse struct {
	NeedsFollowUp     bool               `json:"needsFollowUp"`
	Analysis          string             `json:"analysis"`
	FollowUpQuestions []FollowUpQuestion `json:"followUpQuestions,omitempty"`
}

// FormState is the persisted wizard state
type FormState struct {
	FormData          ProjectFormData          `json:"formData"`
	CurrentStep       WizardStep               `json:"currentStep"`
	Analysis          string                   `json:"analysis,omitempty"`
	Overview          string                   `json:"overview,omitempty"`
	FollowUpQuestions []FollowUpQuestion       `json:"followUpQuestions"`
	InitialResponse   *InitialAnalysisResponse `json:"initialResponse,omitempty"`
	IsProcessing      bool                     `json:"-"`
}

// NewFormState returns the state of a fresh wizard
func NewFormState() FormState {
	return FormState{
		FormData: ProjectFormData{
			FollowUpResponses: map[string]string{},
		},
		CurrentStep:       StepInitial,
		FollowUpQuestions: []FollowUpQuestion{},
	}
}

// Clone returns a deep copy so callers can hold it across mutations
func (s FormState) Clone() FormState {
	out := s
	out.FormData.FollowUpResponses = make(map[string]string, len(s.FormData.FollowUpResponses))
	for k, v := range s.FormData.FollowUpResponses {
		out.FormData.FollowUpResponses[k] = v
	}
	out.FollowUpQuestions = append([]FollowUpQuestion{}, s.FollowUpQuestions...)
	if s.InitialResponse != nil {
		resp := *s.InitialResponse
		resp.FollowUpQuestions = append([]FollowUpQuestion(nil), s.InitialResponse.FollowUpQuestions...)
		out.InitialResponse = &resp
	}
	return out
}

// GenerationState is the part of the form state that feeds document generation
type GenerationState struct {
	FormData          ProjectFormData    `json:"formData"`
	Analysis          string             `json:"analysis,omitempty"`
	FollowUpQuestions []FollowUpQuestion `json:"followUpQuestions"`
}

// GenerationState extracts the generation inputs from the form state
func (s FormState) GenerationState() GenerationState {
	c := s.Clone()
	return GenerationState{
		FormData:          c.FormData,
		Analysis:          c.Analysis,
		FollowUpQuestions: c.FollowUpQuestions,
	}
}
