package orchestration

import (
	"encoding/json"
	"fmt"

	"github.com/bizmatters/agent-builder/charter-orchestrator/internal/models"
)

// OverviewSubmission carries everything the backend needs to write the overview
type OverviewSubmission struct {
	ProjectName       string                    `json:"projectName"`
	Description       string                    `json:"description"`
	Analysis          string                    `json:"analysis"`
	FollowUpQuestions []models.FollowUpQuestion `json:"followUpQuestions"`
	FollowUpResponses map[string]string         `json:"followUpResponses"`
}

// NewOverviewSubmission builds the overview inputs from the form state
func NewOverviewSubmission(state models.GenerationState) OverviewSubmission {
	questions := state.FollowUpQuestions
	if questions == nil {
		questions = []models.FollowUpQuestion{}
	}
	responses := state.FormData.FollowUpResponses
	if responses == nil {
		responses = map[string]string{}
	}

	return OverviewSubmission{
		ProjectName:       state.FormData.ProjectName,
		Description:       state.FormData.Description,
		Analysis:          state.Analysis,
		FollowUpQuestions: questions,
		FollowUpResponses: responses,
	}
}

type overviewRequest struct {
	Type models.DocumentType `json:"type"`
	OverviewSubmission
}

// BuildRequest serializes the generation payload for docType. Documents built
// from form inputs carry the project form; every other type carries its type
// tag plus the content of each prerequisite.
func BuildRequest(docType models.DocumentType, state models.GenerationState, docs models.Documents) ([]byte, error) {
	node, ok := documentGraph[docType]
	if !ok {
		return nil, &UnsupportedDocumentTypeError{Type: docType}
	}

	var payload interface{}
	if node.FormInputs {
		payload = overviewRequest{
			Type:               docType,
			OverviewSubmission: NewOverviewSubmission(state),
		}
	} else {
		fields := map[string]string{"type": string(docType)}
		for _, dep := range node.Requires {
			fields[string(dep)] = docs.Content(dep)
		}
		payload = fields
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request: %w", docType, err)
	}
	return data, nil
}
