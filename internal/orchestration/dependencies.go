package orchestration

import (
	"github.com/bizmatters/agent-builder/charter-orchestrator/internal/models"
)

// documentSpec describes the inputs of one document type
type documentSpec struct {
	// Requires lists prerequisite documents in validation order. Their content
	// is sent along with the request.
	Requires []models.DocumentType
	// FormInputs sends the project form, analysis and follow-ups instead.
	FormInputs bool
}

// documentGraph is the generation dependency table. Adding a document type
// means adding a row here.
var documentGraph = map[models.DocumentType]documentSpec{
	models.DocumentOverview: {FormInputs: true},
	models.DocumentPRD: {
		Requires: []models.DocumentType{models.DocumentOverview},
	},
	models.DocumentTechStack: {
		Requires: []models.DocumentType{models.DocumentOverview, models.DocumentPRD},
	},
	models.DocumentCodeRules: {
		Requires: []models.DocumentType{models.DocumentTechStack},
	},
	models.DocumentDevelopmentPlan: {
		Requires: []models.DocumentType{
			models.DocumentOverview,
			models.DocumentPRD,
			models.DocumentTechStack,
			models.DocumentCodeRules,
		},
	},
}

// Dependencies returns the prerequisites of docType
func Dependencies(docType models.DocumentType) ([]models.DocumentType, error) {
	node, ok := documentGraph[docType]
	if !ok {
		return nil, &UnsupportedDocumentTypeError{Type: docType}
	}
	return append([]models.DocumentType(nil), node.Requires...), nil
}

// ValidateDependencies fails with a *DependencyError naming the first
// prerequisite of docType that is not complete.
func ValidateDependencies(docType models.DocumentType, docs models.Documents) error {
	deps, err := Dependencies(docType)
	if err != nil {
		return err
	}

	for _, dep := range deps {
		doc, ok := docs[dep]
		if !ok || doc.Status != models.StatusComplete {
			return &DependencyError{Type: docType, Missing: dep}
		}
	}

	return nil
}
