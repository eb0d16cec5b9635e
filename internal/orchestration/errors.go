package orchestration

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bizmatters/agent-builder/charter-orchestrator/internal/models"
)

// ErrorClass tells the orchestrator how to react to a failed generation
type ErrorClass string

const (
	ClassDependency      ErrorClass = "dependency"
	ClassUnsupportedType ErrorClass = "unsupported_document_type"
	ClassNotImplemented  ErrorClass = "not_implemented"
	ClassValidation      ErrorClass = "validation"
	ClassServer          ErrorClass = "server"
	ClassUnclassified    ErrorClass = "unclassified"
)

// Retryable reports whether failures of this class are worth another attempt.
// Only server-side faults are.
func (c ErrorClass) Retryable() bool {
	return c == ClassServer
}

// DependencyError reports a prerequisite document that is not complete
type DependencyError struct {
	Type    models.DocumentType
	Missing models.DocumentType
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("cannot generate %s without completed %s document", e.Type, e.Missing)
}

// UnsupportedDocumentTypeError reports a document type with no generation rules
type UnsupportedDocumentTypeError struct {
	Type models.DocumentType
}

func (e *UnsupportedDocumentTypeError) Error() string {
	return fmt.Sprintf("unknown document type: %s", e.Type)
}

// BoundaryError is a rejection reported by the language-model backend
type BoundaryError struct {
	StatusCode int
	Message    string
}

func (e *BoundaryError) Error() string {
	return fmt.Sprintf("llm backend returned status %d: %s", e.StatusCode, e.Message)
}

// Class maps the backend status code to an error class
func (e *BoundaryError) Class() ErrorClass {
	switch {
	case e.StatusCode == http.StatusNotImplemented:
		return ClassNotImplemented
	case e.StatusCode == http.StatusUnprocessableEntity, e.StatusCode == http.StatusBadRequest:
		return ClassValidation
	case e.StatusCode >= 500 && e.StatusCode <= 599:
		return ClassServer
	default:
		return ClassUnclassified
	}
}

// Classify returns the error class of err. Errors of unknown origin are
// unclassified and therefore never retried.
func Classify(err error) ErrorClass {
	if err == nil {
		return ""
	}

	var depErr *DependencyError
	if errors.As(err, &depErr) {
		return ClassDependency
	}

	var typeErr *UnsupportedDocumentTypeError
	if errors.As(err, &typeErr) {
		return ClassUnsupportedType
	}

	var boundaryErr *BoundaryError
	if errors.As(err, &boundaryErr) {
		return boundaryErr.Class()
	}

	return ClassUnclassified
}
