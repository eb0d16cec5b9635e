package orchestration

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/bizmatters/agent-builder/charter-orchestrator/internal/metrics"
	"github.com/bizmatters/agent-builder/charter-orchestrator/internal/models"
	"github.com/bizmatters/agent-builder/charter-orchestrator/internal/state"
)

// ErrInvalidForm is returned when the project form is not ready for analysis
var ErrInvalidForm = errors.New("invalid project form")

// Service drives the wizard: it owns the document lifecycle transitions
// around each Generator call and the initial analysis step.
type Service struct {
	forms     *state.FormStore
	documents *state.DocumentStore
	client    LLMClient
	generator *Generator
	metrics   *metrics.GenerationMetrics
	tracer    trace.Tracer
}

// NewService creates a new orchestration service
func NewService(forms *state.FormStore, documents *state.DocumentStore, client LLMClient, generator *Generator, generationMetrics *metrics.GenerationMetrics) *Service {
	return &Service{
		forms:     forms,
		documents: documents,
		client:    client,
		generator: generator,
		metrics:   generationMetrics,
		tracer:    otel.Tracer("orchestration-service"),
	}
}

// WizardState is the full wizard as shown to clients
type WizardState struct {
	Form         models.FormState `json:"form"`
	IsProcessing bool             `json:"isProcessing"`
	Documents    models.Documents `json:"documents"`
}

// State returns a snapshot of both stores
func (s *Service) State() WizardState {
	form := s.forms.Snapshot()
	return WizardState{
		Form:         form,
		IsProcessing: form.IsProcessing,
		Documents:    s.documents.Snapshot(),
	}
}

// Forms exposes the form store
func (s *Service) Forms() *state.FormStore {
	return s.forms
}

// Documents exposes the document store
func (s *Service) Documents() *state.DocumentStore {
	return s.documents
}

// LLMHealthy reports whether the language-model backend answers its health check
func (s *Service) LLMHealthy(ctx context.Context) bool {
	return s.client.IsHealthy(ctx)
}

// ValidateFormData checks the project form before it is sent for analysis
func ValidateFormData(data models.ProjectFormData) error {
	if strings.TrimSpace(data.ProjectName) == "" {
		return fmt.Errorf("%w: project name is required", ErrInvalidForm)
	}
	if len(strings.TrimSpace(data.Description)) < models.MinDescriptionLength {
		return fmt.Errorf("%w: please provide a more detailed description (at least %d characters)", ErrInvalidForm, models.MinDescriptionLength)
	}
	return nil
}

// AnalyzeProject sends the project description for initial analysis. When
// the backend asks for follow-ups the batch is stored and the wizard moves
// to the follow-up step. A result arriving after a reset is returned but not
// stored.
func (s *Service) AnalyzeProject(ctx context.Context) (*models.InitialAnalysisResponse, error) {
	ctx, span := s.tracer.Start(ctx, "orchestration.analyze_project")
	defer span.End()

	form := s.forms.Snapshot()
	if err := ValidateFormData(form.FormData); err != nil {
		return nil, err
	}

	epoch := s.forms.Epoch()
	s.forms.SetProcessing(true)
	defer s.forms.SetProcessing(false)

	resp, err := s.client.ProcessInitial(ctx, form.FormData.ProjectName, form.FormData.Description)
	if err != nil {
		span.RecordError(err)
		log.Printf(`{"level":"error","message":"Initial analysis failed","project_name":"%s","error":"%v"}`, form.FormData.ProjectName, err)
		return nil, err
	}

	stored, applied, err := s.forms.ApplyAnalysis(epoch, *resp)
	if err != nil {
		return nil, fmt.Errorf("failed to store follow-up questions: %w", err)
	}
	if !applied {
		log.Printf(`{"level":"info","message":"Discarding late analysis result","project_name":"%s"}`, form.FormData.ProjectName)
		return resp, nil
	}
	if stored.InitialResponse != nil {
		resp.FollowUpQuestions = stored.InitialResponse.FollowUpQuestions
	}

	span.SetAttributes(
		attribute.Bool("needs_follow_up", resp.NeedsFollowUp),
		attribute.Int("follow_up.count", len(resp.FollowUpQuestions)),
	)
	log.Printf(`{"level":"info","message":"Initial analysis stored","project_name":"%s","needs_follow_up":%t,"follow_up_count":%d}`,
		form.FormData.ProjectName, resp.NeedsFollowUp, len(resp.FollowUpQuestions))

	return resp, nil
}

// GenerateDocument generates one document and records the outcome in the
// document store. A document that is already generating is rejected with
// state.ErrGenerationInProgress. The call is detached from ctx cancellation:
// once started it runs to completion, and a result arriving after a reset
// is dropped.
func (s *Service) GenerateDocument(ctx context.Context, docType models.DocumentType) (GenerationResult, error) {
	if !docType.Valid() {
		return GenerationResult{}, &UnsupportedDocumentTypeError{Type: docType}
	}

	epoch, err := s.documents.StartGeneration(docType)
	if err != nil {
		return GenerationResult{}, err
	}

	ctx, span := s.tracer.Start(context.WithoutCancel(ctx), "orchestration.generate_document")
	defer span.End()
	span.SetAttributes(attribute.String("document.type", string(docType)))

	s.metrics.RecordGenerationStarted(ctx, string(docType))
	start := time.Now()

	form := s.forms.Snapshot().GenerationState()
	docs := s.documents.Snapshot()
	result := s.generator.Generate(ctx, docType, form, docs)
	duration := time.Since(start)

	var applied bool
	if result.Success {
		applied, err = s.documents.CompleteGeneration(docType, result.Content, epoch)
		s.metrics.RecordGenerationCompleted(ctx, string(docType), result.Attempts, duration)
	} else {
		applied, err = s.documents.FailGeneration(docType, result.Error, epoch)
		s.metrics.RecordGenerationFailed(ctx, string(docType), string(result.ErrorClass), duration)
	}

	if err != nil {
		span.RecordError(err)
		log.Printf(`{"level":"error","message":"Failed to record generation result","document_type":"%s","error":"%v"}`, docType, err)
	} else if !applied {
		log.Printf(`{"level":"info","message":"Discarding late generation result","document_type":"%s"}`, docType)
	}

	span.SetAttributes(
		attribute.Bool("success", result.Success),
		attribute.Int("attempts", result.Attempts),
	)
	return result, nil
}

// GenerateAll generates every document that is not complete yet, in order,
// and stops at the first failure.
func (s *Service) GenerateAll(ctx context.Context) ([]GenerationResult, error) {
	results := make([]GenerationResult, 0, len(models.DocumentOrder))

	for _, docType := range models.DocumentOrder {
		doc, _ := s.documents.Get(docType)
		if doc.Status == models.StatusComplete {
			continue
		}

		result, err := s.GenerateDocument(ctx, docType)
		if err != nil {
			return results, err
		}
		results = append(results, result)
		if !result.Success {
			break
		}
	}

	return results, nil
}

// RetryDocument regenerates a document. When the document right before it
// is not complete, that one is regenerated first.
func (s *Service) RetryDocument(ctx context.Context, docType models.DocumentType) ([]GenerationResult, error) {
	if !docType.Valid() {
		return nil, &UnsupportedDocumentTypeError{Type: docType}
	}

	var results []GenerationResult
	if prev, ok := docType.Previous(); ok {
		if doc, _ := s.documents.Get(prev); doc.Status != models.StatusComplete {
			result, err := s.GenerateDocument(ctx, prev)
			if err != nil {
				return results, err
			}
			results = append(results, result)
			if !result.Success {
				return results, nil
			}
		}
	}

	result, err := s.GenerateDocument(ctx, docType)
	if err != nil {
		return results, err
	}
	return append(results, result), nil
}

// UpdateDocument stores a manual edit of a document
func (s *Service) UpdateDocument(docType models.DocumentType, content string) (models.GeneratedDocument, error) {
	if !docType.Valid() {
		return models.GeneratedDocument{}, &UnsupportedDocumentTypeError{Type: docType}
	}
	return s.documents.UpdateDocument(docType, content)
}

// GenerateOverviewPreview asks the backend's overview-only endpoint for a
// quick overview and keeps it in the form state.
func (s *Service) GenerateOverviewPreview(ctx context.Context) (string, error) {
	ctx, span := s.tracer.Start(ctx, "orchestration.generate_overview_preview")
	defer span.End()

	form := s.forms.Snapshot()
	if err := ValidateFormData(form.FormData); err != nil {
		return "", err
	}

	epoch := s.forms.Epoch()
	s.forms.SetProcessing(true)
	defer s.forms.SetProcessing(false)

	raw, err := s.client.GenerateOverview(ctx, NewOverviewSubmission(form.GenerationState()))
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	overview := Sanitize(raw)
	if overview == "" {
		return "", ErrEmptyDocument
	}

	if !s.forms.ApplyOverview(epoch, overview) {
		log.Printf(`{"level":"info","message":"Discarding late overview preview","project_name":"%s"}`, form.FormData.ProjectName)
	}
	return overview, nil
}

// Reset clears both stores and their persisted copies
func (s *Service) Reset(ctx context.Context) {
	s.forms.Reset(ctx)
	s.documents.Reset(ctx)
	log.Printf(`{"level":"info","message":"Wizard reset"}`)
}
