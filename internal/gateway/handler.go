package gateway

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bizmatters/agent-builder/charter-orchestrator/internal/models"
	"github.com/bizmatters/agent-builder/charter-orchestrator/internal/orchestration"
	"github.com/bizmatters/agent-builder/charter-orchestrator/internal/state"
	"github.com/bizmatters/agent-builder/charter-orchestrator/internal/wizard"
)

// Handler handles HTTP requests for the gateway layer
type Handler struct {
	service    *orchestration.Service
	controller *wizard.Controller
	storage    state.Storage
}

// NewHandler creates a new gateway handler
func NewHandler(service *orchestration.Service, controller *wizard.Controller, storage state.Storage) *Handler {
	return &Handler{
		service:    service,
		controller: controller,
		storage:    storage,
	}
}

// RegisterRoutes mounts the wizard and document routes under api
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	wizardRoutes := api.Group("/wizard")
	wizardRoutes.GET("", h.GetWizard)
	wizardRoutes.PATCH("/form", h.UpdateForm)
	wizardRoutes.PUT("/follow-ups/:id", h.AnswerFollowUp)
	wizardRoutes.POST("/analyze", h.AnalyzeProject)
	wizardRoutes.POST("/step", h.RequestStep)
	wizardRoutes.POST("/overview", h.GenerateOverviewPreview)
	wizardRoutes.POST("/reset", h.Reset)

	documents := api.Group("/documents")
	documents.GET("", h.GetDocuments)
	documents.POST("/generate", h.GenerateAll)
	documents.POST("/:type/generate", h.GenerateDocument)
	documents.POST("/:type/retry", h.RetryDocument)
	documents.PUT("/:type", h.UpdateDocument)
}

// Health godoc
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Ready godoc
// @Summary Readiness probe
// @Description Checks state storage connectivity and reports the language-model backend health
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /ready [get]
func (h *Handler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.storage.Ping(ctx); err != nil {
		log.Printf(`{"level":"warn","message":"Readiness check failed","error":"%v"}`, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"error":  "state storage unavailable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "ready",
		"llm_healthy": h.service.LLMHealthy(ctx),
	})
}

// GetWizard godoc
// @Summary Get wizard state
// @Description Returns the form state, processing flag and every document
// @Tags wizard
// @Produce json
// @Success 200 {object} orchestration.WizardState
// @Router /wizard [get]
func (h *Handler) GetWizard(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.State())
}

// UpdateForm godoc
// @Summary Update project form
// @Description Partial update of the project form. Follow-up responses are merged.
// @Tags wizard
// @Accept json
// @Produce json
// @Param request body models.ProjectFormPatch true "Form fields to change"
// @Success 200 {object} models.FormState
// @Failure 400 {object} models.ErrorResponse
// @Router /wizard/form [patch]
func (h *Handler) UpdateForm(c *gin.Context) {
	var patch models.ProjectFormPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondError(c, http.StatusBadRequest, models.ErrCodeInvalidRequest, "Invalid request", err)
		return
	}

	c.JSON(http.StatusOK, h.service.Forms().UpdateFormData(patch))
}

// AnswerFollowUpRequest is the answer to one follow-up question
type AnswerFollowUpRequest struct {
	Answer string `json:"answer"`
}

// AnswerFollowUp godoc
// @Summary Answer a follow-up question
// @Tags wizard
// @Accept json
// @Produce json
// @Param id path string true "Question ID"
// @Param request body AnswerFollowUpRequest true "Answer"
// @Success 200 {object} models.FormState
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /wizard/follow-ups/{id} [put]
func (h *Handler) AnswerFollowUp(c *gin.Context) {
	var req AnswerFollowUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, models.ErrCodeInvalidRequest, "Invalid request", err)
		return
	}

	if err := h.service.Forms().UpdateFollowUpResponse(c.Param("id"), req.Answer); err != nil {
		if errors.Is(err, state.ErrUnknownQuestion) {
			respondError(c, http.StatusNotFound, models.ErrCodeNotFound, "Follow-up question not found", err)
			return
		}
		respondError(c, http.StatusInternalServerError, models.ErrCodeInternalError, "Failed to store answer", err)
		return
	}

	c.JSON(http.StatusOK, h.service.Forms().Snapshot())
}

// AnalyzeProject godoc
// @Summary Analyze project description
// @Description Sends the project description for initial analysis and stores any follow-up questions
// @Tags wizard
// @Produce json
// @Success 200 {object} models.InitialAnalysisResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /wizard/analyze [post]
func (h *Handler) AnalyzeProject(c *gin.Context) {
	resp, err := h.service.AnalyzeProject(c.Request.Context())
	if err != nil {
		if errors.Is(err, orchestration.ErrInvalidForm) {
			respondError(c, http.StatusBadRequest, models.ErrCodeValidationFailed, err.Error(), nil)
			return
		}
		respondError(c, http.StatusBadGateway, models.ErrCodeUpstreamError, "Failed to analyze project", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// StepRequest asks the wizard to move to a step
type StepRequest struct {
	Step models.WizardStep `json:"step" binding:"required"`
}

// StepResponse reports the outcome of a step request
type StepResponse struct {
	Moved       bool              `json:"moved"`
	CurrentStep models.WizardStep `json:"current_step"`
}

// RequestStep godoc
// @Summary Move the wizard to a step
// @Description Moves only when the step's preconditions hold
// @Tags wizard
// @Accept json
// @Produce json
// @Param request body StepRequest true "Target step"
// @Success 200 {object} StepResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} StepResponse
// @Router /wizard/step [post]
func (h *Handler) RequestStep(c *gin.Context) {
	var req StepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, models.ErrCodeInvalidRequest, "Invalid request", err)
		return
	}

	moved := h.controller.RequestStep(req.Step)
	status := http.StatusOK
	if !moved {
		status = http.StatusConflict
	}
	c.JSON(status, StepResponse{
		Moved:       moved,
		CurrentStep: h.controller.CurrentStep(),
	})
}

// OverviewResponse carries the overview preview
type OverviewResponse struct {
	Overview string `json:"overview"`
}

// GenerateOverviewPreview godoc
// @Summary Generate overview preview
// @Description Single-call overview stored in the form state
// @Tags wizard
// @Produce json
// @Success 200 {object} OverviewResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /wizard/overview [post]
func (h *Handler) GenerateOverviewPreview(c *gin.Context) {
	overview, err := h.service.GenerateOverviewPreview(c.Request.Context())
	if err != nil {
		if errors.Is(err, orchestration.ErrInvalidForm) {
			respondError(c, http.StatusBadRequest, models.ErrCodeValidationFailed, err.Error(), nil)
			return
		}
		respondError(c, http.StatusBadGateway, models.ErrCodeUpstreamError, "Failed to generate overview", err)
		return
	}

	c.JSON(http.StatusOK, OverviewResponse{Overview: overview})
}

// Reset godoc
// @Summary Reset the wizard
// @Description Clears the form, every document and their persisted copies
// @Tags wizard
// @Produce json
// @Success 200 {object} orchestration.WizardState
// @Router /wizard/reset [post]
func (h *Handler) Reset(c *gin.Context) {
	h.service.Reset(c.Request.Context())
	c.JSON(http.StatusOK, h.service.State())
}

// GetDocuments godoc
// @Summary List documents
// @Tags documents
// @Produce json
// @Success 200 {object} models.Documents
// @Router /documents [get]
func (h *Handler) GetDocuments(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Documents().Snapshot())
}

// GenerationResponse wraps one or more generation results
type GenerationResponse struct {
	Results   []orchestration.GenerationResult `json:"results"`
	Documents models.Documents                 `json:"documents"`
}

// GenerateDocument godoc
// @Summary Generate one document
// @Description Failures are reported in the result body with status 200
// @Tags documents
// @Produce json
// @Param type path string true "Document type" Enums(overview, prd, techStack, codeRules, developmentPlan)
// @Success 200 {object} orchestration.GenerationResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /documents/{type}/generate [post]
func (h *Handler) GenerateDocument(c *gin.Context) {
	docType, ok := documentTypeParam(c)
	if !ok {
		return
	}

	result, err := h.service.GenerateDocument(c.Request.Context(), docType)
	if err != nil {
		respondGenerationError(c, docType, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GenerateAll godoc
// @Summary Generate every remaining document
// @Description Generates incomplete documents in order and stops at the first failure
// @Tags documents
// @Produce json
// @Success 200 {object} GenerationResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /documents/generate [post]
func (h *Handler) GenerateAll(c *gin.Context) {
	results, err := h.service.GenerateAll(c.Request.Context())
	if err != nil {
		respondGenerationError(c, "", err)
		return
	}

	c.JSON(http.StatusOK, GenerationResponse{
		Results:   results,
		Documents: h.service.Documents().Snapshot(),
	})
}

// RetryDocument godoc
// @Summary Retry one document
// @Description Regenerates the document, first regenerating the previous one when it is not complete
// @Tags documents
// @Produce json
// @Param type path string true "Document type" Enums(overview, prd, techStack, codeRules, developmentPlan)
// @Success 200 {object} GenerationResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /documents/{type}/retry [post]
func (h *Handler) RetryDocument(c *gin.Context) {
	docType, ok := documentTypeParam(c)
	if !ok {
		return
	}

	results, err := h.service.RetryDocument(c.Request.Context(), docType)
	if err != nil {
		respondGenerationError(c, docType, err)
		return
	}

	c.JSON(http.StatusOK, GenerationResponse{
		Results:   results,
		Documents: h.service.Documents().Snapshot(),
	})
}

// UpdateDocumentRequest is a manual edit of a document
type UpdateDocumentRequest struct {
	Content string `json:"content"`
}

// UpdateDocument godoc
// @Summary Edit a document
// @Description Replaces the document content and marks it complete
// @Tags documents
// @Accept json
// @Produce json
// @Param type path string true "Document type" Enums(overview, prd, techStack, codeRules, developmentPlan)
// @Param request body UpdateDocumentRequest true "New content"
// @Success 200 {object} models.GeneratedDocument
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /documents/{type} [put]
func (h *Handler) UpdateDocument(c *gin.Context) {
	docType, ok := documentTypeParam(c)
	if !ok {
		return
	}

	var req UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, models.ErrCodeInvalidRequest, "Invalid request", err)
		return
	}

	doc, err := h.service.UpdateDocument(docType, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, state.ErrEmptyContent):
			respondError(c, http.StatusBadRequest, models.ErrCodeValidationFailed, err.Error(), nil)
		case errors.Is(err, state.ErrGenerationInProgress):
			respondError(c, http.StatusConflict, models.ErrCodeGenerationInProgress, "Document is being generated", err)
		default:
			respondError(c, http.StatusInternalServerError, models.ErrCodeInternalError, "Failed to update document", err)
		}
		return
	}

	c.JSON(http.StatusOK, doc)
}

// documentTypeParam parses the :type path parameter and answers 400 when it
// is not a known document type.
func documentTypeParam(c *gin.Context) (models.DocumentType, bool) {
	docType, err := models.ParseDocumentType(c.Param("type"))
	if err != nil {
		respondError(c, http.StatusBadRequest, models.ErrCodeUnknownDocumentType, err.Error(), nil)
		return "", false
	}
	return docType, true
}

func respondGenerationError(c *gin.Context, docType models.DocumentType, err error) {
	switch {
	case errors.Is(err, state.ErrGenerationInProgress):
		respondError(c, http.StatusConflict, models.ErrCodeGenerationInProgress, "Document generation already in progress", err)
	case orchestration.Classify(err) == orchestration.ClassUnsupportedType:
		respondError(c, http.StatusBadRequest, models.ErrCodeUnknownDocumentType, err.Error(), nil)
	default:
		log.Printf(`{"level":"error","message":"Failed to start generation","document_type":"%s","error":"%v"}`, docType, err)
		respondError(c, http.StatusInternalServerError, models.ErrCodeInternalError, "Failed to start generation", err)
	}
}

func respondError(c *gin.Context, status int, code, message string, err error) {
	resp := models.ErrorResponse{
		Error: message,
		Code:  code,
	}
	if err != nil {
		resp.Details = map[string]string{"reason": err.Error()}
	}
	c.JSON(status, resp)
}
