package orchestration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/bizmatters/agent-builder/charter-orchestrator/internal/models"
)

// LLMClient is the language-model backend as seen by the generation pipeline
type LLMClient interface {
	// Generate sends a serialized generation payload and returns the raw text
	Generate(ctx context.Context, payload []byte) (string, error)
	// ProcessInitial analyzes a project description
	ProcessInitial(ctx context.Context, projectName, description string) (*models.InitialAnalysisResponse, error)
	// GenerateOverview is the overview-only variant of Generate
	GenerateOverview(ctx context.Context, submission OverviewSubmission) (string, error)
	IsHealthy(ctx context.Context) bool
}

// HTTPLLMClient talks to the language-model backend over HTTP
type HTTPLLMClient struct {
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
	breaker    *gobreaker.CircuitBreaker
}

type generateResponse struct {
	Success bool   `json:"success"`
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}

type overviewResponse struct {
	Overview string `json:"overview"`
}

type processInitialRequest struct {
	ProjectName string `json:"projectName"`
	Description string `json:"description"`
}

// NewHTTPLLMClient creates a client for the backend at baseURL
func NewHTTPLLMClient(baseURL string, timeout time.Duration) *HTTPLLMClient {
	settings := gobreaker.Settings{
		Name:        "llm-backend",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		// Input rejections say nothing about backend health
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var boundaryErr *BoundaryError
			return errors.As(err, &boundaryErr) && !boundaryErr.Class().Retryable()
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Printf(`{"level":"warn","message":"Circuit breaker state changed","breaker":"%s","from":"%s","to":"%s"}`, name, from, to)
		},
	}

	return &HTTPLLMClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		tracer:  otel.Tracer("llm-client"),
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Generate posts a generation payload to /api/generate
func (c *HTTPLLMClient) Generate(ctx context.Context, payload []byte) (string, error) {
	ctx, span := c.tracer.Start(ctx, "llm_client.generate")
	defer span.End()

	result, err := c.breaker.Execute(func() (interface{}, error) {
		var resp generateResponse
		if err := c.post(ctx, "/api/generate", payload, &resp); err != nil {
			return "", err
		}
		if !resp.Success {
			msg := resp.Error
			if msg == "" {
				msg = "generation failed"
			}
			return "", errors.New(msg)
		}
		if resp.Content == "" {
			return "", errors.New("no content received from server")
		}
		return resp.Content, nil
	})

	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to generate document: %w", err)
	}

	content := result.(string)
	span.SetAttributes(attribute.Int("content.length", len(content)))
	return content, nil
}

// ProcessInitial posts the project description to /api/process-initial
func (c *HTTPLLMClient) ProcessInitial(ctx context.Context, projectName, description string) (*models.InitialAnalysisResponse, error) {
	ctx, span := c.tracer.Start(ctx, "llm_client.process_initial")
	defer span.End()

	body, err := json.Marshal(processInitialRequest{ProjectName: projectName, Description: description})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		var resp models.InitialAnalysisResponse
		if err := c.post(ctx, "/api/process-initial", body, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	})

	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to process project description: %w", err)
	}

	analysis := result.(*models.InitialAnalysisResponse)
	span.SetAttributes(
		attribute.Bool("needs_follow_up", analysis.NeedsFollowUp),
		attribute.Int("follow_up.count", len(analysis.FollowUpQuestions)),
	)
	return analysis, nil
}

// GenerateOverview posts an overview submission to /api/generate-overview
func (c *HTTPLLMClient) GenerateOverview(ctx context.Context, submission OverviewSubmission) (string, error) {
	ctx, span := c.tracer.Start(ctx, "llm_client.generate_overview")
	defer span.End()

	body, err := json.Marshal(submission)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		var resp overviewResponse
		if err := c.post(ctx, "/api/generate-overview", body, &resp); err != nil {
			return "", err
		}
		if resp.Overview == "" {
			return "", errors.New("no overview received from server")
		}
		return resp.Overview, nil
	})

	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to generate overview: %w", err)
	}

	return result.(string), nil
}

// IsHealthy checks the backend /health endpoint
func (c *HTTPLLMClient) IsHealthy(ctx context.Context) bool {
	ctx, span := c.tracer.Start(ctx, "llm_client.health_check")
	defer span.End()

	if c.breaker.State() == gobreaker.StateOpen {
		span.SetAttributes(attribute.Bool("healthy", false), attribute.String("reason", "circuit_breaker_open"))
		return false
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		span.RecordError(err)
		return false
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		return false
	}
	defer resp.Body.Close()

	healthy := resp.StatusCode == http.StatusOK
	span.SetAttributes(attribute.Bool("healthy", healthy))
	return healthy
}

// post sends a JSON body and decodes a JSON reply into out. Non-2xx replies
// become *BoundaryError carrying the backend's detail message.
func (c *HTTPLLMClient) post(ctx context.Context, path string, body []byte, out interface{}) error {
	requestID := uuid.New().String()
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("http.path", path),
		attribute.String("request.id", requestID),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &BoundaryError{StatusCode: resp.StatusCode, Message: errorDetail(data, resp.StatusCode)}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// errorDetail extracts the backend's error message from a reply body
func errorDetail(body []byte, status int) string {
	var parsed struct {
		Detail  interface{} `json:"detail"`
		Message string      `json:"message"`
		Error   string      `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		switch detail := parsed.Detail.(type) {
		case string:
			if detail != "" {
				return detail
			}
		case nil:
		default:
			if encoded, err := json.Marshal(detail); err == nil {
				return string(encoded)
			}
		}
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return fmt.Sprintf("Server error (%d): Failed to generate content", status)
}
