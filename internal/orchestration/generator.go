package orchestration

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/bizmatters/agent-builder/charter-orchestrator/internal/metrics"
	"github.com/bizmatters/agent-builder/charter-orchestrator/internal/models"
)

const (
	// DefaultMaxRetries is the number of extra attempts after a server error
	DefaultMaxRetries = 3
	// DefaultRetryDelay is the fixed pause between attempts
	DefaultRetryDelay = 1000 * time.Millisecond
)

// ErrEmptyDocument is returned when the backend reply has no printable content
var ErrEmptyDocument = errors.New("generated document is empty after sanitization")

// GeneratorConfig holds the retry policy
type GeneratorConfig struct {
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultGeneratorConfig returns the standard retry policy
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		MaxRetries: DefaultMaxRetries,
		RetryDelay: DefaultRetryDelay,
	}
}

// GenerationResult is the tagged outcome of one generation. Failures are data,
// never panics or returned errors.
type GenerationResult struct {
	Type       models.DocumentType `json:"type"`
	Success    bool                `json:"success"`
	Content    string              `json:"content,omitempty"`
	Error      string              `json:"error,omitempty"`
	ErrorClass ErrorClass          `json:"errorClass,omitempty"`
	Attempts   int                 `json:"attempts"`
	Err        error               `json:"-"`
}

// Generator turns form state and existing documents into a new document by
// calling the language-model backend. It never touches the stores; callers
// hand it snapshots.
type Generator struct {
	client  LLMClient
	config  GeneratorConfig
	metrics *metrics.GenerationMetrics
	tracer  trace.Tracer
	wait    func(ctx context.Context, d time.Duration) error
}

// NewGenerator creates a generator. metrics may be nil.
func NewGenerator(client LLMClient, config GeneratorConfig, generationMetrics *metrics.GenerationMetrics) *Generator {
	if config.MaxRetries < 0 {
		config.MaxRetries = DefaultMaxRetries
	}
	if config.RetryDelay < 0 {
		config.RetryDelay = DefaultRetryDelay
	}

	return &Generator{
		client:  client,
		config:  config,
		metrics: generationMetrics,
		tracer:  otel.Tracer("document-generator"),
		wait:    sleepContext,
	}
}

// Generate produces the content of docType.
//
// Prerequisites are validated first and a failure returns without calling
// the backend. Server errors are retried up to MaxRetries times with a fixed
// RetryDelay; every other failure class is returned at once. Successful
// content is sanitized.
func (g *Generator) Generate(ctx context.Context, docType models.DocumentType, state models.GenerationState, docs models.Documents) GenerationResult {
	ctx, span := g.tracer.Start(ctx, "generator.generate")
	defer span.End()

	span.SetAttributes(attribute.String("document.type", string(docType)))

	if err := ValidateDependencies(docType, docs); err != nil {
		span.RecordError(err)
		return failed(docType, err, 0)
	}

	payload, err := BuildRequest(docType, state, docs)
	if err != nil {
		span.RecordError(err)
		return failed(docType, err, 0)
	}

	for attempt := 0; ; attempt++ {
		content, err := g.client.Generate(ctx, payload)
		if err == nil {
			span.SetAttributes(attribute.Int("attempts", attempt+1))
			sanitized := Sanitize(content)
			if sanitized == "" {
				return failed(docType, ErrEmptyDocument, attempt+1)
			}
			return GenerationResult{
				Type:     docType,
				Success:  true,
				Content:  sanitized,
				Attempts: attempt + 1,
			}
		}

		class := Classify(err)
		if !class.Retryable() || attempt >= g.config.MaxRetries {
			span.RecordError(err)
			span.SetAttributes(
				attribute.Int("attempts", attempt+1),
				attribute.String("error.class", string(class)),
			)
			log.Printf(`{"level":"warn","message":"Document generation failed","document_type":"%s","error_class":"%s","attempts":%d,"error":"%v"}`,
				docType, class, attempt+1, err)
			return failed(docType, err, attempt+1)
		}

		log.Printf(`{"level":"info","message":"Retrying document generation","document_type":"%s","attempt":%d,"max_retries":%d,"delay_ms":%d,"error":"%v"}`,
			docType, attempt+1, g.config.MaxRetries, g.config.RetryDelay.Milliseconds(), err)
		g.metrics.RecordRetry(ctx, string(docType), attempt+1)

		if waitErr := g.wait(ctx, g.config.RetryDelay); waitErr != nil {
			span.RecordError(waitErr)
			return failed(docType, fmt.Errorf("retry interrupted: %w (last error: %v)", waitErr, err), attempt+1)
		}
	}
}

func failed(docType models.DocumentType, err error, attempts int) GenerationResult {
	return GenerationResult{
		Type:       docType,
		Success:    false,
		Error:      err.Error(),
		ErrorClass: Classify(err),
		Attempts:   attempts,
		Err:        err,
	}
}

// sleepContext waits for d unless ctx ends first
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
