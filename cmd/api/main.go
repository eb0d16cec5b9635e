package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/trace"

	_ "github.com/bizmatters/agent-builder/charter-orchestrator/docs" // swagger docs
	"github.com/bizmatters/agent-builder/charter-orchestrator/internal/config"
	"github.com/bizmatters/agent-builder/charter-orchestrator/internal/gateway"
	"github.com/bizmatters/agent-builder/charter-orchestrator/internal/metrics"
	"github.com/bizmatters/agent-builder/charter-orchestrator/internal/orchestration"
	"github.com/bizmatters/agent-builder/charter-orchestrator/internal/state"
	"github.com/bizmatters/agent-builder/charter-orchestrator/internal/wizard"
)

// @title Charter Orchestrator API
// @version 1.0
// @description Project charter wizard backend
// @description
// @description Collects a project description, runs the initial analysis with follow-up questions,
// @description and generates the overview, PRD, tech stack, code rules and development plan documents.

// @contact.name API Support
// @contact.email support@bizmatters.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize OpenTelemetry
	tp, err := initTracer()
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}

	generationMetrics, err := metrics.NewGenerationMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	storage, closeStorage, err := openStorage(cfg)
	if err != nil {
		log.Fatalf("Failed to open state storage: %v", err)
	}
	defer closeStorage()

	// Restore persisted wizard state
	forms := state.NewFormStore(storage)
	documents := state.NewDocumentStore(storage)
	loadCtx, loadCancel := context.WithTimeout(context.Background(), 10*time.Second)
	forms.Load(loadCtx)
	documents.Load(loadCtx)
	loadCancel()

	// Initialize orchestration layer
	llmClient := orchestration.NewHTTPLLMClient(cfg.LLMAPIURL, cfg.LLMTimeout)
	generator := orchestration.NewGenerator(llmClient, orchestration.GeneratorConfig{
		MaxRetries: cfg.GenerationMaxRetries,
		RetryDelay: cfg.GenerationRetryDelay,
	}, generationMetrics)
	orchestrationService := orchestration.NewService(forms, documents, llmClient, generator, generationMetrics)
	controller := wizard.NewController(forms, documents)
	controller.EnsureReachableStep()

	// Initialize gateway layer
	gatewayHandler := gateway.NewHandler(orchestrationService, controller, storage)
	documentStream := gateway.NewDocumentStream(documents)

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())

	// Add structured JSON logging middleware
	router.Use(structuredLoggingMiddleware())

	// Health checks MUST be at the root for the WebService standard
	router.GET("/health", gatewayHandler.Health)
	router.GET("/ready", gatewayHandler.Ready)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	api := router.Group("/api")
	api.GET("/health", gatewayHandler.Health)
	gatewayHandler.RegisterRoutes(api)
	api.GET("/ws/documents", documentStream.StreamDocuments)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout(cfg),
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf(`{"level":"info","message":"Starting Charter Orchestrator API server","port":"%s","storage":"%s","llm_api_url":"%s"}`,
			cfg.Port, cfg.StorageBackend, cfg.LLMAPIURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	if err := tp.Shutdown(ctx); err != nil {
		log.Printf("Failed to flush traces: %v", err)
	}

	log.Println("Server exited")
}

// openStorage selects the state storage backend
func openStorage(cfg *config.Config) (state.Storage, func(), error) {
	if cfg.StorageBackend != config.StoragePostgres {
		log.Println("Using in-memory state storage")
		return state.NewMemoryStorage(), func() {}, nil
	}

	// Connect to PostgreSQL with retry logic
	log.Println("Connecting to PostgreSQL database...")
	var pool *pgxpool.Pool
	var err error

	for i := 0; i < 10; i++ {
		pool, err = pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err == nil {
			err = pool.Ping(context.Background())
			if err == nil {
				break
			}
			pool.Close()
		}
		log.Printf("Waiting for database... (attempt %d/10): %v", i+1, err)
		time.Sleep(3 * time.Second)
	}

	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database after retries: %w", err)
	}
	log.Println("Connected to PostgreSQL database")

	storage := state.NewPostgresStorage(pool)
	if err := storage.EnsureSchema(context.Background()); err != nil {
		pool.Close()
		return nil, nil, err
	}

	return storage, pool.Close, nil
}

// writeTimeout leaves room for every attempt of a generation call
func writeTimeout(cfg *config.Config) time.Duration {
	attempts := time.Duration(cfg.GenerationMaxRetries + 1)
	return attempts*(cfg.LLMTimeout+cfg.GenerationRetryDelay) + 30*time.Second
}

// initTracer initializes OpenTelemetry tracing
func initTracer() (*trace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp, nil
}

// structuredLoggingMiddleware provides structured JSON logging for all requests
func structuredLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// Process request
		c.Next()

		latency := time.Since(start)

		logEntry := map[string]interface{}{
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": latency.Milliseconds(),
			"client_ip":  c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
		}

		if docType := c.Param("type"); docType != "" {
			logEntry["document_type"] = docType
		}

		if len(c.Errors) > 0 {
			logEntry["errors"] = c.Errors.String()
		}

		logJSON, _ := json.Marshal(logEntry)
		log.Println(string(logJSON))
	}
}
