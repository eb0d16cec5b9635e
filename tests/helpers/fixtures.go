package helpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/bizmatters/agent-builder/charter-orchestrator/internal/models"
)

// TestProject represents a project form fixture
type TestProject struct {
	ProjectName string `json:"projectName"`
	Description string `json:"description"`
}

// Default test fixtures
var (
	DefaultTestProject = TestProject{
		ProjectName: "AI Charter",
		Description: "A wizard that turns a short project description into planning documents",
	}

	DefaultFollowUpQuestions = []models.FollowUpQuestion{
		{ID: "platform", Question: "Which platform will the product run on?", SuggestedAnswer: "Web"},
		{ID: "users", Question: "Who are the primary users?", SuggestedAnswer: "Small product teams"},
	}

	DefaultFollowUpAnswers = map[string]string{
		"platform": "Web",
		"users":    "Small product teams",
	}
)

// ToJSON marshals a fixture, panicking on failure
func ToJSON(fixture interface{}) string {
	data, err := json.Marshal(fixture)
	if err != nil {
		panic(err)
	}
	return string(data)
}

// LLMBackendStub is an httptest stand-in for the language-model backend.
// It records the payload of every generation call.
type LLMBackendStub struct {
	Server *httptest.Server

	mu       sync.Mutex
	payloads []map[string]interface{}
	// FailTypes makes generation of the listed types answer with the given status
	FailTypes map[string]int
}

// NewLLMBackendStub starts a stub backend closed at test cleanup
func NewLLMBackendStub(t *testing.T) *LLMBackendStub {
	t.Helper()

	stub := &LLMBackendStub{FailTypes: map[string]int{}}
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/api/process-initial", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.InitialAnalysisResponse{
			NeedsFollowUp:     true,
			Analysis:          "The project needs platform and audience details.",
			FollowUpQuestions: DefaultFollowUpQuestions,
		})
	})

	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		docType, _ := payload["type"].(string)

		stub.mu.Lock()
		stub.payloads = append(stub.payloads, payload)
		status, fail := stub.FailTypes[docType]
		stub.mu.Unlock()

		if fail {
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]string{"detail": "generation rejected for " + docType})
			return
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"content": "# " + docType + "\n\n```md\ngenerated\n```\n",
		})
	})

	mux.HandleFunc("/api/generate-overview", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"overview": "# Overview preview"})
	})

	stub.Server = httptest.NewServer(mux)
	t.Cleanup(stub.Server.Close)
	return stub
}

// URL returns the stub base URL
func (s *LLMBackendStub) URL() string {
	return s.Server.URL
}

// Payloads returns the generation payloads received so far
func (s *LLMBackendStub) Payloads() []map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]interface{}(nil), s.payloads...)
}

// SetFailure makes generation of docType answer with status
func (s *LLMBackendStub) SetFailure(docType string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FailTypes[docType] = status
}
