package orchestration

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bizmatters/agent-builder/charter-orchestrator/internal/models"
)

// fakeLLMClient implements LLMClient for tests
type fakeLLMClient struct {
	mu            sync.Mutex
	generateCalls int
	payloads      [][]byte
	generateFn    func(call int, payload []byte) (string, error)

	processResponse *models.InitialAnalysisResponse
	processErr      error
	processCalls    int
	processBlock    chan struct{}

	overview      string
	overviewErr   error
	submissions   []OverviewSubmission
	overviewBlock chan struct{}
	healthy       bool

	// started is signalled when a blocked call has been entered
	started chan struct{}
}

// block waits on gate after signalling started. Both may be nil.
func (f *fakeLLMClient) block(gate chan struct{}) {
	if gate == nil {
		return
	}
	if f.started != nil {
		f.started <- struct{}{}
	}
	<-gate
}

func (f *fakeLLMClient) Generate(ctx context.Context, payload []byte) (string, error) {
	f.mu.Lock()
	f.generateCalls++
	call := f.generateCalls
	f.payloads = append(f.payloads, payload)
	fn := f.generateFn
	f.mu.Unlock()

	if fn == nil {
		return "# Generated", nil
	}
	return fn(call, payload)
}

func (f *fakeLLMClient) ProcessInitial(ctx context.Context, projectName, description string) (*models.InitialAnalysisResponse, error) {
	f.block(f.processBlock)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.processCalls++
	if f.processErr != nil {
		return nil, f.processErr
	}
	resp := *f.processResponse
	return &resp, nil
}

func (f *fakeLLMClient) GenerateOverview(ctx context.Context, submission OverviewSubmission) (string, error) {
	f.block(f.overviewBlock)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submissions = append(f.submissions, submission)
	return f.overview, f.overviewErr
}

func (f *fakeLLMClient) IsHealthy(ctx context.Context) bool {
	return f.healthy
}

func (f *fakeLLMClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generateCalls
}

func (f *fakeLLMClient) lastPayload(t *testing.T) map[string]interface{} {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.payloads)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(f.payloads[len(f.payloads)-1], &decoded))
	return decoded
}

// recordingWait replaces the retry sleep and records requested delays
type recordingWait struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordingWait) wait(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return nil
}

func completeDocs(types ...models.DocumentType) models.Documents {
	docs := models.NewDocuments()
	for _, t := range types {
		docs[t] = models.GeneratedDocument{Type: t, Status: models.StatusComplete, Content: "content of " + string(t)}
	}
	return docs
}

func sampleGenerationState() models.GenerationState {
	return models.GenerationState{
		FormData: models.ProjectFormData{
			ProjectName:       "AI Charter",
			Description:       "A wizard that turns a short project description into a full set of planning documents.",
			FollowUpResponses: map[string]string{"platform": "Web"},
		},
		Analysis: "Clear web application scope.",
		FollowUpQuestions: []models.FollowUpQuestion{
			{ID: "platform", Question: "Which platform?", SuggestedAnswer: "Web"},
		},
	}
}
