package state

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizmatters/agent-builder/charter-orchestrator/internal/models"
)

func strPtr(s string) *string { return &s }

func TestFormStore_Defaults(t *testing.T) {
	store := NewFormStore(NewMemoryStorage())
	store.Load(context.Background())

	st := store.Snapshot()
	assert.Equal(t, models.StepInitial, st.CurrentStep)
	assert.Empty(t, st.FormData.ProjectName)
	assert.Empty(t, st.FormData.Description)
	assert.NotNil(t, st.FormData.FollowUpResponses)
	assert.Empty(t, st.FollowUpQuestions)
}

func TestFormStore_UpdateFormData(t *testing.T) {
	storage := NewMemoryStorage()
	store := NewFormStore(storage)

	store.UpdateFormData(models.ProjectFormPatch{
		ProjectName:       strPtr("AI Charter"),
		FollowUpResponses: map[string]string{"q1": "web"},
	})
	st := store.UpdateFormData(models.ProjectFormPatch{
		Description:       strPtr("A tool that writes project documents"),
		FollowUpResponses: map[string]string{"q2": "postgres"},
	})

	assert.Equal(t, "AI Charter", st.FormData.ProjectName)
	assert.Equal(t, "A tool that writes project documents", st.FormData.Description)
	assert.Equal(t, map[string]string{"q1": "web", "q2": "postgres"}, st.FormData.FollowUpResponses)

	t.Run("persisted after every mutation", func(t *testing.T) {
		raw, err := storage.Load(context.Background(), FormStorageKey)
		require.NoError(t, err)

		var persisted map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(raw, &persisted))
		assert.Contains(t, persisted, "formData")
		assert.Contains(t, persisted, "currentStep")
		assert.Contains(t, persisted, "followUpQuestions")
	})
}

func TestFormStore_SetFollowUps(t *testing.T) {
	t.Run("replaces batch and moves to follow-up step", func(t *testing.T) {
		store := NewFormStore(NewMemoryStorage())
		store.UpdateFormData(models.ProjectFormPatch{
			ProjectName: strPtr("AI Charter"),
			Description: strPtr("Planning documents"),
		})

		require.NoError(t, store.SetFollowUps([]models.FollowUpQuestion{{ID: "old", Question: "Old?"}}))
		require.NoError(t, store.SetFollowUps([]models.FollowUpQuestion{
			{ID: "platform", Question: "Which platform?", SuggestedAnswer: "Web"},
			{Question: "Who are the users?"},
		}))

		st := store.Snapshot()
		require.Len(t, st.FollowUpQuestions, 2)
		assert.Equal(t, "platform", st.FollowUpQuestions[0].ID)
		assert.NotEmpty(t, st.FollowUpQuestions[1].ID)
		assert.Equal(t, models.StepFollowUp, st.CurrentStep)
	})

	t.Run("stays on initial step without project basics", func(t *testing.T) {
		tests := []struct {
			name        string
			projectName string
			description string
		}{
			{name: "empty form"},
			{name: "blank name", projectName: "   ", description: "Planning documents"},
			{name: "blank description", projectName: "AI Charter", description: " "},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				store := NewFormStore(NewMemoryStorage())
				store.UpdateFormData(models.ProjectFormPatch{
					ProjectName: strPtr(tt.projectName),
					Description: strPtr(tt.description),
				})

				require.NoError(t, store.SetFollowUps([]models.FollowUpQuestion{{ID: "q1", Question: "Platform?"}}))
				st := store.Snapshot()
				assert.Len(t, st.FollowUpQuestions, 1)
				assert.Equal(t, models.StepInitial, st.CurrentStep)
			})
		}
	})

	t.Run("rejects duplicate ids", func(t *testing.T) {
		store := NewFormStore(NewMemoryStorage())

		err := store.SetFollowUps([]models.FollowUpQuestion{
			{ID: "q1", Question: "A?"},
			{ID: "q1", Question: "B?"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate follow-up question id")
		assert.Empty(t, store.Snapshot().FollowUpQuestions)
	})
}

func TestFormStore_UpdateFollowUpResponse(t *testing.T) {
	store := NewFormStore(NewMemoryStorage())
	require.NoError(t, store.SetFollowUps([]models.FollowUpQuestion{{ID: "q1", Question: "Platform?"}}))

	require.NoError(t, store.UpdateFollowUpResponse("q1", "Mobile"))
	assert.Equal(t, "Mobile", store.Snapshot().FormData.FollowUpResponses["q1"])

	err := store.UpdateFollowUpResponse("missing", "x")
	assert.ErrorIs(t, err, ErrUnknownQuestion)
}

func TestFormStore_LoadAndReset(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()

	first := NewFormStore(storage)
	first.UpdateFormData(models.ProjectFormPatch{ProjectName: strPtr("AI Charter")})
	_, applied, err := first.ApplyAnalysis(first.Epoch(), models.InitialAnalysisResponse{Analysis: "Looks like a web app"})
	require.NoError(t, err)
	require.True(t, applied)
	first.SetProcessing(true)

	second := NewFormStore(storage)
	second.Load(ctx)
	st := second.Snapshot()
	assert.Equal(t, "AI Charter", st.FormData.ProjectName)
	assert.Equal(t, "Looks like a web app", st.Analysis)
	require.NotNil(t, st.InitialResponse)
	assert.False(t, st.IsProcessing, "processing flag is not persisted")

	second.Reset(ctx)
	assert.Equal(t, models.NewFormState(), second.Snapshot())
	_, err = storage.Load(ctx, FormStorageKey)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFormStore_ApplyAnalysis(t *testing.T) {
	followUps := models.InitialAnalysisResponse{
		NeedsFollowUp: true,
		Analysis:      "Needs platform details",
		FollowUpQuestions: []models.FollowUpQuestion{
			{ID: "platform", Question: "Which platform?"},
			{Question: "Who are the users?"},
		},
	}

	newFilledStore := func() *FormStore {
		store := NewFormStore(NewMemoryStorage())
		store.UpdateFormData(models.ProjectFormPatch{
			ProjectName: strPtr("AI Charter"),
			Description: strPtr("Planning documents"),
		})
		return store
	}

	t.Run("stores batch and moves to follow-up step", func(t *testing.T) {
		store := newFilledStore()

		st, applied, err := store.ApplyAnalysis(store.Epoch(), followUps)
		require.NoError(t, err)
		assert.True(t, applied)
		assert.Equal(t, models.StepFollowUp, st.CurrentStep)
		assert.Equal(t, "Needs platform details", st.Analysis)
		require.Len(t, st.FollowUpQuestions, 2)
		assert.NotEmpty(t, st.FollowUpQuestions[1].ID)
		require.NotNil(t, st.InitialResponse)
		assert.Equal(t, st.FollowUpQuestions, st.InitialResponse.FollowUpQuestions)
	})

	t.Run("result from before a reset is dropped", func(t *testing.T) {
		store := newFilledStore()
		epoch := store.Epoch()
		store.Reset(context.Background())

		st, applied, err := store.ApplyAnalysis(epoch, followUps)
		require.NoError(t, err)
		assert.False(t, applied)
		assert.Equal(t, models.NewFormState(), st)
		assert.Equal(t, models.NewFormState(), store.Snapshot())
	})

	t.Run("no follow-ups clears the previous batch and its answers", func(t *testing.T) {
		store := newFilledStore()
		_, _, err := store.ApplyAnalysis(store.Epoch(), followUps)
		require.NoError(t, err)
		require.NoError(t, store.UpdateFollowUpResponse("platform", "Web"))
		store.UpdateFormData(models.ProjectFormPatch{FollowUpResponses: map[string]string{"note": "kept"}})

		st, applied, err := store.ApplyAnalysis(store.Epoch(), models.InitialAnalysisResponse{Analysis: "Complete description"})
		require.NoError(t, err)
		assert.True(t, applied)
		assert.Empty(t, st.FollowUpQuestions)
		assert.Equal(t, map[string]string{"note": "kept"}, st.FormData.FollowUpResponses)
		assert.Equal(t, "Complete description", st.Analysis)
	})

	t.Run("duplicate ids leave the state untouched", func(t *testing.T) {
		store := newFilledStore()

		_, applied, err := store.ApplyAnalysis(store.Epoch(), models.InitialAnalysisResponse{
			NeedsFollowUp:     true,
			FollowUpQuestions: []models.FollowUpQuestion{{ID: "q1"}, {ID: " q1 "}},
		})
		require.Error(t, err)
		assert.False(t, applied)
		assert.Equal(t, models.StepInitial, store.Snapshot().CurrentStep)
		assert.Empty(t, store.Snapshot().Analysis)
	})
}

func TestFormStore_ApplyOverview(t *testing.T) {
	store := NewFormStore(NewMemoryStorage())

	assert.True(t, store.ApplyOverview(store.Epoch(), "# Overview"))
	assert.Equal(t, "# Overview", store.Snapshot().Overview)

	epoch := store.Epoch()
	store.Reset(context.Background())
	assert.False(t, store.ApplyOverview(epoch, "# Late overview"))
	assert.Empty(t, store.Snapshot().Overview)
}

func TestFormStore_LoadFallsBackOnBadData(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		blob string
	}{
		{name: "unparsable json", blob: "{not json"},
		{name: "wrong shape", blob: `{"formData": 42}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := NewMemoryStorage()
			require.NoError(t, storage.Save(ctx, FormStorageKey, []byte(tt.blob)))

			store := NewFormStore(storage)
			store.Load(ctx)
			assert.Equal(t, models.NewFormState(), store.Snapshot())
		})
	}

	t.Run("unknown step falls back to initial", func(t *testing.T) {
		storage := NewMemoryStorage()
		require.NoError(t, storage.Save(ctx, FormStorageKey, []byte(`{"currentStep":"done","formData":{"projectName":"X"}}`)))

		store := NewFormStore(storage)
		store.Load(ctx)
		st := store.Snapshot()
		assert.Equal(t, models.StepInitial, st.CurrentStep)
		assert.Equal(t, "X", st.FormData.ProjectName)
		assert.NotNil(t, st.FormData.FollowUpResponses)
	})
}

func TestFormStore_SnapshotIsIsolated(t *testing.T) {
	store := NewFormStore(nil)
	store.UpdateFormData(models.ProjectFormPatch{FollowUpResponses: map[string]string{"q1": "a"}})

	snap := store.Snapshot()
	snap.FormData.FollowUpResponses["q1"] = "changed"

	assert.Equal(t, "a", store.Snapshot().FormData.FollowUpResponses["q1"])
}
