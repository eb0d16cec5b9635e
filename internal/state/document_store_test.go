package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizmatters/agent-builder/charter-orchestrator/internal/models"
)

type failingStorage struct {
	*MemoryStorage
}

func (f *failingStorage) Save(ctx context.Context, key string, value []byte) error {
	return errors.New("disk full")
}

func TestDocumentStore_Defaults(t *testing.T) {
	store := NewDocumentStore(NewMemoryStorage())

	docs := store.Snapshot()
	require.Len(t, docs, len(models.DocumentOrder))
	for _, dt := range models.DocumentOrder {
		assert.Equal(t, models.GeneratedDocument{Type: dt, Status: models.StatusPending}, docs[dt])
	}
}

func TestDocumentStore_GenerationLifecycle(t *testing.T) {
	store := NewDocumentStore(NewMemoryStorage())

	epoch, err := store.StartGeneration(models.DocumentOverview)
	require.NoError(t, err)

	doc, _ := store.Get(models.DocumentOverview)
	assert.Equal(t, models.StatusGenerating, doc.Status)

	t.Run("duplicate start is rejected", func(t *testing.T) {
		_, err := store.StartGeneration(models.DocumentOverview)
		assert.ErrorIs(t, err, ErrGenerationInProgress)
	})

	t.Run("manual edit is rejected while generating", func(t *testing.T) {
		_, err := store.UpdateDocument(models.DocumentOverview, "# edit")
		assert.ErrorIs(t, err, ErrGenerationInProgress)
	})

	applied, err := store.CompleteGeneration(models.DocumentOverview, "# Overview", epoch)
	require.NoError(t, err)
	assert.True(t, applied)

	doc, _ = store.Get(models.DocumentOverview)
	assert.Equal(t, models.GeneratedDocument{Type: models.DocumentOverview, Status: models.StatusComplete, Content: "# Overview"}, doc)
	assert.True(t, doc.Consistent())

	t.Run("regeneration then failure clears content", func(t *testing.T) {
		epoch, err := store.StartGeneration(models.DocumentOverview)
		require.NoError(t, err)

		applied, err := store.FailGeneration(models.DocumentOverview, "boom", epoch)
		require.NoError(t, err)
		assert.True(t, applied)

		doc, _ := store.Get(models.DocumentOverview)
		assert.Equal(t, models.StatusError, doc.Status)
		assert.Empty(t, doc.Content)
		assert.Equal(t, "boom", doc.Error)
		assert.True(t, doc.Consistent())
	})
}

func TestDocumentStore_InvalidTransitions(t *testing.T) {
	store := NewDocumentStore(nil)

	_, err := store.CompleteGeneration(models.DocumentPRD, "content", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid status transition from pending to complete")

	_, err = store.CompleteGeneration(models.DocumentPRD, "", 0)
	assert.ErrorIs(t, err, ErrEmptyContent)

	_, err = store.StartGeneration(models.DocumentType("appendix"))
	assert.Error(t, err)
}

func TestDocumentStore_ResetDropsLateResults(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	store := NewDocumentStore(storage)

	epoch, err := store.StartGeneration(models.DocumentOverview)
	require.NoError(t, err)

	store.Reset(ctx)

	applied, err := store.CompleteGeneration(models.DocumentOverview, "late", epoch)
	require.NoError(t, err)
	assert.False(t, applied)

	doc, _ := store.Get(models.DocumentOverview)
	assert.Equal(t, models.StatusPending, doc.Status)

	_, err = storage.Load(ctx, DocumentStorageKey)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDocumentStore_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("restores persisted documents", func(t *testing.T) {
		storage := NewMemoryStorage()
		first := NewDocumentStore(storage)
		_, err := first.UpdateDocument(models.DocumentOverview, "# Overview")
		require.NoError(t, err)

		second := NewDocumentStore(storage)
		second.Load(ctx)
		doc, _ := second.Get(models.DocumentOverview)
		assert.Equal(t, "# Overview", doc.Content)
		assert.Equal(t, models.StatusComplete, doc.Status)
	})

	t.Run("normalizes generating and inconsistent documents", func(t *testing.T) {
		storage := NewMemoryStorage()
		blob := `{"documents":{
			"overview":{"type":"overview","status":"generating","content":""},
			"prd":{"type":"prd","status":"complete","content":""},
			"techStack":{"type":"techStack","status":"error","content":"","error":"timeout"},
			"appendix":{"type":"appendix","status":"complete","content":"x"}
		}}`
		require.NoError(t, storage.Save(ctx, DocumentStorageKey, []byte(blob)))

		store := NewDocumentStore(storage)
		store.Load(ctx)
		docs := store.Snapshot()

		require.Len(t, docs, len(models.DocumentOrder))
		assert.Equal(t, models.StatusPending, docs[models.DocumentOverview].Status)
		assert.Equal(t, models.StatusPending, docs[models.DocumentPRD].Status)
		assert.Equal(t, models.StatusError, docs[models.DocumentTechStack].Status)
		assert.Equal(t, models.StatusPending, docs[models.DocumentDevelopmentPlan].Status)
	})

	t.Run("unparsable blob keeps defaults", func(t *testing.T) {
		storage := NewMemoryStorage()
		require.NoError(t, storage.Save(ctx, DocumentStorageKey, []byte("[")))

		store := NewDocumentStore(storage)
		store.Load(ctx)
		assert.Equal(t, models.NewDocuments(), store.Snapshot())
	})
}

func TestDocumentStore_StorageFailureDoesNotFailMutation(t *testing.T) {
	store := NewDocumentStore(&failingStorage{MemoryStorage: NewMemoryStorage()})

	doc, err := store.UpdateDocument(models.DocumentOverview, "# Overview")
	require.NoError(t, err)
	assert.Equal(t, models.StatusComplete, doc.Status)
}

func TestDocumentStore_Subscribe(t *testing.T) {
	store := NewDocumentStore(nil)
	updates, unsubscribe := store.Subscribe()

	_, err := store.UpdateDocument(models.DocumentOverview, "one")
	require.NoError(t, err)
	_, err = store.UpdateDocument(models.DocumentOverview, "two")
	require.NoError(t, err)

	select {
	case docs := <-updates:
		assert.Equal(t, "two", docs[models.DocumentOverview].Content, "slow readers only see the latest snapshot")
	case <-time.After(time.Second):
		t.Fatal("no update received")
	}

	unsubscribe()
	_, open := <-updates
	assert.False(t, open)
}
