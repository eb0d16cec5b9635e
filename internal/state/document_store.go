package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bizmatters/agent-builder/charter-orchestrator/internal/models"
)

var (
	// ErrGenerationInProgress is returned when a document is already generating
	ErrGenerationInProgress = errors.New("document generation already in progress")
	// ErrEmptyContent is returned when a document would be completed without content
	ErrEmptyContent = errors.New("document content must not be empty")
)

// documentState is the persisted shape of the document store
type documentState struct {
	Documents models.Documents `json:"documents"`
}

// DocumentStore holds one GeneratedDocument per DocumentType
type DocumentStore struct {
	mu      sync.RWMutex
	docs    models.Documents
	epoch   uint64
	persist *persister

	subscribers map[int]chan models.Documents
	nextSubID   int
}

// NewDocumentStore creates a store with every document pending
func NewDocumentStore(storage Storage) *DocumentStore {
	return &DocumentStore{
		docs:        models.NewDocuments(),
		persist:     &persister{storage: storage, key: DocumentStorageKey},
		subscribers: make(map[int]chan models.Documents),
	}
}

// Load restores the persisted documents. Unknown types are dropped, missing
// ones stay pending, and a document persisted mid-generation goes back to
// pending since no call survives a restart.
func (s *DocumentStore) Load(ctx context.Context) {
	var loaded documentState
	if !s.persist.load(ctx, &loaded) {
		return
	}

	docs := models.NewDocuments()
	for _, t := range models.DocumentOrder {
		doc, ok := loaded.Documents[t]
		if !ok {
			continue
		}
		doc.Type = t
		if doc.Status == models.StatusGenerating || !doc.Consistent() {
			doc = models.GeneratedDocument{Type: t, Status: models.StatusPending}
		}
		docs[t] = doc
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = docs
	s.notify()
}

// Snapshot returns a copy of all documents
func (s *DocumentStore) Snapshot() models.Documents {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs.Clone()
}

// Get returns one document
func (s *DocumentStore) Get(t models.DocumentType) (models.GeneratedDocument, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[t]
	return doc, ok
}

// StartGeneration marks t as generating and returns the epoch the result must
// be reported under.
func (s *DocumentStore) StartGeneration(t models.DocumentType) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[t]
	if !ok {
		return 0, fmt.Errorf("unknown document type: %s", t)
	}
	if doc.Status == models.StatusGenerating {
		return 0, fmt.Errorf("%w: %s", ErrGenerationInProgress, t)
	}
	if err := validateDocumentTransition(doc.Status, models.StatusGenerating); err != nil {
		return 0, err
	}

	s.docs[t] = models.GeneratedDocument{Type: t, Status: models.StatusGenerating}
	s.changed()
	return s.epoch, nil
}

// CompleteGeneration stores the generated content. Results reported under a
// stale epoch (the store was reset meanwhile) are ignored and false is returned.
func (s *DocumentStore) CompleteGeneration(t models.DocumentType, content string, epoch uint64) (bool, error) {
	if content == "" {
		return false, ErrEmptyContent
	}
	return s.finish(t, epoch, models.GeneratedDocument{Type: t, Status: models.StatusComplete, Content: content})
}

// FailGeneration stores the error of a failed generation. Stale epochs are
// ignored as in CompleteGeneration.
func (s *DocumentStore) FailGeneration(t models.DocumentType, message string, epoch uint64) (bool, error) {
	if message == "" {
		message = "Unknown error occurred"
	}
	return s.finish(t, epoch, models.GeneratedDocument{Type: t, Status: models.StatusError, Error: message})
}

// UpdateDocument replaces the content of t with a manual edit
func (s *DocumentStore) UpdateDocument(t models.DocumentType, content string) (models.GeneratedDocument, error) {
	if content == "" {
		return models.GeneratedDocument{}, ErrEmptyContent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[t]
	if !ok {
		return models.GeneratedDocument{}, fmt.Errorf("unknown document type: %s", t)
	}
	if doc.Status == models.StatusGenerating {
		return models.GeneratedDocument{}, fmt.Errorf("%w: %s", ErrGenerationInProgress, t)
	}

	updated := models.GeneratedDocument{Type: t, Status: models.StatusComplete, Content: content}
	s.docs[t] = updated
	s.changed()
	return updated, nil
}

// Reset sets every document back to pending and erases the persisted copy.
// Generations still in flight will report under the old epoch and be dropped.
func (s *DocumentStore) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs = models.NewDocuments()
	s.epoch++
	s.persist.erase(ctx)
	s.notify()
}

// Subscribe returns a channel receiving a snapshot after every change. Slow
// readers only see the latest snapshot. Call the returned func to unsubscribe.
func (s *DocumentStore) Subscribe() (<-chan models.Documents, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan models.Documents, 1)
	s.subscribers[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(sub)
		}
	}
}

func (s *DocumentStore) finish(t models.DocumentType, epoch uint64, next models.GeneratedDocument) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		return false, nil
	}

	doc, ok := s.docs[t]
	if !ok {
		return false, fmt.Errorf("unknown document type: %s", t)
	}
	if err := validateDocumentTransition(doc.Status, next.Status); err != nil {
		return false, err
	}

	s.docs[t] = next
	s.changed()
	return true, nil
}

// changed persists and broadcasts the current documents. Callers hold s.mu.
func (s *DocumentStore) changed() {
	s.persist.save(documentState{Documents: s.docs})
	s.notify()
}

func (s *DocumentStore) notify() {
	for _, ch := range s.subscribers {
		snapshot := s.docs.Clone()
		select {
		case ch <- snapshot:
		default:
			// drop the stale snapshot the reader has not picked up yet
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}

// validateDocumentTransition checks a generation lifecycle transition
func validateDocumentTransition(current, next models.DocumentStatus) error {
	validTransitions := map[models.DocumentStatus][]models.DocumentStatus{
		models.StatusPending:    {models.StatusGenerating},
		models.StatusGenerating: {models.StatusComplete, models.StatusError},
		models.StatusComplete:   {models.StatusGenerating},
		models.StatusError:      {models.StatusGenerating},
	}

	allowedNext, exists := validTransitions[current]
	if !exists {
		return fmt.Errorf("invalid current status: %s", current)
	}

	for _, allowed := range allowedNext {
		if allowed == next {
			return nil
		}
	}

	return fmt.Errorf("invalid status transition from %s to %s", current, next)
}
