package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/bizmatters/agent-builder/charter-orchestrator/internal/models"
)

// ErrUnknownQuestion is returned when answering a question that is not in the current batch
var ErrUnknownQuestion = errors.New("unknown follow-up question")

// FormStore holds the wizard form state and persists it after every mutation.
// Reset bumps an epoch so results of calls started before it can be dropped.
type FormStore struct {
	mu      sync.RWMutex
	state   models.FormState
	epoch   uint64
	persist *persister
}

// NewFormStore creates a store with default state. Call Load to restore a
// persisted copy.
func NewFormStore(storage Storage) *FormStore {
	return &FormStore{
		state:   models.NewFormState(),
		persist: &persister{storage: storage, key: FormStorageKey},
	}
}

// Load restores the persisted state on top of the defaults. A missing or
// unreadable copy leaves the defaults in place.
func (s *FormStore) Load(ctx context.Context) {
	loaded := models.NewFormState()
	if !s.persist.load(ctx, &loaded) {
		return
	}

	if loaded.FormData.FollowUpResponses == nil {
		loaded.FormData.FollowUpResponses = map[string]string{}
	}
	if loaded.FollowUpQuestions == nil {
		loaded.FollowUpQuestions = []models.FollowUpQuestion{}
	}
	if !loaded.CurrentStep.Valid() {
		loaded.CurrentStep = models.StepInitial
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = loaded
}

// Epoch returns the current reset epoch. Capture it before a backend call and
// pass it to ApplyAnalysis or ApplyOverview.
func (s *FormStore) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// Snapshot returns a copy of the current state
func (s *FormStore) Snapshot() models.FormState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// UpdateFormData applies a partial update. Follow-up responses are merged.
func (s *FormStore) UpdateFormData(patch models.ProjectFormPatch) models.FormState {
	return s.mutate(func(st *models.FormState) {
		if patch.ProjectName != nil {
			st.FormData.ProjectName = *patch.ProjectName
		}
		if patch.Description != nil {
			st.FormData.Description = *patch.Description
		}
		for id, answer := range patch.FollowUpResponses {
			st.FormData.FollowUpResponses[id] = answer
		}
	})
}

// UpdateFollowUpResponse records the answer to one question of the current batch
func (s *FormStore) UpdateFollowUpResponse(id, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for _, q := range s.state.FollowUpQuestions {
		if q.ID == id {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, id)
	}

	s.state.FormData.FollowUpResponses[id] = answer
	s.persist.save(s.state)
	return nil
}

// ApplyAnalysis stores an initial analysis result started under epoch. A
// result from before the last Reset is dropped and applied is false.
//
// When the result asks for follow-ups the batch replaces the current one and
// the wizard moves to the follow-up step, provided the name and description
// are still filled in. Otherwise the previous batch and its answers are
// cleared so they no longer feed generation.
func (s *FormStore) ApplyAnalysis(epoch uint64, resp models.InitialAnalysisResponse) (models.FormState, bool, error) {
	var batch []models.FollowUpQuestion
	if resp.NeedsFollowUp && len(resp.FollowUpQuestions) > 0 {
		var err error
		if batch, err = normalizeFollowUps(resp.FollowUpQuestions); err != nil {
			return models.FormState{}, false, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		return s.state.Clone(), false, nil
	}

	if batch != nil {
		s.replaceFollowUps(batch)
	} else {
		s.clearFollowUps()
	}

	s.state.Analysis = resp.Analysis
	resp.FollowUpQuestions = append([]models.FollowUpQuestion(nil), batch...)
	s.state.InitialResponse = &resp

	s.persist.save(s.state)
	return s.state.Clone(), true, nil
}

// SetFollowUps replaces the question batch and moves the wizard to the
// follow-up step when the project basics are filled in. Questions without an
// id get a generated one; duplicate ids reject the whole batch.
func (s *FormStore) SetFollowUps(questions []models.FollowUpQuestion) error {
	batch, err := normalizeFollowUps(questions)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.replaceFollowUps(batch)
	s.persist.save(s.state)
	return nil
}

func normalizeFollowUps(questions []models.FollowUpQuestion) ([]models.FollowUpQuestion, error) {
	batch := make([]models.FollowUpQuestion, 0, len(questions))
	seen := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		q.ID = strings.TrimSpace(q.ID)
		if q.ID == "" {
			q.ID = uuid.New().String()
		}
		if _, dup := seen[q.ID]; dup {
			return nil, fmt.Errorf("duplicate follow-up question id: %s", q.ID)
		}
		seen[q.ID] = struct{}{}
		batch = append(batch, q)
	}
	return batch, nil
}

// replaceFollowUps must be called with mu held
func (s *FormStore) replaceFollowUps(batch []models.FollowUpQuestion) {
	s.state.FollowUpQuestions = batch
	if s.state.FormData.HasBasics() {
		s.state.CurrentStep = models.StepFollowUp
	}
}

// clearFollowUps drops the current batch and the answers given to it. Must be
// called with mu held.
func (s *FormStore) clearFollowUps() {
	for _, q := range s.state.FollowUpQuestions {
		delete(s.state.FormData.FollowUpResponses, q.ID)
	}
	s.state.FollowUpQuestions = []models.FollowUpQuestion{}
}

// SetStep moves the wizard without any guard. Navigation requests go through
// wizard.Controller.
func (s *FormStore) SetStep(step models.WizardStep) models.FormState {
	return s.mutate(func(st *models.FormState) {
		st.CurrentStep = step
	})
}

// ApplyOverview stores the single-call overview preview started under epoch.
// It returns false when a Reset happened in between and the overview was dropped.
func (s *FormStore) ApplyOverview(epoch uint64, overview string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		return false
	}
	s.state.Overview = overview
	s.persist.save(s.state)
	return true
}

// SetProcessing toggles the transient processing flag. It is not persisted.
func (s *FormStore) SetProcessing(processing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsProcessing = processing
}

// Reset restores the defaults and erases the persisted copy
func (s *FormStore) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = models.NewFormState()
	s.epoch++
	s.persist.erase(ctx)
}

func (s *FormStore) mutate(fn func(st *models.FormState)) models.FormState {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.state)
	s.persist.save(s.state)
	return s.state.Clone()
}
