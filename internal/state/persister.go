package state

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"
)

const persistTimeout = 5 * time.Second

// persister writes one store's snapshot to storage after each mutation.
// Failures are logged and never surface to the mutating caller.
type persister struct {
	storage Storage
	key     string
}

func (p *persister) load(ctx context.Context, target interface{}) bool {
	if p.storage == nil {
		return false
	}

	data, err := p.storage.Load(ctx, p.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf(`{"level":"warn","message":"Failed to load persisted state, using defaults","key":"%s","error":"%v"}`, p.key, err)
		}
		return false
	}

	if err := json.Unmarshal(data, target); err != nil {
		log.Printf(`{"level":"warn","message":"Failed to parse persisted state, using defaults","key":"%s","error":"%v"}`, p.key, err)
		return false
	}

	return true
}

func (p *persister) save(value interface{}) {
	if p.storage == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		log.Printf(`{"level":"error","message":"Failed to encode state","key":"%s","error":"%v"}`, p.key, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := p.storage.Save(ctx, p.key, data); err != nil {
		log.Printf(`{"level":"error","message":"Failed to persist state","key":"%s","error":"%v"}`, p.key, err)
	}
}

func (p *persister) erase(ctx context.Context) {
	if p.storage == nil {
		return
	}

	if err := p.storage.Delete(ctx, p.key); err != nil {
		log.Printf(`{"level":"error","message":"Failed to erase persisted state","key":"%s","error":"%v"}`, p.key, err)
	}
}
