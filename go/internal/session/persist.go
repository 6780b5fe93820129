package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/courtclock/go/internal/storage"
)

type saveRequest struct {
	key   string
	value string
}

// persister writes saves on its own goroutine so the session loop never waits
// on storage. Saves are coalesced per key: a newer value replaces one that has
// not been written yet, and keys are written in the order they first became
// pending.
type persister struct {
	store storage.Store

	mu      sync.Mutex
	pending map[string]string
	order   []string

	wake chan struct{}
	done chan struct{}
}

func newPersister(store storage.Store) *persister {
	return &persister{
		store:   store,
		pending: make(map[string]string),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// enqueue serializes value now and marks it for writing. It never blocks.
func (p *persister) enqueue(key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to marshal state for persistence")
		return
	}

	p.mu.Lock()
	if _, queued := p.pending[key]; !queued {
		p.order = append(p.order, key)
	}
	p.pending[key] = string(data)
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// take removes and returns everything pending.
func (p *persister) take() []saveRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.order) == 0 {
		return nil
	}
	reqs := make([]saveRequest, 0, len(p.order))
	for _, key := range p.order {
		reqs = append(reqs, saveRequest{key: key, value: p.pending[key]})
	}
	clear(p.pending)
	p.order = p.order[:0]
	return reqs
}

// run writes pending saves until ctx is cancelled, then flushes what is left.
func (p *persister) run(ctx context.Context) {
	defer close(p.done)
	writeCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-p.wake:
			p.drain(writeCtx)
		case <-ctx.Done():
			p.flush()
			return
		}
	}
}

func (p *persister) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p.drain(ctx)
}

func (p *persister) drain(ctx context.Context) {
	for {
		reqs := p.take()
		if len(reqs) == 0 {
			return
		}
		for _, req := range reqs {
			p.write(ctx, req)
		}
	}
}

func (p *persister) write(ctx context.Context, req saveRequest) {
	if err := p.store.Set(ctx, req.key, req.value); err != nil {
		log.Error().Err(err).Str("key", req.key).Msg("failed to persist state")
		return
	}
	log.Debug().Str("key", req.key).Int("size", len(req.value)).Msg("state persisted")
}
