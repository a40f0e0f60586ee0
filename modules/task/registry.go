package task

import (
	"context"
	"errors"
	"sync"

	domain "github.com/Sid-047/reminderApp/domain/task"
	"github.com/Sid-047/reminderApp/modules/snapshot"
	"golang.org/x/sync/singleflight"
)

// Registry keeps one loaded Store per user. Concurrent first requests for the
// same user share a single snapshot read.
type Registry struct {
	repo   snapshot.Repository
	opts   []Option
	mu     sync.RWMutex
	stores map[string]*Store
	group  singleflight.Group
}

// NewRegistry creates a registry whose stores persist through repo.
func NewRegistry(repo snapshot.Repository, opts ...Option) *Registry {
	return &Registry{
		repo:   repo,
		opts:   opts,
		stores: make(map[string]*Store),
	}
}

// Store returns the loaded store of userID, loading it on first use. A store
// whose snapshot could not be read is returned with the error but not kept,
// so the next call retries the read.
func (r *Registry) Store(ctx context.Context, userID string) (*Store, error) {
	r.mu.RLock()
	s, ok := r.stores[userID]
	r.mu.RUnlock()
	if ok {
		return s, nil
	}

	v, err, _ := r.group.Do(userID, func() (any, error) {
		r.mu.RLock()
		s, ok := r.stores[userID]
		r.mu.RUnlock()
		if ok {
			return s, nil
		}

		s = NewStore(r.repo, r.opts...)
		_, err := s.Load(context.WithoutCancel(ctx), userID)
		if err != nil && !errors.Is(err, domain.ErrPersistence) {
			return nil, err
		}
		if IsLoadFailure(err) {
			return s, err
		}

		r.mu.Lock()
		r.stores[userID] = s
		r.mu.Unlock()
		return s, err
	})
	if v == nil {
		return nil, err
	}
	return v.(*Store), err
}

// Loaded reports whether userID has a store in memory.
func (r *Registry) Loaded(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.stores[userID]
	return ok
}

// Evict drops the in-memory store of userID. The next access reloads it.
func (r *Registry) Evict(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, userID)
}

// Len returns the number of loaded stores.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.stores)
}
