package session

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/reelcut/reelcut/internal/music"
)

// Registry tracks open sessions and reopens persisted ones on demand.
type Registry struct {
	catalog *music.Catalog
	store   SnapshotStore
	logger  *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry(catalog *music.Catalog, store SnapshotStore, logger *slog.Logger) *Registry {
	return &Registry{
		catalog:  catalog,
		store:    store,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

func (r *Registry) Store() SnapshotStore {
	return r.store
}

// Create opens a new, empty session. Its overlay is ready immediately.
func (r *Registry) Create(title string) *Session {
	s := New("", title, r.catalog)
	_ = s.Update(func(st *State) error { return st.Overlay.Load(nil) })

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	r.logger.Info("session created", "session_id", s.ID)
	return s
}

// Get returns an open session.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Open returns the session if it is open, otherwise restores it from its
// latest snapshot.
func (r *Registry) Open(ctx context.Context, id string) (*Session, error) {
	if s, err := r.Get(id); err == nil {
		return s, nil
	}
	if r.store == nil {
		return nil, ErrSessionNotFound
	}

	snap, err := r.store.LoadSnapshot(ctx, id)
	if errors.Is(err, ErrSnapshotNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	s := New(id, snap.Title, r.catalog)
	if err := s.Restore(snap); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[id]; ok {
		return existing, nil
	}
	r.sessions[id] = s
	r.logger.Info("session restored from snapshot", "session_id", id, "clip_count", len(snap.Clips))
	return s, nil
}

// Close drops the session from memory and keeps its snapshot.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

// Delete closes the session and removes its snapshot.
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	_, open := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if r.store == nil {
		if !open {
			return ErrSessionNotFound
		}
		return nil
	}
	err := r.store.DeleteSnapshot(ctx, id)
	if errors.Is(err, ErrSnapshotNotFound) {
		if open {
			return nil
		}
		return ErrSessionNotFound
	}
	return err
}

// List returns open sessions, oldest first.
func (r *Registry) List() []*Session {
	r.mu.RLock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
