package uploads

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"portfolio-backend/internal/shared/storage/object"
	"portfolio-backend/internal/shared/telemetry"
)

// Session is one uploader instance. Nothing about it is persisted.
type Session struct {
	ID          string
	ProjectID   string
	Coordinator *Coordinator
	lastUsed    time.Time
}

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	Store          object.BlobStore
	Notifier       Notifier
	MaxFiles       int
	TTL            time.Duration
	CancelOnRemove bool
	Now            func() time.Time
}

// Registry holds live uploader sessions and evicts idle ones.
type Registry struct {
	opts RegistryOptions

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(opts RegistryOptions) *Registry {
	if opts.MaxFiles <= 0 {
		opts.MaxFiles = DefaultMaxFiles
	}
	if opts.TTL <= 0 {
		opts.TTL = time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Registry{
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Create opens a session. maxFiles <= 0 or above the configured ceiling
// falls back to the ceiling.
func (r *Registry) Create(projectID string, maxFiles int) *Session {
	if maxFiles <= 0 || maxFiles > r.opts.MaxFiles {
		maxFiles = r.opts.MaxFiles
	}
	projectID = strings.TrimSpace(projectID)
	s := &Session{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Coordinator: NewCoordinator(Options{
			ProjectID:      projectID,
			MaxFiles:       maxFiles,
			Store:          r.opts.Store,
			Notifier:       r.opts.Notifier,
			CancelOnRemove: r.opts.CancelOnRemove,
		}),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()
	s.lastUsed = r.opts.Now()
	r.sessions[s.ID] = s
	return s
}

// Get returns a live session and refreshes its idle timer.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.lastUsed = r.opts.Now()
	return s, nil
}

// Close drops a session and all of its tasks.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	s.Coordinator.Close()
	return nil
}

// CloseAll drops every session.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()
	for _, s := range sessions {
		s.Coordinator.Close()
	}
}

// Sweep evicts sessions idle for longer than the TTL and returns how many.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked()
}

// SweepEvery runs Sweep on a ticker until ctx is done.
func (r *Registry) SweepEvery(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := r.Sweep(); n > 0 {
				telemetry.Info("uploads.sessions.swept", map[string]any{"evicted": n})
			}
		}
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) sweepLocked() int {
	cutoff := r.opts.Now().Add(-r.opts.TTL)
	evicted := 0
	for id, s := range r.sessions {
		if s.lastUsed.Before(cutoff) {
			delete(r.sessions, id)
			go s.Coordinator.Close()
			evicted++
		}
	}
	return evicted
}
