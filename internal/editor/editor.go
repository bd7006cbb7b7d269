package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"portfolio-backend/internal/resume"
	"portfolio-backend/internal/shared/telemetry"
)

// ErrLocked is returned by mutations attempted before a successful unlock.
var ErrLocked = errors.New("editor is locked")

// Editor keeps one cached list per category and mirrors the server after
// every mutation. Nothing is inserted locally ahead of the server.
type Editor struct {
	Session *Session
	client  Client

	mu     sync.RWMutex
	caches map[resume.Category][]resume.Entry
}

func New(client Client) *Editor {
	return &Editor{
		Session: NewSession(client),
		client:  client,
		caches:  make(map[resume.Category][]resume.Entry),
	}
}

func (e *Editor) Unlock(ctx context.Context, password string) error {
	return e.Session.Unlock(ctx, password)
}

func (e *Editor) Exit() {
	e.Session.Exit()
}

// Items returns a copy of the cached list for category.
func (e *Editor) Items(category resume.Category) []resume.Entry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]resume.Entry(nil), e.caches[category]...)
}

// Refresh replaces the cached list with the server's. The cache is left as
// is when the fetch fails.
func (e *Editor) Refresh(ctx context.Context, category resume.Category) error {
	entries, err := e.client.List(ctx, category)
	if err != nil {
		telemetry.Warn("editor.refresh.failed", map[string]any{"category": category, "error": err.Error()})
		return fmt.Errorf("refresh %s: %w", category, err)
	}
	if entries == nil {
		entries = []resume.Entry{}
	}
	e.mu.Lock()
	e.caches[category] = entries
	e.mu.Unlock()
	return nil
}

// Save creates item when id is empty and replaces the stored entry otherwise,
// then refreshes the item's category.
func (e *Editor) Save(ctx context.Context, item resume.Item, id string) error {
	secret, ok := e.Session.Secret()
	if !ok {
		return ErrLocked
	}
	data, err := resume.EncodeItem(item)
	if err != nil {
		return err
	}
	req := resume.MutateRequest{Password: secret, Action: resume.ActionCreate, Data: data}
	if id != "" {
		req.Action = resume.ActionUpdate
		req.ID = id
	}
	if err := e.client.Mutate(ctx, req); err != nil {
		return err
	}
	return e.Refresh(ctx, item.Category())
}

// Delete removes the entry and refreshes its category.
func (e *Editor) Delete(ctx context.Context, category resume.Category, id string) error {
	secret, ok := e.Session.Secret()
	if !ok {
		return ErrLocked
	}
	err := e.client.Mutate(ctx, resume.MutateRequest{Password: secret, Action: resume.ActionDelete, ID: id})
	if err != nil {
		return err
	}
	return e.Refresh(ctx, category)
}
