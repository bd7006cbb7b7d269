package resume

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	items map[string]memoryEntry
	seq   int64
}

type memoryEntry struct {
	entry Entry
	seq   int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{items: make(map[string]memoryEntry)}
}

func (r *MemoryRepo) ListByCategory(ctx context.Context, category Category) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	rows := make([]memoryEntry, 0, len(r.items))
	for _, it := range r.items {
		if it.entry.Category == category {
			rows = append(rows, it)
		}
	}
	r.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if category.ordered() {
			a, b := rows[i].entry.StartDate, rows[j].entry.StartDate
			switch {
			case a != nil && b != nil && !a.Equal(b.Time):
				return a.After(b.Time)
			case a != nil && b == nil:
				return true
			case a == nil && b != nil:
				return false
			}
		}
		return rows[i].seq < rows[j].seq
	})

	out := make([]Entry, 0, len(rows))
	for _, it := range rows {
		out = append(out, cloneEntry(it.entry))
	}
	return out, nil
}

func (r *MemoryRepo) Create(ctx context.Context, entry Entry) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	entry.ID = uuid.NewString()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	r.seq++
	r.items[entry.ID] = memoryEntry{entry: cloneEntry(entry), seq: r.seq}
	return entry, nil
}

func (r *MemoryRepo) Replace(ctx context.Context, id string, entry Entry) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[id]
	if !ok {
		return Entry{}, ErrNotFound
	}
	entry.ID = id
	entry.CreatedAt = existing.entry.CreatedAt
	entry.UpdatedAt = time.Now().UTC()
	r.items[id] = memoryEntry{entry: cloneEntry(entry), seq: existing.seq}
	return entry, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func cloneEntry(e Entry) Entry {
	e.Technologies = append([]string(nil), e.Technologies...)
	e.Highlights = append([]string(nil), e.Highlights...)
	return e
}

var _ Repo = (*MemoryRepo)(nil)
