package blog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	posts map[string]Post
	order map[string]int64
	seq   int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		posts: make(map[string]Post),
		order: make(map[string]int64),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, p Post) (Post, error) {
	if err := ctx.Err(); err != nil {
		return Post{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slugInUse(p.Slug, "") {
		return Post{}, ErrSlugTaken
	}
	now := time.Now().UTC()
	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.seq++
	r.order[p.ID] = r.seq
	r.posts[p.ID] = clonePost(p)
	return p, nil
}

func (r *MemoryRepo) Update(ctx context.Context, p Post) (Post, error) {
	if err := ctx.Err(); err != nil {
		return Post{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.posts[p.ID]
	if !ok {
		return Post{}, ErrNotFound
	}
	if r.slugInUse(p.Slug, p.ID) {
		return Post{}, ErrSlugTaken
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	r.posts[p.ID] = clonePost(p)
	return p, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return ErrNotFound
	}
	delete(r.posts, id)
	delete(r.order, id)
	return nil
}

func (r *MemoryRepo) ListPublished(ctx context.Context) ([]Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Post, 0, len(r.posts))
	for _, p := range r.posts {
		if p.Published {
			out = append(out, clonePost(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return r.order[out[i].ID] > r.order[out[j].ID]
	})
	return out, nil
}

func (r *MemoryRepo) GetPublishedBySlug(ctx context.Context, slug string) (Post, error) {
	if err := ctx.Err(); err != nil {
		return Post{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.posts {
		if p.Slug == slug && p.Published {
			return clonePost(p), nil
		}
	}
	return Post{}, ErrNotFound
}

func (r *MemoryRepo) slugInUse(slug, exceptID string) bool {
	for id, p := range r.posts {
		if p.Slug == slug && id != exceptID {
			return true
		}
	}
	return false
}

func clonePost(p Post) Post {
	p.Tags = append([]string{}, p.Tags...)
	return p
}

var _ Repo = (*MemoryRepo)(nil)
