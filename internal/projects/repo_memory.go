package projects

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type MemoryRepo struct {
	mu       sync.RWMutex
	projects map[string]Project
	bySlug   map[string]string
	order    map[string]int64
	seq      int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		projects: make(map[string]Project),
		bySlug:   make(map[string]string),
		order:    make(map[string]int64),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, p Project) (Project, error) {
	if err := ctx.Err(); err != nil {
		return Project{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bySlug[p.Slug]; ok {
		return Project{}, ErrSlugTaken
	}
	now := time.Now().UTC()
	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now
	for i := range p.Media {
		p.Media[i].ProjectID = p.ID
	}
	r.projects[p.ID] = cloneProject(p)
	r.bySlug[p.Slug] = p.ID
	r.seq++
	r.order[p.ID] = r.seq
	return p, nil
}

func (r *MemoryRepo) ListPublished(ctx context.Context) ([]Project, error) {
	return r.list(ctx, func(p Project) bool { return p.Published })
}

func (r *MemoryRepo) ListAll(ctx context.Context) ([]Project, error) {
	return r.list(ctx, func(Project) bool { return true })
}

func (r *MemoryRepo) GetPublishedBySlug(ctx context.Context, slug string) (Project, error) {
	if err := ctx.Err(); err != nil {
		return Project{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.bySlug[slug]
	if !ok || !r.projects[id].Published {
		return Project{}, ErrNotFound
	}
	return cloneProject(r.projects[id]), nil
}

func (r *MemoryRepo) ListRelated(ctx context.Context, excludeID string, limit int) ([]Project, error) {
	out, err := r.list(ctx, func(p Project) bool { return p.Published && p.ID != excludeID })
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.projects, id)
	delete(r.bySlug, p.Slug)
	delete(r.order, id)
	return nil
}

func (r *MemoryRepo) list(ctx context.Context, keep func(Project) bool) ([]Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Project, 0, len(r.projects))
	for _, p := range r.projects {
		if keep(p) {
			out = append(out, cloneProject(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return r.order[out[i].ID] > r.order[out[j].ID]
	})
	r.mu.RUnlock()
	return out, nil
}

func cloneProject(p Project) Project {
	p.TechTags = append([]string{}, p.TechTags...)
	p.Media = append([]Media{}, p.Media...)
	return p
}

var _ Repo = (*MemoryRepo)(nil)
