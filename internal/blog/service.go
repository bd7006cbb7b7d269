package blog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"portfolio-backend/internal/shared/telemetry"
	"portfolio-backend/internal/shared/util"
	"portfolio-backend/internal/shared/validation"
)

type Service struct {
	Repo Repo
}

func (s *Service) Create(ctx context.Context, in Input) (Post, error) {
	p, err := postFromInput(in)
	if err != nil {
		return Post{}, err
	}
	created, err := s.Repo.Create(ctx, p)
	if err != nil {
		return Post{}, err
	}
	telemetry.Info("blog.post.created", map[string]any{"post_id": created.ID, "slug": created.Slug})
	return created.withReadingTime(), nil
}

// Update replaces every field of the post with id.
func (s *Service) Update(ctx context.Context, id string, in Input) (Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Post{}, ErrNotFound
	}
	p, err := postFromInput(in)
	if err != nil {
		return Post{}, err
	}
	p.ID = id
	updated, err := s.Repo.Update(ctx, p)
	if err != nil {
		return Post{}, err
	}
	telemetry.Info("blog.post.updated", map[string]any{"post_id": id})
	return updated.withReadingTime(), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	return s.Repo.Delete(ctx, id)
}

func (s *Service) ListPublished(ctx context.Context) ([]Post, error) {
	posts, err := s.Repo.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i] = posts[i].withReadingTime()
	}
	return posts, nil
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (Post, error) {
	p, err := s.Repo.GetPublishedBySlug(ctx, slug)
	if err != nil {
		return Post{}, err
	}
	return p.withReadingTime(), nil
}

func postFromInput(in Input) (Post, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	if in.Slug == "" {
		in.Slug = util.Slugify(in.Title)
	}
	if err := validation.Struct(in); err != nil {
		return Post{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	tags := make([]string, 0, len(in.Tags))
	for _, t := range in.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return Post{
		Title:     in.Title,
		Slug:      in.Slug,
		Excerpt:   strings.TrimSpace(in.Excerpt),
		Content:   in.Content,
		Tags:      tags,
		Featured:  in.Featured,
		Published: in.Published,
	}, nil
}
