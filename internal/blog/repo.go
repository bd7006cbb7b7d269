package blog

import "context"

type Repo interface {
	Create(ctx context.Context, p Post) (Post, error)
	Update(ctx context.Context, p Post) (Post, error)
	Delete(ctx context.Context, id string) error
	ListPublished(ctx context.Context) ([]Post, error)
	GetPublishedBySlug(ctx context.Context, slug string) (Post, error)
}
