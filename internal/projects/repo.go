package projects

import "context"

type Repo interface {
	// Create stores the project and its media together.
	Create(ctx context.Context, p Project) (Project, error)
	ListPublished(ctx context.Context) ([]Project, error)
	ListAll(ctx context.Context) ([]Project, error)
	GetPublishedBySlug(ctx context.Context, slug string) (Project, error)
	// ListRelated returns up to limit published projects other than excludeID.
	ListRelated(ctx context.Context, excludeID string, limit int) ([]Project, error)
	Delete(ctx context.Context, id string) error
}
