package projects

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"portfolio-backend/internal/shared/telemetry"
	"portfolio-backend/internal/shared/util"
	"portfolio-backend/internal/shared/validation"
)

const relatedLimit = 6

type Service struct {
	Repo Repo
	// SiteURL is the public site root used for sitemap links.
	SiteURL string
}

// Create stores a project with one media row per URL, in URL order.
func (s *Service) Create(ctx context.Context, in Input) (Project, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	if in.Slug == "" {
		in.Slug = util.Slugify(in.Title)
	}
	if err := validation.Struct(in); err != nil {
		return Project{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	p := Project{
		Title:       in.Title,
		Slug:        in.Slug,
		Summary:     in.Summary,
		Description: in.Description,
		TechTags:    trimAll(in.TechTags),
		GithubURL:   in.GithubURL,
		DemoURL:     in.DemoURL,
		Featured:    in.Featured,
		Published:   in.Published,
		Media:       make([]Media, 0, len(in.MediaURLs)),
	}
	for i, url := range in.MediaURLs {
		p.Media = append(p.Media, Media{URL: url, Kind: MediaKindFor(url, i), OrderIndex: i})
	}

	created, err := s.Repo.Create(ctx, p)
	if err != nil {
		return Project{}, err
	}
	telemetry.Info("projects.created", map[string]any{
		"project_id": created.ID,
		"slug":       created.Slug,
		"media":      len(created.Media),
	})
	return created, nil
}

func (s *Service) ListPublished(ctx context.Context) ([]Project, error) {
	return s.Repo.ListPublished(ctx)
}

func (s *Service) ListAll(ctx context.Context) ([]Project, error) {
	return s.Repo.ListAll(ctx)
}

// GetBySlug returns a published project and a few other published ones.
func (s *Service) GetBySlug(ctx context.Context, slug string) (Project, []Project, error) {
	p, err := s.Repo.GetPublishedBySlug(ctx, slug)
	if err != nil {
		return Project{}, nil, err
	}
	related, err := s.Repo.ListRelated(ctx, p.ID, relatedLimit)
	if err != nil {
		return Project{}, nil, err
	}
	return p, related, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	telemetry.Info("projects.deleted", map[string]any{"project_id": id})
	return nil
}

func trimAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, v := range items {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
