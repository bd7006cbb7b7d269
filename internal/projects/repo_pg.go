package projects

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

type PGRepo struct {
	DB *sql.DB
}

const uniqueViolation = "23505"

const projectColumns = `id, title, slug, summary, description, tech_tags, github_url, demo_url,
  featured, published, created_at, updated_at`

const insertProjectQuery = `
INSERT INTO projects (id, title, slug, summary, description, tech_tags, github_url, demo_url,
  featured, published, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
RETURNING created_at, updated_at`

const insertMediaQuery = `
INSERT INTO project_media (id, project_id, url, kind, order_index)
VALUES ($1, $2, $3, $4, $5)`

const listPublishedQuery = `
SELECT ` + projectColumns + `
FROM projects
WHERE published = TRUE
ORDER BY created_at DESC`

const listAllQuery = `
SELECT ` + projectColumns + `
FROM projects
ORDER BY created_at DESC`

const getPublishedBySlugQuery = `
SELECT ` + projectColumns + `
FROM projects
WHERE slug = $1 AND published = TRUE
LIMIT 1`

const listRelatedQuery = `
SELECT ` + projectColumns + `
FROM projects
WHERE published = TRUE AND id <> $1
ORDER BY created_at DESC
LIMIT $2`

const listMediaQuery = `
SELECT project_id, url, kind, order_index
FROM project_media
WHERE project_id = ANY($1)
ORDER BY project_id, order_index`

const deleteProjectQuery = `DELETE FROM projects WHERE id = $1`

func (r *PGRepo) Create(ctx context.Context, p Project) (out Project, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return Project{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	p.ID = uuid.NewString()
	err = tx.QueryRowContext(ctx, insertProjectQuery,
		p.ID,
		p.Title,
		p.Slug,
		nullableString(p.Summary),
		nullableString(p.Description),
		pq.StringArray(nonNil(p.TechTags)),
		nullableString(p.GithubURL),
		nullableString(p.DemoURL),
		p.Featured,
		p.Published,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			err = ErrSlugTaken
		}
		return Project{}, err
	}

	for i := range p.Media {
		p.Media[i].ProjectID = p.ID
		m := p.Media[i]
		if _, err = tx.ExecContext(ctx, insertMediaQuery, uuid.NewString(), p.ID, m.URL, string(m.Kind), m.OrderIndex); err != nil {
			return Project{}, err
		}
	}
	if err = tx.Commit(); err != nil {
		return Project{}, err
	}
	return p, nil
}

func (r *PGRepo) ListPublished(ctx context.Context) ([]Project, error) {
	return r.query(ctx, listPublishedQuery)
}

func (r *PGRepo) ListAll(ctx context.Context) ([]Project, error) {
	return r.query(ctx, listAllQuery)
}

func (r *PGRepo) ListRelated(ctx context.Context, excludeID string, limit int) ([]Project, error) {
	return r.query(ctx, listRelatedQuery, excludeID, limit)
}

func (r *PGRepo) GetPublishedBySlug(ctx context.Context, slug string) (Project, error) {
	p, err := scanProject(r.DB.QueryRowContext(ctx, getPublishedBySlugQuery, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Project{}, ErrNotFound
		}
		return Project{}, err
	}
	list := []Project{p}
	if err := r.attachMedia(ctx, list); err != nil {
		return Project{}, err
	}
	return list[0], nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, deleteProjectQuery, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) query(ctx context.Context, query string, args ...any) ([]Project, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachMedia(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// attachMedia loads media for every project in one query.
func (r *PGRepo) attachMedia(ctx context.Context, list []Project) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, len(list))
	index := make(map[string]int, len(list))
	for i, p := range list {
		ids[i] = p.ID
		index[p.ID] = i
	}

	rows, err := r.DB.QueryContext(ctx, listMediaQuery, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var m Media
		var kind string
		if err := rows.Scan(&m.ProjectID, &m.URL, &kind, &m.OrderIndex); err != nil {
			return err
		}
		m.Kind = MediaKind(kind)
		if i, ok := index[m.ProjectID]; ok {
			list[i].Media = append(list[i].Media, m)
		}
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (Project, error) {
	var (
		p                       Project
		summary, desc, gh, demo sql.NullString
		tags                    pq.StringArray
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Slug, &summary, &desc, &tags, &gh, &demo,
		&p.Featured, &p.Published, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Project{}, err
	}
	p.Summary = summary.String
	p.Description = desc.String
	p.GithubURL = gh.String
	p.DemoURL = demo.String
	p.TechTags = nonNil(tags)
	p.Media = []Media{}
	return p, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

var _ Repo = (*PGRepo)(nil)
