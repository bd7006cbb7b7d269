package blog

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

const postColumns = `id, title, slug, excerpt, content, tags, featured, published, created_at, updated_at`

const insertPostQuery = `
INSERT INTO blog_posts (id, title, slug, excerpt, content, tags, featured, published, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
RETURNING created_at, updated_at`

const updatePostQuery = `
UPDATE blog_posts SET
  title = $2,
  slug = $3,
  excerpt = $4,
  content = $5,
  tags = $6,
  featured = $7,
  published = $8,
  updated_at = now()
WHERE id = $1
RETURNING created_at, updated_at`

const listPublishedPostsQuery = `
SELECT ` + postColumns + `
FROM blog_posts
WHERE published = TRUE
ORDER BY created_at DESC`

const getPublishedPostQuery = `
SELECT ` + postColumns + `
FROM blog_posts
WHERE slug = $1 AND published = TRUE
LIMIT 1`

const deletePostQuery = `DELETE FROM blog_posts WHERE id = $1`

func (r *PGRepo) Create(ctx context.Context, p Post) (Post, error) {
	p.ID = uuid.NewString()
	err := r.DB.QueryRowContext(ctx, insertPostQuery, postArgs(p)...).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Post{}, mapWriteError(err)
	}
	return p, nil
}

func (r *PGRepo) Update(ctx context.Context, p Post) (Post, error) {
	err := r.DB.QueryRowContext(ctx, updatePostQuery, postArgs(p)...).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Post{}, mapWriteError(err)
	}
	return p, nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, deletePostQuery, id)
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

func (r *PGRepo) ListPublished(ctx context.Context) ([]Post, error) {
	rows, err := r.DB.QueryContext(ctx, listPublishedPostsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PGRepo) GetPublishedBySlug(ctx context.Context, slug string) (Post, error) {
	p, err := scanPost(r.DB.QueryRowContext(ctx, getPublishedPostQuery, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Post{}, ErrNotFound
		}
		return Post{}, err
	}
	return p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (Post, error) {
	var (
		p       Post
		excerpt sql.NullString
		tags    pq.StringArray
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Slug, &excerpt, &p.Content, &tags,
		&p.Featured, &p.Published, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Post{}, err
	}
	p.Excerpt = excerpt.String
	p.Tags = []string(tags)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p, nil
}

func postArgs(p Post) []any {
	var excerpt any
	if p.Excerpt != "" {
		excerpt = p.Excerpt
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return []any{p.ID, p.Title, p.Slug, excerpt, p.Content, pq.StringArray(tags), p.Featured, p.Published}
}

func mapWriteError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrSlugTaken
	}
	return err
}

var _ Repo = (*PGRepo)(nil)
