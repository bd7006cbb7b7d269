package resume

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type PGRepo struct {
	DB *sql.DB
}

const resumeColumns = `id, category, title, organization, location, description,
  start_date, end_date, is_current, technologies, highlights, created_at, updated_at`

const listDatedQuery = `
SELECT ` + resumeColumns + `
FROM resume_items
WHERE category = $1
ORDER BY start_date DESC NULLS LAST, seq ASC`

const listSeqQuery = `
SELECT ` + resumeColumns + `
FROM resume_items
WHERE category = $1
ORDER BY seq ASC`

const insertResumeItemQuery = `
INSERT INTO resume_items (id, category, title, organization, location, description,
  start_date, end_date, is_current, technologies, highlights, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
RETURNING created_at, updated_at`

const replaceResumeItemQuery = `
UPDATE resume_items SET
  category = $2,
  title = $3,
  organization = $4,
  location = $5,
  description = $6,
  start_date = $7,
  end_date = $8,
  is_current = $9,
  technologies = $10,
  highlights = $11,
  updated_at = now()
WHERE id = $1
RETURNING created_at, updated_at`

const deleteResumeItemQuery = `DELETE FROM resume_items WHERE id = $1`

func (r *PGRepo) ListByCategory(ctx context.Context, category Category) ([]Entry, error) {
	query := listSeqQuery
	if category.ordered() {
		query = listDatedQuery
	}
	rows, err := r.DB.QueryContext(ctx, query, string(category))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (r *PGRepo) Create(ctx context.Context, entry Entry) (Entry, error) {
	entry.ID = uuid.NewString()
	err := r.DB.QueryRowContext(ctx, insertResumeItemQuery, entryArgs(entry.ID, entry)...).
		Scan(&entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return Entry{}, err
	}
	return entry, nil
}

func (r *PGRepo) Replace(ctx context.Context, id string, entry Entry) (Entry, error) {
	entry.ID = id
	err := r.DB.QueryRowContext(ctx, replaceResumeItemQuery, entryArgs(id, entry)...).
		Scan(&entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, err
	}
	return entry, nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, deleteResumeItemQuery, id)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var (
		e                    Entry
		category             string
		org, loc, desc       sql.NullString
		start, end           sql.NullTime
		techs, highlights    pq.StringArray
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&e.ID, &category, &e.Title, &org, &loc, &desc,
		&start, &end, &e.Current, &techs, &highlights, &createdAt, &updatedAt); err != nil {
		return Entry{}, err
	}
	e.Category = Category(category)
	e.Organization = org.String
	e.Location = loc.String
	e.Description = desc.String
	e.StartDate = nullDate(start)
	e.EndDate = nullDate(end)
	e.Technologies = []string(techs)
	e.Highlights = []string(highlights)
	e.CreatedAt = createdAt
	e.UpdatedAt = updatedAt
	return e, nil
}

func entryArgs(id string, e Entry) []any {
	return []any{
		id,
		string(e.Category),
		e.Title,
		nullableString(e.Organization),
		nullableString(e.Location),
		nullableString(e.Description),
		dateArg(e.StartDate),
		dateArg(e.EffectiveEnd()),
		e.Current,
		pq.StringArray(nonNil(e.Technologies)),
		pq.StringArray(nonNil(e.Highlights)),
	}
}

func nullDate(t sql.NullTime) *Date {
	if !t.Valid {
		return nil
	}
	d := Date{Time: t.Time.UTC()}
	return &d
}

func dateArg(d *Date) any {
	if d == nil {
		return nil
	}
	return d.Time
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
