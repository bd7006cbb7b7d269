package projects

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestPGRepoCreateInsertsMediaInTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO projects").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectExec("INSERT INTO project_media").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "https://cdn/a.png", "thumb", 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO project_media").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "https://cdn/b.mp4", "video", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := &PGRepo{DB: db}
	p, err := repo.Create(context.Background(), Project{
		Title: "T",
		Slug:  "t",
		Media: []Media{
			{URL: "https://cdn/a.png", Kind: MediaThumb, OrderIndex: 0},
			{URL: "https://cdn/b.mp4", Kind: MediaVideo, OrderIndex: 1},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Media[1].ProjectID != p.ID {
		t.Fatalf("media not linked to project")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoCreateMapsUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO projects").WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	repo := &PGRepo{DB: db}
	if _, err := repo.Create(context.Background(), Project{Title: "T", Slug: "t"}); !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("expected ErrSlugTaken, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoListAttachesMedia(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	cols := []string{"id", "title", "slug", "summary", "description", "tech_tags", "github_url", "demo_url",
		"featured", "published", "created_at", "updated_at"}
	mock.ExpectQuery("WHERE published = TRUE").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("p1", "One", "one", nil, nil, "{go}", nil, nil, false, true, now, now).
			AddRow("p2", "Two", "two", "sum", nil, "{}", nil, nil, true, true, now, now))
	mock.ExpectQuery("FROM project_media").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"project_id", "url", "kind", "order_index"}).
			AddRow("p1", "https://cdn/a.png", "thumb", 0).
			AddRow("p1", "https://cdn/b.png", "image", 1))

	repo := &PGRepo{DB: db}
	list, err := repo.ListPublished(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || len(list[0].Media) != 2 || len(list[1].Media) != 0 {
		t.Fatalf("unexpected list: %+v", list)
	}
	if list[1].Summary != "sum" || list[0].TechTags[0] != "go" {
		t.Fatalf("unexpected fields: %+v", list)
	}
}
