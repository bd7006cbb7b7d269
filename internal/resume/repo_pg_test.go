package resume

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var entryColumns = []string{"id", "category", "title", "organization", "location", "description",
	"start_date", "end_date", "is_current", "technologies", "highlights", "created_at", "updated_at"}

func TestPGRepoListOrdersByStartDate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("ORDER BY start_date DESC").
		WithArgs("experience").
		WillReturnRows(sqlmock.NewRows(entryColumns).
			AddRow("id-1", "experience", "Engineer", "Acme", nil, nil, start, nil, true, "{go,sql}", "{}", now, now))

	repo := &PGRepo{DB: db}
	entries, err := repo.ListByCategory(context.Background(), CategoryExperience)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Organization != "Acme" || e.StartDate == nil || e.StartDate.String() != "2022-01-01" || e.EndDate != nil {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if len(e.Technologies) != 2 || e.Technologies[1] != "sql" {
		t.Fatalf("unexpected technologies: %v", e.Technologies)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoSkillsUseInsertionOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("ORDER BY seq ASC").
		WithArgs("skills").
		WillReturnRows(sqlmock.NewRows(entryColumns))

	repo := &PGRepo{DB: db}
	entries, err := repo.ListByCategory(context.Background(), CategorySkills)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", entries)
	}
}

func TestPGRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO resume_items").
		WithArgs(sqlmock.AnyArg(), "skills", "Languages", nil, nil, nil, nil, nil, false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	repo := &PGRepo{DB: db}
	entry, err := repo.Create(context.Background(), Entry{Category: CategorySkills, Title: "Languages", Highlights: []string{"Go"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if entry.ID == "" || !entry.CreatedAt.Equal(now) {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoReplaceMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("UPDATE resume_items").WillReturnError(sql.ErrNoRows)

	repo := &PGRepo{DB: db}
	if _, err := repo.Replace(context.Background(), "missing", Entry{Category: CategorySkills, Title: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoDeleteMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("DELETE FROM resume_items").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := &PGRepo{DB: db}
	if err := repo.Delete(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
