package health

import (
	"context"
	"database/sql"
	"time"
)

const pingTimeout = 2 * time.Second

// Status is the /health payload.
type Status struct {
	OK          bool   `json:"ok"`
	Database    string `json:"database"`
	ObjectStore string `json:"objectStore"`
}

// Service reports whether the backing stores are reachable.
type Service struct {
	DB          *sql.DB
	ObjectStore string
}

// NewService constructs a health service. A nil db means in-memory repositories.
func NewService(db *sql.DB, objectStore string) *Service {
	return &Service{DB: db, ObjectStore: objectStore}
}

func (s *Service) Status(ctx context.Context) Status {
	st := Status{OK: true, Database: "memory", ObjectStore: s.ObjectStore}
	if s.DB == nil {
		return st
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		st.OK = false
		st.Database = "down"
		return st
	}
	st.Database = "up"
	return st
}
