package resume

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"portfolio-backend/internal/shared/metrics"
	"portfolio-backend/internal/shared/telemetry"
)

// Action names a resume mutation.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// MutateRequest is the body of a mutation. The password travels with every
// request; unlocking a session never grants anything server-side.
type MutateRequest struct {
	Password string          `json:"password"`
	Action   Action          `json:"action"`
	ID       string          `json:"id,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

type Service struct {
	Repo Repo
	Gate *Gate
}

// Unlock checks a candidate password without mutating anything.
func (s *Service) Unlock(password string) error {
	if !s.Gate.Check(password) {
		return ErrUnauthorized
	}
	return nil
}

// Mutate applies a create, update or delete. The password is checked before
// anything else about the request.
func (s *Service) Mutate(ctx context.Context, req MutateRequest) (err error) {
	defer func() {
		metrics.IncResumeMutation(string(req.Action), mutationOutcome(err))
	}()

	if !s.Gate.Check(req.Password) {
		return ErrUnauthorized
	}

	switch req.Action {
	case ActionCreate:
		entry, err := decodeEntry(req.Data)
		if err != nil {
			return err
		}
		created, err := s.Repo.Create(ctx, entry)
		if err != nil {
			return err
		}
		telemetry.Info("resume.item.created", map[string]any{"id": created.ID, "category": created.Category})
		return nil
	case ActionUpdate:
		if err := requireID(req.ID); err != nil {
			return err
		}
		entry, err := decodeEntry(req.Data)
		if err != nil {
			return err
		}
		if _, err := s.Repo.Replace(ctx, req.ID, entry); err != nil {
			return err
		}
		telemetry.Info("resume.item.updated", map[string]any{"id": req.ID, "category": entry.Category})
		return nil
	case ActionDelete:
		if err := requireID(req.ID); err != nil {
			return err
		}
		if err := s.Repo.Delete(ctx, req.ID); err != nil {
			return err
		}
		telemetry.Info("resume.item.deleted", map[string]any{"id": req.ID})
		return nil
	default:
		return ErrUnknownAction
	}
}

// List returns one category in display order.
func (s *Service) List(ctx context.Context, category Category) ([]Entry, error) {
	entries, err := s.Repo.ListByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i] = entries[i].normalized()
	}
	return entries, nil
}

// ListAll loads every category concurrently.
func (s *Service) ListAll(ctx context.Context) (map[Category][]Entry, error) {
	results := make([][]Entry, len(Categories))
	g, gctx := errgroup.WithContext(ctx)
	for i, cat := range Categories {
		g.Go(func() error {
			entries, err := s.List(gctx, cat)
			if err != nil {
				return fmt.Errorf("list %s: %w", cat, err)
			}
			results[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make(map[Category][]Entry, len(Categories))
	for i, cat := range Categories {
		out[cat] = results[i]
	}
	return out, nil
}

func decodeEntry(data json.RawMessage) (Entry, error) {
	if len(data) == 0 || string(data) == "null" {
		return Entry{}, fmt.Errorf("%w: data is required", ErrInvalidInput)
	}
	item, err := DecodeItem(data)
	if err != nil {
		return Entry{}, err
	}
	return item.Entry()
}

func requireID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: id must be a uuid", ErrInvalidInput)
	}
	return nil
}

func mutationOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrUnknownAction), errors.Is(err, ErrInvalidInput):
		return "invalid"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
