package resume

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("resume item not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("invalid password")
	ErrUnknownAction = errors.New("invalid action")
)

// Repo is the record store for resume entries.
type Repo interface {
	// ListByCategory orders experience and education by start date, newest
	// first. Skills keep insertion order.
	ListByCategory(ctx context.Context, category Category) ([]Entry, error)
	Create(ctx context.Context, entry Entry) (Entry, error)
	// Replace overwrites every field of the entry with the given id.
	Replace(ctx context.Context, id string, entry Entry) (Entry, error)
	Delete(ctx context.Context, id string) error
}
