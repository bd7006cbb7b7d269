package users

import (
	"context"
	"errors"
	"strings"
)

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// UpsertFromAuth records a Google login and returns the stored user.
func (s *Service) UpsertFromAuth(ctx context.Context, user User) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	user.GoogleSub = strings.TrimSpace(user.GoogleSub)
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.GoogleSub == "" || user.Email == "" {
		return User{}, errors.New("google subject and email are required")
	}
	return s.Repo.UpsertByGoogleSub(ctx, user)
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, errors.New("user id is required")
	}
	return s.Repo.GetByID(ctx, userID)
}
