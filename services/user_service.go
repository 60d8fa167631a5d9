package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"travelmateAPI/internal/user"
)

// UserService manages the single local profile record.
type UserService struct {
	persistence  *PersistenceService
	achievements *AchievementService
}

func NewUserService(p *PersistenceService, a *AchievementService) *UserService {
	return &UserService{persistence: p, achievements: a}
}

// GetUser returns the stored profile, creating a default one on first
// access.
func (s *UserService) GetUser(ctx context.Context) *user.User {
	if u := s.persistence.LoadUser(ctx); u != nil {
		return u
	}
	u := &user.User{
		ID:    uuid.New().String(),
		Name:  "Travel Enthusiast",
		Email: "user@example.com",
	}
	s.persistence.SaveUser(ctx, u)
	return u
}

func (s *UserService) UpdateUser(ctx context.Context, req *user.UpdateUserRequest) (*user.User, error) {
	if req.Name == "" && req.Email == "" {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	u := s.GetUser(ctx)
	if req.Name != "" {
		u.Name = req.Name
	}
	if req.Email != "" {
		u.Email = req.Email
	}
	s.persistence.SaveUser(ctx, u)
	return u, nil
}

// MarkSubscriber flips the profile to subscriber status and grants the
// corresponding achievement.
func (s *UserService) MarkSubscriber(ctx context.Context, subscribed bool) *user.User {
	u := s.GetUser(ctx)
	u.IsSubscriber = subscribed
	s.persistence.SaveUser(ctx, u)
	if subscribed {
		s.achievements.UnlockSpecial(ctx, "subscriber")
	}
	return u
}
