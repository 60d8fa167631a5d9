package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelmateAPI/internal/storage"
	"travelmateAPI/internal/user"
)

func newUserService(t *testing.T) (*UserService, *AchievementService) {
	t.Helper()
	store := storage.NewMemoryStore()
	achievements := NewAchievementService(store)
	return NewUserService(NewPersistenceService(store), achievements), achievements
}

func TestGetUserCreatesDefaultProfile(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	u := svc.GetUser(ctx)
	require.NotNil(t, u)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "Travel Enthusiast", u.Name)
	assert.False(t, u.IsSubscriber)

	// Second read returns the same profile, not a new one
	again := svc.GetUser(ctx)
	assert.Equal(t, u.ID, again.ID)
}

func TestUpdateUser(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	_, err := svc.UpdateUser(ctx, &user.UpdateUserRequest{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	updated, err := svc.UpdateUser(ctx, &user.UpdateUserRequest{Name: "Alex"})
	require.NoError(t, err)
	assert.Equal(t, "Alex", updated.Name)
	assert.Equal(t, "user@example.com", updated.Email, "unspecified fields keep their values")
}

func TestMarkSubscriberGrantsAchievement(t *testing.T) {
	svc, achievements := newUserService(t)
	ctx := context.Background()

	u := svc.MarkSubscriber(ctx, true)
	assert.True(t, u.IsSubscriber)
	assert.True(t, findAchievement(t, achievements.GetAchievements(ctx), "subscriber").Unlocked)

	// Losing the subscription keeps the achievement
	u = svc.MarkSubscriber(ctx, false)
	assert.False(t, u.IsSubscriber)
	assert.True(t, findAchievement(t, achievements.GetAchievements(ctx), "subscriber").Unlocked)
}
