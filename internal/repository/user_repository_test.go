package repository

import (
	"context"
	"testing"

	"land-steward-backend/internal/model"
	apperrors "land-steward-backend/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testDB)

	t.Run("Success", func(t *testing.T) {
		setupTestWithTruncate(t)

		user, err := repo.Create(ctx, &model.User{
			Name:         "Alex Rivers",
			Email:        "alex@example.org",
			PasswordHash: []byte("hash"),
		})

		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.Equal(t, "alex@example.org", user.Email)
	})

	t.Run("Failed - duplicate email", func(t *testing.T) {
		setupTestWithTruncate(t)
		createTestUser(t, "dup@example.org")

		_, err := repo.Create(ctx, &model.User{
			Name:         "Other",
			Email:        "dup@example.org",
			PasswordHash: []byte("hash"),
		})

		assert.ErrorIs(t, err, apperrors.ErrUserExists)
	})
}

func TestUserRepository_FindByEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testDB)

	t.Run("Success", func(t *testing.T) {
		setupTestWithTruncate(t)
		created := createTestUser(t, "find@example.org")

		found, err := repo.FindByEmail(ctx, "find@example.org")

		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
	})

	t.Run("NotFound", func(t *testing.T) {
		setupTestWithTruncate(t)

		_, err := repo.FindByEmail(ctx, "ghost@example.org")
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}

func TestUserRepository_UpdateAvatar(t *testing.T) {
	setupTestWithTruncate(t)

	ctx := context.Background()
	repo := NewUserRepository(testDB)
	user := createTestUser(t, "avatar@example.org")

	require.NoError(t, repo.UpdateAvatar(ctx, user.ID, "avatars/abc.png"))

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, found.AvatarPath)
	assert.Equal(t, "avatars/abc.png", *found.AvatarPath)
}
