package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/sweet_shop/internal/models"
	"github.com/Skotchmaster/sweet_shop/internal/repo"
	"github.com/Skotchmaster/sweet_shop/internal/testutil"
)

func TestCreateUserIfNotExists(t *testing.T) {
	r := &repo.GormRepo{DB: testutil.NewDB(t)}
	ctx := context.Background()

	u := &models.User{Email: "a@example.com", FullName: "Ann", PasswordHash: "x", IsActive: true}
	require.NoError(t, r.CreateUserIfNotExists(ctx, u))
	assert.NotZero(t, u.ID)

	again := &models.User{Email: "a@example.com", FullName: "Other", PasswordHash: "y", IsActive: true}
	assert.ErrorIs(t, r.CreateUserIfNotExists(ctx, again), repo.ErrUserAlreadyExist)

	byEmail, err := r.UserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ann", byEmail.FullName)

	byID, err := r.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, byID.Email)

	_, err = r.UserByEmail(ctx, "missing@example.com")
	assert.True(t, repo.IsNotFound(err))
}
