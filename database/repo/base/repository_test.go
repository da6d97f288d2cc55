package base

import (
	"context"
	"errors"
	"testing"

	"github.com/anoixa/memory-lane/database/dbtest"
	"github.com/anoixa/memory-lane/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository[models.User](dbtest.NewProvider(t))

	user := &models.User{Name: "Ann", Email: "ann@test.dev"}
	require.NoError(t, repo.Create(ctx, user))
	require.NotEmpty(t, user.ID)

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ann@test.dev", got.Email)

	byEmail, err := repo.FirstByCondition(ctx, "email = ?", "ann@test.dev")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	ok, err := repo.Exists(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	n, err := repo.Delete(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.GetByID(ctx, user.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	n, err = repo.Delete(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}
