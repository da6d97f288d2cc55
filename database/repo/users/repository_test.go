package users

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

func newLane(title string) *models.MemoryLane {
	desc := "A collection of my memories"
	return &models.MemoryLane{Title: title, Description: &desc}
}

// --- 测试 CreateWithMemoryLane ---

func TestCreateWithMemoryLane(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.NewProvider(t))

	user := &models.User{Name: "Ann", Email: "ann@test.dev"}
	require.NoError(t, repo.CreateWithMemoryLane(ctx, user, newLane("Ann's Memory Lane")))

	require.NotNil(t, user.MemoryLane)
	assert.Equal(t, user.ID, user.MemoryLane.UserID)

	got, err := repo.FindByEmail(ctx, "ann@test.dev")
	require.NoError(t, err)
	require.NotNil(t, got.MemoryLane)
	assert.Equal(t, "Ann's Memory Lane", got.MemoryLane.Title)

	byID, err := repo.FindByIDWithLane(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, got.MemoryLane.ID, byID.MemoryLane.ID)
}

func TestCreateWithMemoryLane_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	p := dbtest.NewProvider(t)
	repo := NewRepository(p)

	require.NoError(t, repo.CreateWithMemoryLane(ctx, &models.User{Name: "Ann", Email: "ann@test.dev"}, newLane("a")))

	err := repo.CreateWithMemoryLane(ctx, &models.User{Name: "Other", Email: "ann@test.dev"}, newLane("b"))
	assert.ErrorIs(t, err, ErrEmailTaken)

	var lanes int64
	require.NoError(t, p.DB().Model(&models.MemoryLane{}).Count(&lanes).Error)
	assert.Equal(t, int64(1), lanes)
}

// --- 测试 FindByEmail ---

func TestFindByEmail_NotFound(t *testing.T) {
	repo := NewRepository(dbtest.NewProvider(t))

	_, err := repo.FindByEmail(context.Background(), "nobody@test.dev")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
