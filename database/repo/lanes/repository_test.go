package lanes

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

func seedLane(t *testing.T, db *gorm.DB) *models.MemoryLane {
	t.Helper()
	user := models.User{Name: "Ann", Email: "ann@test.dev"}
	require.NoError(t, db.Create(&user).Error)
	lane := models.MemoryLane{Title: "Ann's Memory Lane", UserID: user.ID}
	require.NoError(t, db.Create(&lane).Error)
	return &lane
}

func TestUpdateDescription(t *testing.T) {
	ctx := context.Background()
	p := dbtest.NewProvider(t)
	repo := NewRepository(p)
	lane := seedLane(t, p.DB())

	desc := "Summer trips"
	updated, err := repo.UpdateDescription(ctx, lane.ID, &desc)
	require.NoError(t, err)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "Summer trips", *updated.Description)
	assert.Equal(t, "Ann's Memory Lane", updated.Title)

	got, err := repo.GetByID(ctx, lane.ID)
	require.NoError(t, err)
	assert.Equal(t, "Summer trips", *got.Description)

	// nil 清空描述
	cleared, err := repo.UpdateDescription(ctx, lane.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, cleared.Description)

	got, err = repo.GetByID(ctx, lane.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Description)
}

func TestUpdateDescription_NotFound(t *testing.T) {
	repo := NewRepository(dbtest.NewProvider(t))

	desc := "x"
	_, err := repo.UpdateDescription(context.Background(), "missing", &desc)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
