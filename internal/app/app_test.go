package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anoixa/memory-lane/config"
	"github.com/anoixa/memory-lane/database"
	"github.com/anoixa/memory-lane/database/dbtest"
	svcUsers "github.com/anoixa/memory-lane/internal/users"
)

func TestContainer_InitServices(t *testing.T) {
	cfg := &config.Config{
		StorageType:      "local",
		StorageLocalPath: t.TempDir(),
	}
	c := NewContainer(cfg)

	assert.Error(t, c.InitServices())

	c.UseDatabase(database.NewFactoryWithProvider(dbtest.NewProvider(t)))
	require.NoError(t, c.InitServices())

	assert.NotNil(t, c.Users)
	assert.NotNil(t, c.Lanes)
	assert.NotNil(t, c.Events)
	assert.NotNil(t, c.Uploads)
	assert.Equal(t, "local", c.GetStorageFactory().GetDefaultName())
	require.NotNil(t, c.GetJWTService())

	res, err := c.Users.Signup(context.Background(), svcUsers.SignupInput{Name: "Ann", Email: "ann@test.dev"})
	require.NoError(t, err)

	session, err := c.GetJWTService().ParseSession(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, session.UserID)

	lane, err := c.Lanes.GetMemoryLane(context.Background(), session.MemoryLaneID)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, lane.UserID)
}

func TestContainer_InitServicesBadStorage(t *testing.T) {
	c := NewContainer(&config.Config{StorageType: "minio", StorageLocalPath: t.TempDir()})
	c.UseDatabase(database.NewFactoryWithProvider(dbtest.NewProvider(t)))

	err := c.InitServices()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default storage type 'minio' is not available")
}
