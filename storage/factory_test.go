package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anoixa/memory-lane/config"
)

func TestNewFactory_Local(t *testing.T) {
	cfg := &config.Config{
		StorageType:      "local",
		StorageLocalPath: t.TempDir(),
	}

	f, err := NewFactory(cfg)
	require.NoError(t, err)

	assert.Equal(t, "local", f.GetDefaultName())
	assert.Equal(t, []string{"local"}, f.ListProviders())
	require.NotNil(t, f.GetDefault())
	assert.Equal(t, "local", f.GetDefault().Name())

	p, err := f.Get("")
	require.NoError(t, err)
	assert.Same(t, f.GetDefault(), p)

	_, err = f.Get("minio")
	assert.EqualError(t, err, "storage provider 'minio' not found")

	for name, herr := range f.Health(context.Background()) {
		assert.NoError(t, herr, name)
	}
}

func TestNewFactory_WebDAVDefault(t *testing.T) {
	srv := newWebDAVServer(t)
	cfg := &config.Config{
		StorageType:           "webdav",
		StorageLocalPath:      t.TempDir(),
		StorageWebDAVURL:      srv.URL,
		StorageWebDAVRootPath: "memory-lane",
	}

	f, err := NewFactory(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"local", "webdav"}, f.ListProviders())
	assert.Equal(t, "webdav", f.GetDefault().Name())
}

func TestNewFactory_Errors(t *testing.T) {
	_, err := NewFactory(&config.Config{StorageType: "local"})
	assert.EqualError(t, err, "no storage providers were successfully initialized")

	_, err = NewFactory(&config.Config{StorageType: "minio", StorageLocalPath: t.TempDir()})
	assert.EqualError(t, err, "default storage type 'minio' is not available")
}

func TestNewFactoryWithProvider(t *testing.T) {
	local, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	f := NewFactoryWithProvider(local)
	assert.Equal(t, "local", f.GetDefaultName())
	assert.Same(t, local, f.GetDefault())
}
