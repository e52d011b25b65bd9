package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gehenna/gehenna/internal/config"
	"github.com/gehenna/gehenna/internal/names/service"
)

var _ service.ObjectStore = (*MinIOStorage)(nil)

func TestNewMinIOStorage_RequiresEndpointAndBucket(t *testing.T) {
	_, err := NewMinIOStorage(context.Background(), config.MinIOConfig{})
	require.Error(t, err)

	_, err = NewMinIOStorage(context.Background(), config.MinIOConfig{Endpoint: "localhost:9000"})
	require.Error(t, err)
}

func TestNewMinIOStorage_UnreachableEndpoint(t *testing.T) {
	_, err := NewMinIOStorage(context.Background(), config.MinIOConfig{
		Endpoint: "127.0.0.1:1",
		Bucket:   "gehenna",
	})
	require.Error(t, err)
}
