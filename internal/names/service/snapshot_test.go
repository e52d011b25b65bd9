package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gehenna/gehenna/internal/names"
)

type fakeObjectStore struct {
	objects   map[string][]byte
	uploadErr error
}

func (f *fakeObjectStore) UploadFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	b, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[key] = b
	return nil
}

func (f *fakeObjectStore) GetPresignedURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	return "https://minio.local/gehenna/" + key + "?sig=x", nil
}

func TestSnapshotExport(t *testing.T) {
	svc := NewMemoryService()
	ctx := context.Background()
	_, err := svc.Add(ctx, "John")
	require.NoError(t, err)
	_, err = svc.Add(ctx, "Jane")
	require.NoError(t, err)

	store := &fakeObjectStore{}
	s := NewSnapshotter(svc, store)
	s.now = func() time.Time { return time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC) }

	snap, err := s.Export(ctx)
	require.NoError(t, err)
	require.Equal(t, "snapshots/names-20261016T120000Z.json", snap.Key)
	require.Equal(t, 2, snap.Count)
	require.Contains(t, snap.URL, snap.Key)

	var doc struct {
		Names []string `json:"names"`
		Count int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(store.objects[snap.Key], &doc))
	require.Equal(t, []string{"John", "Jane"}, doc.Names)
	require.Equal(t, 2, doc.Count)
}

func TestSnapshotUploadFailure(t *testing.T) {
	s := NewSnapshotter(NewMemoryService(), &fakeObjectStore{uploadErr: errors.New("bucket gone")})
	_, err := s.Export(context.Background())
	require.ErrorIs(t, err, names.ErrStoreUnavailable)
}
