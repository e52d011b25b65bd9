package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gehenna/gehenna/internal/names"
)

// SnapshotURLTTL is how long a snapshot download link stays valid.
const SnapshotURLTTL = 15 * time.Minute

// ObjectStore is the subset of object storage the snapshot exporter needs.
// *storage.MinIOStorage satisfies it.
type ObjectStore interface {
	UploadFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	GetPresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// Snapshot describes an exported copy of the registry.
type Snapshot struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
	URL   string `json:"url"`
}

type snapshotDoc struct {
	Names     []string  `json:"names"`
	Count     int       `json:"count"`
	CreatedAt time.Time `json:"createdAt"`
}

// Snapshotter writes the current name list to object storage as JSON.
type Snapshotter struct {
	svc   Service
	store ObjectStore
	now   func() time.Time
}

func NewSnapshotter(svc Service, store ObjectStore) *Snapshotter {
	return &Snapshotter{svc: svc, store: store, now: time.Now}
}

// Export lists the registry, uploads it and returns a presigned download URL.
func (s *Snapshotter) Export(ctx context.Context) (*Snapshot, error) {
	list, err := s.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	ts := s.now().UTC()
	b, err := json.Marshal(snapshotDoc{Names: list, Count: len(list), CreatedAt: ts})
	if err != nil {
		return nil, fmt.Errorf("snapshot encode: %w", err)
	}
	key := fmt.Sprintf("snapshots/names-%s.json", ts.Format("20060102T150405Z"))
	if err := s.store.UploadFile(ctx, key, bytes.NewReader(b), int64(len(b)), "application/json"); err != nil {
		return nil, fmt.Errorf("snapshot upload: %w: %w", names.ErrStoreUnavailable, err)
	}
	url, err := s.store.GetPresignedURL(ctx, key, SnapshotURLTTL)
	if err != nil {
		return nil, fmt.Errorf("snapshot presign: %w: %w", names.ErrStoreUnavailable, err)
	}
	return &Snapshot{Key: key, Count: len(list), URL: url}, nil
}
