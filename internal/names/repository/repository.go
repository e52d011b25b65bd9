package repository

import (
	"context"
	"errors"

	"github.com/gehenna/gehenna/internal/names"
)

var (
	// ErrDuplicate is returned by Insert when a record with the same name exists.
	ErrDuplicate = errors.New("duplicate name")
)

// Repository is the persistence contract for name records. Implementations
// classify store failures as names.ErrStoreUnavailable or names.ErrStoreOperation.
type Repository interface {
	// Insert stores rec, setting rec.ID and rec.CreatedAt.
	Insert(ctx context.Context, rec *names.Record) (string, error)
	// List returns up to limit names in store-native order.
	List(ctx context.Context, limit int64) ([]string, error)
	// Search returns up to limit names matching pattern case-insensitively.
	Search(ctx context.Context, pattern string, limit int64) ([]string, error)
	// DeleteByName removes every record whose name equals name exactly.
	DeleteByName(ctx context.Context, name string) (int64, error)
	// Ping performs one lightweight read.
	Ping(ctx context.Context) error
}
