package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gehenna/gehenna/internal/names"
	"github.com/gehenna/gehenna/internal/names/repository"
	"github.com/gehenna/gehenna/pkg/metrics"
)

// DefaultMaxResults caps list and search responses when Options leaves it unset.
const DefaultMaxResults = 1000

// Service defines the registry operations used by the handler layer.
type Service interface {
	List(ctx context.Context) ([]string, error)
	Add(ctx context.Context, raw string) (*names.Record, error)
	// Delete returns the canonical name and how many records were removed.
	Delete(ctx context.Context, raw string) (string, int64, error)
	Search(ctx context.Context, query string) ([]string, error)
	Health(ctx context.Context) error
}

type Options struct {
	MaxResults int64
}

// New returns a Service on top of repo.
func New(repo repository.Repository, opts Options) Service {
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	return &registry{repo: repo, maxResults: opts.MaxResults}
}

// NewMemoryService returns a Service backed by the in-memory repository.
func NewMemoryService() Service {
	return New(repository.NewMemoryRepo(), Options{})
}

// NewMongoService returns a Service backed by a MongoDB collection and makes a
// best-effort attempt to create the unique index on name.
// Caller is responsible for creating the collection (and client) and passing it in.
func NewMongoService(ctx context.Context, col *mongo.Collection, timeout time.Duration, opts Options) Service {
	repo := repository.NewMongoRepo(col, timeout)
	repo.EnsureIndexesOrWarn(ctx)
	return New(repo, opts)
}

type registry struct {
	repo       repository.Repository
	maxResults int64
}

func (r *registry) List(ctx context.Context) ([]string, error) {
	out, err := r.repo.List(ctx, r.maxResults)
	record("list", err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *registry) Add(ctx context.Context, raw string) (*names.Record, error) {
	name, err := names.Validate(raw)
	if err != nil {
		record("add", err)
		return nil, err
	}
	rec := &names.Record{Name: name}
	if _, err := r.repo.Insert(ctx, rec); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			err = fmt.Errorf("'%s' %w", name, names.ErrConflict)
		}
		record("add", err)
		return nil, err
	}
	record("add", nil)
	return rec, nil
}

func (r *registry) Delete(ctx context.Context, raw string) (string, int64, error) {
	name, err := names.Validate(raw)
	if err != nil {
		record("delete", err)
		return "", 0, err
	}
	n, err := r.repo.DeleteByName(ctx, name)
	if err == nil && n == 0 {
		err = fmt.Errorf("'%s' %w", name, names.ErrNotFound)
	}
	record("delete", err)
	if err != nil {
		return name, 0, err
	}
	return name, n, nil
}

func (r *registry) Search(ctx context.Context, query string) ([]string, error) {
	pattern, err := names.SearchPattern(query)
	if err != nil {
		record("search", err)
		return nil, err
	}
	out, err := r.repo.Search(ctx, pattern, r.maxResults)
	record("search", err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Health reports nil when one lightweight read succeeds. Store errors and
// panics from the driver both come back as names.ErrStoreUnavailable.
func (r *registry) Health(ctx context.Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("health: %w: %v", names.ErrStoreUnavailable, rec)
		}
		record("health", err)
	}()
	if perr := r.repo.Ping(ctx); perr != nil {
		if errors.Is(perr, names.ErrStoreUnavailable) {
			return perr
		}
		return fmt.Errorf("health: %w: %w", names.ErrStoreUnavailable, perr)
	}
	return nil
}

func record(op string, err error) {
	metrics.NameOperations.WithLabelValues(op, Outcome(err)).Inc()
}

// Outcome names the result of an operation for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, names.ErrValidation):
		return "rejected"
	case errors.Is(err, names.ErrConflict):
		return "conflict"
	case errors.Is(err, names.ErrNotFound):
		return "not_found"
	case errors.Is(err, names.ErrStoreUnavailable):
		return "unavailable"
	}
	return "error"
}
