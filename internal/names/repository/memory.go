package repository

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/gehenna/gehenna/internal/names"
)

// MemoryRepo is an in-memory repository used for unit tests and for running the
// registry without a database. Insertion order is preserved.
type MemoryRepo struct {
	mu      sync.RWMutex
	records []*names.Record
	seq     int
	down    bool
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

// SetUnavailable makes every operation fail with names.ErrStoreUnavailable
// until it is called again with false.
func (m *MemoryRepo) SetUnavailable(down bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.down = down
}

func (m *MemoryRepo) unavailable() error {
	if m.down {
		return fmt.Errorf("memory repo: %w", names.ErrStoreUnavailable)
	}
	return nil
}

func (m *MemoryRepo) Insert(ctx context.Context, rec *names.Record) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.unavailable(); err != nil {
		return "", err
	}
	for _, r := range m.records {
		if r.Name == rec.Name {
			return "", ErrDuplicate
		}
	}
	m.seq++
	rec.ID = fmt.Sprintf("name_%d_%d", time.Now().UnixNano(), m.seq)
	rec.CreatedAt = time.Now().UTC()
	cp := *rec
	m.records = append(m.records, &cp)
	return rec.ID, nil
}

func (m *MemoryRepo) List(ctx context.Context, limit int64) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.unavailable(); err != nil {
		return nil, err
	}
	out := []string{}
	for _, r := range m.records {
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
		out = append(out, r.Name)
	}
	return out, nil
}

func (m *MemoryRepo) Search(ctx context.Context, pattern string, limit int64) ([]string, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("memory repo: %w: %v", names.ErrStoreOperation, err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.unavailable(); err != nil {
		return nil, err
	}
	out := []string{}
	for _, r := range m.records {
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
		if re.MatchString(r.Name) {
			out = append(out, r.Name)
		}
	}
	return out, nil
}

func (m *MemoryRepo) DeleteByName(ctx context.Context, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.unavailable(); err != nil {
		return 0, err
	}
	kept := m.records[:0]
	var n int64
	for _, r := range m.records {
		if r.Name == name {
			n++
			continue
		}
		kept = append(kept, r)
	}
	clear(m.records[len(kept):])
	m.records = kept
	return n, nil
}

func (m *MemoryRepo) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.unavailable()
}
