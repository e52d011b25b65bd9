package repository

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gehenna/gehenna/internal/names"
	"github.com/gehenna/gehenna/pkg/logger"
)

// DefaultIndexRetryInterval spaces out attempts to build the unique index
// while the store is unreachable.
const DefaultIndexRetryInterval = 10 * time.Second

// MongoRepo implements Repository on a MongoDB collection. Each operation is
// bounded by timeout.
type MongoRepo struct {
	col     *mongo.Collection
	timeout time.Duration
	// unique is set once the unique index on "name" is known to exist; until
	// then Insert checks for an existing record first.
	unique atomic.Bool
	// indexRejected is set when the store refused the index (e.g. duplicates
	// already stored). The check-then-insert fallback is then permanent.
	indexRejected atomic.Bool
	// lastIndexTry is the UnixNano of the last index attempt made by Insert.
	lastIndexTry  atomic.Int64
	indexRetryGap time.Duration
}

func NewMongoRepo(col *mongo.Collection, timeout time.Duration) *MongoRepo {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &MongoRepo{col: col, timeout: timeout, indexRetryGap: DefaultIndexRetryInterval}
}

// EnsureIndexes creates the unique index on "name". When the store is
// unreachable the error is returned and Insert tries again later. Any other
// failure (e.g. duplicates already stored) leaves Insert on its
// check-then-insert fallback for good.
func (m *MongoRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("name_unique"),
	}
	if _, err := m.col.Indexes().CreateOne(ctx, idx); err != nil {
		err = classify("ensure indexes", err)
		if !errors.Is(err, names.ErrStoreUnavailable) {
			m.indexRejected.Store(true)
		}
		return err
	}
	m.unique.Store(true)
	return nil
}

// retryIndex makes at most one index attempt per indexRetryGap across all
// callers.
func (m *MongoRepo) retryIndex(ctx context.Context) {
	if m.unique.Load() || m.indexRejected.Load() {
		return
	}
	now := time.Now().UnixNano()
	last := m.lastIndexTry.Load()
	if last != 0 && now-last < int64(m.indexRetryGap) {
		return
	}
	if !m.lastIndexTry.CompareAndSwap(last, now) {
		return
	}
	if err := m.EnsureIndexes(ctx); err != nil {
		logger.Warnf("unique index on %s.name still missing: %v", m.col.Name(), err)
		return
	}
	logger.Infof("unique index on %s.name ensured", m.col.Name())
}

func (m *MongoRepo) Insert(ctx context.Context, rec *names.Record) (string, error) {
	m.retryIndex(ctx)

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if !m.unique.Load() {
		n, err := m.col.CountDocuments(ctx, bson.M{"name": rec.Name}, options.Count().SetLimit(1))
		if err != nil {
			return "", classify("insert precheck", err)
		}
		if n > 0 {
			return "", ErrDuplicate
		}
	}

	rec.ID = ""
	rec.CreatedAt = time.Now().UTC()
	res, err := m.col.InsertOne(ctx, rec)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrDuplicate
		}
		return "", classify("insert", err)
	}
	switch id := res.InsertedID.(type) {
	case primitive.ObjectID:
		rec.ID = id.Hex()
	default:
		rec.ID = fmt.Sprint(id)
	}
	return rec.ID, nil
}

type nameOnly struct {
	Name string `bson:"name"`
}

func (m *MongoRepo) find(ctx context.Context, op string, filter interface{}, limit int64) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	opts := options.Find().SetProjection(bson.D{{Key: "_id", Value: 0}, {Key: "name", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, classify(op, err)
	}
	defer cur.Close(ctx)
	out := []string{}
	for cur.Next(ctx) {
		var d nameOnly
		if err := cur.Decode(&d); err != nil {
			return nil, classify(op, err)
		}
		out = append(out, d.Name)
	}
	if err := cur.Err(); err != nil {
		return nil, classify(op, err)
	}
	return out, nil
}

func (m *MongoRepo) List(ctx context.Context, limit int64) ([]string, error) {
	return m.find(ctx, "list", bson.D{}, limit)
}

func (m *MongoRepo) Search(ctx context.Context, pattern string, limit int64) ([]string, error) {
	filter := bson.M{"name": primitive.Regex{Pattern: pattern, Options: "i"}}
	return m.find(ctx, "search", filter, limit)
}

func (m *MongoRepo) DeleteByName(ctx context.Context, name string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	res, err := m.col.DeleteMany(ctx, bson.M{"name": name})
	if err != nil {
		return 0, classify("delete", err)
	}
	return res.DeletedCount, nil
}

func (m *MongoRepo) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	opts := options.FindOne().SetProjection(bson.D{{Key: "_id", Value: 1}})
	err := m.col.FindOne(ctx, bson.D{}, opts).Err()
	if err == nil || errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	return classify("ping", err)
}

// classify wraps a driver error with the matching store error kind.
func classify(op string, err error) error {
	if IsUnavailable(err) {
		return fmt.Errorf("mongo %s: %w: %w", op, names.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("mongo %s: %w: %w", op, names.ErrStoreOperation, err)
}

// IsUnavailable reports whether err means the store could not be reached in time.
func IsUnavailable(err error) bool {
	return mongo.IsNetworkError(err) ||
		mongo.IsTimeout(err) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, mongo.ErrClientDisconnected)
}

// EnsureIndexesOrWarn is the startup helper: it logs instead of failing so the
// registry can come up before the store does.
func (m *MongoRepo) EnsureIndexesOrWarn(ctx context.Context) {
	if err := m.EnsureIndexes(ctx); err != nil {
		logger.Warnf("unique index on %s.name not ensured, falling back to check-then-insert: %v", m.col.Name(), err)
		return
	}
	logger.Infof("unique index on %s.name ensured", m.col.Name())
}
