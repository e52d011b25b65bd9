package database

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gehenna/gehenna/pkg/logger"
)

// ConnectMongo builds a client for uri. Connect/server-selection are bounded by
// timeout so an unreachable store surfaces as an error within that window.
// Caller should call client.Disconnect(ctx).
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	return client, nil
}

// Ping checks connectivity once, bounded by timeout.
func Ping(ctx context.Context, client *mongo.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongo ping: %w", err)
	}
	return nil
}

// WaitForMongo pings with exponential backoff until the store answers or
// maxAttempts is reached. The client stays usable either way: the driver
// reconnects on demand once the store comes back.
func WaitForMongo(ctx context.Context, client *mongo.Client, timeout time.Duration, maxAttempts uint64) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = time.Second
	exp.Multiplier = 2
	exp.MaxInterval = 10 * time.Second

	attempt := 0
	op := func() error {
		attempt++
		err := Ping(ctx, client, timeout)
		if err != nil {
			logger.Warnf("attempt %d/%d: mongo not reachable: %v", attempt, maxAttempts, err)
		}
		return err
	}
	var b backoff.BackOff = exp
	if maxAttempts > 0 {
		b = backoff.WithMaxRetries(exp, maxAttempts-1)
	}
	return backoff.Retry(op, backoff.WithContext(b, ctx))
}
