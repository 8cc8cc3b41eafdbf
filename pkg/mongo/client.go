package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/fieldserve/fieldkit/pkg/config"
)

// NewFromEnv loads Config from the environment and connects.
func NewFromEnv(ctx context.Context) (*mongo.Client, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	return New(ctx, cfg)
}

// New creates a connected mongo client, retrying per the config before
// giving up.
func New(ctx context.Context, cfg Config) (*mongo.Client, error) {
	for range cfg.RetryAttempts {
		client, err := mongo.Connect(
			options.Client().
				ApplyURI(cfg.ConnectionURL).
				SetConnectTimeout(cfg.ConnectTimeout).
				SetMaxPoolSize(cfg.MaxPoolSize).
				SetMinPoolSize(cfg.MinPoolSize).
				SetMaxConnIdleTime(cfg.MaxConnIdleTime).
				SetRetryWrites(cfg.RetryWrites).
				SetRetryReads(cfg.RetryReads),
		)
		if err == nil {
			if err := client.Ping(ctx, nil); err == nil {
				return client, nil
			}
		}

		time.Sleep(cfg.RetryInterval)
	}

	return nil, ErrFailedToConnectToMongo
}

// NewWithDatabase connects and returns a handle on the named database,
// the usual entry point for notifications.NewMongoStore.
func NewWithDatabase(ctx context.Context, cfg Config, database string) (*mongo.Database, error) {
	client, err := New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return client.Database(database), nil
}
