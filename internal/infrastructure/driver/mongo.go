package driver

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoDB wraps a mongo database handle together with its client
type MongoDB struct {
	client *mongo.Client
	db     *mongo.Database
}

func getMongoURI(cfg *DBConfig) string {
	auth := ""
	if cfg.User != "" {
		auth = fmt.Sprintf("%s:%s@", cfg.User, cfg.Password)
	}
	uri := fmt.Sprintf("mongodb://%s%s:%d", auth, cfg.Host, cfg.Port)
	if cfg.Query != "" {
		uri += "/?" + cfg.Query
	}
	return uri
}

// NewMongoDatabase connects to the server described by cfg and selects cfg.Schema
func NewMongoDatabase(ctx context.Context, cfg *DBConfig) (*MongoDB, error) {
	opts := options.Client().
		ApplyURI(getMongoURI(cfg)).
		SetMaxPoolSize(uint64(cfg.MaxConn))
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect mongo: %w", err)
	}
	return &MongoDB{client: client, db: client.Database(cfg.Schema)}, nil
}

// Collection returns a handle to the named collection
func (m *MongoDB) Collection(name string) *mongo.Collection {
	return m.db.Collection(name)
}

// Ping implement Pinger
func (m *MongoDB) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *MongoDB) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// TranslateMongoError maps duplicate key write errors to ErrDuplicateKey
func TranslateMongoError(err error) error {
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, err.Error())
	}
	return err
}
