package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sduenas/perceval-mozilla/pkg/backend"
)

const mongoConnectTimeout = 10 * time.Second

// Mongo archives items into a MongoDB collection, one document per item.
type Mongo struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// MongoConfig configures a MongoDB archive.
type MongoConfig struct {
	URI        string // connection string (mongodb://...)
	Database   string // defaults to "perceval"
	Collection string // defaults to "items"
}

// NewMongo connects to MongoDB and verifies the connection with a ping.
func NewMongo(ctx context.Context, cfg MongoConfig) (*Mongo, error) {
	if cfg.Database == "" {
		cfg.Database = "perceval"
	}
	if cfg.Collection == "" {
		cfg.Collection = "items"
	}

	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &Mongo{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

func (m *Mongo) Store(ctx context.Context, env backend.Envelope) error {
	doc := bson.M{
		"uuid":            env.UUID,
		"origin":          env.Origin,
		"backend_name":    env.BackendName,
		"backend_version": env.BackendVersion,
		"timestamp":       env.Timestamp,
		"category":        string(env.Category),
		"tag":             env.Tag,
		"updated_on":      env.UpdatedOn,
		"data":            env.Data,
	}
	if _, err := m.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert item %s: %w", env.UUID, err)
	}
	return nil
}

func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
	defer cancel()
	return m.client.Disconnect(ctx)
}

var _ Sink = (*Mongo)(nil)
