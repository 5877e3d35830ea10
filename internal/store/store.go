package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names for the persisted layout.
const (
	CollectionProducts        = "products"
	CollectionAnalyticsEvents = "analytics_records"
	CollectionUserPreferences = "user_preferences"
)

// ErrMissingURI indicates the store URI is not provided.
var ErrMissingURI = errors.New("store URI is required")

// Options configures the MongoDB connection.
type Options struct {
	URI         string
	Database    string
	Username    string
	Password    string
	MaxPoolSize int
}

// Store wraps the MongoDB client and database handles used by the
// repositories.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect establishes a MongoDB connection, verifies it, and ensures the
// indexes backing the upsert keys exist.
func Connect(ctx context.Context, opts Options) (*Store, error) {
	if opts.URI == "" {
		return nil, ErrMissingURI
	}
	if opts.Database == "" {
		opts.Database = "finadvisor"
	}

	clientOpts := options.Client().ApplyURI(opts.URI)
	if opts.Username != "" {
		clientOpts.SetAuth(options.Credential{Username: opts.Username, Password: opts.Password})
	}
	if opts.MaxPoolSize > 0 {
		clientOpts.SetMaxPoolSize(uint64(opts.MaxPoolSize))
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect store: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("verify store connectivity: %w", err)
	}

	s := &Store{client: client, db: client.Database(opts.Database)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// Products returns the catalog collection.
func (s *Store) Products() *mongo.Collection {
	return s.db.Collection(CollectionProducts)
}

// AnalyticsRecords returns the append-only event collection.
func (s *Store) AnalyticsRecords() *mongo.Collection {
	return s.db.Collection(CollectionAnalyticsEvents)
}

// UserPreferences returns the preference profile collection.
func (s *Store) UserPreferences() *mongo.Collection {
	return s.db.Collection(CollectionUserPreferences)
}

// Ping verifies connectivity for health probes.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// ensureIndexes creates the unique keys the upsert semantics depend on:
// products on (name, provider, type) and preferences on userId.
func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.Products().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "name", Value: 1},
			{Key: "provider", Value: 1},
			{Key: "type", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("uniq_name_provider_type"),
	})
	if err != nil {
		return fmt.Errorf("ensure product index: %w", err)
	}

	_, err = s.UserPreferences().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_user_id"),
	})
	if err != nil {
		return fmt.Errorf("ensure preference index: %w", err)
	}

	_, err = s.AnalyticsRecords().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "action", Value: 1},
			{Key: "productType", Value: 1},
			{Key: "timestamp", Value: -1},
		},
		Options: options.Index().SetName("idx_action_type_ts"),
	})
	if err != nil {
		return fmt.Errorf("ensure analytics index: %w", err)
	}
	return nil
}
