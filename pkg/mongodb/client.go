package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/mhs-fashion/storefront-backend/pkg/config"
	"github.com/mhs-fashion/storefront-backend/pkg/logger"
)

const (
	CollectionItems   = "items"
	CollectionRatings = "ratings"
	CollectionUsers   = "users"
	CollectionCarts   = "carts"
)

// Client wraps the Mongo connection and the storefront database handle.
type Client struct {
	raw *mongo.Client
	db  *mongo.Database
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(context.Context) error
}

// New bootstraps a Mongo client pinned to Stable API v1 and verifies connectivity.
func New(ctx context.Context, cfg config.MongoConfig, logg *logger.Logger) (*Client, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongo uri is required")
	}

	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerAPIOptions(serverAPI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ServerSelectionTimeout).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize)

	raw, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := raw.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &Client{raw: raw, db: raw.Database(cfg.Database)}, nil
}

// Database returns the storefront database handle.
func (c *Client) Database() *mongo.Database {
	if c == nil {
		return nil
	}
	return c.db
}

// Items returns the catalog collection.
func (c *Client) Items() *mongo.Collection {
	return c.db.Collection(CollectionItems)
}

// Ratings returns the ratings collection.
func (c *Client) Ratings() *mongo.Collection {
	return c.db.Collection(CollectionRatings)
}

// Users returns the registration collection.
func (c *Client) Users() *mongo.Collection {
	return c.db.Collection(CollectionUsers)
}

// Carts returns the cart document collection.
func (c *Client) Carts() *mongo.Collection {
	return c.db.Collection(CollectionCarts)
}

// Ping verifies the connection.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.raw == nil {
		return errors.New("mongo client not initialized")
	}
	return c.raw.Ping(ctx, readpref.Primary())
}

// Close disconnects the underlying client if available.
func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.raw == nil {
		return nil
	}
	return c.raw.Disconnect(ctx)
}
