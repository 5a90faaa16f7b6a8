package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Client wraps the MongoDB client and database
type Client struct {
	*mongo.Client
	Database *mongo.Database
	logger   *zap.Logger
}

// Config selects the MongoDB deployment and database
type Config struct {
	URI      string
	Database string
}

// NewClient creates a new MongoDB client connection
func NewClient(ctx context.Context, config Config, logger *zap.Logger) (*Client, error) {
	uri := config.URI
	if uri == "" {
		uri = "mongodb://localhost:27017"
		logger.Info("Using default MongoDB URI", zap.String("uri", uri))
	}

	dbName := config.Database
	if dbName == "" {
		dbName = "voicebridge"
		logger.Info("Using default MongoDB database", zap.String("database", dbName))
	}

	// Set client options
	clientOptions := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(10).
		SetMinPoolSize(1).
		SetMaxConnIdleTime(30 * time.Minute).
		SetServerSelectionTimeout(5 * time.Second).
		SetConnectTimeout(10 * time.Second)

	// Create context for connection
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// Connect to MongoDB
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info("Successfully connected to MongoDB", zap.String("database", dbName))

	return &Client{
		Client:   client,
		Database: client.Database(dbName),
		logger:   logger,
	}, nil
}

// EnsureIndexes creates the indexes the repositories query by
func (c *Client) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		interactionsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
		lessonsCollection: {
			{Keys: bson.D{{Key: "language", Value: 1}, {Key: "category", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}
	for collection, models := range indexes {
		if _, err := c.Database.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", collection, err)
		}
	}
	return nil
}

// Close closes the MongoDB connection
func (c *Client) Close(ctx context.Context) error {
	if err := c.Client.Disconnect(ctx); err != nil {
		c.logger.Error("Failed to disconnect from MongoDB", zap.Error(err))
		return err
	}
	c.logger.Info("Disconnected from MongoDB")
	return nil
}
