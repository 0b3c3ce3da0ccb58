package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 10 * time.Second

// Config selects the MongoDB deployment and database used by the server.
type Config struct {
	URI      string
	Database string
}

// Conn bundles the client with the selected database so callers can both
// run queries and disconnect cleanly on shutdown.
type Conn struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// Connect establishes the client, verifies connectivity with a ping and
// selects the configured database.
func Connect(ctx context.Context, cfg Config) (*Conn, error) {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx,
		options.Client().ApplyURI(cfg.URI).SetAppName("taskboard"))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return &Conn{Client: client, DB: client.Database(cfg.Database)}, nil
}

// Close disconnects the client, bounded by its own timeout so shutdown
// cannot hang on a dead deployment.
func (c *Conn) Close(ctx context.Context) error {
	closeCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	return c.Client.Disconnect(closeCtx)
}
