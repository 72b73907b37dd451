package mongo

import (
	"context"
	"fmt"
	"os"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const (
	// EnvConnectionString names the variable holding the MongoDB URI
	EnvConnectionString = "MONGODB_CONNECTION_STRING"

	// DefaultURI is used when EnvConnectionString is unset or empty
	DefaultURI = "mongodb://localhost:27017/"
)

// ResolveURI returns value, or DefaultURI when value is empty
func ResolveURI(value string) string {
	if value == "" {
		return DefaultURI
	}
	return value
}

// URIFromEnv resolves the connection URI from the process environment
func URIFromEnv() string {
	return ResolveURI(os.Getenv(EnvConnectionString))
}

// NewClient creates a MongoDB client for uri. The driver connects in the
// background, so this does not fail when the server is unreachable; a
// malformed uri is reported as an error.
func NewClient(ctx context.Context, uri string, logger *zap.Logger) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(uri)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create MongoDB client: %w", err)
	}

	if logger != nil {
		logger.Info("MongoDB client created", zap.Strings("hosts", opts.Hosts))
	}

	return client, nil
}

// Provider holds one process-wide MongoDB client. The client is created on
// the first call to Client and shared by every later call.
type Provider struct {
	uri    string
	logger *zap.Logger

	mu     sync.Mutex
	done   bool
	closed bool
	client *mongo.Client
	err    error
}

// NewProvider creates a provider for uri (resolved against DefaultURI)
func NewProvider(uri string, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		uri:    ResolveURI(uri),
		logger: logger,
	}
}

// URI returns the connection URI in use
func (p *Provider) URI() string {
	return p.uri
}

// Client returns the shared client, creating it on first use
func (p *Provider) Client(ctx context.Context) (*mongo.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.done {
		p.client, p.err = NewClient(ctx, p.uri, p.logger)
		p.done = true
	}
	return p.client, p.err
}

// Ping checks that the server answers
func (p *Provider) Ping(ctx context.Context) error {
	client, err := p.Client(ctx)
	if err != nil {
		return err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return nil
}

// Close disconnects the client if one was created. Later calls are no-ops.
func (p *Provider) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client == nil || p.closed {
		return nil
	}
	p.closed = true
	if err := p.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect MongoDB: %w", err)
	}
	return nil
}

var (
	defaultOnce     sync.Once
	defaultProvider *Provider
)

// DefaultProvider returns the process-wide provider, resolving its URI from
// MONGODB_CONNECTION_STRING on first use
func DefaultProvider() *Provider {
	defaultOnce.Do(func() {
		defaultProvider = NewProvider(URIFromEnv(), nil)
	})
	return defaultProvider
}

// GetClient returns the process-wide MongoDB client
func GetClient(ctx context.Context) (*mongo.Client, error) {
	return DefaultProvider().Client(ctx)
}
