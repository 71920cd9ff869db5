// Package mongoconn owns the process's MongoDB client.
//
// A Manager connects lazily on first use. Concurrent callers share one
// in-flight attempt; a successful client is cached until Close, a failed
// attempt is forgotten so the next call starts over.
package mongoconn

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Defaults applied when the corresponding Options field is zero.
const (
	DefaultMaxPoolSize            = 10
	DefaultServerSelectionTimeout = 5 * time.Second
	DefaultSocketTimeout          = 45 * time.Second
	DefaultDatabase               = "folio"
)

// ErrNoURI is returned by Connect when the manager has no connection string.
var ErrNoURI = errors.New("mongoconn: no connection string configured")

// Options configures a Manager.
type Options struct {
	URI                    string
	Database               string
	MaxPoolSize            uint64
	ServerSelectionTimeout time.Duration
	SocketTimeout          time.Duration
}

func (o Options) withDefaults() Options {
	if o.Database == "" {
		o.Database = DefaultDatabase
	}
	if o.MaxPoolSize == 0 {
		o.MaxPoolSize = DefaultMaxPoolSize
	}
	if o.ServerSelectionTimeout <= 0 {
		o.ServerSelectionTimeout = DefaultServerSelectionTimeout
	}
	if o.SocketTimeout <= 0 {
		o.SocketTimeout = DefaultSocketTimeout
	}
	return o
}

// ClientOptions builds the driver options for o, defaults applied.
func (o Options) ClientOptions() *options.ClientOptions {
	o = o.withDefaults()
	return options.Client().
		ApplyURI(o.URI).
		SetMaxPoolSize(o.MaxPoolSize).
		SetServerSelectionTimeout(o.ServerSelectionTimeout).
		SetSocketTimeout(o.SocketTimeout)
}

// DialFunc opens and verifies a client.
type DialFunc func(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error)

// Dial connects and pings the primary, disconnecting again if the ping fails.
func Dial(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// Manager lazily creates and caches one *mongo.Client.
type Manager struct {
	opts Options
	dial DialFunc
	log  *zap.Logger

	group singleflight.Group

	mu     sync.RWMutex
	client *mongo.Client
}

// Option customizes a Manager.
type Option func(*Manager)

// WithDialer replaces the function used to open clients.
func WithDialer(d DialFunc) Option {
	return func(m *Manager) { m.dial = d }
}

// New returns a Manager for opts. It does not connect.
func New(opts Options, logger *zap.Logger, extra ...Option) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{opts: opts.withDefaults(), dial: Dial, log: logger}
	for _, o := range extra {
		o(m)
	}
	return m
}

// DatabaseName is the configured database name.
func (m *Manager) DatabaseName() string { return m.opts.Database }

func (m *Manager) cached() *mongo.Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client
}

// Connect returns the cached client, connecting first if needed. The shared
// attempt is not tied to any single caller's cancellation; each caller
// stops waiting when its own ctx is done.
func (m *Manager) Connect(ctx context.Context) (*mongo.Client, error) {
	if c := m.cached(); c != nil {
		return c, nil
	}
	if m.opts.URI == "" {
		return nil, ErrNoURI
	}

	ch := m.group.DoChan("connect", func() (any, error) {
		if c := m.cached(); c != nil {
			return c, nil
		}

		// Dial has its own server-selection bound; this caps the whole attempt.
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*m.opts.ServerSelectionTimeout)
		defer cancel()

		start := time.Now()
		c, err := m.dial(dctx, m.opts.ClientOptions())
		if err != nil {
			m.log.Warn("mongo connect failed",
				zap.String("database", m.opts.Database),
				zap.Duration("took", time.Since(start)),
				zap.Error(err))
			return nil, err
		}

		m.mu.Lock()
		m.client = c
		m.mu.Unlock()
		m.log.Info("mongo connected",
			zap.String("database", m.opts.Database),
			zap.Uint64("max_pool_size", m.opts.MaxPoolSize),
			zap.Duration("took", time.Since(start)))
		return c, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*mongo.Client), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Database connects if needed and returns the configured database.
func (m *Manager) Database(ctx context.Context) (*mongo.Database, error) {
	c, err := m.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return c.Database(m.opts.Database), nil
}

// Close disconnects the cached client, if any. A later Connect dials again.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	c := m.client
	m.client = nil
	m.mu.Unlock()

	if c == nil {
		return nil
	}
	if err := c.Disconnect(ctx); err != nil {
		m.log.Warn("mongo disconnect failed", zap.Error(err))
		return err
	}
	m.log.Info("mongo disconnected")
	return nil
}
