// Package storage persists register state as opaque JSON documents keyed by
// namespace. Every backend offers the same load-on-start / save-on-change
// contract; callers treat failures as non-fatal.
package storage

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrNotFound is returned by Load when nothing is stored under the key.
var ErrNotFound = errors.New("storage: key not found")

// Namespaces persisted by the register.
const (
	KeyProducts     = "products"
	KeyOrderHistory = "order-history"
	KeyUsers        = "users"
	KeySettings     = "settings"
	KeySequences    = "id-sequences"
)

// Keys lists every namespace in load order.
var Keys = []string{KeyProducts, KeyOrderHistory, KeyUsers, KeySettings, KeySequences}

// Store loads and saves JSON documents.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Close() error
}

// Drivers accepted by Open.
const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Options selects and configures a backend.
type Options struct {
	Driver      string
	DataDir     string
	RedisAddr   string
	DatabaseURL string
}

// Open connects the configured backend. The postgres driver also applies
// the schema migrations.
func Open(ctx context.Context, opts Options, log *zap.Logger) (Store, error) {
	switch opts.Driver {
	case "", DriverFile:
		f, err := NewFile(opts.DataDir)
		if err != nil {
			return nil, err
		}
		log.Info("using file store", zap.String("dir", opts.DataDir))
		return f, nil
	case DriverMemory:
		log.Warn("using in-memory store, state is lost on exit")
		return NewMemory(), nil
	case DriverRedis:
		r, err := ConnectRedis(ctx, opts.RedisAddr)
		if err != nil {
			return nil, err
		}
		log.Info("using redis store", zap.String("addr", opts.RedisAddr))
		return r, nil
	case DriverPostgres:
		pool, err := Connect(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info("using postgres store")
		return NewPostgres(pool), nil
	}
	return nil, fmt.Errorf("storage: unknown driver %q", opts.Driver)
}
