package dal

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	DBTypeSQLite   DBType = "sqlite"
	DBTypePostgres DBType = "postgres"
	DBTypeMemory   DBType = "memory"
)

var (
	ErrNotFound = errors.New("not found")
)

type (
	DBType string

	// Store is a synchronous string key-value store scoped to one application installation.
	// Get returns ErrNotFound when the key has never been set.
	Store interface {
		Get(ctx context.Context, key string) (string, error)
		Set(ctx context.Context, key, value string) error
	}

	prefixedStore struct {
		prefix string
		store  Store
	}
)

func ParseDBType(val string) (DBType, error) {
	switch t := DBType(strings.ToLower(strings.TrimSpace(val))); t {
	case DBTypeSQLite, DBTypePostgres, DBTypeMemory:
		return t, nil
	default:
		return "", fmt.Errorf("unsupported db type: %q", val)
	}
}

// WithPrefix returns a Store that transparently prepends prefix to every key.
func WithPrefix(store Store, prefix string) Store {
	return &prefixedStore{prefix: prefix, store: store}
}

// InstallationPrefix is the key scope used for all data of one installation.
func InstallationPrefix(installationID string) string {
	return "installation:" + installationID + ":"
}

func (s *prefixedStore) Get(ctx context.Context, key string) (string, error) {
	return s.store.Get(ctx, s.prefix+key)
}

func (s *prefixedStore) Set(ctx context.Context, key, value string) error {
	return s.store.Set(ctx, s.prefix+key, value)
}
