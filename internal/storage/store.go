// Package storage provides the persistent key-value store that holds the
// serialized session between process restarts.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Namespaced keys used by the session core.
const (
	KeyUser           = "@lacos:user"
	KeyToken          = "@lacos:token"
	KeyCurrentProfile = "@lacos:current_profile"
	KeyPatientSession = "@lacos_patient_session"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("storage: store is closed")

// Store is a string key-value store. Get reports a missing key with ok=false
// and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Driver        string
	Path          string
	EncryptionKey string
}

// Open builds the backend named by opts.Driver. When an encryption key is
// configured the credential key is encrypted at rest.
func Open(opts Options) (Store, error) {
	var (
		st  Store
		err error
	)
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", "file", "yaml":
		st, err = NewFileStore(opts.Path)
	case "sqlite":
		st, err = OpenSQLite(opts.Path)
	case "memory":
		st = NewMemoryStore()
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", opts.Driver)
	}
	if err != nil {
		return nil, err
	}

	if opts.EncryptionKey == "" {
		return st, nil
	}
	enc, err := NewEncrypted(st, opts.EncryptionKey, KeyToken)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return enc, nil
}

// RemoveAll removes every key, returning the first failure after trying all.
func RemoveAll(ctx context.Context, st Store, keys ...string) error {
	var first error
	for _, key := range keys {
		if err := st.Remove(ctx, key); err != nil && first == nil {
			first = fmt.Errorf("remove %s: %w", key, err)
		}
	}
	return first
}
