package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"atomd/internal/domain"
)

const secretsBucket = "secrets"

var ErrVaultClosed = errors.New("secret vault is closed")

// BoltVault stores secrets in a local bbolt file. Reads run inside View
// transactions, so a Fetch never blocks other readers and the pipeline
// never holds the vault open across an upstream call.
type BoltVault struct {
	mu     sync.RWMutex
	db     *bolt.DB
	path   string
	closed bool
	logger *zap.Logger
}

func OpenBoltVault(path string, logger *zap.Logger) (*BoltVault, error) {
	if path == "" {
		return nil, fmt.Errorf("vault path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure vault dir: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open vault db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(secretsBucket))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure vault bucket: %w", err)
	}
	return &BoltVault{db: db, path: path, logger: logger.Named("vault")}, nil
}

func (v *BoltVault) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}
	v.closed = true
	return v.db.Close()
}

func (v *BoltVault) Fetch(_ context.Context, name string) (string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.closed {
		return "", ErrVaultClosed
	}

	var value []byte
	err := v.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(secretsBucket))
		if bucket == nil {
			return fmt.Errorf("missing secrets bucket")
		}
		if raw := bucket.Get([]byte(name)); raw != nil {
			value = append([]byte(nil), raw...)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("read vault: %w", err)
	}
	if value == nil {
		v.logger.Debug("secret not present in vault", zap.String("name", name))
		return "", domain.E(domain.CodePermanent, "fetch secret",
			fmt.Sprintf("secret %q not found", name), domain.ErrSecretNotFound)
	}
	return string(value), nil
}

// Store writes or replaces a secret. Used by provisioning, never by the
// pipeline itself.
func (v *BoltVault) Store(name, value string) error {
	if name == "" {
		return fmt.Errorf("secret name is required")
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.closed {
		return ErrVaultClosed
	}
	return v.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(secretsBucket))
		if bucket == nil {
			return fmt.Errorf("missing secrets bucket")
		}
		return bucket.Put([]byte(name), []byte(value))
	})
}

var _ domain.SecretVault = (*BoltVault)(nil)
