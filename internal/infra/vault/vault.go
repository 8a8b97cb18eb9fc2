package vault

import (
	"fmt"

	"go.uber.org/zap"

	"atomd/internal/domain"
)

// New builds the configured vault backend. The returned closer is a no-op
// for the env backend.
func New(cfg domain.VaultConfig, logger *zap.Logger) (domain.SecretVault, func() error, error) {
	switch cfg.Backend {
	case domain.VaultBackendEnv, "":
		return NewEnvVault(cfg.Prefix, logger), func() error { return nil }, nil
	case domain.VaultBackendBolt:
		v, err := OpenBoltVault(cfg.Path, logger)
		if err != nil {
			return nil, nil, err
		}
		return v, v.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown vault backend %q", cfg.Backend)
	}
}
