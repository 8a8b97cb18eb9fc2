package vault

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"atomd/internal/domain"
)

// EnvVault resolves secrets from process environment variables. The secret
// name is uppercased and dash-folded, then prefixed: "owm-api-key" with
// prefix ATOMD_SECRET_ reads ATOMD_SECRET_OWM_API_KEY.
type EnvVault struct {
	prefix string
	logger *zap.Logger
}

func NewEnvVault(prefix string, logger *zap.Logger) *EnvVault {
	if prefix == "" {
		prefix = domain.DefaultVaultEnvPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnvVault{prefix: prefix, logger: logger.Named("vault")}
}

func (v *EnvVault) Fetch(_ context.Context, name string) (string, error) {
	key := v.prefix + envKey(name)
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		v.logger.Debug("secret not present in environment", zap.String("name", name), zap.String("env", key))
		return "", domain.E(domain.CodePermanent, "fetch secret",
			fmt.Sprintf("secret %q not found", name), domain.ErrSecretNotFound)
	}
	return value, nil
}

func envKey(name string) string {
	replaced := strings.NewReplacer("-", "_", " ", "_", ".", "_").Replace(name)
	return strings.ToUpper(replaced)
}

var _ domain.SecretVault = (*EnvVault)(nil)
