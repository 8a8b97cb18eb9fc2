package policy

import (
	"fmt"

	"go.uber.org/zap"

	"atomd/internal/domain"
)

// Gate validates secret names and network domains against the configured
// allowlists. It is a pure function of the allowlist sets: no side effects,
// no state beyond the immutable configuration handed to it at startup.
type Gate struct {
	allowlists *domain.Allowlists
	logger     *zap.Logger
}

func NewGate(allowlists *domain.Allowlists, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		allowlists: allowlists,
		logger:     logger.Named("policy"),
	}
}

// Check returns nil when the identifier is allowed, or a PolicyViolation
// error carrying the kind and rejected identifier. Matching is exact and
// case-sensitive; prefix or wildcard matching is deliberately absent so a
// partial match can never slip through.
func (g *Gate) Check(kind domain.IdentifierKind, identifier string) *domain.Error {
	var allowed bool
	switch kind {
	case domain.IdentifierSecret:
		allowed = g.allowlists.SecretAllowed(identifier)
	case domain.IdentifierDomain:
		allowed = g.allowlists.DomainAllowed(identifier)
	default:
		return domain.E(domain.CodeInternal, "policy check", fmt.Sprintf("unknown identifier kind %q", kind), nil)
	}

	if allowed {
		return nil
	}

	g.logger.Warn("identifier denied",
		zap.String("kind", string(kind)),
		zap.String("identifier", identifier),
	)
	return &domain.Error{
		Code:       domain.CodePolicyViolation,
		Op:         "policy check",
		Message:    fmt.Sprintf("access denied to %s: %s", kind, identifier),
		Identifier: identifier,
	}
}
