package policy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"atomd/internal/domain"
)

func newTestGate() *Gate {
	allowlists := domain.NewAllowlists(
		[]string{"OWM-API-KEY", "OPENAI-API-KEY"},
		[]string{"api.example.com", "api.openweathermap.org"},
		nil,
	)
	return NewGate(allowlists, nil)
}

func TestGateAllowsListedIdentifiers(t *testing.T) {
	gate := newTestGate()

	require.Nil(t, gate.Check(domain.IdentifierSecret, "OWM-API-KEY"))
	require.Nil(t, gate.Check(domain.IdentifierDomain, "api.example.com"))
}

func TestGateDeniesUnlistedSecret(t *testing.T) {
	gate := newTestGate()

	err := gate.Check(domain.IdentifierSecret, "DB-PASSWORD")
	require.NotNil(t, err)
	require.Equal(t, domain.CodePolicyViolation, err.Code)
	require.Equal(t, "DB-PASSWORD", err.Identifier)
}

func TestGateDeniesCaseVariantsAndSubstrings(t *testing.T) {
	gate := newTestGate()

	for _, name := range []string{"owm-api-key", "OWM-API", "OWM-API-KEY-PROD", " OWM-API-KEY"} {
		err := gate.Check(domain.IdentifierSecret, name)
		require.NotNil(t, err, "secret %q must be denied", name)
		require.Equal(t, name, err.Identifier)
	}
}

func TestGateDeniesUnlistedDomain(t *testing.T) {
	gate := newTestGate()

	err := gate.Check(domain.IdentifierDomain, "evil.example.com")
	require.NotNil(t, err)
	require.Equal(t, domain.CodePolicyViolation, err.Code)
	require.Equal(t, "evil.example.com", err.Identifier)
}

func TestGateRejectsUnknownKind(t *testing.T) {
	gate := newTestGate()

	err := gate.Check(domain.IdentifierKind("bucket"), "whatever")
	require.NotNil(t, err)
	require.Equal(t, domain.CodeInternal, err.Code)
}
