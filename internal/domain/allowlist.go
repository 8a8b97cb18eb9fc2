package domain

import "strings"

// IdentifierKind distinguishes what an allowlist check is validating.
type IdentifierKind string

const (
	IdentifierSecret IdentifierKind = "secret"
	IdentifierDomain IdentifierKind = "domain"
)

// Allowlists holds the closed sets of permitted identifiers. Built once at
// startup and read-only afterwards; matching is exact and case-sensitive,
// so a case-variant or substring of an allowed name is still denied.
type Allowlists struct {
	secrets       map[string]struct{}
	domains       map[string]struct{}
	cachePatterns []string
}

func NewAllowlists(secrets, domains, cachePatterns []string) *Allowlists {
	a := &Allowlists{
		secrets:       make(map[string]struct{}, len(secrets)),
		domains:       make(map[string]struct{}, len(domains)),
		cachePatterns: append([]string(nil), cachePatterns...),
	}
	for _, s := range secrets {
		if s != "" {
			a.secrets[s] = struct{}{}
		}
	}
	for _, d := range domains {
		if d != "" {
			a.domains[d] = struct{}{}
		}
	}
	return a
}

func (a *Allowlists) SecretAllowed(name string) bool {
	_, ok := a.secrets[name]
	return ok
}

func (a *Allowlists) DomainAllowed(host string) bool {
	_, ok := a.domains[host]
	return ok
}

// CachePatternAllowed reports whether a clear-cache pattern starts with one
// of the configured prefixes.
func (a *Allowlists) CachePatternAllowed(pattern string) bool {
	for _, p := range a.cachePatterns {
		if strings.HasPrefix(pattern, p) {
			return true
		}
	}
	return false
}

func (a *Allowlists) SecretCount() int { return len(a.secrets) }

func (a *Allowlists) DomainCount() int { return len(a.domains) }
