package intel

import (
	"fmt"

	"github.com/secureguard/phishguard/internal/core"
)

// FailPolicy controls what verdict a provider returns when the upstream
// service cannot be reached. This is a deployment choice and must be
// explicit: fail-open trades caution for availability, fail-closed the
// reverse. There is no silent default anywhere in this package.
type FailPolicy string

const (
	// FailOpen resolves unreachable lookups as safe
	FailOpen FailPolicy = "open"
	// FailClosed resolves unreachable lookups as unsafe
	FailClosed FailPolicy = "closed"
)

// ParseFailPolicy validates a configured fail policy string
func ParseFailPolicy(s string) (FailPolicy, error) {
	switch FailPolicy(s) {
	case FailOpen:
		return FailOpen, nil
	case FailClosed:
		return FailClosed, nil
	default:
		return "", fmt.Errorf("unsupported fail policy %q (want \"open\" or \"closed\")", s)
	}
}

// resolve converts a provider failure into the verdict the policy dictates
func (p FailPolicy) resolve(provider string) core.ProviderResult {
	if p == FailOpen {
		return core.ProviderResult{Safe: true, Provider: provider}
	}
	return core.ProviderResult{Safe: false, ThreatType: "PROVIDER_UNREACHABLE", Provider: provider}
}
