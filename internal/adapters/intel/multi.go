package intel

import (
	"context"

	"github.com/secureguard/phishguard/internal/core"
)

// MultiProvider fans a lookup across several providers in configured order
// and returns the first unsafe verdict. The engine stays agnostic to how
// many providers are wired behind it.
type MultiProvider struct {
	providers []core.ThreatIntelProvider
}

// NewMultiProvider creates a provider that consults each given provider in order
func NewMultiProvider(providers ...core.ThreatIntelProvider) *MultiProvider {
	return &MultiProvider{providers: providers}
}

// CheckURL returns the first unsafe verdict, or the last provider's safe one
func (m *MultiProvider) CheckURL(ctx context.Context, url string) core.ProviderResult {
	result := core.ProviderResult{Safe: true, Provider: "multi"}
	for _, provider := range m.providers {
		result = provider.CheckURL(ctx, url)
		if !result.Safe {
			return result
		}
	}
	return result
}

// CheckFileHash returns the first unsafe verdict, or the last provider's safe one
func (m *MultiProvider) CheckFileHash(ctx context.Context, hash string) core.ProviderResult {
	result := core.ProviderResult{Safe: true, Provider: "multi"}
	for _, provider := range m.providers {
		result = provider.CheckFileHash(ctx, hash)
		if !result.Safe {
			return result
		}
	}
	return result
}
