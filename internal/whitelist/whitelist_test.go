package whitelist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestChecker_IsWhitelisted(t *testing.T) {
	checker := NewChecker([]string{"Company.com", " partner.org "}, zap.NewNop())

	tests := []struct {
		name     string
		from     string
		expected bool
	}{
		{name: "Trusted domain", from: "alice@company.com", expected: true},
		{name: "Trusted domain case insensitive", from: "bob@COMPANY.COM", expected: true},
		{name: "Trimmed configured domain", from: "carol@partner.org", expected: true},
		{name: "Untrusted domain", from: "mallory@evil.example", expected: false},
		{name: "No at sign", from: "not-an-address", expected: false},
		{name: "Multiple at signs", from: "a@b@company.com", expected: false},
		{name: "Empty address", from: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, checker.IsWhitelisted(tt.from))
		})
	}
}

func TestChecker_EmptyList(t *testing.T) {
	checker := NewChecker(nil, zap.NewNop())
	assert.False(t, checker.IsWhitelisted("anyone@anywhere.example"))
}
