package core

import (
	"net/url"
	"strings"
)

// lookalikeReplacer canonicalizes the character substitutions commonly used
// in phishing domains: 0 -> o, 1 -> i, l -> i. Applied to case-folded input.
var lookalikeReplacer = strings.NewReplacer("0", "o", "1", "i", "l", "i")

// TyposquatResult reports whether a URL impersonates a protected domain
type TyposquatResult struct {
	IsTyposquat bool
	// Target is the protected domain being impersonated, set only on a match
	Target string
}

// TyposquatDetector flags domains that visually mimic a protected list.
//
// Matching is exact equality of normalized forms, not a fuzzy edit-distance
// algorithm: the first protected domain (in configured order) whose
// normalized form equals the candidate's wins. Changing this to a
// best-distance ranking would change which domain gets reported as the
// impersonation target.
type TyposquatDetector struct {
	protected []string
}

// NewTyposquatDetector creates a detector for the given protected domains.
// The list is case-folded once here; configured order is preserved.
func NewTyposquatDetector(protectedDomains []string) *TyposquatDetector {
	protected := make([]string, len(protectedDomains))
	for i, domain := range protectedDomains {
		protected[i] = strings.ToLower(strings.TrimSpace(domain))
	}
	return &TyposquatDetector{protected: protected}
}

// CheckURL checks whether the URL's host is a lookalike of a protected
// domain. Malformed URLs and URLs without a host fail open (no match, no
// error) rather than aborting the analysis.
func (d *TyposquatDetector) CheckURL(rawURL string) TyposquatResult {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return TyposquatResult{}
	}

	host := strings.ToLower(parsed.Host)
	if host == "" {
		return TyposquatResult{}
	}

	normalizedHost := lookalikeReplacer.Replace(host)
	for _, protected := range d.protected {
		// Exact match is the legitimate domain, not a typosquat
		if host == protected {
			continue
		}
		if normalizedHost == lookalikeReplacer.Replace(protected) {
			return TyposquatResult{IsTyposquat: true, Target: protected}
		}
	}

	return TyposquatResult{}
}
