// Package formatter derives manifest fragments from a data source plus
// tenant configuration lookups, one variant per originating business line.
// Accessors return a populated fragment or "absent"; absence is a valid
// outcome, not an error. Data gaps are recorded on the issue accumulator
// and never halt computation.
package formatter

import (
	"regexp"
	"strings"

	"matter_pipeline_backend/internal/pipeline/domain"
)

// ParseName splits a free-text individual name.
// Two tokens become first/last, three or more become first/middle with the
// remainder joined as last, and a single token fills both first and last.
func ParseName(raw string) domain.PersonName {
	tokens := strings.Fields(strings.TrimSpace(raw))

	switch len(tokens) {
	case 0:
		return domain.PersonName{}
	case 1:
		return domain.PersonName{First: tokens[0], Last: tokens[0]}
	case 2:
		return domain.PersonName{First: tokens[0], Last: tokens[1]}
	default:
		return domain.PersonName{
			First:  tokens[0],
			Middle: tokens[1],
			Last:   strings.Join(tokens[2:], " "),
		}
	}
}

// companyWords is the lexicon of company-indicating words. Matching is
// case-insensitive on whole tokens.
var companyWords = map[string]struct{}{
	"pty":            {},
	"ltd":            {},
	"p/l":            {},
	"limited":        {},
	"company":        {},
	"co":             {},
	"corp":           {},
	"corporation":    {},
	"inc":            {},
	"incorporated":   {},
	"group":          {},
	"holdings":       {},
	"enterprises":    {},
	"investments":    {},
	"developments":   {},
	"constructions":  {},
	"builders":       {},
	"realty":         {},
	"bank":           {},
	"trust":          {},
	"trustee":        {},
	"superannuation": {},
	"fund":           {},
	"association":    {},
	"council":        {},
	"body":           {},
	"corporate":      {},
}

// bareDomainRegex catches names that are really a web domain, e.g.
// "acmeconveyancing.com.au".
var bareDomainRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9\-]*(\.[a-z0-9][a-z0-9\-]*)+$`)

// IsCompanyName decides company vs individual from the lexicon of
// company-indicating words, falling back to a bare-domain-name check.
func IsCompanyName(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return false
	}

	for _, token := range strings.Fields(strings.ToLower(trimmed)) {
		token = strings.Trim(token, ".,()")
		if _, ok := companyWords[token]; ok {
			return true
		}
	}

	return bareDomainRegex.MatchString(strings.ToLower(trimmed))
}
