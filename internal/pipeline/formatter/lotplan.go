package formatter

import (
	"regexp"
	"sort"
)

// Plan is one plan reference extracted from free text. Type-only and
// number-only matches are both valid: the missing half stays empty.
type Plan struct {
	Type   string `json:"type,omitempty"`
	Number string `json:"number,omitempty"`
}

// lotRegex matches "Lot 123", "L456", "lot no. 789" and "Lot Number 101".
var lotRegex = regexp.MustCompile(`(?i)\b(?:lot\s*(?:no\.?\s*|number\s*)?|l\s*)(\d+)\b`)

// planTypeRegex matches a known plan type optionally followed by its number.
// A letter immediately before the digits belongs to the number: "CPW12345"
// is crown plan "W12345", not an unknown "CPW" type.
var planTypeRegex = regexp.MustCompile(`\b(BUP|GTP|SP|RP|CP)\s*\.?\s*([A-Z]?\d+)?`)

// planNumberRegex matches an orphan "Plan 12345" with no preceding type.
var planNumberRegex = regexp.MustCompile(`(?i)\bplan\s*(?:no\.?\s*|number\s*)?(\d+)\b`)

// ExtractLots pulls every lot number out of free text, in order of
// appearance. Callers raise an Issue when more than one lot is found.
func ExtractLots(text string) []string {
	var lots []string
	for _, m := range lotRegex.FindAllStringSubmatch(text, -1) {
		lots = append(lots, m[1])
	}
	return lots
}

// ExtractPlans pulls every plan reference out of free text: typed matches
// (with or without a number) plus orphan number-only matches, in order of
// appearance.
func ExtractPlans(text string) []Plan {
	type located struct {
		pos  int
		plan Plan
	}
	var found []located

	typedSpans := planTypeRegex.FindAllStringSubmatchIndex(text, -1)
	for _, span := range typedSpans {
		p := Plan{Type: text[span[2]:span[3]]}
		if span[4] >= 0 {
			p.Number = text[span[4]:span[5]]
		}
		found = append(found, located{pos: span[0], plan: p})
	}

	for _, span := range planNumberRegex.FindAllStringSubmatchIndex(text, -1) {
		if overlapsAny(span[0], span[1], typedSpans) {
			continue
		}
		found = append(found, located{pos: span[0], plan: Plan{Number: text[span[2]:span[3]]}})
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].pos < found[j].pos })

	plans := make([]Plan, 0, len(found))
	for _, f := range found {
		plans = append(plans, f.plan)
	}
	return plans
}

func overlapsAny(start, end int, spans [][]int) bool {
	for _, s := range spans {
		if start < s[1] && end > s[0] {
			return true
		}
	}
	return false
}
