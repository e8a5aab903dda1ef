package formatter

import "strings"

// AddressParts holds the composable parts of a street address. Any subset
// may be empty; partial composition is expected and valid.
type AddressParts struct {
	Unit         string
	StreetNumber string
	StreetName   string
	StreetType   string
	Suburb       string
	State        string
	Postcode     string
}

// Empty reports whether every part is empty.
func (a AddressParts) Empty() bool {
	return a.Unit == "" && a.StreetNumber == "" && a.StreetName == "" &&
		a.StreetType == "" && a.Suburb == "" && a.State == "" && a.Postcode == ""
}

// Compose concatenates the parts into a single address line, e.g.
// "2/14 Boundary Street, West End QLD 4101". The empty string means the
// address is absent entirely.
func (a AddressParts) Compose() string {
	if a.Empty() {
		return ""
	}

	street := a.StreetNumber
	if a.Unit != "" {
		if street != "" {
			street = a.Unit + "/" + street
		} else {
			street = a.Unit
		}
	}

	streetLine := joinNonEmpty(" ", street, a.StreetName, a.StreetType)
	localityLine := joinNonEmpty(" ", a.Suburb, a.State, a.Postcode)

	return joinNonEmpty(", ", streetLine, localityLine)
}

// LooksMultiUnit is the address heuristic used by the nature-of-property
// decision: a unit part, or a slashed street number, marks a multi-unit
// dwelling.
func (a AddressParts) LooksMultiUnit() bool {
	if strings.TrimSpace(a.Unit) != "" {
		return true
	}
	return strings.Contains(a.StreetNumber, "/")
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, sep)
}
