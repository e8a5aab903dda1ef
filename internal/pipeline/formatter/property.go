package formatter

// PropertyInputs are the facts feeding the nature-of-property decision.
type PropertyInputs struct {
	// LayoutVariant identifies the contract layout the data was extracted
	// from. The compact layout carries no vacant/built-on checkboxes, so
	// those flags are not authoritative there.
	LayoutVariant string
	// CommunityTitled is true for community-titled schemes, false for
	// house-and-land contracts.
	CommunityTitled bool
	// Sell is true for a sale, false for a purchase.
	Sell bool
	// MultiUnitAddress is the address heuristic (unit part or slashed
	// street number).
	MultiUnitAddress bool
	VacantLand       bool
	BuiltOn          bool
}

// PropertyDecision is the decision-table output. Advisory is non-empty when
// the inputs were ambiguous or contradictory and a human should confirm.
type PropertyDecision struct {
	Nature   string
	Subtype  string
	Advisory string
}

const (
	LayoutStandard = "standard"
	LayoutCompact  = "compact"

	NatureHomeUnit   = "Home/Unit"
	NatureUnit       = "Unit"
	NatureDwelling   = "Dwelling"
	NatureVacantLand = "Vacant Land"

	SubtypeStrataUnit     = "Strata Unit"
	SubtypeCommunityTitle = "Community Title"
	SubtypeHouse          = "House"
	SubtypeLandOnly       = "Land Only"
	SubtypeNoSaleOptions  = "No Sale Options Available"
)

type tri int

const (
	triAny tri = iota
	triTrue
	triFalse
)

func (t tri) matches(v bool) bool {
	switch t {
	case triTrue:
		return v
	case triFalse:
		return !v
	default:
		return true
	}
}

// propertyRule is one row of the decision table. Rows are evaluated in
// order; the first full match wins.
type propertyRule struct {
	community tri
	sell      tri
	multiUnit tri
	vacant    tri
	builtOn   tri

	nature   string
	subtype  string
	advisory string
}

var propertyRules = []propertyRule{
	// Community-titled schemes. Sales carry no subtype options in the
	// target system, so the sell rows land on the no-options subtype.
	{community: triTrue, sell: triTrue, multiUnit: triTrue,
		nature: NatureUnit, subtype: SubtypeNoSaleOptions},
	{community: triTrue, sell: triTrue, multiUnit: triFalse,
		nature: NatureHomeUnit, subtype: SubtypeNoSaleOptions,
		advisory: "community-titled property without a multi-unit address; confirm the nature of property"},
	{community: triTrue, sell: triFalse, multiUnit: triTrue,
		nature: NatureUnit, subtype: SubtypeStrataUnit},
	{community: triTrue, sell: triFalse, multiUnit: triFalse,
		nature: NatureHomeUnit, subtype: SubtypeCommunityTitle,
		advisory: "community-titled property without a multi-unit address; confirm the nature of property"},

	// House-and-land with coherent vacant/built-on flags.
	{community: triFalse, vacant: triTrue, builtOn: triFalse,
		nature: NatureVacantLand, subtype: SubtypeLandOnly},
	{community: triFalse, vacant: triFalse, builtOn: triTrue,
		nature: NatureDwelling, subtype: SubtypeHouse},

	// Both or neither flag set: contradictory or silent inputs. Default to
	// a dwelling and ask a human to confirm.
	{community: triFalse,
		nature: NatureDwelling, subtype: SubtypeHouse,
		advisory: "vacant-land and built-on indicators were contradictory or both missing; confirm the nature of property"},
}

// DecidePropertyNature resolves (natureOfProperty, conveyancingSubtype) from
// the decision table. On the compact layout the vacant/built-on checkboxes
// do not exist, so house-and-land decisions there always carry an advisory.
func DecidePropertyNature(in PropertyInputs) PropertyDecision {
	if in.LayoutVariant == LayoutCompact && !in.CommunityTitled {
		d := PropertyDecision{Nature: NatureDwelling, Subtype: SubtypeHouse,
			Advisory: "compact contract layout has no vacant/built-on indicators; confirm the nature of property"}
		if in.MultiUnitAddress {
			d.Nature = NatureHomeUnit
		}
		return d
	}

	for _, rule := range propertyRules {
		if rule.community.matches(in.CommunityTitled) &&
			rule.sell.matches(in.Sell) &&
			rule.multiUnit.matches(in.MultiUnitAddress) &&
			rule.vacant.matches(in.VacantLand) &&
			rule.builtOn.matches(in.BuiltOn) {
			return PropertyDecision{Nature: rule.nature, Subtype: rule.subtype, Advisory: rule.advisory}
		}
	}

	// Unreachable: the last house-and-land row is a catch-all.
	return PropertyDecision{Nature: NatureDwelling, Subtype: SubtypeHouse}
}
