package formatter

import "testing"

func TestDecidePropertyNature(t *testing.T) {
	cases := []struct {
		name         string
		in           PropertyInputs
		nature       string
		subtype      string
		wantAdvisory bool
	}{
		{
			name: "community titled sell without multi-unit address",
			in: PropertyInputs{
				LayoutVariant:   LayoutStandard,
				CommunityTitled: true,
				Sell:            true,
			},
			nature:       NatureHomeUnit,
			subtype:      SubtypeNoSaleOptions,
			wantAdvisory: true,
		},
		{
			name: "house and land with contradictory flags on a purchase",
			in: PropertyInputs{
				LayoutVariant: LayoutStandard,
				VacantLand:    true,
				BuiltOn:       true,
			},
			nature:       NatureDwelling,
			subtype:      SubtypeHouse,
			wantAdvisory: true,
		},
		{
			name: "community titled purchase of a unit",
			in: PropertyInputs{
				LayoutVariant:    LayoutStandard,
				CommunityTitled:  true,
				MultiUnitAddress: true,
			},
			nature:  NatureUnit,
			subtype: SubtypeStrataUnit,
		},
		{
			name: "vacant land purchase",
			in: PropertyInputs{
				LayoutVariant: LayoutStandard,
				VacantLand:    true,
			},
			nature:  NatureVacantLand,
			subtype: SubtypeLandOnly,
		},
		{
			name: "built dwelling purchase",
			in: PropertyInputs{
				LayoutVariant: LayoutStandard,
				BuiltOn:       true,
			},
			nature:  NatureDwelling,
			subtype: SubtypeHouse,
		},
		{
			name: "neither flag set carries an advisory",
			in: PropertyInputs{
				LayoutVariant: LayoutStandard,
			},
			nature:       NatureDwelling,
			subtype:      SubtypeHouse,
			wantAdvisory: true,
		},
		{
			name: "compact layout always asks for confirmation",
			in: PropertyInputs{
				LayoutVariant: LayoutCompact,
				BuiltOn:       true,
			},
			nature:       NatureDwelling,
			subtype:      SubtypeHouse,
			wantAdvisory: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DecidePropertyNature(tc.in)
			if got.Nature != tc.nature {
				t.Errorf("nature = %q, want %q", got.Nature, tc.nature)
			}
			if got.Subtype != tc.subtype {
				t.Errorf("subtype = %q, want %q", got.Subtype, tc.subtype)
			}
			if (got.Advisory != "") != tc.wantAdvisory {
				t.Errorf("advisory = %q, want present=%v", got.Advisory, tc.wantAdvisory)
			}
		})
	}
}
