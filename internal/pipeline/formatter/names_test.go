package formatter

import "testing"

func TestParseName(t *testing.T) {
	cases := []struct {
		in                  string
		first, middle, last string
	}{
		{"Lebron S. Davis", "Lebron", "S.", "Davis"},
		{"John", "John", "", "John"},
		{"Eric Michael Mathew Fox", "Eric", "Michael", "Mathew Fox"},
		{"Jane Doe", "Jane", "", "Doe"},
		{"  Mary   Anne   Smith  ", "Mary", "Anne", "Smith"},
		{"", "", "", ""},
	}

	for _, tc := range cases {
		got := ParseName(tc.in)
		if got.First != tc.first || got.Middle != tc.middle || got.Last != tc.last {
			t.Errorf("ParseName(%q) = %+v, want {%s %s %s}", tc.in, got, tc.first, tc.middle, tc.last)
		}
	}
}

func TestIsCompanyName(t *testing.T) {
	companies := []string{
		"Acme Holdings Pty Ltd",
		"Northside Developments",
		"Smith Family Trust",
		"Brisbane City Council",
		"acmeconveyancing.com.au",
		"Jones Superannuation Fund",
	}
	for _, name := range companies {
		if !IsCompanyName(name) {
			t.Errorf("expected %q to be detected as a company", name)
		}
	}

	individuals := []string{
		"John Citizen",
		"Mary-Anne O'Brien",
		"Lebron S. Davis",
		"",
	}
	for _, name := range individuals {
		if IsCompanyName(name) {
			t.Errorf("expected %q to be detected as an individual", name)
		}
	}
}
