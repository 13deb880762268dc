package reference

import "testing"

func TestResolveAirline(t *testing.T) {
	tests := []struct {
		input        string
		want         string
		wantFallback bool
	}{
		{input: "TK", want: "Turkish Airlines (TK)"},
		{input: "tk", want: "Turkish Airlines (TK)"},
		{input: "Turkish Airlines", want: "Turkish Airlines (TK)"},
		{input: "Turkish Airlines (TK)", want: "Turkish Airlines (TK)"},
		{input: "(TK) Turkish Airlines", want: "Turkish Airlines (TK)"},
		{input: "TK turkish airlines", want: "Turkish Airlines (TK)"},
		{input: "pegasus airlines pc", want: "Pegasus Airlines (PC)"},
		{input: "  Nowhere   Air ", want: "Nowhere Air", wantFallback: true},
		{input: "Turkish", want: "Turkish", wantFallback: true},
		{input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ResolveAirline(tt.input)
			if got.Display != tt.want || got.Fallback != tt.wantFallback {
				t.Errorf("ResolveAirline(%q) = %+v, want %q fallback=%v", tt.input, got, tt.want, tt.wantFallback)
			}
		})
	}
}

func TestResolveAirport(t *testing.T) {
	tests := []struct {
		input        string
		want         string
		wantFallback bool
	}{
		{input: "SAW", want: "Istanbul-Sabiha(SAW)"},
		{input: "Istanbul (SAW)", want: "Istanbul-Sabiha(SAW)"},
		{input: "ist", want: "Istanbul(IST)"},
		{input: "Istanbul", want: "Istanbul(IST)"},
		{input: "düsseldorf", want: "Düsseldorf(DUS)"},
		{input: "FRA Frankfurt am Main", want: "Frankfurt(FRA)"},
		{input: "Springfield", want: "Springfield", wantFallback: true},
		{input: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ResolveAirport(tt.input)
			if got.Display != tt.want || got.Fallback != tt.wantFallback {
				t.Errorf("ResolveAirport(%q) = %+v, want %q fallback=%v", tt.input, got, tt.want, tt.wantFallback)
			}
		})
	}
}

func TestAirportCodesUnique(t *testing.T) {
	if len(airportByCode) != len(Airports) {
		t.Errorf("duplicate airport codes: %d unique of %d", len(airportByCode), len(Airports))
	}
}
