package status

import "testing"

func TestIsValidTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{Draft, Pending, true},
		{Draft, Cancelled, true},
		{Draft, Confirmed, false},
		{Pending, Confirmed, true},
		{Pending, Cancelled, true},
		{Pending, Draft, false},
		{Confirmed, Cancelled, true},
		{Confirmed, Pending, false},
		{Confirmed, Draft, false},
		{Cancelled, Draft, false},
		{Cancelled, Pending, false},
		{Cancelled, Confirmed, false},
		{Draft, Draft, true},
		{Cancelled, Cancelled, true},
		{Status("archived"), Draft, false},
		{Draft, Status("archived"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := IsValidTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("IsValidTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	for _, s := range All {
		want := s == Cancelled
		if got := s.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", s, got, want)
		}
	}
}

func TestParse(t *testing.T) {
	if s, err := Parse("pending"); err != nil || s != Pending {
		t.Errorf("Parse(pending) = %v, %v", s, err)
	}
	if _, err := Parse("Pending"); err == nil {
		t.Errorf("Parse is case sensitive")
	}
	if _, err := Parse(""); err == nil {
		t.Errorf("Parse of empty string should fail")
	}
}

func TestAllowedReturnsCopy(t *testing.T) {
	got := Allowed(Draft)
	got[0] = Cancelled
	if Allowed(Draft)[0] != Pending {
		t.Errorf("Allowed must not expose the transition table")
	}
}
