package sanitizer

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "valid E.164 format",
			input: "+4915123456789",
			want:  "+4915123456789",
		},
		{
			name:  "with spaces",
			input: "+49 151 2345 6789",
			want:  "+4915123456789",
		},
		{
			name:  "german national format",
			input: "0151 23456789",
			want:  "+4915123456789",
		},
		{
			name:  "turkish mobile with dashes",
			input: "+90-532-123-45-67",
			want:  "+905321234567",
		},
		{
			name:  "us with parentheses",
			input: "+1 (650) 253-0000",
			want:  "+16502530000",
		},
		{
			name:  "swiss landline",
			input: "+41 44 668 18 00",
			want:  "+41446681800",
		},
		{
			name:  "leading and trailing spaces",
			input: "  +4915123456789  ",
			want:  "+4915123456789",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   ",
			want:  "",
		},
		{
			name:  "letters",
			input: "call me",
			want:  "",
		},
		{
			name:  "too short",
			input: "123",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePhone(tt.input)
			if got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizePhone_Idempotent(t *testing.T) {
	inputs := []string{"+49 151 2345 6789", "0151 23456789", "+90 532 123 45 67"}
	for _, in := range inputs {
		once := NormalizePhone(in)
		if twice := NormalizePhone(once); twice != once {
			t.Errorf("NormalizePhone not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestSanitizePhone(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"+49 151 2345 6789", "+4915123456789"},
		{"  ext.   42 ", "ext. 42"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizePhone(tt.input); got != tt.want {
			t.Errorf("SanitizePhone(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
