// Package reference resolves free-text airline and airport input against
// static tables for display on invoices.
package reference

import (
	"regexp"
	"strings"
)

// Resolution is what an invoice prints. Fallback marks input that matched
// nothing and is shown as typed.
type Resolution struct {
	Display  string
	Code     string
	Fallback bool
}

var reSeparators = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// tokens upper-cases s and splits it on anything that is not a letter or
// digit, so "Pegasus (PC)" and "pc pegasus" yield the same set.
func tokens(s string) []string {
	return strings.Fields(reSeparators.ReplaceAllString(strings.ToUpper(s), " "))
}

func sameTokens(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, t := range a {
		seen[t]++
	}
	for _, t := range b {
		if seen[t] == 0 {
			return false
		}
		seen[t]--
	}
	return true
}

func fallback(input string) Resolution {
	return Resolution{Display: strings.Join(strings.Fields(input), " "), Fallback: true}
}
