package sanitizer

import (
	"regexp"
	"strings"
	"unicode"
)

var reNonAlnum = regexp.MustCompile(`[^0-9A-Za-z]+`)

func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeCode upper-cases booking references and IATA codes and drops
// separators: " ab-12 cd " becomes "AB12CD".
func NormalizeCode(code string) string {
	return Pipeline{
		strings.TrimSpace,
		func(s string) string { return reNonAlnum.ReplaceAllString(s, "") },
		strings.ToUpper,
	}.Apply(code)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeIBAN removes spaces and upper-cases the account number.
func NormalizeIBAN(iban string) string {
	return NormalizeCode(iban)
}
