package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Local numbers are tried against each region in order.
var supportedRegions = []string{
	"DE",
	"AT",
	"CH",
	"TR",
	"US",
}

// NormalizePhone returns the E.164 form, or "" when the number is not valid
// in any supported region.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)

	if phone == "" {
		return ""
	}

	for _, region := range supportedRegions {
		parsedNumber, err := phonenumbers.Parse(phone, region)
		if err != nil || !phonenumbers.IsValidNumber(parsedNumber) {
			continue
		}
		return phonenumbers.Format(parsedNumber, phonenumbers.E164)
	}
	return ""
}

// SanitizePhone prefers the E.164 form and otherwise keeps the whitespace
// normalized input so that validation can report it.
func SanitizePhone(phone string) string {
	if normalized := NormalizePhone(phone); normalized != "" {
		return normalized
	}
	return TrimAndNormalize(phone)
}
