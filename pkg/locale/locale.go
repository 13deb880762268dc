// Package locale formats money and dates for the two invoice languages.
package locale

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

type Language string

const (
	English Language = "en"
	German  Language = "de"

	DateLayout = "02.01.2006"
	isoDate    = "2006-01-02"
)

var (
	supported = []language.Tag{language.German, language.English}
	matcher   = language.NewMatcher(supported)
)

func (l Language) Tag() language.Tag {
	if l == English {
		return language.English
	}
	return language.German
}

func (l Language) IsValid() bool {
	return l == English || l == German
}

// Other returns the toggle target for the preview page.
func (l Language) Other() Language {
	if l == English {
		return German
	}
	return English
}

// Parse accepts "en"/"de" in any case; anything else yields fallback.
func Parse(s string, fallback Language) Language {
	l := Language(strings.ToLower(strings.TrimSpace(s)))
	if l.IsValid() {
		return l
	}
	return fallback
}

// FromAcceptLanguage picks the best match for an Accept-Language header.
func FromAcceptLanguage(header string, fallback Language) Language {
	if strings.TrimSpace(header) == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return fallback
	}
	if supported[idx] == language.English {
		return English
	}
	return German
}

// FormatMoney renders d with exactly two fraction digits and the
// language's grouping: de 1.234,50 and en 1,234.50.
func FormatMoney(d decimal.Decimal, lang Language) string {
	group, point := ".", ","
	if lang == English {
		group, point = ",", "."
	}

	s := d.StringFixed(2)
	var b strings.Builder
	if strings.HasPrefix(s, "-") {
		b.WriteByte('-')
		s = s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	for i := 0; i < len(whole); i++ {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteString(group)
		}
		b.WriteByte(whole[i])
	}
	b.WriteString(point)
	b.WriteString(frac)
	return b.String()
}

// FormatCurrency appends the euro sign the way each language writes it.
func FormatCurrency(d decimal.Decimal, lang Language) string {
	if lang == English {
		return "€" + FormatMoney(d, lang)
	}
	return FormatMoney(d, lang) + " €"
}

// FormatDate turns an ISO date (YYYY-MM-DD) into DD.MM.YYYY. Unparseable
// input is returned trimmed.
func FormatDate(iso string) string {
	iso = strings.TrimSpace(iso)
	t, err := time.Parse(isoDate, iso)
	if err != nil {
		return iso
	}
	return t.Format(DateLayout)
}

func FormatTime(t time.Time) string {
	return t.Format(DateLayout)
}
