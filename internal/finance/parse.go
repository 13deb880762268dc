package finance

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Parse reads a monetary value leniently. Numbers, numeric strings (with
// either decimal separator) and decimals are accepted; anything else is 0.
func Parse(raw any) decimal.Decimal {
	switch v := raw.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return v
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero
		}
		return *v
	case float64:
		return decimal.NewFromFloat(v)
	case float32:
		return decimal.NewFromFloat32(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case json.Number:
		return parseString(v.String())
	case string:
		return parseString(v)
	default:
		return decimal.Zero
	}
}

// Limits of a stored Decimal128.
const (
	maxDigits   = 34
	minExponent = -6176
)

// parseString accepts plain digits with separators only. Exponent forms and
// values too long to store are 0.
func parseString(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "eE") {
		return decimal.Zero
	}
	if d, err := decimal.NewFromString(s); err == nil {
		return storable(d)
	}
	if !strings.Contains(s, ",") {
		return decimal.Zero
	}

	var normalized string
	if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
		// 1.234,50
		normalized = strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
	} else {
		// 1,234.50
		normalized = strings.ReplaceAll(s, ",", "")
	}
	if d, err := decimal.NewFromString(normalized); err == nil {
		return storable(d)
	}
	return decimal.Zero
}

func storable(d decimal.Decimal) decimal.Decimal {
	coef := d.Coefficient()
	if len(coef.Abs(coef).String()) > maxDigits || d.Exponent() < minExponent {
		return decimal.Zero
	}
	return d
}

// Amount is a decimal that never fails to decode from JSON.
type Amount struct {
	decimal.Decimal
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		a.Decimal = decimal.Zero
		return nil
	}
	a.Decimal = Parse(raw)
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return a.Decimal.MarshalJSON()
}
