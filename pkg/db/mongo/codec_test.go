package mongo

import (
	"testing"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type priced struct {
	Amount decimal.Decimal `bson:"amount"`
}

func TestDecimalCodec_StoresDecimal128(t *testing.T) {
	reg := NewRegistry()
	data, err := bson.MarshalWithRegistry(reg, priced{Amount: decimal.RequireFromString("1234.505")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	raw := bson.Raw(data)
	if _, ok := raw.Lookup("amount").Decimal128OK(); !ok {
		t.Fatalf("amount stored as %v, want decimal128", raw.Lookup("amount").Type)
	}

	var out priced
	if err := bson.UnmarshalWithRegistry(reg, data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !out.Amount.Equal(decimal.RequireFromString("1234.505")) {
		t.Errorf("amount = %s, want 1234.505", out.Amount)
	}
}

func TestDecimalCodec_DecodesLegacyTypes(t *testing.T) {
	d128, _ := primitive.ParseDecimal128("7.25")
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"double", 12.5, "12.5"},
		{"int32", int32(40), "40"},
		{"int64", int64(99), "99"},
		{"string", "300.10", "300.1"},
		{"decimal128", d128, "7.25"},
		{"null", nil, "0"},
	}

	reg := NewRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := bson.Marshal(bson.M{"amount": tt.value})
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var out priced
			if err := bson.UnmarshalWithRegistry(reg, data, &out); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !out.Amount.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("amount = %s, want %s", out.Amount, tt.want)
			}
		})
	}
}
