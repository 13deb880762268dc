// Package finance derives request totals from the raw monetary inputs.
// Every function is pure.
package finance

import "github.com/shopspring/decimal"

type rule struct {
	target  Field
	inputs  []Field
	compute func(v Values) decimal.Decimal
}

// rules are in dependency order: total_amount_due reads the two totals before it.
var rules = []rule{
	{
		target: TotalTicketPrice,
		inputs: []Field{AirlinesPrice, ServiceFee},
		compute: func(v Values) decimal.Decimal {
			return v.AirlinesPrice.Add(v.ServiceFee)
		},
	},
	{
		target: TotVisaFees,
		inputs: []Field{VisaPrice, ServiceVisa},
		compute: func(v Values) decimal.Decimal {
			return v.VisaPrice.Add(v.ServiceVisa)
		},
	},
	{
		target: TotalAmountDue,
		inputs: []Field{TotalTicketPrice, TotVisaFees},
		compute: func(v Values) decimal.Decimal {
			return v.TotalTicketPrice.Add(v.TotVisaFees)
		},
	},
	{
		target: TotalCustomerPayment,
		inputs: []Field{CashPaid, BankTransfer},
		compute: func(v Values) decimal.Decimal {
			return v.CashPaid.Add(v.BankTransfer)
		},
	},
	{
		target: LstProfit,
		inputs: []Field{ServiceFee, ServiceVisa, CommissionFromAirlines, LstLoanFee},
		compute: func(v Values) decimal.Decimal {
			return v.ServiceFee.Add(v.ServiceVisa).Add(v.CommissionFromAirlines).Sub(v.LstLoanFee)
		},
	},
}

// IsDerived reports whether f is one of the five totals.
func IsDerived(f Field) bool {
	for _, r := range rules {
		if r.target == f {
			return true
		}
	}
	return false
}

// Compute derives all five totals from the raw inputs, ignoring stored totals.
func Compute(v Values) Totals {
	out := v
	for _, r := range rules {
		out.Set(r.target, r.compute(out))
	}
	return Totals{
		TotalTicketPrice:     out.TotalTicketPrice,
		TotVisaFees:          out.TotVisaFees,
		TotalAmountDue:       out.TotalAmountDue,
		TotalCustomerPayment: out.TotalCustomerPayment,
		LstProfit:            out.LstProfit,
	}
}

// Apply recomputes the totals affected by an edit. A total is recomputed when
// any of its inputs is in changed, and then counts as changed itself. A total
// edited directly keeps its value unless one of its inputs changed too.
// The returned slice lists the totals that were recomputed.
func Apply(v Values, changed map[Field]bool) (Values, []Field) {
	dirty := make(map[Field]bool, len(changed)+len(rules))
	for f, ok := range changed {
		if ok {
			dirty[f] = true
		}
	}

	var recomputed []Field
	for _, r := range rules {
		if !anyChanged(dirty, r.inputs) {
			continue
		}
		v.Set(r.target, r.compute(v))
		dirty[r.target] = true
		recomputed = append(recomputed, r.target)
	}
	return v, recomputed
}

// Fill recomputes every total that is zero. Used for read views and invoices.
func Fill(v Values) Values {
	for _, r := range rules {
		if v.Get(r.target).IsZero() {
			v.Set(r.target, r.compute(v))
		}
	}
	return v
}

func anyChanged(dirty map[Field]bool, inputs []Field) bool {
	for _, f := range inputs {
		if dirty[f] {
			return true
		}
	}
	return false
}
