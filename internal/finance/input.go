package finance

// Input carries the monetary fields of a create or patch body. A nil field
// was not supplied.
type Input struct {
	AirlinesPrice          *Amount `json:"airlines_price,omitempty"`
	ServiceFee             *Amount `json:"service_fee,omitempty"`
	VisaPrice              *Amount `json:"visa_price,omitempty"`
	ServiceVisa            *Amount `json:"service_visa,omitempty"`
	CommissionFromAirlines *Amount `json:"commission_from_airlines,omitempty"`
	LstLoanFee             *Amount `json:"lst_loan_fee,omitempty"`
	CashPaid               *Amount `json:"cash_paid,omitempty"`
	BankTransfer           *Amount `json:"bank_transfer,omitempty"`
	HotelPrice             *Amount `json:"hotel_price,omitempty"`

	TotalTicketPrice     *Amount `json:"total_ticket_price,omitempty"`
	TotVisaFees          *Amount `json:"tot_visa_fees,omitempty"`
	TotalAmountDue       *Amount `json:"total_amount_due,omitempty"`
	TotalCustomerPayment *Amount `json:"total_customer_payment,omitempty"`
	LstProfit            *Amount `json:"lst_profit,omitempty"`
}

func (in Input) supplied() map[Field]*Amount {
	return map[Field]*Amount{
		AirlinesPrice:          in.AirlinesPrice,
		ServiceFee:             in.ServiceFee,
		VisaPrice:              in.VisaPrice,
		ServiceVisa:            in.ServiceVisa,
		CommissionFromAirlines: in.CommissionFromAirlines,
		LstLoanFee:             in.LstLoanFee,
		CashPaid:               in.CashPaid,
		BankTransfer:           in.BankTransfer,
		HotelPrice:             in.HotelPrice,
		TotalTicketPrice:       in.TotalTicketPrice,
		TotVisaFees:            in.TotVisaFees,
		TotalAmountDue:         in.TotalAmountDue,
		TotalCustomerPayment:   in.TotalCustomerPayment,
		LstProfit:              in.LstProfit,
	}
}

// Merge writes the supplied fields into v and returns the set of fields
// whose value actually differs from before.
func (in Input) Merge(v *Values) map[Field]bool {
	changed := make(map[Field]bool)
	for f, a := range in.supplied() {
		if a == nil {
			continue
		}
		if !v.Get(f).Equal(a.Decimal) {
			changed[f] = true
		}
		v.Set(f, a.Decimal)
	}
	return changed
}

// Fields lists the supplied fields regardless of their value.
func (in Input) Fields() map[Field]bool {
	out := make(map[Field]bool)
	for f, a := range in.supplied() {
		if a != nil {
			out[f] = true
		}
	}
	return out
}
