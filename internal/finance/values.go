package finance

import "github.com/shopspring/decimal"

type Field string

const (
	AirlinesPrice          Field = "airlines_price"
	ServiceFee             Field = "service_fee"
	VisaPrice              Field = "visa_price"
	ServiceVisa            Field = "service_visa"
	CommissionFromAirlines Field = "commission_from_airlines"
	LstLoanFee             Field = "lst_loan_fee"
	CashPaid               Field = "cash_paid"
	BankTransfer           Field = "bank_transfer"
	HotelPrice             Field = "hotel_price"

	TotalTicketPrice     Field = "total_ticket_price"
	TotVisaFees          Field = "tot_visa_fees"
	TotalAmountDue       Field = "total_amount_due"
	TotalCustomerPayment Field = "total_customer_payment"
	LstProfit            Field = "lst_profit"
)

// Values are the monetary fields of a travel request. Field names match the
// stored document keys.
type Values struct {
	AirlinesPrice          decimal.Decimal `json:"airlines_price" bson:"airlines_price"`
	ServiceFee             decimal.Decimal `json:"service_fee" bson:"service_fee"`
	VisaPrice              decimal.Decimal `json:"visa_price" bson:"visa_price"`
	ServiceVisa            decimal.Decimal `json:"service_visa" bson:"service_visa"`
	CommissionFromAirlines decimal.Decimal `json:"commission_from_airlines" bson:"commission_from_airlines"`
	LstLoanFee             decimal.Decimal `json:"lst_loan_fee" bson:"lst_loan_fee"`
	CashPaid               decimal.Decimal `json:"cash_paid" bson:"cash_paid"`
	BankTransfer           decimal.Decimal `json:"bank_transfer" bson:"bank_transfer"`
	HotelPrice             decimal.Decimal `json:"hotel_price" bson:"hotel_price"`

	TotalTicketPrice     decimal.Decimal `json:"total_ticket_price" bson:"total_ticket_price"`
	TotVisaFees          decimal.Decimal `json:"tot_visa_fees" bson:"tot_visa_fees"`
	TotalAmountDue       decimal.Decimal `json:"total_amount_due" bson:"total_amount_due"`
	TotalCustomerPayment decimal.Decimal `json:"total_customer_payment" bson:"total_customer_payment"`
	LstProfit            decimal.Decimal `json:"lst_profit" bson:"lst_profit"`
}

// Totals are the five derived amounts.
type Totals struct {
	TotalTicketPrice     decimal.Decimal `json:"total_ticket_price"`
	TotVisaFees          decimal.Decimal `json:"tot_visa_fees"`
	TotalAmountDue       decimal.Decimal `json:"total_amount_due"`
	TotalCustomerPayment decimal.Decimal `json:"total_customer_payment"`
	LstProfit            decimal.Decimal `json:"lst_profit"`
}

// Outstanding is what the customer still owes.
func (v Values) Outstanding() decimal.Decimal {
	return v.TotalAmountDue.Sub(v.TotalCustomerPayment)
}

func (v *Values) field(f Field) *decimal.Decimal {
	switch f {
	case AirlinesPrice:
		return &v.AirlinesPrice
	case ServiceFee:
		return &v.ServiceFee
	case VisaPrice:
		return &v.VisaPrice
	case ServiceVisa:
		return &v.ServiceVisa
	case CommissionFromAirlines:
		return &v.CommissionFromAirlines
	case LstLoanFee:
		return &v.LstLoanFee
	case CashPaid:
		return &v.CashPaid
	case BankTransfer:
		return &v.BankTransfer
	case HotelPrice:
		return &v.HotelPrice
	case TotalTicketPrice:
		return &v.TotalTicketPrice
	case TotVisaFees:
		return &v.TotVisaFees
	case TotalAmountDue:
		return &v.TotalAmountDue
	case TotalCustomerPayment:
		return &v.TotalCustomerPayment
	case LstProfit:
		return &v.LstProfit
	}
	return nil
}

// Get returns the value of f, or zero for an unknown field.
func (v Values) Get(f Field) decimal.Decimal {
	if p := v.field(f); p != nil {
		return *p
	}
	return decimal.Zero
}

// Set assigns f. Unknown fields are ignored.
func (v *Values) Set(f Field, d decimal.Decimal) {
	if p := v.field(f); p != nil {
		*p = d
	}
}

// Fields lists every monetary field, raw inputs first.
var Fields = []Field{
	AirlinesPrice, ServiceFee, VisaPrice, ServiceVisa, CommissionFromAirlines,
	LstLoanFee, CashPaid, BankTransfer, HotelPrice,
	TotalTicketPrice, TotVisaFees, TotalAmountDue, TotalCustomerPayment, LstProfit,
}
