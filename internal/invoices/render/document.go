package render

import (
	"strconv"
	"strings"
	"time"
	"travelbook/internal/finance"
	"travelbook/internal/invoices/reference"
	"travelbook/pkg/locale"
	"travelbook/pkg/model"

	"github.com/shopspring/decimal"
)

// RowsPerPage is how many table rows a group invoice page holds.
const RowsPerPage = 8

// Line is a labelled value in the flight block.
type Line struct {
	Label    string
	Value    string
	Fallback bool
}

type Row struct {
	Label  string
	Detail string
	Ticket decimal.Decimal
	Visa   decimal.Decimal
	Hotel  decimal.Decimal
	Sum    decimal.Decimal
}

// Document is the language-resolved content of one invoice. The PDF and
// the HTML preview both draw from it.
type Document struct {
	Lang          locale.Language
	Group         bool
	Title         string
	InvoiceNumber string
	IssuedAt      time.Time

	CompanyName string
	Identity    []string
	Contact     []string
	Logo        []byte

	Flights []Line
	Rows    []Row
	Total   Row

	ShowPayment bool
	Paid        decimal.Decimal
	Outstanding decimal.Decimal

	Notice       string
	Confirmation string
	TaxNote      string
	Footer       [3][]string

	QRPayload string
}

type Options struct {
	Lang         locale.Language
	Confirmation bool
	Now          time.Time
}

func (d *Document) T(key string) string {
	return T(d.Lang, key)
}

func (d *Document) Money(v decimal.Decimal) string {
	return locale.FormatMoney(v, d.Lang)
}

func (d *Document) Currency(v decimal.Decimal) string {
	return locale.FormatCurrency(v, d.Lang)
}

func (d *Document) Date() string {
	return locale.FormatTime(d.IssuedAt)
}

// Pages is the page count the PDF will have.
func (d *Document) Pages() int {
	if !d.Group || len(d.Rows) == 0 {
		return 1
	}
	return (len(d.Rows) + RowsPerPage - 1) / RowsPerPage
}

// PageRows returns the rows printed on page (1-based).
func (d *Document) PageRows(page int) []Row {
	if !d.Group {
		return d.Rows
	}
	start := (page - 1) * RowsPerPage
	if start >= len(d.Rows) {
		return nil
	}
	end := start + RowsPerPage
	if end > len(d.Rows) {
		end = len(d.Rows)
	}
	return d.Rows[start:end]
}

func PageLabel(page, pages int) string {
	return strconv.Itoa(page) + " / " + strconv.Itoa(pages)
}

// Single builds the invoice for one request.
func Single(req *model.Request, settings *model.InvoiceSettings, opts Options) *Document {
	v := finance.Fill(req.Values)
	d := newDocument(settings, opts)
	d.Title = d.T("title")
	d.InvoiceNumber = InvoiceNumber(req)
	d.Flights = flightLines(d, req)

	names := req.PassengerNames()
	tickets := Split(v.TotalTicketPrice, len(names))
	visas := Split(v.TotVisaFees, len(names))
	for i, name := range names {
		row := Row{Label: name, Ticket: tickets[i], Visa: visas[i]}
		if i < len(req.Passengers) {
			row.Detail = req.Passengers[i].TicketNumber
		}
		row.Sum = row.Ticket.Add(row.Visa)
		d.Rows = append(d.Rows, row)
	}

	d.Total = Row{Label: d.T("total"), Ticket: v.TotalTicketPrice, Visa: v.TotVisaFees, Sum: v.TotalAmountDue}
	d.ShowPayment = true
	d.Paid = v.TotalCustomerPayment
	d.Outstanding = v.Outstanding()
	d.Notice = strings.TrimSpace(req.Notice)
	return d
}

// Group builds one collective invoice with a row per request. The grand
// total is ticket plus visa plus hotel over every row.
func Group(reqs []*model.Request, invoiceNumber string, settings *model.InvoiceSettings, opts Options) *Document {
	d := newDocument(settings, opts)
	d.Group = true
	d.Title = d.T("group_title")
	d.InvoiceNumber = invoiceNumber

	total := Row{Label: d.T("grand_total")}
	for _, req := range reqs {
		v := finance.Fill(req.Values)
		row := Row{
			Label:  strings.Join(req.PassengerNames(), ", "),
			Detail: groupDetail(req),
			Ticket: v.TotalTicketPrice,
			Visa:   v.TotVisaFees,
			Hotel:  v.HotelPrice,
		}
		row.Sum = row.Ticket.Add(row.Visa).Add(row.Hotel)
		d.Rows = append(d.Rows, row)

		total.Ticket = total.Ticket.Add(row.Ticket)
		total.Visa = total.Visa.Add(row.Visa)
		total.Hotel = total.Hotel.Add(row.Hotel)
		total.Sum = total.Sum.Add(row.Sum)
	}
	d.Total = total
	return d
}

// Split divides total into n parts of whole cents. The remainder goes on the
// last part so the parts always add up to total.
func Split(total decimal.Decimal, n int) []decimal.Decimal {
	if n < 1 {
		return nil
	}
	parts := make([]decimal.Decimal, n)
	share := total.Div(decimal.NewFromInt(int64(n))).Truncate(2)
	rest := total
	for i := 0; i < n-1; i++ {
		parts[i] = share
		rest = rest.Sub(share)
	}
	parts[n-1] = rest
	return parts
}

// InvoiceNumber is the stored number, or a short form of the request id.
func InvoiceNumber(req *model.Request) string {
	if req.InvoiceNumber != "" {
		return req.InvoiceNumber
	}
	id := strings.ReplaceAll(req.ID, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return "R-" + strings.ToUpper(id)
}

func newDocument(settings *model.InvoiceSettings, opts Options) *Document {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	d := &Document{
		Lang:        opts.Lang,
		IssuedAt:    now,
		CompanyName: settings.CompanyName,
		Logo:        settings.Logo,
	}
	if !d.Lang.IsValid() {
		d.Lang = locale.German
	}

	if settings.OwnerName != "" {
		d.Identity = append(d.Identity, d.T("owner")+": "+settings.OwnerName)
	}
	d.Identity = append(d.Identity, settings.Address()...)

	d.Contact = labelled(d,
		"phone", settings.Phone,
		"email", settings.Email,
		"web", settings.Website,
	)

	d.Footer = [3][]string{
		append([]string{settings.CompanyName}, settings.Address()...),
		labelled(d, "phone", settings.Phone, "email", settings.Email, "tax_id", settings.TaxID),
		labelled(d, "bank", settings.BankName, "account_holder", settings.AccountHolder, "iban", settings.IBAN, "bic", settings.BIC),
	}

	if opts.Confirmation {
		d.Confirmation = d.T("confirmation")
	}
	d.TaxNote = d.T("tax_note")
	return d
}

func flightLines(d *Document, req *model.Request) []Line {
	var lines []Line

	from := reference.ResolveAirport(req.DepartureAirport)
	to := reference.ResolveAirport(req.ArrivalAirport)
	route := from.Display
	if to.Display != "" {
		route = strings.TrimSpace(route + " - " + to.Display)
	}

	if req.TravelDate != "" || route != "" {
		lines = append(lines, Line{
			Label:    d.T("departure"),
			Value:    strings.TrimSpace(locale.FormatDate(req.TravelDate) + "  " + route),
			Fallback: from.Fallback || to.Fallback,
		})
	}
	if req.ReturnDate != "" {
		back := to.Display
		if from.Display != "" {
			back = strings.TrimSpace(back + " - " + from.Display)
		}
		lines = append(lines, Line{
			Label:    d.T("return"),
			Value:    strings.TrimSpace(locale.FormatDate(req.ReturnDate) + "  " + back),
			Fallback: from.Fallback || to.Fallback,
		})
	}
	if req.Airline != "" {
		airline := reference.ResolveAirline(req.Airline)
		lines = append(lines, Line{Label: d.T("airline"), Value: airline.Display, Fallback: airline.Fallback})
	}
	if req.PNR != "" {
		lines = append(lines, Line{Label: d.T("pnr"), Value: req.PNR})
	}
	return lines
}

func groupDetail(req *model.Request) string {
	var parts []string
	if req.PNR != "" {
		parts = append(parts, req.PNR)
	}
	if req.TravelDate != "" {
		parts = append(parts, locale.FormatDate(req.TravelDate))
	}
	return strings.Join(parts, " · ")
}

// labelled turns key/value pairs into "Label: value" lines, skipping empty
// values.
func labelled(d *Document, pairs ...string) []string {
	var out []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			continue
		}
		out = append(out, d.T(pairs[i])+": "+pairs[i+1])
	}
	return out
}
