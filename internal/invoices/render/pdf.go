package render

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"travelbook/pkg/logger"

	"github.com/disintegration/imaging"
	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// Page geometry in millimetres.
const (
	pageWidth = 210.0
	margin    = 15.0
	content   = pageWidth - 2*margin

	QRX    = 160.0
	QRY    = 228.0
	QRSize = 35.0

	rowHeight   = 7.0
	textWidth   = QRX - margin - 5
	signatureY  = 250.0
	footerY     = 266.0
	pageNumberY = 288.0

	logoMaxW = 40.0
	logoMaxH = 20.0

	// Closing text ends above the signature line.
	closingLimit = signatureY - 4
	bodySize     = 9.0
	minBodySize  = 7.0
	taxSize      = 8.0
)

// fontFamily is embedded as TrueType so names like "Şükrü Yılmaz" keep
// every letter.
const fontFamily = "Go"

var ErrRender = errors.New("pdf engine failed")

type Renderer struct {
	log      *logger.Logger
	compress bool
}

func NewRenderer(log *logger.Logger) *Renderer {
	return &Renderer{log: log, compress: true}
}

type Output struct {
	Body  []byte
	Pages int
}

type column struct {
	key   string
	width float64
	align string
	value func(d *Document, r Row) string
}

type layout struct {
	pdf   *gofpdf.Fpdf
	doc   *Document
	logo  string
	logoW float64
	logoH float64
}

// PDF draws the document in two passes: the full layout on every page, then
// the QR code onto the final page at a fixed position.
func (r *Renderer) PDF(d *Document) (*Output, error) {
	pdf := r.newPDF()
	pdf.SetTitle(d.Title+" "+d.InvoiceNumber, true)

	l := &layout{pdf: pdf, doc: d}
	r.registerLogo(l)

	pages := d.Pages()
	for page := 1; page <= pages; page++ {
		pdf.AddPage()
		l.header()
		l.title()
		if !d.Group {
			l.flights()
		}
		l.table(page, page == pages)
		if d.Group {
			l.pageNumber(page, pages)
		}
	}
	l.closing()

	r.overlayQR(pdf, d.QRPayload)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	return &Output{Body: buf.Bytes(), Pages: pdf.PageCount()}, nil
}

func (r *Renderer) newPDF() *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(r.compress)
	pdf.SetCreator("travelbook", true)
	pdf.AddUTF8FontFromBytes(fontFamily, "", goregular.TTF)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", gobold.TTF)
	pdf.AddUTF8FontFromBytes(fontFamily, "I", goitalic.TTF)
	return pdf
}

// registerLogo decodes and fits the logo. A logo that cannot be read is
// left out.
func (r *Renderer) registerLogo(l *layout) {
	if len(l.doc.Logo) == 0 {
		return
	}

	img, err := imaging.Decode(bytes.NewReader(l.doc.Logo), imaging.AutoOrientation(true))
	if err != nil {
		r.log.Warn("Invoice logo could not be decoded, skipping", "error", err)
		return
	}
	img = imaging.Fit(img, 480, 240, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		r.log.Warn("Invoice logo could not be resized, skipping", "error", err)
		return
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	w, h := logoMaxW, logoMaxW*float64(b.Dy())/float64(b.Dx())
	if h > logoMaxH {
		h = logoMaxH
		w = logoMaxH * float64(b.Dx()) / float64(b.Dy())
	}

	l.pdf.RegisterImageOptionsReader("logo", gofpdf.ImageOptions{ImageType: "PNG"}, &buf)
	l.logo, l.logoW, l.logoH = "logo", w, h
}

func (r *Renderer) overlayQR(pdf *gofpdf.Fpdf, payload string) {
	if payload == "" {
		return
	}

	png, err := qrcode.Encode(payload, qrcode.Medium, 512)
	if err != nil {
		r.log.Warn("Invoice QR code could not be generated, skipping", "error", err)
		return
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.SetPage(pdf.PageCount())
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("qr", QRX, QRY, QRSize, QRSize, false, opts, 0, "")
}

func (l *layout) font(style string, size float64) {
	l.pdf.SetFont(fontFamily, style, size)
}

func (l *layout) header() {
	pdf := l.pdf
	x := margin
	if l.logo != "" {
		pdf.ImageOptions(l.logo, margin, margin, l.logoW, l.logoH, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		x += l.logoW + 4
	}

	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(x, margin)
	l.font("B", 13)
	pdf.CellFormat(95-x+margin, 6, l.doc.CompanyName, "", 2, "L", false, 0, "")
	l.font("", 8.5)
	for _, line := range l.doc.Identity {
		pdf.CellFormat(95-x+margin, 4, line, "", 2, "L", false, 0, "")
	}

	pdf.SetXY(125, margin)
	for _, line := range l.doc.Contact {
		pdf.CellFormat(pageWidth-margin-125, 4, line, "", 2, "R", false, 0, "")
	}

	pdf.SetDrawColor(170, 170, 170)
	pdf.SetLineWidth(0.3)
	pdf.Line(margin, 40, pageWidth-margin, 40)
}

func (l *layout) title() {
	pdf := l.pdf
	pdf.SetXY(margin, 46)
	l.font("B", 18)
	pdf.CellFormat(content/2, 9, l.doc.Title, "", 0, "L", false, 0, "")

	l.font("", 9.5)
	pdf.SetXY(margin+content/2, 46)
	pdf.CellFormat(content/2, 4.5, l.doc.T("invoice_no")+": "+l.doc.InvoiceNumber, "", 2, "R", false, 0, "")
	pdf.CellFormat(content/2, 4.5, l.doc.T("date")+": "+l.doc.Date(), "", 2, "R", false, 0, "")
	pdf.SetY(60)
}

func (l *layout) flights() {
	pdf := l.pdf
	for _, line := range l.doc.Flights {
		pdf.SetX(margin)
		l.font("B", 9.5)
		pdf.CellFormat(38, 5.5, line.Label+":", "", 0, "L", false, 0, "")
		l.font("", 9.5)
		value := line.Value
		if line.Fallback {
			value += " (" + l.doc.T("unverified") + ")"
		}
		pdf.CellFormat(content-38, 5.5, value, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func (l *layout) columns() []column {
	money := func(pick func(Row) decimal.Decimal) func(d *Document, r Row) string {
		return func(d *Document, r Row) string { return d.Money(pick(r)) }
	}
	if l.doc.Group {
		return []column{
			{key: "#", width: 8, align: "R"},
			{key: "customer", width: 52, align: "L", value: func(_ *Document, r Row) string { return r.Label }},
			{key: "reference", width: 36, align: "L", value: func(_ *Document, r Row) string { return r.Detail }},
			{key: "ticket", width: 21, align: "R", value: money(func(r Row) decimal.Decimal { return r.Ticket })},
			{key: "visa", width: 21, align: "R", value: money(func(r Row) decimal.Decimal { return r.Visa })},
			{key: "hotel", width: 21, align: "R", value: money(func(r Row) decimal.Decimal { return r.Hotel })},
			{key: "sum", width: 21, align: "R", value: money(func(r Row) decimal.Decimal { return r.Sum })},
		}
	}
	return []column{
		{key: "#", width: 8, align: "R"},
		{key: "passenger", width: 62, align: "L", value: func(_ *Document, r Row) string { return r.Label }},
		{key: "ticket_no", width: 35, align: "L", value: func(_ *Document, r Row) string { return r.Detail }},
		{key: "ticket", width: 25, align: "R", value: money(func(r Row) decimal.Decimal { return r.Ticket })},
		{key: "visa", width: 25, align: "R", value: money(func(r Row) decimal.Decimal { return r.Visa })},
		{key: "sum", width: 25, align: "R", value: money(func(r Row) decimal.Decimal { return r.Sum })},
	}
}

func (l *layout) table(page int, last bool) {
	pdf := l.pdf
	cols := l.columns()

	pdf.SetX(margin)
	pdf.SetFillColor(235, 235, 235)
	pdf.SetDrawColor(200, 200, 200)
	l.font("B", 9)
	for _, c := range cols {
		label := c.key
		if c.key != "#" {
			label = l.doc.T(c.key)
		}
		pdf.CellFormat(c.width, rowHeight, label, "B", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)

	l.font("", 9)
	offset := 0
	if l.doc.Group {
		offset = (page - 1) * RowsPerPage
	}
	for i, row := range l.doc.PageRows(page) {
		pdf.SetX(margin)
		for _, c := range cols {
			text := strconv.Itoa(offset + i + 1)
			if c.value != nil {
				text = c.value(l.doc, row)
			}
			pdf.CellFormat(c.width, rowHeight, l.fit(text, c.width), "B", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if !last {
		return
	}
	l.font("B", 9)
	pdf.SetX(margin)
	for i, c := range cols {
		text := ""
		switch {
		case i == 1:
			text = l.doc.Total.Label
		case c.value != nil && i > 2:
			text = c.value(l.doc, l.doc.Total)
		}
		pdf.CellFormat(c.width, rowHeight, text, "T", 0, c.align, false, 0, "")
	}
	pdf.Ln(-1)
}

// fit shortens text with an ellipsis until it fits width.
func (l *layout) fit(text string, width float64) string {
	limit := width - 2
	if l.pdf.GetStringWidth(text) <= limit {
		return text
	}
	r := []rune(text)
	for len(r) > 1 && l.pdf.GetStringWidth(string(r)+"...") > limit {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}

func (l *layout) closing() {
	l.closingText()

	pdf := l.pdf
	pdf.SetDrawColor(0, 0, 0)
	pdf.Line(margin, signatureY, margin+65, signatureY)
	pdf.SetXY(margin, signatureY+1)
	l.font("", 8)
	pdf.CellFormat(65, 4, l.doc.T("signature"), "", 0, "L", false, 0, "")

	l.footer()
}

// closingText draws payment, notice, confirmation and tax note, fitted into
// the space left above closingLimit.
func (l *layout) closingText() {
	pdf := l.pdf
	d := l.doc
	pdf.Ln(3)

	if d.ShowPayment {
		l.font("", 9.5)
		for _, p := range []struct {
			key   string
			value decimal.Decimal
		}{
			{"paid", d.Paid},
			{"outstanding", d.Outstanding},
		} {
			pdf.SetX(margin)
			pdf.CellFormat(content-30, 5.5, d.T(p.key)+":", "", 0, "R", false, 0, "")
			pdf.CellFormat(30, 5.5, d.Currency(p.value), "", 1, "R", false, 0, "")
		}
		pdf.Ln(3)
	}

	c := l.fitClosing(closingLimit - pdf.GetY())
	if len(c.notice) > 0 {
		l.notice(c.notice, c.size)
	}

	if len(c.confirmation) > 0 {
		l.font("", c.size)
		l.lines(margin, c.confirmation, textWidth, lineHeight(c.size))
		pdf.Ln(2)
	}

	l.font("I", taxSize)
	pdf.SetTextColor(90, 90, 90)
	l.lines(margin, c.tax, textWidth, lineHeight(taxSize))
	pdf.SetTextColor(0, 0, 0)
}

// closingBlock is the closing text wrapped at one font size.
type closingBlock struct {
	size         float64
	notice       []string
	confirmation []string
	tax          []string
}

func lineHeight(size float64) float64 {
	return size / 2
}

func noticeHeight(lines int, size float64) float64 {
	return float64(lines)*lineHeight(size) + 7
}

func (c closingBlock) height() float64 {
	h := float64(len(c.tax)) * lineHeight(taxSize)
	if len(c.notice) > 0 {
		h += noticeHeight(len(c.notice), c.size) + 3
	}
	if len(c.confirmation) > 0 {
		h += float64(len(c.confirmation))*lineHeight(c.size) + 2
	}
	return h
}

// fitClosing shrinks the notice and confirmation down to minBodySize. Lines
// that still do not fit are cut, the confirmation first, then the notice
// down to one line.
func (l *layout) fitClosing(space float64) closingBlock {
	d := l.doc
	var c closingBlock
	for size := bodySize; size >= minBodySize; size -= 0.5 {
		c = closingBlock{
			size:         size,
			notice:       l.wrap(d.Notice, "", size, textWidth-4),
			confirmation: l.wrap(d.Confirmation, "", size, textWidth),
			tax:          l.wrap(d.TaxNote, "I", taxSize, textWidth),
		}
		if c.height() <= space {
			return c
		}
	}

	notice, confirmation := len(c.notice), len(c.confirmation)
	for c.height() > space && len(c.confirmation) > 0 {
		c.confirmation = c.confirmation[:len(c.confirmation)-1]
	}
	for c.height() > space && len(c.notice) > 1 {
		c.notice = c.notice[:len(c.notice)-1]
	}
	c.notice = ellipsize(c.notice, notice)
	c.confirmation = ellipsize(c.confirmation, confirmation)
	return c
}

func (l *layout) wrap(text, style string, size, width float64) []string {
	if text == "" {
		return nil
	}
	l.font(style, size)
	return l.pdf.SplitText(text, width)
}

// ellipsize marks the last kept line when lines were cut from a paragraph
// of total lines.
func ellipsize(lines []string, total int) []string {
	if len(lines) == 0 || len(lines) == total {
		return lines
	}
	last := len(lines) - 1
	lines[last] = strings.TrimRight(lines[last], " ") + " …"
	return lines
}

func (l *layout) lines(x float64, lines []string, width, h float64) {
	l.pdf.SetX(x)
	for _, line := range lines {
		l.pdf.CellFormat(width, h, line, "", 2, "L", false, 0, "")
	}
}

func (l *layout) notice(lines []string, size float64) {
	pdf := l.pdf
	h := noticeHeight(len(lines), size)

	x, y := margin, pdf.GetY()
	pdf.SetDrawColor(200, 30, 30)
	pdf.SetLineWidth(0.5)
	pdf.Rect(x, y, textWidth, h, "D")
	pdf.SetLineWidth(0.3)

	pdf.SetXY(x+2, y+1.5)
	l.font("B", size)
	pdf.SetTextColor(200, 30, 30)
	pdf.CellFormat(textWidth-4, 4, l.doc.T("notice"), "", 2, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	l.font("", size)
	l.lines(x+2, lines, textWidth-4, lineHeight(size))
	pdf.SetY(y + h + 3)
}

func (l *layout) footer() {
	pdf := l.pdf
	pdf.SetDrawColor(170, 170, 170)
	pdf.Line(margin, footerY, pageWidth-margin, footerY)

	l.font("", 7.5)
	pdf.SetTextColor(60, 60, 60)
	width := content / 3
	for i, col := range l.doc.Footer {
		pdf.SetXY(margin+float64(i)*width, footerY+2)
		for _, line := range col {
			pdf.CellFormat(width, 3.5, l.fit(line, width), "", 2, "L", false, 0, "")
		}
	}
	pdf.SetTextColor(0, 0, 0)
}

func (l *layout) pageNumber(page, pages int) {
	l.font("", 8)
	l.pdf.SetXY(margin, pageNumberY)
	l.pdf.CellFormat(content, 4, l.doc.T("page")+" "+PageLabel(page, pages), "", 0, "R", false, 0, "")
}
