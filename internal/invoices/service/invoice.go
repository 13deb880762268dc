package service

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
	invoiceserrors "travelbook/internal/invoices/errors"
	"travelbook/internal/invoices/render"
	"travelbook/internal/invoices/repository"
	"travelbook/internal/invoices/validator"
	"travelbook/pkg/cache"
	"travelbook/pkg/config"
	apperrors "travelbook/pkg/errors"
	"travelbook/pkg/locale"
	"travelbook/pkg/metrics"
	"travelbook/pkg/model"
	"travelbook/pkg/recordstore"
	"travelbook/pkg/retry"
	"travelbook/pkg/sanitizer"
	"travelbook/pkg/sealer"
	"travelbook/pkg/status"

	"github.com/disintegration/imaging"
	"github.com/shopspring/decimal"
)

const (
	MaxGroupSize = 100

	invoicesPath = "/api/v1/invoices"
)

type Mode string

const (
	ModeDownload Mode = "download"
	ModePrint    Mode = "print"
	ModePreview  Mode = "preview"
)

var reFilename = regexp.MustCompile(`[^0-9A-Za-z_-]+`)

type RenderRequest struct {
	RequestID      string
	Lang           string
	AcceptLanguage string
	Mode           Mode
	Confirmation   bool
}

type GroupRequest struct {
	RequestIDs     []string `json:"request_ids"`
	InvoiceNumber  string   `json:"invoice_number"`
	Lang           string   `json:"lang"`
	Mode           Mode     `json:"mode"`
	Confirmation   bool     `json:"confirmation"`
	AcceptLanguage string   `json:"-"`
}

// Rendered is a finished invoice ready to be written to the client.
type Rendered struct {
	Body        []byte
	Filename    string
	Disposition string
	Pages       int
}

// Verification is what a scanned QR code resolves to.
type Verification struct {
	OrganizationID string          `json:"organization_id"`
	InvoiceNumber  string          `json:"invoice_number"`
	RequestID      string          `json:"request_id,omitempty"`
	Group          bool            `json:"group"`
	CustomerName   string          `json:"customer_name,omitempty"`
	TotalAmountDue decimal.Decimal `json:"total_amount_due"`
	Status         status.Status   `json:"status,omitempty"`
}

// RequestReader is the read side of the request ledger.
type RequestReader interface {
	GetByID(ctx context.Context, id string) (*model.Request, error)
}

type InvoiceService interface {
	GetSettings(ctx context.Context) (*model.InvoiceSettings, error)
	UpdateSettings(ctx context.Context, in *model.InvoiceSettings) (*model.InvoiceSettings, error)
	RenderRequest(ctx context.Context, in RenderRequest) (*Rendered, error)
	Preview(ctx context.Context, in RenderRequest) ([]byte, error)
	RenderGroup(ctx context.Context, in *GroupRequest) (*Rendered, error)
	PreviewGroup(ctx context.Context, in *GroupRequest) ([]byte, error)
	Verify(ctx context.Context, token string) (*Verification, error)
	WarmUp(ctx context.Context)
}

type invoiceService struct {
	repo      repository.SettingsRepository
	requests  RequestReader
	validator *validator.SettingsValidator
	renderer  *render.Renderer
	sealer    *sealer.Sealer
	settings  *cache.Cache
	orgOf     func(ctx context.Context) string
	cfg       *config.Config
}

func NewInvoiceService(
	repo repository.SettingsRepository,
	requests RequestReader,
	validator *validator.SettingsValidator,
	renderer *render.Renderer,
	sealer *sealer.Sealer,
	settings *cache.Cache,
	orgOf func(ctx context.Context) string,
	cfg *config.Config,
) InvoiceService {
	if orgOf == nil {
		orgOf = func(context.Context) string { return config.DefaultOrganizationID }
	}
	return &invoiceService{
		repo:      repo,
		requests:  requests,
		validator: validator,
		renderer:  renderer,
		sealer:    sealer,
		settings:  settings,
		orgOf:     orgOf,
		cfg:       cfg,
	}
}

func (s *invoiceService) GetSettings(ctx context.Context) (*model.InvoiceSettings, error) {
	return s.settingsFor(ctx, s.orgOf(ctx))
}

// settingsFor falls back to the default profile when the organization has
// saved nothing yet.
func (s *invoiceService) settingsFor(ctx context.Context, org string) (*model.InvoiceSettings, error) {
	var cached model.InvoiceSettings
	if s.settings.Get(ctx, org, &cached) {
		return &cached, nil
	}

	var settings *model.InvoiceSettings
	err := retry.Do(ctx, s.retryPolicy(), func(ctx context.Context) error {
		var err error
		settings, err = s.repo.Get(ctx, org)
		return err
	})
	if err != nil {
		if errors.Is(err, invoiceserrors.ErrSettingsNotFound) {
			return repository.DefaultSettings(org), nil
		}
		return nil, recordstore.Translate(s.cfg.Log, err, "InvoiceSettings", "retrieve invoice settings")
	}

	s.settings.Set(ctx, org, settings)
	return settings, nil
}

func (s *invoiceService) UpdateSettings(ctx context.Context, in *model.InvoiceSettings) (*model.InvoiceSettings, error) {
	org := s.orgOf(ctx)
	in.OrganizationID = org
	s.sanitize(in)

	if err := s.validator.ValidateSettings(in); err != nil {
		s.cfg.Log.Warn("Invoice settings validation failed", "organization_id", org, "error", err)
		return nil, apperrors.Validation("Invoice settings validation failed", map[string]any{"error": err.Error()})
	}
	if len(in.Logo) > 0 {
		if _, err := imaging.Decode(bytes.NewReader(in.Logo)); err != nil {
			s.cfg.Log.Warn("Invoice logo rejected", "organization_id", org, "error", err)
			return nil, apperrors.Validation("Invoice settings validation failed", map[string]any{
				"error": invoiceserrors.ErrLogoUnreadable.Error(),
				"field": "logo",
			})
		}
	}

	if err := s.repo.Upsert(ctx, in); err != nil {
		return nil, recordstore.Translate(s.cfg.Log, err, "InvoiceSettings", "save invoice settings")
	}
	s.settings.Delete(ctx, org)

	s.cfg.Log.Info("Invoice settings saved successfully",
		"organization_id", org,
		"has_logo", len(in.Logo) > 0,
		"show_qr", in.ShowQR,
	)
	return in, nil
}

func (s *invoiceService) sanitize(in *model.InvoiceSettings) {
	for _, f := range []*string{
		&in.CompanyName, &in.OwnerName, &in.Street, &in.PostalCode, &in.City,
		&in.Country, &in.Phone, &in.TaxID, &in.BankName, &in.AccountHolder,
	} {
		*f = sanitizer.TrimAndNormalize(*f)
	}
	in.Email = sanitizer.NormalizeEmail(in.Email)
	in.Website = sanitizer.NormalizeURL(in.Website)
	in.IBAN = sanitizer.NormalizeIBAN(in.IBAN)
	in.BIC = sanitizer.NormalizeCode(in.BIC)
}

func (s *invoiceService) RenderRequest(ctx context.Context, in RenderRequest) (*Rendered, error) {
	mode, err := parseMode(in.Mode)
	if err != nil {
		return nil, err
	}

	req, settings, err := s.load(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}

	lang := s.language(in.Lang, in.AcceptLanguage)
	doc := render.Single(req, settings, render.Options{Lang: lang, Confirmation: in.Confirmation})
	s.attachQR(doc, settings, sealer.InvoiceRef{
		OrganizationID: settings.OrganizationID,
		RequestID:      req.ID,
		InvoiceNumber:  doc.InvoiceNumber,
	})

	return s.pdf(doc, "single", mode)
}

func (s *invoiceService) Preview(ctx context.Context, in RenderRequest) ([]byte, error) {
	req, settings, err := s.load(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}

	lang := s.language(in.Lang, in.AcceptLanguage)
	doc := render.Single(req, settings, render.Options{Lang: lang, Confirmation: in.Confirmation})

	base := invoicesPath + "/requests/" + url.PathEscape(req.ID)
	query := func(mode Mode, l locale.Language) string {
		v := url.Values{}
		if mode != "" {
			v.Set("mode", string(mode))
		}
		v.Set("lang", string(l))
		if in.Confirmation {
			v.Set("confirmation", "true")
		}
		return v.Encode()
	}

	return s.preview(doc, "single", render.Links{
		PDF:      base + "?" + query(ModePrint, lang),
		Download: base + "?" + query(ModeDownload, lang),
		Switch:   base + "/preview?" + query("", lang.Other()),
	})
}

func (s *invoiceService) RenderGroup(ctx context.Context, in *GroupRequest) (*Rendered, error) {
	mode, err := parseMode(in.Mode)
	if err != nil {
		return nil, err
	}

	doc, settings, _, err := s.group(ctx, in)
	if err != nil {
		return nil, err
	}
	s.attachQR(doc, settings, sealer.InvoiceRef{
		OrganizationID: settings.OrganizationID,
		InvoiceNumber:  doc.InvoiceNumber,
	})

	return s.pdf(doc, "group", mode)
}

// PreviewGroup links back to GET /group with the resolved invoice number so
// the printed PDF carries the same number as the preview.
func (s *invoiceService) PreviewGroup(ctx context.Context, in *GroupRequest) ([]byte, error) {
	doc, _, ids, err := s.group(ctx, in)
	if err != nil {
		return nil, err
	}

	base := invoicesPath + "/group"
	query := func(mode Mode, l locale.Language) string {
		v := url.Values{}
		v.Set("ids", strings.Join(ids, ","))
		v.Set("number", doc.InvoiceNumber)
		v.Set("mode", string(mode))
		v.Set("lang", string(l))
		if in.Confirmation {
			v.Set("confirmation", "true")
		}
		return v.Encode()
	}

	return s.preview(doc, "group", render.Links{
		PDF:      base + "?" + query(ModePrint, doc.Lang),
		Download: base + "?" + query(ModeDownload, doc.Lang),
		Switch:   base + "?" + query(ModePreview, doc.Lang.Other()),
	})
}

func (s *invoiceService) group(ctx context.Context, in *GroupRequest) (*render.Document, *model.InvoiceSettings, []string, error) {
	ids := sanitizer.NormalizeStringSlice(in.RequestIDs, strings.TrimSpace)
	if len(ids) == 0 || len(ids) > MaxGroupSize {
		return nil, nil, nil, apperrors.Validation("A group invoice needs between 1 and 100 requests", map[string]any{
			"request_ids": len(ids),
			"max":         MaxGroupSize,
		})
	}

	number := sanitizer.TrimAndNormalize(in.InvoiceNumber)
	if len(number) > 40 {
		return nil, nil, nil, apperrors.Validation("Invoice number must be at most 40 characters", map[string]any{"invoice_number": number})
	}
	if number == "" {
		number = "S-" + time.Now().UTC().Format("20060102-150405")
	}

	reqs := make([]*model.Request, 0, len(ids))
	for _, id := range ids {
		req, err := s.requests.GetByID(ctx, id)
		if err != nil {
			return nil, nil, nil, err
		}
		reqs = append(reqs, req)
	}

	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	lang := s.language(in.Lang, in.AcceptLanguage)
	doc := render.Group(reqs, number, settings, render.Options{Lang: lang, Confirmation: in.Confirmation})
	return doc, settings, ids, nil
}

func (s *invoiceService) preview(doc *render.Document, kind string, links render.Links) ([]byte, error) {
	body, err := render.Preview(doc, links)
	if err != nil {
		metrics.InvoiceRenderFailures.Inc()
		s.cfg.Log.Error("Invoice preview failed", "kind", kind, "invoice_number", doc.InvoiceNumber, "error", err)
		return nil, apperrors.RenderFailed("Invoice preview could not be rendered, please retry", err)
	}

	metrics.InvoicesRendered.WithLabelValues(kind, string(ModePreview), string(doc.Lang)).Inc()
	return body, nil
}

func (s *invoiceService) Verify(ctx context.Context, token string) (*Verification, error) {
	unverified := apperrors.New(apperrors.CodeNotFound, "Invoice could not be verified", http.StatusNotFound)

	ref, err := s.sealer.Open(token)
	if err != nil {
		s.cfg.Log.Warn("Invoice token rejected", "error", err)
		return nil, unverified
	}

	v := &Verification{
		OrganizationID: ref.OrganizationID,
		InvoiceNumber:  ref.InvoiceNumber,
		RequestID:      ref.RequestID,
		Group:          ref.RequestID == "",
	}
	if v.Group {
		return v, nil
	}

	req, err := s.requests.GetByID(ctx, ref.RequestID)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeNotFound) {
			return nil, unverified
		}
		return nil, err
	}
	v.CustomerName = req.CustomerName
	v.TotalAmountDue = req.TotalAmountDue
	v.Status = req.Status
	return v, nil
}

// WarmUp primes the default organization's settings and runs one render so
// the first invoice request does not pay for it.
func (s *invoiceService) WarmUp(ctx context.Context) {
	start := time.Now()

	settings, err := s.settingsFor(ctx, config.DefaultOrganizationID)
	if err != nil {
		s.cfg.Log.Warn("Invoice warm-up could not load settings", "error", err)
		return
	}

	doc := render.Group(nil, "WARMUP", settings, render.Options{Lang: s.language("", "")})
	if _, err := s.renderer.PDF(doc); err != nil {
		s.cfg.Log.Warn("Invoice warm-up render failed", "error", err)
		return
	}
	s.cfg.Log.Info("Invoice renderer warmed up", "duration", time.Since(start))
}

func (s *invoiceService) load(ctx context.Context, requestID string) (*model.Request, *model.InvoiceSettings, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, nil, err
	}
	return req, settings, nil
}

func (s *invoiceService) pdf(doc *render.Document, kind string, mode Mode) (*Rendered, error) {
	out, err := s.renderer.PDF(doc)
	if err != nil {
		metrics.InvoiceRenderFailures.Inc()
		s.cfg.Log.Error("Invoice render failed",
			"kind", kind,
			"invoice_number", doc.InvoiceNumber,
			"error", err,
		)
		return nil, apperrors.RenderFailed("Invoice could not be rendered, please retry", err)
	}

	metrics.InvoicesRendered.WithLabelValues(kind, string(mode), string(doc.Lang)).Inc()
	s.cfg.Log.Info("Invoice rendered successfully",
		"kind", kind,
		"invoice_number", doc.InvoiceNumber,
		"pages", out.Pages,
		"lang", doc.Lang,
	)

	disposition := "attachment"
	if mode == ModePrint {
		disposition = "inline"
	}
	return &Rendered{
		Body:        out.Body,
		Filename:    filename(doc),
		Disposition: disposition,
		Pages:       out.Pages,
	}, nil
}

func (s *invoiceService) attachQR(doc *render.Document, settings *model.InvoiceSettings, ref sealer.InvoiceRef) {
	if !settings.ShowQR || s.sealer == nil {
		return
	}
	token, err := s.sealer.Seal(ref)
	if err != nil {
		s.cfg.Log.Warn("Invoice QR token could not be sealed, skipping", "invoice_number", ref.InvoiceNumber, "error", err)
		return
	}
	doc.QRPayload = s.cfg.PublicBaseURL + invoicesPath + "/verify/" + token
}

func (s *invoiceService) language(lang, acceptLanguage string) locale.Language {
	fallback := locale.Parse(s.cfg.InvoiceDefaultLanguage, locale.German)
	if lang != "" {
		return locale.Parse(lang, fallback)
	}
	if acceptLanguage != "" {
		return locale.FromAcceptLanguage(acceptLanguage, fallback)
	}
	return fallback
}

func (s *invoiceService) retryPolicy() retry.Policy {
	p := retry.DefaultPolicy()
	if s.cfg.RetryAttempts > 0 {
		p.Attempts = s.cfg.RetryAttempts
	}
	if s.cfg.RetryInitialDelay > 0 {
		p.InitialDelay = s.cfg.RetryInitialDelay
	}
	return p
}

func parseMode(m Mode) (Mode, error) {
	switch m {
	case "":
		return ModeDownload, nil
	case ModeDownload, ModePrint:
		return m, nil
	}
	return "", apperrors.Validation("Invalid invoice mode", map[string]any{
		"mode":    m,
		"allowed": []Mode{ModeDownload, ModePrint},
	})
}

func filename(doc *render.Document) string {
	prefix := "invoice"
	if doc.Group {
		prefix = "group-invoice"
	}
	number := strings.Trim(reFilename.ReplaceAllString(doc.InvoiceNumber, "-"), "-")
	if number == "" {
		return prefix + ".pdf"
	}
	return prefix + "-" + number + ".pdf"
}
