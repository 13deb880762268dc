package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"travelbook/internal/finance"
	requestserrors "travelbook/internal/requests/errors"
	"travelbook/internal/requests/repository"
	"travelbook/internal/requests/validator"
	"travelbook/pkg/config"
	apperrors "travelbook/pkg/errors"
	"travelbook/pkg/events"
	"travelbook/pkg/model"
	"travelbook/pkg/recordstore"
	"travelbook/pkg/sanitizer"
	"travelbook/pkg/status"
)

type RequestService interface {
	Create(ctx context.Context, in *model.RequestCreate) (*model.Request, error)
	GetByID(ctx context.Context, id string) (*model.Request, error)
	GetAll(ctx context.Context, status string, limit int, offset int64) ([]*model.Request, int64, error)
	Update(ctx context.Context, id string, updates *model.RequestUpdate) (*model.Request, error)
	Delete(ctx context.Context, id string) (string, error)
}

// Snapshotter writes the recycling bin copy of a record about to be deleted.
type Snapshotter interface {
	Snapshot(ctx context.Context, table, itemType, originalID, name string, data any) (*model.DeletedItem, error)
}

type requestService struct {
	repo      repository.RequestRepository
	bin       Snapshotter
	validator *validator.RequestValidator
	events    events.Publisher
	cfg       *config.Config
}

func NewRequestService(
	repo repository.RequestRepository,
	bin Snapshotter,
	validator *validator.RequestValidator,
	publisher events.Publisher,
	cfg *config.Config,
) RequestService {
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &requestService{
		repo:      repo,
		bin:       bin,
		validator: validator,
		events:    publisher,
		cfg:       cfg,
	}
}

func (s *requestService) Create(ctx context.Context, in *model.RequestCreate) (*model.Request, error) {
	req := &model.Request{
		CustomerName:     in.CustomerName,
		Phone:            in.Phone,
		Email:            in.Email,
		Passengers:       in.Passengers,
		Airline:          in.Airline,
		PNR:              in.PNR,
		DepartureAirport: in.DepartureAirport,
		ArrivalAirport:   in.ArrivalAirport,
		TravelDate:       in.TravelDate,
		ReturnDate:       in.ReturnDate,
		Notice:           in.Notice,
		InvoiceNumber:    in.InvoiceNumber,
		Status:           status.Status(in.Status),
	}
	s.sanitize(req)
	s.applyDefaults(req)

	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Request validation failed", "error", err)
		return nil, apperrors.Validation("Request validation failed", map[string]any{"error": err.Error()})
	}

	in.Input.Merge(&req.Values)
	req.Values, _ = finance.Apply(req.Values, in.Input.Fields())
	req.Values = finance.Fill(req.Values)

	if err := s.repo.Create(ctx, req); err != nil {
		return nil, recordstore.Translate(s.cfg.Log, err, "Request", "create request")
	}

	s.events.Publish(ctx, events.New(events.RequestCreated, req.ID, req))
	s.cfg.Log.Info("Request created successfully",
		"id", req.ID,
		"status", req.Status,
		"total_amount_due", req.TotalAmountDue.String(),
	)

	return req, nil
}

func (s *requestService) GetByID(ctx context.Context, id string) (*model.Request, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Request ID cannot be empty")
	}

	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, requestserrors.ErrRequestNotFound) {
			return nil, apperrors.NotFoundWithID("Request", id)
		}
		return nil, recordstore.Translate(s.cfg.Log, err, "Request", "retrieve request")
	}

	req.Values = finance.Fill(req.Values)
	return req, nil
}

func (s *requestService) GetAll(ctx context.Context, statusFilter string, limit int, offset int64) ([]*model.Request, int64, error) {
	if statusFilter != "" && !status.Status(statusFilter).IsValid() {
		return nil, 0, apperrors.Validation("Invalid status filter", map[string]any{
			"status":  statusFilter,
			"allowed": status.All,
		})
	}
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var reqs []*model.Request
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, statusFilter)
	}()

	go func() {
		defer wg.Done()
		reqs, errFind = s.repo.FindAll(ctx, statusFilter, limit, offset)
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, recordstore.Translate(s.cfg.Log, errCount, "Request", "count requests")
	}
	if errFind != nil {
		return nil, 0, recordstore.Translate(s.cfg.Log, errFind, "Request", "list requests")
	}

	for _, req := range reqs {
		req.Values = finance.Fill(req.Values)
	}
	return reqs, count, nil
}

// Update merges the supplied fields, recomputes the totals they feed and
// persists edits and totals in a single update.
func (s *requestService) Update(ctx context.Context, id string, updates *model.RequestUpdate) (*model.Request, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Request ID cannot be empty")
	}

	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, requestserrors.ErrRequestNotFound) {
			return nil, apperrors.NotFoundWithID("Request", id)
		}
		return nil, recordstore.Translate(s.cfg.Log, err, "Request", "load request for update")
	}

	patch := s.merge(req, updates)

	if updates.Status != nil {
		next := status.Status(*updates.Status)
		if !status.IsValidTransition(req.Status, next) {
			return nil, apperrors.Validation("Invalid status transition", map[string]any{
				"from":    req.Status,
				"to":      next,
				"allowed": status.Allowed(req.Status),
			})
		}
		if next != req.Status {
			req.Status = next
			patch["status"] = next
		}
	}

	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Request update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Request validation failed", map[string]any{"error": err.Error()})
	}

	changed := updates.Input.Merge(&req.Values)
	values, recomputed := finance.Apply(req.Values, changed)
	req.Values = values
	for f := range changed {
		patch[string(f)] = values.Get(f)
	}
	for _, f := range recomputed {
		patch[string(f)] = values.Get(f)
	}

	if len(patch) == 0 {
		req.Values = finance.Fill(req.Values)
		return req, nil
	}

	req.UpdatedAt = time.Now().UTC()
	patch["updated_at"] = req.UpdatedAt

	if err := s.repo.Update(ctx, id, patch); err != nil {
		if errors.Is(err, requestserrors.ErrRequestNotFound) {
			return nil, apperrors.NotFoundWithID("Request", id)
		}
		return nil, recordstore.Translate(s.cfg.Log, err, "Request", "update request")
	}

	req.Values = finance.Fill(req.Values)
	s.events.Publish(ctx, events.New(events.RequestUpdated, req.ID, req))
	s.cfg.Log.Info("Request updated successfully",
		"id", id,
		"fields", len(patch)-1,
		"recomputed", len(recomputed),
	)

	return req, nil
}

// Delete snapshots the request into the recycling bin and removes it in one
// transaction. It returns the deleted item id.
func (s *requestService) Delete(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", apperrors.InvalidInput("Request ID cannot be empty")
	}

	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, requestserrors.ErrRequestNotFound) {
			return "", apperrors.NotFoundWithID("Request", id)
		}
		return "", recordstore.Translate(s.cfg.Log, err, "Request", "load request for deletion")
	}

	var deletedID string
	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		item, err := s.bin.Snapshot(txCtx, "requests", "request", req.ID, requestLabel(req), req)
		if err != nil {
			return err
		}
		if err := s.repo.Delete(txCtx, req.ID); err != nil {
			return err
		}
		deletedID = item.ID
		return nil
	})
	if err != nil {
		if errors.Is(err, requestserrors.ErrRequestNotFound) {
			return "", apperrors.NotFoundWithID("Request", id)
		}
		return "", recordstore.Translate(s.cfg.Log, err, "Request", "delete request")
	}

	s.events.Publish(ctx, events.New(events.RequestDeleted, req.ID, req))
	s.cfg.Log.Info("Request deleted successfully", "id", id, "deleted_item_id", deletedID)

	return deletedID, nil
}

// --- Helpers ---

func (s *requestService) applyDefaults(req *model.Request) {
	if req.Status == "" {
		req.Status = status.Draft
	}
}

func (s *requestService) sanitize(req *model.Request) {
	req.CustomerName = sanitizer.NormalizeName(req.CustomerName)
	req.Phone = sanitizePhone(req.Phone)
	req.Email = sanitizer.NormalizeEmail(req.Email)
	req.Passengers = sanitizePassengers(req.Passengers)
	req.Airline = sanitizer.TrimAndNormalize(req.Airline)
	req.PNR = sanitizer.NormalizeCode(req.PNR)
	req.DepartureAirport = sanitizer.TrimAndNormalize(req.DepartureAirport)
	req.ArrivalAirport = sanitizer.TrimAndNormalize(req.ArrivalAirport)
	req.TravelDate = sanitizer.TrimAndNormalize(req.TravelDate)
	req.ReturnDate = sanitizer.TrimAndNormalize(req.ReturnDate)
	req.Notice = sanitizer.TrimAndNormalize(req.Notice)
	req.InvoiceNumber = sanitizer.TrimAndNormalize(req.InvoiceNumber)
}

func sanitizePhone(phone string) string {
	if sanitizer.TrimAndNormalize(phone) == "" {
		return ""
	}
	return sanitizer.SanitizePhone(phone)
}

func sanitizePassengers(in []model.Passenger) []model.Passenger {
	out := make([]model.Passenger, 0, len(in))
	for _, p := range in {
		p.Name = sanitizer.NormalizeName(p.Name)
		p.TicketNumber = sanitizer.NormalizeCode(p.TicketNumber)
		if p.Name == "" && p.TicketNumber == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// merge copies the supplied identity fields into req and records them in
// the returned patch.
func (s *requestService) merge(req *model.Request, u *model.RequestUpdate) recordstore.Patch {
	patch := recordstore.Patch{}

	set := func(field string, src *string, dst *string, clean func(string) string) {
		if src == nil {
			return
		}
		v := clean(*src)
		if v == *dst {
			return
		}
		*dst = v
		patch[field] = v
	}

	set("customer_name", u.CustomerName, &req.CustomerName, sanitizer.NormalizeName)
	set("phone", u.Phone, &req.Phone, sanitizePhone)
	set("email", u.Email, &req.Email, sanitizer.NormalizeEmail)
	set("airline", u.Airline, &req.Airline, sanitizer.TrimAndNormalize)
	set("pnr", u.PNR, &req.PNR, sanitizer.NormalizeCode)
	set("departure_airport", u.DepartureAirport, &req.DepartureAirport, sanitizer.TrimAndNormalize)
	set("arrival_airport", u.ArrivalAirport, &req.ArrivalAirport, sanitizer.TrimAndNormalize)
	set("travel_date", u.TravelDate, &req.TravelDate, sanitizer.TrimAndNormalize)
	set("return_date", u.ReturnDate, &req.ReturnDate, sanitizer.TrimAndNormalize)
	set("notice", u.Notice, &req.Notice, sanitizer.TrimAndNormalize)
	set("invoice_number", u.InvoiceNumber, &req.InvoiceNumber, sanitizer.TrimAndNormalize)

	if u.Passengers != nil {
		req.Passengers = sanitizePassengers(*u.Passengers)
		patch["passengers"] = req.Passengers
	}

	return patch
}

func requestLabel(req *model.Request) string {
	if req.InvoiceNumber != "" {
		return fmt.Sprintf("%s (%s)", req.CustomerName, req.InvoiceNumber)
	}
	return req.CustomerName
}
