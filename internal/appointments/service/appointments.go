package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
	appointmentserrors "travelbook/internal/appointments/errors"
	"travelbook/internal/appointments/repository"
	"travelbook/internal/appointments/validator"
	"travelbook/pkg/cache"
	"travelbook/pkg/config"
	apperrors "travelbook/pkg/errors"
	"travelbook/pkg/events"
	"travelbook/pkg/metrics"
	"travelbook/pkg/model"
	"travelbook/pkg/recordstore"
	"travelbook/pkg/sanitizer"
	"travelbook/pkg/status"
)

type AppointmentService interface {
	EnsureDaySlotsExist(ctx context.Context, date string) (int, error)
	DayBoard(ctx context.Context, date string) (*model.DayBoard, error)
	ToggleSlotStatus(ctx context.Context, slotID string) (*model.TimeSlot, error)
	CreateBooking(ctx context.Context, in *model.BookingCreate) (*model.Booking, error)
	CancelBooking(ctx context.Context, id string) (*CancelResult, error)
	UpdateBookingStatus(ctx context.Context, id string, in *model.BookingStatusUpdate) (*model.Booking, error)
	GetBooking(ctx context.Context, id string) (*model.Booking, error)
	ListBookings(ctx context.Context, date string, limit int, offset int64) ([]*model.Booking, int64, error)
}

// Snapshotter writes the recycling bin copy of a record about to be deleted.
type Snapshotter interface {
	Snapshot(ctx context.Context, table, itemType, originalID, name string, data any) (*model.DeletedItem, error)
}

type CancelResult struct {
	Booking       *model.Booking `json:"booking"`
	DeletedItemID string         `json:"deleted_item_id"`
}

type GeneratedPayload struct {
	Date    string `json:"date"`
	Created int    `json:"created"`
}

type appointmentService struct {
	slots     repository.SlotRepository
	bookings  repository.BookingRepository
	bin       Snapshotter
	validator *validator.AppointmentValidator
	grid      Grid
	board     BoardCache
	events    events.Publisher
	cfg       *config.Config
}

func NewAppointmentService(
	slots repository.SlotRepository,
	bookings repository.BookingRepository,
	bin Snapshotter,
	validator *validator.AppointmentValidator,
	grid Grid,
	board BoardCache,
	publisher events.Publisher,
	cfg *config.Config,
) AppointmentService {
	if publisher == nil {
		publisher = events.Discard{}
	}
	if board == nil {
		board = cache.New(nil, "board", 0, cfg.Log)
	}
	return &appointmentService{
		slots:     slots,
		bookings:  bookings,
		bin:       bin,
		validator: validator,
		grid:      grid,
		board:     board,
		events:    publisher,
		cfg:       cfg,
	}
}

// GetSlotStatus derives what a slot shows: booked when a confirmed booking
// holds its date and time, otherwise the stored open or closed flag.
func GetSlotStatus(slot *model.TimeSlot, bookings []*model.Booking) model.SlotStatus {
	if liveBooking(slot, bookings) != nil {
		return model.SlotBooked
	}
	if slot.Status == model.SlotClosed {
		return model.SlotClosed
	}
	return model.SlotOpen
}

func liveBooking(slot *model.TimeSlot, bookings []*model.Booking) *model.Booking {
	for _, b := range bookings {
		if b.Live() && b.Date == slot.Date && b.Time == slot.Time {
			return b
		}
	}
	return nil
}

func (s *appointmentService) EnsureDaySlotsExist(ctx context.Context, date string) (int, error) {
	if err := s.validator.ValidateDate(date); err != nil {
		return 0, apperrors.Validation("Invalid date", map[string]any{"error": err.Error()})
	}

	count, err := s.slots.CountByDate(ctx, date)
	if err != nil {
		return 0, recordstore.Translate(s.cfg.Log, err, "Time slot", "check day slots")
	}
	if count > 0 {
		return 0, nil
	}

	created, err := s.slots.InsertMany(ctx, s.grid.Build(date, time.Now().UTC()))
	if err != nil {
		if !recordstore.IsDuplicateKey(err) {
			return 0, recordstore.Translate(s.cfg.Log, err, "Time slot", "generate day slots")
		}
		// another request generated the same day
		s.cfg.Log.Debug("Day slots generated concurrently", "date", date, "created", created)
	}

	if created > 0 {
		metrics.SlotsGenerated.Add(float64(created))
		s.events.Publish(ctx, events.New(events.SlotsGenerated, date, GeneratedPayload{Date: date, Created: created}))
		s.cfg.Log.Info("Day slots generated", "date", date, "created", created)
	}
	return created, nil
}

func (s *appointmentService) DayBoard(ctx context.Context, date string) (*model.DayBoard, error) {
	if err := s.validator.ValidateDate(date); err != nil {
		return nil, apperrors.Validation("Invalid date", map[string]any{"error": err.Error()})
	}

	key, cacheable := s.board.Versioned(ctx, date)
	var cached model.DayBoard
	if cacheable && s.board.Get(ctx, key, &cached) {
		return &cached, nil
	}

	if _, err := s.EnsureDaySlotsExist(ctx, date); err != nil {
		return nil, err
	}

	var slots []*model.TimeSlot
	var bookings []*model.Booking
	var errSlots, errBookings error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		slots, errSlots = s.slots.FindByDate(ctx, date)
	}()

	go func() {
		defer wg.Done()
		bookings, errBookings = s.bookings.FindLive(ctx, date)
	}()

	wg.Wait()
	if errSlots != nil {
		return nil, recordstore.Translate(s.cfg.Log, errSlots, "Time slot", "load day slots")
	}
	if errBookings != nil {
		return nil, recordstore.Translate(s.cfg.Log, errBookings, "Booking", "load day bookings")
	}

	board := buildBoard(date, slots, bookings)
	if cacheable {
		s.board.Set(ctx, key, board)
	}

	return board, nil
}

func buildBoard(date string, slots []*model.TimeSlot, bookings []*model.Booking) *model.DayBoard {
	board := &model.DayBoard{Date: date, Slots: make([]model.SlotView, 0, len(slots))}
	for _, slot := range slots {
		view := model.SlotView{TimeSlot: *slot, LiveStatus: GetSlotStatus(slot, bookings)}
		if b := liveBooking(slot, bookings); b != nil {
			view.BookingID = b.ID
			view.CustomerName = b.CustomerName
		}
		switch view.LiveStatus {
		case model.SlotBooked:
			board.Booked++
		case model.SlotClosed:
			board.Closed++
		default:
			board.Open++
		}
		board.Slots = append(board.Slots, view)
	}
	return board
}

func (s *appointmentService) ToggleSlotStatus(ctx context.Context, slotID string) (*model.TimeSlot, error) {
	if slotID == "" {
		return nil, apperrors.InvalidInput("Time slot ID cannot be empty")
	}

	slot, err := s.slots.FindByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, appointmentserrors.ErrSlotNotFound) {
			return nil, apperrors.NotFoundWithID("Time slot", slotID)
		}
		return nil, recordstore.Translate(s.cfg.Log, err, "Time slot", "load time slot")
	}

	booking, err := s.bookings.FindLiveAt(ctx, slot.Date, slot.Time)
	switch {
	case err == nil:
		s.cfg.Log.Info("Toggle rejected, slot is booked",
			"slot_id", slot.ID,
			"booking_id", booking.ID,
		)
		return nil, &appointmentserrors.SlotBookedError{SlotID: slot.ID, BookingID: booking.ID}
	case !errors.Is(err, appointmentserrors.ErrBookingNotFound):
		return nil, recordstore.Translate(s.cfg.Log, err, "Booking", "check slot booking")
	}

	next := model.SlotClosed
	if slot.Status == model.SlotClosed {
		next = model.SlotOpen
	}

	if err := s.slots.SetStatus(ctx, slot.ID, slot.Status, next); err != nil {
		if errors.Is(err, appointmentserrors.ErrSlotChanged) {
			return nil, apperrors.Conflict("Time slot was changed by another request, reload and retry")
		}
		return nil, recordstore.Translate(s.cfg.Log, err, "Time slot", "toggle time slot")
	}

	slot.Status = next
	slot.UpdatedAt = time.Now().UTC()

	metrics.SlotToggles.WithLabelValues(string(next)).Inc()
	s.events.Publish(ctx, events.New(events.SlotToggled, slot.ID, slot))
	s.cfg.Log.Info("Time slot toggled", "id", slot.ID, "date", slot.Date, "time", slot.Time, "status", next)

	return slot, nil
}

func (s *appointmentService) CreateBooking(ctx context.Context, in *model.BookingCreate) (*model.Booking, error) {
	s.sanitize(in)
	if err := s.validator.ValidateCreate(in); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	if !s.grid.Contains(in.Time) {
		return nil, apperrors.Wrap(appointmentserrors.ErrOffGrid, apperrors.CodeValidation, "Booking validation failed", http.StatusUnprocessableEntity).
			WithDetails(map[string]any{"error": fmt.Sprintf("time: %s is not on the slot grid", in.Time)})
	}

	slot, err := s.slots.FindByDateTime(ctx, in.Date, in.Time)
	if err != nil {
		if errors.Is(err, appointmentserrors.ErrSlotNotFound) {
			return nil, apperrors.NotFound("Time slot").WithDetails(map[string]any{"date": in.Date, "time": in.Time})
		}
		return nil, recordstore.Translate(s.cfg.Log, err, "Time slot", "load time slot")
	}

	// re-read the live state right before the insert
	var live []*model.Booking
	existing, err := s.bookings.FindLiveAt(ctx, in.Date, in.Time)
	switch {
	case err == nil:
		live = append(live, existing)
	case !errors.Is(err, appointmentserrors.ErrBookingNotFound):
		return nil, recordstore.Translate(s.cfg.Log, err, "Booking", "check slot availability")
	}
	if GetSlotStatus(slot, live) != model.SlotOpen {
		metrics.BookingConflicts.Inc()
		return nil, apperrors.Conflict("Slot no longer available")
	}

	booking := &model.Booking{
		Date:         in.Date,
		Time:         in.Time,
		CustomerName: in.CustomerName,
		Phone:        in.Phone,
		Status:       status.Confirmed,
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		if errors.Is(err, appointmentserrors.ErrSlotUnavailable) {
			metrics.BookingConflicts.Inc()
			s.cfg.Log.Info("Booking lost the race for its slot", "date", in.Date, "time", in.Time)
			return nil, apperrors.Conflict("Slot no longer available")
		}
		return nil, recordstore.Translate(s.cfg.Log, err, "Booking", "create booking")
	}

	metrics.BookingsCreated.Inc()
	s.events.Publish(ctx, events.New(events.BookingCreated, booking.ID, booking))
	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"date", booking.Date,
		"time", booking.Time,
	)

	return booking, nil
}

// CancelBooking deletes the booking after snapshotting it, then reopens its
// slot. A failed reopen leaves the booking deleted and is reported as
// SLOT_REOPEN_FAILED.
func (s *appointmentService) CancelBooking(ctx context.Context, id string) (*CancelResult, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentserrors.ErrBookingNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		return nil, recordstore.Translate(s.cfg.Log, err, "Booking", "load booking")
	}

	var deleted *model.DeletedItem
	err = s.bookings.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		item, err := s.bin.Snapshot(txCtx, "bookings", "booking", booking.ID, bookingLabel(booking), booking)
		if err != nil {
			return err
		}
		if err := s.bookings.Delete(txCtx, booking.ID); err != nil {
			return err
		}
		deleted = item
		return nil
	})
	if err != nil {
		if errors.Is(err, appointmentserrors.ErrBookingNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		return nil, recordstore.Translate(s.cfg.Log, err, "Booking", "cancel booking")
	}

	metrics.BookingsCancelled.Inc()
	result := &CancelResult{Booking: booking, DeletedItemID: deleted.ID}
	s.events.Publish(ctx, events.New(events.BookingCancelled, booking.ID, booking))

	if booking.Live() {
		if err := s.reopenSlot(ctx, booking, deleted.ID); err != nil {
			return result, err
		}
	}

	s.cfg.Log.Info("Booking cancelled successfully",
		"id", booking.ID,
		"date", booking.Date,
		"time", booking.Time,
		"deleted_item_id", deleted.ID,
	)
	return result, nil
}

func (s *appointmentService) reopenSlot(ctx context.Context, booking *model.Booking, deletedItemID string) error {
	matched, err := s.slots.Reopen(ctx, booking.Date, booking.Time)
	if err != nil {
		metrics.SlotReopenFailures.Inc()
		s.cfg.Log.Error("Booking deleted but its slot could not be reopened",
			"booking_id", booking.ID,
			"deleted_item_id", deletedItemID,
			"date", booking.Date,
			"time", booking.Time,
			"error", err,
		)
		return apperrors.Wrap(err, apperrors.CodeSlotReopenFailed,
			"Booking was cancelled but its slot could not be reopened", 500,
		).WithDetails(map[string]any{
			"booking_id":      booking.ID,
			"deleted_item_id": deletedItemID,
			"date":            booking.Date,
			"time":            booking.Time,
		})
	}
	if matched == 0 {
		s.cfg.Log.Warn("No slot to reopen for cancelled booking",
			"booking_id", booking.ID,
			"date", booking.Date,
			"time", booking.Time,
		)
	}
	return nil
}

func (s *appointmentService) UpdateBookingStatus(ctx context.Context, id string, in *model.BookingStatusUpdate) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if err := s.validator.ValidateStatusUpdate(in); err != nil {
		return nil, apperrors.Validation("Invalid status update", map[string]any{"error": err.Error()})
	}

	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentserrors.ErrBookingNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		return nil, recordstore.Translate(s.cfg.Log, err, "Booking", "load booking")
	}

	next := status.Status(in.Status)
	if !status.IsValidTransition(booking.Status, next) {
		return nil, apperrors.Validation("Invalid status transition", map[string]any{
			"from":    booking.Status,
			"to":      next,
			"allowed": status.Allowed(booking.Status),
		})
	}
	if next == booking.Status {
		return booking, nil
	}

	if err := s.bookings.UpdateStatus(ctx, id, booking.Status, next); err != nil {
		switch {
		case errors.Is(err, appointmentserrors.ErrBookingNotFound):
			return nil, apperrors.Conflict("Booking was changed by another request, reload and retry")
		case errors.Is(err, appointmentserrors.ErrSlotUnavailable):
			return nil, apperrors.Conflict("Slot no longer available")
		}
		return nil, recordstore.Translate(s.cfg.Log, err, "Booking", "update booking status")
	}

	booking.Status = next
	booking.UpdatedAt = time.Now().UTC()
	s.events.Publish(ctx, events.New(events.BookingStatusChanged, booking.ID, booking))
	s.cfg.Log.Info("Booking status updated", "id", id, "status", next)

	return booking, nil
}

func (s *appointmentService) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentserrors.ErrBookingNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		return nil, recordstore.Translate(s.cfg.Log, err, "Booking", "retrieve booking")
	}
	return booking, nil
}

func (s *appointmentService) ListBookings(ctx context.Context, date string, limit int, offset int64) ([]*model.Booking, int64, error) {
	if date != "" {
		if err := s.validator.ValidateDate(date); err != nil {
			return nil, 0, apperrors.Validation("Invalid date", map[string]any{"error": err.Error()})
		}
	}
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.bookings.Count(ctx, date)
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.bookings.FindAll(ctx, date, limit, offset)
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, recordstore.Translate(s.cfg.Log, errCount, "Booking", "count bookings")
	}
	if errFind != nil {
		return nil, 0, recordstore.Translate(s.cfg.Log, errFind, "Booking", "list bookings")
	}

	return bookings, count, nil
}

// --- Helpers ---

func (s *appointmentService) sanitize(in *model.BookingCreate) {
	in.Date = sanitizer.TrimAndNormalize(in.Date)
	in.Time = sanitizer.TrimAndNormalize(in.Time)
	in.CustomerName = sanitizer.NormalizeName(in.CustomerName)
	in.Phone = sanitizer.SanitizePhone(in.Phone)
}

func bookingLabel(b *model.Booking) string {
	return fmt.Sprintf("%s %s %s", b.Date, b.Time, b.CustomerName)
}

// BoardCache holds day boards under a per-date generation. *cache.Cache
// satisfies it.
type BoardCache interface {
	Versioned(ctx context.Context, key string) (string, bool)
	Get(ctx context.Context, key string, dst any) bool
	Set(ctx context.Context, key string, value any)
}

// Invalidator retires cached entries by moving their key to a new generation.
// *cache.Cache satisfies it.
type Invalidator interface {
	Bump(ctx context.Context, keys ...string)
}

// InvalidateBoardOn retires cached day boards whenever an event changes a day.
func InvalidateBoardOn(bus *events.Bus, board Invalidator) func() {
	return bus.Subscribe(func(ctx context.Context, e events.Event) {
		switch data := e.Data.(type) {
		case *model.Booking:
			board.Bump(ctx, data.Date)
		case *model.TimeSlot:
			board.Bump(ctx, data.Date)
		case GeneratedPayload:
			board.Bump(ctx, data.Date)
		case *model.DeletedItem:
			if date, ok := data.ItemData["date"].(string); ok && data.OriginalTable == "bookings" {
				board.Bump(ctx, date)
			}
		}
	},
		events.SlotsGenerated,
		events.SlotToggled,
		events.BookingCreated,
		events.BookingCancelled,
		events.BookingStatusChanged,
		events.ItemRestored,
	)
}
