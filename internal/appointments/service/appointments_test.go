package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	appointmentserrors "travelbook/internal/appointments/errors"
	"travelbook/internal/appointments/repository"
	"travelbook/internal/appointments/validator"
	recyclerepo "travelbook/internal/recyclebin/repository"
	"travelbook/pkg/config"
	apperrors "travelbook/pkg/errors"
	"travelbook/pkg/events"
	"travelbook/pkg/logger"
	"travelbook/pkg/model"
	"travelbook/pkg/recordstore"
	"travelbook/pkg/recordstore/recordstoretest"
	"travelbook/pkg/status"
)

const testDate = "2025-06-10"

type recorder struct {
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, e events.Event) {
	r.events = append(r.events, e)
}

func (r *recorder) types() []events.Type {
	out := make([]events.Type, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func newTestService(t *testing.T) (AppointmentService, *recordstoretest.Store, *recorder) {
	t.Helper()
	return newTestServiceWithBoard(t, nil)
}

func newTestServiceWithBoard(t *testing.T, board BoardCache) (AppointmentService, *recordstoretest.Store, *recorder) {
	t.Helper()
	log := logger.Discard()
	store := recordstoretest.New(
		repository.TableTimeSlots,
		repository.TableBookings,
		recyclerepo.TableDeletedItems,
	)
	store.UniqueIndex(repository.TableTimeSlots, []string{"date", "time"}, nil)
	store.UniqueIndex(repository.TableBookings, []string{"date", "time"}, recordstore.Filter{"status": "confirmed"})

	rec := &recorder{}
	svc := NewAppointmentService(
		repository.NewSlotRepository(store),
		repository.NewBookingRepository(store),
		recyclerepo.NewDeletedItemRepository(store),
		validator.NewAppointmentValidator(log),
		DefaultGrid(),
		board,
		rec,
		&config.Config{Log: log},
	)
	return svc, store, rec
}

func slotAt(t *testing.T, board *model.DayBoard, at string) model.SlotView {
	t.Helper()
	for _, s := range board.Slots {
		if s.Time == at {
			return s
		}
	}
	t.Fatalf("no slot at %s", at)
	return model.SlotView{}
}

func newBooking(at string) *model.BookingCreate {
	return &model.BookingCreate{
		Date:         testDate,
		Time:         at,
		CustomerName: "  ayse   yilmaz ",
		Phone:        "+49 151 2345 6789",
	}
}

func TestGetSlotStatus(t *testing.T) {
	slot := &model.TimeSlot{Date: testDate, Time: "10:00", Status: model.SlotOpen}
	closed := &model.TimeSlot{Date: testDate, Time: "10:00", Status: model.SlotClosed}
	confirmed := &model.Booking{Date: testDate, Time: "10:00", Status: status.Confirmed}
	cancelled := &model.Booking{Date: testDate, Time: "10:00", Status: status.Cancelled}
	elsewhere := &model.Booking{Date: testDate, Time: "10:20", Status: status.Confirmed}

	tests := []struct {
		name     string
		slot     *model.TimeSlot
		bookings []*model.Booking
		want     model.SlotStatus
	}{
		{"open without bookings", slot, nil, model.SlotOpen},
		{"closed without bookings", closed, nil, model.SlotClosed},
		{"confirmed booking wins", slot, []*model.Booking{confirmed}, model.SlotBooked},
		{"confirmed booking wins over closed", closed, []*model.Booking{confirmed}, model.SlotBooked},
		{"cancelled booking ignored", slot, []*model.Booking{cancelled}, model.SlotOpen},
		{"other slot ignored", slot, []*model.Booking{elsewhere}, model.SlotOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetSlotStatus(tt.slot, tt.bookings); got != tt.want {
				t.Errorf("GetSlotStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEnsureDaySlotsExist_Idempotent(t *testing.T) {
	svc, store, rec := newTestService(t)
	ctx := context.Background()

	created, err := svc.EnsureDaySlotsExist(ctx, testDate)
	if err != nil {
		t.Fatalf("EnsureDaySlotsExist() error = %v", err)
	}
	if created != 27 {
		t.Errorf("created = %d, want 27", created)
	}

	created, err = svc.EnsureDaySlotsExist(ctx, testDate)
	if err != nil {
		t.Fatalf("second EnsureDaySlotsExist() error = %v", err)
	}
	if created != 0 {
		t.Errorf("second call created = %d, want 0", created)
	}
	if n := len(store.Rows(repository.TableTimeSlots)); n != 27 {
		t.Errorf("stored slots = %d, want 27", n)
	}
	if len(rec.events) != 1 || rec.events[0].Type != events.SlotsGenerated {
		t.Errorf("events = %v, want one slots.generated", rec.types())
	}
}

func TestEnsureDaySlotsExist_InvalidDate(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.EnsureDaySlotsExist(context.Background(), "2025-02-30")
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("error = %v, want VALIDATION_ERROR", err)
	}
}

func TestBookAndCancel_DayScenario(t *testing.T) {
	svc, store, rec := newTestService(t)
	ctx := context.Background()

	board, err := svc.DayBoard(ctx, testDate)
	if err != nil {
		t.Fatalf("DayBoard() error = %v", err)
	}
	if len(board.Slots) != 27 || board.Open != 27 {
		t.Fatalf("board = %d slots, %d open, want 27/27", len(board.Slots), board.Open)
	}

	booking, err := svc.CreateBooking(ctx, newBooking("10:00"))
	if err != nil {
		t.Fatalf("CreateBooking() error = %v", err)
	}
	if booking.Status != status.Confirmed || booking.ID == "" {
		t.Errorf("booking = %+v", booking)
	}
	if booking.CustomerName != "ayse yilmaz" {
		t.Errorf("customer name = %q, want sanitized", booking.CustomerName)
	}

	board, err = svc.DayBoard(ctx, testDate)
	if err != nil {
		t.Fatalf("DayBoard() error = %v", err)
	}
	if got := slotAt(t, board, "10:00"); got.LiveStatus != model.SlotBooked || got.BookingID != booking.ID {
		t.Errorf("10:00 = %+v, want booked by %s", got, booking.ID)
	}
	if got := slotAt(t, board, "10:20"); got.LiveStatus != model.SlotOpen {
		t.Errorf("10:20 = %s, want open", got.LiveStatus)
	}
	if board.Booked != 1 || board.Open != 26 {
		t.Errorf("counts booked=%d open=%d, want 1/26", board.Booked, board.Open)
	}

	result, err := svc.CancelBooking(ctx, booking.ID)
	if err != nil {
		t.Fatalf("CancelBooking() error = %v", err)
	}
	if result.DeletedItemID == "" {
		t.Error("expected a deleted item id")
	}

	board, err = svc.DayBoard(ctx, testDate)
	if err != nil {
		t.Fatalf("DayBoard() error = %v", err)
	}
	if got := slotAt(t, board, "10:00"); got.LiveStatus != model.SlotOpen {
		t.Errorf("10:00 after cancel = %s, want open", got.LiveStatus)
	}

	items := store.Rows(recyclerepo.TableDeletedItems)
	if len(items) != 1 {
		t.Fatalf("deleted items = %d, want 1", len(items))
	}
	if items[0]["original_table"] != "bookings" || items[0]["original_id"] != booking.ID {
		t.Errorf("deleted item = %v", items[0])
	}
	if n := len(store.Rows(repository.TableBookings)); n != 0 {
		t.Errorf("bookings left = %d, want 0", n)
	}

	want := []events.Type{events.SlotsGenerated, events.BookingCreated, events.BookingCancelled}
	got := rec.types()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestCreateBooking_DoubleBookingConflict(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.EnsureDaySlotsExist(ctx, testDate); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.CreateBooking(ctx, newBooking("11:00")); err != nil {
		t.Fatalf("first CreateBooking() error = %v", err)
	}
	_, err := svc.CreateBooking(ctx, newBooking("11:00"))
	if apperrors.HTTPStatus(err) != http.StatusConflict {
		t.Errorf("second booking error = %v, want 409", err)
	}
	if n := len(store.Rows(repository.TableBookings)); n != 1 {
		t.Errorf("bookings = %d, want 1", n)
	}
}

func TestCreateBooking_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		in       *model.BookingCreate
		setup    func(t *testing.T, svc AppointmentService)
		wantCode string
		wantErr  error
	}{
		{
			name:     "off grid",
			in:       newBooking("10:10"),
			wantCode: apperrors.CodeValidation,
			wantErr:  appointmentserrors.ErrOffGrid,
		},
		{
			name:     "missing name",
			in:       &model.BookingCreate{Date: testDate, Time: "10:00", Phone: "+49 151 1"},
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "day not generated",
			in:       newBooking("10:00"),
			wantCode: apperrors.CodeNotFound,
		},
		{
			name: "closed slot",
			in:   newBooking("09:00"),
			setup: func(t *testing.T, svc AppointmentService) {
				board, err := svc.DayBoard(context.Background(), testDate)
				if err != nil {
					t.Fatal(err)
				}
				if _, err := svc.ToggleSlotStatus(context.Background(), slotAt(t, board, "09:00").ID); err != nil {
					t.Fatal(err)
				}
			},
			wantCode: apperrors.CodeConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestService(t)
			if tt.setup != nil {
				tt.setup(t, svc)
			}
			_, err := svc.CreateBooking(context.Background(), tt.in)
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Errorf("error = %v, want %s", err, tt.wantCode)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want it to wrap %v", err, tt.wantErr)
			}
		})
	}
}

func TestCancelBooking_ReopenFailure(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.EnsureDaySlotsExist(ctx, testDate); err != nil {
		t.Fatal(err)
	}
	booking, err := svc.CreateBooking(ctx, newBooking("12:00"))
	if err != nil {
		t.Fatal(err)
	}

	store.Fail = func(op, table string, _ recordstore.Filter) error {
		if op == "update" && table == repository.TableTimeSlots {
			return errors.New("disk full")
		}
		return nil
	}

	result, err := svc.CancelBooking(ctx, booking.ID)
	if !apperrors.HasCode(err, apperrors.CodeSlotReopenFailed) {
		t.Fatalf("error = %v, want SLOT_REOPEN_FAILED", err)
	}
	if apperrors.HTTPStatus(err) != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", apperrors.HTTPStatus(err))
	}

	appErr := apperrors.AsAppError(err)
	if appErr.Details["booking_id"] != booking.ID || appErr.Details["time"] != "12:00" {
		t.Errorf("details = %v", appErr.Details)
	}
	if result == nil || appErr.Details["deleted_item_id"] != result.DeletedItemID {
		t.Errorf("details deleted_item_id = %v, result = %+v", appErr.Details["deleted_item_id"], result)
	}

	if n := len(store.Rows(recyclerepo.TableDeletedItems)); n != 1 {
		t.Errorf("deleted items = %d, want exactly 1", n)
	}
	if n := len(store.Rows(repository.TableBookings)); n != 0 {
		t.Errorf("bookings = %d, want the booking deleted", n)
	}
}

func TestCancelBooking_SnapshotFailureKeepsBooking(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.EnsureDaySlotsExist(ctx, testDate); err != nil {
		t.Fatal(err)
	}
	booking, err := svc.CreateBooking(ctx, newBooking("12:20"))
	if err != nil {
		t.Fatal(err)
	}

	store.Fail = func(op, table string, _ recordstore.Filter) error {
		if op == "delete" && table == repository.TableBookings {
			return errors.New("write conflict")
		}
		return nil
	}

	if _, err := svc.CancelBooking(ctx, booking.ID); err == nil {
		t.Fatal("expected an error")
	}
	if n := len(store.Rows(recyclerepo.TableDeletedItems)); n != 0 {
		t.Errorf("deleted items = %d, want the snapshot rolled back", n)
	}
	if n := len(store.Rows(repository.TableBookings)); n != 1 {
		t.Errorf("bookings = %d, want 1", n)
	}
}

func TestCancelBooking_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CancelBooking(context.Background(), "missing")
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("error = %v, want NOT_FOUND", err)
	}
}

func TestToggleSlotStatus(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := context.Background()

	board, err := svc.DayBoard(ctx, testDate)
	if err != nil {
		t.Fatal(err)
	}
	id := slotAt(t, board, "15:00").ID

	slot, err := svc.ToggleSlotStatus(ctx, id)
	if err != nil {
		t.Fatalf("ToggleSlotStatus() error = %v", err)
	}
	if slot.Status != model.SlotClosed {
		t.Errorf("status = %s, want closed", slot.Status)
	}

	slot, err = svc.ToggleSlotStatus(ctx, id)
	if err != nil {
		t.Fatalf("second ToggleSlotStatus() error = %v", err)
	}
	if slot.Status != model.SlotOpen {
		t.Errorf("status = %s, want open", slot.Status)
	}

	toggles := 0
	for _, e := range rec.events {
		if e.Type == events.SlotToggled {
			toggles++
		}
	}
	if toggles != 2 {
		t.Errorf("slot.toggled events = %d, want 2", toggles)
	}
}

func TestToggleSlotStatus_BookedSlot(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	board, err := svc.DayBoard(ctx, testDate)
	if err != nil {
		t.Fatal(err)
	}
	booking, err := svc.CreateBooking(ctx, newBooking("16:00"))
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.ToggleSlotStatus(ctx, slotAt(t, board, "16:00").ID)
	var booked *appointmentserrors.SlotBookedError
	if !errors.As(err, &booked) {
		t.Fatalf("error = %v, want *SlotBookedError", err)
	}
	if booked.BookingID != booking.ID {
		t.Errorf("booking id = %s, want %s", booked.BookingID, booking.ID)
	}

	for _, row := range store.Rows(repository.TableTimeSlots) {
		if row["time"] == "16:00" && row["status"] != string(model.SlotOpen) {
			t.Errorf("stored status = %v, want untouched", row["status"])
		}
	}
}

func TestToggleSlotStatus_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.ToggleSlotStatus(context.Background(), "nope")
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("error = %v, want NOT_FOUND", err)
	}
}

func TestUpdateBookingStatus(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.EnsureDaySlotsExist(ctx, testDate); err != nil {
		t.Fatal(err)
	}
	booking, err := svc.CreateBooking(ctx, newBooking("13:00"))
	if err != nil {
		t.Fatal(err)
	}

	updated, err := svc.UpdateBookingStatus(ctx, booking.ID, &model.BookingStatusUpdate{Status: "cancelled"})
	if err != nil {
		t.Fatalf("UpdateBookingStatus() error = %v", err)
	}
	if updated.Status != status.Cancelled {
		t.Errorf("status = %s, want cancelled", updated.Status)
	}

	board, err := svc.DayBoard(ctx, testDate)
	if err != nil {
		t.Fatal(err)
	}
	if got := slotAt(t, board, "13:00"); got.LiveStatus != model.SlotOpen {
		t.Errorf("13:00 = %s, want open once the booking is cancelled", got.LiveStatus)
	}

	_, err = svc.UpdateBookingStatus(ctx, booking.ID, &model.BookingStatusUpdate{Status: "confirmed"})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("cancelled -> confirmed error = %v, want VALIDATION_ERROR", err)
	}
}

func TestListBookings(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.EnsureDaySlotsExist(ctx, testDate); err != nil {
		t.Fatal(err)
	}
	for _, at := range []string{"09:00", "09:20", "09:40"} {
		if _, err := svc.CreateBooking(ctx, newBooking(at)); err != nil {
			t.Fatal(err)
		}
	}

	bookings, total, err := svc.ListBookings(ctx, testDate, 2, 0)
	if err != nil {
		t.Fatalf("ListBookings() error = %v", err)
	}
	if total != 3 || len(bookings) != 2 {
		t.Errorf("total=%d len=%d, want 3/2", total, len(bookings))
	}

	_, _, err = svc.ListBookings(ctx, "10-06-2025", 10, 0)
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("bad date error = %v, want VALIDATION_ERROR", err)
	}
}

type fakeBoard struct {
	deleted []string
}

func (f *fakeBoard) Bump(_ context.Context, keys ...string) {
	f.deleted = append(f.deleted, keys...)
}

// memoryBoard is an in-memory BoardCache with per-key generations.
type memoryBoard struct {
	mu       sync.Mutex
	versions map[string]int
	entries  map[string][]byte
}

func newMemoryBoard() *memoryBoard {
	return &memoryBoard{versions: map[string]int{}, entries: map[string][]byte{}}
}

func (m *memoryBoard) Versioned(_ context.Context, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fmt.Sprintf("%s@%d", key, m.versions[key]), true
}

func (m *memoryBoard) Get(_ context.Context, key string, dst any) bool {
	m.mu.Lock()
	data, ok := m.entries[key]
	m.mu.Unlock()
	return ok && json.Unmarshal(data, dst) == nil
}

func (m *memoryBoard) Set(_ context.Context, key string, value any) {
	data, _ := json.Marshal(value)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = data
}

func (m *memoryBoard) Bump(_ context.Context, keys ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		m.versions[k]++
	}
}

func TestDayBoard_ServesCachedBoard(t *testing.T) {
	board := newMemoryBoard()
	svc, store, _ := newTestServiceWithBoard(t, board)
	ctx := context.Background()

	if _, err := svc.DayBoard(ctx, testDate); err != nil {
		t.Fatalf("DayBoard() error = %v", err)
	}

	reads := 0
	store.Fail = func(op, table string, _ recordstore.Filter) error {
		if op == "select" {
			reads++
		}
		return nil
	}
	got, err := svc.DayBoard(ctx, testDate)
	if err != nil {
		t.Fatalf("cached DayBoard() error = %v", err)
	}
	if reads != 0 {
		t.Errorf("cached board read the store %d times", reads)
	}
	if got.Open != 27 {
		t.Errorf("cached Open = %d, want 27", got.Open)
	}
}

func TestDayBoard_InvalidationDuringReadIsNotOverwritten(t *testing.T) {
	board := newMemoryBoard()
	svc, store, _ := newTestServiceWithBoard(t, board)
	ctx := context.Background()

	if _, err := svc.EnsureDaySlotsExist(ctx, testDate); err != nil {
		t.Fatalf("EnsureDaySlotsExist() error = %v", err)
	}

	// a booking lands while the board is being read
	var once sync.Once
	store.Fail = func(op, table string, _ recordstore.Filter) error {
		if op == "select" && table == repository.TableBookings {
			once.Do(func() { board.Bump(ctx, testDate) })
		}
		return nil
	}

	if _, err := svc.DayBoard(ctx, testDate); err != nil {
		t.Fatalf("DayBoard() error = %v", err)
	}
	store.Fail = nil

	current, _ := board.Versioned(ctx, testDate)
	var stale model.DayBoard
	if board.Get(ctx, current, &stale) {
		t.Fatalf("board read before the invalidation is served under %s", current)
	}

	if _, err := svc.CreateBooking(ctx, newBooking("10:00")); err != nil {
		t.Fatalf("CreateBooking() error = %v", err)
	}
	board.Bump(ctx, testDate)

	got, err := svc.DayBoard(ctx, testDate)
	if err != nil {
		t.Fatalf("DayBoard() error = %v", err)
	}
	if got.Booked != 1 || slotAt(t, got, "10:00").Status != model.SlotBooked {
		t.Errorf("board after booking: booked = %d, 10:00 = %s", got.Booked, slotAt(t, got, "10:00").Status)
	}
}

func TestInvalidateBoardOn(t *testing.T) {
	bus := events.NewBus(nil, logger.Discard())
	board := &fakeBoard{}
	unsubscribe := InvalidateBoardOn(bus, board)
	ctx := context.Background()

	bus.Publish(ctx, events.New(events.BookingCreated, "b1", &model.Booking{Date: "2025-06-10"}))
	bus.Publish(ctx, events.New(events.SlotToggled, "s1", &model.TimeSlot{Date: "2025-06-11"}))
	bus.Publish(ctx, events.New(events.SlotsGenerated, "2025-06-12", GeneratedPayload{Date: "2025-06-12", Created: 27}))
	bus.Publish(ctx, events.New(events.ItemRestored, "d1", &model.DeletedItem{
		OriginalTable: "bookings",
		ItemData:      map[string]any{"date": "2025-06-13"},
	}))
	bus.Publish(ctx, events.New(events.ItemRestored, "d2", &model.DeletedItem{
		OriginalTable: "requests",
		ItemData:      map[string]any{"date": "2025-06-14"},
	}))
	bus.Publish(ctx, events.New(events.RequestCreated, "r1", &model.Booking{Date: "2025-06-15"}))

	want := []string{"2025-06-10", "2025-06-11", "2025-06-12", "2025-06-13"}
	if len(board.deleted) != len(want) {
		t.Fatalf("invalidated %v, want %v", board.deleted, want)
	}
	for i := range want {
		if board.deleted[i] != want[i] {
			t.Errorf("invalidated[%d] = %s, want %s", i, board.deleted[i], want[i])
		}
	}

	unsubscribe()
	bus.Publish(ctx, events.New(events.BookingCancelled, "b1", &model.Booking{Date: "2025-06-10"}))
	if len(board.deleted) != len(want) {
		t.Errorf("board invalidated after unsubscribe: %v", board.deleted)
	}
}
