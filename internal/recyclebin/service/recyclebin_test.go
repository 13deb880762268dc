package service

import (
	"context"
	"testing"
	"time"
	appointmentsrepo "travelbook/internal/appointments/repository"
	"travelbook/internal/recyclebin/repository"
	"travelbook/pkg/config"
	apperrors "travelbook/pkg/errors"
	"travelbook/pkg/events"
	"travelbook/pkg/logger"
	"travelbook/pkg/model"
	"travelbook/pkg/recordstore"
	"travelbook/pkg/recordstore/recordstoretest"
	"travelbook/pkg/status"
)

type recorder struct {
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, e events.Event) {
	r.events = append(r.events, e)
}

func setup(t *testing.T) (RecycleBinService, repository.DeletedItemRepository, *recordstoretest.Store, *recorder) {
	t.Helper()
	store := recordstoretest.New(repository.TableDeletedItems, "Bookings", "Requests", appointmentsrepo.TableTimeSlots)
	store.UniqueIndex("Bookings", []string{"date", "time"}, recordstore.Filter{"status": "confirmed"})

	for at, st := range map[string]model.SlotStatus{
		"09:00": model.SlotOpen,
		"09:20": model.SlotOpen,
		"10:00": model.SlotOpen,
		"11:00": model.SlotOpen,
		"12:00": model.SlotClosed,
	} {
		if _, err := store.Insert(context.Background(), appointmentsrepo.TableTimeSlots, &model.TimeSlot{Date: "2025-06-10", Time: at, Status: st}); err != nil {
			t.Fatal(err)
		}
	}

	repo := repository.NewDeletedItemRepository(store)
	rec := &recorder{}
	svc := NewRecycleBinService(repo, appointmentsrepo.NewSlotRepository(store), rec, &config.Config{Log: logger.Discard()})
	return svc, repo, store, rec
}

func snapshotBooking(t *testing.T, repo repository.DeletedItemRepository, id, at string) *model.DeletedItem {
	t.Helper()
	return snapshotBookingWithStatus(t, repo, id, at, status.Confirmed)
}

func snapshotBookingWithStatus(t *testing.T, repo repository.DeletedItemRepository, id, at string, st status.Status) *model.DeletedItem {
	t.Helper()
	b := &model.Booking{
		ID:           id,
		Date:         "2025-06-10",
		Time:         at,
		CustomerName: "Ayse",
		Phone:        "+491511234567",
		Status:       st,
		CreatedAt:    time.Now().UTC(),
	}
	item, err := repo.Snapshot(context.Background(), "bookings", "booking", b.ID, "2025-06-10 "+at+" Ayse", b)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	return item
}

func TestRestore(t *testing.T) {
	svc, repo, store, rec := setup(t)
	ctx := context.Background()
	item := snapshotBooking(t, repo, "b1", "10:00")

	restored, err := svc.Restore(ctx, item.ID)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if restored.OriginalID != "b1" {
		t.Errorf("original id = %s", restored.OriginalID)
	}

	rows := store.Rows("Bookings")
	if len(rows) != 1 || rows[0]["_id"] != "b1" || rows[0]["time"] != "10:00" {
		t.Fatalf("bookings = %v", rows)
	}
	if n := len(store.Rows(repository.TableDeletedItems)); n != 1 {
		t.Errorf("deleted items = %d, want the snapshot kept", n)
	}
	if len(rec.events) != 1 || rec.events[0].Type != events.ItemRestored {
		t.Errorf("events = %v", rec.events)
	}

	_, err = svc.Restore(ctx, item.ID)
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Errorf("second Restore() error = %v, want CONFLICT", err)
	}
}

func TestRestore_SlotTakenByAnotherBooking(t *testing.T) {
	svc, repo, store, _ := setup(t)
	ctx := context.Background()
	item := snapshotBooking(t, repo, "b1", "11:00")

	other := &model.Booking{ID: "b2", Date: "2025-06-10", Time: "11:00", Status: status.Confirmed}
	if _, err := store.Insert(ctx, "Bookings", other); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Restore(ctx, item.ID)
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Errorf("Restore() error = %v, want CONFLICT", err)
	}
	if n := len(store.Rows("Bookings")); n != 1 {
		t.Errorf("bookings = %d, want 1", n)
	}
}

func TestRestore_BookingSlotRules(t *testing.T) {
	tests := []struct {
		name     string
		at       string
		status   status.Status
		wantCode string
	}{
		{name: "open slot", at: "10:00", status: status.Confirmed},
		{name: "closed slot", at: "12:00", status: status.Confirmed, wantCode: apperrors.CodeConflict},
		{name: "slot no longer exists", at: "13:00", status: status.Confirmed, wantCode: apperrors.CodeConflict},
		{name: "cancelled booking ignores the slot", at: "12:00", status: status.Cancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, store, rec := setup(t)
			item := snapshotBookingWithStatus(t, repo, "b1", tt.at, tt.status)

			_, err := svc.Restore(context.Background(), item.ID)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("Restore() error = %v", err)
				}
				if n := len(store.Rows("Bookings")); n != 1 {
					t.Errorf("bookings = %d, want 1", n)
				}
				return
			}

			if !apperrors.HasCode(err, tt.wantCode) {
				t.Fatalf("Restore() error = %v, want %s", err, tt.wantCode)
			}
			if n := len(store.Rows("Bookings")); n != 0 {
				t.Errorf("bookings = %d, want nothing restored", n)
			}
			if len(rec.events) != 0 {
				t.Errorf("events = %v, want none", rec.events)
			}
		})
	}
}

func TestGet_NotFound(t *testing.T) {
	svc, _, _, _ := setup(t)

	_, err := svc.Get(context.Background(), "missing")
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("error = %v, want NOT_FOUND", err)
	}
}

func TestList(t *testing.T) {
	svc, repo, _, _ := setup(t)
	ctx := context.Background()
	snapshotBooking(t, repo, "b1", "09:00")
	snapshotBooking(t, repo, "b2", "09:20")
	if _, err := repo.Snapshot(ctx, "requests", "request", "r1", "Request r1", &model.Request{ID: "r1"}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		table     string
		wantTotal int64
		wantCode  string
	}{
		{name: "all", wantTotal: 3},
		{name: "bookings", table: "bookings", wantTotal: 2},
		{name: "requests", table: "requests", wantTotal: 1},
		{name: "unknown table", table: "users", wantCode: apperrors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, total, err := svc.List(ctx, tt.table, 10, 0)
			if tt.wantCode != "" {
				if !apperrors.HasCode(err, tt.wantCode) {
					t.Errorf("error = %v, want %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if total != tt.wantTotal || int64(len(items)) != tt.wantTotal {
				t.Errorf("total=%d len=%d, want %d", total, len(items), tt.wantTotal)
			}
		})
	}
}
