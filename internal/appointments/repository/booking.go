package repository

import (
	"context"
	"fmt"
	"time"
	appointmentserrors "travelbook/internal/appointments/errors"
	"travelbook/pkg/model"
	"travelbook/pkg/recordstore"
	"travelbook/pkg/status"
)

const TableBookings = "Bookings"

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	// FindLive returns the confirmed bookings of a day.
	FindLive(ctx context.Context, date string) ([]*model.Booking, error)
	FindLiveAt(ctx context.Context, date, at string) (*model.Booking, error)
	FindAll(ctx context.Context, date string, limit int, offset int64) ([]*model.Booking, error)
	Count(ctx context.Context, date string) (int64, error)
	UpdateStatus(ctx context.Context, id string, from, to status.Status) error
	Delete(ctx context.Context, id string) error
	ExecuteTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type bookingRepository struct {
	store recordstore.Store
}

func NewBookingRepository(store recordstore.Store) BookingRepository {
	return &bookingRepository{store: store}
}

func (r *bookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	now := time.Now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	ids, err := r.store.Insert(ctx, TableBookings, booking)
	if err != nil {
		if recordstore.IsDuplicateKey(err) {
			return appointmentserrors.ErrSlotUnavailable
		}
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	booking.ID = ids[0]
	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	var booking model.Booking
	if err := r.store.FindOne(ctx, TableBookings, recordstore.Filter{"_id": id}, &booking); err != nil {
		if recordstore.IsNotFound(err) {
			return nil, appointmentserrors.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return &booking, nil
}

func (r *bookingRepository) FindLive(ctx context.Context, date string) ([]*model.Booking, error) {
	var bookings []*model.Booking
	err := r.store.Select(ctx, TableBookings,
		recordstore.Filter{"date": date, "status": status.Confirmed},
		[]recordstore.Order{{Field: "time"}}, recordstore.Range{}, &bookings)
	if err != nil {
		return nil, fmt.Errorf("failed to list live bookings: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) FindLiveAt(ctx context.Context, date, at string) (*model.Booking, error) {
	var booking model.Booking
	err := r.store.FindOne(ctx, TableBookings,
		recordstore.Filter{"date": date, "time": at, "status": status.Confirmed}, &booking)
	if err != nil {
		if recordstore.IsNotFound(err) {
			return nil, appointmentserrors.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to find live booking: %w", err)
	}
	return &booking, nil
}

func (r *bookingRepository) FindAll(ctx context.Context, date string, limit int, offset int64) ([]*model.Booking, error) {
	var bookings []*model.Booking
	err := r.store.Select(ctx, TableBookings, dateFilter(date),
		[]recordstore.Order{{Field: "date"}, {Field: "time"}},
		recordstore.Range{Offset: offset, Limit: limit},
		&bookings,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) Count(ctx context.Context, date string) (int64, error) {
	count, err := r.store.Count(ctx, TableBookings, dateFilter(date))
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id string, from, to status.Status) error {
	matched, err := r.store.Update(ctx, TableBookings,
		recordstore.Patch{"status": to, "updated_at": time.Now().UTC()},
		recordstore.Filter{"_id": id, "status": from},
	)
	if err != nil {
		if recordstore.IsDuplicateKey(err) {
			return appointmentserrors.ErrSlotUnavailable
		}
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if matched == 0 {
		return appointmentserrors.ErrBookingNotFound
	}
	return nil
}

func (r *bookingRepository) Delete(ctx context.Context, id string) error {
	deleted, err := r.store.Delete(ctx, TableBookings, recordstore.Filter{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	if deleted == 0 {
		return appointmentserrors.ErrBookingNotFound
	}
	return nil
}

func (r *bookingRepository) ExecuteTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.store.InTx(ctx, fn)
}

func dateFilter(date string) recordstore.Filter {
	if date == "" {
		return recordstore.Filter{}
	}
	return recordstore.Filter{"date": date}
}
