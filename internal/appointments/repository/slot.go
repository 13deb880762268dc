package repository

import (
	"context"
	"fmt"
	"time"
	appointmentserrors "travelbook/internal/appointments/errors"
	"travelbook/pkg/model"
	"travelbook/pkg/recordstore"
)

const TableTimeSlots = "TimeSlots"

type SlotRepository interface {
	CountByDate(ctx context.Context, date string) (int64, error)
	// InsertMany is unordered. A DUPLICATE_KEY error still reports how many
	// rows were written.
	InsertMany(ctx context.Context, slots []*model.TimeSlot) (int, error)
	FindByDate(ctx context.Context, date string) ([]*model.TimeSlot, error)
	FindByID(ctx context.Context, id string) (*model.TimeSlot, error)
	FindByDateTime(ctx context.Context, date, at string) (*model.TimeSlot, error)
	// SetStatus flips the slot only if it still has the expected status.
	SetStatus(ctx context.Context, id string, from, to model.SlotStatus) error
	Reopen(ctx context.Context, date, at string) (int64, error)
}

type slotRepository struct {
	store recordstore.Store
}

func NewSlotRepository(store recordstore.Store) SlotRepository {
	return &slotRepository{store: store}
}

func (r *slotRepository) CountByDate(ctx context.Context, date string) (int64, error) {
	count, err := r.store.Count(ctx, TableTimeSlots, recordstore.Filter{"date": date})
	if err != nil {
		return 0, fmt.Errorf("failed to count slots: %w", err)
	}
	return count, nil
}

func (r *slotRepository) InsertMany(ctx context.Context, slots []*model.TimeSlot) (int, error) {
	if len(slots) == 0 {
		return 0, nil
	}
	rows := make([]any, len(slots))
	for i, s := range slots {
		rows[i] = s
	}

	ids, err := r.store.Insert(ctx, TableTimeSlots, rows...)
	if err != nil {
		return len(ids), fmt.Errorf("failed to insert slots: %w", err)
	}
	return len(ids), nil
}

func (r *slotRepository) FindByDate(ctx context.Context, date string) ([]*model.TimeSlot, error) {
	var slots []*model.TimeSlot
	err := r.store.Select(ctx, TableTimeSlots, recordstore.Filter{"date": date},
		[]recordstore.Order{{Field: "time"}}, recordstore.Range{}, &slots)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	return slots, nil
}

func (r *slotRepository) FindByID(ctx context.Context, id string) (*model.TimeSlot, error) {
	return r.findOne(ctx, recordstore.Filter{"_id": id})
}

func (r *slotRepository) FindByDateTime(ctx context.Context, date, at string) (*model.TimeSlot, error) {
	return r.findOne(ctx, recordstore.Filter{"date": date, "time": at})
}

func (r *slotRepository) findOne(ctx context.Context, filter recordstore.Filter) (*model.TimeSlot, error) {
	var slot model.TimeSlot
	if err := r.store.FindOne(ctx, TableTimeSlots, filter, &slot); err != nil {
		if recordstore.IsNotFound(err) {
			return nil, appointmentserrors.ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to find slot: %w", err)
	}
	return &slot, nil
}

func (r *slotRepository) SetStatus(ctx context.Context, id string, from, to model.SlotStatus) error {
	matched, err := r.store.Update(ctx, TableTimeSlots,
		recordstore.Patch{"status": to, "updated_at": time.Now().UTC()},
		recordstore.Filter{"_id": id, "status": from},
	)
	if err != nil {
		return fmt.Errorf("failed to update slot status: %w", err)
	}
	if matched == 0 {
		return appointmentserrors.ErrSlotChanged
	}
	return nil
}

func (r *slotRepository) Reopen(ctx context.Context, date, at string) (int64, error) {
	matched, err := r.store.Update(ctx, TableTimeSlots,
		recordstore.Patch{"status": model.SlotOpen, "updated_at": time.Now().UTC()},
		recordstore.Filter{"date": date, "time": at},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to reopen slot: %w", err)
	}
	return matched, nil
}
