package service

import (
	"context"
	"errors"
	"sync"
	appointmentserrors "travelbook/internal/appointments/errors"
	recyclebinerrors "travelbook/internal/recyclebin/errors"
	"travelbook/internal/recyclebin/repository"
	"travelbook/pkg/config"
	apperrors "travelbook/pkg/errors"
	"travelbook/pkg/events"
	"travelbook/pkg/model"
	"travelbook/pkg/recordstore"
	"travelbook/pkg/status"
)

type RecycleBinService interface {
	List(ctx context.Context, table string, limit int, offset int64) ([]*model.DeletedItem, int64, error)
	Get(ctx context.Context, id string) (*model.DeletedItem, error)
	Restore(ctx context.Context, id string) (*model.DeletedItem, error)
}

// SlotFinder locates the appointment slot a restored booking returns to.
type SlotFinder interface {
	FindByDateTime(ctx context.Context, date, at string) (*model.TimeSlot, error)
}

type recycleBinService struct {
	repo   repository.DeletedItemRepository
	slots  SlotFinder
	events events.Publisher
	cfg    *config.Config
}

func NewRecycleBinService(repo repository.DeletedItemRepository, slots SlotFinder, publisher events.Publisher, cfg *config.Config) RecycleBinService {
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &recycleBinService{
		repo:   repo,
		slots:  slots,
		events: publisher,
		cfg:    cfg,
	}
}

func (s *recycleBinService) List(ctx context.Context, table string, limit int, offset int64) ([]*model.DeletedItem, int64, error) {
	if _, ok := repository.SourceTables[table]; table != "" && !ok {
		return nil, 0, apperrors.Validation("Unknown table filter", map[string]any{
			"table":   table,
			"allowed": []string{"bookings", "requests"},
		})
	}
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var items []*model.DeletedItem
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, table)
	}()

	go func() {
		defer wg.Done()
		items, errFind = s.repo.FindAll(ctx, table, limit, offset)
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, recordstore.Translate(s.cfg.Log, errCount, "Deleted item", "count deleted items")
	}
	if errFind != nil {
		return nil, 0, recordstore.Translate(s.cfg.Log, errFind, "Deleted item", "list deleted items")
	}

	return items, count, nil
}

func (s *recycleBinService) Get(ctx context.Context, id string) (*model.DeletedItem, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Deleted item ID cannot be empty")
	}

	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, recyclebinerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Deleted item", id)
		}
		return nil, recordstore.Translate(s.cfg.Log, err, "Deleted item", "retrieve deleted item")
	}
	return item, nil
}

// Restore writes the snapshot back under its original id. The snapshot
// itself stays in the bin.
func (s *recycleBinService) Restore(ctx context.Context, id string) (*model.DeletedItem, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.OriginalExists(ctx, item)
	if err != nil {
		if errors.Is(err, recyclebinerrors.ErrUnknownTable) {
			return nil, apperrors.Validation("Deleted item cannot be restored", map[string]any{"original_table": item.OriginalTable})
		}
		return nil, recordstore.Translate(s.cfg.Log, err, "Deleted item", "check original record")
	}
	if exists {
		return nil, apperrors.Conflict("Original record still exists").WithDetails(map[string]any{
			"original_table": item.OriginalTable,
			"original_id":    item.OriginalID,
		})
	}

	if item.OriginalTable == "bookings" {
		if err := s.checkSlot(ctx, item); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Reinsert(ctx, item); err != nil {
		if errors.Is(err, recyclebinerrors.ErrOriginalExists) {
			// the id is free, so a unique index such as the booking slot rejected it
			return nil, apperrors.Conflict("Record conflicts with existing data").WithDetails(map[string]any{
				"original_table": item.OriginalTable,
				"original_id":    item.OriginalID,
			})
		}
		return nil, recordstore.Translate(s.cfg.Log, err, "Deleted item", "restore deleted item")
	}

	s.events.Publish(ctx, events.New(events.ItemRestored, item.OriginalID, item))
	s.cfg.Log.Info("Deleted item restored",
		"id", item.ID,
		"original_table", item.OriginalTable,
		"original_id", item.OriginalID,
	)
	return item, nil
}

// checkSlot applies the booking rules to a restore: a live booking needs its
// slot to exist and be open. Taken slots are left to the unique index.
func (s *recycleBinService) checkSlot(ctx context.Context, item *model.DeletedItem) error {
	if st, _ := item.ItemData["status"].(string); status.Status(st) == status.Cancelled {
		return nil
	}

	date, _ := item.ItemData["date"].(string)
	at, _ := item.ItemData["time"].(string)
	details := map[string]any{"original_id": item.OriginalID, "date": date, "time": at}

	slot, err := s.slots.FindByDateTime(ctx, date, at)
	if err != nil {
		if errors.Is(err, appointmentserrors.ErrSlotNotFound) {
			return apperrors.Conflict("Time slot no longer exists").WithDetails(details)
		}
		return recordstore.Translate(s.cfg.Log, err, "Time slot", "check booking slot")
	}
	if slot.Status == model.SlotClosed {
		return apperrors.Conflict("Time slot is closed").WithDetails(details)
	}
	return nil
}
