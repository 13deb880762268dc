package repository

import (
	"context"
	"fmt"
	"time"
	recyclebinerrors "travelbook/internal/recyclebin/errors"
	mongodb "travelbook/pkg/db/mongo"
	"travelbook/pkg/model"
	"travelbook/pkg/recordstore"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
)

const TableDeletedItems = "DeletedItems"

type DeletedItemRepository interface {
	// Snapshot stores a copy of data before the original is deleted. It joins
	// the caller's transaction when ctx carries one.
	Snapshot(ctx context.Context, table, itemType, originalID, name string, data any) (*model.DeletedItem, error)
	FindByID(ctx context.Context, id string) (*model.DeletedItem, error)
	FindAll(ctx context.Context, table string, limit int, offset int64) ([]*model.DeletedItem, error)
	Count(ctx context.Context, table string) (int64, error)
	// Reinsert writes the snapshot back into its original table.
	Reinsert(ctx context.Context, item *model.DeletedItem) error
	OriginalExists(ctx context.Context, item *model.DeletedItem) (bool, error)
}

type deletedItemRepository struct {
	store    recordstore.Store
	registry *bsoncodec.Registry
}

func NewDeletedItemRepository(store recordstore.Store) DeletedItemRepository {
	return &deletedItemRepository{
		store:    store,
		registry: mongodb.NewRegistry(),
	}
}

func (r *deletedItemRepository) Snapshot(ctx context.Context, table, itemType, originalID, name string, data any) (*model.DeletedItem, error) {
	doc, err := r.toDocument(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s snapshot: %w", table, err)
	}

	item := &model.DeletedItem{
		OriginalID:    originalID,
		OriginalTable: table,
		ItemType:      itemType,
		ItemName:      name,
		ItemData:      doc,
		DeletedAt:     time.Now().UTC(),
	}

	ids, err := r.store.Insert(ctx, TableDeletedItems, item)
	if err != nil {
		return nil, fmt.Errorf("failed to insert deleted item: %w", err)
	}
	item.ID = ids[0]

	return item, nil
}

func (r *deletedItemRepository) FindByID(ctx context.Context, id string) (*model.DeletedItem, error) {
	var item model.DeletedItem
	if err := r.store.FindOne(ctx, TableDeletedItems, recordstore.Filter{"_id": id}, &item); err != nil {
		if recordstore.IsNotFound(err) {
			return nil, recyclebinerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find deleted item: %w", err)
	}
	return &item, nil
}

func (r *deletedItemRepository) FindAll(ctx context.Context, table string, limit int, offset int64) ([]*model.DeletedItem, error) {
	var items []*model.DeletedItem
	err := r.store.Select(ctx, TableDeletedItems, tableFilter(table),
		[]recordstore.Order{{Field: "deleted_at", Desc: true}},
		recordstore.Range{Offset: offset, Limit: limit},
		&items,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list deleted items: %w", err)
	}
	return items, nil
}

func (r *deletedItemRepository) Count(ctx context.Context, table string) (int64, error) {
	count, err := r.store.Count(ctx, TableDeletedItems, tableFilter(table))
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted items: %w", err)
	}
	return count, nil
}

func (r *deletedItemRepository) Reinsert(ctx context.Context, item *model.DeletedItem) error {
	table, ok := SourceTables[item.OriginalTable]
	if !ok {
		return recyclebinerrors.ErrUnknownTable
	}

	row := bson.M{}
	for k, v := range item.ItemData {
		row[k] = v
	}
	row["_id"] = item.OriginalID

	if _, err := r.store.Insert(ctx, table, row); err != nil {
		if recordstore.IsDuplicateKey(err) {
			return recyclebinerrors.ErrOriginalExists
		}
		return fmt.Errorf("failed to restore %s: %w", item.OriginalTable, err)
	}
	return nil
}

func (r *deletedItemRepository) OriginalExists(ctx context.Context, item *model.DeletedItem) (bool, error) {
	table, ok := SourceTables[item.OriginalTable]
	if !ok {
		return false, recyclebinerrors.ErrUnknownTable
	}
	count, err := r.store.Count(ctx, table, recordstore.Filter{"_id": item.OriginalID})
	if err != nil {
		return false, fmt.Errorf("failed to check original %s: %w", item.OriginalTable, err)
	}
	return count > 0, nil
}

// SourceTables maps the original_table labels to their collections.
var SourceTables = map[string]string{
	"bookings": "Bookings",
	"requests": "Requests",
}

func (r *deletedItemRepository) toDocument(data any) (bson.M, error) {
	raw, err := bson.MarshalWithRegistry(r.registry, data)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func tableFilter(table string) recordstore.Filter {
	if table == "" {
		return recordstore.Filter{}
	}
	return recordstore.Filter{"original_table": table}
}
