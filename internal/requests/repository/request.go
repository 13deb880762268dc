package repository

import (
	"context"
	"fmt"
	"time"
	requestserrors "travelbook/internal/requests/errors"
	"travelbook/pkg/model"
	"travelbook/pkg/recordstore"
)

const TableRequests = "Requests"

type RequestRepository interface {
	Create(ctx context.Context, req *model.Request) error
	FindByID(ctx context.Context, id string) (*model.Request, error)
	FindAll(ctx context.Context, status string, limit int, offset int64) ([]*model.Request, error)
	Count(ctx context.Context, status string) (int64, error)
	// Update writes only the fields in patch.
	Update(ctx context.Context, id string, patch recordstore.Patch) error
	Delete(ctx context.Context, id string) error
	ExecuteTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type requestRepository struct {
	store recordstore.Store
}

func NewRequestRepository(store recordstore.Store) RequestRepository {
	return &requestRepository{store: store}
}

func (r *requestRepository) Create(ctx context.Context, req *model.Request) error {
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now

	ids, err := r.store.Insert(ctx, TableRequests, req)
	if err != nil {
		return fmt.Errorf("failed to insert request: %w", err)
	}
	req.ID = ids[0]
	return nil
}

func (r *requestRepository) FindByID(ctx context.Context, id string) (*model.Request, error) {
	var req model.Request
	if err := r.store.FindOne(ctx, TableRequests, recordstore.Filter{"_id": id}, &req); err != nil {
		if recordstore.IsNotFound(err) {
			return nil, requestserrors.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to find request: %w", err)
	}
	return &req, nil
}

func (r *requestRepository) FindAll(ctx context.Context, status string, limit int, offset int64) ([]*model.Request, error) {
	var reqs []*model.Request
	err := r.store.Select(ctx, TableRequests, statusFilter(status),
		[]recordstore.Order{{Field: "created_at", Desc: true}},
		recordstore.Range{Offset: offset, Limit: limit},
		&reqs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return reqs, nil
}

func (r *requestRepository) Count(ctx context.Context, status string) (int64, error) {
	count, err := r.store.Count(ctx, TableRequests, statusFilter(status))
	if err != nil {
		return 0, fmt.Errorf("failed to count requests: %w", err)
	}
	return count, nil
}

func (r *requestRepository) Update(ctx context.Context, id string, patch recordstore.Patch) error {
	matched, err := r.store.Update(ctx, TableRequests, patch, recordstore.Filter{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to update request: %w", err)
	}
	if matched == 0 {
		return requestserrors.ErrRequestNotFound
	}
	return nil
}

func (r *requestRepository) Delete(ctx context.Context, id string) error {
	deleted, err := r.store.Delete(ctx, TableRequests, recordstore.Filter{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete request: %w", err)
	}
	if deleted == 0 {
		return requestserrors.ErrRequestNotFound
	}
	return nil
}

func (r *requestRepository) ExecuteTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.store.InTx(ctx, fn)
}

func statusFilter(status string) recordstore.Filter {
	if status == "" {
		return recordstore.Filter{}
	}
	return recordstore.Filter{"status": status}
}
