// Package memory provides an in-memory stock.Repository with the same
// transactional semantics as the postgres implementation. It backs the
// usecase tests and is not wired into the server.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/maintsys/mro-stock-service/internal/model"
	"github.com/maintsys/mro-stock-service/internal/stock"
	"github.com/maintsys/mro-stock-service/internal/stock/dto"
)

type Repository struct {
	mu        sync.Mutex
	parts     map[string]model.Part
	movements []model.StockMovement
	usage     []model.UsageRecord
}

func NewRepository() *Repository {
	return &Repository{parts: map[string]model.Part{}}
}

var _ stock.Repository = (*Repository)(nil)

// AddPart seeds a part. Test setup helper.
func (r *Repository) AddPart(p model.Part) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parts[p.PartNumber] = p
}

// Part returns a copy of the stored part, if present.
func (r *Repository) Part(partNumber string) (model.Part, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.parts[partNumber]
	return p, ok
}

// MovementsForPart returns the ledger entries for one part in append order.
func (r *Repository) MovementsForPart(partNumber string) []model.StockMovement {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.StockMovement
	for _, m := range r.movements {
		if m.PartNumber == partNumber {
			out = append(out, m)
		}
	}
	return out
}

func (r *Repository) RecordConsumption(_ context.Context, in *dto.ConsumeInput) ([]model.UsageRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()

	// Stage every mutation on copies; nothing is applied unless the whole
	// batch succeeds.
	staged := map[string]model.Part{}
	var movements []model.StockMovement
	var records []model.UsageRecord

	for _, item := range in.Items {
		part, ok := staged[item.PartNumber]
		if !ok {
			part, ok = r.parts[item.PartNumber]
			if !ok {
				return nil, &stock.PartNotFoundError{PartNumber: item.PartNumber}
			}
		}

		movement, usage, err := stock.BuildIssue(&part, item, in, now)
		if err != nil {
			return nil, err
		}

		staged[item.PartNumber] = part
		movements = append(movements, movement)
		records = append(records, usage)
	}

	for pn, part := range staged {
		r.parts[pn] = part
	}
	r.movements = append(r.movements, movements...)
	r.usage = append(r.usage, records...)
	return records, nil
}

func (r *Repository) ReceiveStock(_ context.Context, in *dto.ReceiveInput) (*model.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	part, ok := r.parts[in.PartNumber]
	if !ok {
		return nil, &stock.PartNotFoundError{PartNumber: in.PartNumber}
	}

	movement, err := stock.BuildReceipt(&part, in, time.Now())
	if err != nil {
		return nil, err
	}

	r.parts[in.PartNumber] = part
	r.movements = append(r.movements, movement)
	return &movement, nil
}

func (r *Repository) AdjustStock(_ context.Context, in *dto.AdjustInput) (*model.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	part, ok := r.parts[in.PartNumber]
	if !ok {
		return nil, &stock.PartNotFoundError{PartNumber: in.PartNumber}
	}

	movement, err := stock.BuildAdjustment(&part, in, time.Now())
	if err != nil {
		return nil, err
	}

	r.parts[in.PartNumber] = part
	r.movements = append(r.movements, movement)
	return &movement, nil
}

func (r *Repository) ListMovements(_ context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []model.StockMovement
	for i := len(r.movements) - 1; i >= 0; i-- {
		m := r.movements[i]
		if f.PartNumber != "" && m.PartNumber != f.PartNumber {
			continue
		}
		if f.MovementType != "" && string(m.MovementType) != f.MovementType {
			continue
		}
		if f.Reference != "" && m.Reference != f.Reference {
			continue
		}
		out = append(out, m)
	}
	return out, len(out), nil
}

func (r *Repository) ListUsageForWorkOrder(_ context.Context, workOrderID string) ([]model.UsageRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []model.UsageRecord
	for i := len(r.usage) - 1; i >= 0; i-- {
		if r.usage[i].WorkOrderID == workOrderID {
			out = append(out, r.usage[i])
		}
	}
	return out, nil
}
