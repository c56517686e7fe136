package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/maintsys/mro-stock-service/internal/history"
	"github.com/maintsys/mro-stock-service/internal/history/dto"
	"github.com/maintsys/mro-stock-service/internal/model"
	"github.com/pkg/errors"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

var _ history.Repository = (*PGRepository)(nil)

func (r *PGRepository) GetEquipment(ctx context.Context, equipmentNo string) (*model.Equipment, error) {
	var eq model.Equipment
	query := `SELECT * FROM equipment WHERE equipment_no = $1 LIMIT 1`
	err := r.DB.GetContext(ctx, &eq, query, equipmentNo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "history.GetEquipment")
	}
	return &eq, nil
}

func (r *PGRepository) ListPMCompletions(ctx context.Context, equipmentNo string, since time.Time) ([]model.PMCompletion, error) {
	var out []model.PMCompletion
	query := `
        SELECT * FROM pm_completions
        WHERE equipment_no = $1 AND completion_date >= $2
        ORDER BY completion_date DESC
    `
	if err := r.DB.SelectContext(ctx, &out, query, equipmentNo, since); err != nil {
		return nil, errors.Wrap(err, "history.ListPMCompletions")
	}
	return out, nil
}

func (r *PGRepository) ListWorkOrders(ctx context.Context, equipmentNo string, since time.Time) ([]model.WorkOrder, error) {
	var out []model.WorkOrder
	query := `
        SELECT * FROM work_orders
        WHERE equipment_no = $1 AND reported_date >= $2
        ORDER BY reported_date DESC
    `
	if err := r.DB.SelectContext(ctx, &out, query, equipmentNo, since); err != nil {
		return nil, errors.Wrap(err, "history.ListWorkOrders")
	}
	return out, nil
}

// ListUsageEvents joins usage records to their work orders; the usage table
// itself carries no equipment reference.
func (r *PGRepository) ListUsageEvents(ctx context.Context, equipmentNo string, since time.Time) ([]dto.UsageEvent, error) {
	var out []dto.UsageEvent
	query := `
        SELECT ur.recorded_at, ur.part_number, p.model_number, ur.quantity_used,
               ur.work_order_id, ur.recorded_by, ur.notes
        FROM usage_records ur
        JOIN work_orders wo ON wo.work_order_id = ur.work_order_id
        LEFT JOIN mro_parts p ON p.part_number = ur.part_number
        WHERE wo.equipment_no = $1 AND ur.recorded_at >= $2
        ORDER BY ur.recorded_at DESC
    `
	if err := r.DB.SelectContext(ctx, &out, query, equipmentNo, since); err != nil {
		return nil, errors.Wrap(err, "history.ListUsageEvents")
	}
	return out, nil
}

func (r *PGRepository) ListStatusChanges(ctx context.Context, equipmentNo string, since time.Time) ([]dto.StatusChange, error) {
	var out []dto.StatusChange
	query := `
        SELECT created_at, actor, old_values, new_values
        FROM audit_events
        WHERE entity_type = 'equipment' AND entity_id = $1 AND created_at >= $2
        ORDER BY created_at DESC
    `
	if err := r.DB.SelectContext(ctx, &out, query, equipmentNo, since); err != nil {
		return nil, errors.Wrap(err, "history.ListStatusChanges")
	}
	return out, nil
}
