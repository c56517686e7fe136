package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/maintsys/mro-stock-service/internal/model"
	"github.com/maintsys/mro-stock-service/internal/stock"
	"github.com/maintsys/mro-stock-service/internal/stock/dto"
	"github.com/pkg/errors"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

var _ stock.Repository = (*PGRepository)(nil)

const insertMovementQuery = `
    INSERT INTO stock_movements (
        id, part_number, movement_type, quantity, quantity_before,
        quantity_after, actor, reference, notes, created_at
    )
    VALUES (
        :id, :part_number, :movement_type, :quantity, :quantity_before,
        :quantity_after, :actor, :reference, :notes, :created_at
    )
`

const insertUsageQuery = `
    INSERT INTO usage_records (
        id, work_order_id, part_number, quantity_used, unit_cost_snapshot,
        total_cost, recorded_at, recorded_by, notes
    )
    VALUES (
        :id, :work_order_id, :part_number, :quantity_used, :unit_cost_snapshot,
        :total_cost, :recorded_at, :recorded_by, :notes
    )
`

// lockPart reads the part row with a row lock so the check-then-write
// sequence for a part is serialized across concurrent transactions.
func lockPart(ctx context.Context, tx *sqlx.Tx, partNumber string) (*model.Part, error) {
	var part model.Part
	err := tx.GetContext(ctx, &part,
		`SELECT * FROM mro_parts WHERE part_number = $1 FOR UPDATE`, partNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &stock.PartNotFoundError{PartNumber: partNumber}
		}
		return nil, errors.Wrap(err, "failed to lock part row")
	}
	return &part, nil
}

func updatePartQuantity(ctx context.Context, tx *sqlx.Tx, part *model.Part, now time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE mro_parts SET quantity_in_stock = $1, updated_at = $2 WHERE part_number = $3`,
		part.QuantityInStock, now, part.PartNumber)
	if err != nil {
		return errors.Wrap(err, "failed to update stock level")
	}
	return nil
}

func (r *PGRepository) RecordConsumption(ctx context.Context, in *dto.ConsumeInput) ([]model.UsageRecord, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	now := time.Now()
	records := make([]model.UsageRecord, 0, len(in.Items))

	for _, item := range in.Items {
		part, err := lockPart(ctx, tx, item.PartNumber)
		if err != nil {
			return nil, err
		}

		movement, usage, err := stock.BuildIssue(part, item, in, now)
		if err != nil {
			return nil, err
		}

		if _, err := tx.NamedExecContext(ctx, insertMovementQuery, movement); err != nil {
			return nil, errors.Wrap(err, "failed to insert stock movement")
		}
		if _, err := tx.NamedExecContext(ctx, insertUsageQuery, usage); err != nil {
			return nil, errors.Wrap(err, "failed to insert usage record")
		}
		if err := updatePartQuantity(ctx, tx, part, now); err != nil {
			return nil, err
		}

		records = append(records, usage)
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit consumption batch")
	}
	return records, nil
}

func (r *PGRepository) ReceiveStock(ctx context.Context, in *dto.ReceiveInput) (*model.StockMovement, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	now := time.Now()
	part, err := lockPart(ctx, tx, in.PartNumber)
	if err != nil {
		return nil, err
	}

	movement, err := stock.BuildReceipt(part, in, now)
	if err != nil {
		return nil, err
	}

	if _, err := tx.NamedExecContext(ctx, insertMovementQuery, movement); err != nil {
		return nil, errors.Wrap(err, "failed to insert stock movement")
	}
	if err := updatePartQuantity(ctx, tx, part, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit receipt")
	}
	return &movement, nil
}

func (r *PGRepository) AdjustStock(ctx context.Context, in *dto.AdjustInput) (*model.StockMovement, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	now := time.Now()
	part, err := lockPart(ctx, tx, in.PartNumber)
	if err != nil {
		return nil, err
	}

	movement, err := stock.BuildAdjustment(part, in, now)
	if err != nil {
		return nil, err
	}

	if _, err := tx.NamedExecContext(ctx, insertMovementQuery, movement); err != nil {
		return nil, errors.Wrap(err, "failed to insert stock movement")
	}
	if err := updatePartQuantity(ctx, tx, part, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit adjustment")
	}
	return &movement, nil
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.PartNumber != "" {
		conditions = append(conditions, "part_number = :part_number")
		args["part_number"] = f.PartNumber
	}
	if f.MovementType != "" {
		conditions = append(conditions, "movement_type = :movement_type")
		args["movement_type"] = f.MovementType
	}
	if f.Reference != "" {
		conditions = append(conditions, "reference = :reference")
		args["reference"] = f.Reference
	}
	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at <= :end_date")
		args["end_date"] = *f.EndDate
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	countQuery := "SELECT count(*) FROM stock_movements" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to count stock movements")
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM stock_movements" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to prepare movement query")
	}
	defer nstmt.Close()

	var movements []model.StockMovement
	if err := nstmt.SelectContext(ctx, &movements, args); err != nil {
		return nil, 0, errors.Wrap(err, "failed to list stock movements")
	}
	return movements, count, nil
}

func (r *PGRepository) ListUsageForWorkOrder(ctx context.Context, workOrderID string) ([]model.UsageRecord, error) {
	var records []model.UsageRecord
	err := r.DB.SelectContext(ctx, &records,
		`SELECT * FROM usage_records WHERE work_order_id = $1 ORDER BY recorded_at DESC`, workOrderID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list usage records")
	}
	return records, nil
}
