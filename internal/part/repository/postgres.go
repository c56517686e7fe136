package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/maintsys/mro-stock-service/internal/model"
	"github.com/maintsys/mro-stock-service/internal/part"
	"github.com/maintsys/mro-stock-service/internal/part/dto"
	"github.com/pkg/errors"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

var _ part.Repository = (*PGRepository)(nil)

func (r *PGRepository) Create(ctx context.Context, p *model.Part) error {
	query := `
        INSERT INTO mro_parts (
            part_number, name, model_number, equipment, engineering_system,
            unit_of_measure, quantity_in_stock, minimum_stock, unit_price,
            supplier, location, rack, storage_row, bin, notes, status, created_at, updated_at
        )
        VALUES (
            :part_number, :name, :model_number, :equipment, :engineering_system,
            :unit_of_measure, :quantity_in_stock, :minimum_stock, :unit_price,
            :supplier, :location, :rack, :storage_row, :bin, :notes, :status, :created_at, :updated_at
        )
        RETURNING id
    `
	rows, err := r.DB.NamedQueryContext(ctx, query, p)
	if err != nil {
		return errors.Wrap(err, "part.Create")
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&p.ID); err != nil {
			return errors.Wrap(err, "part.Create.Scan")
		}
	}
	return nil
}

func (r *PGRepository) FindByPartNumber(ctx context.Context, partNumber string) (*model.Part, error) {
	var p model.Part
	query := `SELECT * FROM mro_parts WHERE part_number = $1 LIMIT 1`
	err := r.DB.GetContext(ctx, &p, query, partNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "part.FindByPartNumber")
	}
	return &p, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.PartFilters) ([]model.Part, int, error) {
	var parts []model.Part
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.SearchQuery != "" {
		conditions = append(conditions, "(part_number ILIKE :search OR name ILIKE :search)")
		args["search"] = "%" + f.SearchQuery + "%"
	}
	if f.EngineeringSystem != "" {
		conditions = append(conditions, "engineering_system = :engineering_system")
		args["engineering_system"] = f.EngineeringSystem
	}
	if f.Location != "" {
		conditions = append(conditions, "location = :location")
		args["location"] = f.Location
	}
	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = f.Status
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM mro_parts" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, errors.Wrap(err, "part.FindAll.Count")
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := fmt.Sprintf("SELECT * FROM mro_parts%s ORDER BY part_number ASC", whereClause)
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, errors.Wrap(err, "part.FindAll.Prepare")
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &parts, args); err != nil {
		return nil, 0, errors.Wrap(err, "part.FindAll.Select")
	}

	return parts, count, nil
}

// Update writes descriptive fields only. quantity_in_stock is deliberately
// absent from the SET list.
func (r *PGRepository) Update(ctx context.Context, p *model.Part) error {
	query := `
        UPDATE mro_parts
        SET name = :name,
            model_number = :model_number,
            equipment = :equipment,
            engineering_system = :engineering_system,
            unit_of_measure = :unit_of_measure,
            minimum_stock = :minimum_stock,
            unit_price = :unit_price,
            supplier = :supplier,
            location = :location,
            rack = :rack,
            storage_row = :storage_row,
            bin = :bin,
            notes = :notes,
            status = :status,
            updated_at = :updated_at
        WHERE part_number = :part_number
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	return errors.Wrap(err, "part.Update")
}

func (r *PGRepository) Delete(ctx context.Context, partNumber string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM mro_parts WHERE part_number = $1", partNumber)
	return errors.Wrap(err, "part.Delete")
}

func (r *PGRepository) IsPartNumberUnique(ctx context.Context, partNumber string) (bool, error) {
	var count int
	err := r.DB.GetContext(ctx, &count, `SELECT count(*) FROM mro_parts WHERE part_number = $1`, partNumber)
	if err != nil {
		return false, errors.Wrap(err, "part.IsPartNumberUnique")
	}
	return count == 0, nil
}

// HasHistory reports whether any ledger entry or usage record references the
// part.
func (r *PGRepository) HasHistory(ctx context.Context, partNumber string) (bool, error) {
	var count int
	query := `
        SELECT (SELECT count(*) FROM stock_movements WHERE part_number = $1)
             + (SELECT count(*) FROM usage_records WHERE part_number = $1)
    `
	err := r.DB.GetContext(ctx, &count, query, partNumber)
	if err != nil {
		return false, errors.Wrap(err, "part.HasHistory")
	}
	return count > 0, nil
}

func (r *PGRepository) LowStock(ctx context.Context) ([]dto.LowStockPart, error) {
	var out []dto.LowStockPart
	query := `
        SELECT part_number, name, location, quantity_in_stock, minimum_stock,
               minimum_stock - quantity_in_stock AS deficit
        FROM mro_parts
        WHERE quantity_in_stock < minimum_stock AND status = 'Active'
        ORDER BY deficit DESC
    `
	if err := r.DB.SelectContext(ctx, &out, query); err != nil {
		return nil, errors.Wrap(err, "part.LowStock")
	}
	return out, nil
}

func (r *PGRepository) Summary(ctx context.Context) (*dto.StockSummary, error) {
	var summary dto.StockSummary

	totalsQuery := `
        SELECT count(*),
               COALESCE(SUM(quantity_in_stock), 0),
               COALESCE(SUM(quantity_in_stock * unit_price), 0),
               count(*) FILTER (WHERE quantity_in_stock < minimum_stock)
        FROM mro_parts
        WHERE status = 'Active'
    `
	row := r.DB.QueryRowxContext(ctx, totalsQuery)
	if err := row.Scan(&summary.ActivePartCount, &summary.TotalQuantity, &summary.TotalValue, &summary.LowStockCount); err != nil {
		return nil, errors.Wrap(err, "part.Summary.Totals")
	}

	rollupQuery := `
        SELECT COALESCE(engineering_system, 'Unassigned') AS engineering_system,
               count(*) AS part_count,
               COALESCE(SUM(quantity_in_stock), 0) AS total_quantity,
               COALESCE(SUM(quantity_in_stock * unit_price), 0) AS total_value
        FROM mro_parts
        WHERE status = 'Active'
        GROUP BY COALESCE(engineering_system, 'Unassigned')
        ORDER BY engineering_system
    `
	if err := r.DB.SelectContext(ctx, &summary.BySystem, rollupQuery); err != nil {
		return nil, errors.Wrap(err, "part.Summary.Rollup")
	}

	return &summary, nil
}
