package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PartStatus string

const (
	PartStatusActive   PartStatus = "Active"
	PartStatusInactive PartStatus = "Inactive"
)

// Part is a stock-keeping unit in the MRO inventory. quantity_in_stock is
// only ever written by the stock domain (issues, receipts, adjustments).
type Part struct {
	ID                int64           `db:"id" json:"id"`
	PartNumber        string          `db:"part_number" json:"part_number"`
	Name              string          `db:"name" json:"name"`
	ModelNumber       *string         `db:"model_number" json:"model_number"`
	Equipment         *string         `db:"equipment" json:"equipment"`
	EngineeringSystem *string         `db:"engineering_system" json:"engineering_system"`
	UnitOfMeasure     string          `db:"unit_of_measure" json:"unit_of_measure"`
	QuantityInStock   float64         `db:"quantity_in_stock" json:"quantity_in_stock"`
	MinimumStock      float64         `db:"minimum_stock" json:"minimum_stock"`
	UnitPrice         decimal.Decimal `db:"unit_price" json:"unit_price"`
	Supplier          *string         `db:"supplier" json:"supplier"`
	Location          string          `db:"location" json:"location"`
	Rack              *string         `db:"rack" json:"rack"`
	Row               *string         `db:"storage_row" json:"row"`
	Bin               *string         `db:"bin" json:"bin"`
	Notes             *string         `db:"notes" json:"notes"`
	Status            PartStatus      `db:"status" json:"status"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

type MovementType string

const (
	MovementIssue      MovementType = "issue"
	MovementReceipt    MovementType = "receipt"
	MovementAdjustment MovementType = "adjustment"
)

// StockMovement is one entry in the append-only stock ledger. Quantity is
// signed: negative for issues, positive for receipts. Rows are never updated.
type StockMovement struct {
	ID             string       `db:"id" json:"id"`
	PartNumber     string       `db:"part_number" json:"part_number"`
	MovementType   MovementType `db:"movement_type" json:"movement_type"`
	Quantity       float64      `db:"quantity" json:"quantity"`
	QuantityBefore float64      `db:"quantity_before" json:"quantity_before"`
	QuantityAfter  float64      `db:"quantity_after" json:"quantity_after"`
	Actor          string       `db:"actor" json:"actor"`
	Reference      string       `db:"reference" json:"reference"`
	Notes          string       `db:"notes" json:"notes"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
}

// UsageRecord attributes consumed parts to a corrective-maintenance work
// order. UnitCostSnapshot is the part's unit price at recording time and is
// never recomputed.
type UsageRecord struct {
	ID               string          `db:"id" json:"id"`
	WorkOrderID      string          `db:"work_order_id" json:"work_order_id"`
	PartNumber       string          `db:"part_number" json:"part_number"`
	QuantityUsed     float64         `db:"quantity_used" json:"quantity_used"`
	UnitCostSnapshot decimal.Decimal `db:"unit_cost_snapshot" json:"unit_cost_snapshot"`
	TotalCost        decimal.Decimal `db:"total_cost" json:"total_cost"`
	RecordedAt       time.Time       `db:"recorded_at" json:"recorded_at"`
	RecordedBy       string          `db:"recorded_by" json:"recorded_by"`
	Notes            string          `db:"notes" json:"notes"`
}
