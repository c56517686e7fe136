package dto

import "github.com/shopspring/decimal"

type CreatePartInput struct {
	PartNumber        string  `json:"part_number"`
	Name              string  `json:"name"`
	ModelNumber       string  `json:"model_number"`
	Equipment         string  `json:"equipment"`
	EngineeringSystem string  `json:"engineering_system"`
	UnitOfMeasure     string  `json:"unit_of_measure"`
	InitialQuantity   float64 `json:"initial_quantity"`
	MinimumStock      float64 `json:"minimum_stock"`
	UnitPrice         string  `json:"unit_price"`
	Supplier          string  `json:"supplier"`
	Location          string  `json:"location"`
	Rack              string  `json:"rack"`
	Row               string  `json:"row"`
	Bin               string  `json:"bin"`
	Notes             string  `json:"notes"`
	Actor             string  `json:"-"`
}

// UpdatePartInput carries the descriptive fields. Stock level is absent on
// purpose: quantity changes go through receipts and adjustments.
type UpdatePartInput struct {
	PartNumber        string  `json:"-"`
	Name              string  `json:"name"`
	ModelNumber       string  `json:"model_number"`
	Equipment         string  `json:"equipment"`
	EngineeringSystem string  `json:"engineering_system"`
	UnitOfMeasure     string  `json:"unit_of_measure"`
	MinimumStock      float64 `json:"minimum_stock"`
	UnitPrice         string  `json:"unit_price"`
	Supplier          string  `json:"supplier"`
	Location          string  `json:"location"`
	Rack              string  `json:"rack"`
	Row               string  `json:"row"`
	Bin               string  `json:"bin"`
	Notes             string  `json:"notes"`
	Actor             string  `json:"-"`
}

type PartFilters struct {
	SearchQuery       string `json:"search_query"`
	EngineeringSystem string `json:"engineering_system"`
	Location          string `json:"location"`
	Status            string `json:"status"`
	Page              int    `json:"page"`
	PageSize          int    `json:"page_size"`
}

// LowStockPart is a part below its minimum with the deficit precomputed for
// ordering.
type LowStockPart struct {
	PartNumber      string  `db:"part_number" json:"part_number"`
	Name            string  `db:"name" json:"name"`
	Location        string  `db:"location" json:"location"`
	QuantityInStock float64 `db:"quantity_in_stock" json:"quantity_in_stock"`
	MinimumStock    float64 `db:"minimum_stock" json:"minimum_stock"`
	Deficit         float64 `db:"deficit" json:"deficit"`
}

type SystemRollup struct {
	EngineeringSystem string          `db:"engineering_system" json:"engineering_system"`
	PartCount         int             `db:"part_count" json:"part_count"`
	TotalQuantity     float64         `db:"total_quantity" json:"total_quantity"`
	TotalValue        decimal.Decimal `db:"total_value" json:"total_value"`
}

type StockSummary struct {
	ActivePartCount int             `json:"active_part_count"`
	TotalQuantity   float64         `json:"total_quantity"`
	TotalValue      decimal.Decimal `json:"total_value"`
	LowStockCount   int             `json:"low_stock_count"`
	BySystem        []SystemRollup  `json:"by_system"`
}
