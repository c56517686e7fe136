package stock

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/maintsys/mro-stock-service/internal/model"
	"github.com/maintsys/mro-stock-service/internal/stock/dto"
	"github.com/shopspring/decimal"
)

// The Build* helpers hold the business rules for every quantity-changing
// write. Both repository implementations call them per part while holding
// that part's lock, so the precondition checks always run against the fresh
// locked row and the ledger math lives in exactly one place.

// BuildIssue checks the consumption preconditions for one batch item and, on
// success, produces the ledger entry and usage record while decrementing the
// part's stock level in place.
func BuildIssue(part *model.Part, item dto.ConsumeItem, in *dto.ConsumeInput, now time.Time) (model.StockMovement, model.UsageRecord, error) {
	if part.Status != model.PartStatusActive {
		return model.StockMovement{}, model.UsageRecord{}, &PartInactiveError{PartNumber: part.PartNumber}
	}
	if part.QuantityInStock <= 0 {
		return model.StockMovement{}, model.UsageRecord{}, &OutOfStockError{PartNumber: part.PartNumber, Available: part.QuantityInStock}
	}
	if item.Quantity > part.QuantityInStock {
		return model.StockMovement{}, model.UsageRecord{}, &InsufficientStockError{
			PartNumber: part.PartNumber,
			Requested:  item.Quantity,
			Available:  part.QuantityInStock,
		}
	}

	before := part.QuantityInStock
	after := before - item.Quantity

	movement := model.StockMovement{
		ID:             uuid.New().String(),
		PartNumber:     part.PartNumber,
		MovementType:   model.MovementIssue,
		Quantity:       -item.Quantity,
		QuantityBefore: before,
		QuantityAfter:  after,
		Actor:          in.Technician,
		Reference:      in.WorkOrderID,
		Notes:          fmt.Sprintf("CM work order %s", in.WorkOrderID),
		CreatedAt:      now,
	}

	qty := decimal.NewFromFloat(item.Quantity)
	usage := model.UsageRecord{
		ID:               uuid.New().String(),
		WorkOrderID:      in.WorkOrderID,
		PartNumber:       part.PartNumber,
		QuantityUsed:     item.Quantity,
		UnitCostSnapshot: part.UnitPrice,
		TotalCost:        part.UnitPrice.Mul(qty),
		RecordedAt:       now,
		RecordedBy:       in.Technician,
		Notes:            fmt.Sprintf("Parts consumed during CM %s", in.WorkOrderID),
	}

	part.QuantityInStock = after
	return movement, usage, nil
}

// BuildReceipt adds stock. Receipts are allowed for inactive parts so that
// restocking can precede reactivation.
func BuildReceipt(part *model.Part, in *dto.ReceiveInput, now time.Time) (model.StockMovement, error) {
	before := part.QuantityInStock
	after := before + in.Quantity

	movement := model.StockMovement{
		ID:             uuid.New().String(),
		PartNumber:     part.PartNumber,
		MovementType:   model.MovementReceipt,
		Quantity:       in.Quantity,
		QuantityBefore: before,
		QuantityAfter:  after,
		Actor:          in.Actor,
		Reference:      in.Reference,
		Notes:          in.Notes,
		CreatedAt:      now,
	}

	part.QuantityInStock = after
	return movement, nil
}

// BuildAdjustment applies a signed correction. The resulting level may not go
// negative.
func BuildAdjustment(part *model.Part, in *dto.AdjustInput, now time.Time) (model.StockMovement, error) {
	before := part.QuantityInStock
	after := before + in.QuantityChange
	if after < 0 {
		return model.StockMovement{}, &InsufficientStockError{
			PartNumber: part.PartNumber,
			Requested:  -in.QuantityChange,
			Available:  before,
		}
	}

	movement := model.StockMovement{
		ID:             uuid.New().String(),
		PartNumber:     part.PartNumber,
		MovementType:   model.MovementAdjustment,
		Quantity:       in.QuantityChange,
		QuantityBefore: before,
		QuantityAfter:  after,
		Actor:          in.Actor,
		Reference:      "adjustment",
		Notes:          in.Reason,
		CreatedAt:      now,
	}

	part.QuantityInStock = after
	return movement, nil
}
