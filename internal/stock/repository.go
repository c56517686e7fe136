package stock

import (
	"context"

	"github.com/maintsys/mro-stock-service/internal/model"
	"github.com/maintsys/mro-stock-service/internal/stock/dto"
)

type Repository interface {
	// RecordConsumption applies a validated batch as a single transaction:
	// per item one issue movement, one usage record and the stock decrement.
	// Either every item is applied or none are. Returns the usage records
	// written.
	RecordConsumption(ctx context.Context, in *dto.ConsumeInput) ([]model.UsageRecord, error)

	// ReceiveStock and AdjustStock are the symmetric single-part write paths,
	// same transaction discipline as consumption.
	ReceiveStock(ctx context.Context, in *dto.ReceiveInput) (*model.StockMovement, error)
	AdjustStock(ctx context.Context, in *dto.AdjustInput) (*model.StockMovement, error)

	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
	ListUsageForWorkOrder(ctx context.Context, workOrderID string) ([]model.UsageRecord, error)
}
