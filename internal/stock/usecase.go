package stock

import (
	"context"

	"github.com/maintsys/mro-stock-service/internal/model"
	"github.com/maintsys/mro-stock-service/internal/stock/dto"
)

type UseCase interface {
	// RecordConsumption records the parts a technician used on one work
	// order. Returns the number of parts recorded. An empty batch is a valid
	// no-op.
	RecordConsumption(ctx context.Context, in *dto.ConsumeInput) (int, error)

	ReceiveStock(ctx context.Context, in *dto.ReceiveInput) (*model.StockMovement, error)
	AdjustStock(ctx context.Context, in *dto.AdjustInput) (*model.StockMovement, error)

	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
	ListUsageForWorkOrder(ctx context.Context, workOrderID string) ([]model.UsageRecord, error)
}
