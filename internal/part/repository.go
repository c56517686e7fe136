package part

import (
	"context"

	"github.com/maintsys/mro-stock-service/internal/model"
	"github.com/maintsys/mro-stock-service/internal/part/dto"
)

type Repository interface {
	Create(ctx context.Context, p *model.Part) error
	FindByPartNumber(ctx context.Context, partNumber string) (*model.Part, error)
	FindAll(ctx context.Context, filters *dto.PartFilters) ([]model.Part, int, error)
	Update(ctx context.Context, p *model.Part) error
	Delete(ctx context.Context, partNumber string) error
	IsPartNumberUnique(ctx context.Context, partNumber string) (bool, error)
	HasHistory(ctx context.Context, partNumber string) (bool, error)
	LowStock(ctx context.Context) ([]dto.LowStockPart, error)
	Summary(ctx context.Context) (*dto.StockSummary, error)
}
