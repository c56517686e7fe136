package part

import (
	"context"

	"github.com/maintsys/mro-stock-service/internal/model"
	"github.com/maintsys/mro-stock-service/internal/part/dto"
)

type UseCase interface {
	CreatePart(ctx context.Context, input *dto.CreatePartInput) (*model.Part, error)
	GetPart(ctx context.Context, partNumber string) (*model.Part, error)
	ListParts(ctx context.Context, filters *dto.PartFilters) ([]model.Part, int, error)
	UpdatePart(ctx context.Context, input *dto.UpdatePartInput) (*model.Part, error)
	DeactivatePart(ctx context.Context, partNumber, actor string) error
	ReactivatePart(ctx context.Context, partNumber, actor string) error
	DeletePart(ctx context.Context, partNumber, actor string) error
	LowStock(ctx context.Context) ([]dto.LowStockPart, error)
	Summary(ctx context.Context) (*dto.StockSummary, error)
}
