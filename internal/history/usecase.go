package history

import (
	"context"

	"github.com/maintsys/mro-stock-service/internal/history/dto"
)

type UseCase interface {
	HealthScore(ctx context.Context, equipmentNo string) (*dto.HealthMetrics, error)
	Timeline(ctx context.Context, equipmentNo string, days int) ([]dto.TimelineEvent, error)
	Trends(ctx context.Context, equipmentNo string, months int) (*dto.TrendData, error)
}
