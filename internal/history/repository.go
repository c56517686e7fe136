package history

import (
	"context"
	"time"

	"github.com/maintsys/mro-stock-service/internal/history/dto"
	"github.com/maintsys/mro-stock-service/internal/model"
)

// Repository reads the maintenance tables this service does not own, plus the
// usage and audit tables it does. All methods are point-in-time reads; the
// usecase derives everything else in memory.
type Repository interface {
	GetEquipment(ctx context.Context, equipmentNo string) (*model.Equipment, error)
	ListPMCompletions(ctx context.Context, equipmentNo string, since time.Time) ([]model.PMCompletion, error)
	ListWorkOrders(ctx context.Context, equipmentNo string, since time.Time) ([]model.WorkOrder, error)
	ListUsageEvents(ctx context.Context, equipmentNo string, since time.Time) ([]dto.UsageEvent, error)
	ListStatusChanges(ctx context.Context, equipmentNo string, since time.Time) ([]dto.StatusChange, error)
}
