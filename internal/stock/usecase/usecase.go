package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/maintsys/mro-stock-service/internal/model"
	"github.com/maintsys/mro-stock-service/internal/pkg/broker"
	"github.com/maintsys/mro-stock-service/internal/pkg/cache"
	"github.com/maintsys/mro-stock-service/internal/pkg/logger"
	"github.com/maintsys/mro-stock-service/internal/stock"
	"github.com/maintsys/mro-stock-service/internal/stock/dto"
	"go.uber.org/zap"
)

type stockUseCase struct {
	repo     stock.Repository
	cache    *cache.RedisClient
	producer *broker.KafkaProducer
	logger   logger.ZapLogger
}

func NewStockUseCase(repo stock.Repository, c *cache.RedisClient, producer *broker.KafkaProducer, log logger.ZapLogger) stock.UseCase {
	return &stockUseCase{
		repo:     repo,
		cache:    c,
		producer: producer,
		logger:   log,
	}
}

// validateConsumeInput rejects malformed batches before any storage access.
func validateConsumeInput(in *dto.ConsumeInput) error {
	if in.WorkOrderID == "" {
		return &stock.ValidationError{Reason: "work order id is required"}
	}
	if in.Technician == "" {
		return &stock.ValidationError{Reason: "technician is required"}
	}

	seen := map[string]struct{}{}
	for _, item := range in.Items {
		if item.PartNumber == "" {
			return &stock.ValidationError{Reason: "part number is required"}
		}
		if item.Quantity <= 0 {
			return &stock.ValidationError{
				Reason: fmt.Sprintf("quantity for part %s must be greater than 0", item.PartNumber),
			}
		}
		if _, dup := seen[item.PartNumber]; dup {
			return &stock.DuplicatePartError{PartNumber: item.PartNumber}
		}
		seen[item.PartNumber] = struct{}{}
	}
	return nil
}

func (uc *stockUseCase) RecordConsumption(ctx context.Context, in *dto.ConsumeInput) (int, error) {
	if err := validateConsumeInput(in); err != nil {
		return 0, err
	}

	// Closing a work order with no parts used is a valid outcome.
	if len(in.Items) == 0 {
		return 0, nil
	}

	release, err := uc.acquireWriteLock(ctx, "lock:stock:wo:"+in.WorkOrderID)
	if err != nil {
		return 0, err
	}
	defer release()

	records, err := uc.repo.RecordConsumption(ctx, in)
	if err != nil {
		return 0, err
	}

	uc.logger.Info("recorded parts consumption",
		zap.String("work_order_id", in.WorkOrderID),
		zap.String("technician", in.Technician),
		zap.Int("parts", len(records)),
	)

	uc.afterStockWrite(in.WorkOrderID)
	return len(records), nil
}

func (uc *stockUseCase) ReceiveStock(ctx context.Context, in *dto.ReceiveInput) (*model.StockMovement, error) {
	if in.PartNumber == "" {
		return nil, &stock.ValidationError{Reason: "part number is required"}
	}
	if in.Quantity <= 0 {
		return nil, &stock.ValidationError{Reason: "receipt quantity must be greater than 0"}
	}
	if in.Actor == "" {
		return nil, &stock.ValidationError{Reason: "actor is required"}
	}

	release, err := uc.acquireWriteLock(ctx, "lock:stock:part:"+in.PartNumber)
	if err != nil {
		return nil, err
	}
	defer release()

	movement, err := uc.repo.ReceiveStock(ctx, in)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("received stock",
		zap.String("part_number", in.PartNumber),
		zap.Float64("quantity", in.Quantity),
	)

	uc.afterStockWrite(in.Reference)
	return movement, nil
}

func (uc *stockUseCase) AdjustStock(ctx context.Context, in *dto.AdjustInput) (*model.StockMovement, error) {
	if in.PartNumber == "" {
		return nil, &stock.ValidationError{Reason: "part number is required"}
	}
	if in.QuantityChange == 0 {
		return nil, &stock.ValidationError{Reason: "adjustment quantity must be non-zero"}
	}
	if in.Actor == "" {
		return nil, &stock.ValidationError{Reason: "actor is required"}
	}

	release, err := uc.acquireWriteLock(ctx, "lock:stock:part:"+in.PartNumber)
	if err != nil {
		return nil, err
	}
	defer release()

	movement, err := uc.repo.AdjustStock(ctx, in)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("adjusted stock",
		zap.String("part_number", in.PartNumber),
		zap.Float64("change", in.QuantityChange),
	)

	uc.afterStockWrite("adjustment")
	return movement, nil
}

func (uc *stockUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error) {
	return uc.repo.ListMovements(ctx, filters)
}

func (uc *stockUseCase) ListUsageForWorkOrder(ctx context.Context, workOrderID string) ([]model.UsageRecord, error) {
	return uc.repo.ListUsageForWorkOrder(ctx, workOrderID)
}

// StockMovementEvent is published after each committed quantity change.
type StockMovementEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Reference string    `json:"reference"`
	Timestamp time.Time `json:"timestamp"`
}

// acquireWriteLock takes a short redis lock keyed by the resource being
// written, so concurrent writers queue in redis instead of piling up on the
// database row locks. Returns a release func. No-op when redis is not
// configured; the row locks alone still keep the writes correct.
func (uc *stockUseCase) acquireWriteLock(ctx context.Context, key string) (func(), error) {
	if uc.cache == nil {
		return func() {}, nil
	}

	value := uuid.New().String()
	for i := 0; i < 3; i++ {
		ok, err := uc.cache.AcquireLock(ctx, key, value, 5*time.Second)
		if err != nil {
			uc.logger.Error("failed to acquire lock", zap.String("key", key), zap.Error(err))
		}
		if ok {
			return func() { uc.cache.ReleaseLock(ctx, key, value) }, nil
		}
		time.Sleep(100 * time.Millisecond)
	}

	return nil, &stock.BusyError{Key: key}
}

// afterStockWrite invalidates the cached part lists and notifies downstream
// consumers. Both are best-effort; the write has already committed.
func (uc *stockUseCase) afterStockWrite(reference string) {
	go uc.invalidatePartListCache(context.Background())
	go uc.publishMovementEvent(context.Background(), reference)
}

func (uc *stockUseCase) invalidatePartListCache(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	keys, err := uc.cache.Client.Keys(ctx, "parts:list:*").Result()
	if err == nil && len(keys) > 0 {
		uc.cache.Client.Del(ctx, keys...)
	}
}

func (uc *stockUseCase) publishMovementEvent(ctx context.Context, reference string) {
	if uc.producer == nil {
		return
	}
	event := StockMovementEvent{
		EventID:   uuid.New().String(),
		EventType: "stock.movement",
		Reference: reference,
		Timestamp: time.Now(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := uc.producer.Publish(ctx, []byte(reference), data); err != nil {
		uc.logger.Error("failed to publish stock movement event", zap.Error(err))
	}
}
