package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/maintsys/mro-stock-service/internal/pkg/broker"
	"github.com/maintsys/mro-stock-service/internal/pkg/logger"
	"github.com/maintsys/mro-stock-service/internal/stock"
	"github.com/maintsys/mro-stock-service/internal/stock/dto"
	"go.uber.org/zap"
)

type StockListener struct {
	consumer *broker.KafkaConsumer
	uc       stock.UseCase
	logger   logger.ZapLogger
}

func NewStockListener(consumer *broker.KafkaConsumer, uc stock.UseCase, logger logger.ZapLogger) *StockListener {
	return &StockListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
	}
}

func (l *StockListener) Start(ctx context.Context) {
	l.logger.Info("Starting Stock Kafka Listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping Stock Kafka Listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				// Don't log context canceled error as error
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type WorkOrderClosedEvent struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	Payload   WorkOrderPayload `json:"payload"`
	Timestamp time.Time        `json:"timestamp"`
}

type WorkOrderPayload struct {
	WorkOrderID string            `json:"work_order_id"`
	EquipmentNo string            `json:"equipment_no"`
	Technician  string            `json:"technician"`
	PartsUsed   []PartUsedPayload `json:"parts_used"`
}

type PartUsedPayload struct {
	PartNumber string  `json:"part_number"`
	Quantity   float64 `json:"quantity"`
}

func (l *StockListener) processMessage(ctx context.Context, value []byte) {
	var event WorkOrderClosedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != "WorkOrderClosed" {
		return
	}

	if len(event.Payload.PartsUsed) == 0 {
		return
	}

	l.logger.Info("Processing WorkOrderClosed event", zap.String("work_order_id", event.Payload.WorkOrderID))

	technician := event.Payload.Technician
	if technician == "" {
		technician = "system"
	}

	items := make([]dto.ConsumeItem, 0, len(event.Payload.PartsUsed))
	for _, p := range event.Payload.PartsUsed {
		items = append(items, dto.ConsumeItem{
			PartNumber: p.PartNumber,
			Quantity:   p.Quantity,
		})
	}

	input := &dto.ConsumeInput{
		WorkOrderID: event.Payload.WorkOrderID,
		Technician:  technician,
		Items:       items,
	}

	if _, err := l.uc.RecordConsumption(ctx, input); err != nil {
		l.logger.Error("Failed to record consumption for closed work order",
			zap.String("work_order_id", event.Payload.WorkOrderID),
			zap.Error(err),
		)
		// Rejected batches are not retried; the work order stays open for
		// manual reconciliation.
	}
}
