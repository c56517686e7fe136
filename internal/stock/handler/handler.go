package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/maintsys/mro-stock-service/internal/auth"
	"github.com/maintsys/mro-stock-service/internal/pkg/logger"
	"github.com/maintsys/mro-stock-service/internal/stock"
	"github.com/maintsys/mro-stock-service/internal/stock/dto"
	"go.uber.org/zap"
)

type StockHandler struct {
	uc     stock.UseCase
	logger logger.ZapLogger
}

func NewStockHandler(uc stock.UseCase, log logger.ZapLogger) *StockHandler {
	return &StockHandler{uc: uc, logger: log}
}

type recordConsumptionRequest struct {
	Items []dto.ConsumeItem `json:"items"`
}

type receiveStockRequest struct {
	PartNumber string  `json:"part_number"`
	Quantity   float64 `json:"quantity"`
	Reference  string  `json:"reference"`
	Notes      string  `json:"notes"`
}

type adjustStockRequest struct {
	PartNumber     string  `json:"part_number"`
	QuantityChange float64 `json:"quantity_change"`
	Reason         string  `json:"reason"`
}

// POST /api/work-orders/:id/parts-used
func (h *StockHandler) RecordConsumption(c *fiber.Ctx) error {
	var body recordConsumptionRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	in := &dto.ConsumeInput{
		WorkOrderID: c.Params("id"),
		Technician:  auth.CurrentActor(c),
		Items:       body.Items,
	}

	count, err := h.uc.RecordConsumption(c.Context(), in)
	if err != nil {
		return h.mapStockError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"work_order_id": in.WorkOrderID,
		"recorded":      count,
	})
}

// GET /api/work-orders/:id/parts-used
func (h *StockHandler) ListUsageForWorkOrder(c *fiber.Ctx) error {
	records, err := h.uc.ListUsageForWorkOrder(c.Context(), c.Params("id"))
	if err != nil {
		return h.mapStockError(err)
	}
	return c.JSON(records)
}

// POST /api/stock/receipts
func (h *StockHandler) ReceiveStock(c *fiber.Ctx) error {
	var body receiveStockRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	movement, err := h.uc.ReceiveStock(c.Context(), &dto.ReceiveInput{
		PartNumber: body.PartNumber,
		Quantity:   body.Quantity,
		Actor:      auth.CurrentActor(c),
		Reference:  body.Reference,
		Notes:      body.Notes,
	})
	if err != nil {
		return h.mapStockError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(movement)
}

// POST /api/stock/adjustments
func (h *StockHandler) AdjustStock(c *fiber.Ctx) error {
	var body adjustStockRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	movement, err := h.uc.AdjustStock(c.Context(), &dto.AdjustInput{
		PartNumber:     body.PartNumber,
		QuantityChange: body.QuantityChange,
		Actor:          auth.CurrentActor(c),
		Reason:         body.Reason,
	})
	if err != nil {
		return h.mapStockError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(movement)
}

// GET /api/stock/movements
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	filters := &dto.MovementFilters{
		PartNumber:   c.Query("part_number"),
		MovementType: c.Query("movement_type"),
		Reference:    c.Query("reference"),
		Page:         c.QueryInt("page", 1),
		PageSize:     c.QueryInt("page_size", 50),
	}
	if v := c.Query("start_date"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filters.StartDate = &t
		}
	}
	if v := c.Query("end_date"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filters.EndDate = &t
		}
	}

	movements, count, err := h.uc.ListMovements(c.Context(), filters)
	if err != nil {
		return h.mapStockError(err)
	}
	return c.JSON(fiber.Map{"movements": movements, "total": count})
}

// mapStockError translates domain errors to HTTP statuses. Validation and
// batch-shape problems are correctable (400), business rules conflict with
// current stock state (409), anything else is a storage failure (500).
func (h *StockHandler) mapStockError(err error) error {
	var (
		validationErr   *stock.ValidationError
		duplicateErr    *stock.DuplicatePartError
		notFoundErr     *stock.PartNotFoundError
		inactiveErr     *stock.PartInactiveError
		outOfStockErr   *stock.OutOfStockError
		insufficientErr *stock.InsufficientStockError
		busyErr         *stock.BusyError
	)

	switch {
	case errors.As(err, &busyErr):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	case errors.As(err, &validationErr), errors.As(err, &duplicateErr):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.As(err, &notFoundErr):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.As(err, &inactiveErr), errors.As(err, &outOfStockErr), errors.As(err, &insufficientErr):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		h.logger.Error("stock operation failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "storage failure, the operation was rolled back")
	}
}
