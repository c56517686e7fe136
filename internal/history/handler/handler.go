package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/maintsys/mro-stock-service/internal/history"
	"github.com/maintsys/mro-stock-service/internal/pkg/logger"
	"go.uber.org/zap"
)

type HistoryHandler struct {
	uc     history.UseCase
	logger logger.ZapLogger
}

func NewHistoryHandler(uc history.UseCase, log logger.ZapLogger) *HistoryHandler {
	return &HistoryHandler{uc: uc, logger: log}
}

// GET /api/equipment/:id/health
func (h *HistoryHandler) HealthScore(c *fiber.Ctx) error {
	metrics, err := h.uc.HealthScore(c.Context(), c.Params("id"))
	if err != nil {
		return h.mapHistoryError(err)
	}
	return c.JSON(metrics)
}

// GET /api/equipment/:id/timeline?days=365
func (h *HistoryHandler) Timeline(c *fiber.Ctx) error {
	events, err := h.uc.Timeline(c.Context(), c.Params("id"), c.QueryInt("days", 365))
	if err != nil {
		return h.mapHistoryError(err)
	}
	return c.JSON(events)
}

// GET /api/equipment/:id/trends?months=12
func (h *HistoryHandler) Trends(c *fiber.Ctx) error {
	trends, err := h.uc.Trends(c.Context(), c.Params("id"), c.QueryInt("months", 12))
	if err != nil {
		return h.mapHistoryError(err)
	}
	return c.JSON(trends)
}

func (h *HistoryHandler) mapHistoryError(err error) error {
	var notFoundErr *history.EquipmentNotFoundError
	if errors.As(err, &notFoundErr) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	h.logger.Error("history aggregation failed", zap.Error(err))
	return fiber.NewError(fiber.StatusServiceUnavailable, "history data unavailable")
}
