package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/maintsys/mro-stock-service/internal/auth"
	"github.com/maintsys/mro-stock-service/internal/part"
	"github.com/maintsys/mro-stock-service/internal/part/dto"
	"github.com/maintsys/mro-stock-service/internal/pkg/logger"
	"go.uber.org/zap"
)

type PartHandler struct {
	uc     part.UseCase
	logger logger.ZapLogger
}

func NewPartHandler(uc part.UseCase, log logger.ZapLogger) *PartHandler {
	return &PartHandler{uc: uc, logger: log}
}

// POST /api/parts
func (h *PartHandler) CreatePart(c *fiber.Ctx) error {
	var input dto.CreatePartInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	input.Actor = auth.CurrentActor(c)

	p, err := h.uc.CreatePart(c.Context(), &input)
	if err != nil {
		return h.mapPartError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

// GET /api/parts/:part_number
func (h *PartHandler) GetPart(c *fiber.Ctx) error {
	p, err := h.uc.GetPart(c.Context(), c.Params("part_number"))
	if err != nil {
		return h.mapPartError(err)
	}
	return c.JSON(p)
}

// GET /api/parts
func (h *PartHandler) ListParts(c *fiber.Ctx) error {
	filters := &dto.PartFilters{
		SearchQuery:       c.Query("search"),
		EngineeringSystem: c.Query("engineering_system"),
		Location:          c.Query("location"),
		Status:            c.Query("status"),
		Page:              c.QueryInt("page", 1),
		PageSize:          c.QueryInt("page_size", 50),
	}

	parts, count, err := h.uc.ListParts(c.Context(), filters)
	if err != nil {
		return h.mapPartError(err)
	}
	return c.JSON(fiber.Map{"parts": parts, "total": count})
}

// PUT /api/parts/:part_number
func (h *PartHandler) UpdatePart(c *fiber.Ctx) error {
	var input dto.UpdatePartInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	input.PartNumber = c.Params("part_number")
	input.Actor = auth.CurrentActor(c)

	p, err := h.uc.UpdatePart(c.Context(), &input)
	if err != nil {
		return h.mapPartError(err)
	}
	return c.JSON(p)
}

// POST /api/parts/:part_number/deactivate
func (h *PartHandler) DeactivatePart(c *fiber.Ctx) error {
	if err := h.uc.DeactivatePart(c.Context(), c.Params("part_number"), auth.CurrentActor(c)); err != nil {
		return h.mapPartError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// POST /api/parts/:part_number/reactivate
func (h *PartHandler) ReactivatePart(c *fiber.Ctx) error {
	if err := h.uc.ReactivatePart(c.Context(), c.Params("part_number"), auth.CurrentActor(c)); err != nil {
		return h.mapPartError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DELETE /api/parts/:part_number
func (h *PartHandler) DeletePart(c *fiber.Ctx) error {
	if err := h.uc.DeletePart(c.Context(), c.Params("part_number"), auth.CurrentActor(c)); err != nil {
		return h.mapPartError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GET /api/parts/low-stock
func (h *PartHandler) LowStock(c *fiber.Ctx) error {
	parts, err := h.uc.LowStock(c.Context())
	if err != nil {
		return h.mapPartError(err)
	}
	return c.JSON(parts)
}

// GET /api/parts/summary
func (h *PartHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.uc.Summary(c.Context())
	if err != nil {
		return h.mapPartError(err)
	}
	return c.JSON(summary)
}

func (h *PartHandler) mapPartError(err error) error {
	var (
		validationErr *part.ValidationError
		existsErr     *part.AlreadyExistsError
		notFoundErr   *part.NotFoundError
		referencedErr *part.ReferencedError
	)

	switch {
	case errors.As(err, &validationErr):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.As(err, &notFoundErr):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.As(err, &existsErr), errors.As(err, &referencedErr):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		h.logger.Error("part operation failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "internal server error")
	}
}
