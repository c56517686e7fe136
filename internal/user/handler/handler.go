package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/maintsys/mro-stock-service/internal/auth"
	"github.com/maintsys/mro-stock-service/internal/pkg/logger"
	"github.com/maintsys/mro-stock-service/internal/user"
	"github.com/maintsys/mro-stock-service/internal/user/dto"
	"go.uber.org/zap"
)

type UserHandler struct {
	uc     user.UseCase
	logger logger.ZapLogger
}

func NewUserHandler(uc user.UseCase, log logger.ZapLogger) *UserHandler {
	return &UserHandler{uc: uc, logger: log}
}

// POST /api/auth/login
func (h *UserHandler) Login(c *fiber.Ctx) error {
	var input dto.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.uc.Login(c.Context(), &input)
	if err != nil {
		return h.mapUserError(err)
	}
	return c.JSON(result)
}

// GET /api/users
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.uc.ListUsers(c.Context())
	if err != nil {
		return h.mapUserError(err)
	}
	return c.JSON(users)
}

// POST /api/users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var input dto.CreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	input.Actor = auth.CurrentActor(c)

	u, err := h.uc.CreateUser(c.Context(), &input)
	if err != nil {
		return h.mapUserError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(u)
}

// PUT /api/users/:id
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	var input dto.UpdateUserInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	input.ID = c.Params("id")
	input.Actor = auth.CurrentActor(c)

	u, err := h.uc.UpdateUser(c.Context(), &input)
	if err != nil {
		return h.mapUserError(err)
	}
	return c.JSON(u)
}

// POST /api/users/:id/deactivate
func (h *UserHandler) DeactivateUser(c *fiber.Ctx) error {
	if err := h.uc.DeactivateUser(c.Context(), c.Params("id"), auth.CurrentActor(c)); err != nil {
		return h.mapUserError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// POST /api/users/me/password
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	var input dto.ChangePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	input.UserID = auth.CurrentUserID(c)

	if err := h.uc.ChangePassword(c.Context(), &input); err != nil {
		return h.mapUserError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// POST /api/users/:id/reset-password
func (h *UserHandler) ResetPassword(c *fiber.Ctx) error {
	var input dto.ResetPasswordInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	input.UserID = c.Params("id")
	input.Actor = auth.CurrentActor(c)

	if err := h.uc.ResetPassword(c.Context(), &input); err != nil {
		return h.mapUserError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *UserHandler) mapUserError(err error) error {
	var (
		credentialsErr *user.InvalidCredentialsError
		inactiveErr    *user.AccountInactiveError
		takenErr       *user.UsernameTakenError
		notFoundErr    *user.NotFoundError
		validationErr  *user.ValidationError
	)

	switch {
	case errors.As(err, &credentialsErr):
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	case errors.As(err, &inactiveErr):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.As(err, &validationErr):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.As(err, &notFoundErr):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.As(err, &takenErr):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		h.logger.Error("user operation failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "internal server error")
	}
}
