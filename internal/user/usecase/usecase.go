package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/maintsys/mro-stock-service/internal/audit"
	"github.com/maintsys/mro-stock-service/internal/auth"
	"github.com/maintsys/mro-stock-service/internal/model"
	"github.com/maintsys/mro-stock-service/internal/pkg/logger"
	"github.com/maintsys/mro-stock-service/internal/user"
	"github.com/maintsys/mro-stock-service/internal/user/dto"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 4

type userUseCase struct {
	repo      user.Repository
	auditor   audit.Recorder
	logger    logger.ZapLogger
	jwtSecret string
	jwtTTL    time.Duration
}

func NewUserUseCase(repo user.Repository, auditor audit.Recorder, log logger.ZapLogger, jwtSecret string, jwtTTL time.Duration) user.UseCase {
	return &userUseCase{
		repo:      repo,
		auditor:   auditor,
		logger:    log,
		jwtSecret: jwtSecret,
		jwtTTL:    jwtTTL,
	}
}

func validRole(role string) bool {
	switch model.UserRole(role) {
	case model.RoleAdmin, model.RoleSupervisor, model.RoleTechnician, model.RoleViewer:
		return true
	}
	return false
}

func (uc *userUseCase) Login(ctx context.Context, input *dto.LoginInput) (*dto.LoginResult, error) {
	if input.Username == "" || input.Password == "" {
		return nil, &user.InvalidCredentialsError{}
	}

	u, err := uc.repo.FindByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, &user.InvalidCredentialsError{}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)); err != nil {
		return nil, &user.InvalidCredentialsError{}
	}
	if !u.IsActive {
		return nil, &user.AccountInactiveError{Username: u.Username}
	}

	token, err := auth.GenerateToken(uc.jwtSecret, uc.jwtTTL, u)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("user logged in", zap.String("username", u.Username))
	return &dto.LoginResult{Token: token, User: u}, nil
}

func (uc *userUseCase) CreateUser(ctx context.Context, input *dto.CreateUserInput) (*model.User, error) {
	if input.Username == "" {
		return nil, &user.ValidationError{Reason: "username is required"}
	}
	if len(input.Password) < minPasswordLength {
		return nil, &user.ValidationError{Reason: "password must be at least 4 characters"}
	}
	if !validRole(input.Role) {
		return nil, &user.ValidationError{Reason: "role must be one of admin, supervisor, technician, viewer"}
	}

	unique, err := uc.repo.IsUsernameUnique(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, &user.UsernameTakenError{Username: input.Username}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	u := &model.User{
		BaseModel:    model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Username:     input.Username,
		PasswordHash: string(hash),
		FullName:     input.FullName,
		Role:         model.UserRole(input.Role),
		IsActive:     true,
	}
	if input.Email != "" {
		u.Email = &input.Email
	}
	if input.Actor != "" {
		actor := input.Actor
		u.CreatedBy = &actor
	}

	if err := uc.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	uc.logger.Info("created user",
		zap.String("username", u.Username),
		zap.String("role", string(u.Role)),
	)
	uc.auditor.Record(ctx, audit.Event{
		EntityType: "user",
		EntityID:   u.ID,
		Action:     model.AuditActionCreate,
		Actor:      input.Actor,
		After:      u,
	})

	return u, nil
}

func (uc *userUseCase) UpdateUser(ctx context.Context, input *dto.UpdateUserInput) (*model.User, error) {
	u, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, &user.NotFoundError{ID: input.ID}
	}
	if !validRole(input.Role) {
		return nil, &user.ValidationError{Reason: "role must be one of admin, supervisor, technician, viewer"}
	}

	before := *u

	u.FullName = input.FullName
	u.Role = model.UserRole(input.Role)
	if input.Email != "" {
		email := input.Email
		u.Email = &email
	} else {
		u.Email = nil
	}
	u.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	uc.auditor.Record(ctx, audit.Event{
		EntityType: "user",
		EntityID:   u.ID,
		Action:     model.AuditActionUpdate,
		Actor:      input.Actor,
		Before:     before,
		After:      u,
	})

	return u, nil
}

func (uc *userUseCase) DeactivateUser(ctx context.Context, id, actor string) error {
	u, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if u == nil {
		return &user.NotFoundError{ID: id}
	}
	if !u.IsActive {
		return nil
	}

	before := *u
	u.IsActive = false
	u.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, u); err != nil {
		return err
	}

	uc.logger.Info("deactivated user", zap.String("username", u.Username))
	uc.auditor.Record(ctx, audit.Event{
		EntityType: "user",
		EntityID:   u.ID,
		Action:     model.AuditActionUpdate,
		Actor:      actor,
		Before:     before,
		After:      u,
	})

	return nil
}

func (uc *userUseCase) ChangePassword(ctx context.Context, input *dto.ChangePasswordInput) error {
	u, err := uc.repo.FindByID(ctx, input.UserID)
	if err != nil {
		return err
	}
	if u == nil {
		return &user.NotFoundError{ID: input.UserID}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.CurrentPassword)); err != nil {
		return &user.InvalidCredentialsError{}
	}
	if len(input.NewPassword) < minPasswordLength {
		return &user.ValidationError{Reason: "new password must be at least 4 characters"}
	}
	if input.NewPassword == input.CurrentPassword {
		return &user.ValidationError{Reason: "new password must be different from current password"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	u.PasswordHash = string(hash)
	u.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, u); err != nil {
		return err
	}

	uc.logger.Info("changed password", zap.String("username", u.Username))
	return nil
}

// ResetPassword overwrites a user's password without verifying the current
// one. The route is admin-only; the audit trail records who did it.
func (uc *userUseCase) ResetPassword(ctx context.Context, input *dto.ResetPasswordInput) error {
	if len(input.NewPassword) < minPasswordLength {
		return &user.ValidationError{Reason: "new password must be at least 4 characters"}
	}

	u, err := uc.repo.FindByID(ctx, input.UserID)
	if err != nil {
		return err
	}
	if u == nil {
		return &user.NotFoundError{ID: input.UserID}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	u.PasswordHash = string(hash)
	u.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, u); err != nil {
		return err
	}

	uc.logger.Info("reset password",
		zap.String("username", u.Username),
		zap.String("actor", input.Actor),
	)
	uc.auditor.Record(ctx, audit.Event{
		EntityType: "user",
		EntityID:   u.ID,
		Action:     model.AuditActionUpdate,
		Actor:      input.Actor,
	})

	return nil
}

func (uc *userUseCase) ListUsers(ctx context.Context) ([]model.User, error) {
	return uc.repo.FindAll(ctx)
}
