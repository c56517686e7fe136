package user

import (
	"context"

	"github.com/maintsys/mro-stock-service/internal/model"
	"github.com/maintsys/mro-stock-service/internal/user/dto"
)

type UseCase interface {
	Login(ctx context.Context, input *dto.LoginInput) (*dto.LoginResult, error)
	CreateUser(ctx context.Context, input *dto.CreateUserInput) (*model.User, error)
	UpdateUser(ctx context.Context, input *dto.UpdateUserInput) (*model.User, error)
	DeactivateUser(ctx context.Context, id, actor string) error
	ChangePassword(ctx context.Context, input *dto.ChangePasswordInput) error
	ResetPassword(ctx context.Context, input *dto.ResetPasswordInput) error
	ListUsers(ctx context.Context) ([]model.User, error)
}
