package user

import (
	"context"

	"github.com/maintsys/mro-stock-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindAll(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, u *model.User) error
	IsUsernameUnique(ctx context.Context, username string) (bool, error)
}
