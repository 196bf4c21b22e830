package ports

import (
	"context"

	"photoshare-server/internal/model"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	FindByLoginName(ctx context.Context, loginName string) (*model.User, error)
	FindByUUID(ctx context.Context, uuid string) (*model.User, error)
	FindByProvider(ctx context.Context, provider, providerUserID string) (*model.User, error)
}

type UserService interface {
	Register(ctx context.Context, loginName, password, firstName, lastName string) (*model.User, error)
	GetByUUID(ctx context.Context, uuid string) (*model.User, error)
}
