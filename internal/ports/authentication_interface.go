package ports

import (
	"context"

	"photoshare-server/internal/model"
)

type AuthenticationService interface {
	Login(ctx context.Context, loginName, password, userAgent, ipAddress string) (*model.TokensPair, *model.User, error)
	Refresh(ctx context.Context, refreshToken, userAgent, ipAddress string) (*model.TokensPair, error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAll(ctx context.Context, userUUID string) error
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}
