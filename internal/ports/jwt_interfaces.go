package ports

import (
	"context"
	"time"

	"photoshare-server/internal/model"
	"photoshare-server/internal/security"
)

type TokenRepositoryInterface interface {
	SaveRefreshToken(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	RevokeByTokenHash(ctx context.Context, tokenHash string, replacedByTokenHash *string) (bool, error)
	RevokeFamily(ctx context.Context, userUUID, family string) error
	RevokeAllForUser(ctx context.Context, userUUID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type JWTServiceInterface interface {
	IssueAccessToken(userUUID string, role string) (string, error)
	IssueRefreshToken(userUUID string, family string) (string, *model.RefreshToken, error)
	ValidateAccessToken(tokenStr string) (*security.AccessClaims, error)
	ValidateRefreshToken(tokenStr string) (*security.RefreshClaims, error)
	AccessTokenTTL() time.Duration
	RefreshTokenTTL() time.Duration
}
