package ports

import (
	"context"

	"photoshare-server/internal/model"
)

// OAuthService — федеративный вход по authorization-code flow
type OAuthService interface {
	Configured() bool
	AuthorizationURL(ctx context.Context) (redirectURL string, state string, err error)
	HandleCallback(ctx context.Context, code, state, cookieState, userAgent, ipAddress string) (*model.TokensPair, error)
	FrontendRedirectURL() string
}
