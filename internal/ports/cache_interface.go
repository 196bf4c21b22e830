package ports

import (
	"context"
)

// OAuthStateRepositoryInterface : Redis слой одноразовых anti-forgery state
type OAuthStateRepositoryInterface interface {
	Save(ctx context.Context, state string) error
	Consume(ctx context.Context, state string) (bool, error)
}
