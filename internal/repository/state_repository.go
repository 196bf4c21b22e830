package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"photoshare-server/config"
	"photoshare-server/internal/util"
)

// OAuthStateRepository хранит anti-forgery state серверной стороной.
// Одной client-side очистки cookie недостаточно: state должен быть
// одноразовым, повторный callback с тем же значением отклоняется
type OAuthStateRepository struct {
	client *config.RedisClient
	ttl    time.Duration
}

func NewOAuthStateRepository(rdb *config.RedisClient, ttl time.Duration) *OAuthStateRepository {
	return &OAuthStateRepository{client: rdb, ttl: ttl}
}

// Save регистрирует выданный state на время жизни авторизационного запроса
func (r *OAuthStateRepository) Save(ctx context.Context, state string) error {
	if err := r.client.Client.Set(ctx, r.key(state), "1", r.ttl).Err(); err != nil {
		return util.LogError("ошибка сохранения oauth state в Redis", err)
	}
	return nil
}

// Consume атомарно изымает state. GETDEL гарантирует, что из двух
// конкурентных callback с одним state пройдёт максимум один
func (r *OAuthStateRepository) Consume(ctx context.Context, state string) (bool, error) {
	_, err := r.client.Client.GetDel(ctx, r.key(state)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, util.LogError("ошибка изъятия oauth state из Redis", err)
	}

	return true, nil
}

func (r *OAuthStateRepository) key(state string) string {
	return fmt.Sprintf("oauth_state:%s", state)
}
