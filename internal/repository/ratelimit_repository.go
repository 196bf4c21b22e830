package repository

import (
	"context"
	"fmt"
	"time"

	"photoshare-server/config"
	"photoshare-server/internal/util"
)

// RateLimitRepository — счётчик запросов с фиксированным окном поверх Redis.
// Разделяемое хранилище позволяет работать нескольким процессам приложения
// (в отличие от счётчика в памяти одного процесса)
type RateLimitRepository struct {
	client *config.RedisClient
	window time.Duration
	max    int64
}

func NewRateLimitRepository(rdb *config.RedisClient, window time.Duration, max int64) *RateLimitRepository {
	return &RateLimitRepository{client: rdb, window: window, max: max}
}

// Allow инкрементирует счётчик окна и сообщает, укладывается ли вызывающий
// в лимит. Первый запрос окна устанавливает срок жизни ключа
func (r *RateLimitRepository) Allow(ctx context.Context, key string) (bool, error) {
	count, err := r.client.Client.Incr(ctx, r.key(key)).Result()
	if err != nil {
		return false, util.LogError("ошибка инкремента счётчика в Redis", err)
	}

	if count == 1 {
		if err := r.client.Client.Expire(ctx, r.key(key), r.window).Err(); err != nil {
			return false, util.LogError("ошибка установки TTL счётчика в Redis", err)
		}
	}

	return count <= r.max, nil
}

func (r *RateLimitRepository) key(callerKey string) string {
	return fmt.Sprintf("ratelimit:%s", callerKey)
}
