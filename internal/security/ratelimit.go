package security

import (
	"context"
	"log"
	"net"
	"net/http"

	"photoshare-server/internal/util"
)

// RateLimiter — счётчик с фиксированным окном, разделяемый между
// процессами (Redis-реализация в internal/repository)
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimitMiddleware ограничивает частоту запросов по ключу ip:path.
// Недоступность счётчика не блокирует запросы, только логируется
func RateLimitMiddleware(limiter RateLimiter) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			key := callerIP(request) + ":" + request.URL.Path

			allowed, err := limiter.Allow(request.Context(), key)
			if err != nil {
				log.Printf("rate limiter недоступен: %v", err)
				next.ServeHTTP(writer, request)
				return
			}

			if !allowed {
				util.HandleError(writer, "слишком много запросов", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

func callerIP(request *http.Request) string {
	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return request.RemoteAddr
	}
	return host
}
