package security

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"strings"

	"photoshare-server/internal/model"
	"photoshare-server/internal/util"
)

type contextKey string

const (
	UserContextKey      contextKey = "user"
	RequestIDContextKey contextKey = "request_id"
)

// UserFinder — минимальный доступ к хранилищу пользователей, нужный
// middleware для авторитетной проверки роли
type UserFinder interface {
	FindByUUID(ctx context.Context, uuid string) (*model.User, error)
}

// JWTMiddleware извлекает access токен из cookie или заголовка Authorization,
// проверяет подпись и срок и кладёт утверждения в контекст запроса.
// Запрос с невалидным токеном до обработчика не доходит
func JWTMiddleware(jwtService *JWTService) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims, err := authenticate(request, jwtService)
			if err != nil {
				log.Printf("невалидный access токен: %v", err)
				util.HandleError(writer, "не авторизован", http.StatusUnauthorized)
				return
			}

			req := request.WithContext(context.WithValue(request.Context(), UserContextKey, claims))
			next.ServeHTTP(writer, req)
		})
	}
}

// AdminMiddleware пропускает запрос, если роль в токене — admin, иначе
// перечитывает роль из хранилища: утверждение в долгоживущем токене могло
// устареть, источником истины для повышения привилегий остаётся БД
func AdminMiddleware(jwtService *JWTService, users UserFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims, err := authenticate(request, jwtService)
			if err != nil {
				log.Printf("невалидный access токен: %v", err)
				util.HandleError(writer, "не авторизован", http.StatusUnauthorized)
				return
			}

			if claims.Role != model.RoleAdmin {
				user, err := users.FindByUUID(request.Context(), claims.UserUUID)
				if err != nil || user.Role != model.RoleAdmin {
					util.HandleError(writer, "требуются права администратора", http.StatusForbidden)
					return
				}
				claims.Role = model.RoleAdmin
			}

			req := request.WithContext(context.WithValue(request.Context(), UserContextKey, claims))
			next.ServeHTTP(writer, req)
		})
	}
}

func authenticate(request *http.Request, jwtService *JWTService) (*AccessClaims, error) {
	token := ""
	if cookie, err := request.Cookie(AccessTokenCookie); err == nil {
		token = cookie.Value
	}
	if token == "" {
		authorizationHeader := request.Header.Get("Authorization")
		if strings.HasPrefix(authorizationHeader, "Bearer ") {
			token = strings.TrimPrefix(authorizationHeader, "Bearer ")
		}
	}
	if token == "" {
		return nil, fmt.Errorf("access токен не передан")
	}

	return jwtService.ValidateAccessToken(token)
}

// RequestIDMiddleware присваивает запросу короткий идентификатор для
// сквозной трассировки в аудит-логе
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		buf := make([]byte, 4)
		if _, err := rand.Read(buf); err != nil {
			next.ServeHTTP(writer, request)
			return
		}

		requestID := hex.EncodeToString(buf)
		writer.Header().Set("X-Request-Id", requestID)
		req := request.WithContext(context.WithValue(request.Context(), RequestIDContextKey, requestID))
		next.ServeHTTP(writer, req)
	})
}

// GetClaimsFromContext достаёт утверждения текущего пользователя
func GetClaimsFromContext(ctx context.Context) (*AccessClaims, error) {
	claims, ok := ctx.Value(UserContextKey).(*AccessClaims)
	if !ok || claims == nil {
		return nil, fmt.Errorf("пользователь не авторизован")
	}
	return claims, nil
}

// GetRequestIDFromContext возвращает идентификатор запроса или пустую строку
func GetRequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(RequestIDContextKey).(string)
	return requestID
}
