package security

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"photoshare-server/config"
	"photoshare-server/internal/model"
	"photoshare-server/internal/util"
)

const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour
)

// AccessClaims — утверждения короткоживущего access токена.
// Роль в токене — кэш: middleware доверяет ей только для понижения,
// повышение привилегий всегда перепроверяется по БД
type AccessClaims struct {
	UserUUID string `json:"user_uuid"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// RefreshClaims — утверждения refresh токена. ID (jti) и ExpiresAt
// обязательны: по ним создаётся запись в refresh_tokens
type RefreshClaims struct {
	UserUUID string `json:"user_uuid"`
	Family   string `json:"family"`
	jwt.RegisteredClaims
}

type JWTService struct {
	cfg        *config.JWTConfig
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewJWTService(cfg *config.JWTConfig) (*JWTService, error) {
	accessTTL, err := util.ParseTTL(cfg.AccessTokenTTL, DefaultAccessTokenTTL)
	if err != nil {
		return nil, util.LogError("ошибка парсинга access TTL", err)
	}

	refreshTTL, err := util.ParseTTL(cfg.RefreshTokenTTL, DefaultRefreshTokenTTL)
	if err != nil {
		return nil, util.LogError("ошибка парсинга refresh TTL", err)
	}

	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, fmt.Errorf("не заданы секреты подписи токенов")
	}

	return &JWTService{cfg: cfg, accessTTL: accessTTL, refreshTTL: refreshTTL}, nil
}

func (service *JWTService) AccessTokenTTL() time.Duration  { return service.accessTTL }
func (service *JWTService) RefreshTokenTTL() time.Duration { return service.refreshTTL }

// IssueAccessToken выпускает подписанный access токен. Запись на сервере
// не создаётся: токен самодостаточен до истечения срока
func (service *JWTService) IssueAccessToken(userUUID string, role string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserUUID: userUUID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userUUID,
			ExpiresAt: jwt.NewNumericDate(now.Add(service.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "photoshare-server",
		},
	}

	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	accessToken, err := jwtToken.SignedString([]byte(service.cfg.AccessSecret))
	if err != nil {
		return "", util.LogError("ошибка подписи access токена", err)
	}

	return accessToken, nil
}

// IssueRefreshToken выпускает refresh токен с новым jti в рамках переданной
// family. Возвращает сам токен и заготовку записи для refresh_tokens,
// заполненную из подписанных утверждений. Отсутствие jti или exp в
// результате — фатальная ошибка конфигурации подписи, не пользовательская
func (service *JWTService) IssueRefreshToken(userUUID string, family string) (string, *model.RefreshToken, error) {
	now := time.Now()
	claims := RefreshClaims{
		UserUUID: userUUID,
		Family:   family,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userUUID,
			ExpiresAt: jwt.NewNumericDate(now.Add(service.refreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "photoshare-server",
		},
	}

	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	refreshToken, err := jwtToken.SignedString([]byte(service.cfg.RefreshSecret))
	if err != nil {
		return "", nil, util.LogError("ошибка подписи refresh токена", err)
	}

	decoded, err := service.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", nil, util.LogError("только что выпущенный refresh токен не прошёл проверку", err)
	}
	if decoded.ID == "" || decoded.ExpiresAt == nil {
		return "", nil, fmt.Errorf("refresh токен подписан без jti или exp")
	}

	record := &model.RefreshToken{
		UUID:      decoded.ID,
		UserUUID:  userUUID,
		TokenHash: Fingerprint(refreshToken),
		Family:    family,
		ExpiresAt: decoded.ExpiresAt.Time,
	}

	return refreshToken, record, nil
}

func (service *JWTService) ValidateAccessToken(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := service.validate(tokenStr, claims, service.cfg.AccessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (service *JWTService) ValidateRefreshToken(tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := service.validate(tokenStr, claims, service.cfg.RefreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (service *JWTService) validate(tokenStr string, claims jwt.Claims, secret string) error {
	jwtToken, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Header["alg"] != jwt.SigningMethodHS512.Alg() {
			return nil, fmt.Errorf("неверный способ подписи токена: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})

	if err != nil || !jwtToken.Valid {
		return util.LogError("невалидный токен", err)
	}

	return nil
}

// Fingerprint — детерминированный одностронний отпечаток токена, ключ
// поиска в refresh_tokens. Именно детерминированность (в отличие от bcrypt)
// делает возможным lookup-by-hash
func Fingerprint(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}
