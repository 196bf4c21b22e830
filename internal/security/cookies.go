package security

import (
	"net/http"
	"time"

	"photoshare-server/config"
	"photoshare-server/internal/model"
)

// Имена cookie — часть контракта с браузерным клиентом
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
	OAuthStateCookie   = "oauth_state"
)

// Пути, на которые ограничены refresh и state cookie
const (
	RefreshCookiePath     = "/api/auth/refresh"
	OAuthCallbackPath     = "/api/auth/github/callback"
	DefaultStateCookieTTL = 10 * time.Minute
)

// CookieService выставляет и гасит сессионные cookie с едиными атрибутами:
// HttpOnly, SameSite=Lax, Secure в production
type CookieService struct {
	production bool
	accessTTL  time.Duration
	refreshTTL time.Duration
	stateTTL   time.Duration
}

func NewCookieService(cfg *config.CookieConfig, accessTTL, refreshTTL, stateTTL time.Duration) *CookieService {
	if stateTTL <= 0 {
		stateTTL = DefaultStateCookieTTL
	}
	return &CookieService{
		production: cfg.Production,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		stateTTL:   stateTTL,
	}
}

func (service *CookieService) SetSessionCookies(w http.ResponseWriter, tokens *model.TokensPair) {
	http.SetCookie(w, service.cookie(AccessTokenCookie, tokens.AccessToken, "/", service.accessTTL))
	http.SetCookie(w, service.cookie(RefreshTokenCookie, tokens.RefreshToken, RefreshCookiePath, service.refreshTTL))
}

func (service *CookieService) ClearSessionCookies(w http.ResponseWriter) {
	http.SetCookie(w, service.cookie(AccessTokenCookie, "", "/", -time.Second))
	http.SetCookie(w, service.cookie(RefreshTokenCookie, "", RefreshCookiePath, -time.Second))
}

func (service *CookieService) SetStateCookie(w http.ResponseWriter, state string) {
	http.SetCookie(w, service.cookie(OAuthStateCookie, state, OAuthCallbackPath, service.stateTTL))
}

func (service *CookieService) ClearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, service.cookie(OAuthStateCookie, "", OAuthCallbackPath, -time.Second))
}

func (service *CookieService) cookie(name, value, path string, ttl time.Duration) *http.Cookie {
	maxAge := int(ttl.Seconds())
	if ttl < 0 {
		maxAge = -1
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   service.production,
		SameSite: http.SameSiteLaxMode,
	}
}
