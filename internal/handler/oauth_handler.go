package handler

import (
	"errors"
	"log"
	"net/http"

	"photoshare-server/internal/ports"
	"photoshare-server/internal/security"
	"photoshare-server/internal/service"
)

type OAuthHandler struct {
	oauthService  ports.OAuthService
	cookieService *security.CookieService
}

func NewOAuthHandler(oauthService ports.OAuthService, cookieService *security.CookieService) *OAuthHandler {
	return &OAuthHandler{
		oauthService:  oauthService,
		cookieService: cookieService,
	}
}

// StartGithubAuth godoc
// @Summary Начало входа через GitHub
// @Description Ставит anti-forgery state cookie и перенаправляет на страницу авторизации GitHub
// @Tags OAuth
// @Success 302 {string} string "Redirect на GitHub"
// @Failure 500 {object} requestresponse.ErrorResponse "Провайдер не настроен"
// @Router /api/auth/github [get]
func (h *OAuthHandler) StartGithubAuth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	redirectURL, state, err := h.oauthService.AuthorizationURL(ctx)
	if err != nil {
		log.Println(err)
		if errors.Is(err, service.ErrOAuthNotConfigured) {
			sendErrorResponse(w, http.StatusInternalServerError, "GitHub OAuth не настроен")
			return
		}
		sendErrorResponse(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		return
	}

	h.cookieService.SetStateCookie(w, state)
	http.Redirect(w, r, redirectURL, http.StatusFound)
}

// GithubCallback godoc
// @Summary Callback входа через GitHub
// @Description Завершает authorization-code flow: проверяет state, обменивает код, отображает профиль на локальный аккаунт, ставит сессионные cookie и перенаправляет на фронтенд
// @Tags OAuth
// @Success 302 {string} string "Redirect на фронтенд"
// @Failure 400 {object} requestresponse.ErrorResponse "Невалидный state, код или профиль"
// @Failure 502 {object} requestresponse.ErrorResponse "Ошибка обмена кода у провайдера"
// @Router /api/auth/github/callback [get]
func (h *OAuthHandler) GithubCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cookieState := ""
	if cookie, err := r.Cookie(security.OAuthStateCookie); err == nil {
		cookieState = cookie.Value
	}

	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	tokens, err := h.oauthService.HandleCallback(ctx, code, state, cookieState, r.UserAgent(), r.RemoteAddr)

	// state cookie гасится на каждом выходе из потока, успешном и нет:
	// полузавершённый обмен нельзя доиграть повторным запросом
	h.cookieService.ClearStateCookie(w)

	if err != nil {
		log.Println(err)
		switch {
		case errors.Is(err, service.ErrOAuthNotConfigured):
			sendErrorResponse(w, http.StatusInternalServerError, "GitHub OAuth не настроен")
		case errors.Is(err, service.ErrOAuthState):
			sendErrorResponse(w, http.StatusBadRequest, "невалидный oauth state")
		case errors.Is(err, service.ErrOAuthExchange):
			sendErrorResponse(w, http.StatusBadGateway, "не удалось обменять код на токен")
		case errors.Is(err, service.ErrOAuthProfile):
			sendErrorResponse(w, http.StatusBadRequest, "невалидный ответ провайдера")
		default:
			sendErrorResponse(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		}
		return
	}

	h.cookieService.SetSessionCookies(w, tokens)
	http.Redirect(w, r, h.oauthService.FrontendRedirectURL(), http.StatusFound)
}
