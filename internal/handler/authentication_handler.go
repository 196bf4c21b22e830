package handler

import (
	"errors"
	"log"
	"net/http"

	"photoshare-server/internal/model/requestresponse"
	"photoshare-server/internal/ports"
	"photoshare-server/internal/security"
	"photoshare-server/internal/service"
	"photoshare-server/internal/util"
)

type AuthenticationHandler struct {
	authenticationService ports.AuthenticationService
	userService           ports.UserService
	cookieService         *security.CookieService
	returnTokenInBody     bool
}

func NewAuthenticationHandler(
	authenticationService ports.AuthenticationService,
	userService ports.UserService,
	cookieService *security.CookieService,
	returnTokenInBody bool,
) *AuthenticationHandler {
	return &AuthenticationHandler{
		authenticationService: authenticationService,
		userService:           userService,
		cookieService:         cookieService,
		returnTokenInBody:     returnTokenInBody,
	}
}

// Login godoc
// @Summary Аутентификация пользователя
// @Description Вход по логину и паролю. Пара токенов ставится в httpOnly cookie; access токен дублируется в теле только при включённой настройке return_token_in_body
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.LoginRequest true "Тело запроса"
// @Success 200 {object} requestresponse.LoginResponse
// @Failure 400 {object} requestresponse.ErrorResponse "login_name или password не переданы"
// @Failure 401 {object} requestresponse.ErrorResponse "Неверный логин или пароль"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/auth [post]
func (h *AuthenticationHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req requestresponse.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if req.LoginName == "" || req.Password == "" {
		sendErrorResponse(w, http.StatusBadRequest, "login_name и password обязательны")
		return
	}

	tokens, user, err := h.authenticationService.Login(ctx, req.LoginName, req.Password, r.UserAgent(), r.RemoteAddr)
	if err != nil {
		log.Println(err)
		if errors.Is(err, service.ErrInvalidCredentials) {
			sendErrorResponse(w, http.StatusUnauthorized, "неверный логин или пароль")
			return
		}
		sendErrorResponse(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		return
	}

	h.cookieService.SetSessionCookies(w, tokens)

	resp := requestresponse.LoginResponse{User: requestresponse.UserPayloadFromModel(user)}
	if h.returnTokenInBody {
		resp.Token = tokens.AccessToken
	}

	util.RespondJSON(w, http.StatusOK, resp)
}

// Refresh godoc
// @Summary Ротация пары токенов
// @Description Обменивает refresh токен из cookie на новую пару. Повторное предъявление уже погашенного токена отзывает всё его семейство
// @Tags Authentication
// @Produce json
// @Success 200 {object} requestresponse.OkResponse
// @Failure 401 {object} requestresponse.ErrorResponse "Токен отсутствует, невалиден или уже использован"
// @Failure 429 {object} requestresponse.ErrorResponse "Превышен лимит запросов"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/auth/refresh [post]
func (h *AuthenticationHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cookie, err := r.Cookie(security.RefreshTokenCookie)
	if err != nil || cookie.Value == "" {
		h.cookieService.ClearSessionCookies(w)
		sendErrorResponse(w, http.StatusUnauthorized, "не авторизован")
		return
	}

	tokens, err := h.authenticationService.Refresh(ctx, cookie.Value, r.UserAgent(), r.RemoteAddr)
	if err != nil {
		log.Println(err)
		h.cookieService.ClearSessionCookies(w)
		if errors.Is(err, service.ErrUnauthorized) {
			sendErrorResponse(w, http.StatusUnauthorized, "не авторизован")
			return
		}
		sendErrorResponse(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		return
	}

	h.cookieService.SetSessionCookies(w, tokens)
	util.RespondJSON(w, http.StatusOK, requestresponse.OkResponse{Ok: true})
}

// Logout godoc
// @Summary Завершение текущей сессии
// @Description Отзывает refresh токен из cookie (best-effort) и гасит сессионные cookie. Повторный вызов также успешен
// @Tags Authentication
// @Produce json
// @Success 200 {object} requestresponse.OkResponse
// @Router /api/auth/logout [post]
func (h *AuthenticationHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	refreshToken := ""
	if cookie, err := r.Cookie(security.RefreshTokenCookie); err == nil {
		refreshToken = cookie.Value
	}

	if err := h.authenticationService.Logout(ctx, refreshToken); err != nil {
		log.Printf("ошибка при logout: %v", err)
	}

	h.cookieService.ClearSessionCookies(w)
	util.RespondJSON(w, http.StatusOK, requestresponse.OkResponse{Ok: true})
}

// LogoutAll godoc
// @Summary Завершение всех сессий пользователя
// @Description Отзывает все активные refresh токены пользователя во всех семействах ("выйти везде")
// @Tags Authentication
// @Produce json
// @Success 200 {object} requestresponse.OkResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/auth/logout-all [post]
func (h *AuthenticationHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, err := security.GetClaimsFromContext(ctx)
	if err != nil {
		sendErrorResponse(w, http.StatusUnauthorized, "не авторизован")
		return
	}

	if err := h.authenticationService.LogoutAll(ctx, claims.UserUUID); err != nil {
		log.Println(err)
		sendErrorResponse(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		return
	}

	h.cookieService.ClearSessionCookies(w)
	util.RespondJSON(w, http.StatusOK, requestresponse.OkResponse{Ok: true})
}

// Me godoc
// @Summary Профиль текущего пользователя
// @Description Возвращает публичный профиль пользователя из access токена
// @Tags Authentication
// @Produce json
// @Success 200 {object} requestresponse.MeResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/auth/me [get]
func (h *AuthenticationHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, err := security.GetClaimsFromContext(ctx)
	if err != nil {
		sendErrorResponse(w, http.StatusUnauthorized, "не авторизован")
		return
	}

	user, err := h.userService.GetByUUID(ctx, claims.UserUUID)
	if err != nil {
		log.Println(err)
		sendErrorResponse(w, http.StatusNotFound, "пользователь не найден")
		return
	}

	util.RespondJSON(w, http.StatusOK, requestresponse.MeResponseFromModel(user))
}

// CleanupSessions godoc
// @Summary Удаление истёкших сессий
// @Description Удаляет физически истёкшие записи refresh токенов. Доступно только администратору
// @Tags Authentication
// @Produce json
// @Success 200 {object} requestresponse.CleanupResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/admin/sessions/cleanup [post]
func (h *AuthenticationHandler) CleanupSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	deleted, err := h.authenticationService.PurgeExpiredSessions(ctx)
	if err != nil {
		log.Println(err)
		sendErrorResponse(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		return
	}

	util.RespondJSON(w, http.StatusOK, requestresponse.CleanupResponse{Deleted: deleted})
}
