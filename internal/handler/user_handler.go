package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"photoshare-server/internal/model/requestresponse"
	"photoshare-server/internal/ports"
	"photoshare-server/internal/service"
	"photoshare-server/internal/util"
)

type UserHandler struct {
	ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService}
}

// RegisterUser godoc
// @Summary Регистрация нового пользователя
// @Description Создаёт локальный аккаунт с логином и паролем
// @Tags Users
// @Accept json
// @Produce json
// @Param body body requestresponse.RegisterRequest true "Тело запроса"
// @Success 200 {object} requestresponse.RegisterResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 409 {object} requestresponse.ErrorResponse "Логин уже занят"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/register [post]
func (h *UserHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if req.LoginName == "" || req.Password == "" {
		sendErrorResponse(w, http.StatusBadRequest, "login_name и password обязательны")
		return
	}

	user, err := h.UserService.Register(r.Context(), req.LoginName, req.Password, req.FirstName, req.LastName)
	if err != nil {
		log.Println(err)
		switch {
		case errors.Is(err, service.ErrLoginTaken):
			sendErrorResponse(w, http.StatusConflict, "логин уже занят")
		case strings.Contains(err.Error(), "логин должен"),
			strings.Contains(err.Error(), "пароль должен"):
			sendErrorResponse(w, http.StatusBadRequest, err.Error())
		default:
			sendErrorResponse(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		}
		return
	}

	util.RespondJSON(w, http.StatusOK, requestresponse.RegisterResponse{
		User: requestresponse.UserPayloadFromModel(user),
	})
}
