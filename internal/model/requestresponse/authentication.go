package requestresponse

import "photoshare-server/internal/model"

// LoginRequest : тело запроса на аутентификацию
type LoginRequest struct {
	LoginName string `json:"login_name" example:"alice"`
	Password  string `json:"password" example:"P@ssw0rd123"`
}

// UserPayload : публичный профиль пользователя в ответах аутентификации
type UserPayload struct {
	ID        string `json:"_id" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
	LoginName string `json:"login_name" example:"alice"`
	FirstName string `json:"first_name" example:"Alice"`
	LastName  string `json:"last_name" example:"Liddell"`
	Role      string `json:"role" example:"user"`
}

// LoginResponse : ответ на успешную аутентификацию. Access токен
// присутствует в теле только при включённой настройке return_token_in_body
type LoginResponse struct {
	User  UserPayload `json:"user"`
	Token string      `json:"token,omitempty"`
}

// OkResponse : подтверждение для refresh/logout
type OkResponse struct {
	Ok bool `json:"ok" example:"true"`
}

// CleanupResponse : количество удалённых истёкших записей
type CleanupResponse struct {
	Deleted int64 `json:"deleted" example:"42"`
}

// MeResponse : профиль текущего пользователя
type MeResponse struct {
	ID           string `json:"id" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
	LoginName    string `json:"login_name" example:"alice"`
	FirstName    string `json:"first_name" example:"Alice"`
	LastName     string `json:"last_name" example:"Liddell"`
	DisplayName  string `json:"display_name" example:"Alice L."`
	Handle       string `json:"handle" example:"alice"`
	AvatarURL    string `json:"avatar_url" example:"https://avatars.example.com/u/1"`
	AuthProvider string `json:"auth_provider" example:"local"`
	Role         string `json:"role" example:"user"`
}

// UserPayloadFromModel : конвертирует model.User в UserPayload
func UserPayloadFromModel(user *model.User) UserPayload {
	return UserPayload{
		ID:        user.UUID,
		LoginName: user.LoginName,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
	}
}

// MeResponseFromModel : конвертирует model.User в MeResponse
func MeResponseFromModel(user *model.User) MeResponse {
	return MeResponse{
		ID:           user.UUID,
		LoginName:    user.LoginName,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		DisplayName:  user.DisplayName,
		Handle:       user.Handle,
		AvatarURL:    user.AvatarURL,
		AuthProvider: user.AuthProvider,
		Role:         user.Role,
	}
}
