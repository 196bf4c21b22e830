package requestresponse

// RegisterRequest : тело запроса регистрации локального аккаунта
type RegisterRequest struct {
	LoginName string `json:"login_name" example:"newuser123"`
	Password  string `json:"password" example:"P@ssw0rd!"`
	FirstName string `json:"first_name" example:"New"`
	LastName  string `json:"last_name" example:"User"`
}

// RegisterResponse : успешный ответ регистрации
type RegisterResponse struct {
	User UserPayload `json:"user"`
}

// ErrorDetail : детальная информация об ошибке
type ErrorDetail struct {
	Code int    `json:"code" example:"400"`
	Text string `json:"text" example:"for example: invalid login or password"`
}

// ErrorResponse : стандартная структура ошибки
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
