package model

import "time"

// RefreshToken — одна выданная долгоживущая сессия. В БД хранится только
// sha-256 отпечаток токена, сам токен клиенту отдаётся в cookie.
type RefreshToken struct {
	UUID                string     `db:"uuid"` // jti из подписанного токена
	UserUUID            string     `db:"user_uuid"`
	TokenHash           string     `db:"token_hash"`
	Family              string     `db:"family"`
	ExpiresAt           time.Time  `db:"expires_at"`
	RevokedAt           *time.Time `db:"revoked_at"`
	ReplacedByTokenHash *string    `db:"replaced_by_token_hash"`
	IpAddress           string     `db:"ip_address"`
	UserAgent           string     `db:"user_agent"`
	CreatedAt           time.Time  `db:"created_at"`
}

// Active — не отозван и не просрочен на момент now
func (t *RefreshToken) Active(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}

// TokensPair содержит пару access и refresh токенов
// swagger:model
type TokensPair struct {
	// Access токен (JWT)
	AccessToken string `json:"accessToken"`

	// Refresh токен (для получения новой пары)
	RefreshToken string `json:"refreshToken"`
}
