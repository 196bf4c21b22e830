package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	ProviderLocal  = "local"
	ProviderGithub = "github"
)

type User struct {
	UUID           string    `db:"uuid" json:"uuid"`
	LoginName      string    `db:"login_name" json:"login_name"`
	PasswordHash   string    `db:"password_hash" json:"-"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	Role           string    `db:"role" json:"role"`
	AuthProvider   string    `db:"auth_provider" json:"auth_provider"`
	ProviderUserID *string   `db:"provider_user_id" json:"-"`
	DisplayName    string    `db:"display_name" json:"display_name"`
	Handle         string    `db:"handle" json:"handle"`
	AvatarURL      string    `db:"avatar_url" json:"avatar_url"`
	Location       string    `db:"location" json:"location"`
	Description    string    `db:"description" json:"description"`
	Occupation     string    `db:"occupation" json:"occupation"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
