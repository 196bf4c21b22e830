package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"photoshare-server/config"
	"photoshare-server/internal/model"
	"photoshare-server/internal/util"
)

// ErrUserNotFound возвращается, когда пользователя нет в БД
var ErrUserNotFound = errors.New("пользователь не найден")

type UserRepository struct {
	*config.Database
}

func NewUserRepository(database *config.Database) *UserRepository {
	return &UserRepository{database}
}

const userColumns = `uuid, login_name, password_hash, first_name, last_name, role,
	auth_provider, provider_user_id, display_name, handle, avatar_url,
	location, description, occupation, created_at`

// CreateUser : сохраняет нового пользователя. Нарушение уникальности
// (логин или пара провайдер/provider_user_id) различимо через IsUniqueViolation
func (r *UserRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	query := `
	INSERT INTO users (uuid, login_name, password_hash, first_name, last_name, role,
		auth_provider, provider_user_id, display_name, handle, avatar_url,
		location, description, occupation)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	RETURNING ` + userColumns

	created := &model.User{}
	err := r.DB.QueryRowxContext(ctx, query,
		user.UUID,
		user.LoginName,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Role,
		user.AuthProvider,
		user.ProviderUserID,
		user.DisplayName,
		user.Handle,
		user.AvatarURL,
		user.Location,
		user.Description,
		user.Occupation,
	).StructScan(created)

	if err != nil {
		if IsUniqueViolation(err) {
			return nil, err
		}
		return nil, util.LogError("[UserRepo] ошибка вставки данных в БД", err)
	}

	return created, nil
}

// FindByLoginName : ищет пользователя по login_name
func (r *UserRepository) FindByLoginName(ctx context.Context, loginName string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE login_name = $1`
	return r.findOne(ctx, query, loginName)
}

// FindByUUID : ищет пользователя по UUID
func (r *UserRepository) FindByUUID(ctx context.Context, uuid string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE uuid = $1`
	return r.findOne(ctx, query, uuid)
}

// FindByProvider : ищет федеративный аккаунт по паре (провайдер, внешний id)
func (r *UserRepository) FindByProvider(ctx context.Context, provider, providerUserID string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE auth_provider = $1 AND provider_user_id = $2`
	return r.findOne(ctx, query, provider, providerUserID)
}

func (r *UserRepository) findOne(ctx context.Context, query string, args ...interface{}) (*model.User, error) {
	user := &model.User{}
	err := r.DB.QueryRowxContext(ctx, query, args...).StructScan(user)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, util.LogError("[UserRepo] ошибка при выполнении запроса", err)
	}
	return user, nil
}

// IsUniqueViolation : проверяет, что ошибка — нарушение уникального индекса.
// Для федеративных аккаунтов это означает проигрыш гонки одновременных
// первых входов: победителя нужно перечитать и использовать
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
