package repository

import (
	"context"
	"database/sql"
	"errors"

	"photoshare-server/config"
	"photoshare-server/internal/model"
	"photoshare-server/internal/util"
)

type TokenRepository struct {
	*config.Database
}

func NewTokenRepository(database *config.Database) *TokenRepository {
	return &TokenRepository{database}
}

// SaveRefreshToken сохраняет запись о выданном refresh токене
func (r *TokenRepository) SaveRefreshToken(ctx context.Context, refreshToken *model.RefreshToken) error {
	query := `INSERT INTO refresh_tokens (uuid, user_uuid, token_hash, family, expires_at, ip_address, user_agent)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.DB.ExecContext(ctx, query,
		refreshToken.UUID,
		refreshToken.UserUUID,
		refreshToken.TokenHash,
		refreshToken.Family,
		refreshToken.ExpiresAt,
		refreshToken.IpAddress,
		refreshToken.UserAgent,
	)

	if err != nil {
		return util.LogError("ошибка вставки refresh токена в БД", err)
	}

	return nil
}

// FindByTokenHash ищет запись по отпечатку токена.
// Отсутствие записи — не ошибка: для ротации это сигнал reuse-detection
func (r *TokenRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	query := `SELECT uuid, user_uuid, token_hash, family, expires_at, revoked_at,
				replaced_by_token_hash, ip_address, user_agent, created_at
				FROM refresh_tokens WHERE token_hash = $1`

	refreshToken := &model.RefreshToken{}
	err := r.DB.QueryRowxContext(ctx, query, tokenHash).StructScan(refreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, util.LogError("ошибка при поиске refresh токена", err)
	}

	return refreshToken, nil
}

// RevokeByTokenHash атомарно отзывает активную запись. Условие
// revoked_at IS NULL — compare-and-set: из двух конкурентных ротаций одного
// токена ровно одна увидит true, вторая — false и уйдёт в ветку
// reuse-detection. replacedByTokenHash связывает цепочку ротаций для аудита
func (r *TokenRepository) RevokeByTokenHash(ctx context.Context, tokenHash string, replacedByTokenHash *string) (bool, error) {
	query := `UPDATE refresh_tokens
				SET revoked_at = now(), replaced_by_token_hash = $2
				WHERE token_hash = $1 AND revoked_at IS NULL`

	result, err := r.DB.ExecContext(ctx, query, tokenHash, replacedByTokenHash)
	if err != nil {
		return false, util.LogError("не удалось отозвать refresh токен", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, util.LogError("не удалось проверить, отозван ли токен", err)
	}

	return rowsAffected > 0, nil
}

// RevokeFamily отзывает все активные записи семейства пользователя.
// Вызывается при обнаружении повторного использования токена: законного
// владельца от злоумышленника в этот момент уже не отличить
func (r *TokenRepository) RevokeFamily(ctx context.Context, userUUID, family string) error {
	query := `UPDATE refresh_tokens
				SET revoked_at = now()
				WHERE user_uuid = $1 AND family = $2 AND revoked_at IS NULL`

	if _, err := r.DB.ExecContext(ctx, query, userUUID, family); err != nil {
		return util.LogError("не удалось отозвать семейство токенов", err)
	}

	return nil
}

// RevokeAllForUser отзывает все активные записи пользователя во всех
// семействах ("выйти везде")
func (r *TokenRepository) RevokeAllForUser(ctx context.Context, userUUID string) error {
	query := `UPDATE refresh_tokens
				SET revoked_at = now()
				WHERE user_uuid = $1 AND revoked_at IS NULL`

	if _, err := r.DB.ExecContext(ctx, query, userUUID); err != nil {
		return util.LogError("не удалось отозвать токены пользователя", err)
	}

	return nil
}

// DeleteExpired удаляет физически истёкшие записи (обслуживание хранилища)
func (r *TokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM refresh_tokens WHERE expires_at < now()`

	result, err := r.DB.ExecContext(ctx, query)
	if err != nil {
		return 0, util.LogError("не удалось удалить истёкшие токены", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, util.LogError("не удалось получить число удалённых токенов", err)
	}

	return deleted, nil
}
