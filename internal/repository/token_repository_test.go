package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photoshare-server/config"
	"photoshare-server/internal/model"
	"photoshare-server/internal/repository"
)

func newMockDB(t *testing.T) (*config.Database, sqlmock.Sqlmock) {
	t.Helper()
	db, mockSQL, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &config.Database{DB: sqlx.NewDb(db, "sqlmock")}, mockSQL
}

func TestSaveRefreshToken(t *testing.T) {
	database, mockSQL := newMockDB(t)
	repo := repository.NewTokenRepository(database)

	record := &model.RefreshToken{
		UUID:      "jti-1",
		UserUUID:  "u1",
		TokenHash: "hash-1",
		Family:    "fam-1",
		ExpiresAt: time.Now().Add(time.Hour),
		IpAddress: "127.0.0.1",
		UserAgent: "agent",
	}

	mockSQL.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(record.UUID, record.UserUUID, record.TokenHash, record.Family,
			record.ExpiresAt, record.IpAddress, record.UserAgent).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SaveRefreshToken(context.Background(), record)

	assert.NoError(t, err)
	assert.NoError(t, mockSQL.ExpectationsWereMet())
}

func TestFindByTokenHash_Found(t *testing.T) {
	database, mockSQL := newMockDB(t)
	repo := repository.NewTokenRepository(database)

	expiresAt := time.Now().Add(time.Hour)
	createdAt := time.Now()

	rows := sqlmock.NewRows([]string{
		"uuid", "user_uuid", "token_hash", "family", "expires_at",
		"revoked_at", "replaced_by_token_hash", "ip_address", "user_agent", "created_at",
	}).AddRow("jti-1", "u1", "hash-1", "fam-1", expiresAt, nil, nil, "127.0.0.1", "agent", createdAt)

	mockSQL.ExpectQuery("FROM refresh_tokens WHERE token_hash").
		WithArgs("hash-1").
		WillReturnRows(rows)

	record, err := repo.FindByTokenHash(context.Background(), "hash-1")

	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "jti-1", record.UUID)
	assert.Equal(t, "fam-1", record.Family)
	assert.Nil(t, record.RevokedAt)
	assert.True(t, record.Active(time.Now()))
}

// отсутствие записи — не ошибка, а сигнал для reuse-detection
func TestFindByTokenHash_NotFound(t *testing.T) {
	database, mockSQL := newMockDB(t)
	repo := repository.NewTokenRepository(database)

	mockSQL.ExpectQuery("FROM refresh_tokens WHERE token_hash").
		WithArgs("unknown").
		WillReturnRows(sqlmock.NewRows([]string{"uuid"}))

	record, err := repo.FindByTokenHash(context.Background(), "unknown")

	assert.NoError(t, err)
	assert.Nil(t, record)
}

// условный UPDATE: ровно один из конкурентов получает true
func TestRevokeByTokenHash(t *testing.T) {
	database, mockSQL := newMockDB(t)
	repo := repository.NewTokenRepository(database)
	replacedBy := "hash-2"

	mockSQL.ExpectExec("UPDATE refresh_tokens").
		WithArgs("hash-1", "hash-2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	revoked, err := repo.RevokeByTokenHash(context.Background(), "hash-1", &replacedBy)

	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestRevokeByTokenHash_AlreadyRevoked(t *testing.T) {
	database, mockSQL := newMockDB(t)
	repo := repository.NewTokenRepository(database)

	mockSQL.ExpectExec("UPDATE refresh_tokens").
		WithArgs("hash-1", nil).
		WillReturnResult(sqlmock.NewResult(0, 0))

	revoked, err := repo.RevokeByTokenHash(context.Background(), "hash-1", nil)

	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevokeFamily(t *testing.T) {
	database, mockSQL := newMockDB(t)
	repo := repository.NewTokenRepository(database)

	mockSQL.ExpectExec("UPDATE refresh_tokens").
		WithArgs("u1", "fam-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	assert.NoError(t, repo.RevokeFamily(context.Background(), "u1", "fam-1"))
	assert.NoError(t, mockSQL.ExpectationsWereMet())
}

func TestRevokeAllForUser(t *testing.T) {
	database, mockSQL := newMockDB(t)
	repo := repository.NewTokenRepository(database)

	mockSQL.ExpectExec("UPDATE refresh_tokens").
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 5))

	assert.NoError(t, repo.RevokeAllForUser(context.Background(), "u1"))
}

func TestDeleteExpired(t *testing.T) {
	database, mockSQL := newMockDB(t)
	repo := repository.NewTokenRepository(database)

	mockSQL.ExpectExec("DELETE FROM refresh_tokens").
		WillReturnResult(sqlmock.NewResult(0, 7))

	deleted, err := repo.DeleteExpired(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(7), deleted)
}
