package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"photoshare-server/internal/model"
	"photoshare-server/internal/ports"
	"photoshare-server/internal/security"
	"photoshare-server/internal/util"
)

var (
	// ErrInvalidCredentials — единый ответ и для неизвестного логина, и для
	// неверного пароля, чтобы не допускать перечисление пользователей
	ErrInvalidCredentials = errors.New("неверный логин или пароль")

	// ErrUnauthorized — невалидный, просроченный или повторно использованный
	// refresh токен; в ответе клиенту детали не различаются
	ErrUnauthorized = errors.New("невалидный токен")
)

type AuthenticationService struct {
	tokenRepository ports.TokenRepositoryInterface
	userRepository  ports.UserRepository
	jwtService      ports.JWTServiceInterface
}

func NewAuthenticationService(
	tokenRepository ports.TokenRepositoryInterface,
	userRepository ports.UserRepository,
	jwtService ports.JWTServiceInterface,
) *AuthenticationService {
	return &AuthenticationService{
		tokenRepository: tokenRepository,
		userRepository:  userRepository,
		jwtService:      jwtService,
	}
}

// Login аутентифицирует локальный аккаунт и открывает новую сессию.
// Каждый вход начинает новое семейство refresh токенов, не связанное с
// предыдущими сессиями пользователя
func (s *AuthenticationService) Login(ctx context.Context, loginName, password, userAgent, ipAddress string) (*model.TokensPair, *model.User, error) {
	user, err := s.userRepository.FindByLoginName(ctx, loginName)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	family := uuid.New().String()
	tokens, err := issueSession(ctx, s.jwtService, s.tokenRepository, user, family, userAgent, ipAddress)
	if err != nil {
		return nil, nil, err
	}

	return tokens, user, nil
}

// Refresh обменивает refresh токен на новую пару (ротация).
// Требования к операции:
//  1. Каждый refresh токен погашается ровно один раз: запись отзывается
//     условным UPDATE, проигравший конкурентную ротацию запрос получает
//     отказ и ветку reuse-detection.
//  2. Предъявление неизвестного или уже отозванного токена трактуется как
//     возможная кража: отзывается всё семейство из утверждений токена.
//  3. Новый refresh токен наследует family исходного: при любом будущем
//     reuse-detection вся цепочка ротаций гасится одним обновлением.
//
// Параметры:
//   - ctx: контекст выполнения (для отмены и таймаутов)
//   - refreshToken: предъявленный refresh токен из cookie
//   - userAgent, ipAddress: метаданные запроса для аудита новой записи
//
// Возвращает:
//   - model.TokensPair с новой парой токенов
//   - ErrUnauthorized, если токен не подлежит ротации
func (s *AuthenticationService) Refresh(ctx context.Context, refreshToken, userAgent, ipAddress string) (*model.TokensPair, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: подпись или срок не прошли проверку", ErrUnauthorized)
	}

	tokenHash := security.Fingerprint(refreshToken)
	stored, err := s.tokenRepository.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		return nil, util.LogError("не удалось найти refresh токен", err)
	}

	if stored == nil || stored.RevokedAt != nil {
		s.revokeFamily(ctx, claims.UserUUID, claims.Family)
		return nil, fmt.Errorf("%w: обнаружено повторное использование refresh токена", ErrUnauthorized)
	}

	if !stored.Active(time.Now().UTC()) {
		log.Printf("refresh token %s просрочен", stored.UUID)
		return nil, fmt.Errorf("%w: токен просрочен", ErrUnauthorized)
	}

	user, err := s.userRepository.FindByUUID(ctx, claims.UserUUID)
	if err != nil {
		s.revokeFamily(ctx, claims.UserUUID, claims.Family)
		return nil, fmt.Errorf("%w: владелец токена не найден", ErrUnauthorized)
	}

	newRefreshToken, newRecord, err := s.jwtService.IssueRefreshToken(claims.UserUUID, claims.Family)
	if err != nil {
		return nil, util.LogError("ошибка генерации refresh токена", err)
	}

	revoked, err := s.tokenRepository.RevokeByTokenHash(ctx, tokenHash, &newRecord.TokenHash)
	if err != nil {
		return nil, util.LogError("не удалось отозвать refresh токен", err)
	}
	if !revoked {
		// токен уже потреблён конкурентной ротацией — тот же сигнал кражи
		s.revokeFamily(ctx, claims.UserUUID, claims.Family)
		return nil, fmt.Errorf("%w: обнаружено повторное использование refresh токена", ErrUnauthorized)
	}

	newRecord.UserAgent = userAgent
	newRecord.IpAddress = ipAddress
	if err := s.tokenRepository.SaveRefreshToken(ctx, newRecord); err != nil {
		return nil, util.LogError("не удалось сохранить refresh токен", err)
	}

	accessToken, err := s.jwtService.IssueAccessToken(user.UUID, user.Role)
	if err != nil {
		return nil, util.LogError("ошибка генерации access токена", err)
	}

	return &model.TokensPair{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

// Logout отзывает предъявленный refresh токен best-effort: отсутствие
// записи или уже отозванная запись — не ошибка, повторный logout всегда
// успешен
func (s *AuthenticationService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	tokenHash := security.Fingerprint(refreshToken)
	if _, err := s.tokenRepository.RevokeByTokenHash(ctx, tokenHash, nil); err != nil {
		log.Printf("не удалось отозвать refresh токен при logout: %v", err)
	}

	return nil
}

// LogoutAll отзывает все активные refresh токены пользователя во всех
// семействах ("выйти везде")
func (s *AuthenticationService) LogoutAll(ctx context.Context, userUUID string) error {
	if err := s.tokenRepository.RevokeAllForUser(ctx, userUUID); err != nil {
		return fmt.Errorf("не удалось отозвать токены пользователя: %w", err)
	}
	return nil
}

// PurgeExpiredSessions удаляет физически истёкшие записи refresh токенов.
// Вызывается администратором как операция обслуживания хранилища
func (s *AuthenticationService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	deleted, err := s.tokenRepository.DeleteExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("не удалось удалить истёкшие токены: %w", err)
	}
	return deleted, nil
}

func (s *AuthenticationService) revokeFamily(ctx context.Context, userUUID, family string) {
	if userUUID == "" || family == "" {
		return
	}
	if err := s.tokenRepository.RevokeFamily(ctx, userUUID, family); err != nil {
		log.Printf("не удалось отозвать семейство %s: %v", family, err)
	}
}

// issueSession выпускает пару токенов для пользователя и сохраняет запись
// о refresh токене. Общая часть входа, федеративного входа и ротации
func issueSession(
	ctx context.Context,
	jwtService ports.JWTServiceInterface,
	tokenRepository ports.TokenRepositoryInterface,
	user *model.User,
	family, userAgent, ipAddress string,
) (*model.TokensPair, error) {
	accessToken, err := jwtService.IssueAccessToken(user.UUID, user.Role)
	if err != nil {
		return nil, util.LogError("ошибка генерации access токена", err)
	}

	refreshToken, record, err := jwtService.IssueRefreshToken(user.UUID, family)
	if err != nil {
		return nil, util.LogError("ошибка генерации refresh токена", err)
	}

	record.UserAgent = userAgent
	record.IpAddress = ipAddress
	if err := tokenRepository.SaveRefreshToken(ctx, record); err != nil {
		return nil, util.LogError("не удалось сохранить refresh токен", err)
	}

	return &model.TokensPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
