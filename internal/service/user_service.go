package service

import (
	"context"
	"errors"
	"fmt"
	"unicode"

	"github.com/google/uuid"

	"photoshare-server/internal/model"
	"photoshare-server/internal/ports"
	"photoshare-server/internal/repository"
	"photoshare-server/internal/security"
)

// ErrLoginTaken — логин уже занят другим аккаунтом
var ErrLoginTaken = errors.New("логин уже занят")

type UserService struct {
	userRepository ports.UserRepository
}

func NewUserService(userRepository ports.UserRepository) *UserService {
	return &UserService{userRepository: userRepository}
}

// Register создаёт локальный аккаунт. Пароль хранится только как bcrypt-хэш
func (s *UserService) Register(ctx context.Context, loginName, password, firstName, lastName string) (*model.User, error) {
	if err := validateLoginName(loginName); err != nil {
		return nil, fmt.Errorf("[UserService] %w", err)
	}

	if err := validatePassword(password); err != nil {
		return nil, fmt.Errorf("[UserService] %w", err)
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("[UserService] не удалось создать хэш пароля: %w", err)
	}

	user := &model.User{
		UUID:         uuid.New().String(),
		LoginName:    loginName,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         model.RoleUser,
		AuthProvider: model.ProviderLocal,
	}

	created, err := s.userRepository.CreateUser(ctx, user)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrLoginTaken
		}
		return nil, fmt.Errorf("[UserService] ошибка создания пользователя: %w", err)
	}

	return created, nil
}

// GetByUUID возвращает пользователя для /me
func (s *UserService) GetByUUID(ctx context.Context, userUUID string) (*model.User, error) {
	return s.userRepository.FindByUUID(ctx, userUUID)
}

func validateLoginName(loginName string) error {
	if len(loginName) < 3 {
		return fmt.Errorf("логин должен быть не меньше 3 символов")
	}
	for _, c := range loginName {
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' {
			return fmt.Errorf("логин должен содержать только латинские буквы, цифры и подчёркивание")
		}
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("пароль должен содержать минимум 8 символов")
	}

	var upperCount, lowerCount, digitCount, specialCount int

	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			upperCount++
		case unicode.IsLower(c):
			lowerCount++
		case unicode.IsDigit(c):
			digitCount++
		case unicode.IsPunct(c) || unicode.IsSymbol(c):
			specialCount++
		}
	}

	if upperCount == 0 || lowerCount == 0 {
		return fmt.Errorf("пароль должен содержать буквы в разных регистрах")
	}
	if digitCount < 1 {
		return fmt.Errorf("пароль должен содержать хотя бы одну цифру")
	}
	if specialCount < 1 {
		return fmt.Errorf("пароль должен содержать хотя бы один специальный символ")
	}

	return nil
}
