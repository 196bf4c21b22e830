package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"photoshare-server/config"
	"photoshare-server/internal/audit"
	"photoshare-server/internal/model"
	"photoshare-server/internal/ports"
	"photoshare-server/internal/security"
	"photoshare-server/internal/util"
)

var (
	// ErrOAuthNotConfigured — нет client id/secret/redirect uri; проверяется
	// до любого редиректа
	ErrOAuthNotConfigured = errors.New("провайдер OAuth не настроен")

	// ErrOAuthState — anti-forgery state не совпал или уже был использован
	ErrOAuthState = errors.New("невалидный oauth state")

	// ErrOAuthExchange — сетевая ошибка или не-2xx при обмене кода на токен
	ErrOAuthExchange = errors.New("не удалось обменять код на токен")

	// ErrOAuthProfile — провайдер вернул пустой токен или неполный профиль
	ErrOAuthProfile = errors.New("невалидный ответ провайдера")
)

const defaultGithubScope = "read:user"

// OAuthService проводит authorization-code flow с GitHub и отображает
// внешний профиль на локальный аккаунт. Каждый шаг обмена сообщается
// наблюдателю аудита
type OAuthService struct {
	cfg             *config.GithubConfig
	userRepository  ports.UserRepository
	tokenRepository ports.TokenRepositoryInterface
	jwtService      ports.JWTServiceInterface
	stateRepository ports.OAuthStateRepositoryInterface
	observer        audit.Observer
	httpClient      *http.Client
}

func NewOAuthService(
	cfg *config.GithubConfig,
	userRepository ports.UserRepository,
	tokenRepository ports.TokenRepositoryInterface,
	jwtService ports.JWTServiceInterface,
	stateRepository ports.OAuthStateRepositoryInterface,
	observer audit.Observer,
) *OAuthService {
	if observer == nil {
		observer = audit.NopObserver{}
	}
	return &OAuthService{
		cfg:             cfg,
		userRepository:  userRepository,
		tokenRepository: tokenRepository,
		jwtService:      jwtService,
		stateRepository: stateRepository,
		observer:        observer,
		// один клиент на оба вызова к провайдеру; без таймаута зависший
		// обмен держал бы обработчик дольше любого разумного запроса
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *OAuthService) Configured() bool {
	return s.cfg.ClientID != "" && s.cfg.ClientSecret != "" && s.cfg.RedirectURI != ""
}

func (s *OAuthService) FrontendRedirectURL() string {
	if s.cfg.FrontendRedirectURL == "" {
		return "http://localhost:3000/"
	}
	return s.cfg.FrontendRedirectURL
}

// AuthorizationURL генерирует anti-forgery state, регистрирует его
// серверной стороной и строит адрес авторизации провайдера
func (s *OAuthService) AuthorizationURL(ctx context.Context) (string, string, error) {
	if !s.Configured() {
		return "", "", ErrOAuthNotConfigured
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", "", util.LogError("ошибка генерации oauth state", err)
	}
	state := hex.EncodeToString(buf)

	if err := s.stateRepository.Save(ctx, state); err != nil {
		return "", "", util.LogError("не удалось сохранить oauth state", err)
	}

	scope := s.cfg.Scope
	if scope == "" {
		scope = defaultGithubScope
	}

	params := url.Values{}
	params.Set("client_id", s.cfg.ClientID)
	params.Set("redirect_uri", s.cfg.RedirectURI)
	params.Set("scope", scope)
	params.Set("state", state)
	params.Set("allow_signup", "true")

	s.observer.Step(security.GetRequestIDFromContext(ctx),
		"STEP 1/6 CLIENT -> [AUTHZ_SERVER] Authorization Request",
		map[string]string{
			"authz_endpoint": s.cfg.AuthorizeURL,
			"client_id":      s.cfg.ClientID,
			"redirect_uri":   s.cfg.RedirectURI,
			"scope":          scope,
			"state":          state,
		})

	return s.cfg.AuthorizeURL + "?" + params.Encode(), state, nil
}

// HandleCallback проводит шаги 2-6 обмена: проверка state, обмен кода на
// токен провайдера, запрос профиля, отображение на локальный аккаунт и
// выпуск собственной пары токенов
func (s *OAuthService) HandleCallback(ctx context.Context, code, state, cookieState, userAgent, ipAddress string) (*model.TokensPair, error) {
	if !s.Configured() {
		return nil, ErrOAuthNotConfigured
	}
	requestID := security.GetRequestIDFromContext(ctx)

	if code == "" || state == "" || state != cookieState {
		s.observer.Step(requestID,
			"STEP 2/6 CLIENT <- [AUTHZ_SERVER] Authorization Grant (state mismatch)",
			map[string]string{"code": code, "state": state, "state_check": "FAIL"})
		return nil, fmt.Errorf("%w: state не совпал", ErrOAuthState)
	}

	consumed, err := s.stateRepository.Consume(ctx, state)
	if err != nil {
		return nil, util.LogError("не удалось изъять oauth state", err)
	}
	if !consumed {
		// state одноразовый: повторный callback с тем же значением
		// (double-submit, кнопка «назад») отклоняется
		s.observer.Step(requestID,
			"STEP 2/6 CLIENT <- [AUTHZ_SERVER] Authorization Grant (state replay)",
			map[string]string{"state": state, "state_check": "FAIL"})
		return nil, fmt.Errorf("%w: state уже использован", ErrOAuthState)
	}

	s.observer.Step(requestID,
		"STEP 2/6 CLIENT <- [AUTHZ_SERVER] Authorization Grant",
		map[string]string{"code": code, "state": state, "state_check": "OK"})

	providerToken, err := s.exchangeCode(ctx, requestID, code)
	if err != nil {
		return nil, err
	}

	profile, err := s.fetchProfile(ctx, requestID, providerToken)
	if err != nil {
		return nil, err
	}

	user, err := s.mapAccount(ctx, requestID, profile)
	if err != nil {
		return nil, err
	}

	family := uuid.New().String()
	tokens, err := issueSession(ctx, s.jwtService, s.tokenRepository, user, family, userAgent, ipAddress)
	if err != nil {
		return nil, err
	}

	s.observer.Step(requestID,
		"DONE provider=github",
		map[string]string{
			"internal_user_id": user.UUID,
			"handle":           user.Handle,
			"display_name":     user.DisplayName,
		})

	return tokens, nil
}

type githubTokenResponse struct {
	AccessToken string `json:"access_token"`
	Scope       string `json:"scope"`
	TokenType   string `json:"token_type"`
}

func (s *OAuthService) exchangeCode(ctx context.Context, requestID, code string) (string, error) {
	s.observer.Step(requestID,
		"STEP 3/6 CLIENT -> [AUTHZ_SERVER] Token Request",
		map[string]string{"token_endpoint": s.cfg.TokenURL})

	body, err := json.Marshal(map[string]string{
		"client_id":     s.cfg.ClientID,
		"client_secret": s.cfg.ClientSecret,
		"code":          code,
		"redirect_uri":  s.cfg.RedirectURI,
	})
	if err != nil {
		return "", util.LogError("ошибка сериализации запроса токена", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.TokenURL, strings.NewReader(string(body)))
	if err != nil {
		return "", util.LogError("ошибка создания запроса токена", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")

	response, err := s.httpClient.Do(request)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrOAuthExchange, err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return "", fmt.Errorf("%w: провайдер ответил статусом %d", ErrOAuthExchange, response.StatusCode)
	}

	var tokenData githubTokenResponse
	if err := json.NewDecoder(response.Body).Decode(&tokenData); err != nil {
		return "", fmt.Errorf("%w: некорректный ответ обмена", ErrOAuthProfile)
	}
	if tokenData.AccessToken == "" {
		return "", fmt.Errorf("%w: провайдер не вернул access token", ErrOAuthProfile)
	}

	s.observer.Step(requestID,
		"STEP 4/6 CLIENT <- [AUTHZ_SERVER] Token Response",
		map[string]string{
			"token_len":  strconv.Itoa(len(tokenData.AccessToken)),
			"scope":      tokenData.Scope,
			"token_type": tokenData.TokenType,
		})

	return tokenData.AccessToken, nil
}

type githubProfile struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

func (s *OAuthService) fetchProfile(ctx context.Context, requestID, providerToken string) (*githubProfile, error) {
	s.observer.Step(requestID,
		"STEP 5/6 CLIENT -> [RESOURCE_SERVER] Fetch User",
		map[string]string{"resource": s.cfg.UserAPIURL})

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.UserAPIURL, nil)
	if err != nil {
		return nil, util.LogError("ошибка создания запроса профиля", err)
	}
	request.Header.Set("Authorization", "Bearer "+providerToken)
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", "photoshare-server")

	response, err := s.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOAuthExchange, err)
	}
	defer response.Body.Close()

	var profile githubProfile
	if err := json.NewDecoder(response.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("%w: некорректный профиль", ErrOAuthProfile)
	}

	if profile.ID == 0 || profile.Login == "" {
		return nil, fmt.Errorf("%w: профиль без id или login", ErrOAuthProfile)
	}

	s.observer.Step(requestID,
		"STEP 6/6 CLIENT <- [RESOURCE_SERVER] User Profile",
		map[string]string{
			"github.id":    strconv.FormatInt(profile.ID, 10),
			"github.login": profile.Login,
			"github.name":  profile.Name,
		})

	return &profile, nil
}

// mapAccount находит локальный аккаунт по паре (github, provider id) или
// создаёт его при первом входе. Профиль существующего аккаунта при повторных
// входах не обновляется
func (s *OAuthService) mapAccount(ctx context.Context, requestID string, profile *githubProfile) (*model.User, error) {
	providerID := strconv.FormatInt(profile.ID, 10)

	user, err := s.userRepository.FindByProvider(ctx, model.ProviderGithub, providerID)
	if err == nil {
		return user, nil
	}

	firstName, lastName := splitDisplayName(profile.Name, profile.Login)

	// пароль-заглушка: федеративный аккаунт не может входить по паролю
	placeholder, err := security.HashPassword(uuid.New().String())
	if err != nil {
		return nil, util.LogError("ошибка генерации пароля-заглушки", err)
	}

	displayName := strings.TrimSpace(profile.Name)
	if displayName == "" {
		displayName = firstName
	}

	created, err := s.userRepository.CreateUser(ctx, &model.User{
		UUID:           uuid.New().String(),
		LoginName:      "gh_" + providerID,
		PasswordHash:   placeholder,
		FirstName:      firstName,
		LastName:       lastName,
		Role:           model.RoleUser,
		AuthProvider:   model.ProviderGithub,
		ProviderUserID: &providerID,
		DisplayName:    displayName,
		Handle:         profile.Login,
		AvatarURL:      profile.AvatarURL,
	})
	if err != nil {
		// конкурентный первый вход: аккаунт только что создан другим
		// запросом — перечитываем и используем победителя
		existing, findErr := s.userRepository.FindByProvider(ctx, model.ProviderGithub, providerID)
		if findErr == nil {
			return existing, nil
		}
		return nil, util.LogError("ошибка создания федеративного аккаунта", err)
	}

	s.observer.Step(requestID,
		"Mapped to internal user",
		map[string]string{
			"internal_user_id": created.UUID,
			"handle":           created.Handle,
			"display_name":     created.DisplayName,
		})

	return created, nil
}

// splitDisplayName раскладывает отображаемое имя провайдера на
// приближение имени и фамилии
func splitDisplayName(rawName, login string) (string, string) {
	parts := strings.Fields(strings.TrimSpace(rawName))

	firstName := login
	if len(parts) > 0 {
		firstName = parts[0]
	}
	if firstName == "" {
		firstName = "User"
	}

	lastName := "GitHub"
	if len(parts) > 1 {
		lastName = strings.Join(parts[1:], " ")
	}

	return firstName, lastName
}
