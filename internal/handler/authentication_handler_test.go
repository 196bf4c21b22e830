package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"photoshare-server/config"
	"photoshare-server/internal/handler"
	"photoshare-server/internal/model"
	"photoshare-server/internal/security"
	"photoshare-server/internal/service"
)

// ===== MOCKS =====

type MockAuthenticationService struct {
	mock.Mock
}

func (m *MockAuthenticationService) Login(ctx context.Context, loginName, password, userAgent, ipAddress string) (*model.TokensPair, *model.User, error) {
	args := m.Called(ctx, loginName, password, userAgent, ipAddress)

	var tokens *model.TokensPair
	if t := args.Get(0); t != nil {
		tokens = t.(*model.TokensPair)
	}
	var user *model.User
	if u := args.Get(1); u != nil {
		user = u.(*model.User)
	}
	return tokens, user, args.Error(2)
}

func (m *MockAuthenticationService) Refresh(ctx context.Context, refreshToken, userAgent, ipAddress string) (*model.TokensPair, error) {
	args := m.Called(ctx, refreshToken, userAgent, ipAddress)
	if t, ok := args.Get(0).(*model.TokensPair); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthenticationService) Logout(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

func (m *MockAuthenticationService) LogoutAll(ctx context.Context, userUUID string) error {
	args := m.Called(ctx, userUUID)
	return args.Error(0)
}

func (m *MockAuthenticationService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, loginName, password, firstName, lastName string) (*model.User, error) {
	args := m.Called(ctx, loginName, password, firstName, lastName)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserService) GetByUUID(ctx context.Context, uuid string) (*model.User, error) {
	args := m.Called(ctx, uuid)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

// ===== HELPERS =====

func newTestHandler(t *testing.T, returnTokenInBody bool) (*handler.AuthenticationHandler, *MockAuthenticationService, *MockUserService) {
	t.Helper()
	mockAuth := new(MockAuthenticationService)
	mockUsers := new(MockUserService)
	cookieService := security.NewCookieService(&config.CookieConfig{},
		15*time.Minute, 30*24*time.Hour, 10*time.Minute)

	return handler.NewAuthenticationHandler(mockAuth, mockUsers, cookieService, returnTokenInBody), mockAuth, mockUsers
}

func sessionCookies(t *testing.T, recorder *httptest.ResponseRecorder) map[string]*http.Cookie {
	t.Helper()
	cookies := map[string]*http.Cookie{}
	for _, c := range recorder.Result().Cookies() {
		cookies[c.Name] = c
	}
	return cookies
}

// ===== TESTS =====

func TestLoginHandler_SetsCookies(t *testing.T) {
	h, mockAuth, _ := newTestHandler(t, false)

	tokens := &model.TokensPair{AccessToken: "acc", RefreshToken: "ref"}
	user := &model.User{UUID: "u1", LoginName: "alice", Role: model.RoleUser}
	mockAuth.On("Login", mock.Anything, "alice", "StrongPass123!", mock.Anything, mock.Anything).
		Return(tokens, user, nil)

	request := httptest.NewRequest(http.MethodPost, "/api/auth",
		strings.NewReader(`{"login_name":"alice","password":"StrongPass123!"}`))
	recorder := httptest.NewRecorder()

	h.Login(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)

	cookies := sessionCookies(t, recorder)
	require.Contains(t, cookies, security.AccessTokenCookie)
	require.Contains(t, cookies, security.RefreshTokenCookie)
	assert.Equal(t, "acc", cookies[security.AccessTokenCookie].Value)
	assert.Equal(t, "ref", cookies[security.RefreshTokenCookie].Value)
	assert.Equal(t, security.RefreshCookiePath, cookies[security.RefreshTokenCookie].Path)

	// токен в теле не возвращается без return_token_in_body
	assert.NotContains(t, recorder.Body.String(), `"token"`)
	assert.Contains(t, recorder.Body.String(), `"_id":"u1"`)
}

func TestLoginHandler_TokenInBodyWhenEnabled(t *testing.T) {
	h, mockAuth, _ := newTestHandler(t, true)

	mockAuth.On("Login", mock.Anything, "alice", "StrongPass123!", mock.Anything, mock.Anything).
		Return(&model.TokensPair{AccessToken: "acc", RefreshToken: "ref"},
			&model.User{UUID: "u1", LoginName: "alice"}, nil)

	request := httptest.NewRequest(http.MethodPost, "/api/auth",
		strings.NewReader(`{"login_name":"alice","password":"StrongPass123!"}`))
	recorder := httptest.NewRecorder()

	h.Login(recorder, request)

	assert.Contains(t, recorder.Body.String(), `"token":"acc"`)
}

func TestLoginHandler_MissingFields(t *testing.T) {
	h, mockAuth, _ := newTestHandler(t, false)

	request := httptest.NewRequest(http.MethodPost, "/api/auth",
		strings.NewReader(`{"login_name":"alice"}`))
	recorder := httptest.NewRecorder()

	h.Login(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	mockAuth.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	h, mockAuth, _ := newTestHandler(t, false)

	mockAuth.On("Login", mock.Anything, "alice", "badpass", mock.Anything, mock.Anything).
		Return(nil, nil, service.ErrInvalidCredentials)

	request := httptest.NewRequest(http.MethodPost, "/api/auth",
		strings.NewReader(`{"login_name":"alice","password":"badpass"}`))
	recorder := httptest.NewRecorder()

	h.Login(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "неверный логин или пароль")
}

func TestRefreshHandler_RotatesCookies(t *testing.T) {
	h, mockAuth, _ := newTestHandler(t, false)

	mockAuth.On("Refresh", mock.Anything, "old-refresh", mock.Anything, mock.Anything).
		Return(&model.TokensPair{AccessToken: "new-acc", RefreshToken: "new-ref"}, nil)

	request := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	request.AddCookie(&http.Cookie{Name: security.RefreshTokenCookie, Value: "old-refresh"})
	recorder := httptest.NewRecorder()

	h.Refresh(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	cookies := sessionCookies(t, recorder)
	assert.Equal(t, "new-acc", cookies[security.AccessTokenCookie].Value)
	assert.Equal(t, "new-ref", cookies[security.RefreshTokenCookie].Value)
}

// Неудачная ротация гасит обе сессионные cookie
func TestRefreshHandler_FailureClearsCookies(t *testing.T) {
	h, mockAuth, _ := newTestHandler(t, false)

	mockAuth.On("Refresh", mock.Anything, "stolen", mock.Anything, mock.Anything).
		Return(nil, service.ErrUnauthorized)

	request := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	request.AddCookie(&http.Cookie{Name: security.RefreshTokenCookie, Value: "stolen"})
	recorder := httptest.NewRecorder()

	h.Refresh(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	cookies := sessionCookies(t, recorder)
	require.Contains(t, cookies, security.AccessTokenCookie)
	require.Contains(t, cookies, security.RefreshTokenCookie)
	assert.Equal(t, -1, cookies[security.AccessTokenCookie].MaxAge)
	assert.Equal(t, -1, cookies[security.RefreshTokenCookie].MaxAge)
}

func TestRefreshHandler_NoCookie(t *testing.T) {
	h, mockAuth, _ := newTestHandler(t, false)

	recorder := httptest.NewRecorder()
	h.Refresh(recorder, httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil))

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	mockAuth.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// Logout без cookie остаётся успешным и гасит cookie
func TestLogoutHandler_Idempotent(t *testing.T) {
	h, mockAuth, _ := newTestHandler(t, false)

	mockAuth.On("Logout", mock.Anything, "").Return(nil)

	recorder := httptest.NewRecorder()
	h.Logout(recorder, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"ok":true`)

	cookies := sessionCookies(t, recorder)
	assert.Equal(t, -1, cookies[security.AccessTokenCookie].MaxAge)
}

func TestMeHandler(t *testing.T) {
	h, _, mockUsers := newTestHandler(t, false)

	mockUsers.On("GetByUUID", mock.Anything, "u1").
		Return(&model.User{UUID: "u1", LoginName: "alice", Role: model.RoleUser, AuthProvider: model.ProviderLocal}, nil)

	claims := &security.AccessClaims{UserUUID: "u1", Role: model.RoleUser}
	ctx := context.WithValue(context.Background(), security.UserContextKey, claims)

	request := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil).WithContext(ctx)
	recorder := httptest.NewRecorder()

	h.Me(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"login_name":"alice"`)
}

func TestMeHandler_NoClaims(t *testing.T) {
	h, _, mockUsers := newTestHandler(t, false)

	recorder := httptest.NewRecorder()
	h.Me(recorder, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	mockUsers.AssertNotCalled(t, "GetByUUID", mock.Anything, mock.Anything)
}

func TestLogoutAllHandler(t *testing.T) {
	h, mockAuth, _ := newTestHandler(t, false)

	mockAuth.On("LogoutAll", mock.Anything, "u1").Return(nil)

	claims := &security.AccessClaims{UserUUID: "u1"}
	ctx := context.WithValue(context.Background(), security.UserContextKey, claims)

	request := httptest.NewRequest(http.MethodPost, "/api/auth/logout-all", nil).WithContext(ctx)
	recorder := httptest.NewRecorder()

	h.LogoutAll(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	mockAuth.AssertExpectations(t)

	cookies := sessionCookies(t, recorder)
	assert.Equal(t, -1, cookies[security.AccessTokenCookie].MaxAge)
}

func TestCleanupSessionsHandler(t *testing.T) {
	h, mockAuth, _ := newTestHandler(t, false)

	mockAuth.On("PurgeExpiredSessions", mock.Anything).Return(int64(12), nil)

	recorder := httptest.NewRecorder()
	h.CleanupSessions(recorder, httptest.NewRequest(http.MethodPost, "/api/admin/sessions/cleanup", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"deleted":12`)
}
