package security_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photoshare-server/config"
	"photoshare-server/internal/model"
	"photoshare-server/internal/security"
)

func findCookie(t *testing.T, cookies []*http.Cookie, name string) *http.Cookie {
	t.Helper()
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %s не найдена", name)
	return nil
}

func TestSetSessionCookies(t *testing.T) {
	svc := security.NewCookieService(&config.CookieConfig{Production: false},
		15*time.Minute, 30*24*time.Hour, 10*time.Minute)

	recorder := httptest.NewRecorder()
	svc.SetSessionCookies(recorder, &model.TokensPair{AccessToken: "acc", RefreshToken: "ref"})

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 2)

	access := findCookie(t, cookies, security.AccessTokenCookie)
	assert.Equal(t, "acc", access.Value)
	assert.Equal(t, "/", access.Path)
	assert.Equal(t, int((15 * time.Minute).Seconds()), access.MaxAge)
	assert.True(t, access.HttpOnly)
	assert.False(t, access.Secure)
	assert.Equal(t, http.SameSiteLaxMode, access.SameSite)

	// refresh cookie доставляется только на endpoint ротации
	refresh := findCookie(t, cookies, security.RefreshTokenCookie)
	assert.Equal(t, "ref", refresh.Value)
	assert.Equal(t, security.RefreshCookiePath, refresh.Path)
	assert.Equal(t, int((30 * 24 * time.Hour).Seconds()), refresh.MaxAge)
	assert.True(t, refresh.HttpOnly)
}

func TestSetSessionCookies_ProductionSecure(t *testing.T) {
	svc := security.NewCookieService(&config.CookieConfig{Production: true},
		15*time.Minute, 30*24*time.Hour, 10*time.Minute)

	recorder := httptest.NewRecorder()
	svc.SetSessionCookies(recorder, &model.TokensPair{AccessToken: "acc", RefreshToken: "ref"})

	for _, c := range recorder.Result().Cookies() {
		assert.True(t, c.Secure, "cookie %s должна быть Secure в production", c.Name)
	}
}

func TestClearSessionCookies(t *testing.T) {
	svc := security.NewCookieService(&config.CookieConfig{}, 15*time.Minute, time.Hour, time.Minute)

	recorder := httptest.NewRecorder()
	svc.ClearSessionCookies(recorder)

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 2)
	for _, c := range cookies {
		assert.Empty(t, c.Value)
		assert.Equal(t, -1, c.MaxAge)
	}
}

func TestStateCookie(t *testing.T) {
	svc := security.NewCookieService(&config.CookieConfig{}, 15*time.Minute, time.Hour, 10*time.Minute)

	recorder := httptest.NewRecorder()
	svc.SetStateCookie(recorder, "state-value")

	state := findCookie(t, recorder.Result().Cookies(), security.OAuthStateCookie)
	assert.Equal(t, "state-value", state.Value)
	assert.Equal(t, security.OAuthCallbackPath, state.Path)
	assert.Equal(t, int((10 * time.Minute).Seconds()), state.MaxAge)
	assert.True(t, state.HttpOnly)

	cleared := httptest.NewRecorder()
	svc.ClearStateCookie(cleared)
	assert.Equal(t, -1, findCookie(t, cleared.Result().Cookies(), security.OAuthStateCookie).MaxAge)
}
