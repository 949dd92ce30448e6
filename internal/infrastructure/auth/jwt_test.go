package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/pot-code/focus-tracker/internal/infrastructure/driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTSignAndValidate(t *testing.T) {
	ju := NewJWTUtil("HS256", "secret", "jwt", time.Hour)
	token, err := ju.GenerateTokenStr(&Subject{ID: "u1", Email: "a@b.c", FullName: "Ann"})
	require.NoError(t, err)

	claims, err := ju.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UID)
	assert.Equal(t, "a@b.c", claims.Email)
	assert.InDelta(t, time.Hour.Seconds(), claims.TimeRemaining().Seconds(), 5)
}

func TestJWTRejectsWrongSecretAndMethod(t *testing.T) {
	ju := NewJWTUtil("HS256", "secret", "jwt", time.Hour)
	token, err := NewJWTUtil("HS256", "other", "jwt", time.Hour).GenerateTokenStr(&Subject{ID: "u1"})
	require.NoError(t, err)
	_, err = ju.Validate(token)
	assert.Error(t, err)

	token, err = NewJWTUtil("HS512", "secret", "jwt", time.Hour).GenerateTokenStr(&Subject{ID: "u1"})
	require.NoError(t, err)
	_, err = ju.Validate(token)
	assert.Error(t, err)
}

func TestJWTExpired(t *testing.T) {
	ju := NewJWTUtil("HS256", "secret", "jwt", time.Hour)
	token, err := ju.Sign(&AppTokenClaims{
		UID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	require.NoError(t, err)

	_, err = ju.Validate(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestJWTCookieRoundTrip(t *testing.T) {
	ju := NewJWTUtil("HS256", "secret", "jwt", 7*24*time.Hour)
	e := echo.New()

	rec := httptest.NewRecorder()
	ju.SetClientToken(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec), "abc")
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "jwt", cookies[0].Name)
	assert.Equal(t, 7*24*3600, cookies[0].MaxAge)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	token, err := ju.ExtractToken(e.NewContext(req, httptest.NewRecorder()))
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
}

func TestTokenBlacklist(t *testing.T) {
	ctx := context.Background()
	tb := NewTokenBlacklist(driver.NewMemoryKV())

	revoked, err := tb.IsRevoked(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, tb.Revoke(ctx, "t1", time.Minute))
	require.NoError(t, tb.Revoke(ctx, "t2", 0))

	revoked, err = tb.IsRevoked(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = tb.IsRevoked(ctx, "t2")
	require.NoError(t, err)
	assert.False(t, revoked)
}
