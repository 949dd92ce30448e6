package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/focus-tracker/internal/infrastructure/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(cookie *http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func ok(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func statusOf(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return 0
}

func TestVerifyToken(t *testing.T) {
	ju := auth.NewJWTUtil("HS256", "secret", "jwt", time.Hour)
	token, err := ju.GenerateTokenStr(&auth.Subject{ID: "u1"})
	require.NoError(t, err)

	c, _ := newContext(nil)
	assert.Equal(t, http.StatusUnauthorized, statusOf(VerifyToken(ju)(ok)(c)))

	c, _ = newContext(&http.Cookie{Name: "jwt", Value: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, statusOf(VerifyToken(ju)(ok)(c)))

	c, rec := newContext(&http.Cookie{Name: "jwt", Value: token})
	require.NoError(t, VerifyToken(ju)(ok)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", ju.GetContextToken(c).UID)
}

func TestVerifyTokenBlacklisted(t *testing.T) {
	ju := auth.NewJWTUtil("HS256", "secret", "jwt", time.Hour)
	token, err := ju.GenerateTokenStr(&auth.Subject{ID: "u1"})
	require.NoError(t, err)

	revoked := VerifyToken(ju, &ValidateTokenOption{
		InBlackList: func(ctx context.Context, tokenStr string) (bool, error) { return tokenStr == token, nil },
	})
	c, _ := newContext(&http.Cookie{Name: "jwt", Value: token})
	err = revoked(ok)(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
	assert.Equal(t, auth.ErrTokenRevoked, he.Internal)

	boom := errors.New("kv down")
	failing := VerifyToken(ju, &ValidateTokenOption{
		InBlackList: func(context.Context, string) (bool, error) { return false, boom },
	})
	c, _ = newContext(&http.Cookie{Name: "jwt", Value: token})
	assert.ErrorIs(t, failing(ok)(c), boom)
}

func TestRefreshToken(t *testing.T) {
	ju := auth.NewJWTUtil("HS256", "secret", "jwt", time.Hour)
	token, err := ju.GenerateTokenStr(&auth.Subject{ID: "u1"})
	require.NoError(t, err)
	claims, err := ju.Validate(token)
	require.NoError(t, err)

	c, rec := newContext(nil)
	ju.SetContextToken(c, claims)
	require.NoError(t, RefreshToken(ju, &RefreshTokenOption{Threshold: time.Minute})(ok)(c))
	assert.Empty(t, rec.Header().Get(echo.HeaderSetCookie))

	c, rec = newContext(nil)
	ju.SetContextToken(c, claims)
	require.NoError(t, RefreshToken(ju, &RefreshTokenOption{Threshold: 2 * time.Hour})(ok)(c))
	assert.Contains(t, rec.Header().Get(echo.HeaderSetCookie), "jwt=")
}

func TestErrorHandling(t *testing.T) {
	var handled error
	mw := ErrorHandling(&ErrorHandlingOption{
		Handler: func(c echo.Context, err error) {
			handled = err
			c.NoContent(http.StatusInternalServerError)
		},
	})

	c, rec := newContext(nil)
	require.NoError(t, mw(func(echo.Context) error { panic("oops") })(c))
	require.Error(t, handled)
	assert.Contains(t, handled.Error(), "oops")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	handled = nil
	c, rec = newContext(nil)
	require.NoError(t, mw(func(echo.Context) error { return echo.NewHTTPError(http.StatusUnauthorized) })(c))
	assert.NoError(t, handled)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":401`)
}

func TestAbortRequest(t *testing.T) {
	c, _ := newContext(nil)
	require.NoError(t, AbortRequest(&AbortRequestOption{Timeout: time.Second})(func(c echo.Context) error {
		deadline, ok := c.Request().Context().Deadline()
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 500*time.Millisecond)
		return nil
	})(c))

	c, _ = newContext(nil)
	require.NoError(t, AbortRequest()(func(c echo.Context) error {
		_, ok := c.Request().Context().Deadline()
		assert.False(t, ok)
		return nil
	})(c))
}
