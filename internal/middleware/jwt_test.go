package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baldiga/linkedin-ai-proxy-v2/internal/utils"
)

func protectedApp(secret string) *echo.Echo {
	e := echo.New()
	g := e.Group("/v1")
	g.Use(JWTAuth(secret))
	g.GET("/me", func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get("user_id").(string))
	})
	return e
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	e := protectedApp("secret")
	tok, err := utils.NewAccessToken("secret", "a@b.c", 60)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a@b.c", rec.Body.String(), "subject claim reaches the handler")
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	e := protectedApp("secret")
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	e := protectedApp("secret")
	tok, err := utils.NewAccessToken("other-secret", "a@b.c", 60)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
