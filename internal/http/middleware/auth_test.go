package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lgrosz/climb-catalog/internal/platform/ctxutil"
	"github.com/lgrosz/climb-catalog/internal/platform/logger"
)

func signed(t *testing.T, secret string, method jwt.SigningMethod, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log, err := logger.New("test")
	require.NoError(t, err)

	am := NewAuthMiddleware(log, "s3cret")
	r := gin.New()
	r.POST("/w", am.RequireAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, ctxutil.Actor(c.Request.Context()))
	})

	valid := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "route-setter",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	expired := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "route-setter",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}}
	anonymous := Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing", "", http.StatusUnauthorized, ""},
		{"valid", "Bearer " + signed(t, "s3cret", jwt.SigningMethodHS256, valid), http.StatusOK, "route-setter"},
		{"wrong secret", "Bearer " + signed(t, "other", jwt.SigningMethodHS256, valid), http.StatusUnauthorized, ""},
		{"wrong alg", "Bearer " + signed(t, "s3cret", jwt.SigningMethodHS512, valid), http.StatusUnauthorized, ""},
		{"expired", "Bearer " + signed(t, "s3cret", jwt.SigningMethodHS256, expired), http.StatusUnauthorized, ""},
		{"no subject", "Bearer " + signed(t, "s3cret", jwt.SigningMethodHS256, anonymous), http.StatusForbidden, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/w", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			if tc.body != "" {
				assert.Equal(t, tc.body, rec.Body.String())
			}
		})
	}
}
