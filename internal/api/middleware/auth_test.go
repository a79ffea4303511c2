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
)

func signed(t *testing.T, secret string, method jwt.SigningMethod, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(method, jwt.RegisteredClaims{
		Subject:   "phone-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func authRouter(secret string) *gin.Engine {
	r := gin.New()
	r.GET("/x", BearerAuth(secret), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("subject"))
	})
	return r
}

func get(r http.Handler, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBearerAuth(t *testing.T) {
	const secret = "s3cret"
	r := authRouter(secret)

	w := get(r, signed(t, secret, jwt.SigningMethodHS256, time.Now().Add(time.Hour)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "phone-1", w.Body.String())

	w = get(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "missing bearer token", errorOf(t, w))

	for name, tok := range map[string]string{
		"wrong secret": signed(t, "other", jwt.SigningMethodHS256, time.Now().Add(time.Hour)),
		"expired":      signed(t, secret, jwt.SigningMethodHS256, time.Now().Add(-time.Minute)),
		"wrong alg":    signed(t, secret, jwt.SigningMethodHS512, time.Now().Add(time.Hour)),
		"garbage":      "not.a.jwt",
	} {
		w := get(r, tok)
		assert.Equal(t, http.StatusUnauthorized, w.Code, name)
		assert.Equal(t, "invalid token", errorOf(t, w), name)
	}
}

func TestBearerAuth_DisabledWithoutSecret(t *testing.T) {
	w := get(authRouter(""), "")
	assert.Equal(t, http.StatusOK, w.Code)
}
