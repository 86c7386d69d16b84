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

var testSecret = []byte("test-session-secret-32-characters")

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SessionAuth(testSecret))
	r.GET("/whoami", func(c *gin.Context) {
		userID, ok := UserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "signed_in": ok})
	})
	r.GET("/protected", RequireSession(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func signed(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims, key interface{}) string {
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestSessionAuth(t *testing.T) {
	valid, err := SignSessionToken(testSecret, "u1", "jane@x.com", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		cookie     string
		header     string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "cookie session",
			cookie:     valid,
			wantStatus: http.StatusOK,
			wantBody:   `{"signed_in":true,"user_id":"u1"}`,
		},
		{
			name:       "bearer session",
			header:     "Bearer " + valid,
			wantStatus: http.StatusOK,
			wantBody:   `{"signed_in":true,"user_id":"u1"}`,
		},
		{
			name:       "anonymous",
			wantStatus: http.StatusOK,
			wantBody:   `{"signed_in":false,"user_id":""}`,
		},
		{
			name:       "wrong secret",
			cookie:     signed(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(time.Hour).Unix()}, []byte("another-secret-entirely-123456")),
			wantStatus: http.StatusOK,
			wantBody:   `{"signed_in":false,"user_id":""}`,
		},
		{
			name:       "expired",
			cookie:     signed(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(-time.Hour).Unix()}, testSecret),
			wantStatus: http.StatusOK,
			wantBody:   `{"signed_in":false,"user_id":""}`,
		},
		{
			name:       "no expiry",
			cookie:     signed(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1"}, testSecret),
			wantStatus: http.StatusOK,
			wantBody:   `{"signed_in":false,"user_id":""}`,
		},
		{
			name:       "missing subject",
			cookie:     signed(t, jwt.SigningMethodHS256, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}, testSecret),
			wantStatus: http.StatusOK,
			wantBody:   `{"signed_in":false,"user_id":""}`,
		},
		{
			name:       "other hmac algorithm",
			cookie:     signed(t, jwt.SigningMethodHS512, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(time.Hour).Unix()}, testSecret),
			wantStatus: http.StatusOK,
			wantBody:   `{"signed_in":false,"user_id":""}`,
		},
	}

	router := setupRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestRequireSession(t *testing.T) {
	router := setupRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"code":"UNAUTHORIZED","message":"User not authenticated"}`, w.Body.String())

	token, err := SignSessionToken(testSecret, "u1", "", time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
