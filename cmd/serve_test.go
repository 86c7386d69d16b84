package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/franciscosanchezn/calassist-api/internal/auth"
	"github.com/franciscosanchezn/calassist-api/internal/config"
	"github.com/franciscosanchezn/calassist-api/internal/database"
	"github.com/franciscosanchezn/calassist-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestApp(t *testing.T) *application {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	conf := &config.Config{
		FrontendURL:       "http://localhost:3000",
		SessionSecret:     "test-session-secret-32-characters",
		TokenExpirySkew:   time.Minute,
		GoogleHTTPTimeout: 5 * time.Second,
	}
	app := &application{
		cfg:         conf,
		db:          db,
		provider:    auth.NewGoogleProvider(conf),
		states:      auth.NewStateStore(false, nil),
		credentials: services.NewCredentialService(db),
	}
	app.tokens = auth.NewTokenManager(app.credentials, app.provider, conf.TokenExpirySkew, conf.GoogleHTTPTimeout, auth.NewLocalLocker())
	app.calendar = services.NewCalendarService(app.tokens, conf.GoogleHTTPTimeout)
	t.Cleanup(app.Close)
	return app
}

func TestHealthCheck(t *testing.T) {
	router := setupRouter(setupTestApp(t))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "calassist-api", body["service"])
}

func TestRoutesAreMounted(t *testing.T) {
	router := setupRouter(setupTestApp(t))

	tests := []struct {
		method     string
		path       string
		wantStatus int
	}{
		{http.MethodGet, "/api/integrations/google-calendar/authorize", http.StatusFound},
		{http.MethodGet, "/api/integrations/google-calendar/callback", http.StatusFound},
		{http.MethodGet, "/api/integrations/google-calendar/status", http.StatusUnauthorized},
		{http.MethodGet, "/api/integrations/google-calendar/events", http.StatusUnauthorized},
		{http.MethodPost, "/api/integrations/google-calendar/events", http.StatusUnauthorized},
		{http.MethodDelete, "/api/integrations/google-calendar", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestSwaggerDocument(t *testing.T) {
	router := setupRouter(setupTestApp(t))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	info, ok := doc["info"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "CalAssist Calendar Integration API", info["title"])

	paths, ok := doc["paths"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, paths, "/api/integrations/google-calendar/callback")
}

func TestEventStart(t *testing.T) {
	assert.Equal(t, "-", eventStart(&calendar.Event{}))
	assert.Equal(t, "2025-03-02", eventStart(&calendar.Event{Start: &calendar.EventDateTime{Date: "2025-03-02"}}))
	assert.Equal(t, "2025-03-02T15:00:00Z", eventStart(&calendar.Event{Start: &calendar.EventDateTime{DateTime: "2025-03-02T15:00:00Z"}}))
}
