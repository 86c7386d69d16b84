package auth

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/franciscosanchezn/calassist-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.GoogleAuthToken{}))
	return db
}

// fakeGoogle serves the token and userinfo endpoints
type fakeGoogle struct {
	server       *httptest.Server
	tokenHits    int32
	profileHits  int32
	tokenStatus  int
	tokenBody    string
	profileCode  int
	profileBody  string
	lastForm     url.Values
	tokenHandler func(w http.ResponseWriter, r *http.Request)
}

func newFakeGoogle(t *testing.T) *fakeGoogle {
	f := &fakeGoogle{
		tokenStatus: http.StatusOK,
		tokenBody:   `{"access_token":"AT2","expires_in":3600,"token_type":"Bearer"}`,
		profileCode: http.StatusOK,
		profileBody: `{"id":"g-1","name":"Jane","email":"jane@x.com","picture":"https://example.com/p.png"}`,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.tokenHits, 1)
		_ = r.ParseForm()
		f.lastForm = r.PostForm
		if f.tokenHandler != nil {
			f.tokenHandler(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.tokenStatus)
		_, _ = w.Write([]byte(f.tokenBody))
	})
	mux.HandleFunc("/userinfo/v2/me", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.profileHits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.profileCode)
		_, _ = w.Write([]byte(f.profileBody))
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeGoogle) provider() *GoogleProvider {
	return &GoogleProvider{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:3000/api/integrations/google-calendar/callback",
		Endpoint: oauth2.Endpoint{
			AuthURL:   googleAuthURL,
			TokenURL:  f.server.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		ProfileURL: f.server.URL + "/userinfo/v2/me",
		HTTPClient: f.server.Client(),
	}
}

func (f *fakeGoogle) TokenHits() int {
	return int(atomic.LoadInt32(&f.tokenHits))
}

// size reports how many keys the locker tracks
func (l *LocalLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
