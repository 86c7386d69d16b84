package database

import (
	"path/filepath"
	"testing"

	"github.com/franciscosanchezn/calassist-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "postgres",
			cfg:  DatabaseConfig{Driver: "postgres", Host: "db", Port: "5432", User: "cal", Password: "pw", Name: "calassist", SSLMode: "disable"},
			want: "host=db user=cal password=pw dbname=calassist port=5432 sslmode=disable",
		},
		{
			name: "mysql from fields",
			cfg:  DatabaseConfig{Driver: "mysql", Host: "db", Port: "3306", User: "cal", Password: "pw", Name: "calassist"},
			want: "cal:pw@tcp(db:3306)/calassist?charset=utf8mb4&parseTime=True&loc=UTC",
		},
		{
			name: "mysql url with options",
			cfg:  DatabaseConfig{Driver: "mysql", URL: "cal:pw@tcp(db:3306)/calassist?timeout=5s"},
			want: "cal:pw@tcp(db:3306)/calassist?timeout=5s&charset=utf8mb4&parseTime=True&loc=UTC",
		},
		{
			name: "mysql url already merged",
			cfg:  DatabaseConfig{Driver: "mysql", URL: "cal:pw@tcp(db:3306)/calassist?charset=utf8mb4&parseTime=True&loc=UTC"},
			want: "cal:pw@tcp(db:3306)/calassist?charset=utf8mb4&parseTime=True&loc=UTC",
		},
		{
			name: "sqlite",
			cfg:  DatabaseConfig{Driver: "sqlite", Path: "calassist.db"},
			want: "calassist.db",
		},
		{
			name: "unknown",
			cfg:  DatabaseConfig{Driver: "oracle"},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.DSN())
		})
	}
}

func TestDatabaseConfigStringRedactsPassword(t *testing.T) {
	cfg := DatabaseConfig{Driver: "postgres", Password: "super-secret"}
	assert.NotContains(t, cfg.String(), "super-secret")
	assert.Contains(t, cfg.String(), "[REDACTED]")
}

func TestInitDatabase_UnsupportedDriver(t *testing.T) {
	_, err := InitDatabase(DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestInitDatabaseAndMigrate_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calassist.db")

	db, err := InitDatabase(DatabaseConfig{Driver: "sqlite", Path: path})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	require.NoError(t, Migrate(db))
	// Migrating twice is a no-op.
	require.NoError(t, Migrate(db))

	assert.True(t, db.Migrator().HasTable(&models.GoogleAuthToken{}))
	assert.True(t, db.Migrator().HasIndex(&models.GoogleAuthToken{}, "UserID"))

	token := models.GoogleAuthToken{ID: "id-1", UserID: "u1", AccessToken: "AT"}
	require.NoError(t, db.Create(&token).Error)
	dup := models.GoogleAuthToken{ID: "id-2", UserID: "u1", AccessToken: "AT"}
	err = db.Create(&dup).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey, "user_id must be unique")
}
