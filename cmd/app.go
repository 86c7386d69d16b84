package main

import (
	"context"
	"fmt"

	"github.com/franciscosanchezn/calassist-api/internal/auth"
	"github.com/franciscosanchezn/calassist-api/internal/cache"
	"github.com/franciscosanchezn/calassist-api/internal/config"
	"github.com/franciscosanchezn/calassist-api/internal/database"
	"github.com/franciscosanchezn/calassist-api/internal/services"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// application holds the wired dependencies shared by the commands
type application struct {
	cfg         *config.Config
	db          *gorm.DB
	redis       *redis.Client
	provider    *auth.GoogleProvider
	states      *auth.StateStore
	credentials services.CredentialService
	tokens      *auth.TokenManager
	calendar    services.CalendarService
}

// loadConfig loads the application configuration from environment variables
func loadConfig() (*config.Config, error) {
	conf, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	log.Infof("Configuration loaded: %s", conf)
	return conf, nil
}

// openDatabase connects to the configured database without migrating it
func openDatabase(conf *config.Config) (*gorm.DB, error) {
	db, err := database.InitDatabase(conf.Database())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, nil
}

// newApplication connects the database and, when configured, redis, then
// wires the services on top of them.
func newApplication(ctx context.Context) (*application, error) {
	conf, err := loadConfig()
	if err != nil {
		return nil, err
	}

	db, err := openDatabase(conf)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	app := &application{
		cfg:         conf,
		db:          db,
		provider:    auth.NewGoogleProvider(conf),
		credentials: services.NewCredentialService(db),
	}

	var ledger auth.ConsumedStateLedger
	var locker auth.Locker = auth.NewLocalLocker()
	if conf.RedisURL != "" {
		client, err := cache.Connect(ctx, conf.RedisURL)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.redis = client
		ledger = cache.NewStateLedger(client)
		locker = cache.NewLocker(client)
	} else {
		log.Warn("REDIS_URL not set, OAuth state replay protection and refresh locking are process-local")
	}

	app.states = auth.NewStateStore(conf.IsProduction(), ledger)
	app.tokens = auth.NewTokenManager(app.credentials, app.provider, conf.TokenExpirySkew, conf.GoogleHTTPTimeout, locker)
	app.calendar = services.NewCalendarService(app.tokens, conf.GoogleHTTPTimeout)
	return app, nil
}

// Close releases the database and redis connections
func (a *application) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.WithError(err).Warn("Failed to close redis client")
		}
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.WithError(err).Warn("Failed to close database")
			}
		}
	}
}
