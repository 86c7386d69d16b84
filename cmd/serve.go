package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/franciscosanchezn/calassist-api/internal/controllers"
	"github.com/franciscosanchezn/calassist-api/internal/middleware"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// ServeCmd runs the HTTP API until SIGINT or SIGTERM
type ServeCmd struct {
	Addr string `help:"Address to listen on, overrides APP_HOST and APP_PORT."`
}

func (s *ServeCmd) Run(ctx *Context) error {
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(sigCtx)
	if err != nil {
		return err
	}
	defer app.Close()

	if app.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	addr := s.Addr
	if addr == "" {
		addr = fmt.Sprintf("%v:%d", app.cfg.Host, app.cfg.Port)
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      setupRouter(app),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		log.Infof("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// setupRouter initializes the Gin router and sets up the routes
func setupRouter(app *application) *gin.Engine {
	router := gin.Default()
	router.Use(middleware.SessionAuth([]byte(app.cfg.SessionSecret)))

	setupRoutes(router, app)
	return router
}

// setupRoutes defines the routes for the Gin router
func setupRoutes(router *gin.Engine, app *application) {
	// Health check endpoint
	router.GET("/health", healthCheckHandler)

	calendarController := controllers.NewGoogleCalendarController(
		app.cfg, app.provider, app.states, app.credentials, app.tokens, app.calendar,
	)
	calendarController.RegisterRoutes(router.Group("/api"))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "calassist-api",
	})
}
