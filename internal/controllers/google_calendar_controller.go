package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/franciscosanchezn/calassist-api/internal/auth"
	"github.com/franciscosanchezn/calassist-api/internal/config"
	"github.com/franciscosanchezn/calassist-api/internal/middleware"
	"github.com/franciscosanchezn/calassist-api/internal/models"
	"github.com/franciscosanchezn/calassist-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// log is the process-wide logger configured by the command entry point
var log = logrus.StandardLogger()

// Messages shown on the connect page
const (
	msgAuthorizeFailed     = "Failed to initialize Google Calendar authorization"
	msgMissingParameters   = "Missing required parameters"
	msgInvalidState        = "Invalid state parameter"
	msgUserIdentification  = "User identification failed"
	msgTokenExchangeFailed = "Token exchange failed"
	msgMissingCredentials  = "Google client credentials not found"
	msgProfileFailed       = "Failed to get Google user profile"
	msgSaveFailed          = "Failed to save Google Calendar connection"
	msgUnexpectedCallback  = "Unexpected error during Google Calendar authorization"
)

// AuthorizationProvider is the Google side of the authorization-code flow
type AuthorizationProvider interface {
	AuthCodeURL(state string) (string, error)
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	FetchProfile(ctx context.Context, accessToken string) (*models.GoogleUserProfile, error)
}

// ConnectionManager reports and removes a user's Google Calendar connection
type ConnectionManager interface {
	IsConnected(ctx context.Context, userID string) (bool, error)
	Disconnect(ctx context.Context, userID string) error
}

// GoogleCalendarController handles the Google Calendar connect flow and event routes
type GoogleCalendarController struct {
	cfg         *config.Config
	provider    AuthorizationProvider
	states      *auth.StateStore
	credentials services.CredentialService
	connections ConnectionManager
	calendar    services.CalendarService
	now         func() time.Time
}

// NewGoogleCalendarController creates a new instance of GoogleCalendarController
func NewGoogleCalendarController(
	cfg *config.Config,
	provider AuthorizationProvider,
	states *auth.StateStore,
	credentials services.CredentialService,
	connections ConnectionManager,
	calendar services.CalendarService,
) *GoogleCalendarController {
	return &GoogleCalendarController{
		cfg:         cfg,
		provider:    provider,
		states:      states,
		credentials: credentials,
		connections: connections,
		calendar:    calendar,
		now:         time.Now,
	}
}

// Authorize godoc
// @Summary Start Google Calendar authorization
// @Description Redirects the signed-in user to Google's consent screen
// @Tags google-calendar
// @Success 302 "Redirect to Google, or to the sign-in page without a session"
// @Router /api/integrations/google-calendar/authorize [get]
func (gc *GoogleCalendarController) Authorize(c *gin.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Panic while starting Google Calendar authorization")
			gc.redirectError(c, msgAuthorizeFailed)
		}
	}()

	userID, ok := middleware.UserID(c)
	if !ok {
		c.Redirect(http.StatusFound, gc.cfg.FrontendPath(config.SignInPath))
		return
	}

	state, err := gc.states.NewState()
	if err != nil {
		log.WithError(err).Error("Failed to generate OAuth state")
		gc.redirectError(c, msgAuthorizeFailed)
		return
	}

	authURL, err := gc.provider.AuthCodeURL(state)
	if err != nil {
		log.WithError(err).Error("Failed to build Google consent URL")
		gc.redirectError(c, msgAuthorizeFailed)
		return
	}

	gc.states.Remember(c, state, userID)
	log.WithField("user_id", userID).Info("Redirecting to Google consent screen")
	c.Redirect(http.StatusFound, authURL)
}

// Callback godoc
// @Summary Complete Google Calendar authorization
// @Description Google redirects here after consent. Always redirects to the connect page with success or error query parameters.
// @Tags google-calendar
// @Param code query string false "Authorization code"
// @Param state query string false "Anti-forgery state"
// @Param error query string false "Error reported by Google"
// @Success 302 "Redirect to /connect/google-calendar"
// @Router /api/integrations/google-calendar/callback [get]
func (gc *GoogleCalendarController) Callback(c *gin.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Panic in Google Calendar callback")
			gc.redirectError(c, fmt.Sprintf("%s: %v", msgUnexpectedCallback, r))
		}
	}()

	if providerErr := c.Query("error"); providerErr != "" {
		log.WithField("error", providerErr).Warn("Google reported an authorization error")
		gc.redirectError(c, "Authentication failed: "+providerErr)
		return
	}

	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		gc.redirectError(c, msgMissingParameters)
		return
	}

	pending, err := gc.states.Consume(c, state)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserIdentification):
			log.Warn("OAuth callback without user id cookie")
			gc.redirectError(c, msgUserIdentification)
		case errors.Is(err, auth.ErrInvalidState):
			log.Warn("OAuth callback with invalid state")
			gc.redirectError(c, msgInvalidState)
		default:
			log.WithError(err).Error("Failed to validate OAuth state")
			gc.redirectError(c, msgInvalidState)
		}
		return
	}

	logger := log.WithField("user_id", pending.UserID)
	ctx := c.Request.Context()

	token, err := gc.provider.Exchange(ctx, code)
	if err != nil {
		logger.WithError(err).Error("Google token exchange failed")
		if errors.Is(err, models.ErrConfiguration) {
			gc.redirectError(c, msgMissingCredentials)
			return
		}
		gc.redirectError(c, auth.ErrorDescription(err, msgTokenExchangeFailed))
		return
	}

	profile, err := gc.provider.FetchProfile(ctx, token.AccessToken)
	if err != nil {
		logger.WithError(err).Error("Failed to fetch Google user profile")
		gc.redirectError(c, msgProfileFailed)
		return
	}

	if _, err := gc.credentials.Upsert(ctx, pending.UserID, auth.GrantFromToken(token, gc.now())); err != nil {
		logger.WithError(err).Error("Failed to store Google auth token")
		gc.redirectError(c, msgSaveFailed)
		return
	}

	logger.WithField("google_email", profile.Email).Info("Google Calendar connected")
	target := gc.cfg.FrontendPath(config.ConnectPagePath) +
		"?success=true&name=" + url.QueryEscape(profile.Name) +
		"&email=" + url.QueryEscape(profile.Email)
	c.Redirect(http.StatusFound, target)
}

// Status godoc
// @Summary Google Calendar connection status
// @Description Reports whether the signed-in user has connected Google Calendar
// @Tags google-calendar
// @Produce json
// @Success 200 {object} map[string]bool
// @Failure 401 {object} models.APIError
// @Failure 500 {object} models.APIError
// @Security SessionAuth
// @Router /api/integrations/google-calendar/status [get]
func (gc *GoogleCalendarController) Status(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	connected, err := gc.connections.IsConnected(c.Request.Context(), userID)
	if err != nil {
		respondWithIntegrationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"connected": connected})
}

// ListEvents godoc
// @Summary List upcoming events
// @Description Upcoming events from the user's calendar ordered by start time
// @Tags google-calendar
// @Produce json
// @Param calendarId query string false "Calendar id" default(primary)
// @Param maxResults query int false "Maximum number of events" default(10)
// @Success 200 {array} calendar.Event
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Failure 502 {object} models.APIError
// @Security SessionAuth
// @Router /api/integrations/google-calendar/events [get]
func (gc *GoogleCalendarController) ListEvents(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var maxResults int64
	if raw := c.Query("maxResults"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "maxResults must be a positive integer"))
			return
		}
		maxResults = parsed
	}

	events, err := gc.calendar.ListEvents(c.Request.Context(), userID, c.Query("calendarId"), maxResults)
	if err != nil {
		respondWithIntegrationError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates an event on the user's calendar
// @Tags google-calendar
// @Accept json
// @Produce json
// @Param calendarId query string false "Calendar id" default(primary)
// @Param event body models.CreateEventRequest true "Event"
// @Success 201 {object} calendar.Event
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Failure 502 {object} models.APIError
// @Security SessionAuth
// @Router /api/integrations/google-calendar/events [post]
func (gc *GoogleCalendarController) CreateEvent(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, "Invalid request body", map[string]interface{}{
			"error": err.Error(),
		}))
		return
	}

	event, err := req.ToCalendarEvent()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, err.Error()))
		return
	}

	created, err := gc.calendar.CreateEvent(c.Request.Context(), userID, c.Query("calendarId"), event)
	if err != nil {
		respondWithIntegrationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Disconnect godoc
// @Summary Disconnect Google Calendar
// @Description Deletes the stored Google credential. Succeeds when nothing is connected.
// @Tags google-calendar
// @Success 204
// @Failure 401 {object} models.APIError
// @Failure 500 {object} models.APIError
// @Security SessionAuth
// @Router /api/integrations/google-calendar [delete]
func (gc *GoogleCalendarController) Disconnect(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	if err := gc.connections.Disconnect(c.Request.Context(), userID); err != nil {
		respondWithIntegrationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RegisterRoutes mounts the integration routes. The connect flow redirects
// instead of returning 401, so only the JSON routes require a session.
func (gc *GoogleCalendarController) RegisterRoutes(rg *gin.RouterGroup) {
	googleCalendar := rg.Group("/integrations/google-calendar")
	{
		googleCalendar.GET("/authorize", gc.Authorize)
		googleCalendar.GET("/callback", gc.Callback)

		protected := googleCalendar.Group("")
		protected.Use(middleware.RequireSession())
		{
			protected.GET("/status", gc.Status)
			protected.GET("/events", gc.ListEvents)
			protected.POST("/events", gc.CreateEvent)
			protected.DELETE("", gc.Disconnect)
		}
	}
}

func (gc *GoogleCalendarController) redirectError(c *gin.Context, message string) {
	c.Redirect(http.StatusFound, gc.cfg.FrontendPath(config.ConnectPagePath)+"?error="+url.QueryEscape(message))
}

// respondWithIntegrationError maps an integration failure class to an API response
func respondWithIntegrationError(c *gin.Context, err error) {
	reconnect := map[string]interface{}{"reconnect_required": true}

	switch {
	case errors.Is(err, models.ErrNotConnected):
		c.JSON(http.StatusConflict, models.NewAPIError(models.ErrCalendarNotConnected, "Google Calendar is not connected", reconnect))
	case errors.Is(err, models.ErrPermanentAuth):
		c.JSON(http.StatusUnauthorized, models.NewAPIError(models.ErrCalendarReconnect, "Google Calendar access was revoked, please reconnect", reconnect))
	case errors.Is(err, models.ErrConfiguration):
		c.JSON(http.StatusServiceUnavailable, models.NewAPIError(models.ErrCalendarNotConfigured, "Google Calendar integration is not configured"))
	case errors.Is(err, models.ErrProviderRejected):
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrCalendarProviderFailed, "Google Calendar rejected the request"))
	case errors.Is(err, models.ErrTransientProvider):
		c.JSON(http.StatusBadGateway, models.NewAPIError(models.ErrCalendarProviderFailed, "Google Calendar is temporarily unavailable"))
	case errors.Is(err, models.ErrPersistence):
		c.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrCalendarStorageFailed, "Failed to access stored credentials"))
	default:
		log.WithError(err).Error("Unclassified calendar integration error")
		c.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Internal server error"))
	}
}
