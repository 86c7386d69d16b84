package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/franciscosanchezn/calassist-api/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// log is the process-wide logger configured by the command entry point
var log = logrus.StandardLogger()

const (
	DefaultCalendarID = "primary"
	DefaultMaxResults = 10
	maxResultsLimit   = 2500
)

// AccessTokenSource yields a currently valid Google access token for a user
type AccessTokenSource interface {
	GetValidAccessToken(ctx context.Context, userID string) (string, error)
}

// CalendarService reads and writes events on a user's Google Calendar
type CalendarService interface {
	// ListEvents returns upcoming events ordered by start time
	ListEvents(ctx context.Context, userID, calendarID string, maxResults int64) ([]*calendar.Event, error)
	// CreateEvent inserts event and returns the stored copy
	CreateEvent(ctx context.Context, userID, calendarID string, event *calendar.Event) (*calendar.Event, error)
}

type calendarService struct {
	tokens  AccessTokenSource
	timeout time.Duration
	options []option.ClientOption
	now     func() time.Time
}

// NewCalendarService creates a new instance of CalendarService. Extra client
// options are appended after the per-user HTTP client.
func NewCalendarService(tokens AccessTokenSource, timeout time.Duration, opts ...option.ClientOption) CalendarService {
	return &calendarService{
		tokens:  tokens,
		timeout: timeout,
		options: opts,
		now:     time.Now,
	}
}

func (s *calendarService) client(ctx context.Context, userID string) (*calendar.Service, error) {
	accessToken, err := s.tokens.GetValidAccessToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
	httpClient.Timeout = s.timeout

	opts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, s.options...)
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, models.NewIntegrationError("calendar_client", models.ErrConfiguration, fmt.Errorf("failed to create calendar service: %w", err))
	}
	return svc, nil
}

func (s *calendarService) ListEvents(ctx context.Context, userID, calendarID string, maxResults int64) ([]*calendar.Event, error) {
	if calendarID == "" {
		calendarID = DefaultCalendarID
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if maxResults > maxResultsLimit {
		maxResults = maxResultsLimit
	}

	svc, err := s.client(ctx, userID)
	if err != nil {
		return nil, err
	}

	events, err := svc.Events.List(calendarID).
		Context(ctx).
		MaxResults(maxResults).
		SingleEvents(true).
		OrderBy("startTime").
		TimeMin(s.now().UTC().Format(time.RFC3339)).
		Do()
	if err != nil {
		return nil, classifyCalendarError("list_events", userID, calendarID, err)
	}

	if events.Items == nil {
		return []*calendar.Event{}, nil
	}
	return events.Items, nil
}

func (s *calendarService) CreateEvent(ctx context.Context, userID, calendarID string, event *calendar.Event) (*calendar.Event, error) {
	if calendarID == "" {
		calendarID = DefaultCalendarID
	}
	if event == nil {
		return nil, models.NewIntegrationError("create_event", models.ErrProviderRejected, errors.New("event cannot be nil"))
	}

	svc, err := s.client(ctx, userID)
	if err != nil {
		return nil, err
	}

	created, err := svc.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, classifyCalendarError("create_event", userID, calendarID, err)
	}

	log.WithFields(logrus.Fields{
		"user_id":     userID,
		"calendar_id": calendarID,
		"event_id":    created.Id,
	}).Info("Calendar event created")
	return created, nil
}

// classifyCalendarError logs the raw Google response and maps it to a failure class
func classifyCalendarError(op, userID, calendarID string, err error) error {
	fields := logrus.Fields{
		"user_id":     userID,
		"calendar_id": calendarID,
		"op":          op,
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		log.WithFields(fields).WithError(err).Error("Google Calendar request failed")
		return models.NewIntegrationError(op, models.ErrTransientProvider, err)
	}

	fields["status"] = apiErr.Code
	log.WithFields(fields).WithField("body", apiErr.Body).Error("Google Calendar API error")

	switch {
	case apiErr.Code == http.StatusUnauthorized:
		return models.NewIntegrationError(op, models.ErrPermanentAuth, err)
	case apiErr.Code == http.StatusTooManyRequests, apiErr.Code >= 500:
		return models.NewIntegrationError(op, models.ErrTransientProvider, err)
	case apiErr.Code == http.StatusForbidden && isRateLimited(apiErr):
		return models.NewIntegrationError(op, models.ErrTransientProvider, err)
	default:
		return models.NewIntegrationError(op, models.ErrProviderRejected, err)
	}
}

func isRateLimited(apiErr *googleapi.Error) bool {
	for _, item := range apiErr.Errors {
		if item.Reason == "rateLimitExceeded" || item.Reason == "userRateLimitExceeded" {
			return true
		}
	}
	return false
}
