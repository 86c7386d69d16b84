package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/carlmjohnson/requests"
	"github.com/franciscosanchezn/calassist-api/internal/config"
	"github.com/franciscosanchezn/calassist-api/internal/models"
	oautherrors "github.com/go-oauth2/oauth2/v4/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleAuthURL    = "https://accounts.google.com/o/oauth2/v2/auth"
	googleProfileURL = "https://www.googleapis.com/userinfo/v2/me"
)

// CalendarScopes are requested on every consent
var CalendarScopes = []string{
	"https://www.googleapis.com/auth/calendar",
	"https://www.googleapis.com/auth/calendar.events",
	"https://www.googleapis.com/auth/calendar.readonly",
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/userinfo.email",
}

// GoogleProvider speaks Google's OAuth2 and userinfo wire contracts
type GoogleProvider struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Endpoint     oauth2.Endpoint
	ProfileURL   string
	HTTPClient   *http.Client
}

// NewGoogleProvider builds a provider from the application configuration
func NewGoogleProvider(cfg *config.Config) *GoogleProvider {
	endpoint := google.Endpoint
	endpoint.AuthURL = googleAuthURL

	return &GoogleProvider{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.RedirectURI(),
		Endpoint:     endpoint,
		ProfileURL:   googleProfileURL,
		HTTPClient:   &http.Client{Timeout: cfg.GoogleHTTPTimeout},
	}
}

func (p *GoogleProvider) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		RedirectURL:  p.RedirectURL,
		Scopes:       CalendarScopes,
		Endpoint:     p.Endpoint,
	}
}

func (p *GoogleProvider) withHTTPClient(ctx context.Context) context.Context {
	if p.HTTPClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, p.HTTPClient)
}

func (p *GoogleProvider) requireCredentials(op string) error {
	if p.ClientID == "" || p.ClientSecret == "" {
		return models.NewIntegrationError(op, models.ErrConfiguration, errors.New("google client credentials not found"))
	}
	return nil
}

// AuthCodeURL returns the consent screen URL. access_type=offline and
// prompt=consent make Google issue a refresh token on every consent.
func (p *GoogleProvider) AuthCodeURL(state string) (string, error) {
	if p.ClientID == "" {
		return "", models.NewIntegrationError("authorize", models.ErrConfiguration, errors.New("google client ID not found"))
	}
	return p.oauthConfig().AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

// Exchange trades an authorization code for tokens
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if err := p.requireCredentials("exchange"); err != nil {
		return nil, err
	}
	token, err := p.oauthConfig().Exchange(p.withHTTPClient(ctx), code)
	if err != nil {
		return nil, classifyTokenError("exchange", err)
	}
	return token, nil
}

// Refresh performs a refresh_token grant. When Google omits a new refresh
// token the returned token carries the one passed in.
func (p *GoogleProvider) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if err := p.requireCredentials("refresh"); err != nil {
		return nil, err
	}
	source := p.oauthConfig().TokenSource(p.withHTTPClient(ctx), &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return nil, classifyTokenError("refresh", err)
	}
	return token, nil
}

// FetchProfile reads the signed-in Google account's basic profile
func (p *GoogleProvider) FetchProfile(ctx context.Context, accessToken string) (*models.GoogleUserProfile, error) {
	var profile models.GoogleUserProfile
	builder := requests.URL(p.ProfileURL).
		Bearer(accessToken).
		ToJSON(&profile)
	if p.HTTPClient != nil {
		builder = builder.Client(p.HTTPClient)
	}

	if err := builder.Fetch(ctx); err != nil {
		kind := models.ErrTransientProvider
		if requests.HasStatusErr(err, http.StatusUnauthorized, http.StatusForbidden) {
			kind = models.ErrPermanentAuth
		}
		return nil, models.NewIntegrationError("profile", kind, err)
	}
	return &profile, nil
}

// ErrorDescription extracts the message Google attached to a failed token request
func ErrorDescription(err error, fallback string) string {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		if retrieveErr.ErrorDescription != "" {
			return retrieveErr.ErrorDescription
		}
		if retrieveErr.ErrorCode != "" {
			return retrieveErr.ErrorCode
		}
	}
	return fallback
}

// classifyTokenError separates revoked or misconfigured credentials, which need
// the user to reconnect, from failures worth retrying later.
func classifyTokenError(op string, err error) error {
	var retrieveErr *oauth2.RetrieveError
	if !errors.As(err, &retrieveErr) {
		return models.NewIntegrationError(op, models.ErrTransientProvider, err)
	}

	switch retrieveErr.ErrorCode {
	case oautherrors.ErrInvalidGrant.Error(),
		oautherrors.ErrInvalidClient.Error(),
		oautherrors.ErrUnauthorizedClient.Error():
		return models.NewIntegrationError(op, models.ErrPermanentAuth, err)
	case oautherrors.ErrInvalidRequest.Error(),
		oautherrors.ErrUnsupportedGrantType.Error(),
		oautherrors.ErrInvalidScope.Error():
		return models.NewIntegrationError(op, models.ErrProviderRejected, err)
	}

	if retrieveErr.Response != nil && retrieveErr.Response.StatusCode == http.StatusUnauthorized {
		return models.NewIntegrationError(op, models.ErrPermanentAuth, err)
	}
	return models.NewIntegrationError(op, models.ErrTransientProvider, fmt.Errorf("token endpoint: %w", err))
}
