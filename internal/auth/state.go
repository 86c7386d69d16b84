package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	StateCookieName  = "google_oauth_state"
	UserIDCookieName = "google_oauth_user_id"
	StateTTL         = 10 * time.Minute
)

var (
	ErrInvalidState       = errors.New("invalid state parameter")
	ErrUserIdentification = errors.New("user identification failed")
)

// ConsumedStateLedger remembers states that were already redeemed
type ConsumedStateLedger interface {
	// MarkConsumed returns true only for the first redemption of state within ttl
	MarkConsumed(ctx context.Context, state string, ttl time.Duration) (bool, error)
}

// PendingAuthorization is what survives the round trip to Google's consent screen
type PendingAuthorization struct {
	State  string
	UserID string
}

// StateStore carries the anti-forgery state and the initiating user id across
// the redirect in two short-lived http-only cookies.
type StateStore struct {
	secure bool
	ledger ConsumedStateLedger
}

// NewStateStore creates a store; ledger may be nil
func NewStateStore(secure bool, ledger ConsumedStateLedger) *StateStore {
	return &StateStore{secure: secure, ledger: ledger}
}

// NewState returns a random v4 UUID, 122 bits of entropy
func (s *StateStore) NewState() (string, error) {
	state, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return state.String(), nil
}

// Remember sets both cookies on the response
func (s *StateStore) Remember(c *gin.Context, state, userID string) {
	maxAge := int(StateTTL.Seconds())
	// Lax keeps the cookies on the top-level redirect back from Google.
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(UserIDCookieName, userID, maxAge, "/", "", s.secure, true)
	c.SetCookie(StateCookieName, state, maxAge, "/", "", s.secure, true)
}

// Consume reads and clears both cookies, then checks them against the state
// Google echoed back. The cookies are cleared whether or not validation passes,
// so a state can be presented at most once.
func (s *StateStore) Consume(c *gin.Context, receivedState string) (*PendingAuthorization, error) {
	storedState, _ := c.Cookie(StateCookieName)
	userID, _ := c.Cookie(UserIDCookieName)
	s.clear(c)

	if storedState == "" || subtle.ConstantTimeCompare([]byte(storedState), []byte(receivedState)) != 1 {
		return nil, ErrInvalidState
	}

	if s.ledger != nil {
		first, err := s.ledger.MarkConsumed(c.Request.Context(), storedState, StateTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to record consumed state: %w", err)
		}
		if !first {
			return nil, ErrInvalidState
		}
	}

	if userID == "" {
		return nil, ErrUserIdentification
	}

	return &PendingAuthorization{State: storedState, UserID: userID}, nil
}

func (s *StateStore) clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(StateCookieName, "", -1, "/", "", s.secure, true)
	c.SetCookie(UserIDCookieName, "", -1, "/", "", s.secure, true)
}
