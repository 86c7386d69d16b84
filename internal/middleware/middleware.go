package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/franciscosanchezn/calassist-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// log is the process-wide logger configured by the command entry point
var log = logrus.StandardLogger()

const (
	// SessionCookieName holds the signed session token set by the sign-in flow
	SessionCookieName = "session"
	// UserIDKey is the gin context key carrying the signed-in user id
	UserIDKey = "userID"
)

// SessionAuth resolves the signed-in user from the session cookie or a Bearer
// header. Requests without a valid session pass through anonymously; handlers
// decide whether a session is required.
func SessionAuth(sessionSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := sessionToken(c)
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := parseAndValidateJWT(tokenString, sessionSecret)
		if err != nil {
			log.WithError(err).WithField("path", c.Request.URL.Path).Debug("Ignoring invalid session token")
			c.Next()
			return
		}

		userID, err := extractUserID(claims)
		if err != nil {
			log.WithError(err).Debug("Ignoring session token without subject")
			c.Next()
			return
		}

		c.Set(UserIDKey, userID)
		if email, ok := claims["email"].(string); ok && email != "" {
			c.Set("userEmail", email)
		}
		c.Next()
	}
}

// RequireSession rejects API requests that carry no signed-in user
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserID(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized, "User not authenticated"))
			return
		}
		c.Next()
	}
}

// UserID returns the signed-in user id set by SessionAuth
func UserID(c *gin.Context) (string, bool) {
	value, exists := c.Get(UserIDKey)
	if !exists {
		return "", false
	}
	userID, ok := value.(string)
	return userID, ok && userID != ""
}

func sessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// parseJWTToken validates and parses a JWT token using HMAC signing method
func parseJWTToken(tokenString string, secret []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Reject alg switching
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v. Expected HMAC", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("token parsing failed: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims format")
	}
	return claims, nil
}

// parseAndValidateJWT parses the JWT and checks its time claims
func parseAndValidateJWT(tokenString string, secret []byte) (jwt.MapClaims, error) {
	claims, err := parseJWTToken(tokenString, secret)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("invalid exp claim: %w", err)
	}
	if exp == nil {
		return nil, fmt.Errorf("session token has no expiry")
	}
	if exp.Before(now) {
		return nil, fmt.Errorf("token has expired")
	}

	iat, err := claims.GetIssuedAt()
	if err != nil {
		return nil, fmt.Errorf("invalid iat claim: %w", err)
	}
	if iat != nil && iat.After(now.Add(time.Minute)) {
		return nil, fmt.Errorf("token issued in the future")
	}

	return claims, nil
}

// extractUserID reads the session subject
func extractUserID(claims jwt.MapClaims) (string, error) {
	sub, err := claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("invalid sub claim: %w", err)
	}
	if sub == "" {
		return "", fmt.Errorf("token missing required 'sub' claim")
	}
	return sub, nil
}
