package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/franciscosanchezn/calassist-api/internal/config"
	"github.com/franciscosanchezn/calassist-api/internal/middleware"
	"github.com/joho/godotenv"
)

func main() {
	// Parse command line flags
	userID := flag.String("user-id", "dev-user", "User id to sign in as")
	email := flag.String("email", "dev@calassist.local", "Email claim for the session")
	ttl := flag.Duration("ttl", 24*time.Hour, "Session lifetime")
	flag.Parse()

	_ = godotenv.Load()

	secret := config.GetEnvWithDefault("SESSION_SECRET", "development-session-secret")
	if config.GetEnvWithDefault("APP_ENV", "development") == "production" {
		log.Fatal("Refusing to mint a development session with APP_ENV=production")
	}

	token, err := middleware.SignSessionToken([]byte(secret), *userID, *email, *ttl)
	if err != nil {
		log.Fatal("Failed to sign session token:", err)
	}

	baseURL := config.GetEnvWithDefault("FRONTEND_URL", "http://localhost:3000")

	fmt.Printf("✓ Development session created for user '%s' (expires in %s)\n", *userID, *ttl)
	fmt.Printf("Session token: %s\n", token)
	fmt.Println("\nConnect Google Calendar in a browser after setting the session cookie:")
	fmt.Printf("  document.cookie = \"%s=%s; path=/\"\n", middleware.SessionCookieName, token)
	fmt.Printf("  %s/api/integrations/google-calendar/authorize\n", baseURL)
	fmt.Println("\nThen call the API:")
	fmt.Printf("curl -H 'Authorization: Bearer %s' \\\n", token)
	fmt.Printf("  %s/api/integrations/google-calendar/events\n", baseURL)
}
