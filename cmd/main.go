package main

import (
	"github.com/alecthomas/kong"
	_ "github.com/franciscosanchezn/calassist-api/docs" // Import generated docs
	"github.com/franciscosanchezn/calassist-api/internal/config"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Context is passed to every command's Run method
type Context struct {
	Debug bool
}

var cli struct {
	Debug bool `help:"Enable debug logging."`

	Serve      ServeCmd      `cmd:"" default:"1" help:"Serve the HTTP API."`
	Migrate    MigrateCmd    `cmd:"" help:"Create or update the credential table."`
	Disconnect DisconnectCmd `cmd:"" help:"Delete a user's stored Google credential."`
	Events     EventsCmd     `cmd:"" help:"Print a user's upcoming Google Calendar events."`
}

// @title CalAssist Calendar Integration API
// @version 1.0
// @description Google Calendar connect flow, credential lifecycle and event access for CalAssist users
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey SessionAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token. The session cookie is accepted as well.
func main() {
	// Load environment variables
	loadDotenvFile()

	ctx := kong.Parse(&cli,
		kong.Name("calassist"),
		kong.Description("CalAssist Google Calendar integration service"),
	)

	// Initialize logger
	setUpLogger(cli.Debug)

	err := ctx.Run(&Context{Debug: cli.Debug})
	ctx.FatalIfErrorf(err)
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter and sets the log level based on the environment
func setUpLogger(debug bool) {
	log.SetFormatter(&log.JSONFormatter{})
	environment := config.GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(log.DebugLevel)
	case "production":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}

	if level, err := log.ParseLevel(config.GetEnvWithDefault("LOG_LEVEL", "")); err == nil {
		log.SetLevel(level)
	}
	if debug {
		log.SetLevel(log.DebugLevel)
	}
}
