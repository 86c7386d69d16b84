package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/franciscosanchezn/calassist-api/internal/database"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/calendar/v3"
)

// MigrateCmd creates or updates the schema and exits
type MigrateCmd struct{}

func (m *MigrateCmd) Run(ctx *Context) error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDatabase(conf)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if err := database.Migrate(db); err != nil {
		return err
	}
	log.Info("Migration complete")
	return nil
}

// DisconnectCmd removes a user's Google credential
type DisconnectCmd struct {
	UserID string `required:"" help:"id of the user to disconnect"`
}

func (d *DisconnectCmd) Run(ctx *Context) error {
	app, err := newApplication(context.Background())
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.tokens.Disconnect(context.Background(), d.UserID); err != nil {
		return err
	}
	fmt.Printf("Google Calendar disconnected for user %s\n", d.UserID)
	return nil
}

// EventsCmd lists upcoming events through the same refresh path the API uses
type EventsCmd struct {
	UserID     string `required:"" help:"id of the user whose calendar to read"`
	CalendarID string `default:"primary" help:"calendar to read"`
	MaxResults int64  `default:"10" help:"maximum number of events"`
}

func (e *EventsCmd) Run(ctx *Context) error {
	app, err := newApplication(context.Background())
	if err != nil {
		return err
	}
	defer app.Close()

	events, err := app.calendar.ListEvents(context.Background(), e.UserID, e.CalendarID, e.MaxResults)
	if err != nil {
		return err
	}
	return printEvents(events)
}

func printEvents(events []*calendar.Event) error {
	if len(events) == 0 {
		fmt.Println("No upcoming events")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "START\tSUMMARY\tID")
	for _, event := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\n", eventStart(event), event.Summary, event.Id)
	}
	return w.Flush()
}

func eventStart(event *calendar.Event) string {
	if event.Start == nil {
		return "-"
	}
	if event.Start.DateTime != "" {
		return event.Start.DateTime
	}
	return event.Start.Date
}
