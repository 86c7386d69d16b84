package models

import (
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
)

// EventTimeRequest is a start or end instant of a new event
type EventTimeRequest struct {
	DateTime string `json:"dateTime" binding:"required,datetime=2006-01-02T15:04:05Z07:00" example:"2025-03-02T15:00:00Z"`
	TimeZone string `json:"timeZone,omitempty" example:"Europe/Madrid"`
}

// AttendeeRequest invites one person to a new event
type AttendeeRequest struct {
	Email string `json:"email" binding:"required,email" example:"jane@x.com"`
}

// CreateEventRequest is the payload accepted when creating a calendar event
type CreateEventRequest struct {
	Summary     string            `json:"summary" binding:"required,max=1024" example:"Dentist"`
	Description string            `json:"description,omitempty" example:"Annual check-up"`
	Location    string            `json:"location,omitempty" example:"Calle Mayor 1"`
	Start       *EventTimeRequest `json:"start" binding:"required"`
	End         *EventTimeRequest `json:"end" binding:"required"`
	Attendees   []AttendeeRequest `json:"attendees,omitempty" binding:"omitempty,dive"`
}

// ToCalendarEvent checks the time range and builds the Google event resource
func (r *CreateEventRequest) ToCalendarEvent() (*calendar.Event, error) {
	start, err := time.Parse(time.RFC3339, r.Start.DateTime)
	if err != nil {
		return nil, fmt.Errorf("invalid start dateTime: %w", err)
	}
	end, err := time.Parse(time.RFC3339, r.End.DateTime)
	if err != nil {
		return nil, fmt.Errorf("invalid end dateTime: %w", err)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("event end must be after its start")
	}

	event := &calendar.Event{
		Summary:     r.Summary,
		Description: r.Description,
		Location:    r.Location,
		Start:       &calendar.EventDateTime{DateTime: r.Start.DateTime, TimeZone: r.Start.TimeZone},
		End:         &calendar.EventDateTime{DateTime: r.End.DateTime, TimeZone: r.End.TimeZone},
	}
	for _, a := range r.Attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: a.Email})
	}
	return event, nil
}
