package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEventRequest_ToCalendarEvent(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		wantErr bool
	}{
		{"valid range", "2025-03-02T15:00:00Z", "2025-03-02T16:00:00Z", false},
		{"offset times", "2025-03-02T15:00:00+01:00", "2025-03-02T15:30:00Z", false},
		{"end before start", "2025-03-02T16:00:00Z", "2025-03-02T15:00:00Z", true},
		{"zero length", "2025-03-02T15:00:00Z", "2025-03-02T15:00:00Z", true},
		{"bad start", "tomorrow", "2025-03-02T15:00:00Z", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := CreateEventRequest{
				Summary:   "Dentist",
				Start:     &EventTimeRequest{DateTime: tt.start, TimeZone: "UTC"},
				End:       &EventTimeRequest{DateTime: tt.end},
				Attendees: []AttendeeRequest{{Email: "jane@x.com"}},
			}

			event, err := req.ToCalendarEvent()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Dentist", event.Summary)
			assert.Equal(t, tt.start, event.Start.DateTime)
			assert.Equal(t, "UTC", event.Start.TimeZone)
			require.Len(t, event.Attendees, 1)
			assert.Equal(t, "jane@x.com", event.Attendees[0].Email)
		})
	}
}

func TestGoogleAuthToken_IsExpired(t *testing.T) {
	token := GoogleAuthToken{ExpiryDate: fixedTime(12, 0)}

	assert.False(t, token.IsExpired(fixedTime(11, 0), 0))
	assert.True(t, token.IsExpired(fixedTime(12, 0), 0), "expiry instant counts as expired")
	assert.True(t, token.IsExpired(fixedTime(11, 59), 2*time.Minute), "within skew counts as expired")
	assert.True(t, token.IsExpired(fixedTime(13, 0), 0))
}
