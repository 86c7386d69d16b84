// Package docs holds the OpenAPI description served under /swagger. Keep it in
// step with the swag annotations on the handlers and in cmd/main.go.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/integrations/google-calendar": {
            "delete": {
                "security": [{"SessionAuth": []}],
                "description": "Deletes the stored Google credential. Succeeds when nothing is connected.",
                "tags": ["google-calendar"],
                "summary": "Disconnect Google Calendar",
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.APIError"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/models.APIError"}}
                }
            }
        },
        "/api/integrations/google-calendar/authorize": {
            "get": {
                "description": "Redirects the signed-in user to Google's consent screen",
                "tags": ["google-calendar"],
                "summary": "Start Google Calendar authorization",
                "responses": {
                    "302": {"description": "Redirect to Google, or to the sign-in page without a session"}
                }
            }
        },
        "/api/integrations/google-calendar/callback": {
            "get": {
                "description": "Google redirects here after consent. Always redirects to the connect page with success or error query parameters.",
                "tags": ["google-calendar"],
                "summary": "Complete Google Calendar authorization",
                "parameters": [
                    {"type": "string", "description": "Authorization code", "name": "code", "in": "query"},
                    {"type": "string", "description": "Anti-forgery state", "name": "state", "in": "query"},
                    {"type": "string", "description": "Error reported by Google", "name": "error", "in": "query"}
                ],
                "responses": {
                    "302": {"description": "Redirect to /connect/google-calendar"}
                }
            }
        },
        "/api/integrations/google-calendar/events": {
            "get": {
                "security": [{"SessionAuth": []}],
                "description": "Upcoming events from the user's calendar ordered by start time",
                "produces": ["application/json"],
                "tags": ["google-calendar"],
                "summary": "List upcoming events",
                "parameters": [
                    {"type": "string", "default": "primary", "description": "Calendar id", "name": "calendarId", "in": "query"},
                    {"type": "integer", "default": 10, "description": "Maximum number of events", "name": "maxResults", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/calendar.Event"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.APIError"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.APIError"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/models.APIError"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/models.APIError"}}
                }
            },
            "post": {
                "security": [{"SessionAuth": []}],
                "description": "Creates an event on the user's calendar",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["google-calendar"],
                "summary": "Create an event",
                "parameters": [
                    {"type": "string", "default": "primary", "description": "Calendar id", "name": "calendarId", "in": "query"},
                    {"description": "Event", "name": "event", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.CreateEventRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/calendar.Event"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.APIError"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.APIError"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/models.APIError"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/models.APIError"}}
                }
            }
        },
        "/api/integrations/google-calendar/status": {
            "get": {
                "security": [{"SessionAuth": []}],
                "description": "Reports whether the signed-in user has connected Google Calendar",
                "produces": ["application/json"],
                "tags": ["google-calendar"],
                "summary": "Google Calendar connection status",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "boolean"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.APIError"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/models.APIError"}}
                }
            }
        },
        "/health": {
            "get": {
                "description": "Check if the service is running",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "calendar.Event": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "summary": {"type": "string"},
                "description": {"type": "string"},
                "location": {"type": "string"},
                "htmlLink": {"type": "string"},
                "start": {"$ref": "#/definitions/calendar.EventDateTime"},
                "end": {"$ref": "#/definitions/calendar.EventDateTime"},
                "attendees": {"type": "array", "items": {"$ref": "#/definitions/calendar.EventAttendee"}}
            }
        },
        "calendar.EventAttendee": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "responseStatus": {"type": "string"}
            }
        },
        "calendar.EventDateTime": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "dateTime": {"type": "string"},
                "timeZone": {"type": "string"}
            }
        },
        "models.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "details": {"type": "object", "additionalProperties": true},
                "message": {"type": "string"}
            }
        },
        "models.AttendeeRequest": {
            "type": "object",
            "required": ["email"],
            "properties": {
                "email": {"type": "string", "example": "jane@x.com"}
            }
        },
        "models.CreateEventRequest": {
            "type": "object",
            "required": ["end", "start", "summary"],
            "properties": {
                "attendees": {"type": "array", "items": {"$ref": "#/definitions/models.AttendeeRequest"}},
                "description": {"type": "string", "example": "Annual check-up"},
                "end": {"$ref": "#/definitions/models.EventTimeRequest"},
                "location": {"type": "string", "example": "Calle Mayor 1"},
                "start": {"$ref": "#/definitions/models.EventTimeRequest"},
                "summary": {"type": "string", "maxLength": 1024, "example": "Dentist"}
            }
        },
        "models.EventTimeRequest": {
            "type": "object",
            "required": ["dateTime"],
            "properties": {
                "dateTime": {"type": "string", "example": "2025-03-02T15:00:00Z"},
                "timeZone": {"type": "string", "example": "Europe/Madrid"}
            }
        }
    },
    "securityDefinitions": {
        "SessionAuth": {
            "description": "Type \"Bearer\" followed by a space and the session token. The session cookie is accepted as well.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "CalAssist Calendar Integration API",
	Description:      "Google Calendar connect flow, credential lifecycle and event access for CalAssist users",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
