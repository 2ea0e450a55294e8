// Package docs holds the OpenAPI description served under /swagger.
// Regenerate with: swag init -g cmd/api/main.go -o docs
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
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Create an account", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Exchange credentials for a bearer token", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/subjects": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["subjects"], "summary": "List subjects", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["subjects"], "summary": "Add a subject to the study cycle", "responses": {"201": {"description": "Created"}}}
        },
        "/subjects/cycle": {"get": {"security": [{"BearerAuth": []}], "tags": ["subjects"], "summary": "Current subject of the study cycle", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/subjects/cycle/next": {"post": {"security": [{"BearerAuth": []}], "tags": ["subjects"], "summary": "Advance the study cycle", "responses": {"200": {"description": "OK"}}}},
        "/sessions": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["sessions"], "summary": "List study sessions", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["sessions"], "summary": "Log a study session", "responses": {"201": {"description": "Created"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["sessions"], "summary": "Clear the study history", "responses": {"200": {"description": "OK"}}}
        },
        "/exams": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["exams"], "summary": "List practice exams", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["exams"], "summary": "Log a practice exam", "responses": {"201": {"description": "Created"}}}
        },
        "/settings": {"get": {"security": [{"BearerAuth": []}], "tags": ["settings"], "summary": "Rest days and timezone", "responses": {"200": {"description": "OK"}}}},
        "/streak": {"get": {"security": [{"BearerAuth": []}], "tags": ["streak"], "summary": "Current and best streak", "responses": {"200": {"description": "OK"}}}},
        "/streak/calendar": {"get": {"security": [{"BearerAuth": []}], "tags": ["streak"], "summary": "Classified days of one month", "responses": {"200": {"description": "OK"}}}},
        "/streak/strip": {"get": {"security": [{"BearerAuth": []}], "tags": ["streak"], "summary": "Classified recent days", "responses": {"200": {"description": "OK"}}}},
        "/stats/report": {"get": {"security": [{"BearerAuth": []}], "tags": ["stats"], "summary": "Study report over an inclusive date range", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/achievements": {"get": {"security": [{"BearerAuth": []}], "tags": ["achievements"], "summary": "Achievement catalog with the user's unlock state", "responses": {"200": {"description": "OK"}}}},
        "/timer/start": {"post": {"security": [{"BearerAuth": []}], "tags": ["timer"], "summary": "Start the study timer", "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}},
        "/timer/finish": {"post": {"security": [{"BearerAuth": []}], "tags": ["timer"], "summary": "Stop the timer and log the elapsed time as a session", "responses": {"201": {"description": "Created"}}}},
        "/snapshots": {"post": {"security": [{"BearerAuth": []}], "tags": ["snapshots"], "summary": "Export all study data into a new snapshot", "responses": {"201": {"description": "Created"}}}},
        "/snapshots/{code}/restore": {"post": {"security": [{"BearerAuth": []}], "tags": ["snapshots"], "summary": "Replace the study log with a snapshot", "parameters": [{"type": "string", "name": "code", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Kanso Study Engine API",
	Description:      "Study log, streaks and achievements.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
