// Package docs registers the OpenAPI description served at /swagger.
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}}
            }
        },
        "/auth/token": {
            "post": {
                "description": "Exchanges a provisioned device name and secret for a bearer token used by /api/v1.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Issue device token",
                "parameters": [{"description": "Device credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.TokenRequest"}}],
                "responses": {
                    "200": {"description": "token", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/api/sensors": {
            "get": {
                "description": "Ordered ph, tds, temp, then any other sensor id alphabetically.",
                "produces": ["application/json"],
                "tags": ["sensors"],
                "summary": "Current sensor readings",
                "responses": {
                    "200": {"description": "count, sensors", "schema": {"type": "object", "properties": {"count": {"type": "integer"}, "sensors": {"type": "array", "items": {"$ref": "#/definitions/models.LabeledReading"}}}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/api/subscribe": {
            "post": {
                "description": "Adds the normalized (trimmed, lowercased) email to the alert list. Idempotent.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["subscribers"],
                "summary": "Subscribe to alerts",
                "parameters": [{"description": "Email to subscribe", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.SubscribeRequest"}}],
                "responses": {
                    "200": {"description": "already subscribed", "schema": {"type": "object"}},
                    "201": {"description": "message, subscriber", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/api/unsubscribe": {
            "get": {
                "description": "Target of the link in every alert email. Removes all subscribers matching the normalized email.",
                "produces": ["application/json"],
                "tags": ["subscribers"],
                "summary": "Unsubscribe from alerts",
                "parameters": [{"type": "string", "example": "operator@example.com", "description": "Subscribed email", "name": "email", "in": "query", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/api/logs/hourly": {
            "get": {
                "description": "Newest first, each with min/max per sensor (null when the series is empty). If 'to' is date-only, it is treated as end of day.",
                "produces": ["application/json"],
                "tags": ["logs"],
                "summary": "List hourly logs",
                "parameters": [
                    {"type": "string", "example": "2025-08-01", "description": "Start of range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD')", "name": "from", "in": "query"},
                    {"type": "string", "example": "2025-08-31", "description": "End of range. Date-only treated as end of day.", "name": "to", "in": "query"},
                    {"type": "integer", "description": "Max rows (default 100, capped at 1000)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "count, logs", "schema": {"type": "object", "properties": {"count": {"type": "integer"}, "logs": {"type": "array", "items": {"$ref": "#/definitions/models.HourlyLogView"}}}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/api/logs/errors": {
            "get": {
                "description": "Threshold violation records, newest first. Same filters as the hourly logs.",
                "produces": ["application/json"],
                "tags": ["logs"],
                "summary": "List error logs",
                "parameters": [
                    {"type": "string", "example": "2025-08-01", "description": "Start of range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD')", "name": "from", "in": "query"},
                    {"type": "string", "example": "2025-08-31", "description": "End of range. Date-only treated as end of day.", "name": "to", "in": "query"},
                    {"type": "integer", "description": "Max rows (default 100, capped at 1000)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "count, logs", "schema": {"type": "object", "properties": {"count": {"type": "integer"}, "logs": {"type": "array", "items": {"$ref": "#/definitions/models.ThresholdViolation"}}}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/api/v1/readings": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Stores the given values and records a violation when any is out of range.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sensors"],
                "summary": "Write sensor readings",
                "parameters": [{"description": "Any subset of ph, tds, temp", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ReadingsRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.IngestResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/api/v1/refill/distance": {
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Stores the water-level distance in cm. Crossing the threshold alerts subscribers, at most once per cooldown.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sensors"],
                "summary": "Write refill distance",
                "parameters": [{"description": "Distance payload", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.DistanceRequest"}}],
                "responses": {
                    "200": {"description": "status, distance", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/api/v1/error-logs": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Stores a violation record written by the rig and alerts subscribers. errorParameters must be drawn from ph, tds, temp.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["logs"],
                "summary": "Create error log",
                "parameters": [{"description": "Violation record", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.ThresholdViolation"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.ThresholdViolation"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/api/v1/hourly-logs": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["logs"],
                "summary": "Create hourly log",
                "parameters": [{"description": "Hourly samples", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.HourlyLog"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.HourlyLog"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/ws": {
            "get": {
                "description": "WebSocket. Sends {\"type\":\"sensors\",\"data\":[...]} on connect and then every interval.",
                "tags": ["sensors"],
                "summary": "Live sensor readings",
                "parameters": [
                    {"type": "string", "example": "2s", "description": "Push interval as a Go duration, up to 10s", "name": "interval", "in": "query"},
                    {"type": "integer", "description": "Push interval in milliseconds, up to 10000", "name": "interval_ms", "in": "query"}
                ],
                "responses": {"101": {"description": "Switching Protocols"}}
            }
        }
    },
    "definitions": {
        "errorResponse": {"type": "object", "properties": {"error": {"type": "string"}}},
        "handlers.TokenRequest": {"type": "object", "properties": {"device": {"type": "string", "example": "tank-1"}, "secret": {"type": "string", "example": "change-me-too"}}},
        "handlers.SubscribeRequest": {"type": "object", "properties": {"email": {"type": "string", "example": "operator@example.com"}}},
        "handlers.ReadingsRequest": {"type": "object", "properties": {"ph": {"type": "number", "example": 7.2}, "tds": {"type": "number", "example": 320}, "temp": {"type": "number", "example": 27.1}}},
        "handlers.DistanceRequest": {"type": "object", "required": ["distance"], "properties": {"distance": {"type": "number", "example": 15.2}}},
        "models.LabeledReading": {"type": "object", "properties": {"sensorId": {"type": "string"}, "label": {"type": "string"}, "unit": {"type": "string"}, "value": {"type": "number"}}},
        "models.SensorReading": {"type": "object", "properties": {"sensorId": {"type": "string"}, "value": {"type": "number"}}},
        "models.ThresholdViolation": {"type": "object", "properties": {"id": {"type": "string"}, "ph": {"type": "number"}, "tds": {"type": "number"}, "temp": {"type": "number"}, "errorParameters": {"type": "array", "items": {"type": "string", "enum": ["ph", "tds", "temp"]}}, "timestamp": {"type": "string", "example": "2025-03-01 10:30:00"}, "createdAt": {"type": "string"}}},
        "models.Range": {"type": "object", "properties": {"min": {"type": "number"}, "max": {"type": "number"}}},
        "models.HourlyLog": {"type": "object", "properties": {"id": {"type": "string"}, "ph": {"type": "array", "items": {"type": "number"}}, "tds": {"type": "array", "items": {"type": "number"}}, "temp": {"type": "array", "items": {"type": "number"}}, "timestamp": {"type": "string"}, "createdAt": {"type": "string"}}},
        "models.HourlyLogView": {"type": "object", "properties": {"id": {"type": "string"}, "ph": {"type": "array", "items": {"type": "number"}}, "tds": {"type": "array", "items": {"type": "number"}}, "temp": {"type": "array", "items": {"type": "number"}}, "timestamp": {"type": "string"}, "createdAt": {"type": "string"}, "phRange": {"$ref": "#/definitions/models.Range"}, "tdsRange": {"$ref": "#/definitions/models.Range"}, "tempRange": {"$ref": "#/definitions/models.Range"}}},
        "service.IngestResult": {"type": "object", "properties": {"readings": {"type": "array", "items": {"$ref": "#/definitions/models.SensorReading"}}, "violation": {"$ref": "#/definitions/models.ThresholdViolation"}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"description": "Type \"Bearer\" followed by a device token from /auth/token.", "type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "ClariaSense API",
	Description:      "Water-quality readings, logs and alert subscriptions.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
