// Package docs registers the OpenAPI document served under /swagger.
//
// The document is kept in step with the swag annotations in
// internal/server by hand; `go generate ./internal/server` rebuilds it with
// swag.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "repview maintainers",
            "url": "https://github.com/raysh454/repview"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/checks": {
            "get": {
                "produces": ["application/json"],
                "tags": ["checks"],
                "summary": "Recent update checks",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/watcher.Result"}}}
                }
            }
        },
        "/api/groups": {
            "get": {
                "produces": ["application/json"],
                "tags": ["schedule"],
                "summary": "Groups with replacements",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.GroupsResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/api/groups/{group}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["schedule"],
                "summary": "Replacements for a group",
                "parameters": [
                    {"type": "string", "description": "Group number", "name": "group", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.GroupResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/api/refresh": {
            "post": {
                "description": "Fetches the content, re-renders the page and stores a snapshot when the schedule changed.",
                "produces": ["application/json"],
                "tags": ["checks"],
                "summary": "Check for updates now",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/watcher.Result"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/watcher.Result"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/api/schedule": {
            "get": {
                "produces": ["application/json"],
                "tags": ["schedule"],
                "summary": "Latest schedule",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/replacements.Schedule"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/api/snapshots": {
            "get": {
                "produces": ["application/json"],
                "tags": ["snapshots"],
                "summary": "Stored snapshots, newest first",
                "parameters": [
                    {"type": "integer", "default": 50, "description": "Maximum number of snapshots", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/server.SnapshotSummary"}}}
                }
            }
        },
        "/api/snapshots/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["snapshots"],
                "summary": "A stored snapshot",
                "parameters": [
                    {"type": "string", "description": "Snapshot ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/store.Snapshot"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/api/snapshots/{id}/diff": {
            "get": {
                "description": "Compares the snapshot with base, or with the one stored before it when base is omitted.",
                "produces": ["application/json"],
                "tags": ["snapshots"],
                "summary": "Text diff of a snapshot",
                "parameters": [
                    {"type": "string", "description": "Snapshot ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Base snapshot ID", "name": "base", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/store.Diff"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/api/teachers": {
            "get": {
                "produces": ["application/json"],
                "tags": ["schedule"],
                "summary": "Teachers with replacements",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.TeachersResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/api/teachers/{teacher}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["schedule"],
                "summary": "Replacements for a teacher",
                "parameters": [
                    {"type": "string", "description": "Teacher name", "name": "teacher", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.TeacherResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "replacements.Replacement": {
            "type": "object",
            "properties": {
                "pair": {"type": "string"},
                "original_subject": {"type": "string"},
                "teacher": {"type": "string"},
                "new_subject": {"type": "string"},
                "classroom": {"type": "string"}
            }
        },
        "replacements.Schedule": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "raw_date": {"type": "string"},
                "groups": {
                    "type": "object",
                    "additionalProperties": {"type": "array", "items": {"$ref": "#/definitions/replacements.Replacement"}}
                }
            }
        },
        "server.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string", "example": "not found"}}
        },
        "server.GroupResponse": {
            "type": "object",
            "properties": {
                "group": {"type": "string", "example": "101"},
                "pairs": {"type": "array", "items": {"$ref": "#/definitions/server.PairResponse"}},
                "text": {"type": "string"}
            }
        },
        "server.GroupsResponse": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "example": "2024-10-14"},
                "raw_date": {"type": "string"},
                "groups": {"type": "array", "items": {"type": "string"}}
            }
        },
        "server.PairResponse": {
            "type": "object",
            "properties": {
                "pair": {"type": "integer", "example": 1},
                "group": {"type": "string", "example": "101"},
                "replacement": {"$ref": "#/definitions/replacements.Replacement"}
            }
        },
        "server.SnapshotSummary": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "fetched_at": {"type": "string"},
                "checksum": {"type": "string"},
                "date": {"type": "string"},
                "groups": {"type": "integer", "example": 12}
            }
        },
        "server.TeacherResponse": {
            "type": "object",
            "properties": {
                "teacher": {"type": "string"},
                "pairs": {"type": "array", "items": {"$ref": "#/definitions/server.PairResponse"}},
                "text": {"type": "string"}
            }
        },
        "server.TeachersResponse": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "raw_date": {"type": "string"},
                "teachers": {"type": "array", "items": {"type": "string"}}
            }
        },
        "store.Chunk": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "example": "added"},
                "content": {"type": "string"}
            }
        },
        "store.Diff": {
            "type": "object",
            "properties": {
                "base_id": {"type": "string"},
                "head_id": {"type": "string"},
                "chunks": {"type": "array", "items": {"$ref": "#/definitions/store.Chunk"}}
            }
        },
        "store.Snapshot": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "fetched_at": {"type": "string"},
                "checksum": {"type": "string"},
                "body": {"type": "string"},
                "schedule": {"$ref": "#/definitions/replacements.Schedule"}
            }
        },
        "watcher.Result": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "trigger": {"type": "string", "example": "manual"},
                "status": {"type": "string", "example": "changed"},
                "reason": {"type": "string", "example": "ok"},
                "error": {"type": "string"},
                "started_at": {"type": "string"},
                "ended_at": {"type": "string"},
                "snapshot": {"$ref": "#/definitions/store.Snapshot"},
                "chunks": {"type": "array", "items": {"$ref": "#/definitions/store.Chunk"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "repview API",
	Description:      "Replacement schedule fetched from the college site, with stored snapshots and update checks.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
