// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with: swag init -g internal/api/router.go -o internal/api/docs
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
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Register a new student",
            "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/registerRequest"}}],
            "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/authResponse"}},
                          "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errorResponse"}},
                          "422": {"description": "Unprocessable", "schema": {"$ref": "#/definitions/errorResponse"}}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Login",
            "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/loginRequest"}}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/authResponse"}},
                          "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorResponse"}},
                          "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/errorResponse"}}}}},
        "/health": {"get": {"tags": ["health"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}},
        "/health/ready": {"get": {"tags": ["health"], "summary": "Readiness probe",
            "responses": {"200": {"description": "OK"}, "503": {"description": "Degraded"}}}},
        "/v1/me": {"get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "The authenticated user",
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/userResponse"}}}}},
        "/v1/books": {"get": {"security": [{"BearerAuth": []}], "tags": ["books"], "summary": "Search the catalog",
            "parameters": [{"type": "string", "name": "q", "in": "query"}, {"type": "string", "name": "category", "in": "query"}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/listBooksResponse"}}}}},
        "/v1/books/categories": {"get": {"security": [{"BearerAuth": []}], "tags": ["books"], "summary": "List catalog categories",
            "responses": {"200": {"description": "OK"}}}},
        "/v1/books/{id}": {"get": {"security": [{"BearerAuth": []}], "tags": ["books"], "summary": "Get a book",
            "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/bookResponse"}},
                          "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResponse"}}}}},
        "/v1/books/{id}/loans": {"post": {"security": [{"BearerAuth": []}], "tags": ["loans"], "summary": "Borrow a book",
            "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true},
                           {"type": "string", "name": "Idempotency-Key", "in": "header"}],
            "responses": {"200": {"description": "Idempotent replay", "schema": {"$ref": "#/definitions/loanResponse"}},
                          "201": {"description": "Created", "schema": {"$ref": "#/definitions/loanResponse"}},
                          "409": {"description": "No copies available, already borrowed, or Idempotency-Key reused", "schema": {"$ref": "#/definitions/errorResponse"}}}}},
        "/v1/loans/mine": {"get": {"security": [{"BearerAuth": []}], "tags": ["loans"], "summary": "The caller's loans",
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/myLoansResponse"}}}}},
        "/v1/loans/{id}": {"get": {"security": [{"BearerAuth": []}], "tags": ["loans"], "summary": "Get a loan",
            "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/loanResponse"}},
                          "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/errorResponse"}}}}},
        "/v1/loans/{id}/return": {"post": {"security": [{"BearerAuth": []}], "tags": ["loans"], "summary": "Return a borrowed book",
            "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/loanResponse"}},
                          "422": {"description": "Loan already returned", "schema": {"$ref": "#/definitions/errorResponse"}}}}},
        "/v1/dashboard": {"get": {"security": [{"BearerAuth": []}], "tags": ["dashboard"], "summary": "Student dashboard",
            "responses": {"200": {"description": "OK"}}}},
        "/v1/admin/books": {"post": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Add a book",
            "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/bookRequest"}}],
            "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/bookResponse"}}}}},
        "/v1/admin/books/{id}": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Edit a book",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true},
                               {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/bookRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/bookResponse"}}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Delete a book",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"},
                              "409": {"description": "Book has active loans", "schema": {"$ref": "#/definitions/errorResponse"}}}}},
        "/v1/admin/books/{id}/availability": {"post": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Shift available copies by one",
            "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true},
                           {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/availabilityRequest"}}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/bookResponse"}}}}},
        "/v1/admin/loans": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "List all loans",
                "parameters": [{"enum": ["all", "active", "returned", "overdue"], "type": "string", "name": "status", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/listLoansResponse"}}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Lend a book to a student",
                "parameters": [{"type": "string", "name": "Idempotency-Key", "in": "header"},
                               {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/adminLoanRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/loanResponse"}}}}},
        "/v1/admin/users": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "List users",
                "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Create a user",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/createUserRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/userResponse"}}}}},
        "/v1/admin/users/{id}": {"delete": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Delete a user",
            "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
            "responses": {"204": {"description": "No Content"},
                          "409": {"description": "User has loans or is the last administrator", "schema": {"$ref": "#/definitions/errorResponse"}}}}},
        "/v1/admin/users/{id}/toggle-role": {"post": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Swap a user between admin and student",
            "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/userResponse"}},
                          "409": {"description": "Last administrator", "schema": {"$ref": "#/definitions/errorResponse"}}}}},
        "/v1/admin/dashboard": {"get": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Library-wide counters",
            "responses": {"200": {"description": "OK"}}}},
        "/v1/admin/logs": {"get": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Most recent action log entries",
            "parameters": [{"type": "integer", "name": "limit", "in": "query"}],
            "responses": {"200": {"description": "OK"}}}}
    },
    "definitions": {
        "errorResponse": {"type": "object", "properties": {"error": {"type": "string"}}},
        "registerRequest": {"type": "object", "required": ["email", "password", "username"],
            "properties": {"username": {"type": "string"}, "email": {"type": "string"}, "password": {"type": "string"},
                           "first_name": {"type": "string"}, "last_name": {"type": "string"}}},
        "loginRequest": {"type": "object", "required": ["password", "username"],
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}},
        "authResponse": {"type": "object",
            "properties": {"token": {"type": "string"}, "user": {"$ref": "#/definitions/userResponse"}}},
        "createUserRequest": {"type": "object", "required": ["email", "password", "username"],
            "properties": {"username": {"type": "string"}, "email": {"type": "string"}, "password": {"type": "string"},
                           "first_name": {"type": "string"}, "last_name": {"type": "string"},
                           "role": {"type": "string", "enum": ["admin", "student"]}}},
        "userResponse": {"type": "object",
            "properties": {"id": {"type": "integer"}, "username": {"type": "string"}, "email": {"type": "string"},
                           "first_name": {"type": "string"}, "last_name": {"type": "string"}, "full_name": {"type": "string"},
                           "role": {"type": "string"}, "active": {"type": "boolean"}, "created_at": {"type": "string"}}},
        "bookRequest": {"type": "object", "required": ["author", "title", "total_copies"],
            "properties": {"title": {"type": "string"}, "author": {"type": "string"}, "isbn": {"type": "string"},
                           "publisher": {"type": "string"}, "publication_year": {"type": "integer"},
                           "category": {"type": "string"}, "description": {"type": "string"},
                           "total_copies": {"type": "integer", "minimum": 0}}},
        "availabilityRequest": {"type": "object", "required": ["delta"],
            "properties": {"delta": {"type": "integer", "enum": [-1, 1]}}},
        "bookResponse": {"type": "object",
            "properties": {"id": {"type": "integer"}, "title": {"type": "string"}, "author": {"type": "string"},
                           "isbn": {"type": "string"}, "publisher": {"type": "string"}, "publication_year": {"type": "integer"},
                           "category": {"type": "string"}, "description": {"type": "string"},
                           "total_copies": {"type": "integer"}, "available_copies": {"type": "integer"},
                           "available": {"type": "boolean"}, "created_at": {"type": "string"}}},
        "listBooksResponse": {"type": "object",
            "properties": {"data": {"type": "array", "items": {"$ref": "#/definitions/bookResponse"}}}},
        "adminLoanRequest": {"type": "object", "required": ["book_id", "student_id"],
            "properties": {"student_id": {"type": "integer"}, "book_id": {"type": "integer"}}},
        "loanResponse": {"type": "object",
            "properties": {"id": {"type": "integer"}, "user_id": {"type": "integer"}, "borrower": {"type": "string"},
                           "book_id": {"type": "integer"}, "book_title": {"type": "string"},
                           "loan_date": {"type": "string"}, "due_date": {"type": "string"}, "return_date": {"type": "string"},
                           "status": {"type": "string", "enum": ["active", "returned"]},
                           "is_overdue": {"type": "boolean"}, "days_remaining": {"type": "integer"}}},
        "listLoansResponse": {"type": "object",
            "properties": {"data": {"type": "array", "items": {"$ref": "#/definitions/loanResponse"}}}},
        "myLoansResponse": {"type": "object",
            "properties": {"active": {"type": "array", "items": {"$ref": "#/definitions/loanResponse"}},
                           "returned": {"type": "array", "items": {"$ref": "#/definitions/loanResponse"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Library API",
	Description:      "Catalog, loans and accounts for the university library.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
