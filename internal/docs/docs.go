// Package docs registers the Swagger specification for the Ledgerly API.
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
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Log in",
                "responses": {
                    "200": {"description": "Tokens"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register a user",
                "responses": {
                    "201": {"description": "User created"},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["auth"],
                "summary": "Refresh the access token",
                "responses": {
                    "200": {"description": "New token pair"},
                    "401": {"description": "Invalid refresh token"}
                }
            }
        },
        "/profile": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["auth"],
                "summary": "Get the current user's profile",
                "responses": {"200": {"description": "User profile"}}
            }
        },
        "/budgets": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["budgets"],
                "summary": "Get budgets",
                "responses": {"200": {"description": "Paginated budgets"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["budgets"],
                "summary": "Create a budget",
                "responses": {"201": {"description": "Budget created"}}
            }
        },
        "/budgets/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["budgets"],
                "summary": "Get a budget by ID",
                "responses": {
                    "200": {"description": "Budget"},
                    "404": {"description": "Budget not found"}
                }
            }
        },
        "/budget-history/rollover": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["budget-history"],
                "summary": "Roll over a budget",
                "responses": {
                    "200": {"description": "Rollover result"},
                    "409": {"description": "Budget already rolled over"}
                }
            }
        },
        "/budget-history/analytics": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["budget-history"],
                "summary": "Budget history analytics",
                "responses": {"200": {"description": "Utilization report"}}
            }
        },
        "/transactions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["transactions"],
                "summary": "Get transactions",
                "responses": {"200": {"description": "Paginated transactions"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["transactions"],
                "summary": "Record a transaction",
                "responses": {"201": {"description": "Transaction created"}}
            }
        },
        "/transactions/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["transactions"],
                "summary": "Get a transaction by ID",
                "responses": {
                    "200": {"description": "Transaction"},
                    "404": {"description": "Transaction not found"}
                }
            }
        },
        "/transactions/insights": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["transactions"],
                "summary": "Get spending insights",
                "responses": {"200": {"description": "Insights"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Ledgerly API",
	Description:      "Ledgerly is a personal finance tracker with budget lifecycle management and spending insights.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
