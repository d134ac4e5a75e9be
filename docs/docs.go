// Package docs registers the OpenAPI description served under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "email": "support@example.com"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "tags": ["health"],
                "summary": "Show the status of server",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/common.AppError"}}
                }
            }
        },
        "/api/stages": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["withdrawals"],
                "summary": "Approval stages",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.StageTemplate"}}}
                }
            }
        },
        "/api/accounts": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["accounts"],
                "summary": "List my accounts",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Account"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/common.AppError"}}
                }
            }
        },
        "/api/accounts/{accountNumber}/statement": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["accounts"],
                "summary": "Account statement",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "accountNumber", "in": "path", "required": true},
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Statement"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.AppError"}}
                }
            }
        },
        "/api/accounts/{accountNumber}/transactions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["accounts"],
                "summary": "Recent transactions",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "accountNumber", "in": "path", "required": true},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Transaction"}}}
                }
            }
        },
        "/api/accounts/{accountNumber}/withdrawals": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["accounts"],
                "summary": "Withdrawals of an account",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "accountNumber", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Withdrawal"}}}
                }
            }
        },
        "/api/withdrawals": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["withdrawals"],
                "summary": "List withdrawals",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.WithdrawalSummary"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["withdrawals"],
                "summary": "Initiate a withdrawal",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.InitiateWithdrawalRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Withdrawal"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.AppError"}}
                }
            }
        },
        "/api/withdrawals/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["withdrawals"],
                "summary": "Get a withdrawal",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Withdrawal"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.AppError"}}
                }
            }
        },
        "/api/withdrawals/{id}/stages/{n}/verify": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["withdrawals"],
                "summary": "Verify a stage",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "name": "n", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.VerifyStageRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Withdrawal"}},
                    "402": {"description": "Payment Required", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/common.AppError"}}
                }
            }
        },
        "/api/withdrawals/{id}/reject": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["withdrawals"],
                "summary": "Reject a withdrawal",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.RejectWithdrawalRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Withdrawal"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/common.AppError"}}
                }
            }
        },
        "/api/admin/accounts": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin"],
                "summary": "Open an account",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.OpenAccountRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Account"}}
                }
            }
        },
        "/api/admin/accounts/{accountNumber}/credit": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin"],
                "summary": "Credit an account",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "accountNumber", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.LedgerEntryRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Transaction"}}
                }
            }
        },
        "/api/admin/accounts/{accountNumber}/debit": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin"],
                "summary": "Debit an account",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "accountNumber", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.LedgerEntryRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Transaction"}}
                }
            }
        },
        "/api/admin/accounts/{accountNumber}/reconcile": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin"],
                "summary": "Check the ledger invariant",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "accountNumber", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Reconciliation"}}
                }
            }
        },
        "/api/admin/transactions/{id}/reverse": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin"],
                "summary": "Reverse a transaction",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.ReverseTransactionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Transaction"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/common.AppError"}}
                }
            }
        }
    },
    "definitions": {
        "common.AppError": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "kind": {"type": "string"},
                "message": {"type": "string"},
                "retryable": {"type": "boolean"}
            }
        },
        "model.Account": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "userId": {"type": "integer"},
                "accountNumber": {"type": "string"},
                "type": {"type": "string"},
                "currency": {"type": "string"},
                "balance": {"type": "number"},
                "reserved": {"type": "number"},
                "createdAt": {"type": "string"}
            }
        },
        "model.Transaction": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "accountId": {"type": "integer"},
                "direction": {"type": "string"},
                "amount": {"type": "number"},
                "currency": {"type": "string"},
                "description": {"type": "string"},
                "balanceAfter": {"type": "number"},
                "withdrawalId": {"type": "string"},
                "reversalOf": {"type": "string"},
                "createdAt": {"type": "string"}
            }
        },
        "model.Statement": {
            "type": "object",
            "properties": {
                "accountNumber": {"type": "string"},
                "type": {"type": "string"},
                "currency": {"type": "string"},
                "balance": {"type": "number"},
                "reserved": {"type": "number"},
                "available": {"type": "number"},
                "from": {"type": "string"},
                "to": {"type": "string"},
                "transactions": {"type": "array", "items": {"$ref": "#/definitions/model.Transaction"}}
            }
        },
        "model.Reconciliation": {
            "type": "object",
            "properties": {
                "accountNumber": {"type": "string"},
                "balance": {"type": "number"},
                "transactionSum": {"type": "number"},
                "consistent": {"type": "boolean"}
            }
        },
        "model.StageTemplate": {
            "type": "object",
            "properties": {
                "index": {"type": "integer"},
                "name": {"type": "string"},
                "description": {"type": "string"}
            }
        },
        "model.Stage": {
            "type": "object",
            "properties": {
                "index": {"type": "integer"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "verified": {"type": "boolean"},
                "verifiedBy": {"type": "string"},
                "verifiedAt": {"type": "string"},
                "remarks": {"type": "string"}
            }
        },
        "model.Withdrawal": {
            "type": "object",
            "properties": {
                "withdrawalId": {"type": "string"},
                "accountNumber": {"type": "string"},
                "userId": {"type": "integer"},
                "amount": {"type": "number"},
                "currency": {"type": "string"},
                "description": {"type": "string"},
                "status": {"type": "string"},
                "stages": {"type": "array", "items": {"$ref": "#/definitions/model.Stage"}},
                "rejectedBy": {"type": "string"},
                "rejectionReason": {"type": "string"},
                "transactionId": {"type": "string"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"},
                "finalizedAt": {"type": "string"}
            }
        },
        "model.WithdrawalSummary": {
            "type": "object",
            "properties": {
                "withdrawalId": {"type": "string"},
                "accountNumber": {"type": "string"},
                "amount": {"type": "number"},
                "currency": {"type": "string"},
                "status": {"type": "string"},
                "currentStage": {"type": "integer"},
                "createdAt": {"type": "string"}
            }
        },
        "model.InitiateWithdrawalRequest": {
            "type": "object",
            "required": ["accountNumber", "amount", "currency"],
            "properties": {
                "accountNumber": {"type": "string"},
                "amount": {"type": "number"},
                "currency": {"type": "string"},
                "description": {"type": "string"}
            }
        },
        "model.VerifyStageRequest": {
            "type": "object",
            "required": ["verifiedBy"],
            "properties": {
                "verifiedBy": {"type": "string"},
                "remarks": {"type": "string"}
            }
        },
        "model.RejectWithdrawalRequest": {
            "type": "object",
            "required": ["rejectedBy", "reason"],
            "properties": {
                "rejectedBy": {"type": "string"},
                "reason": {"type": "string"}
            }
        },
        "model.LedgerEntryRequest": {
            "type": "object",
            "required": ["amount", "currency", "description"],
            "properties": {
                "amount": {"type": "number"},
                "currency": {"type": "string"},
                "description": {"type": "string"}
            }
        },
        "model.OpenAccountRequest": {
            "type": "object",
            "required": ["userId", "currency"],
            "properties": {
                "userId": {"type": "integer"},
                "type": {"type": "string"},
                "currency": {"type": "string"}
            }
        },
        "model.ReverseTransactionRequest": {
            "type": "object",
            "required": ["reversedBy", "reason"],
            "properties": {
                "reversedBy": {"type": "string"},
                "reason": {"type": "string"}
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

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Secure Bank API",
	Description:      "Mock banking backend with a staged, admin-approved withdrawal workflow.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
