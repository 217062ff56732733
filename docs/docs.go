// Package docs is generated by swag init from the handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "termsOfService": "http://example.com/terms/",
        "contact": {
            "name": "API Support",
            "url": "http://www.example.com/support",
            "email": "support@example.com"
        },
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/admin/key/list": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "List license keys (Admin)",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.RespKeyList"
                        }
                    }
                },
                "parameters": [
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/types.ScanRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/admin/key/get": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Get a license key (Admin)",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.RespKeyDetail"
                        }
                    }
                },
                "parameters": [
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.KeyRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/admin/key/create": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Create a license key (Admin)",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.RespKey"
                        }
                    }
                },
                "parameters": [
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.CreateKeyRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/admin/key/update": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Update a license key (Admin)",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.RespKey"
                        }
                    }
                },
                "parameters": [
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.UpdateKeyRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/admin/key/extend": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Extend a license key (Admin)",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.RespKey"
                        }
                    }
                },
                "parameters": [
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.KeyRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/admin/key/renew": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Renew a license key (Admin)",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.RespRenewal"
                        }
                    }
                },
                "parameters": [
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.RenewKeyRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/admin/key/expire": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Expire a license key (Admin)",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.RespKey"
                        }
                    }
                },
                "parameters": [
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.ExpireKeyRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/admin/key/delete": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Delete a license key (Admin)",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.RespOK"
                        }
                    }
                },
                "parameters": [
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.KeyRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/admin/activation/list": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "List activations (Admin)",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.RespActivationList"
                        }
                    }
                },
                "parameters": [
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/types.ScanRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/admin/activation/get": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Get an activation (Admin)",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.RespActivationDetail"
                        }
                    }
                },
                "parameters": [
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.ActivationRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/admin/activation/create": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Activate a location (Admin)",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.RespActivation"
                        }
                    }
                },
                "parameters": [
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.CreateActivationRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/admin/activation/deactivate": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Deactivate an activation (Admin)",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.RespActivation"
                        }
                    }
                },
                "parameters": [
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.ActivationRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/admin/activation/disable": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Disable an activation (Admin)",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.RespActivation"
                        }
                    }
                },
                "parameters": [
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.ActivationRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/admin/activation/track": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Change an activation's release track (Admin)",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.RespActivation"
                        }
                    }
                },
                "parameters": [
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.SetTrackRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/admin/activation/delete": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Delete an activation (Admin)",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.RespOK"
                        }
                    }
                },
                "parameters": [
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.ActivationRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/admin/billing/log/list": {
            "post": {
                "description": "Received and outcome rows of billing events. Filter by provider_id, external_id, event_type, customer_id, trace_id, status, occurred_at, created_at.",
                "tags": [
                    "Admin"
                ],
                "summary": "List billing event logs (Admin)",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Scan",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/types.ScanRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.RespBillingLogList"
                        }
                    }
                }
            }
        },
        "/api/v1/admin/release/list": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "List releases (Admin)",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.RespReleaseList"
                        }
                    }
                },
                "parameters": [
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/types.ScanRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/admin/release/get": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Get a release (Admin)",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.RespReleaseDetail"
                        }
                    }
                },
                "parameters": [
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.ReleaseRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/admin/release/create": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Create a release (Admin)",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.RespRelease"
                        }
                    }
                },
                "parameters": [
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/release.CreateRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/admin/release/activate": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Activate a release (Admin)",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.RespRelease"
                        }
                    }
                },
                "parameters": [
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.ReleaseRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/admin/release/pause": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Pause a release (Admin)",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.RespRelease"
                        }
                    }
                },
                "parameters": [
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.ReleaseRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/admin/release/archive": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Archive a release (Admin)",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.RespRelease"
                        }
                    }
                },
                "parameters": [
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.ReleaseRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/admin/release/update": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Edit a release (Admin)",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.RespRelease"
                        }
                    }
                },
                "parameters": [
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.UpdateReleaseRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/admin/release/delete": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Delete a release (Admin)",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.RespOK"
                        }
                    }
                },
                "parameters": [
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.ReleaseRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/admin/release/changelog": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Product changelog (Admin)",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.RespChangelog"
                        }
                    }
                },
                "parameters": [
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.ChangelogRequest"
                        }
                    }
                ]
            }
        },
        "/api/v1/admin/product/list": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "List products (Admin)",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.RespProductList"
                        }
                    }
                }
            }
        },
        "/api/v1/admin/statistics": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Get statistics (Admin)",
                "description": "Daily key, activation, renewal, upgrade and revenue series plus active totals. Filters: product_id, date (YYYY-MM-DD).",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Statistic request parameters",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/statistics.StatisticRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.RespStatistics"
                        }
                    }
                }
            }
        },
        "/api/v1/billing/events": {
            "post": {
                "tags": [
                    "Webhook"
                ],
                "summary": "Billing event",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.RespBilling"
                        }
                    }
                },
                "parameters": [
                    {
                        "description": "Request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/notification_handler.Event"
                        }
                    }
                ]
            }
        },
        "/healthz": {
            "get": {
                "tags": [
                    "System"
                ],
                "summary": "Health check",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/license-api/{action}": {
            "post": {
                "tags": [
                    "License API"
                ],
                "summary": "License API dispatch",
                "description": "Runs the named action (activate, deactivate, info, version, download). Credentials are the license key as the Basic auth username and the activation id as the password.",
                "consumes": [
                    "application/x-www-form-urlencoded"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "name": "action",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handlers.RespOK"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/handlers.RespOK"
                        }
                    },
                    "404": {
                        "description": "Unknown action",
                        "schema": {
                            "$ref": "#/definitions/handlers.RespOK"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "response.APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "integer"
                },
                "message": {
                    "type": "string"
                }
            }
        },
        "types.CommonFilter": {
            "type": "object",
            "properties": {
                "field": {
                    "type": "string"
                },
                "operator": {
                    "type": "string"
                },
                "values": {
                    "type": "array",
                    "items": {}
                },
                "filters": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/types.CommonFilter"
                    }
                }
            }
        },
        "types.ScanRequest": {
            "type": "object",
            "properties": {
                "filters": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/types.CommonFilter"
                    }
                },
                "from": {
                    "type": "integer"
                },
                "size": {
                    "type": "integer"
                },
                "sort_by": {
                    "type": "string"
                },
                "sort_order": {
                    "type": "string"
                }
            }
        },
        "models.Key": {
            "type": "object",
            "properties": {
                "key": {
                    "type": "string"
                },
                "transaction_id": {
                    "type": "string"
                },
                "product_id": {
                    "type": "string"
                },
                "customer_id": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                },
                "max": {
                    "type": "integer"
                },
                "expires_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "updated_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "models.Activation": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "key": {
                    "type": "string"
                },
                "location": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                },
                "activated_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "deactivated_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "release_id": {
                    "type": "string"
                },
                "track": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "updated_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "models.Release": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "product_id": {
                    "type": "string"
                },
                "download": {
                    "type": "string"
                },
                "version": {
                    "type": "string"
                },
                "type": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                },
                "changelog": {
                    "type": "string"
                },
                "start_date": {
                    "type": "string",
                    "format": "date-time"
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "updated_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "models.Renewal": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "key": {
                    "type": "string"
                },
                "transaction_id": {
                    "type": "string"
                },
                "prior_expiration": {
                    "type": "string",
                    "format": "date-time"
                },
                "new_expiration": {
                    "type": "string",
                    "format": "date-time"
                },
                "renewed_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "models.KeyLog": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "key": {
                    "type": "string"
                },
                "reason": {
                    "type": "string"
                },
                "before": {
                    "$ref": "#/definitions/models.Key"
                },
                "after": {
                    "$ref": "#/definitions/models.Key"
                },
                "extra": {
                    "type": "object"
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "models.Upgrade": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "activation_id": {
                    "type": "string"
                },
                "release_id": {
                    "type": "string"
                },
                "previous_version": {
                    "type": "string"
                },
                "upgraded_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "models.Product": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "recurring_unit": {
                    "type": "string"
                },
                "recurring_count": {
                    "type": "integer"
                },
                "activation_limit": {
                    "type": "integer"
                },
                "online_software": {
                    "type": "boolean"
                },
                "base_price": {
                    "type": "integer"
                },
                "current_version": {
                    "type": "string"
                },
                "current_download": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "updated_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "release.Progress": {
            "type": "object",
            "properties": {
                "updated": {
                    "type": "integer"
                },
                "total": {
                    "type": "integer"
                },
                "percent": {
                    "type": "number"
                }
            }
        },
        "release.CreateRequest": {
            "type": "object",
            "properties": {
                "product_id": {
                    "type": "string"
                },
                "download": {
                    "type": "string"
                },
                "version": {
                    "type": "string"
                },
                "type": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                },
                "changelog": {
                    "type": "string"
                }
            },
            "required": [
                "product_id",
                "download",
                "version",
                "type"
            ]
        },
        "handlers.KeyRequest": {
            "type": "object",
            "properties": {
                "key": {
                    "type": "string"
                }
            },
            "required": [
                "key"
            ]
        },
        "handlers.CreateKeyRequest": {
            "type": "object",
            "properties": {
                "key": {
                    "type": "string"
                },
                "transaction_id": {
                    "type": "string"
                },
                "product_id": {
                    "type": "string"
                },
                "customer_id": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                },
                "max": {
                    "type": "integer"
                },
                "expires_at": {
                    "type": "string",
                    "format": "date-time"
                }
            },
            "required": [
                "transaction_id",
                "product_id",
                "customer_id"
            ]
        },
        "handlers.UpdateKeyRequest": {
            "type": "object",
            "properties": {
                "key": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                },
                "max": {
                    "type": "integer"
                },
                "expires_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "clear_expires": {
                    "type": "boolean"
                }
            },
            "required": [
                "key"
            ]
        },
        "handlers.RenewKeyRequest": {
            "type": "object",
            "properties": {
                "key": {
                    "type": "string"
                },
                "transaction_id": {
                    "type": "string"
                }
            },
            "required": [
                "key"
            ]
        },
        "handlers.ExpireKeyRequest": {
            "type": "object",
            "properties": {
                "key": {
                    "type": "string"
                },
                "when": {
                    "type": "string",
                    "format": "date-time"
                }
            },
            "required": [
                "key"
            ]
        },
        "handlers.ActivationRequest": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                }
            },
            "required": [
                "id"
            ]
        },
        "handlers.CreateActivationRequest": {
            "type": "object",
            "properties": {
                "key": {
                    "type": "string"
                },
                "location": {
                    "type": "string"
                },
                "track": {
                    "type": "string"
                },
                "release_id": {
                    "type": "string"
                }
            },
            "required": [
                "key",
                "location"
            ]
        },
        "handlers.SetTrackRequest": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "track": {
                    "type": "string"
                }
            },
            "required": [
                "id",
                "track"
            ]
        },
        "handlers.ReleaseRequest": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                }
            },
            "required": [
                "id"
            ]
        },
        "handlers.UpdateReleaseRequest": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "version": {
                    "type": "string"
                },
                "download": {
                    "type": "string"
                },
                "type": {
                    "type": "string"
                },
                "changelog": {
                    "type": "string"
                },
                "changelog_mode": {
                    "type": "string"
                }
            },
            "required": [
                "id"
            ]
        },
        "handlers.ChangelogRequest": {
            "type": "object",
            "properties": {
                "product_id": {
                    "type": "string"
                },
                "n": {
                    "type": "integer"
                }
            },
            "required": [
                "product_id"
            ]
        },
        "notification_handler.Event": {
            "type": "object",
            "properties": {
                "type": {
                    "type": "string"
                },
                "provider": {
                    "type": "string"
                },
                "external_id": {
                    "type": "string"
                },
                "parent_external_id": {
                    "type": "string"
                },
                "customer_id": {
                    "type": "string"
                },
                "product_id": {
                    "type": "string"
                },
                "currency": {
                    "type": "string"
                },
                "price": {
                    "type": "integer"
                },
                "amount": {
                    "type": "integer"
                },
                "reason": {
                    "type": "string"
                },
                "subscription_status": {
                    "type": "string"
                },
                "next_renew_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "expire_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "occurred_at": {
                    "type": "string",
                    "format": "date-time"
                }
            },
            "required": [
                "type",
                "provider",
                "external_id"
            ]
        },
        "notification_handler.Result": {
            "type": "object",
            "properties": {
                "transaction_id": {
                    "type": "string"
                },
                "key": {
                    "type": "string"
                },
                "renewal_id": {
                    "type": "string"
                },
                "created": {
                    "type": "boolean"
                }
            }
        },
        "handlers.KeyDetail": {
            "type": "object",
            "properties": {
                "key": {
                    "$ref": "#/definitions/models.Key"
                },
                "active_count": {
                    "type": "integer"
                },
                "activations": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.Activation"
                    }
                },
                "renewals": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.Renewal"
                    }
                },
                "logs": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.KeyLog"
                    }
                }
            }
        },
        "handlers.ActivationDetail": {
            "type": "object",
            "properties": {
                "activation": {
                    "$ref": "#/definitions/models.Activation"
                },
                "upgrades": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.Upgrade"
                    }
                }
            }
        },
        "handlers.ReleaseDetail": {
            "type": "object",
            "properties": {
                "release": {
                    "$ref": "#/definitions/models.Release"
                },
                "progress": {
                    "$ref": "#/definitions/release.Progress"
                }
            }
        },
        "handlers.RespOK": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "error": {
                    "$ref": "#/definitions/response.APIError"
                },
                "data": {}
            }
        },
        "handlers.RespKey": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "error": {
                    "$ref": "#/definitions/response.APIError"
                },
                "data": {
                    "$ref": "#/definitions/models.Key"
                }
            }
        },
        "handlers.RespKeyList": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "error": {
                    "$ref": "#/definitions/response.APIError"
                },
                "data": {
                    "type": "object",
                    "properties": {
                        "items": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/models.Key"
                            }
                        },
                        "total": {
                            "type": "integer"
                        }
                    }
                }
            }
        },
        "handlers.RespKeyDetail": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "error": {
                    "$ref": "#/definitions/response.APIError"
                },
                "data": {
                    "$ref": "#/definitions/handlers.KeyDetail"
                }
            }
        },
        "handlers.RespRenewal": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "error": {
                    "$ref": "#/definitions/response.APIError"
                },
                "data": {
                    "$ref": "#/definitions/models.Renewal"
                }
            }
        },
        "handlers.RespActivation": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "error": {
                    "$ref": "#/definitions/response.APIError"
                },
                "data": {
                    "$ref": "#/definitions/models.Activation"
                }
            }
        },
        "handlers.RespActivationList": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "error": {
                    "$ref": "#/definitions/response.APIError"
                },
                "data": {
                    "type": "object",
                    "properties": {
                        "items": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/models.Activation"
                            }
                        },
                        "total": {
                            "type": "integer"
                        }
                    }
                }
            }
        },
        "handlers.RespActivationDetail": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "error": {
                    "$ref": "#/definitions/response.APIError"
                },
                "data": {
                    "$ref": "#/definitions/handlers.ActivationDetail"
                }
            }
        },
        "handlers.RespRelease": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "error": {
                    "$ref": "#/definitions/response.APIError"
                },
                "data": {
                    "$ref": "#/definitions/models.Release"
                }
            }
        },
        "handlers.RespBillingLogList": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "error": {
                    "$ref": "#/definitions/response.APIError"
                },
                "data": {
                    "type": "object",
                    "properties": {
                        "items": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/models.PaymentNotificationLog"
                            }
                        },
                        "total": {
                            "type": "integer"
                        }
                    }
                }
            }
        },
        "models.PaymentNotificationLog": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "provider_id": {
                    "type": "string"
                },
                "external_id": {
                    "type": "string"
                },
                "event_type": {
                    "type": "string"
                },
                "customer_id": {
                    "type": "string"
                },
                "trace_id": {
                    "type": "string"
                },
                "occurred_at": {
                    "type": "string"
                },
                "data": {
                    "type": "object"
                },
                "result": {
                    "type": "object"
                },
                "status": {
                    "type": "string",
                    "enum": [
                        "received",
                        "handled",
                        "handle_failed"
                    ]
                },
                "created_at": {
                    "type": "string"
                },
                "updated_at": {
                    "type": "string"
                }
            }
        },
        "handlers.RespReleaseList": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "error": {
                    "$ref": "#/definitions/response.APIError"
                },
                "data": {
                    "type": "object",
                    "properties": {
                        "items": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/models.Release"
                            }
                        },
                        "total": {
                            "type": "integer"
                        }
                    }
                }
            }
        },
        "handlers.RespReleaseDetail": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "error": {
                    "$ref": "#/definitions/response.APIError"
                },
                "data": {
                    "$ref": "#/definitions/handlers.ReleaseDetail"
                }
            }
        },
        "handlers.RespChangelog": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "error": {
                    "$ref": "#/definitions/response.APIError"
                },
                "data": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "string"
                    }
                }
            }
        },
        "handlers.RespProductList": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "error": {
                    "$ref": "#/definitions/response.APIError"
                },
                "data": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.Product"
                    }
                }
            }
        },
        "handlers.RespBilling": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "error": {
                    "$ref": "#/definitions/response.APIError"
                },
                "data": {
                    "$ref": "#/definitions/notification_handler.Result"
                }
            }
        },
        "handlers.RespStatistics": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "error": {
                    "$ref": "#/definitions/response.APIError"
                },
                "data": {
                    "$ref": "#/definitions/statistics.StatisticResponse"
                }
            }
        },
        "statistics.StatisticRequest": {
            "type": "object",
            "required": [
                "data_items"
            ],
            "properties": {
                "filters": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/types.CommonFilter"
                    }
                },
                "data_items": {
                    "type": "array",
                    "minItems": 1,
                    "items": {
                        "$ref": "#/definitions/statistics.StatisticDataItem"
                    }
                }
            }
        },
        "statistics.StatisticDataItem": {
            "type": "object",
            "required": [
                "id"
            ],
            "properties": {
                "id": {
                    "type": "string",
                    "enum": [
                        "daily_keys_issued",
                        "daily_activations",
                        "daily_renewals",
                        "daily_upgrades",
                        "daily_transaction_count",
                        "daily_revenue",
                        "total_active_keys",
                        "total_active_activations"
                    ]
                }
            }
        },
        "statistics.StatisticDataPoint": {
            "type": "object",
            "properties": {
                "date": {
                    "type": "string"
                },
                "label": {
                    "type": "string"
                },
                "value": {
                    "type": "integer"
                }
            }
        },
        "statistics.StatisticResponse": {
            "type": "object",
            "properties": {
                "data_items": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "array",
                        "items": {
                            "$ref": "#/definitions/statistics.StatisticDataPoint"
                        }
                    }
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8888",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Licensing API",
	Description:      "Software license keys, activations, releases and the license API.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
