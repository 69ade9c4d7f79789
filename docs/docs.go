// Package docs holds the OpenAPI document served at /swagger/.
// Regenerate with: swag init -g cmd/server/main.go --v3.1
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "openapi": "3.1.0",
    "info": {
        "contact": {},
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "servers": [
        {
            "url": "{{.BasePath}}"
        }
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": [
                    "system"
                ],
                "summary": "Liveness and database reachability",
                "responses": {
                    "200": {
                        "description": "OK",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    },
                    "default": {
                        "description": "Error",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    }
                }
            }
        },
        "/receivables/customers/{id}": {
            "get": {
                "tags": [
                    "customers"
                ],
                "summary": "Get a customer with its current balance",
                "parameters": [
                    {
                        "description": "Customer ID",
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "schema": {
                            "type": "string",
                            "format": "uuid"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    },
                    "default": {
                        "description": "Error",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/receivables/customers/{id}/recompute-balance": {
            "post": {
                "tags": [
                    "customers"
                ],
                "summary": "Rebuild a customer's balance from its open documents",
                "parameters": [
                    {
                        "description": "Customer ID",
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "schema": {
                            "type": "string",
                            "format": "uuid"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    },
                    "default": {
                        "description": "Error",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/receivables/debt-documents/import": {
            "post": {
                "tags": [
                    "debt-documents"
                ],
                "summary": "Commit a batch of already parsed invoices and advances",
                "parameters": [
                    {
                        "description": "Replay protection key",
                        "in": "header",
                        "name": "Idempotency-Key",
                        "schema": {
                            "type": "string"
                        }
                    }
                ],
                "requestBody": {
                    "content": {
                        "application/json": {
                            "schema": {
                                "$ref": "#/components/schemas/dto.ImportDebtDocumentsRequest"
                            }
                        }
                    },
                    "required": true
                },
                "responses": {
                    "200": {
                        "description": "OK",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    },
                    "default": {
                        "description": "Error",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/receivables/open-items": {
            "get": {
                "tags": [
                    "receipts"
                ],
                "summary": "List the open debt documents of a customer",
                "parameters": [
                    {
                        "description": "Seller tax code",
                        "in": "query",
                        "name": "seller_tax_code",
                        "required": true,
                        "schema": {
                            "type": "string"
                        }
                    },
                    {
                        "description": "Customer tax code",
                        "in": "query",
                        "name": "customer_tax_code",
                        "required": true,
                        "schema": {
                            "type": "string"
                        }
                    },
                    {
                        "description": "ISSUE_DATE or DUE_DATE",
                        "in": "query",
                        "name": "priority",
                        "required": false,
                        "schema": {
                            "type": "string",
                            "enum": [
                                "ISSUE_DATE",
                                "DUE_DATE"
                            ]
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    },
                    "default": {
                        "description": "Error",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/receivables/period-locks": {
            "get": {
                "tags": [
                    "period-locks"
                ],
                "summary": "List period locks",
                "responses": {
                    "200": {
                        "description": "OK",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    },
                    "default": {
                        "description": "Error",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "post": {
                "tags": [
                    "period-locks"
                ],
                "summary": "Lock a month",
                "requestBody": {
                    "content": {
                        "application/json": {
                            "schema": {
                                "$ref": "#/components/schemas/dto.LockPeriodRequest"
                            }
                        }
                    },
                    "required": true
                },
                "responses": {
                    "201": {
                        "description": "Created",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    },
                    "default": {
                        "description": "Error",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/receivables/period-locks/{id}": {
            "delete": {
                "tags": [
                    "period-locks"
                ],
                "summary": "Remove a period lock",
                "parameters": [
                    {
                        "description": "Lock ID",
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "schema": {
                            "type": "string",
                            "format": "uuid"
                        }
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "default": {
                        "description": "Error",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/receivables/receipts": {
            "get": {
                "tags": [
                    "receipts"
                ],
                "summary": "List receipts",
                "parameters": [
                    {
                        "description": "Seller tax code",
                        "in": "query",
                        "name": "seller_tax_code",
                        "required": false,
                        "schema": {
                            "type": "string"
                        }
                    },
                    {
                        "description": "Customer tax code",
                        "in": "query",
                        "name": "customer_tax_code",
                        "required": false,
                        "schema": {
                            "type": "string"
                        }
                    },
                    {
                        "description": "DRAFT, APPROVED or VOID",
                        "in": "query",
                        "name": "status",
                        "required": false,
                        "schema": {
                            "type": "string"
                        }
                    },
                    {
                        "description": "Allocation status",
                        "in": "query",
                        "name": "allocation_status",
                        "required": false,
                        "schema": {
                            "type": "string"
                        }
                    },
                    {
                        "description": "Receipt date lower bound (YYYY-MM-DD)",
                        "in": "query",
                        "name": "from_date",
                        "required": false,
                        "schema": {
                            "type": "string"
                        }
                    },
                    {
                        "description": "Receipt date upper bound (YYYY-MM-DD)",
                        "in": "query",
                        "name": "to_date",
                        "required": false,
                        "schema": {
                            "type": "string"
                        }
                    },
                    {
                        "description": "Page number",
                        "in": "query",
                        "name": "page",
                        "required": false,
                        "schema": {
                            "type": "integer",
                            "default": 1
                        }
                    },
                    {
                        "description": "Items per page",
                        "in": "query",
                        "name": "page_size",
                        "required": false,
                        "schema": {
                            "type": "integer",
                            "default": 20,
                            "maximum": 100
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    },
                    "default": {
                        "description": "Error",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "post": {
                "tags": [
                    "receipts"
                ],
                "summary": "Create a draft receipt",
                "parameters": [
                    {
                        "description": "Replay protection key",
                        "in": "header",
                        "name": "Idempotency-Key",
                        "schema": {
                            "type": "string"
                        }
                    }
                ],
                "requestBody": {
                    "content": {
                        "application/json": {
                            "schema": {
                                "$ref": "#/components/schemas/dto.CreateReceiptRequest"
                            }
                        }
                    },
                    "required": true
                },
                "responses": {
                    "201": {
                        "description": "Created",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    },
                    "default": {
                        "description": "Error",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/receivables/receipts/approve-bulk": {
            "post": {
                "tags": [
                    "receipts"
                ],
                "summary": "Approve several receipts",
                "parameters": [
                    {
                        "description": "Replay protection key",
                        "in": "header",
                        "name": "Idempotency-Key",
                        "schema": {
                            "type": "string"
                        }
                    }
                ],
                "requestBody": {
                    "content": {
                        "application/json": {
                            "schema": {
                                "$ref": "#/components/schemas/dto.BulkApproveRequest"
                            }
                        }
                    },
                    "required": true
                },
                "responses": {
                    "200": {
                        "description": "OK",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    },
                    "default": {
                        "description": "Error",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/receivables/receipts/preview": {
            "post": {
                "tags": [
                    "receipts"
                ],
                "summary": "Dry-run an allocation",
                "requestBody": {
                    "content": {
                        "application/json": {
                            "schema": {
                                "$ref": "#/components/schemas/dto.PreviewRequest"
                            }
                        }
                    },
                    "required": true
                },
                "responses": {
                    "200": {
                        "description": "OK",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    },
                    "default": {
                        "description": "Error",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/receivables/receipts/{id}": {
            "get": {
                "tags": [
                    "receipts"
                ],
                "summary": "Get a receipt",
                "parameters": [
                    {
                        "description": "Receipt ID",
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "schema": {
                            "type": "string",
                            "format": "uuid"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    },
                    "default": {
                        "description": "Error",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/receivables/receipts/{id}/allocations": {
            "get": {
                "tags": [
                    "receipts"
                ],
                "summary": "List the allocation rows of a receipt",
                "parameters": [
                    {
                        "description": "Receipt ID",
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "schema": {
                            "type": "string",
                            "format": "uuid"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    },
                    "default": {
                        "description": "Error",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/receivables/receipts/{id}/approve": {
            "post": {
                "tags": [
                    "receipts"
                ],
                "summary": "Approve a draft receipt",
                "parameters": [
                    {
                        "description": "Receipt ID",
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "schema": {
                            "type": "string",
                            "format": "uuid"
                        }
                    },
                    {
                        "description": "Replay protection key",
                        "in": "header",
                        "name": "Idempotency-Key",
                        "schema": {
                            "type": "string"
                        }
                    }
                ],
                "requestBody": {
                    "content": {
                        "application/json": {
                            "schema": {
                                "$ref": "#/components/schemas/dto.ApproveReceiptRequest"
                            }
                        }
                    },
                    "required": true
                },
                "responses": {
                    "200": {
                        "description": "OK",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    },
                    "default": {
                        "description": "Error",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/receivables/receipts/{id}/unvoid": {
            "post": {
                "tags": [
                    "receipts"
                ],
                "summary": "Restore a voided receipt to draft",
                "parameters": [
                    {
                        "description": "Receipt ID",
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "schema": {
                            "type": "string",
                            "format": "uuid"
                        }
                    }
                ],
                "requestBody": {
                    "content": {
                        "application/json": {
                            "schema": {
                                "$ref": "#/components/schemas/dto.UnvoidRequest"
                            }
                        }
                    },
                    "required": true
                },
                "responses": {
                    "200": {
                        "description": "OK",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    },
                    "default": {
                        "description": "Error",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/receivables/receipts/{id}/void": {
            "post": {
                "tags": [
                    "receipts"
                ],
                "summary": "Void a receipt and reverse its allocations",
                "parameters": [
                    {
                        "description": "Receipt ID",
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "schema": {
                            "type": "string",
                            "format": "uuid"
                        }
                    }
                ],
                "requestBody": {
                    "content": {
                        "application/json": {
                            "schema": {
                                "$ref": "#/components/schemas/dto.VoidRequest"
                            }
                        }
                    },
                    "required": true
                },
                "responses": {
                    "200": {
                        "description": "OK",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    },
                    "default": {
                        "description": "Error",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/receivables/suggestions/scan": {
            "post": {
                "tags": [
                    "suggestions"
                ],
                "summary": "Suggest FIFO allocations for unallocated draft receipts",
                "requestBody": {
                    "content": {
                        "application/json": {
                            "schema": {
                                "$ref": "#/components/schemas/dto.ScanRequest"
                            }
                        }
                    },
                    "required": false
                },
                "responses": {
                    "200": {
                        "description": "OK",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    },
                    "default": {
                        "description": "Error",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/receivables/system/info": {
            "get": {
                "tags": [
                    "system"
                ],
                "summary": "Get system information",
                "responses": {
                    "200": {
                        "description": "OK",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    },
                    "default": {
                        "description": "Error",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/receivables/system/outbox/stats": {
            "get": {
                "tags": [
                    "system"
                ],
                "summary": "Get outbox statistics",
                "responses": {
                    "200": {
                        "description": "OK",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    },
                    "default": {
                        "description": "Error",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/receivables/{type}": {
            "post": {
                "tags": [
                    "debt-documents"
                ],
                "summary": "Create an invoice or an advance",
                "parameters": [
                    {
                        "description": "invoices or advances",
                        "in": "path",
                        "name": "type",
                        "required": true,
                        "schema": {
                            "type": "string",
                            "enum": [
                                "invoices",
                                "advances"
                            ]
                        }
                    },
                    {
                        "description": "Replay protection key",
                        "in": "header",
                        "name": "Idempotency-Key",
                        "schema": {
                            "type": "string"
                        }
                    }
                ],
                "requestBody": {
                    "content": {
                        "application/json": {
                            "schema": {
                                "$ref": "#/components/schemas/dto.CreateDebtDocumentRequest"
                            }
                        }
                    },
                    "required": true
                },
                "responses": {
                    "201": {
                        "description": "Created",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    },
                    "default": {
                        "description": "Error",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/receivables/{type}/{id}": {
            "get": {
                "tags": [
                    "debt-documents"
                ],
                "summary": "Get an invoice or an advance",
                "parameters": [
                    {
                        "description": "invoices or advances",
                        "in": "path",
                        "name": "type",
                        "required": true,
                        "schema": {
                            "type": "string",
                            "enum": [
                                "invoices",
                                "advances"
                            ]
                        }
                    },
                    {
                        "description": "Document ID",
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "schema": {
                            "type": "string",
                            "format": "uuid"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    },
                    "default": {
                        "description": "Error",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/receivables/{type}/{id}/unvoid": {
            "post": {
                "tags": [
                    "debt-documents"
                ],
                "summary": "Restore a voided invoice or advance",
                "parameters": [
                    {
                        "description": "invoices or advances",
                        "in": "path",
                        "name": "type",
                        "required": true,
                        "schema": {
                            "type": "string",
                            "enum": [
                                "invoices",
                                "advances"
                            ]
                        }
                    },
                    {
                        "description": "Document ID",
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "schema": {
                            "type": "string",
                            "format": "uuid"
                        }
                    }
                ],
                "requestBody": {
                    "content": {
                        "application/json": {
                            "schema": {
                                "$ref": "#/components/schemas/dto.UnvoidRequest"
                            }
                        }
                    },
                    "required": true
                },
                "responses": {
                    "200": {
                        "description": "OK",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    },
                    "default": {
                        "description": "Error",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/receivables/{type}/{id}/void": {
            "post": {
                "tags": [
                    "debt-documents"
                ],
                "summary": "Void an invoice or an advance",
                "parameters": [
                    {
                        "description": "invoices or advances",
                        "in": "path",
                        "name": "type",
                        "required": true,
                        "schema": {
                            "type": "string",
                            "enum": [
                                "invoices",
                                "advances"
                            ]
                        }
                    },
                    {
                        "description": "Document ID",
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "schema": {
                            "type": "string",
                            "format": "uuid"
                        }
                    }
                ],
                "requestBody": {
                    "content": {
                        "application/json": {
                            "schema": {
                                "$ref": "#/components/schemas/dto.VoidRequest"
                            }
                        }
                    },
                    "required": true
                },
                "responses": {
                    "200": {
                        "description": "OK",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    },
                    "default": {
                        "description": "Error",
                        "content": {
                            "application/json": {
                                "schema": {
                                    "$ref": "#/components/schemas/dto.Response"
                                }
                            }
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        }
    },
    "components": {
        "schemas": {
            "dto.ApproveReceiptRequest": {
                "type": "object",
                "properties": {
                    "override": {
                        "$ref": "#/components/schemas/dto.OverrideRequest"
                    },
                    "targets": {
                        "type": "array",
                        "items": {
                            "$ref": "#/components/schemas/dto.TargetRequest"
                        }
                    },
                    "version": {
                        "type": "integer"
                    }
                }
            },
            "dto.BulkApproveItem": {
                "type": "object",
                "properties": {
                    "override": {
                        "$ref": "#/components/schemas/dto.OverrideRequest"
                    },
                    "receipt_id": {
                        "type": "string",
                        "format": "uuid"
                    },
                    "version": {
                        "type": "integer"
                    }
                }
            },
            "dto.BulkApproveRequest": {
                "type": "object",
                "properties": {
                    "continue_on_error": {
                        "type": "boolean"
                    },
                    "items": {
                        "type": "array",
                        "items": {
                            "$ref": "#/components/schemas/dto.BulkApproveItem"
                        }
                    }
                }
            },
            "dto.CreateDebtDocumentRequest": {
                "type": "object",
                "properties": {
                    "customer_tax_code": {
                        "type": "string"
                    },
                    "description": {
                        "type": "string"
                    },
                    "document_number": {
                        "type": "string"
                    },
                    "issue_date": {
                        "type": "string",
                        "example": "2024-03-01"
                    },
                    "override": {
                        "$ref": "#/components/schemas/dto.OverrideRequest"
                    },
                    "seller_tax_code": {
                        "type": "string"
                    },
                    "total_amount": {
                        "type": "string",
                        "example": "1500000"
                    },
                    "type": {
                        "type": "string",
                        "enum": [
                            "INVOICE",
                            "ADVANCE"
                        ]
                    }
                }
            },
            "dto.CreateReceiptRequest": {
                "type": "object",
                "properties": {
                    "allocation_mode": {
                        "type": "string",
                        "enum": [
                            "FIFO",
                            "MANUAL"
                        ]
                    },
                    "allocation_priority": {
                        "type": "string",
                        "enum": [
                            "ISSUE_DATE",
                            "DUE_DATE"
                        ]
                    },
                    "amount": {
                        "type": "string",
                        "example": "1500000"
                    },
                    "customer_tax_code": {
                        "type": "string"
                    },
                    "description": {
                        "type": "string"
                    },
                    "receipt_date": {
                        "type": "string",
                        "example": "2024-03-01"
                    },
                    "receipt_number": {
                        "type": "string"
                    },
                    "seller_tax_code": {
                        "type": "string"
                    },
                    "targets": {
                        "type": "array",
                        "items": {
                            "$ref": "#/components/schemas/dto.TargetRequest"
                        }
                    }
                }
            },
            "dto.ErrorInfo": {
                "type": "object",
                "properties": {
                    "code": {
                        "type": "string"
                    },
                    "details": {
                        "type": "array",
                        "items": {
                            "$ref": "#/components/schemas/dto.ValidationDetail"
                        }
                    },
                    "message": {
                        "type": "string"
                    },
                    "reason": {
                        "type": "string"
                    },
                    "request_id": {
                        "type": "string"
                    }
                }
            },
            "dto.ImportDebtDocumentsRequest": {
                "type": "object",
                "properties": {
                    "documents": {
                        "type": "array",
                        "items": {
                            "$ref": "#/components/schemas/dto.CreateDebtDocumentRequest"
                        }
                    }
                }
            },
            "dto.LockPeriodRequest": {
                "type": "object",
                "properties": {
                    "period_key": {
                        "type": "string",
                        "example": "2024-03"
                    },
                    "reason": {
                        "type": "string"
                    },
                    "seller_tax_code": {
                        "type": "string"
                    }
                }
            },
            "dto.Meta": {
                "type": "object",
                "properties": {
                    "page": {
                        "type": "integer"
                    },
                    "page_size": {
                        "type": "integer"
                    },
                    "total": {
                        "type": "integer"
                    },
                    "total_pages": {
                        "type": "integer"
                    }
                }
            },
            "dto.OverrideRequest": {
                "type": "object",
                "properties": {
                    "reason": {
                        "type": "string"
                    }
                }
            },
            "dto.PreviewRequest": {
                "type": "object",
                "properties": {
                    "allocation_priority": {
                        "type": "string",
                        "enum": [
                            "ISSUE_DATE",
                            "DUE_DATE"
                        ]
                    },
                    "amount": {
                        "type": "string",
                        "example": "1500000"
                    },
                    "customer_tax_code": {
                        "type": "string"
                    },
                    "receipt_id": {
                        "type": "string",
                        "format": "uuid"
                    },
                    "seller_tax_code": {
                        "type": "string"
                    },
                    "targets": {
                        "type": "array",
                        "items": {
                            "$ref": "#/components/schemas/dto.TargetRequest"
                        }
                    }
                }
            },
            "dto.Response": {
                "type": "object",
                "properties": {
                    "data": {},
                    "error": {
                        "$ref": "#/components/schemas/dto.ErrorInfo"
                    },
                    "meta": {
                        "$ref": "#/components/schemas/dto.Meta"
                    },
                    "success": {
                        "type": "boolean"
                    }
                }
            },
            "dto.ScanRequest": {
                "type": "object",
                "properties": {
                    "limit": {
                        "type": "integer"
                    },
                    "seller_tax_codes": {
                        "type": "array",
                        "items": {
                            "type": "string"
                        }
                    }
                }
            },
            "dto.TargetRequest": {
                "type": "object",
                "properties": {
                    "amount": {
                        "type": "string",
                        "example": "1500000"
                    },
                    "target_id": {
                        "type": "string",
                        "format": "uuid"
                    },
                    "target_type": {
                        "type": "string",
                        "enum": [
                            "INVOICE",
                            "ADVANCE"
                        ]
                    }
                }
            },
            "dto.UnvoidRequest": {
                "type": "object",
                "properties": {
                    "override": {
                        "$ref": "#/components/schemas/dto.OverrideRequest"
                    },
                    "version": {
                        "type": "integer"
                    }
                }
            },
            "dto.ValidationDetail": {
                "type": "object",
                "properties": {
                    "field": {
                        "type": "string"
                    },
                    "message": {
                        "type": "string"
                    }
                }
            },
            "dto.VoidRequest": {
                "type": "object",
                "properties": {
                    "override": {
                        "$ref": "#/components/schemas/dto.OverrideRequest"
                    },
                    "reason": {
                        "type": "string"
                    },
                    "version": {
                        "type": "integer"
                    }
                }
            }
        },
        "securitySchemes": {
            "BearerAuth": {
                "description": "Bearer token authentication. Format: \"Bearer {token}\"",
                "in": "header",
                "name": "Authorization",
                "type": "apiKey"
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/api/v1",
	Title:            "Receivables API",
	Description:      "Receipt allocation and reconciliation against invoices and advances",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
