// Package docs holds the OpenAPI document served at /swagger/*any.
// Regenerate with `go generate ./cmd` (swag init) after changing handler annotations.
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
        "/catalog": {
            "get": {
                "produces": ["application/json"],
                "description": "Without query parameters the active filter is kept.",
                "tags": ["catalog"],
                "summary": "Filtered catalog",
                "parameters": [
                    {"type": "string", "description": "Search in name and description", "name": "q", "in": "query"},
                    {"type": "string", "description": "Exact category", "name": "category", "in": "query"},
                    {"type": "string", "description": "Max price, empty or 0 means no limit", "name": "max_price", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/app.Result"}}}
            }
        },
        "/catalog/filter": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Reset catalog filter",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/app.Result"}}}
            }
        },
        "/catalog/refresh": {
            "post": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Load a catalog page from the product API",
                "parameters": [
                    {"type": "integer", "description": "Page size (1..100)", "name": "limit", "in": "query"},
                    {"type": "string", "description": "Continuation token", "name": "token", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/app.Result"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "502": {"description": "Bad Gateway", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/catalog/categories": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Categories present in the snapshot",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"type": "string"}}}}
            }
        },
        "/products/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Get product by id",
                "parameters": [{"type": "string", "description": "Product ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Product"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "502": {"description": "Bad Gateway", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/cart": {
            "get": {
                "produces": ["application/json"],
                "tags": ["cart"],
                "summary": "Cart contents",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/app.Result"}}}
            }
        },
        "/cart/items": {
            "post": {
                "description": "Name and price are looked up through the product API when omitted.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["cart"],
                "summary": "Add one unit of a product",
                "parameters": [{"description": "Item", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/httpapi.addItemReq"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/app.Result"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/cart/items/{id}": {
            "put": {
                "description": "Quantities below 1 and unknown products leave the cart unchanged (changed=false).",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["cart"],
                "summary": "Set line quantity",
                "parameters": [
                    {"type": "string", "description": "Product ID", "name": "id", "in": "path", "required": true},
                    {"description": "Quantity", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/httpapi.setQuantityReq"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/app.Result"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["cart"],
                "summary": "Remove a line",
                "parameters": [{"type": "string", "description": "Product ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/app.Result"}}}
            }
        },
        "/cart/checkout": {
            "post": {
                "produces": ["application/json"],
                "tags": ["cart"],
                "summary": "Checkout",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/app.Result"}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/notice": {
            "get": {
                "produces": ["application/json"],
                "tags": ["notice"],
                "summary": "Current notice",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/render.Notice"}},
                    "204": {"description": "No Content"}
                }
            },
            "delete": {
                "tags": ["notice"],
                "summary": "Dismiss the notice",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/admin/products": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Create product",
                "parameters": [{"description": "Product", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/httpapi.createProductReq"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Product"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/admin/products/{id}": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Update product",
                "parameters": [
                    {"type": "string", "description": "Product ID", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/httpapi.updateProductReq"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Product"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "delete": {
                "tags": ["admin"],
                "summary": "Delete product",
                "parameters": [{"type": "string", "description": "Product ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "app.Result": {
            "type": "object",
            "properties": {
                "catalog": {"$ref": "#/definitions/render.CatalogView"},
                "categories": {"type": "array", "items": {"type": "string"}},
                "cart": {"$ref": "#/definitions/render.CartView"},
                "checkout": {"$ref": "#/definitions/domain.CheckoutSummary"},
                "changed": {"type": "boolean"}
            }
        },
        "domain.Product": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "price": {"type": "string"},
                "stock": {"type": "integer"},
                "category": {"type": "string"},
                "sku": {"type": "string"}
            }
        },
        "domain.CartLine": {
            "type": "object",
            "properties": {
                "product_id": {"type": "string"},
                "name": {"type": "string"},
                "unit_price": {"type": "string"},
                "quantity": {"type": "integer"}
            }
        },
        "domain.CheckoutSummary": {
            "type": "object",
            "properties": {
                "item_count": {"type": "integer"},
                "lines": {"type": "integer"},
                "total": {"type": "string"}
            }
        },
        "render.CatalogView": {
            "type": "object",
            "properties": {
                "products": {"type": "array", "items": {"$ref": "#/definitions/domain.Product"}},
                "next_token": {"type": "string"}
            }
        },
        "render.CartView": {
            "type": "object",
            "properties": {
                "lines": {"type": "array", "items": {"$ref": "#/definitions/domain.CartLine"}},
                "total": {"type": "string"},
                "item_count": {"type": "integer"}
            }
        },
        "render.Notice": {
            "type": "object",
            "properties": {
                "kind": {"type": "string"},
                "message": {"type": "string"},
                "blocking": {"type": "boolean"},
                "expires_at": {"type": "string"}
            }
        },
        "httpapi.addItemReq": {
            "type": "object",
            "properties": {
                "product_id": {"type": "string"},
                "name": {"type": "string"},
                "price": {"type": "string"}
            }
        },
        "httpapi.setQuantityReq": {
            "type": "object",
            "properties": {"quantity": {"type": "integer"}}
        },
        "httpapi.createProductReq": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "price": {"type": "string"},
                "stock": {"type": "integer"},
                "category": {"type": "string"},
                "sku": {"type": "string"}
            }
        },
        "httpapi.updateProductReq": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"},
                "price": {"type": "string"},
                "stock": {"type": "integer"},
                "category": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:9091",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Farmácia storefront API",
	Description:      "Catalog browsing, cart and checkout over the pharmacy product API.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
