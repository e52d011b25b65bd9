package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the registry.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(swaggerHTML))
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>gehenna registry | Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// OpenAPI document for the name registry.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "gehenna-registry", "version": "v1.0.0" },
  "components": {
    "schemas": {
      "Error": { "type": "object", "properties": { "error": { "type": "string" }, "detail": { "type": "string" } } },
      "NameList": { "type": "array", "items": { "type": "string" } }
    }
  },
  "paths": {
    "/": { "get": { "summary": "Service banner", "responses": { "200": { "description": "status ok" } } } },
    "/health": {
      "get": { "summary": "Store connectivity check", "responses": { "200": { "description": "database connected" }, "503": { "description": "database disconnected" } } }
    },
    "/api/get": {
      "get": { "summary": "List all names", "responses": { "200": { "description": "names", "content": { "application/json": { "schema": { "$ref": "#/components/schemas/NameList" } } } }, "503": { "description": "store unavailable" } } }
    },
    "/api/add/{name}": {
      "post": {
        "summary": "Add a name",
        "parameters": [{ "name": "name", "in": "path", "required": true, "schema": { "type": "string", "maxLength": 50 } }],
        "responses": { "201": { "description": "added" }, "400": { "description": "invalid name" }, "409": { "description": "already exists" }, "503": { "description": "store unavailable" } }
      }
    },
    "/api/add": {
      "post": {
        "summary": "Add a name from a JSON body",
        "requestBody": { "content": { "application/json": { "schema": { "type": "object", "properties": { "name": { "type": "string" } }, "required": ["name"] } } } },
        "responses": { "201": { "description": "added" }, "400": { "description": "invalid name" }, "409": { "description": "already exists" } }
      }
    },
    "/api/delete/{name}": {
      "delete": {
        "summary": "Delete every record with this name",
        "parameters": [{ "name": "name", "in": "path", "required": true, "schema": { "type": "string" } }],
        "responses": { "200": { "description": "deleted" }, "400": { "description": "invalid name" }, "404": { "description": "not found" } }
      }
    },
    "/api/search/{query}": {
      "get": {
        "summary": "Case-insensitive substring search",
        "parameters": [{ "name": "query", "in": "path", "required": true, "schema": { "type": "string" } }],
        "responses": { "200": { "description": "matching names" }, "400": { "description": "empty query" } }
      }
    },
    "/api/search": {
      "get": {
        "summary": "Case-insensitive substring search",
        "parameters": [{ "name": "q", "in": "query", "required": true, "schema": { "type": "string" } }],
        "responses": { "200": { "description": "matching names" }, "400": { "description": "empty query" } }
      }
    },
    "/api/snapshot": {
      "post": { "summary": "Export the registry to object storage", "responses": { "201": { "description": "snapshot key and download URL" }, "503": { "description": "object storage unavailable" } } }
    },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "text exposition" } } } }
  }
}`
