package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the viewer API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>folioview - Swagger</title>
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

// Minimal OpenAPI document describing the viewer endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "folioview", "version": "v0.1.0" },
  "paths": {
    "/api/v1/documents": {
      "get": { "summary": "List recent documents, newest first", "responses": { "200": { "description": "recents metadata" } } },
      "post": {
        "summary": "Save a document into the recents store",
        "requestBody": { "content": { "multipart/form-data": { "schema": {"type":"object","properties":{"file":{"type":"string","format":"binary"},"name":{"type":"string"}}}}}},
        "responses": { "201": { "description": "saved" }, "422": { "description": "payload is not a readable document" } }
      }
    },
    "/api/v1/documents/{id}/content": {
      "get": { "summary": "Fetch stored document bytes", "parameters": [{"name":"id","in":"path","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "application/pdf body" }, "404": { "description": "unknown id" } } }
    },
    "/api/v1/documents/{id}/pages/{page}": {
      "get": { "summary": "Render one page as PNG", "parameters": [{"name":"id","in":"path","required":true,"schema":{"type":"string"}},{"name":"page","in":"path","required":true,"schema":{"type":"integer"}},{"name":"dpi","in":"query","schema":{"type":"number"}}], "responses": { "200": { "description": "image/png body" } } }
    },
    "/api/v1/sessions": {
      "post": { "summary": "Open a view session", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"documentId":{"type":"string"}}}}}}, "responses": { "201": { "description": "session and resume token" }, "404": { "description": "unknown document" } } }
    },
    "/api/v1/sessions/resume": {
      "post": { "summary": "Resume a session from a resume token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"resumeToken":{"type":"string"}}}}}}, "responses": { "200": { "description": "session state" }, "401": { "description": "invalid, revoked or expired token" } } }
    },
    "/api/v1/sessions/{token}": {
      "patch": { "summary": "Record reading progress", "parameters": [{"name":"token","in":"path","required":true,"schema":{"type":"string"}}], "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"page":{"type":"integer"}}}}}}, "responses": { "200": { "description": "updated" }, "404": { "description": "unknown session" } } },
      "delete": { "summary": "Close a session and revoke its resume token", "parameters": [{"name":"token","in":"path","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "closed" } } }
    },
    "/shell/{path}": {
      "get": { "summary": "Viewer shell assets, cache-first", "parameters": [{"name":"path","in":"path","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "asset body" }, "404": { "description": "unknown asset" } } }
    },
    "/health": { "get": { "summary": "Liveness probe", "responses": { "200": { "description": "ok" } } } },
    "/ready": { "get": { "summary": "Readiness probe with dependency map", "responses": { "200": { "description": "ready" }, "503": { "description": "a dependency is down" } } } }
  }
}`
