//go:build swagger

package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

// apiDoc is the OpenAPI document served at /swagger/doc.json.
const apiDoc = `{
  "swagger": "2.0",
  "info": {
    "title": "{{.Title}}",
    "description": "{{.Description}}",
    "version": "{{.Version}}"
  },
  "basePath": "{{.BasePath}}",
  "paths": {
    "/models": {"get": {"summary": "List catalog models", "produces": ["application/json"],
      "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ModelsResponse"}}}}},
    "/status": {"get": {"summary": "Residency and queue status", "produces": ["application/json"],
      "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}}}},
    "/load": {"post": {"summary": "Make a model resident", "consumes": ["application/json"], "produces": ["application/json"],
      "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.LoadRequest"}}],
      "responses": {"200": {"description": "OK"}, "404": {"description": "Unknown or missing model"}, "503": {"description": "Engine failure"}}}},
    "/resident": {"delete": {"summary": "Unload the resident model", "responses": {"200": {"description": "OK"}}}},
    "/generate": {"post": {"summary": "Stream a generation as NDJSON events", "consumes": ["application/json"], "produces": ["application/x-ndjson"],
      "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.GenerateRequest"}}],
      "responses": {"200": {"description": "NDJSON stream of types.GenerateEvent"}, "409": {"description": "No model resident"}}}},
    "/prompt": {"post": {"summary": "Render a prompt from activity data", "consumes": ["application/json"], "produces": ["application/json"],
      "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.PromptRequest"}}],
      "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.PromptResponse"}}}}}
  },
  "definitions": {
    "types.ModelsResponse": {"type": "object"},
    "types.StatusResponse": {"type": "object"},
    "types.LoadRequest": {"type": "object", "properties": {"model": {"type": "string"}, "category": {"type": "string"}, "perspective": {"type": "string"}}},
    "types.GenerateRequest": {"type": "object", "properties": {"prompt": {"type": "string"}, "perspective": {"type": "string"}, "category": {"type": "string"}, "model": {"type": "string"}}},
    "types.PromptRequest": {"type": "object", "properties": {"category": {"type": "string"}, "perspective": {"type": "string"}, "data": {"type": "object"}}},
    "types.PromptResponse": {"type": "object", "properties": {"prompt": {"type": "string"}}}
  }
}`

// SwaggerInfo holds the exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Title:            "edgellm API",
	Description:      "Local companion API for the on-device model slot and generation pipeline.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  apiDoc,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// MountSwagger serves the Swagger UI under /swagger/.
func MountSwagger(r chi.Router) {
	r.Get("/swagger", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/swagger/index.html", http.StatusMovedPermanently)
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}
