package openapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ehr/interchange/internal/platform/detect"
)

// Generator builds the OpenAPI 3.0 document for the conversion API.
type Generator struct {
	version string
	baseURL string
}

// NewGenerator creates a new OpenAPI spec generator.
func NewGenerator(version, baseURL string) *Generator {
	return &Generator{version: version, baseURL: baseURL}
}

// GenerateSpec produces the OpenAPI 3.0 document as a map.
func (g *Generator) GenerateSpec() map[string]interface{} {
	formats := make([]string, 0, len(detect.Formats))
	for _, f := range detect.Formats {
		formats = append(formats, string(f))
	}

	paths := map[string]interface{}{
		"/convert": map[string]interface{}{
			"post": map[string]interface{}{
				"summary":     "Convert a file, or a multipart batch of files, to sheets",
				"operationId": "convert",
				"tags":        []string{"conversion"},
				"security":    bearer("convert"),
				"parameters": []map[string]interface{}{
					{"name": "format", "in": "query", "schema": map[string]interface{}{"type": "string", "enum": formats},
						"description": "Skip detection and decode as this format"},
					{"name": "name", "in": "query", "schema": map[string]string{"type": "string"},
						"description": "File name recorded in the conversion log"},
				},
				"requestBody": map[string]interface{}{
					"required": true,
					"content": map[string]interface{}{
						"application/octet-stream": map[string]interface{}{
							"schema": map[string]string{"type": "string", "format": "binary"},
						},
						"multipart/form-data": map[string]interface{}{
							"schema": map[string]interface{}{
								"type": "object",
								"properties": map[string]interface{}{
									"files": map[string]interface{}{
										"type":  "array",
										"items": map[string]string{"type": "string", "format": "binary"},
									},
								},
							},
						},
					},
				},
				"responses": map[string]interface{}{
					"200": response("Converted sheets", "#/components/schemas/ConvertResponse"),
					"400": response("Unrecognized or undecodable content", "#/components/schemas/Error"),
					"413": response("Upload too large", "#/components/schemas/Error"),
				},
			},
		},
		"/detect": map[string]interface{}{
			"post": map[string]interface{}{
				"summary":     "Detect the format of a file without converting it",
				"operationId": "detect",
				"tags":        []string{"conversion"},
				"security":    bearer("convert"),
				"requestBody": map[string]interface{}{
					"required": true,
					"content": map[string]interface{}{
						"application/octet-stream": map[string]interface{}{
							"schema": map[string]string{"type": "string", "format": "binary"},
						},
					},
				},
				"responses": map[string]interface{}{
					"200": response("Detected format", "#/components/schemas/FormatInfo"),
					"400": response("Unrecognized content", "#/components/schemas/Error"),
				},
			},
		},
		"/formats": map[string]interface{}{
			"get": map[string]interface{}{
				"summary":     "List supported input formats",
				"operationId": "listFormats",
				"tags":        []string{"conversion"},
				"responses": map[string]interface{}{
					"200": arrayResponse("Supported formats", "#/components/schemas/FormatInfo"),
				},
			},
		},
		"/conversions": map[string]interface{}{
			"get": map[string]interface{}{
				"summary":     "List recent conversions, newest first",
				"operationId": "listConversions",
				"tags":        []string{"audit"},
				"security":    bearer("audit:read"),
				"parameters": []map[string]interface{}{
					{"name": "limit", "in": "query", "schema": map[string]string{"type": "integer"}},
				},
				"responses": map[string]interface{}{
					"200": arrayResponse("Conversion log entries", "#/components/schemas/Conversion"),
				},
			},
		},
	}

	return map[string]interface{}{
		"openapi": "3.0.3",
		"info": map[string]interface{}{
			"title":       "Healthcare Interchange Conversion API",
			"version":     g.version,
			"description": "Converts X12, HL7v2, FHIR, CDA, NCPDP and delimited files to sheets",
		},
		"servers": []map[string]string{
			{"url": g.baseURL},
		},
		"paths": paths,
		"components": map[string]interface{}{
			"schemas": componentSchemas(formats),
			"securitySchemes": map[string]interface{}{
				"bearerAuth": map[string]string{"type": "http", "scheme": "bearer", "bearerFormat": "JWT"},
			},
		},
	}
}

func bearer(scope string) []map[string][]string {
	return []map[string][]string{{"bearerAuth": {scope}}}
}

func response(description, schemaRef string) map[string]interface{} {
	return map[string]interface{}{
		"description": description,
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{
				"schema": map[string]string{"$ref": schemaRef},
			},
		},
	}
}

func arrayResponse(description, itemRef string) map[string]interface{} {
	return map[string]interface{}{
		"description": description,
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{
				"schema": map[string]interface{}{
					"type":  "array",
					"items": map[string]string{"$ref": itemRef},
				},
			},
		},
	}
}

func componentSchemas(formats []string) map[string]interface{} {
	str := map[string]string{"type": "string"}
	integer := map[string]string{"type": "integer"}
	format := map[string]interface{}{"type": "string", "enum": formats}

	return map[string]interface{}{
		"Sheet": map[string]interface{}{
			"type":     "object",
			"required": []string{"name", "headers", "rows"},
			"properties": map[string]interface{}{
				"name":    str,
				"headers": map[string]interface{}{"type": "array", "items": str},
				"rows": map[string]interface{}{
					"type":  "array",
					"items": map[string]interface{}{"type": "array", "items": map[string]interface{}{}},
				},
				"currency_columns": map[string]interface{}{
					"type":        "array",
					"items":       integer,
					"description": "1-based indexes of columns holding monetary amounts",
				},
			},
		},
		"ConvertResponse": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"id":     map[string]string{"type": "string", "format": "uuid"},
				"format": format,
				"files":  integer,
				"sheets": map[string]interface{}{"type": "array", "items": map[string]string{"$ref": "#/components/schemas/Sheet"}},
				"errors": map[string]interface{}{"type": "array", "items": str},
			},
		},
		"FormatInfo": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"format":      format,
				"description": str,
			},
		},
		"Conversion": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"id":         map[string]string{"type": "string", "format": "uuid"},
				"request_id": str,
				"source":     str,
				"format":     str,
				"sheets":     integer,
				"rows":       integer,
				"bytes":      integer,
				"sha256":     str,
				"error":      str,
				"created_at": map[string]string{"type": "string", "format": "date-time"},
			},
		},
		"Error": map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{"error": str},
		},
	}
}

// ── Swagger UI ──────────────────────────────────────────────────────────

// docsCSP replaces the API-wide policy on the docs page, which loads the
// UI bundle from unpkg and runs one inline bootstrap script.
const docsCSP = "default-src 'none'; script-src https://unpkg.com 'unsafe-inline'; " +
	"style-src https://unpkg.com 'unsafe-inline'; img-src 'self' data: https://unpkg.com; " +
	"connect-src 'self'; frame-ancestors 'none'"

const swaggerUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Interchange API - Swagger UI</title>
  <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" >
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: "/api/v1/openapi.json",
      dom_id: '#swagger-ui',
      deepLinking: true
    })
  </script>
</body>
</html>`

// RegisterRoutes registers the OpenAPI endpoints.
func (g *Generator) RegisterRoutes(apiGroup *echo.Group) {
	apiGroup.GET("/openapi.json", func(c echo.Context) error {
		return c.JSON(http.StatusOK, g.GenerateSpec())
	})
	apiGroup.GET("/docs", func(c echo.Context) error {
		c.Response().Header().Set("Content-Security-Policy", docsCSP)
		return c.HTML(http.StatusOK, swaggerUIHTML)
	})
}
