// Package docs serves the OpenAPI description of the API together with the
// Swagger UI and RapiDoc viewers. The viewers load their assets from a CDN.
package docs

import (
	_ "embed"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// DocumentPath is where the OpenAPI document is served.
const DocumentPath = "/api-docs/openapi.json"

//go:embed openapi.json
var document []byte

const swaggerPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Letters API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({ url: %q, dom_id: "#swagger-ui" });
  </script>
</body>
</html>
`

const rapidocPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Letters API</title>
  <script type="module" src="https://unpkg.com/rapidoc/dist/rapidoc-min.js"></script>
</head>
<body>
  <rapi-doc spec-url=%q></rapi-doc>
</body>
</html>
`

// Document returns the raw OpenAPI document.
func Document() []byte { return document }

// Register mounts the document and both viewers on e.
func Register(e *echo.Echo) {
	e.GET(DocumentPath, func(c echo.Context) error {
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, document)
	})

	swagger := page(swaggerPage)
	e.GET("/swagger-ui", swagger)
	e.GET("/swagger-ui/", swagger)
	e.GET("/rapidoc", page(rapidocPage))
}

func page(layout string) echo.HandlerFunc {
	html := fmt.Sprintf(layout, DocumentPath)
	return func(c echo.Context) error {
		return c.HTML(http.StatusOK, html)
	}
}
