package docs_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Obras-api/docs"
)

func TestSwagger_DocumentoValido(t *testing.T) {
	var doc map[string]any
	require.NoError(t, json.Unmarshal(docs.Swagger, &doc))
	assert.Equal(t, "2.0", doc["swagger"])
	assert.Contains(t, doc["paths"], "/exec")
}

func TestSwagger_MiddlewareSirveDocs(t *testing.T) {
	app := fiber.New()
	require.NotPanics(t, func() {
		app.Use(swagger.New(swagger.Config{
			BasePath:    "/",
			FileContent: docs.Swagger,
			Path:        "docs",
			Title:       "Obras API",
		}))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/docs", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
