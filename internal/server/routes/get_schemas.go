package routes

import (
	"net/http"

	"github.com/fusegraph/backend/pkg/ai"
	"github.com/fusegraph/backend/pkg/engine"

	"github.com/labstack/echo/v4"
)

// GetSchemasHandler publishes JSON schemas for the public response shapes
// so clients can validate payloads without hardcoding them.
func GetSchemasHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"answer":     ai.GenerateSchema(engine.AnswerResult{}),
		"structured": ai.GenerateSchema(engine.StructuredResult{}),
		"domain":     ai.GenerateSchema(engine.DomainStatus{}),
	})
}
