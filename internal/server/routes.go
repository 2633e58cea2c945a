package server

import (
	"github.com/fusegraph/backend/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	e.GET("/health", routes.GetHealthHandler)
	e.GET("/domains", routes.GetDomainsHandler)
	e.GET("/schemas", routes.GetSchemasHandler)

	apiRoutes := e.Group("/v1")

	apiRoutes.POST("/answer", routes.AnswerHandler)
	apiRoutes.POST("/structured", routes.StructuredAnswerHandler)
}
