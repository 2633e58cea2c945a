package routes

import (
	"net/http"

	"github.com/fusegraph/backend/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

// GetDomainsHandler lists the registered domains with their graph state.
func GetDomainsHandler(c echo.Context) error {
	eng := c.(*middleware.AppContext).App.Engine
	return c.JSON(http.StatusOK, eng.Domains())
}
