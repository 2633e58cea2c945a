package routes

import (
	"net/http"

	"github.com/fusegraph/backend/internal/server/middleware"
	"github.com/fusegraph/backend/pkg/engine"
	"github.com/fusegraph/backend/pkg/mode"

	"github.com/labstack/echo/v4"
)

// GetHealthHandler reports service readiness and per-domain graph state.
func GetHealthHandler(c echo.Context) error {
	type healthResponse struct {
		Status         string                `json:"status"`
		AvailableModes []string              `json:"available_modes"`
		Domains        []engine.DomainStatus `json:"domains"`
	}

	eng := c.(*middleware.AppContext).App.Engine
	domains := eng.Domains()

	status := "healthy"
	for _, d := range domains {
		if !d.KGLoaded {
			status = "degraded"
			break
		}
	}

	return c.JSON(http.StatusOK, healthResponse{
		Status:         status,
		AvailableModes: mode.Names(),
		Domains:        domains,
	})
}
