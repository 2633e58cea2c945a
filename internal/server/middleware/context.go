package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/fusegraph/backend/pkg/engine"
)

type App struct {
	Engine *engine.Engine
}

type AppContext struct {
	echo.Context
	App *App
}

func AppContextMiddleware(eng *engine.Engine) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			app := &App{
				Engine: eng,
			}
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
