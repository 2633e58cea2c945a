package routes

import (
	"errors"
	"net/http"

	"github.com/fusegraph/backend/internal/server/middleware"
	"github.com/fusegraph/backend/pkg/domain"
	"github.com/fusegraph/backend/pkg/engine"
	"github.com/fusegraph/backend/pkg/logger"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// StructuredAnswerHandler analyses a structured requirement payload
// against the document index under a caller-supplied system prompt.
func StructuredAnswerHandler(c echo.Context) error {
	type structuredRequestBody struct {
		Domain          string                  `json:"domain"`
		VectorStoreID   string                  `json:"vectorstore_id"`
		Mode            string                  `json:"mode"`
		SystemPrompt    string                  `json:"system_prompt"`
		Requirement     string                  `json:"requirement" validate:"required"`
		Profile         map[string]any          `json:"profile"`
		Subrequirements []engine.Subrequirement `json:"subrequirements"`
	}

	data := new(structuredRequestBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	if data.Domain == "" {
		data.Domain = "wealth_management"
	}

	eng := c.(*middleware.AppContext).App.Engine
	ctx := c.Request().Context()

	res, err := eng.AnswerStructured(ctx, engine.StructuredRequest{
		Domain:          data.Domain,
		VectorStoreID:   data.VectorStoreID,
		Mode:            data.Mode,
		SystemPrompt:    data.SystemPrompt,
		Requirement:     data.Requirement,
		Profile:         data.Profile,
		Subrequirements: data.Subrequirements,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUnknownDomain) || errors.Is(err, engine.ErrEmptyQuestion) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		logger.Error("[Structured] pipeline error", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, res)
}
