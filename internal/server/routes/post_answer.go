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

// AnswerHandler answers one question against a domain's knowledge graph
// and document index.
func AnswerHandler(c echo.Context) error {
	type answerRequestBody struct {
		Question       string                `json:"question" validate:"required"`
		Domain         string                `json:"domain"`
		Mode           string                `json:"mode"`
		VectorStoreID  string                `json:"vectorstore_id"`
		ResponseID     string                `json:"response_id"`
		ConversationID string                `json:"conversation_id"`
		Params         *engine.RequestParams `json:"params"`
	}

	data := new(answerRequestBody)
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

	res, err := eng.Answer(ctx, engine.AnswerRequest{
		Question:       data.Question,
		Domain:         data.Domain,
		Mode:           data.Mode,
		VectorStoreID:  data.VectorStoreID,
		ResponseID:     data.ResponseID,
		ConversationID: data.ConversationID,
		Params:         data.Params,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUnknownDomain) || errors.Is(err, engine.ErrEmptyQuestion) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		logger.Error("[Answer] pipeline error", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, res)
}
