package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mid "github.com/fusegraph/backend/internal/server/middleware"
	"github.com/fusegraph/backend/internal/util"
	"github.com/fusegraph/backend/pkg/ai"
	oai "github.com/fusegraph/backend/pkg/ai/ollama"
	gai "github.com/fusegraph/backend/pkg/ai/openai"
	"github.com/fusegraph/backend/pkg/domain"
	"github.com/fusegraph/backend/pkg/engine"
	"github.com/fusegraph/backend/pkg/logger"
	"github.com/fusegraph/backend/pkg/retrieval"
	sem "github.com/fusegraph/backend/pkg/retrieval/openai"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func loadDomainRegistry() *domain.Registry {
	if path := util.GetEnv("DOMAIN_REGISTRY"); path != "" {
		registry, err := domain.LoadRegistry(path)
		if err != nil {
			logger.Fatal("Failed to load domain registry", "err", err)
		}
		return registry
	}

	return domain.NewRegistry(domain.Config{
		DomainID:             "wealth_management",
		Name:                 "Wealth Management",
		Description:          "Wealth management operations and product documentation",
		KGPath:               util.GetEnvString("KG_PATH", "data/kg.json"),
		DefaultVectorStoreID: util.GetEnv("VECTORSTORE_ID"),
	})
}

func newSynthesizer() ai.Synthesizer {
	adapter := util.GetEnv("AI_ADAPTER")

	switch adapter {
	case "ollama":
		synth, err := oai.NewChatSynthesizer(oai.NewChatSynthesizerParams{
			Model:   util.GetEnv("AI_CHAT_MODEL"),
			BaseURL: util.GetEnv("AI_CHAT_URL"),
			ApiKey:  util.GetEnv("AI_CHAT_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 15)),
		})
		if err != nil {
			logger.Fatal("Failed to create Ollama synthesizer", "err", err)
		}
		return synth
	default:
		return gai.NewResponsesSynthesizer(gai.NewResponsesSynthesizerParams{
			Model:   util.GetEnv("AI_CHAT_MODEL"),
			BaseURL: util.GetEnv("AI_CHAT_URL"),
			ApiKey:  util.GetEnv("AI_CHAT_KEY"),
		})
	}
}

func newRetriever() retrieval.PassageRetriever {
	apiKey := util.GetEnvString("AI_SEARCH_KEY", util.GetEnv("AI_CHAT_KEY"))
	if apiKey == "" {
		logger.Warn("No semantic search credentials configured, passage retrieval disabled")
		return nil
	}
	return sem.NewVectorStoreRetriever(sem.NewVectorStoreRetrieverParams{
		BaseURL: util.GetEnv("AI_SEARCH_URL"),
		ApiKey:  apiKey,
	})
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng := engine.NewEngine(engine.NewEngineParams{
		Registry:            loadDomainRegistry(),
		Retriever:           newRetriever(),
		Synthesizer:         newSynthesizer(),
		ExportDir:           util.GetEnv("EXPORT_DIR"),
		MaxTrackedResponses: int(util.GetEnvNumeric("MAX_TRACKED_RESPONSES", 4096)),
	})
	if util.GetEnvBool("KG_WARMUP", true) {
		eng.Warmup()
	}

	e.Use(mid.AppContextMiddleware(eng))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
