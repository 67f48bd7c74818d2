package bootstrap

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"ai-research-assistant-be/internal/config"
	"ai-research-assistant-be/internal/controller"
	"ai-research-assistant-be/internal/index"
	"ai-research-assistant-be/internal/pkg/logger"
	"ai-research-assistant-be/internal/pkg/serverutils"
	"ai-research-assistant-be/internal/repository/memory"
	"ai-research-assistant-be/internal/repository/unitofwork"
	"ai-research-assistant-be/internal/service"
	"ai-research-assistant-be/pkg/embedding"
	"ai-research-assistant-be/pkg/embedding/jina"
	"ai-research-assistant-be/pkg/github"
	"ai-research-assistant-be/pkg/llm/factory"
	"ai-research-assistant-be/pkg/rag/evaluate"
	"ai-research-assistant-be/pkg/rag/generate"
	"ai-research-assistant-be/pkg/rag/pipeline"
	"ai-research-assistant-be/pkg/rag/source"
	"ai-research-assistant-be/pkg/websearch"

	pkgNats "ai-research-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AssistantController controller.IAssistantController
	DocumentController  controller.IDocumentController
	KnowledgeController controller.IKnowledgeController
	AuthController      controller.IAuthController
	OAuthController     controller.IOAuthController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Middleware backed by shared infrastructure
	AskRateLimiter fiber.Handler
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	sysLogger.Info("bootstrap", "container wiring started", nil)

	pipelineLogger := newFileLogger("logs/pipeline.log")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		sysLogger.Info("bootstrap", "using embedding provider: ollama", map[string]interface{}{"model": cfg.Ai.OllamaModel})
	} else if cfg.Ai.EmbeddingProvider == "jina" {
		embeddingProvider = jina.NewJinaProvider(cfg.Keys.HuggingFace)
		sysLogger.Info("bootstrap", "using embedding provider: jina", nil)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		sysLogger.Info("bootstrap", "using embedding provider: gemini", nil)
	}

	apiKey := cfg.Keys.Anthropic
	if cfg.Ai.LLMProvider == "huggingface" {
		apiKey = cfg.Keys.HuggingFace
	}
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		apiKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	sysLogger.Info("bootstrap", "using llm provider", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	// 4. Infrastructure
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		sysLogger.Warn("bootstrap", "nats publisher unavailable, audit events disabled", map[string]interface{}{"error": err.Error()})
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		sysLogger.Warn("bootstrap", "redis url unparseable, using raw addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		sysLogger.Warn("bootstrap", "redis unreachable, rate limiting fails open", map[string]interface{}{"error": err.Error()})
	}
	askRateLimiter := serverutils.RateLimitMiddleware(rdb, 30, time.Minute)

	// 5. Retrieval sources
	sourceTimeout := time.Duration(cfg.Rag.SourceTimeoutSec) * time.Second

	localIndex := index.NewLocalDocumentIndex(uowFactory, embeddingProvider, cfg.Rag.SimilarityThreshold, pipelineLogger)
	knowledgeIndex := index.NewKnowledgeBaseIndex(uowFactory, embeddingProvider, cfg.Rag.SimilarityThreshold, pipelineLogger)

	tokenResolver := index.NewConnectionTokenResolver(uowFactory)
	githubClient := github.NewClient("", tokenResolver)
	codeIndex := index.NewCodeRepositoryIndex(githubClient)

	tavilyClient := websearch.NewTavilyClient(cfg.Keys.Tavily, "")

	firstWave := []source.RetrievalSource{
		source.NewLocalDocumentSource(localIndex, cfg.Rag.TopK, sourceTimeout),
		source.NewKnowledgeBaseSource(knowledgeIndex, cfg.Rag.TopK, sourceTimeout),
		source.NewCodeRepositorySource(codeIndex, cfg.Rag.TopK, sourceTimeout),
	}
	webSource := source.NewWebSource(tavilyClient, cfg.Rag.TopK, sourceTimeout)

	// 6. Pipeline
	orchestrator := pipeline.NewOrchestrator(
		firstWave,
		webSource,
		pipeline.NewAnalyzer(llmProvider, pipelineLogger),
		evaluate.NewSufficiencyEvaluator(evaluate.SufficiencyConfig{
			MinResults: cfg.Rag.MinResults,
			MinScore:   cfg.Rag.MinAverageScore,
		}),
		evaluate.NewQualityEvaluator(llmProvider, evaluate.QualityConfig{
			ConfidenceThreshold: cfg.Rag.ConfidenceThreshold,
		}, pipelineLogger),
		generate.NewGenerator(llmProvider, pipelineLogger),
		pipelineLogger,
		cfg.Rag.MaxIterations,
	)

	// 7. Services
	publisherService := service.NewPublisherService(pubSub, cfg.Keys.IndexTopic, cfg.Keys.RecordTopic)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.IndexTopic,
		cfg.Keys.RecordTopic,
		uowFactory,
		embeddingProvider,
		natsPub,
	)

	runCache := memory.NewRunCache(time.Duration(cfg.Rag.RunCacheTTLMin) * time.Minute)

	assistantService := service.NewAssistantService(orchestrator, uowFactory, publisherService, runCache)
	documentService := service.NewDocumentService(uowFactory, publisherService)
	knowledgeService := service.NewKnowledgeService(uowFactory, embeddingProvider)
	authService := service.NewAuthService(uowFactory)
	oauthService := service.NewOAuthService(uowFactory)

	// 8. Controllers
	return &Container{
		AssistantController: controller.NewAssistantController(assistantService),
		DocumentController:  controller.NewDocumentController(documentService),
		KnowledgeController: controller.NewKnowledgeController(knowledgeService),
		AuthController:      controller.NewAuthController(authService),
		OAuthController:     controller.NewOAuthController(oauthService),

		ConsumerService: consumerService,
		AskRateLimiter:  askRateLimiter,
	}
}

// newFileLogger returns a logger writing to the given file, falling back to
// stdout when the file cannot be opened.
func newFileLogger(path string) *log.Logger {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			return log.New(io.MultiWriter(f, os.Stdout), "", log.LstdFlags)
		}
	}
	return log.New(os.Stdout, "", log.LstdFlags)
}
