package bootstrap

import (
	"log"

	"ai-research-be/internal/config"
	"ai-research-be/internal/controller"
	"ai-research-be/internal/pkg/logger"
	"ai-research-be/internal/repository/unitofwork"
	"ai-research-be/internal/service"
	"ai-research-be/pkg/embedding"
	"ai-research-be/pkg/llm/factory"
	"ai-research-be/pkg/research/history"
	"ai-research-be/pkg/research/session"
	"ai-research-be/pkg/research/sources"
	"ai-research-be/pkg/scraper"
	"ai-research-be/pkg/search"

	"gorm.io/gorm"
)

type Container struct {
	ResearchController controller.IResearchController

	Logger logger.ILogger
}

// NewContainer wires every provider client explicitly. Nothing in the engine
// holds module-level state, so tests can swap any collaborator for a double.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Provider Clients
	if cfg.Keys.Serper == "" {
		log.Println("[WARN] SERPER_API_KEY is not set; search requests will fail")
	}
	searchClient := search.NewSerperClient(
		cfg.Keys.Serper,
		cfg.Research.SearchTimeout,
		cfg.Research.SearchCacheTTL,
	)

	extractor := scraper.NewArticleExtractor(cfg.Research.ScrapeTimeout)

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Keys.Groq,
		cfg.Ai.GroqBaseURL,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// Embedding is an optional capability; "none" runs without similarity recall.
	var embeddingProvider embedding.Provider
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.EmbeddingModel)
	case "gemini":
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	default:
		log.Printf("[INFO] Embedding disabled; similarity recall is off")
	}

	// 3. Domain Components
	assembler := sources.NewAssembler(extractor, sources.Config{
		ScrapeTopN:       cfg.Research.ScrapeTopN,
		MinContentChars:  cfg.Research.MinContentChars,
		SourceContentCap: cfg.Research.SourceContentCap,
		MaxSources:       cfg.Research.MaxSources,
	})

	retriever := history.NewRetriever(embeddingProvider, history.Config{
		RecencyLimit:        cfg.Research.RecencyLimit,
		SimilarityThreshold: cfg.Research.SimilarityThreshold,
		SimilarTopK:         cfg.Research.SimilarTopK,
	}, sysLogger)

	sessionManager := session.NewManager()

	// 4. Services
	researchService := service.NewResearchService(
		uowFactory,
		searchClient,
		assembler,
		retriever,
		sessionManager,
		llmProvider,
		embeddingProvider,
		cfg.Research,
		sysLogger,
	)

	// 5. Controllers
	return &Container{
		ResearchController: controller.NewResearchController(researchService),
		Logger:             sysLogger,
	}
}
