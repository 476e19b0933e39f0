package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Research ResearchConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	Serper       string
	Groq         string
	GoogleGemini string
}

type AIConfig struct {
	LLMProvider       string // "groq" or "ollama"
	LLMModel          string // e.g. "llama-3.1-8b-instant"
	GroqBaseURL       string
	OllamaBaseURL     string
	EmbeddingProvider string // "gemini", "ollama" or "none"
	EmbeddingModel    string
}

// ResearchConfig holds the engine tunables. Defaults are the values the
// pipeline was calibrated with; every one can be overridden per environment.
type ResearchConfig struct {
	SearchResultCount   int           // organic results requested per search
	SearchTimeout       time.Duration // outbound search call budget
	SearchCacheTTL      time.Duration // identical-query response cache
	ScrapeTopN          int           // results scraped for full text
	ScrapeTimeout       time.Duration // fallback-stage budget per URL
	MinContentChars     int           // below this, a scrape is discarded
	SourceContentCap    int           // per-source content truncation
	MaxSources          int           // scraped + snippet total cap
	RecencyLimit        int           // recent entries loaded per request
	SimilarityThreshold float64       // cosine gate for past entries
	SimilarTopK         int           // similar entries kept
	MemoryReplyCap      int           // chars of a past response in the prompt
	Temperature         float64
	MaxTokens           int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			Serper:       getEnv("SERPER_API_KEY", ""),
			Groq:         getEnv("GROQ_API_KEY", ""),
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:       getEnv("LLM_PROVIDER", "groq"),
			LLMModel:          getEnv("LLM_MODEL", "llama-3.1-8b-instant"),
			GroqBaseURL:       getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "none"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
		},
		Research: ResearchConfig{
			SearchResultCount:   getEnvAsInt("RESEARCH_SEARCH_RESULTS", 5),
			SearchTimeout:       getEnvAsDuration("RESEARCH_SEARCH_TIMEOUT", 10*time.Second),
			SearchCacheTTL:      getEnvAsDuration("RESEARCH_SEARCH_CACHE_TTL", 5*time.Minute),
			ScrapeTopN:          getEnvAsInt("RESEARCH_SCRAPE_TOP_N", 3),
			ScrapeTimeout:       getEnvAsDuration("RESEARCH_SCRAPE_TIMEOUT", 5*time.Second),
			MinContentChars:     getEnvAsInt("RESEARCH_MIN_CONTENT_CHARS", 200),
			SourceContentCap:    getEnvAsInt("RESEARCH_SOURCE_CONTENT_CAP", 2000),
			MaxSources:          getEnvAsInt("RESEARCH_MAX_SOURCES", 5),
			RecencyLimit:        getEnvAsInt("RESEARCH_RECENCY_LIMIT", 10),
			SimilarityThreshold: getEnvAsFloat("RESEARCH_SIMILARITY_THRESHOLD", 0.4),
			SimilarTopK:         getEnvAsInt("RESEARCH_SIMILAR_TOP_K", 3),
			MemoryReplyCap:      getEnvAsInt("RESEARCH_MEMORY_REPLY_CAP", 200),
			Temperature:         getEnvAsFloat("RESEARCH_TEMPERATURE", 0.3),
			MaxTokens:           getEnvAsInt("RESEARCH_MAX_TOKENS", 1000),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
