package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Rag      RagConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini string
	Anthropic    string
	HuggingFace  string
	Tavily       string
	IndexTopic   string
	RecordTopic  string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini", "ollama" or "jina"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "ollama", "anthropic", "huggingface"
	LLMModel          string
}

// RagConfig carries the pipeline knobs. Defaults reproduce the gates the
// pipeline was tuned with.
type RagConfig struct {
	MaxIterations       int
	TopK                int
	SimilarityThreshold float64
	MinResults          int
	MinAverageScore     float64
	ConfidenceThreshold float64
	SourceTimeoutSec    int
	RunCacheTTLMin      int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			Anthropic:    getEnv("ANTHROPIC_API_KEY", ""),
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
			Tavily:       getEnv("TAVILY_API_KEY", ""),
			IndexTopic:   getEnv("INDEX_DOCUMENT_TOPIC_NAME", "INDEX_DOCUMENT"),
			RecordTopic:  getEnv("RECORD_QUERY_TOPIC_NAME", "RECORD_QUERY"),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
		},
		Rag: RagConfig{
			MaxIterations:       getEnvAsInt("RAG_MAX_ITERATIONS", 3),
			TopK:                getEnvAsInt("RAG_TOP_K", 5),
			SimilarityThreshold: getEnvAsFloat("RAG_SIMILARITY_THRESHOLD", 0.4),
			MinResults:          getEnvAsInt("RAG_MIN_RESULTS", 3),
			MinAverageScore:     getEnvAsFloat("RAG_MIN_AVG_SCORE", 0.5),
			ConfidenceThreshold: getEnvAsFloat("RAG_CONFIDENCE_THRESHOLD", 0.8),
			SourceTimeoutSec:    getEnvAsInt("RAG_SOURCE_TIMEOUT_SEC", 10),
			RunCacheTTLMin:      getEnvAsInt("RAG_RUN_CACHE_TTL_MIN", 10),
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
