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
	Auth     AuthConfig
	Advisor  AdvisorConfig
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type AdvisorConfig struct {
	BufferCapacity      int           // short-term turns kept per session
	SessionTimeout      time.Duration // idle time before a session expires
	ContextTurns        int           // recent turns fed to routing/generation
	SourceTimeout       time.Duration // per evidence source
	SemanticWeight      float64       // hybrid ranking weight w
	SimilarityThreshold float64
	RetrievalLimit      int
	GraphMaxDepth       int
	CacheTTL            time.Duration
	SnapshotPath        string // long-term memory snapshot written at shutdown

	// Opportunity fusion weights; must sum to 1.0.
	WeightLocation   float64
	WeightUniqueness float64
	WeightSentiment  float64
	WeightRegulatory float64
}

type AIConfig struct {
	EmbeddingProvider string // "ollama" or "gemini"
	EmbeddingModel    string
	LLMProvider       string // "ollama"
	LLMModel          string
	OllamaBaseURL     string
	GeminiAPIKey      string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/advisor.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getEnvAsDuration("JWT_TOKEN_TTL", 24*time.Hour),
		},
		Advisor: AdvisorConfig{
			BufferCapacity:      getEnvAsInt("ADVISOR_BUFFER_CAPACITY", 10),
			SessionTimeout:      getEnvAsDuration("ADVISOR_SESSION_TIMEOUT", 30*time.Minute),
			ContextTurns:        getEnvAsInt("ADVISOR_CONTEXT_TURNS", 3),
			SourceTimeout:       getEnvAsDuration("ADVISOR_SOURCE_TIMEOUT", 5*time.Second),
			SemanticWeight:      getEnvAsFloat("ADVISOR_SEMANTIC_WEIGHT", 0.7),
			SimilarityThreshold: getEnvAsFloat("ADVISOR_SIMILARITY_THRESHOLD", 0.3),
			RetrievalLimit:      getEnvAsInt("ADVISOR_RETRIEVAL_LIMIT", 5),
			GraphMaxDepth:       getEnvAsInt("ADVISOR_GRAPH_MAX_DEPTH", 2),
			CacheTTL:            getEnvAsDuration("ADVISOR_CACHE_TTL", 2*time.Minute),
			SnapshotPath:        getEnv("ADVISOR_SNAPSHOT_PATH", "data/memory_snapshot.json"),
			WeightLocation:      getEnvAsFloat("FUSION_WEIGHT_LOCATION", 0.35),
			WeightUniqueness:    getEnvAsFloat("FUSION_WEIGHT_UNIQUENESS", 0.25),
			WeightSentiment:     getEnvAsFloat("FUSION_WEIGHT_SENTIMENT", 0.25),
			WeightRegulatory:    getEnvAsFloat("FUSION_WEIGHT_REGULATORY", 0.15),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			GeminiAPIKey:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
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
