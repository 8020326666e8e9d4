package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App    AppConfig
	Mongo  MongoConfig
	Lookup LookupConfig
	Ai     AIConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type MongoConfig struct {
	URI      string
	Database string
}

type LookupConfig struct {
	SessionIDFields    []string // field names checked in every collection
	Collections        []string // optional explicit allow-list; empty = discover all
	EnableFallbackScan bool
	FallbackScanLimit  int // per-collection document ceiling for the deep scan
	EventPreviewChars  int
	EventPreviewItems  int
	Concurrency        int // collections queried in parallel per lookup
}

type AIConfig struct {
	LLMProvider   string // "openai" or "ollama"
	LLMModel      string
	OpenAIAPIKey  string
	OllamaBaseURL string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DB", "sessions"),
		},
		Lookup: LookupConfig{
			SessionIDFields:    getEnvAsSlice("SESSION_ID_FIELDS", []string{"sessionId"}),
			Collections:        getEnvAsSlice("SESSION_COLLECTIONS", nil),
			EnableFallbackScan: getEnvAsBool("ENABLE_FALLBACK_SCAN", true),
			FallbackScanLimit:  getEnvAsInt("FALLBACK_SCAN_LIMIT", 200),
			EventPreviewChars:  getEnvAsInt("EVENT_PREVIEW_CHARS", 160),
			EventPreviewItems:  getEnvAsInt("EVENT_PREVIEW_ITEMS", 5),
			Concurrency:        getEnvAsInt("SESSION_LOOKUP_CONCURRENCY", 4),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "openai"),
			LLMModel:      getEnv("LLM_MODEL", "gpt-4o-mini"),
			OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
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

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsSlice splits a comma-separated variable, dropping empty entries.
func getEnvAsSlice(key string, fallback []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	var values []string
	for _, part := range strings.Split(strValue, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	if len(values) == 0 {
		return fallback
	}
	return values
}
