package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Vector store
	PineconeAPIKey string
	IndexName      string
	Namespace      string
	Cloud          string
	Region         string
	DatabaseURL    string // optional pgvector backend

	// AI providers
	AIAPIKey    string
	EmbedModel  string
	EmbedDim    int
	GenModel    string
	VisionModel string

	// Pipeline
	InputDir   string
	OutputDir  string
	LedgerPath string
	ChunkSize  int
	TopK       int

	// Chat
	ChatHistoryPath string
}

// LoadConfig loads the environment variables and returns config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		PineconeAPIKey:  getEnv("PINECONE_API_KEY", ""),
		IndexName:       getEnv("PINECONE_INDEX_NAME", "docsmith"),
		Namespace:       getEnv("PINECONE_NAMESPACE", "default"),
		Cloud:           getEnv("PINECONE_CLOUD", "aws"),
		Region:          getEnv("PINECONE_REGION", "us-east-1"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		AIAPIKey:        getEnv("GEMINI_API_KEY", ""),
		EmbedModel:      getEnv("EMBED_MODEL", "text-embedding-004"),
		EmbedDim:        getEnvInt("EMBED_DIM", 384),
		GenModel:        getEnv("GEN_MODEL", "gemini-1.5-flash"),
		VisionModel:     getEnv("VISION_MODEL", "gemini-1.5-pro"),
		InputDir:        getEnv("FILES_INPUT_DIR", "documents"),
		OutputDir:       getEnv("FILES_OUTPUT_DIR", "extracted_output"),
		LedgerPath:      getEnv("LEDGER_PATH", ""),
		ChunkSize:       getEnvInt("CHUNK_SIZE", 512),
		TopK:            getEnvInt("SIMILARITY_TOP_K", 10),
		ChatHistoryPath: getEnv("CHAT_HISTORY_PATH", "database.json"),
	}

	if cfg.LedgerPath == "" {
		cfg.LedgerPath = filepath.Join(cfg.OutputDir, "metadata.json")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}
