package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the event bot.
type Profile struct {
	// Server
	Mode    string // "prod", "dev" or "demo"
	Addr    string // ops HTTP listen address
	Port    int    // ops HTTP listen port
	Data    string // data directory
	Driver  string // database driver: sqlite or postgres
	DSN     string // database source name
	Version string

	// Telegram
	TelegramToken string

	// Ingestion
	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	// Embedding provider (any OpenAI-compatible endpoint)
	EmbeddingAPIKey  string
	EmbeddingBaseURL string
	EmbeddingModel   string
	EmbeddingDim     int

	// Recommendation
	DistanceMetric string // "cosine" or "l2"
	DefaultQuery   string // substituted for empty ad-hoc queries
	TopK           int    // chat result count

	// Notification scheduler
	NotifyCandidates  int           // ranked candidates fetched per user
	NotifyInterval    time.Duration // time between cycles
	NotifyConcurrency int           // parallel user pipelines per cycle
	NotifyRate        float64       // delivery sink messages per second
}

const (
	DefaultEmbeddingModel = "text-embedding-3-small"
	DefaultEmbeddingDim   = 1536
	DefaultQueryText      = "Events in Sydney"
)

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables. Values already set
// by flags are only filled in when empty so flags win over the environment.
func (p *Profile) FromEnv() {
	if p.TelegramToken == "" {
		p.TelegramToken = getEnvOrDefault("EVENTBOT_TELEGRAM_TOKEN", "")
	}
	if p.MongoURI == "" {
		p.MongoURI = getEnvOrDefault("EVENTBOT_MONGO_URI", "mongodb://localhost:27017")
	}
	p.MongoDatabase = getEnvOrDefault("EVENTBOT_MONGO_DATABASE", "sydney-events")
	p.MongoCollection = getEnvOrDefault("EVENTBOT_MONGO_COLLECTION", "events")

	p.EmbeddingAPIKey = getEnvOrDefault("EVENTBOT_EMBEDDING_API_KEY", "")
	p.EmbeddingBaseURL = getEnvOrDefault("EVENTBOT_EMBEDDING_BASE_URL", "")
	if p.EmbeddingModel == "" {
		p.EmbeddingModel = getEnvOrDefault("EVENTBOT_EMBEDDING_MODEL", DefaultEmbeddingModel)
	}
	if p.EmbeddingDim == 0 {
		p.EmbeddingDim = getEnvOrDefaultInt("EVENTBOT_EMBEDDING_DIM", DefaultEmbeddingDim)
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

// Validate normalizes the profile and fills driver-dependent defaults.
func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}

	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unsupported database driver %q (want sqlite or postgres)", p.Driver)
	}

	if p.DistanceMetric == "" {
		p.DistanceMetric = "cosine"
	}
	if p.DistanceMetric != "cosine" && p.DistanceMetric != "l2" {
		slog.Warn("unknown distance metric, falling back to cosine", "metric", p.DistanceMetric)
		p.DistanceMetric = "cosine"
	}

	if p.DefaultQuery == "" {
		p.DefaultQuery = DefaultQueryText
	}
	if p.TopK <= 0 {
		p.TopK = 5
	}
	if p.NotifyCandidates <= 0 {
		p.NotifyCandidates = 5
	}
	if p.NotifyInterval <= 0 {
		p.NotifyInterval = 6 * time.Hour
	}
	if p.NotifyConcurrency <= 0 {
		p.NotifyConcurrency = 4
	}
	if p.NotifyRate <= 0 {
		// Telegram caps bots around 30 messages per second.
		p.NotifyRate = 25
	}
	if p.EmbeddingModel == "" {
		p.EmbeddingModel = DefaultEmbeddingModel
	}
	if p.EmbeddingDim <= 0 {
		p.EmbeddingDim = DefaultEmbeddingDim
	}

	if p.Driver == "sqlite" {
		if p.Data == "" {
			p.Data = "."
		}
		dataDir, err := checkDataDir(p.Data)
		if err != nil {
			slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
			return err
		}
		p.Data = dataDir
		if p.DSN == "" {
			p.DSN = filepath.Join(dataDir, fmt.Sprintf("eventbot_%s.db", p.Mode))
		}
	}

	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("dsn required for postgres driver")
	}

	return nil
}
