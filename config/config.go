// Package config loads service settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"

	ProviderGemini      = "gemini"
	ProviderHuggingFace = "huggingface"
)

var defaultOrigins = []string{"http://localhost:5173", "http://localhost:3000"}

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	GinMode     string `envconfig:"GIN_MODE" default:"debug"`
	FrontendURL string `envconfig:"FRONTEND_URL"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty   bool   `envconfig:"LOG_PRETTY" default:"false"`

	DBDriver    string `envconfig:"DB_DRIVER" default:"postgres"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBHost      string `envconfig:"DB_HOST" default:"localhost"`
	DBPort      string `envconfig:"DB_PORT" default:"5432"`
	DBUser      string `envconfig:"DB_USER" default:"postgres"`
	DBPassword  string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName      string `envconfig:"DB_NAME" default:"itinera"`
	DBSSLMode   string `envconfig:"DB_SSLMODE" default:"disable"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"itinera.db"`

	MongoURI      string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"itinera"`

	AIProvider        string `envconfig:"AI_PROVIDER" default:"gemini"`
	GeminiAPIKey      string `envconfig:"GEMINI_API_KEY"`
	GeminiModel       string `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`
	HuggingFaceAPIKey string `envconfig:"HUGGINGFACE_API_KEY"`
	HFModel           string `envconfig:"HF_MODEL" default:"mistralai/Mistral-7B-Instruct-v0.3"`

	UnsplashAccessKey string `envconfig:"UNSPLASH_ACCESS_KEY"`
	GeoapifyAPIKey    string `envconfig:"GEOAPIFY_API_KEY"`
	GeoapifyGeocode   bool   `envconfig:"GEOAPIFY_GEOCODE" default:"false"`

	AmadeusClientID     string `envconfig:"AMADEUS_CLIENT_ID"`
	AmadeusClientSecret string `envconfig:"AMADEUS_CLIENT_SECRET"`
	AmadeusEnv          string `envconfig:"AMADEUS_ENV" default:"test"`

	RedisURL      string        `envconfig:"REDIS_URL"`
	ImageCacheTTL time.Duration `envconfig:"IMAGE_CACHE_TTL" default:"24h"`

	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"60s"`
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found — using environment variables")
	}
	return FromEnv()
}

// FromEnv skips .env loading; tests use it directly.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	cfg.AIProvider = strings.ToLower(strings.TrimSpace(cfg.AIProvider))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("PORT must be between 1 and 65535, got: %s", cfg.Port))
	}

	switch cfg.DBDriver {
	case DriverPostgres:
	case DriverSQLite:
		if cfg.SQLitePath == "" {
			problems = append(problems, "SQLITE_PATH cannot be empty with DB_DRIVER=sqlite")
		}
	case DriverMongo:
		if !strings.HasPrefix(cfg.MongoURI, "mongodb://") && !strings.HasPrefix(cfg.MongoURI, "mongodb+srv://") {
			problems = append(problems, fmt.Sprintf("MONGO_URI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
		}
		if cfg.MongoDatabase == "" {
			problems = append(problems, "MONGO_DATABASE cannot be empty")
		}
	default:
		problems = append(problems, fmt.Sprintf("DB_DRIVER must be one of postgres, sqlite, mongo, got: %s", cfg.DBDriver))
	}

	if cfg.AIProvider != ProviderGemini && cfg.AIProvider != ProviderHuggingFace {
		problems = append(problems, fmt.Sprintf("AI_PROVIDER must be gemini or huggingface, got: %s", cfg.AIProvider))
	}

	if cfg.AmadeusEnv != "test" && cfg.AmadeusEnv != "production" {
		problems = append(problems, fmt.Sprintf("AMADEUS_ENV must be test or production, got: %s", cfg.AmadeusEnv))
	}

	if cfg.RedisURL != "" {
		if _, err := url.Parse(cfg.RedisURL); err != nil {
			problems = append(problems, fmt.Sprintf("REDIS_URL is not a valid URL: %v", err))
		}
	}
	if cfg.ImageCacheTTL <= 0 {
		problems = append(problems, fmt.Sprintf("IMAGE_CACHE_TTL must be positive, got: %s", cfg.ImageCacheTTL))
	}
	if cfg.RequestTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("REQUEST_TIMEOUT must be positive, got: %s", cfg.RequestTimeout))
	}

	if len(problems) > 0 {
		msg := "configuration validation failed:\n"
		for i, p := range problems {
			msg += fmt.Sprintf("  %d. %s\n", i+1, p)
		}
		return fmt.Errorf("%s", msg)
	}
	return nil
}

// PostgresDSN prefers DATABASE_URL (hosted platforms) and falls back to
// the individual DB_* settings for local development.
func (cfg *Config) PostgresDSN() string {
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)
}

// AllowedOrigins is the local dev frontends plus every FRONTEND_URL entry.
func (cfg *Config) AllowedOrigins() []string {
	origins := append([]string{}, defaultOrigins...)
	for _, u := range strings.Split(cfg.FrontendURL, ",") {
		if u = strings.TrimSpace(u); u != "" {
			origins = append(origins, u)
		}
	}
	return origins
}

func (cfg *Config) Addr() string {
	return ":" + cfg.Port
}

func (cfg *Config) IsRelease() bool {
	return cfg.GinMode == "release"
}

// LogConfiguration logs the effective settings with secrets reduced to
// presence flags.
func (cfg *Config) LogConfiguration() {
	log.Info().
		Str("port", cfg.Port).
		Str("db_driver", cfg.DBDriver).
		Str("ai_provider", cfg.AIProvider).
		Bool("database_url_set", cfg.DatabaseURL != "").
		Bool("gemini_key_set", cfg.GeminiAPIKey != "").
		Bool("huggingface_key_set", cfg.HuggingFaceAPIKey != "").
		Bool("unsplash_key_set", cfg.UnsplashAccessKey != "").
		Bool("geoapify_key_set", cfg.GeoapifyAPIKey != "").
		Bool("amadeus_set", cfg.AmadeusClientID != "" && cfg.AmadeusClientSecret != "").
		Bool("redis_set", cfg.RedisURL != "").
		Strs("allowed_origins", cfg.AllowedOrigins()).
		Msg("✅ Configuration loaded")
}
