package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "DB_DRIVER", "DATABASE_URL", "FRONTEND_URL", "AI_PROVIDER",
		"MONGO_URI", "IMAGE_CACHE_TTL", "REQUEST_TIMEOUT", "AMADEUS_ENV", "SQLITE_PATH",
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, ProviderGemini, cfg.AIProvider)
	assert.Equal(t, 24*time.Hour, cfg.ImageCacheTTL)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DB_DRIVER", " SQLite ")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("AI_PROVIDER", "HuggingFace")
	t.Setenv("AMADEUS_ENV", "production")
	t.Setenv("IMAGE_CACHE_TTL", "1h")
	t.Setenv("REQUEST_TIMEOUT", "5s")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, ProviderHuggingFace, cfg.AIProvider)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := &Config{
		Port:           "0",
		DBDriver:       "oracle",
		AIProvider:     "gpt",
		AmadeusEnv:     "staging",
		ImageCacheTTL:  0,
		RequestTimeout: time.Second,
	}

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"PORT", "DB_DRIVER", "AI_PROVIDER", "AMADEUS_ENV", "IMAGE_CACHE_TTL"} {
		assert.Contains(t, err.Error(), want)
	}
	assert.NotContains(t, err.Error(), "REQUEST_TIMEOUT")
}

func TestValidate_Mongo(t *testing.T) {
	cfg := &Config{
		Port:           "8080",
		DBDriver:       DriverMongo,
		MongoURI:       "localhost:27017",
		AIProvider:     ProviderGemini,
		AmadeusEnv:     "test",
		ImageCacheTTL:  time.Hour,
		RequestTimeout: time.Second,
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGO_URI")
	assert.Contains(t, err.Error(), "MONGO_DATABASE")

	cfg.MongoURI = "mongodb://localhost:27017"
	cfg.MongoDatabase = "itinera"
	assert.NoError(t, cfg.Validate())
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBPort: "5433", DBUser: "u", DBPassword: "p", DBName: "n", DBSSLMode: "require"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=n sslmode=require", cfg.PostgresDSN())

	cfg.DatabaseURL = "postgres://u:p@db/n"
	assert.Equal(t, "postgres://u:p@db/n", cfg.PostgresDSN())
}

func TestAllowedOrigins(t *testing.T) {
	cfg := &Config{FrontendURL: " https://a.example , ,https://b.example"}
	assert.Equal(t, []string{
		"http://localhost:5173",
		"http://localhost:3000",
		"https://a.example",
		"https://b.example",
	}, cfg.AllowedOrigins())

	assert.Equal(t, defaultOrigins, (&Config{}).AllowedOrigins())
}
