package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Development-only secrets, honored when ALLOW_DEV_SECRETS=true outside production.
const (
	DevAnonIDSecret      = "737065616b75702d6465762d616e6f6e2d696473"
	DevDataEncryptionKey = "3261666537663836623031646136633262643032646263356636333432346638"
)

type Config struct {
	Addr               string
	DatabaseURL        string
	JWTSecret          string
	AnonIDSecret       string
	DataEncryptionKey  string
	Environment        string
	AllowDevSecrets    bool
	StorageDir         string
	AuditJournalPath   string
	MaxBodyBytes       int64
	RateLimitPerMinute int
	RequestTimeout     time.Duration
	RunMigrations      bool
	MetricsEnabled     bool
	AdvanceOnNote      bool
}

func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:               getEnv("APP_ADDR", ":8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		AnonIDSecret:       getEnv("ANON_ID_SECRET", ""),
		DataEncryptionKey:  getEnv("DATA_ENCRYPTION_KEY", ""),
		Environment:        getEnv("APP_ENV", "development"),
		AllowDevSecrets:    getEnvBool("ALLOW_DEV_SECRETS", false),
		StorageDir:         getEnv("STORAGE_DIR", "storage"),
		AuditJournalPath:   getEnv("AUDIT_JOURNAL_PATH", "storage/audit-journal.log"),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		RequestTimeout:     getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
		RunMigrations:      getEnvBool("RUN_MIGRATIONS", true),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
		AdvanceOnNote:      getEnvBool("ADVANCE_ON_NOTE", true),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// Validate enforces the secret posture. Missing or malformed secrets abort
// startup instead of silently degrading to weaker defaults.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if strings.TrimSpace(c.AnonIDSecret) == "" {
			return fmt.Errorf("ANON_ID_SECRET must be set in production")
		}
		if strings.TrimSpace(c.DataEncryptionKey) == "" {
			return fmt.Errorf("DATA_ENCRYPTION_KEY must be set in production for encryption at rest")
		}
		if c.AllowDevSecrets {
			return fmt.Errorf("ALLOW_DEV_SECRETS must not be enabled in production")
		}
	}
	if c.AnonIDSecret == "" {
		if !c.AllowDevSecrets {
			return fmt.Errorf("ANON_ID_SECRET is required (set ALLOW_DEV_SECRETS=true for the development secret)")
		}
		c.AnonIDSecret = DevAnonIDSecret
	}
	if c.DataEncryptionKey == "" {
		if !c.AllowDevSecrets {
			return fmt.Errorf("DATA_ENCRYPTION_KEY is required (set ALLOW_DEV_SECRETS=true for the development key)")
		}
		c.DataEncryptionKey = DevDataEncryptionKey
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}
