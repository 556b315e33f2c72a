package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr       string
	DatabaseURL      string
	DatabasePath     string
	SessionSecret    string
	GinMode          string
	AdminKeyword     string
	AdminKeywordHash string
	UploadDir        string
	UploadURLPath    string
	SiteName         string
	SiteBaseURL      string
	LogLevel         string
	LogFormat        string
}

// LoadEnvFile merges key/value pairs from an optional dotenv file into the
// process environment. Variables that are already set win. A missing file is
// not an error.
func LoadEnvFile(path string) error {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		trimmed = ".env"
	}

	if err := godotenv.Load(trimmed); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", trimmed, err)
	}
	return nil
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	port := envOrDefault("PORT", "8080")

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	return AppConfig{
		ListenAddr:       listenAddr,
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DatabasePath:     envOrDefault("DATABASE_PATH", "pressroom.db"),
		SessionSecret:    envOrDefault("SESSION_SECRET", "pressroom-dev-secret"),
		GinMode:          envOrDefault("GIN_MODE", "release"),
		AdminKeyword:     strings.TrimSpace(os.Getenv("ADMIN_KEYWORD")),
		AdminKeywordHash: strings.TrimSpace(os.Getenv("ADMIN_KEYWORD_HASH")),
		UploadDir:        envOrDefault("UPLOAD_DIR", "data/uploads"),
		UploadURLPath:    envOrDefault("UPLOAD_URL_PATH", "/uploads"),
		SiteName:         envOrDefault("SITE_NAME", "Pressroom"),
		SiteBaseURL:      strings.TrimRight(envOrDefault("SITE_BASE_URL", "http://localhost:8080"), "/"),
		LogLevel:         strings.ToLower(envOrDefault("LOG_LEVEL", "info")),
		LogFormat:        strings.ToLower(envOrDefault("LOG_FORMAT", "json")),
	}
}

// UsesPostgres reports whether the hosted postgres store is configured.
func (c AppConfig) UsesPostgres() bool {
	url := strings.ToLower(c.DatabaseURL)
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}

func envOrDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}
