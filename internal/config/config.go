// Package config は環境変数からのアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Token
	SecretKey          string
	SigningAlgorithm   string
	AccessTokenExpires time.Duration

	// CAPTCHA（未設定の場合は検証をスキップする開発モード）
	TurnstileSecret string
	CaptchaTimeout  time.Duration

	// Cover
	CoverDir          string
	CoverFetchTimeout time.Duration
	CoverMaxSize      int64

	// Rate Limit
	RateLimitGeneral int
	RateLimitLogin   int

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
// 署名鍵のデフォルト値は存在しない。未設定のまま起動することはできない。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.SecretKey = os.Getenv("SECRET_KEY")
	if cfg.SecretKey == "" {
		missing = append(missing, "SECRET_KEY")
	}

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	cfg.SigningAlgorithm = getEnvString("ALGORITHM", "HS256")
	if cfg.SigningAlgorithm != "HS256" {
		return nil, fmt.Errorf("unsupported signing algorithm: %s", cfg.SigningAlgorithm)
	}

	// Optional fields with defaults
	cfg.AccessTokenExpires = time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute
	cfg.TurnstileSecret = getEnvString("TURNSTILE_SECRET", "")
	cfg.CaptchaTimeout = getEnvDuration("CAPTCHA_TIMEOUT", 5*time.Second)
	cfg.CoverDir = getEnvString("COVER_DIR", "./covers")
	cfg.CoverFetchTimeout = getEnvDuration("COVER_FETCH_TIMEOUT", 10*time.Second)
	cfg.CoverMaxSize = getEnvInt64("COVER_MAX_SIZE", 5242880)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitLogin = getEnvInt("RATE_LIMIT_LOGIN", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:5173")

	return cfg, nil
}

// CaptchaEnabled はCAPTCHA検証が有効かどうかを返す。
// TURNSTILE_SECRETが未設定の場合は無効（検証をスキップする開発モード）。
func (c *Config) CaptchaEnabled() bool {
	return c.TurnstileSecret != ""
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
