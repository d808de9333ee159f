package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the PawMart backend.
type Config struct {
	Port      int
	Version   string
	Database  DatabaseConfig
	Upstream  UpstreamConfig
	Auth      AuthConfig
	Intent    IntentConfig
	Telemetry TelemetryConfig

	// Development exposes diagnostic detail in error responses. Never
	// enable in production.
	Development bool
}

type DatabaseConfig struct {
	// URL is the Postgres connection string. Empty selects the in-memory store.
	URL            string
	MaxConnections int
}

type UpstreamConfig struct {
	// BaseURL of the OpenAI-compatible chat-completions provider.
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

type AuthConfig struct {
	// JWTSecret signs the HS256 session tokens issued by /api/login.
	JWTSecret   string
	TokenExpiry time.Duration
}

// IntentConfig carries the lexical classifier's keyword sets. The exact
// words are heuristic and language-specific, so they are configuration
// rather than contract.
type IntentConfig struct {
	PurchaseKeywords []string
	LookupKeywords   []string
	OrderKeywords    []string
	UserKeywords     []string
}

type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:        envInt("PAWMART_PORT", 3000),
		Version:     envStr("PAWMART_VERSION", "0.2.0"),
		Development: envBool("PAWMART_DEV", false),
		Database: DatabaseConfig{
			URL:            envStr("DATABASE_URL", ""),
			MaxConnections: envInt("DATABASE_MAX_CONNECTIONS", 10),
		},
		Upstream: UpstreamConfig{
			BaseURL: envStr("UPSTREAM_BASE_URL", "https://dashscope.aliyuncs.com/compatible-mode/v1"),
			APIKey:  envStr("DASHSCOPE_API_KEY", ""),
			Model:   envStr("UPSTREAM_MODEL", "qwen-plus"),
			Timeout: envDuration("UPSTREAM_TIMEOUT", 15*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret:   envStr("AUTH_JWT_SECRET", "my-256-bit-secret"),
			TokenExpiry: envDuration("AUTH_TOKEN_EXPIRY", 24*time.Hour),
		},
		Intent: IntentConfig{
			PurchaseKeywords: envList("INTENT_PURCHASE_KEYWORDS", defaultPurchaseKeywords),
			LookupKeywords:   envList("INTENT_LOOKUP_KEYWORDS", defaultLookupKeywords),
			OrderKeywords:    envList("INTENT_ORDER_KEYWORDS", defaultOrderKeywords),
			UserKeywords:     envList("INTENT_USER_KEYWORDS", defaultUserKeywords),
		},
		Telemetry: TelemetryConfig{
			Enabled:      envBool("OTEL_ENABLED", false),
			OTLPEndpoint: envStr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName:  envStr("OTEL_SERVICE_NAME", "pawmart-backend"),
		},
	}
}

// Default keyword sets cover the storefront's bilingual user base.
var (
	defaultPurchaseKeywords = []string{"buy", "purchase", "place order", "买", "购买", "下单", "来一份", "帮我订"}
	defaultLookupKeywords   = []string{"find", "search", "show", "list", "what's available", "recommend", "找", "搜", "查", "推荐", "有什么", "列出", "看看"}
	defaultOrderKeywords    = []string{"order", "订单"}
	defaultUserKeywords     = []string{"my info", "account", "profile", "我的信息", "账户", "个人信息"}
)

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallback
}
