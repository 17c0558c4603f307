package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jonas-jun/inv-secretary/internal/model"
	"github.com/jonas-jun/inv-secretary/pkg/llm"
)

type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string
	CORSOrigins []string
	LogLevel    string

	Provider         string
	ProviderFallback bool

	AnthropicAPIKey    string
	GeminiAPIKey       string
	OpenAIAPIKey       string
	FinnhubAPIKey      string
	AlphaVantageAPIKey string
	MassiveAPIKey      string

	ArticleCacheTTL time.Duration
	DigestCacheTTL  time.Duration
	StoreTimeout    time.Duration
	FetchTimeout    time.Duration
	AITimeout       time.Duration
	LockWait        time.Duration
	LockTTL         time.Duration

	WarmLanguages   []model.Language
	WarmMaxAttempts int
	FeedsFile       string
}

// Load reads the process environment. Call godotenv.Load first to pick up a
// local .env file.
func Load() (*Config, error) {
	var env envParser
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
		CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		Provider:         strings.ToLower(getEnv("SUMMARIZATION_PROVIDER", llm.ProviderGemini)),
		ProviderFallback: env.getEnvAsBool("SUMMARIZATION_FALLBACK", false),

		AnthropicAPIKey:    getEnv("ANTHROPIC_API_KEY", ""),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		FinnhubAPIKey:      getEnv("FINNHUB_API_KEY", ""),
		AlphaVantageAPIKey: getEnv("ALPHA_VANTAGE_API_KEY", ""),
		MassiveAPIKey:      getEnv("MASSIVE_API_KEY", ""),

		ArticleCacheTTL: env.getEnvAsDuration("ARTICLE_CACHE_TTL", 3*time.Minute),
		DigestCacheTTL:  env.getEnvAsDuration("DIGEST_CACHE_TTL", time.Hour),
		StoreTimeout:    env.getEnvAsDuration("STORE_TIMEOUT", 5*time.Second),
		FetchTimeout:    env.getEnvAsDuration("FETCH_TIMEOUT", 15*time.Second),
		AITimeout:       env.getEnvAsDuration("AI_TIMEOUT", 60*time.Second),
		LockWait:        env.getEnvAsDuration("LOCK_WAIT", 90*time.Second),
		LockTTL:         env.getEnvAsDuration("LOCK_TTL", 5*time.Minute),

		WarmMaxAttempts: env.getEnvAsInt("WARM_MAX_ATTEMPTS", 3),
		FeedsFile:       getEnv("FEEDS_FILE", ""),
	}

	langs, err := parseLanguages(getEnvAsList("WARM_LANGUAGES", []string{"ko", "en"}))
	if err != nil {
		return nil, err
	}
	cfg.WarmLanguages = langs

	if err := errors.Join(env.errs...); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if !llm.IsKnownProvider(c.Provider) {
		return fmt.Errorf("SUMMARIZATION_PROVIDER: unknown provider %q (valid: claude, gemini, openai)", c.Provider)
	}
	for name, d := range map[string]time.Duration{
		"ARTICLE_CACHE_TTL": c.ArticleCacheTTL,
		"DIGEST_CACHE_TTL":  c.DigestCacheTTL,
		"STORE_TIMEOUT":     c.StoreTimeout,
		"FETCH_TIMEOUT":     c.FetchTimeout,
		"AI_TIMEOUT":        c.AITimeout,
		"LOCK_WAIT":         c.LockWait,
		"LOCK_TTL":          c.LockTTL,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	if c.WarmMaxAttempts < 1 {
		return fmt.Errorf("WARM_MAX_ATTEMPTS must be at least 1, got %d", c.WarmMaxAttempts)
	}
	if c.DigestCacheTTL < c.ArticleCacheTTL {
		slog.Warn("digest cache TTL is shorter than article cache TTL",
			"digest_ttl", c.DigestCacheTTL, "article_ttl", c.ArticleCacheTTL)
	}
	return nil
}

// ProviderKeys maps each provider name to its API key.
func (c *Config) ProviderKeys() map[string]string {
	return map[string]string{
		llm.ProviderClaude: c.AnthropicAPIKey,
		llm.ProviderGemini: c.GeminiAPIKey,
		llm.ProviderOpenAI: c.OpenAIAPIKey,
	}
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseLanguages(values []string) ([]model.Language, error) {
	langs := make([]model.Language, 0, len(values))
	for _, v := range values {
		lang, ok := model.ParseLanguage(strings.ToLower(v))
		if !ok {
			return nil, fmt.Errorf("WARM_LANGUAGES: unsupported language %q", v)
		}
		langs = append(langs, lang)
	}
	return langs, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envParser collects parse failures so Load can report every malformed
// variable at once instead of silently using defaults.
type envParser struct {
	errs []error
}

func (p *envParser) fail(key, value string, err error) {
	p.errs = append(p.errs, fmt.Errorf("%s: invalid value %q: %w", key, value, err))
}

func (p *envParser) getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		p.fail(key, value, err)
		return defaultValue
	}
	return intValue
}

func (p *envParser) getEnvAsBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		p.fail(key, value, err)
		return defaultValue
	}
	return boolValue
}

func (p *envParser) getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		p.fail(key, value, err)
		return defaultValue
	}
	return duration
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
