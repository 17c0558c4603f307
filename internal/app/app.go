package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/jonas-jun/inv-secretary/db"
	"github.com/jonas-jun/inv-secretary/internal/cache"
	"github.com/jonas-jun/inv-secretary/internal/config"
	"github.com/jonas-jun/inv-secretary/internal/lock"
	"github.com/jonas-jun/inv-secretary/internal/pipeline"
	"github.com/jonas-jun/inv-secretary/internal/repository"
	"github.com/jonas-jun/inv-secretary/pkg/llm"
	"github.com/jonas-jun/inv-secretary/pkg/news"
	"github.com/redis/go-redis/v9"
)

// App holds the long-lived dependencies shared by the api, warmer and cli
// binaries.
type App struct {
	Config   *config.Config
	DB       *sql.DB
	Redis    *redis.Client
	Queue    *db.Queue
	Pipeline *pipeline.Pipeline
}

func SetupLogging(cfg *config.Config) {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	feeds, err := config.LoadFeeds(cfg.FeedsFile)
	if err != nil {
		return nil, err
	}

	conn, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to DB: %w", err)
	}

	rdb, err := db.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	providers, err := buildProviders(ctx, cfg)
	if err != nil {
		conn.Close()
		if rdb != nil {
			rdb.Close()
		}
		return nil, err
	}
	chain := llm.Chain(cfg.Provider, providers, cfg.ProviderFallback)
	if len(chain) == 0 {
		slog.Warn("no summarization provider has an API key, digests will be unavailable", "provider", cfg.Provider)
	}

	structured, fallback := buildSources(cfg, feeds)
	fetcher := news.NewFetcher(structured, fallback, news.NewMarketClient(feeds.MarketFeed()), cfg.FetchTimeout)

	a := &App{Config: cfg, DB: conn, Redis: rdb}
	if rdb != nil {
		a.Queue = db.NewQueue(rdb, db.RefreshQueueKey)
	}

	a.Pipeline = pipeline.New(
		repository.NewTickerRepository(conn),
		cache.NewArticleCache(repository.NewArticleRepository(conn), cfg.ArticleCacheTTL),
		cache.NewDigestCache(repository.NewSummaryRepository(conn), cfg.DigestCacheTTL),
		fetcher,
		chain,
		newLocker(rdb, cfg),
		pipeline.Options{
			StoreTimeout: cfg.StoreTimeout,
			AITimeout:    cfg.AITimeout,
			LockWait:     cfg.LockWait,
		},
	)

	slog.Info("app ready",
		"provider", cfg.Provider,
		"fallback", cfg.ProviderFallback,
		"chain", providerNames(chain),
		"sources", len(structured),
		"redis", rdb != nil,
	)
	return a, nil
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			slog.Error("error closing redis", "error", err)
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			slog.Error("error closing DB", "error", err)
		}
	}
}

// buildProviders returns a client for every provider with a configured key.
func buildProviders(ctx context.Context, cfg *config.Config) (map[string]llm.Provider, error) {
	providers := make(map[string]llm.Provider)
	for name, key := range cfg.ProviderKeys() {
		if key == "" {
			continue
		}
		switch name {
		case llm.ProviderClaude:
			providers[name] = llm.NewAnthropicClient(key)
		case llm.ProviderOpenAI:
			providers[name] = llm.NewOpenAIClient(key)
		case llm.ProviderGemini:
			client, err := llm.NewGeminiClient(ctx, key, "")
			if err != nil {
				return nil, err
			}
			providers[name] = client
		}
	}
	return providers, nil
}

// buildSources orders the structured sources Yahoo first, then every keyed
// API. RSS is the keyword fallback.
func buildSources(cfg *config.Config, feeds *config.Feeds) ([]news.Source, news.Source) {
	structured := []news.Source{news.NewYahooClient()}
	if cfg.FinnhubAPIKey != "" {
		structured = append(structured, news.NewFinnHubClient(cfg.FinnhubAPIKey))
	}
	if cfg.AlphaVantageAPIKey != "" {
		structured = append(structured, news.NewAlphaVantageClient(cfg.AlphaVantageAPIKey))
	}
	if cfg.MassiveAPIKey != "" {
		structured = append(structured, news.NewMassiveClient(cfg.MassiveAPIKey))
	}
	return structured, news.NewRSSClient(feeds.SymbolFeeds())
}

func newLocker(rdb *redis.Client, cfg *config.Config) lock.Locker {
	if rdb != nil {
		return lock.NewRedisLocker(rdb, db.LockKeyPrefix, cfg.LockTTL)
	}
	return lock.NewKeyedMutex()
}

func providerNames(chain []llm.Provider) []string {
	names := make([]string, 0, len(chain))
	for _, p := range chain {
		names = append(names, p.Name())
	}
	return names
}
