package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonas-jun/inv-secretary/internal/lock"
	"github.com/jonas-jun/inv-secretary/internal/model"
	"github.com/jonas-jun/inv-secretary/pkg/llm"
	"github.com/jonas-jun/inv-secretary/pkg/news"
)

const (
	DefaultLimit = 10
	MaxLimit     = 20

	marketDisplayName = "MarketWatch Top Stories"
	marketCompanyName = "MarketWatch"
)

var (
	ErrNoArticles               = errors.New("no articles found")
	ErrSummarizationUnavailable = errors.New("summarization unavailable")
)

type SubjectStore interface {
	GetOrCreate(ctx context.Context, symbol, name string) (int64, error)
	GetBySymbol(ctx context.Context, symbol string) (*model.Ticker, error)
}

type ArticleCache interface {
	Get(ctx context.Context, tickerID int64, limit int) ([]model.Article, bool, error)
	Put(ctx context.Context, tickerID int64, articles []model.Article) ([]model.Article, error)
}

type DigestCache interface {
	Get(ctx context.Context, tickerID int64, lang model.Language) (*model.Digest, bool, error)
	Put(ctx context.Context, tickerID int64, primary, secondary *model.Digest) error
	Invalidate(ctx context.Context, tickerID int64) (int, error)
}

type Fetcher interface {
	Fetch(ctx context.Context, subject model.Subject, limit int) []news.Article
}

type Options struct {
	StoreTimeout time.Duration
	AITimeout    time.Duration
	LockWait     time.Duration
}

// Pipeline resolves a subject, reuses or refetches its articles and reuses or
// regenerates its digest.
type Pipeline struct {
	subjects  SubjectStore
	articles  ArticleCache
	digests   DigestCache
	fetcher   Fetcher
	providers []llm.Provider
	locker    lock.Locker
	opts      Options
	now       func() time.Time
}

// New builds a pipeline. providers is the ordered fallback chain; a nil
// locker disables per-subject serialization.
func New(subjects SubjectStore, articles ArticleCache, digests DigestCache, fetcher Fetcher,
	providers []llm.Provider, locker lock.Locker, opts Options) *Pipeline {
	return &Pipeline{
		subjects:  subjects,
		articles:  articles,
		digests:   digests,
		fetcher:   fetcher,
		providers: providers,
		locker:    locker,
		opts:      opts,
		now:       time.Now,
	}
}

type Request struct {
	Symbol   string
	Language model.Language
	Limit    int
}

type Result struct {
	Subject     model.Subject
	CompanyName string
	Digest      *model.Digest
	Articles    []model.Article
	LastUpdated time.Time
}

func (p *Pipeline) GetDigest(ctx context.Context, req Request) (*Result, error) {
	subject, tickerID, err := p.resolve(ctx, req.Symbol)
	if err != nil {
		return nil, err
	}

	release := p.lock(ctx, subject)
	defer release()

	articles := p.loadArticles(ctx, subject, tickerID, p.limitFor(subject, req.Limit))
	if len(articles) == 0 {
		return nil, ErrNoArticles
	}

	digest, hit := p.cachedDigest(ctx, tickerID, req.Language)
	if !hit {
		digest, err = p.summarize(ctx, subject, articles, req.Language)
		if err != nil {
			return nil, err
		}
		p.storeDigest(ctx, tickerID, digest, nil)
	}

	return &Result{
		Subject:     subject,
		CompanyName: companyName(subject),
		Digest:      digest,
		Articles:    articles,
		LastUpdated: p.now().UTC(),
	}, nil
}

// Refresh regenerates the digest of symbol in every language of langs and
// stores them as one row, skipping the digest cache read.
func (p *Pipeline) Refresh(ctx context.Context, symbol string, langs []model.Language) error {
	langs = uniqueLanguages(langs)
	if len(langs) == 0 {
		return fmt.Errorf("refreshing %s: no languages", symbol)
	}

	subject, tickerID, err := p.resolve(ctx, symbol)
	if err != nil {
		return err
	}

	release := p.lock(ctx, subject)
	defer release()

	articles := p.loadArticles(ctx, subject, tickerID, p.limitFor(subject, 0))
	if len(articles) == 0 {
		return ErrNoArticles
	}

	primary, err := p.summarize(ctx, subject, articles, langs[0])
	if err != nil {
		return err
	}

	var secondary *model.Digest
	if len(langs) > 1 {
		secondary, err = p.summarize(ctx, subject, articles, langs[1])
		if err != nil {
			return err
		}
	}

	p.storeDigest(ctx, tickerID, primary, secondary)
	return nil
}

// Invalidate deletes every cached digest of symbol. Unknown symbols report 0.
func (p *Pipeline) Invalidate(ctx context.Context, symbol string) (int, error) {
	subject := model.NewSubject(symbol)

	sctx, cancel := p.storeContext(ctx)
	defer cancel()

	ticker, err := p.subjects.GetBySymbol(sctx, subject.Symbol)
	if err != nil {
		return 0, fmt.Errorf("looking up %s: %w", subject.Symbol, err)
	}
	if ticker == nil {
		return 0, nil
	}

	return p.digests.Invalidate(sctx, ticker.ID)
}

func (p *Pipeline) resolve(ctx context.Context, symbol string) (model.Subject, int64, error) {
	subject := model.NewSubject(symbol)
	subject.DisplayName = subject.Symbol
	if subject.IsMarket() {
		subject.DisplayName = marketDisplayName
	}

	sctx, cancel := p.storeContext(ctx)
	defer cancel()

	tickerID, err := p.subjects.GetOrCreate(sctx, subject.Symbol, subject.DisplayName)
	if err != nil {
		return subject, 0, fmt.Errorf("resolving subject %s: %w", subject.Symbol, err)
	}
	return subject, tickerID, nil
}

// lock serializes work on one subject. If the lock cannot be taken within
// LockWait the caller proceeds unlocked.
func (p *Pipeline) lock(ctx context.Context, subject model.Subject) func() {
	if p.locker == nil {
		return func() {}
	}

	lctx := ctx
	if p.opts.LockWait > 0 {
		var cancel context.CancelFunc
		lctx, cancel = context.WithTimeout(ctx, p.opts.LockWait)
		defer cancel()
	}

	release, err := p.locker.Acquire(lctx, subject.Symbol)
	if err != nil {
		slog.Warn("proceeding without subject lock", "symbol", subject.Symbol, "error", err)
		return func() {}
	}
	return release
}

func (p *Pipeline) loadArticles(ctx context.Context, subject model.Subject, tickerID int64, limit int) []model.Article {
	sctx, cancel := p.storeContext(ctx)
	cached, hit, err := p.articles.Get(sctx, tickerID, limit)
	cancel()
	if err != nil {
		slog.Error("article cache unreachable", "symbol", subject.Symbol, "ticker_id", tickerID, "error", err)
	}
	if hit {
		return cached
	}

	fetched := p.fetcher.Fetch(ctx, subject, limit)
	if len(fetched) == 0 {
		slog.Warn("no articles from any source", "symbol", subject.Symbol)
		return nil
	}

	articles := make([]model.Article, len(fetched))
	for i, a := range fetched {
		articles[i] = model.Article{
			TickerID:    tickerID,
			Title:       a.Title,
			URL:         a.URL,
			Source:      a.Source,
			PublishedAt: a.PublishedAt,
			Body:        a.Body,
		}
	}

	sctx, cancel = p.storeContext(ctx)
	defer cancel()
	if _, err := p.articles.Put(sctx, tickerID, articles); err != nil {
		slog.Error("failed to cache articles", "symbol", subject.Symbol, "ticker_id", tickerID, "error", err)
	}

	return articles
}

func (p *Pipeline) cachedDigest(ctx context.Context, tickerID int64, lang model.Language) (*model.Digest, bool) {
	sctx, cancel := p.storeContext(ctx)
	defer cancel()

	digest, hit, err := p.digests.Get(sctx, tickerID, lang)
	if err != nil {
		slog.Error("digest cache unreachable", "ticker_id", tickerID, "error", err)
		return nil, false
	}
	return digest, hit
}

func (p *Pipeline) summarize(ctx context.Context, subject model.Subject, articles []model.Article, lang model.Language) (*model.Digest, error) {
	input := make([]llm.SummaryArticle, len(articles))
	for i, a := range articles {
		input[i] = llm.SummaryArticle{Title: a.Title, Source: a.Source, Body: a.Body}
	}
	req := llm.SummaryRequest{Subject: subject, Articles: input, Language: lang}

	for _, provider := range p.providers {
		actx, cancel := p.aiContext(ctx)
		digest, err := llm.Summarize(actx, provider, req)
		cancel()
		if err == nil {
			slog.Info("digest generated", "symbol", subject.Symbol, "provider", provider.Name(),
				"model", digest.ModelVersion, "lang", lang, "article_count", digest.ArticleCount)
			return digest, nil
		}

		var perr *llm.ParseError
		if errors.As(err, &perr) {
			slog.Error("summarization response unparseable", "symbol", subject.Symbol,
				"provider", provider.Name(), "error", err, "raw", perr.Raw)
		} else {
			slog.Error("summarization provider failed", "symbol", subject.Symbol,
				"provider", provider.Name(), "error", err)
		}
	}

	if len(p.providers) == 0 {
		slog.Error("no summarization provider configured", "symbol", subject.Symbol)
	}
	return nil, fmt.Errorf("summarizing %s: %w", subject.Symbol, ErrSummarizationUnavailable)
}

func (p *Pipeline) storeDigest(ctx context.Context, tickerID int64, primary, secondary *model.Digest) {
	sctx, cancel := p.storeContext(ctx)
	defer cancel()

	if err := p.digests.Put(sctx, tickerID, primary, secondary); err != nil {
		slog.Error("failed to cache digest", "ticker_id", tickerID, "error", err)
	}
}

func (p *Pipeline) limitFor(subject model.Subject, limit int) int {
	if subject.IsMarket() || limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

func (p *Pipeline) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.opts.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.opts.StoreTimeout)
}

func (p *Pipeline) aiContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.opts.AITimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.opts.AITimeout)
}

func companyName(subject model.Subject) string {
	if subject.IsMarket() {
		return marketCompanyName
	}
	return subject.Symbol
}

func uniqueLanguages(langs []model.Language) []model.Language {
	seen := make(map[model.Language]bool, len(langs))
	var out []model.Language
	for _, l := range langs {
		if seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}
