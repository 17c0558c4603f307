package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonas-jun/inv-secretary/internal/model"
	"github.com/jonas-jun/inv-secretary/internal/pipeline"
)

const (
	CodeNoNews              = "NO_NEWS"
	CodeSummarizationFailed = "SUMMARIZATION_FAILED"
	CodeInvalidParameter    = "INVALID_PARAMETER"
	CodeInternalError       = "INTERNAL_ERROR"
)

var symbolPattern = regexp.MustCompile(`^[A-Za-z0-9.\-^=]{1,15}$`)

type DigestService interface {
	GetDigest(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
	Invalidate(ctx context.Context, symbol string) (int, error)
}

// RefreshQueue receives symbols whose digest should be regenerated in the
// background.
type RefreshQueue interface {
	Push(ctx context.Context, value string) error
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type NewsHandler struct {
	service DigestService
	queue   RefreshQueue
	db      Pinger
}

// NewNewsHandler wires the handler. queue may be nil when no Redis is configured.
func NewNewsHandler(service DigestService, queue RefreshQueue, db Pinger) *NewsHandler {
	return &NewsHandler{service: service, queue: queue, db: db}
}

func (h *NewsHandler) GetMarketPulse(c *gin.Context) {
	lang, ok := queryLanguage(c)
	if !ok {
		return
	}

	h.serveDigest(c, pipeline.Request{
		Symbol:   model.MarketSymbol,
		Language: lang,
		Limit:    pipeline.DefaultLimit,
	})
}

func (h *NewsHandler) GetNews(c *gin.Context) {
	symbol, ok := pathSymbol(c)
	if !ok {
		return
	}

	lang, ok := queryLanguage(c)
	if !ok {
		return
	}

	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	h.serveDigest(c, pipeline.Request{Symbol: symbol, Language: lang, Limit: limit})
}

func (h *NewsHandler) RefreshNews(c *gin.Context) {
	symbol, ok := pathSymbol(c)
	if !ok {
		return
	}

	deleted, err := h.service.Invalidate(c.Request.Context(), symbol)
	if err != nil {
		slog.Error("error invalidating digest", "symbol", symbol, "error", err, "request_id", requestID(c))
		writeError(c, http.StatusInternalServerError, CodeInternalError, "Failed to invalidate the cached digest.")
		return
	}

	queued := false
	if h.queue != nil {
		if err := h.queue.Push(c.Request.Context(), symbol); err != nil {
			slog.Warn("error queueing refresh", "symbol", symbol, "error", err, "request_id", requestID(c))
		} else {
			queued = true
		}
	}

	c.JSON(http.StatusOK, RefreshResponse{Symbol: symbol, Invalidated: deleted, Queued: queued})
}

func (h *NewsHandler) GetHealth(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "disconnected",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "connected",
	})
}

func (h *NewsHandler) serveDigest(c *gin.Context, req pipeline.Request) {
	res, err := h.service.GetDigest(c.Request.Context(), req)
	switch {
	case err == nil:
	case errors.Is(err, pipeline.ErrNoArticles):
		writeError(c, http.StatusNotFound, CodeNoNews, noNewsMessage(req.Symbol))
		return
	case errors.Is(err, pipeline.ErrSummarizationUnavailable):
		writeError(c, http.StatusServiceUnavailable, CodeSummarizationFailed, "Failed to generate the news summary.")
		return
	default:
		slog.Error("error building digest", "symbol", req.Symbol, "error", err, "request_id", requestID(c))
		writeError(c, http.StatusInternalServerError, CodeInternalError, "Internal server error.")
		return
	}

	c.JSON(http.StatusOK, NewNewsResponse(res))
}

// NewNewsResponse renders a pipeline result in the API wire shape.
func NewNewsResponse(res *pipeline.Result) NewsResponse {
	summary := res.Digest.Points
	if summary == nil {
		summary = []model.SummaryPoint{}
	}

	articles := make([]ArticleResponse, 0, len(res.Articles))
	for i, a := range res.Articles {
		published := ""
		if !a.PublishedAt.IsZero() {
			published = a.PublishedAt.UTC().Format(time.RFC3339)
		}
		articles = append(articles, ArticleResponse{
			ID:          i,
			Title:       a.Title,
			Source:      a.Source,
			URL:         a.URL,
			PublishedAt: published,
		})
	}

	return NewsResponse{
		Symbol:      res.Subject.Symbol,
		CompanyName: res.CompanyName,
		LastUpdated: res.LastUpdated.Format(time.RFC3339),
		Digest: DigestResponse{
			Summary: summary,
			Sentiment: SentimentResponse{
				Score: res.Digest.SentimentScore,
				Label: res.Digest.SentimentLabel,
			},
			BasedOnArticles: res.Digest.ArticleCount,
		},
		Articles: articles,
	}
}

func noNewsMessage(symbol string) string {
	if symbol == model.MarketSymbol {
		return "Could not load the latest market news."
	}
	return fmt.Sprintf("No news found for %s.", symbol)
}

func pathSymbol(c *gin.Context) (string, bool) {
	symbol := c.Param("symbol")
	if !symbolPattern.MatchString(symbol) {
		writeError(c, http.StatusBadRequest, CodeInvalidParameter, fmt.Sprintf("Invalid symbol %q.", symbol))
		return "", false
	}
	return strings.ToUpper(symbol), true
}

func queryLanguage(c *gin.Context) (model.Language, bool) {
	raw := c.DefaultQuery("lang", string(model.LanguageKorean))
	lang, ok := model.ParseLanguage(raw)
	if !ok {
		writeError(c, http.StatusBadRequest, CodeInvalidParameter, "lang must be one of: ko, en.")
		return "", false
	}
	return lang, true
}

func queryLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return pipeline.DefaultLimit, true
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > pipeline.MaxLimit {
		writeError(c, http.StatusBadRequest, CodeInvalidParameter,
			fmt.Sprintf("limit must be an integer between 1 and %d.", pipeline.MaxLimit))
		return 0, false
	}
	return limit, true
}

func writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{Error: ErrorBody{Code: code, Message: message, Status: status}})
}
