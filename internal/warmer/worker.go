package warmer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jonas-jun/inv-secretary/internal/model"
	"github.com/jonas-jun/inv-secretary/internal/pipeline"
)

type Queue interface {
	Push(ctx context.Context, value string) error
	Pop(ctx context.Context, timeout time.Duration) (string, bool, error)
}

type Refresher interface {
	Refresh(ctx context.Context, symbol string, langs []model.Language) error
}

// Worker drains the refresh queue, regenerating each subject's digest in
// every configured language.
type Worker struct {
	queue       Queue
	refresher   Refresher
	langs       []model.Language
	maxAttempts int
	popTimeout  time.Duration
	backoff     time.Duration
}

func NewWorker(queue Queue, refresher Refresher, langs []model.Language, maxAttempts int) *Worker {
	return &Worker{
		queue:       queue,
		refresher:   refresher,
		langs:       langs,
		maxAttempts: maxAttempts,
		popTimeout:  5 * time.Second,
		backoff:     5 * time.Second,
	}
}

// Run processes jobs until ctx is cancelled or the queue fails.
func (w *Worker) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		if _, err := w.ProcessOne(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// ProcessOne handles at most one job. It reports false when the queue was
// empty for the whole pop timeout.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	raw, ok, err := w.queue.Pop(ctx, w.popTimeout)
	if err != nil {
		return false, fmt.Errorf("popping refresh queue: %w", err)
	}
	if !ok {
		return false, nil
	}

	symbol, attempt, err := decodeJob(raw)
	if err != nil {
		slog.Error("invalid job in refresh queue", "job", raw, "error", err)
		return true, nil
	}

	err = w.refresher.Refresh(ctx, symbol, w.langs)
	switch {
	case err == nil:
		slog.Info("digest refreshed", "symbol", symbol, "attempt", attempt)
	case errors.Is(err, pipeline.ErrNoArticles):
		slog.Warn("no articles to refresh, dropping", "symbol", symbol)
	case attempt+1 >= w.maxAttempts:
		slog.Error("refresh exceeded max attempts, dropping", "symbol", symbol, "attempt", attempt, "error", err)
	default:
		slog.Error("error refreshing digest, requeueing", "symbol", symbol, "attempt", attempt, "error", err)
		if perr := w.queue.Push(ctx, encodeJob(symbol, attempt+1)); perr != nil {
			slog.Error("error requeueing refresh", "symbol", symbol, "error", perr)
		}
		w.sleep(ctx)
	}

	return true, nil
}

func (w *Worker) sleep(ctx context.Context) {
	if w.backoff <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(w.backoff):
	}
}

// Jobs are "SYMBOL" on first try and "SYMBOL|attempt" after a failure.
func encodeJob(symbol string, attempt int) string {
	if attempt == 0 {
		return symbol
	}
	return symbol + "|" + strconv.Itoa(attempt)
}

func decodeJob(raw string) (string, int, error) {
	symbol, rest, found := strings.Cut(strings.TrimSpace(raw), "|")
	if symbol == "" {
		return "", 0, errors.New("empty symbol")
	}
	if !found {
		return symbol, 0, nil
	}
	attempt, err := strconv.Atoi(rest)
	if err != nil || attempt < 0 {
		return "", 0, fmt.Errorf("invalid attempt %q", rest)
	}
	return symbol, attempt, nil
}
