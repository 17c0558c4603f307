package warmer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/jonas-jun/inv-secretary/internal/model"
	"github.com/jonas-jun/inv-secretary/internal/pipeline"
)

type memQueue struct {
	items  []string
	popErr error
}

func (q *memQueue) Push(ctx context.Context, value string) error {
	q.items = append([]string{value}, q.items...)
	return nil
}

func (q *memQueue) Pop(ctx context.Context, timeout time.Duration) (string, bool, error) {
	if q.popErr != nil {
		return "", false, q.popErr
	}
	if len(q.items) == 0 {
		return "", false, nil
	}
	last := q.items[len(q.items)-1]
	q.items = q.items[:len(q.items)-1]
	return last, true, nil
}

type fakeRefresher struct {
	errs  []error
	calls []string
	langs [][]model.Language
}

func (f *fakeRefresher) Refresh(ctx context.Context, symbol string, langs []model.Language) error {
	f.calls = append(f.calls, symbol)
	f.langs = append(f.langs, langs)
	if len(f.errs) == 0 {
		return nil
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return err
}

func newTestWorker(q Queue, r Refresher) *Worker {
	w := NewWorker(q, r, []model.Language{model.LanguageKorean, model.LanguageEnglish}, 3)
	w.backoff = 0
	return w
}

func TestProcessOneRefreshes(t *testing.T) {
	q := &memQueue{items: []string{"AAPL"}}
	r := &fakeRefresher{}
	w := newTestWorker(q, r)

	ok, err := w.ProcessOne(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, true, ok)
	assert.Equal(t, []string{"AAPL"}, r.calls)
	assert.Equal(t, []model.Language{model.LanguageKorean, model.LanguageEnglish}, r.langs[0])
	assert.Equal(t, 0, len(q.items))
}

func TestProcessOneEmptyQueue(t *testing.T) {
	w := newTestWorker(&memQueue{}, &fakeRefresher{})

	ok, err := w.ProcessOne(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, false, ok)
}

func TestProcessOneRequeuesUntilMaxAttempts(t *testing.T) {
	boom := errors.New("provider down")
	q := &memQueue{items: []string{"AAPL"}}
	r := &fakeRefresher{errs: []error{boom, boom, boom, boom}}
	w := newTestWorker(q, r)

	for i := 0; i < 5; i++ {
		_, err := w.ProcessOne(context.Background())
		assert.Equal(t, nil, err)
	}

	assert.Equal(t, []string{"AAPL", "AAPL", "AAPL"}, r.calls)
	assert.Equal(t, 0, len(q.items))
}

func TestProcessOneDropsWhenNoArticles(t *testing.T) {
	q := &memQueue{items: []string{"ZZZZ"}}
	r := &fakeRefresher{errs: []error{pipeline.ErrNoArticles}}
	w := newTestWorker(q, r)

	_, err := w.ProcessOne(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(q.items))
}

func TestProcessOneQueueError(t *testing.T) {
	w := newTestWorker(&memQueue{popErr: errors.New("redis down")}, &fakeRefresher{})

	_, err := w.ProcessOne(context.Background())

	assert.NotEqual(t, nil, err)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := newTestWorker(&memQueue{}, &fakeRefresher{}).Run(ctx)

	assert.Equal(t, nil, err)
}

func TestJobEncoding(t *testing.T) {
	assert.Equal(t, "AAPL", encodeJob("AAPL", 0))
	assert.Equal(t, "AAPL|2", encodeJob("AAPL", 2))

	symbol, attempt, err := decodeJob("AAPL|2")
	assert.Equal(t, nil, err)
	assert.Equal(t, "AAPL", symbol)
	assert.Equal(t, 2, attempt)

	symbol, attempt, err = decodeJob("MSFT")
	assert.Equal(t, nil, err)
	assert.Equal(t, "MSFT", symbol)
	assert.Equal(t, 0, attempt)

	_, _, err = decodeJob("AAPL|x")
	assert.NotEqual(t, nil, err)

	_, _, err = decodeJob("")
	assert.NotEqual(t, nil, err)
}
