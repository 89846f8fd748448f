package dataset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	defaultFetchTimeout = 30 * time.Second
	defaultReadTimeout  = 2 * time.Minute
)

// Recorder receives load outcomes. metrics.Collectors implements it.
type Recorder interface {
	LoadCompleted(source string, rows int, duration time.Duration, err error)
	CacheHit(source string)
}

type nopRecorder struct{}

func (nopRecorder) LoadCompleted(string, int, time.Duration, error) {}
func (nopRecorder) CacheHit(string)                                 {}

// Loader reads order tables from local paths or http(s) URLs and memoizes
// them in a Cache keyed by the source string.
type Loader struct {
	cache    *Cache
	client   *http.Client
	logger   *slog.Logger
	recorder Recorder
	group    singleflight.Group
	now      func() time.Time

	readTimeout time.Duration
}

type LoaderOption func(*Loader)

func WithHTTPClient(c *http.Client) LoaderOption {
	return func(l *Loader) { l.client = c }
}

func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

func WithRecorder(r Recorder) LoaderOption {
	return func(l *Loader) { l.recorder = r }
}

// WithReadTimeout bounds one shared read of a source, independent of the
// callers waiting on it.
func WithReadTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) { l.readTimeout = d }
}

func WithCache(c *Cache) LoaderOption {
	return func(l *Loader) { l.cache = c }
}

func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		cache:    NewCache(),
		client:   &http.Client{Timeout: defaultFetchTimeout},
		logger:   slog.Default(),
		recorder: nopRecorder{},
		now:      time.Now,

		readTimeout: defaultReadTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the table for source, reading it only when no cached entry
// exists. Concurrent loads of the same source share one read. The read is
// detached from ctx so a caller that gives up does not fail the others
// waiting on it; that caller gets ctx's error while the read completes.
func (l *Loader) Load(ctx context.Context, source string) (*Table, error) {
	if t, ok := l.cache.Get(source); ok {
		l.recorder.CacheHit(source)
		l.logger.Debug("dataset cache hit", "source", source, "records", t.Len())
		return t, nil
	}

	ch := l.group.DoChan(source, func() (any, error) {
		if t, ok := l.cache.Get(source); ok {
			return t, nil
		}

		readCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.readTimeout)
		defer cancel()

		t, err := l.read(readCtx, source)
		if err != nil {
			return nil, err
		}
		l.cache.Set(source, t)
		return t, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Table), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Invalidate forgets the cached table for source so the next Load reads it again.
func (l *Loader) Invalidate(source string) bool {
	return l.cache.Invalidate(source)
}

func (l *Loader) Cache() *Cache {
	return l.cache
}

func (l *Loader) read(ctx context.Context, source string) (*Table, error) {
	start := time.Now()
	l.logger.Info("loading dataset", "source", source)

	rc, err := l.open(ctx, source)
	if err != nil {
		err = &DataLoadError{Source: source, Err: err}
		l.recorder.LoadCompleted(source, 0, time.Since(start), err)
		return nil, err
	}
	defer rc.Close()

	records, err := Parse(rc, source)
	duration := time.Since(start)
	l.recorder.LoadCompleted(source, len(records), duration, err)
	if err != nil {
		return nil, err
	}

	l.logger.Info("dataset loaded",
		"source", source,
		"records", len(records),
		"duration", duration,
	)

	return &Table{Source: source, Records: records, LoadedAt: l.now()}, nil
}

func (l *Loader) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if source == "" {
		return nil, fmt.Errorf("empty source")
	}
	if !isURL(source) {
		return os.Open(source)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch: unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
