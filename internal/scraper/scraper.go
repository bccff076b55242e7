// Package scraper fetches the service status page and extracts alerts per line.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"go.uber.org/zap"

	"github.com/NordCoder/trenes-alerts/internal/domain/alert"
)

type Config struct {
	URL       string
	UserAgent string
	Attempts  uint
	Delay     time.Duration
	MaxDelay  time.Duration
}

// StatusError is a non-2xx answer from the source.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.Code)
}

// Temporary reports whether another attempt may succeed.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// ParseError means the page arrived but could not be read as HTML.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "parse page: " + e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

type Scraper struct {
	client *http.Client
	cfg    Config
	log    *zap.Logger
}

func New(client *http.Client, cfg Config) *Scraper {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 3
	}
	if cfg.Delay <= 0 {
		cfg.Delay = time.Second
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 10 * time.Second
	}
	return &Scraper{
		client: client,
		cfg:    cfg,
		log:    zap.L().With(zap.String("component", "scraper")),
	}
}

func (s *Scraper) WithLogger(l *zap.Logger) *Scraper {
	if l == nil {
		return s
	}
	cp := *s
	cp.log = l.With(zap.String("component", "scraper"))
	return &cp
}

// Fetch downloads and parses the page. Transport errors, 429 and 5xx are retried.
func (s *Scraper) Fetch(ctx context.Context) (map[string][]alert.Raw, error) {
	var (
		out     map[string][]alert.Raw
		lastErr error
	)
	err := retry.Do(
		func() error {
			res, err := s.fetchOnce(ctx)
			if err != nil {
				lastErr = err
				return err
			}
			out = res
			return nil
		},
		retry.Attempts(s.cfg.Attempts),
		retry.Delay(s.cfg.Delay),
		retry.MaxDelay(s.cfg.MaxDelay),
		retry.MaxJitter(s.cfg.Delay/2),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			s.log.Info("retrying fetch", zap.Uint("attempt", n+1), zap.Error(err))
		}),
		retry.RetryIf(retryable),
	)
	if err != nil {
		if lastErr == nil || ctx.Err() != nil {
			lastErr = err
		}
		return nil, fmt.Errorf("fetch %s: %w", s.cfg.URL, lastErr)
	}
	return out, nil
}

func (s *Scraper) fetchOnce(ctx context.Context) (map[string][]alert.Raw, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.URL, http.NoBody)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("create request: %w", err))
	}
	if s.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", s.cfg.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Warn("request failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return nil, err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		if cerr := resp.Body.Close(); cerr != nil {
			s.log.Warn("close body", zap.Error(cerr))
		}
	}()

	s.log.Debug("request completed",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: s.cfg.URL, Code: resp.StatusCode}
	}

	res, err := Parse(resp.Body)
	if err != nil {
		return nil, retry.Unrecoverable(&ParseError{Err: err})
	}
	return res, nil
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var perr *ParseError
	if errors.As(err, &perr) {
		return false
	}
	var serr *StatusError
	if errors.As(err, &serr) {
		return serr.Temporary()
	}
	return true
}
