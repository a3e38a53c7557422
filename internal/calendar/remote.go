package calendar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/username/workday-calendar/internal/metrics"
)

const (
	// DefaultSourceURL is the community mirror of the Taiwan government calendar
	DefaultSourceURL   = "https://cdn.jsdelivr.net/gh/ruyut/TaiwanCalendar/data/{year}.json"
	defaultHTTPTimeout = 10 * time.Second
	yearPlaceholder    = "{year}"
	maxResponseBytes   = 4 << 20
	remoteSourceName   = "remote"
)

// RemoteSource fetches a year's records over HTTP from a URL template
// containing a {year} placeholder.
type RemoteSource struct {
	urlTemplate string
	httpClient  *http.Client
	limiter     *rate.Limiter
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// RemoteOption customises a RemoteSource
type RemoteOption func(*RemoteSource)

// WithHTTPClient replaces the default client. Its timeout is kept as is.
func WithHTTPClient(client *http.Client) RemoteOption {
	return func(s *RemoteSource) {
		s.httpClient = client
	}
}

// WithRateLimit caps outbound requests to limit per second with the given burst
func WithRateLimit(limit float64, burst int) RemoteOption {
	return func(s *RemoteSource) {
		if limit <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(limit), burst)
	}
}

// WithRemoteMetrics reports fetch outcomes to m
func WithRemoteMetrics(m *metrics.Metrics) RemoteOption {
	return func(s *RemoteSource) {
		s.metrics = m
	}
}

// NewRemoteSource creates a new RemoteSource instance
func NewRemoteSource(urlTemplate string, timeout time.Duration, logger *zap.Logger, opts ...RemoteOption) *RemoteSource {
	if urlTemplate == "" {
		urlTemplate = DefaultSourceURL
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	s := &RemoteSource{
		urlTemplate: urlTemplate,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch downloads the records for year. Any failure is logged and yields an
// empty set.
func (s *RemoteSource) Fetch(ctx context.Context, year int) YearDataSet {
	start := time.Now()
	url := s.yearURL(year)

	records, err := s.download(ctx, url, year)
	if err != nil {
		s.logger.Error("Failed to fetch calendar year",
			zap.Int("year", year),
			zap.String("url", url),
			zap.Error(err))
		s.metrics.ObserveFetch(remoteSourceName, metrics.OutcomeError, time.Since(start))
		return nil
	}

	if len(records) == 0 {
		s.logger.Warn("Calendar year has no usable records",
			zap.Int("year", year),
			zap.String("url", url))
		s.metrics.ObserveFetch(remoteSourceName, metrics.OutcomeEmpty, time.Since(start))
		return nil
	}

	s.logger.Info("Calendar year fetched",
		zap.Int("year", year),
		zap.Int("records", len(records)),
		zap.Duration("took", time.Since(start)))
	s.metrics.ObserveFetch(remoteSourceName, metrics.OutcomeOK, time.Since(start))

	return records
}

func (s *RemoteSource) yearURL(year int) string {
	return strings.ReplaceAll(s.urlTemplate, yearPlaceholder, strconv.Itoa(year))
}

// download performs a single GET; there is no retry at this layer
func (s *RemoteSource) download(ctx context.Context, url string, year int) (YearDataSet, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	s.logger.Debug("Fetching calendar year",
		zap.String("url", url),
		zap.Int("year", year))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calendar data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("calendar source returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return decodeYear(body, year, s.logger)
}
