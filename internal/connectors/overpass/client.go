package overpass

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jcherranz/spain-power-grid-analysis/internal/core/domain"
	"github.com/jcherranz/spain-power-grid-analysis/internal/core/ports/driven"
	"github.com/jcherranz/spain-power-grid-analysis/internal/logger"
)

const (
	// DefaultURL is the public Overpass API interpreter endpoint.
	DefaultURL = "https://overpass-api.de/api/interpreter"

	// DefaultTimeout is the default HTTP request timeout. Bbox queries
	// over a metropolitan area can take tens of seconds server-side.
	DefaultTimeout = 60 * time.Second

	// MaxRetries is the maximum number of retries for transient errors.
	MaxRetries = 3

	// RetryDelay is the initial delay between retries.
	RetryDelay = time.Second
)

// Ensure Client implements the extractor port.
var _ driven.Extractor = (*Client)(nil)

// Options configures a Client. The zero value selects the defaults.
type Options struct {
	// URL overrides the interpreter endpoint.
	URL string

	// Timeout overrides the HTTP request timeout. The same value,
	// rounded to seconds, is passed to Overpass as the server-side
	// query timeout.
	Timeout time.Duration

	// MaxRetries overrides the retry budget for transient failures.
	// Negative disables retries entirely.
	MaxRetries int

	// RetryDelay overrides the base delay between retries.
	RetryDelay time.Duration

	// HTTPClient overrides the HTTP client. Useful for testing.
	HTTPClient *http.Client

	// RateLimit overrides the request throttle.
	RateLimit *RateLimitConfig
}

// Client queries the Overpass API and decodes results into domain
// records. Safe for sequential use by the pipeline; the rate limiter
// keeps multi-query commands polite to the shared public endpoint.
type Client struct {
	url         string
	httpClient  *http.Client
	maxRetries  int
	retryDelay  time.Duration
	rateLimiter *RateLimiter
}

// NewClient creates an Overpass client.
func NewClient(opts Options) *Client {
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = MaxRetries
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = RetryDelay
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}

	rl := NewRateLimiter()
	if opts.RateLimit != nil {
		rl = NewRateLimiterWithConfig(*opts.RateLimit)
	}

	return &Client{
		url:         opts.URL,
		httpClient:  opts.HTTPClient,
		maxRetries:  opts.MaxRetries,
		retryDelay:  opts.RetryDelay,
		rateLimiter: rl,
	}
}

// queryTimeoutSeconds is the server-side timeout embedded in queries.
func (c *Client) queryTimeoutSeconds() int {
	if c.httpClient.Timeout <= 0 {
		return int(DefaultTimeout / time.Second)
	}
	return int(c.httpClient.Timeout / time.Second)
}

// Extract queries the bounding region for power infrastructure.
func (c *Client) Extract(ctx context.Context, bbox domain.BoundingBox) (*domain.ExtractionResult, error) {
	if err := bbox.Validate(); err != nil {
		return nil, err
	}

	logger.Info("querying area: %s", bbox)
	body, err := c.post(ctx, infrastructureQuery(bbox, c.queryTimeoutSeconds()))
	if err != nil {
		return nil, err
	}

	resp, err := decodeResponse(body)
	if err != nil {
		return nil, err
	}

	result := classify(resp)
	logger.Info("retrieved %d elements: %d plants, %d substations, %d power lines",
		len(resp.Elements), len(result.Plants), len(result.Substations), result.PowerLines)
	return result, nil
}

// SubstationByID fetches a single substation by OSM way id. Substations
// large enough to analyse individually are mapped as ways.
func (c *Client) SubstationByID(ctx context.Context, id int64) (*domain.InfrastructureRecord, error) {
	body, err := c.post(ctx, elementByIDQuery(domain.ElementWay, id, c.queryTimeoutSeconds()))
	if err != nil {
		return nil, err
	}

	resp, err := decodeResponse(body)
	if err != nil {
		return nil, err
	}
	if len(resp.Elements) == 0 {
		return nil, fmt.Errorf("substation %d: %w", id, domain.ErrElementNotFound)
	}

	rec, err := recordFromElement(resp.Elements[0], domain.KindSubstation)
	if err != nil {
		return nil, fmt.Errorf("substation %d: %w", id, err)
	}
	return &rec, nil
}

// PlantsAround returns plant records within radiusMeters of a point.
func (c *Client) PlantsAround(ctx context.Context, center domain.GeoPoint, radiusMeters int) ([]domain.InfrastructureRecord, error) {
	body, err := c.post(ctx, plantsAroundQuery(center, radiusMeters, c.queryTimeoutSeconds()))
	if err != nil {
		return nil, err
	}

	resp, err := decodeResponse(body)
	if err != nil {
		return nil, err
	}

	var plants []domain.InfrastructureRecord
	for _, elem := range resp.Elements {
		if elem.Tags["power"] != "plant" {
			continue
		}
		rec, err := recordFromElement(elem, domain.KindPlant)
		if err != nil {
			logger.Warn("skipping %s/%d: %v", elem.Type, elem.ID, err)
			continue
		}
		plants = append(plants, rec)
	}
	return plants, nil
}

// Ping performs a minimal count query to verify the API is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.post(ctx, pingQuery())
	return err
}

// post executes one Overpass query with retries for transient failures.
// Network errors, 429 and 5xx responses are retried with linear backoff
// up to the retry budget, then surfaced as domain.ErrSourceUnavailable.
func (c *Client) post(ctx context.Context, query string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			logger.Debug("retrying overpass query (attempt %d/%d)", attempt, c.maxRetries)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * c.retryDelay):
			}
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, err := c.doRequest(ctx, query)
		if err == nil {
			return body, nil
		}
		lastErr = err

		apiErr, ok := IsAPIError(err)
		if ok && !retryable(apiErr.StatusCode) {
			// Client-side query errors will not get better on retry.
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, lastErr)
}

// doRequest performs a single HTTP exchange.
func (c *Client) doRequest(ctx context.Context, query string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(query))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		c.rateLimiter.RecordRateLimitError(retryAfter)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			URL:        c.url,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return body, nil
}
