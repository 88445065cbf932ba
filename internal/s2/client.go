package s2

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// BaseURL is the Semantic Scholar Academic Graph API base URL.
	BaseURL = "https://api.semanticscholar.org/graph/v1"

	// DefaultMinDelay is the minimum delay between any two requests.
	// Unauthenticated S2 access allows roughly one request per second.
	DefaultMinDelay = time.Second

	// Rolling-window throttling: after DefaultWindowCap requests inside
	// DefaultWindowSpan, the client cools down for DefaultCooldown before
	// the counter resets.
	DefaultWindowCap  = 90
	DefaultWindowSpan = 5 * time.Minute
	DefaultCooldown   = 30 * time.Second

	// Retry policy for 429 and transient failures: base × 2^attempt.
	DefaultMaxRetries  = 3
	DefaultBackoffBase = 2 * time.Second

	// DefaultPageSize is the limit used for paginated citation fetches.
	DefaultPageSize = 100

	// DefaultBatchSize is the maximum ids per batch lookup request.
	DefaultBatchSize = 100

	// DefaultPaperFields are the fields requested for paper lookups.
	DefaultPaperFields = "title,abstract,authors,year,venue,url,citationCount,referenceCount,externalIds"
)

// Client is a rate-limited HTTP client for the S2 Academic Graph API.
// The limiter and the rolling-window counters are the only state shared
// between concurrent callers; both are internally synchronized.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
	baseURL    string
	log        *zap.Logger

	mu          sync.Mutex
	windowStart time.Time
	windowCount int

	windowCap   int
	windowSpan  time.Duration
	cooldown    time.Duration
	maxRetries  int
	backoffBase time.Duration
	pageSize    int
	batchSize   int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the API key for authenticated requests.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

// WithMinDelay sets the minimum delay between requests.
func WithMinDelay(d time.Duration) ClientOption {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Every(d), 1) }
}

// WithWindow configures the rolling request window: after cap requests within
// span, the client sleeps for cooldown.
func WithWindow(cap int, span, cooldown time.Duration) ClientOption {
	return func(c *Client) {
		c.windowCap = cap
		c.windowSpan = span
		c.cooldown = cooldown
	}
}

// WithRetryPolicy sets the retry count and backoff base for 429 responses
// and transient failures.
func WithRetryPolicy(maxRetries int, backoffBase time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.backoffBase = backoffBase
	}
}

// WithPageSize sets the page size for paginated fetches.
func WithPageSize(n int) ClientOption {
	return func(c *Client) { c.pageSize = n }
}

// WithLogger sets the structured logger.
func WithLogger(log *zap.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// NewClient creates a new S2 API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		limiter:     rate.NewLimiter(rate.Every(DefaultMinDelay), 1),
		baseURL:     BaseURL,
		log:         zap.NewNop(),
		windowCap:   DefaultWindowCap,
		windowSpan:  DefaultWindowSpan,
		cooldown:    DefaultCooldown,
		maxRetries:  DefaultMaxRetries,
		backoffBase: DefaultBackoffBase,
		pageSize:    DefaultPageSize,
		batchSize:   DefaultBatchSize,
	}

	if key := os.Getenv("S2_API_KEY"); key != "" {
		c.apiKey = key
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// pace enforces the minimum inter-request delay and the rolling-window cap.
// The window counters are read and updated under the mutex; the cooldown
// sleep happens outside it so other callers observe the advanced window.
func (c *Client) pace(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	c.mu.Lock()
	now := time.Now()
	if c.windowStart.IsZero() || now.Sub(c.windowStart) > c.windowSpan {
		c.windowStart = now
		c.windowCount = 0
	}
	c.windowCount++
	var sleep time.Duration
	if c.windowCount > c.windowCap {
		sleep = c.cooldown
		c.windowStart = now.Add(sleep)
		c.windowCount = 0
	}
	c.mu.Unlock()

	if sleep > 0 {
		c.log.Info("request window exhausted, cooling down",
			zap.Duration("cooldown", sleep))
		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// do issues one API call with pacing and the 429/transient retry policy,
// decoding the JSON response into v.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, v any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.backoffBase * (1 << (attempt - 1))
			c.log.Debug("retrying S2 request",
				zap.String("path", path),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := c.pace(ctx); err != nil {
			return err
		}

		var reader *bytes.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		} else {
			reader = bytes.NewReader(nil)
		}
		req, err := http.NewRequestWithContext(ctx, method, u, reader)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.apiKey != "" {
			req.Header.Set("x-api-key", c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Timeouts and transport errors are retryable.
			lastErr = fmt.Errorf("%w: %v", ErrNetworkError, err)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			resp.Body.Close()
			lastErr = ErrRateLimited
			continue
		case resp.StatusCode >= 500:
			resp.Body.Close()
			lastErr = &APIError{StatusCode: resp.StatusCode, Message: "server error"}
			continue
		case resp.StatusCode == http.StatusNotFound:
			resp.Body.Close()
			return ErrNotFound
		case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
			resp.Body.Close()
			return fmt.Errorf("%w: status %d", ErrAuthError, resp.StatusCode)
		case resp.StatusCode >= 400:
			resp.Body.Close()
			return &APIError{StatusCode: resp.StatusCode, Message: "client error"}
		}

		err = json.NewDecoder(resp.Body).Decode(v)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		return nil
	}
	return fmt.Errorf("retries exhausted: %w", lastErr)
}

// GetPaper fetches a paper by identifier (S2 id, "DOI:...", "ARXIV:...").
func (c *Client) GetPaper(ctx context.Context, paperID string) (*Paper, error) {
	q := url.Values{"fields": {DefaultPaperFields}}
	var paper Paper
	if err := c.do(ctx, http.MethodGet, "/paper/"+url.PathEscape(paperID), q, nil, &paper); err != nil {
		return nil, err
	}
	if paper.PaperID == "" {
		return nil, ErrNotFound
	}
	return &paper, nil
}

// SearchPapers searches for papers by keyword relevance.
func (c *Client) SearchPapers(ctx context.Context, query string, limit int) ([]Paper, error) {
	if limit <= 0 {
		limit = 20
	}
	q := url.Values{
		"query":  {query},
		"fields": {DefaultPaperFields},
		"limit":  {strconv.Itoa(limit)},
	}
	var resp searchResponse
	if err := c.do(ctx, http.MethodGet, "/paper/search", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Citations fetches one page of papers citing the given paper.
func (c *Client) Citations(ctx context.Context, paperID string, offset, limit int) ([]Paper, error) {
	return c.pagedLinks(ctx, paperID, "citations", offset, limit)
}

// References fetches one page of papers referenced by the given paper.
func (c *Client) References(ctx context.Context, paperID string, offset, limit int) ([]Paper, error) {
	return c.pagedLinks(ctx, paperID, "references", offset, limit)
}

func (c *Client) pagedLinks(ctx context.Context, paperID, kind string, offset, limit int) ([]Paper, error) {
	if limit <= 0 {
		limit = c.pageSize
	}
	q := url.Values{
		"fields": {"title,abstract,authors,year,venue,url,citationCount,externalIds"},
		"offset": {strconv.Itoa(offset)},
		"limit":  {strconv.Itoa(limit)},
	}
	var resp pagedResponse
	path := "/paper/" + url.PathEscape(paperID) + "/" + kind
	if err := c.do(ctx, http.MethodGet, path, q, nil, &resp); err != nil {
		return nil, err
	}
	papers := make([]Paper, 0, len(resp.Data))
	for _, r := range resp.Data {
		switch {
		case r.CitingPaper != nil:
			papers = append(papers, *r.CitingPaper)
		case r.CitedPaper != nil:
			papers = append(papers, *r.CitedPaper)
		}
	}
	return papers, nil
}

// AllCitations fetches papers citing the given paper across pages until an
// empty page is returned or max results are accumulated, deduplicating by
// paper id across pages.
func (c *Client) AllCitations(ctx context.Context, paperID string, max int) ([]Paper, error) {
	return c.allPages(ctx, paperID, "citations", max)
}

// AllReferences fetches referenced papers across pages with the same
// termination and dedup rules as AllCitations.
func (c *Client) AllReferences(ctx context.Context, paperID string, max int) ([]Paper, error) {
	return c.allPages(ctx, paperID, "references", max)
}

func (c *Client) allPages(ctx context.Context, paperID, kind string, max int) ([]Paper, error) {
	var all []Paper
	seen := map[string]bool{}
	for offset := 0; max <= 0 || len(all) < max; offset += c.pageSize {
		page, err := c.pagedLinks(ctx, paperID, kind, offset, c.pageSize)
		if err != nil {
			return all, err
		}
		if len(page) == 0 {
			break
		}
		for _, p := range page {
			if p.PaperID == "" || seen[p.PaperID] {
				continue
			}
			seen[p.PaperID] = true
			all = append(all, p)
			if max > 0 && len(all) >= max {
				break
			}
		}
	}
	return all, nil
}

// Batch looks up papers by identifier in groups of the configured batch
// size. Unresolvable ids come back as nulls from the API and are dropped.
func (c *Client) Batch(ctx context.Context, ids []string) ([]Paper, error) {
	var all []Paper
	for start := 0; start < len(ids); start += c.batchSize {
		end := start + c.batchSize
		if end > len(ids) {
			end = len(ids)
		}
		q := url.Values{"fields": {DefaultPaperFields}}
		var papers []*Paper
		if err := c.do(ctx, http.MethodPost, "/paper/batch", q, batchRequest{IDs: ids[start:end]}, &papers); err != nil {
			return all, err
		}
		for _, p := range papers {
			if p != nil && p.PaperID != "" {
				all = append(all, *p)
			}
		}
	}
	return all, nil
}
