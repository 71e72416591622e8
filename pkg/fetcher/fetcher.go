// pkg/fetcher/fetcher.go
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/NivBraz/topworkplaces/internal/models"
)

const maxBodySize = 10 << 20

type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	config  FetcherConfig
	baseURL *url.URL
}

type FetcherConfig struct {
	BaseURL           string
	RequestsPerSecond int
	Burst             int
	Timeout           time.Duration // zero means no client timeout
	UserAgent         string
}

// HTTPError is returned for responses outside the 2xx range.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

type requestIDKey struct{}

// WithRequestID attaches an id that is sent as X-Request-ID on every request
// made with the returned context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func New(config FetcherConfig) (*Fetcher, error) {
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = 10
	}
	if config.Burst <= 0 {
		config.Burst = 1
	}
	if config.UserAgent == "" {
		config.UserAgent = "TopWorkplaces/1.0"
	}

	base, err := url.Parse(strings.TrimSpace(config.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", config.BaseURL)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: missing host", config.BaseURL)
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				DialContext: (&net.Dialer{
					Timeout:   30 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
		config:  config,
		baseURL: base,
	}, nil
}

// FetchShifts returns the raw body of GET /shifts.
func (f *Fetcher) FetchShifts(ctx context.Context) ([]byte, error) {
	return f.Fetch(ctx, f.endpoint("shifts"))
}

// FetchWorkplace returns the raw body of GET /workplaces/{id}.
func (f *Fetcher) FetchWorkplace(ctx context.Context, id models.ID) ([]byte, error) {
	if id == "" {
		return nil, fmt.Errorf("empty workplace id")
	}
	return f.Fetch(ctx, f.endpoint("workplaces", string(id)))
}

// endpoint appends path-escaped segments to the base URL.
func (f *Fetcher) endpoint(segments ...string) string {
	u := *f.baseURL
	path := strings.TrimRight(u.Path, "/")
	rawPath := strings.TrimRight(u.EscapedPath(), "/")
	for _, s := range segments {
		path += "/" + s
		rawPath += "/" + url.PathEscape(s)
	}
	u.Path = path
	u.RawPath = rawPath
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// Fetch performs a single GET. There are no retries; the first failure is
// returned to the caller.
func (f *Fetcher) Fetch(ctx context.Context, urlStr string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", f.config.UserAgent)
	if id := requestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching URL: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{
			Method:     http.MethodGet,
			URL:        urlStr,
			StatusCode: resp.StatusCode,
			Body:       excerpt(body, 200),
		}
	}

	return body, nil
}

func excerpt(body []byte, n int) string {
	s := strings.TrimSpace(string(body))
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}

// CloseIdleConnections closes keep-alive connections that are not in use.
func (f *Fetcher) CloseIdleConnections() {
	f.client.CloseIdleConnections()
}
