package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fjod/deisishop/internal/domain"
	"github.com/fjod/deisishop/pkg/circuitbreaker"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

const maxBodySize = 4 << 20

type rawResponse struct {
	StatusCode int
	Status     string
	Body       []byte
}

// Client talks to the remote shop API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[*rawResponse]
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit caps outbound requests per second. Zero or less disables it.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps)+1)
	}
}

func WithBreaker(cfg circuitbreaker.Config) Option {
	return func(c *Client) {
		cfg.IsSuccessful = func(err error) bool { return !countsAsFailure(err) }
		c.breaker = circuitbreaker.New[*rawResponse](cfg)
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: slog.Default(),
	}
	WithBreaker(circuitbreaker.DefaultConfig("catalog"))(c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// BreakerState exposes the breaker so health checks can report on it.
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return c.getList(ctx, "/products")
}

func (c *Client) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	path := "/products/" + strconv.FormatInt(id, 10)
	res, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, c.fetchError(path, res, err)
	}

	var p domain.Product
	if errDecode := json.Unmarshal(res.Body, &p); errDecode != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, errDecode)
	}
	return &p, nil
}

func (c *Client) ListCategoryProducts(ctx context.Context, category string) ([]domain.Product, error) {
	return c.getList(ctx, "/categories/"+url.PathEscape(category)+"/products")
}

func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	path := "/categories"
	res, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, c.fetchError(path, res, err)
	}
	if !isJSONList(res.Body) {
		return nil, ErrNotAList
	}

	var categories []string
	if errDecode := json.Unmarshal(res.Body, &categories); errDecode != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, errDecode)
	}
	return categories, nil
}

// Buy posts a checkout request. A rejected checkout comes back as a
// *StatusError whose message is the server's body text.
func (c *Client) Buy(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal checkout request: %w", err)
	}

	res, err := c.do(ctx, http.MethodPost, "/buy/", body)
	if err != nil {
		if se, ok := asStatusError(err); ok && res != nil {
			se.Message = checkoutMessage(res.Status, res.Body)
			c.logger.WarnContext(ctx, "checkout rejected", "status", res.StatusCode, "body", se.Body)
			return nil, se
		}
		return nil, err
	}

	if !json.Valid(res.Body) {
		return nil, fmt.Errorf("%w: checkout body is not JSON", ErrInvalidResponse)
	}
	return domain.CheckoutResult(res.Body), nil
}

func (c *Client) getList(ctx context.Context, path string) ([]domain.Product, error) {
	res, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, c.fetchError(path, res, err)
	}
	if !isJSONList(res.Body) {
		return nil, ErrNotAList
	}

	var products []domain.Product
	if errDecode := json.Unmarshal(res.Body, &products); errDecode != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, errDecode)
	}
	return products, nil
}

func (c *Client) fetchError(path string, res *rawResponse, err error) error {
	if se, ok := asStatusError(err); ok && res != nil {
		se.Message = fetchMessage(res.Status, res.Body)
		c.logger.Warn("catalog request failed", "path", path, "status", res.StatusCode, "body", se.Body)
		return se
	}
	return err
}

// do performs one round trip through the limiter and breaker. Non-2xx answers
// return both the response and a *StatusError.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (*rawResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	return c.breaker.Execute(func() (*rawResponse, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, fmt.Errorf("build request %s %s: %w", method, path, err)
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request %s %s: %w", method, path, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return nil, fmt.Errorf("read response %s %s: %w", method, path, err)
		}

		res := &rawResponse{StatusCode: resp.StatusCode, Status: resp.Status, Body: data}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return res, &StatusError{
				StatusCode: resp.StatusCode,
				Status:     resp.Status,
				Body:       string(data),
				Message:    resp.Status,
			}
		}
		return res, nil
	})
}

func asStatusError(err error) (*StatusError, bool) {
	se, ok := err.(*StatusError)
	return se, ok
}

func isJSONList(body []byte) bool {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}
