// Package catalog talks to the remote product API.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/niksmo/farmstore/internal/core/domain"
	"github.com/niksmo/farmstore/internal/core/port"
	"github.com/niksmo/farmstore/pkg/retry"
)

const (
	defaultTimeout     = 10 * time.Second
	defaultMaxAttempts = 3
	maxBodySize        = 8 << 20
)

var (
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidAPIURL    = errors.New("invalid catalog api url")
)

var (
	_ port.ProductsFetcher = (*Client)(nil)
	_ port.ProductsAdmin   = (*Client)(nil)
)

type Opt func(*opts) error

type opts struct {
	httpClient *http.Client
	idField    string
	retry      retry.RetryConfig
}

func HTTPClientOpt(c *http.Client) Opt {
	return func(o *opts) error {
		if c == nil {
			return errors.New("nil http client")
		}
		o.httpClient = c
		return nil
	}
}

func TimeoutOpt(d time.Duration) Opt {
	return func(o *opts) error {
		if d <= 0 {
			return fmt.Errorf("invalid timeout %s", d)
		}
		o.httpClient = &http.Client{Timeout: d}
		return nil
	}
}

// IDFieldOpt sets the record key the remote API keeps product ids under.
func IDFieldOpt(field string) Opt {
	return func(o *opts) error {
		if strings.TrimSpace(field) == "" {
			return errors.New("empty id field")
		}
		o.idField = field
		return nil
	}
}

func RetryOpt(maxAttempts int, backoff retry.Backoff) Opt {
	return func(o *opts) error {
		if maxAttempts < 1 {
			return fmt.Errorf("invalid max attempts %d", maxAttempts)
		}
		o.retry.MaxAttempts = maxAttempts
		if backoff != nil {
			o.retry.Backoff = backoff
		}
		return nil
	}
}

// A Client reads the product list and performs admin writes against the
// remote product API.
type Client struct {
	hc      *http.Client
	baseURL *url.URL
	idField string
	retry   retry.RetryConfig
}

func NewClient(apiURL string, options ...Opt) (*Client, error) {
	const op = "catalog.NewClient"

	u, err := url.Parse(strings.TrimRight(apiURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrInvalidAPIURL, apiURL)
	}

	o := opts{
		httpClient: &http.Client{Timeout: defaultTimeout},
		idField:    DefaultIDField,
		retry: retry.RetryConfig{
			MaxAttempts: defaultMaxAttempts,
		},
	}
	for _, opt := range options {
		if err := opt(&o); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	o.retry.ShouldRetry = isTransient

	return &Client{
		hc:      o.httpClient,
		baseURL: u,
		idField: o.idField,
		retry:   o.retry,
	}, nil
}

// FetchProducts reads GET <api>/products. Network errors and 5xx responses
// are retried.
func (c *Client) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "Client.FetchProducts"
	log := slog.With("op", op)

	data, err := retry.DoWithResult(ctx, c.retry, func() ([]byte, error) {
		data, err := c.get(ctx, "products")
		if err != nil {
			log.Debug("fetch attempt failed", "err", err)
		}
		return data, err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	products, err := Normalize(data, c.idField)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	log.Debug("products fetched", "nProducts", len(products))
	return products, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path), nil)
	if err != nil {
		return nil, retry.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req)
}

// do sends req and returns the body of a 2xx response.
func (c *Client) do(req *http.Request) ([]byte, error) {
	res, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize))
	if err != nil {
		return nil, err
	}

	switch {
	case res.StatusCode == http.StatusUnauthorized,
		res.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, res.Status)
	case res.StatusCode < 200 || res.StatusCode > 299:
		return nil, &statusError{code: res.StatusCode, status: res.Status}
	}
	return body, nil
}

func (c *Client) endpoint(segments ...string) string {
	return c.baseURL.JoinPath(segments...).String()
}

type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnexpectedStatus, e.status)
}

func (e *statusError) Unwrap() error { return ErrUnexpectedStatus }

func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500
	}
	return !errors.Is(err, ErrUnauthorized)
}
