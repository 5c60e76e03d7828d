// Package kinesis is a client for the authenticated Kinesis market data API.
//
// Every request is signed (see HMACSigner). A request is sent at most once:
// transport failures are reported as ErrUnavailable and non-success responses
// as *StatusError, there is no retry.
package kinesis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// wireTimeFormat is the format of fromDate and toDate query parameters.
const wireTimeFormat = "2006-01-02T15:04:05.000Z"

// Config holds the client settings. Keys and URL are required.
type Config struct {
	PublicKey  string
	PrivateKey string
	BaseURL    string // e.g. https://client-api.kinesis.money

	Timeout           time.Duration // 0 keeps the transport default
	RequestsPerSecond float64       // 0 is unlimited
	CacheDir          string        // when set, responses are cached on disk for the day
}

// Validate checks required settings.
func (c Config) Validate() error {
	var errs error
	if c.PublicKey == "" {
		errs = errors.Join(errs, errors.New("kinesis public key is missing"))
	}
	if c.PrivateKey == "" {
		errs = errors.Join(errs, errors.New("kinesis private key is missing"))
	}
	if c.BaseURL == "" {
		errs = errors.Join(errs, errors.New("kinesis API base URL is missing"))
	} else if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = errors.Join(errs, fmt.Errorf("kinesis API base URL %q is not an absolute URL", c.BaseURL))
	}
	if c.RequestsPerSecond < 0 {
		errs = errors.Join(errs, fmt.Errorf("requests per second must not be negative, got %v", c.RequestsPerSecond))
	}
	return errs
}

// Client queries the market data endpoints.
type Client struct {
	baseURL string
	signer  Signer
	http    *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

// New creates a client signing requests with an HMACSigner.
func New(cfg Config, log zerolog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var transport http.RoundTripper = http.DefaultTransport
	if cfg.CacheDir != "" {
		transport = newDiskCache(transport, cfg.CacheDir, log)
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		signer:  NewHMACSigner(cfg.PublicKey, cfg.PrivateKey),
		http:    &http.Client{Timeout: cfg.Timeout, Transport: transport},
		limiter: limiter,
		log:     log,
	}, nil
}

// Candles returns the OHLC candles of pair between from and to, one per
// timeframe. An empty result is not an error.
func (c *Client) Candles(ctx context.Context, pair string, from, to time.Time, timeframe Timeframe) ([]Candle, error) {
	path := "/v1/exchange/ohlc/" + url.PathEscape(pair)
	query := url.Values{}
	query.Set("timeFrame", timeframe.String())
	query.Set("fromDate", from.UTC().Format(wireTimeFormat))
	query.Set("toDate", to.UTC().Format(wireTimeFormat))

	body, err := c.get(ctx, path, query)
	if err != nil {
		return nil, err
	}
	var candles []Candle
	if err := json.Unmarshal(body, &candles); err != nil {
		return nil, fmt.Errorf("%w: candles for %s: %w", ErrBadResponse, pair, err)
	}
	return candles, nil
}

// MidPrice returns the raw body of the mid price of pair.
func (c *Client) MidPrice(ctx context.Context, pair string) (json.RawMessage, error) {
	body, err := c.get(ctx, "/v1/exchange/mid-price/"+url.PathEscape(pair), nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// MidPriceAt returns the number found at the JSONPath expression path in the
// mid price of pair, e.g. "$.price".
func (c *Client) MidPriceAt(ctx context.Context, pair, path string) (decimal.Decimal, error) {
	body, err := c.MidPrice(ctx, pair)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return extractNumber(body, path)
}

// extractNumber evaluates the JSONPath expression path on a JSON document and
// reads the result as an exact decimal.
func extractNumber(body []byte, path string) (decimal.Decimal, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var jobj any
	if err := dec.Decode(&jobj); err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: evaluating %q: %w", ErrBadResponse, path, err)
	}
	// jsonpath may return a list of one answer, or the answer itself: keep the first one if any.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	switch v := jval.(type) {
	case json.Number:
		return decimal.NewFromString(string(v))
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("%w: %q at %q is not a number", ErrBadResponse, v, path)
		}
		return d, nil
	default:
		return decimal.Decimal{}, fmt.Errorf("%w: value at %q is not a number: %v", ErrBadResponse, path, jval)
	}
}

// get sends a signed GET request and returns the body of a success response.
// The signature covers the path without the query string.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	addr := c.baseURL + path
	if len(query) > 0 {
		addr += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot create http request %q: %w", addr, err)
	}
	req.Header = c.signer.Sign(http.MethodGet, path, "")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("path", path).Msg("kinesis request failed")
		return nil, fmt.Errorf("%w: GET %s: %w", ErrUnavailable, path, err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return nil, fmt.Errorf("%w: reading GET %s: %w", ErrUnavailable, path, err)
	}
	c.log.Debug().Str("path", path).Int("status", resp.StatusCode).Int("bytes", buf.Len()).Msg("kinesis response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			Method:     http.MethodGet,
			Path:       path,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       buf.Bytes(),
		}
	}
	return buf.Bytes(), nil
}
