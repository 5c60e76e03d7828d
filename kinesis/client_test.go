package kinesis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient returns a client for srv with a deterministic signer.
func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := New(Config{PublicKey: "public", PrivateKey: "secret", BaseURL: srv.URL + "/"}, zerolog.Nop())
	require.NoError(t, err)
	c.signer = &HMACSigner{PublicKey: "public", PrivateKey: "secret", Now: fixedClock(newYear)}
	return c
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{PublicKey: "a", PrivateKey: "b", BaseURL: "https://example.test"}.Validate())

	err := Config{}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "public key")
	assert.Contains(t, err.Error(), "private key")
	assert.Contains(t, err.Error(), "base URL")

	assert.Error(t, Config{PublicKey: "a", PrivateKey: "b", BaseURL: "client-api"}.Validate())
	assert.Error(t, Config{PublicKey: "a", PrivateKey: "b", BaseURL: "https://example.test", RequestsPerSecond: -1}.Validate())
}

func TestCandles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/exchange/ohlc/KAU_GBP", r.URL.Path)
		assert.Equal(t, "1440", r.URL.Query().Get("timeFrame"))
		assert.Equal(t, "2023-03-15T00:00:00.000Z", r.URL.Query().Get("fromDate"))
		assert.Equal(t, "2023-03-15T23:59:59.999Z", r.URL.Query().Get("toDate"))
		assert.Equal(t, "public", r.Header.Get("x-api-key"))
		assert.Equal(t, "1672531200000", r.Header.Get("x-nonce"))
		// the query string is not signed.
		assert.Equal(t, Signature("secret", "1672531200000", "GET", "/v1/exchange/ohlc/KAU_GBP", ""), r.Header.Get("x-signature"))
		w.Write([]byte(`[{"timestamp":"2023-03-15T00:00:00.000Z","open":91.5,"high":"92.25","low":90.0,"close":91}]`))
	}))
	defer srv.Close()

	from := time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC)
	to := from.Add(24*time.Hour - time.Millisecond)
	candles, err := newTestClient(t, srv).Candles(context.Background(), "KAU_GBP", from, to, Daily)
	require.NoError(t, err)
	require.Len(t, candles, 1)

	c := candles[0]
	assert.True(t, c.Low.Equal(decimal.RequireFromString("90")), "low = %s", c.Low)
	assert.True(t, c.High.Equal(decimal.RequireFromString("92.25")), "high = %s", c.High)
	assert.True(t, c.Timestamp.Equal(from), "timestamp = %s", c.Timestamp)
}

func TestCandlesEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	candles, err := newTestClient(t, srv).Candles(context.Background(), "KAG_GBP", newYear, newYear, Daily)
	require.NoError(t, err)
	assert.Empty(t, candles)
}

func TestCandlesStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid signature"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).Candles(context.Background(), "KAU_GBP", newYear, newYear, Daily)
	require.Error(t, err)

	var status *StatusError
	require.True(t, errors.As(err, &status), "error %v is not a *StatusError", err)
	assert.Equal(t, http.StatusUnauthorized, status.StatusCode)
	assert.Contains(t, string(status.Body), "invalid signature")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCandlesMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"a list"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).Candles(context.Background(), "KAU_GBP", newYear, newYear, Daily)
	assert.ErrorIs(t, err, ErrBadResponse)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestCandlesWithoutLow(t *testing.T) {
	for _, body := range []string{
		`[{"timestamp":1680307200000,"open":91,"high":92,"close":91.5}]`,
		`[{"timestamp":1680307200000,"open":91,"high":92,"low":null,"close":91.5}]`,
	} {
		t.Run(body, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer srv.Close()

			candles, err := newTestClient(t, srv).Candles(context.Background(), "KAU_GBP", newYear, newYear, Daily)
			assert.Nil(t, candles)
			assert.ErrorIs(t, err, ErrBadResponse)
		})
	}
}

func TestCandleLowAsString(t *testing.T) {
	var c Candle
	require.NoError(t, json.Unmarshal([]byte(`{"timestamp":"2023-04-01T00:00:00Z","low":"0"}`), &c))
	assert.True(t, c.Low.IsZero(), "an explicit zero low is kept")
}

func TestCandlesTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := newTestClient(t, srv)
	srv.Close() // nothing listens anymore

	candles, err := c.Candles(context.Background(), "KAU_GBP", newYear, newYear, Daily)
	assert.Nil(t, candles)
	assert.ErrorIs(t, err, ErrUnavailable)
	var status *StatusError
	assert.False(t, errors.As(err, &status), "a transport error has no status")
}

func TestCandlesCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestClient(t, srv).Candles(ctx, "KAU_GBP", newYear, newYear, Daily)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMidPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/exchange/mid-price/KAU_GBP", r.URL.Path)
		assert.Empty(t, r.URL.RawQuery)
		w.Write([]byte(`{"pair":"KAU_GBP","price":54.123456789}`))
	}))
	defer srv.Close()
	c := newTestClient(t, srv)

	raw, err := c.MidPrice(context.Background(), "KAU_GBP")
	require.NoError(t, err)
	assert.JSONEq(t, `{"pair":"KAU_GBP","price":54.123456789}`, string(raw))

	price, err := c.MidPriceAt(context.Background(), "KAU_GBP", "$.price")
	require.NoError(t, err)
	assert.Equal(t, "54.123456789", price.String())

	_, err = c.MidPriceAt(context.Background(), "KAU_GBP", "$.pair")
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestExtractNumber(t *testing.T) {
	tests := []struct {
		name, body, path, want string
	}{
		{"number", `{"mid":"12.5"}`, "$.mid", "12.5"},
		{"nested", `{"data":{"mid":7}}`, "$.data.mid", "7"},
		{"list", `[{"mid":3.25},{"mid":4}]`, "$[*].mid", "3.25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractNumber([]byte(tt.body), tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
