package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/subcommands"
	"github.com/rosskouk/kinesiscount/date"
	"github.com/rosskouk/kinesiscount/kinesis"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withAPI points the API settings at a test server.
func withAPI(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	withSettings(t, map[*string]string{
		apiURL:     srv.URL,
		publicKey:  "public",
		privateKey: "secret",
		cacheDir:   "",
		envFile:    "",
	})
}

func TestCandlesCommand(t *testing.T) {
	withAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/exchange/ohlc/KAU_GBP", r.URL.Path)
		assert.Equal(t, "2023-03-14T00:00:00.000Z", r.URL.Query().Get("fromDate"))
		assert.Equal(t, "2023-03-15T23:59:59.999Z", r.URL.Query().Get("toDate"))
		assert.Equal(t, "60", r.URL.Query().Get("timeFrame"))
		w.Write([]byte(`[{"timestamp":"2023-03-14T00:00:00.000Z","open":91.5,"high":92.25,"low":90,"close":91}]`))
	})

	var out bytes.Buffer
	got := run(t, &candlesCmd{out: &out}, "-pair", "KAU_GBP", "-from", "2023-03-14", "-to", "2023-03-15", "-timeframe", "60")
	require.Equal(t, subcommands.ExitSuccess, got)
	assert.NotEmpty(t, out.String())
}

func TestCandlesCommandErrors(t *testing.T) {
	withAPI(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})

	tests := []struct {
		name string
		args []string
		want subcommands.ExitStatus
	}{
		{"no pair", nil, subcommands.ExitUsageError},
		{"bad timeframe", []string{"-pair", "KAU_GBP", "-timeframe", "0"}, subcommands.ExitUsageError},
		{"bad day", []string{"-pair", "KAU_GBP", "-from", "15/03/2023"}, subcommands.ExitUsageError},
		{"api error", []string{"-pair", "KAU_GBP", "-from", "2023-03-15"}, subcommands.ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			assert.Equal(t, tt.want, run(t, &candlesCmd{out: &out}, tt.args...))
			assert.Empty(t, out.String())
		})
	}
}

func TestParseDays(t *testing.T) {
	from, to, err := parseDays("2023-03-14", "")
	require.NoError(t, err)
	assert.Equal(t, date.New(2023, 3, 14), from)
	assert.Equal(t, from, to)

	from, to, err = parseDays("2023-03-14", "2023-03-20")
	require.NoError(t, err)
	assert.Equal(t, date.New(2023, 3, 20), to)

	from, to, err = parseDays("", "")
	require.NoError(t, err)
	assert.Equal(t, date.Today(), from)
	assert.Equal(t, from, to)

	_, _, err = parseDays("2023-03-20", "2023-03-14")
	assert.Error(t, err)
	_, _, err = parseDays("yesterday", "")
	assert.Error(t, err)
}

func TestCandlesMarkdown(t *testing.T) {
	md := candlesMarkdown("KAU_GBP", []kinesis.Candle{{
		Timestamp: time.Date(2023, 3, 14, 0, 0, 0, 0, time.UTC),
		Open:      decimal.RequireFromString("91.5"),
		High:      decimal.RequireFromString("92.25"),
		Low:       decimal.RequireFromString("90"),
		Close:     decimal.RequireFromString("91"),
	}})
	assert.Contains(t, md, "# KAU_GBP")
	assert.Contains(t, md, "| 2023-03-14 00:00 | 91.5 | 92.25 | 90 | 91 |")

	assert.Contains(t, candlesMarkdown("KAG_GBP", nil), "No candles.")
}

func TestPriceCommand(t *testing.T) {
	withAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/exchange/mid-price/KAG_USD", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("x-signature"))
		w.Write([]byte(`{"pair":"KAG_USD","price":24.5}`))
	})

	var out bytes.Buffer
	require.Equal(t, subcommands.ExitSuccess, run(t, &priceCmd{out: &out}, "-pair", "KAG_USD"))
	assert.Equal(t, "{\"pair\":\"KAG_USD\",\"price\":24.5}\n", out.String())

	out.Reset()
	require.Equal(t, subcommands.ExitSuccess, run(t, &priceCmd{out: &out}, "-pair", "KAG_USD", "-path", "$.price"))
	assert.Equal(t, "24.5\n", out.String())

	out.Reset()
	assert.Equal(t, subcommands.ExitFailure, run(t, &priceCmd{out: &out}, "-pair", "KAG_USD", "-path", "$.pair"))
	assert.Equal(t, subcommands.ExitUsageError, run(t, &priceCmd{out: &out}))
}

func TestPriceCommandWithoutKeys(t *testing.T) {
	withSettings(t, map[*string]string{apiURL: "", publicKey: "", privateKey: "", envFile: ""})
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvPublicKey, "")
	t.Setenv(EnvPrivateKey, "")

	var out bytes.Buffer
	assert.Equal(t, subcommands.ExitUsageError, run(t, &priceCmd{out: &out}, "-pair", "KAU_GBP"))
}
