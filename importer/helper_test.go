package importer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rosskouk/kinesiscount/kinesis"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testConfig = Config{
	AssetRoot:            "Assets:Kinesis",
	ExpenseRoot:          "Expenses:Kinesis",
	UncategorisedAccount: "Expenses:Uncategorised",
}

// statement rows used across tests.
const (
	buyKAU       = `2023-03-15 10:20:30,KM13451730,KAU,Trade_Buy,T1,O1,KAU_GBP,100,85,"8,500.00",1,KAU,8500.00,GBP,0,KAU,99,KAU`
	buyKAUGBP    = `2023-03-15 10:20:30,KM13451730,GBP,Trade_Buy,T1,O1,KAU_GBP,100,85,"8,500.00",1,KAU,8500.00,GBP,9000.00,GBP,500.00,GBP`
	buyKAG       = `2023-03-16 09:00:00,KM13451730,KAG,Trade_Buy,T2,O2,KAG_GBP,3,33.33,100.00,0,KAG,100.00,GBP,0,KAG,3,KAG`
	withdrawal   = `2023-03-17 12:00:00,KM13451730,KAU,Withdrawal,W1,,,10,,,0,KAU,,,99,KAU,89,KAU`
	deposit      = `2023-03-01 08:00:00,KM13451730,GBP,Deposit,D1,,,9000.00,,,0,GBP,,,0,GBP,9000.00,GBP`
	holders      = `2023-04-01 00:00:00,KM13451730,KAU,Holders_Distribution,Y1,,,5,,,0,KAU,,,89,KAU,94,KAU`
	holdersFee   = `2023-04-01 00:00:00,KM13451730,KAU,Holders_Distribution,Y2,,,5,,,0.01,KAU,,,89,KAU,94,KAU`
	adjustment   = `2023-04-01 00:00:00,KM13451730,KAU,Holders_Yield_Distribution_Adjustment,Y3,,,0.25,,,0,KAU,,,94,KAU,94.25,KAU`
	velocity     = `2023-04-02 00:00:00,KM13451730,KVT,Velocity_Distribution,Y4,,,2,,,0,KVT,,,0,KVT,2,KVT`
	stakingBonus = `2023-04-03 00:00:00,KM13451730,KAU,Staking_Bonus_X,S1,,,1,,,0,KAU,,,94.25,KAU,95.25,KAU`
)

// records parses a statement made of Header and rows.
func records(t *testing.T, rows ...string) []Record {
	t.Helper()
	recs, err := ReadRecords(strings.NewReader(Header + "\n" + strings.Join(rows, "\n") + "\n"))
	require.NoError(t, err)
	return recs
}

type candleCall struct {
	pair      string
	from, to  time.Time
	timeframe kinesis.Timeframe
}

// fakeCandles is a CandleSource returning canned answers.
type fakeCandles struct {
	candles []kinesis.Candle
	err     error
	calls   []candleCall
}

func (f *fakeCandles) Candles(_ context.Context, pair string, from, to time.Time, timeframe kinesis.Timeframe) ([]kinesis.Candle, error) {
	f.calls = append(f.calls, candleCall{pair, from, to, timeframe})
	return f.candles, f.err
}

// lowAt returns a fake whose single candle has the given low.
func lowAt(low string) *fakeCandles {
	return &fakeCandles{candles: []kinesis.Candle{{Low: decimal.RequireFromString(low)}}}
}

// newImporter returns an importer on testConfig.
func newImporter(t *testing.T, prices CandleSource) *Importer {
	t.Helper()
	im, err := New(testConfig, prices, zerolog.Nop())
	require.NoError(t, err)
	return im
}

var zerologNop = zerolog.Nop()
