package kinesis

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Timeframe is the duration of a candle in minutes, as the service expects it.
type Timeframe int

const (
	Hourly Timeframe = 60
	Daily  Timeframe = 1440
)

func (t Timeframe) String() string { return strconv.Itoa(int(t)) }

// Candle is an OHLC record.
type Candle struct {
	Timestamp time.Time       `json:"timestamp"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
}

// UnmarshalJSON accepts the timestamp either as an RFC 3339 string or as epoch
// milliseconds, prices either as numbers or strings.
func (c *Candle) UnmarshalJSON(data []byte) error {
	var raw struct {
		Timestamp json.RawMessage     `json:"timestamp"`
		Open      decimal.Decimal     `json:"open"`
		High      decimal.Decimal     `json:"high"`
		Low       decimal.NullDecimal `json:"low"`
		Close     decimal.Decimal     `json:"close"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	// a missing low is not a zero price.
	if !raw.Low.Valid {
		return fmt.Errorf("%w: candle without low", ErrBadResponse)
	}
	ts, err := parseTimestamp(raw.Timestamp)
	if err != nil {
		return err
	}
	*c = Candle{Timestamp: ts, Open: raw.Open, High: raw.High, Low: raw.Low.Decimal, Close: raw.Close}
	return nil
}

func parseTimestamp(raw json.RawMessage) (time.Time, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return time.Time{}, nil
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return time.Time{}, err
		}
		t, err := time.Parse(time.RFC3339Nano, str)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid candle timestamp %q: %w", str, err)
		}
		return t, nil
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid candle timestamp %s: %w", s, err)
	}
	return time.UnixMilli(ms).UTC(), nil
}
