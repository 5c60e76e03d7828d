// Package importer turns Kinesis account balance statements into
// transactions.
//
// Each row is classified (see Classify). Buys of a tracked commodity become a
// three postings transaction at cost, yield distributions a two postings
// transaction priced with the daily candle of the Kinesis exchange, and the
// other recognised rows are skipped because another row or another statement
// books them.
package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rosskouk/kinesiscount"
	"github.com/rosskouk/kinesiscount/date"
	"github.com/rosskouk/kinesiscount/kinesis"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	// yieldQuote is the currency yields are priced in.
	yieldQuote = "GBP"
	// yieldIncomeRoot is the parent of the yield source accounts.
	yieldIncomeRoot kinesiscount.Account = "Income:M"
	// buyRatePlaces and yieldRatePlaces are the decimal places of cost rates.
	buyRatePlaces   = 5
	yieldRatePlaces = 2
)

// CandleSource provides market candles. *kinesis.Client implements it.
type CandleSource interface {
	Candles(ctx context.Context, pair string, from, to time.Time, timeframe kinesis.Timeframe) ([]kinesis.Candle, error)
}

// Config holds the accounts and options of an Importer.
type Config struct {
	AssetRoot            kinesiscount.Account // e.g. Assets:Kinesis
	ExpenseRoot          kinesiscount.Account // e.g. Expenses:Kinesis
	UncategorisedAccount kinesiscount.Account // reserved for rows without a booking rule

	// StatementPattern is the regular expression statement base names must
	// match. Empty means DefaultStatementPattern.
	StatementPattern string

	// StrictPricing makes a pricing service error response fatal instead of
	// leaving the yield uncosted.
	StrictPricing bool
}

// Validate checks the accounts are set and well formed.
func (c Config) Validate() error {
	var errs error
	for _, a := range []struct {
		name string
		acc  kinesiscount.Account
	}{
		{"asset root", c.AssetRoot},
		{"expense root", c.ExpenseRoot},
		{"uncategorised account", c.UncategorisedAccount},
	} {
		if a.acc == "" {
			errs = errors.Join(errs, fmt.Errorf("%s is missing", a.name))
			continue
		}
		if err := a.acc.Validate(); err != nil {
			errs = errors.Join(errs, fmt.Errorf("invalid %s: %w", a.name, err))
		}
	}
	if c.StatementPattern != "" {
		if _, err := regexp.Compile(c.StatementPattern); err != nil {
			errs = errors.Join(errs, fmt.Errorf("invalid statement pattern: %w", err))
		}
	}
	return errs
}

// Importer extracts transactions from statements.
type Importer struct {
	cfg     Config
	pattern *regexp.Regexp
	prices  CandleSource
	memo    *cache.Cache // decimal.Decimal low price per pair and day
	log     zerolog.Logger
}

// New creates an importer. prices may be nil, yields are then left uncosted.
func New(cfg Config, prices CandleSource, log zerolog.Logger) (*Importer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pattern := cfg.StatementPattern
	if pattern == "" {
		pattern = DefaultStatementPattern
	}
	return &Importer{
		cfg:     cfg,
		pattern: regexp.MustCompile(pattern),
		prices:  prices,
		memo:    cache.New(cache.NoExpiration, 0),
		log:     log,
	}, nil
}

// Extraction is the result of extracting one statement.
type Extraction struct {
	Filename   string
	Journal    *kinesiscount.Journal
	Counts     map[Category]int // rows per category
	Duplicates int              // rows skipped because their transaction id was already booked
	Errors     []error          // non fatal errors, in row order
}

// Err joins the non fatal errors.
func (e *Extraction) Err() error { return errors.Join(e.Errors...) }

// ExtractFile extracts the statement at path. It returns ErrNotClaimed if the
// file is not a statement.
func (im *Importer) ExtractFile(ctx context.Context, path string) (*Extraction, error) {
	ok, err := im.IdentifyFile(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%q: %w", path, ErrNotClaimed)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	records, err := ReadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}
	return im.Extract(ctx, path, records)
}

// Extract books records in order. A fatal error stops the extraction and no
// Extraction is returned.
func (im *Importer) Extract(ctx context.Context, filename string, records []Record) (*Extraction, error) {
	ext := &Extraction{
		Filename: filename,
		Journal:  kinesiscount.NewJournal(),
		Counts:   make(map[Category]int),
	}
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		category := Classify(r)
		ext.Counts[category]++

		var build func(context.Context, *Extraction, Record, kinesiscount.Meta) (kinesiscount.Transaction, error)
		switch {
		case category == Buy:
			build = im.buildBuy
		case category.IsYield():
			build = im.buildYield
		case category == CounterLeg, category == Withdrawal, category == Deposit:
			im.log.Debug().Int("line", r.Line).Stringer("category", category).Msg("skipping row")
			continue
		case category == Unknown:
			err := rowError(r, fmt.Errorf("unknown row type %q", r.TransactionType))
			im.log.Error().Err(err).Msg("skipping row")
			ext.Errors = append(ext.Errors, err)
			continue
		default:
			panic(fmt.Sprintf("unhandled category %v", category))
		}

		if first, ok := ext.Journal.Linked(r.TransactionID); ok && r.TransactionID != "" {
			im.log.Warn().Int("line", r.Line).Int("first_line", first.Meta.Line).Str("id", r.TransactionID).Msg("duplicate transaction id, skipping row")
			ext.Duplicates++
			continue
		}
		tx, err := build(ctx, ext, r, kinesiscount.Meta{Filename: filename, Line: r.Line})
		if err != nil {
			return nil, err
		}
		ext.Journal.Append(tx)
	}
	return ext, nil
}

// rowDate returns the day of a row.
func rowDate(r Record) (date.Date, error) {
	t, err := date.ParseTimestamp(r.DateTime)
	if err != nil {
		return date.Date{}, err
	}
	return date.Of(t), nil
}

// buildBuy books a purchase: the sold currency leaves the fiat account, the
// fee and the retained units enter at the rate paid.
func (im *Importer) buildBuy(_ context.Context, _ *Extraction, r Record, meta kinesiscount.Meta) (kinesiscount.Transaction, error) {
	day, err := rowDate(r)
	if err != nil {
		return kinesiscount.Transaction{}, rowError(r, err)
	}
	bought, sold, ok := strings.Cut(r.CurrencyPair, "_")
	if !ok || bought == "" || sold == "" || strings.Contains(sold, "_") {
		return kinesiscount.Transaction{}, rowError(r, fmt.Errorf("invalid currency pair %q", r.CurrencyPair))
	}
	boughtUnits, err := kinesiscount.ParseMoney(r.Amount, bought)
	if err != nil {
		return kinesiscount.Transaction{}, rowError(r, err)
	}
	if boughtUnits.IsZero() {
		return kinesiscount.Transaction{}, rowError(r, fmt.Errorf("zero %s bought", bought))
	}
	soldUnits, err := kinesiscount.ParseMoney(r.Total, sold)
	if err != nil {
		return kinesiscount.Transaction{}, rowError(r, err)
	}
	fee, err := kinesiscount.ParseMoney(r.Fee, bought)
	if err != nil {
		return kinesiscount.Transaction{}, rowError(r, err)
	}
	if !fee.IsZero() && r.FeeCurrency != "" && r.FeeCurrency != bought {
		return kinesiscount.Transaction{}, rowError(r, fmt.Errorf("fee charged in %s, not in bought currency %s", r.FeeCurrency, bought))
	}
	retained := boughtUnits.Sub(fee)
	cost := &kinesiscount.Cost{Price: soldUnits.Per(boughtUnits).Round(buyRatePlaces)}

	tx := kinesiscount.NewTransaction(meta, day, fmt.Sprintf("Kinesis buy %s for %s", bought, sold), []string{r.TransactionID},
		kinesiscount.Posting{Account: kinesiscount.JoinAccount(im.cfg.AssetRoot, sold), Units: soldUnits.Neg()},
		kinesiscount.Posting{Account: kinesiscount.JoinAccount(im.cfg.ExpenseRoot, bought, "Transaction-Fee"), Units: fee, Cost: cost},
		kinesiscount.Posting{Account: kinesiscount.JoinAccount(im.cfg.AssetRoot, bought, sold), Units: retained, Cost: cost},
	)
	if err := tx.Validate(); err != nil {
		return kinesiscount.Transaction{}, rowError(r, err)
	}
	return tx, nil
}

// buildYield books a yield distribution from the shared income account to
// the yield account of the currency, at the day's low price when one is
// available.
func (im *Importer) buildYield(ctx context.Context, ext *Extraction, r Record, meta kinesiscount.Meta) (kinesiscount.Transaction, error) {
	category := Classify(r)
	fee, err := kinesiscount.ParseMoney(r.Fee, r.FeeCurrency)
	if err != nil {
		return kinesiscount.Transaction{}, rowError(r, err)
	}
	if !fee.IsZero() {
		return kinesiscount.Transaction{}, rowError(r, fmt.Errorf("%w: %s %s", ErrUnexpectedFee, fee.Text(), fee.Currency()))
	}
	day, err := rowDate(r)
	if err != nil {
		return kinesiscount.Transaction{}, rowError(r, err)
	}
	cur := r.CurrencyCode
	if cur == "" {
		return kinesiscount.Transaction{}, rowError(r, errors.New("missing currency code"))
	}
	units, err := kinesiscount.ParseMoney(r.Amount, cur)
	if err != nil {
		return kinesiscount.Transaction{}, rowError(r, err)
	}

	cost, err := im.yieldCost(ctx, cur, day, units)
	switch {
	case err == nil:
	case ctx.Err() != nil:
		return kinesiscount.Transaction{}, ctx.Err()
	case im.cfg.StrictPricing && isStatusError(err):
		return kinesiscount.Transaction{}, rowError(r, err)
	default:
		err = rowError(r, err)
		im.log.Warn().Err(err).Msg("yield left without cost")
		ext.Errors = append(ext.Errors, err)
	}

	tx := kinesiscount.NewTransaction(meta, day, fmt.Sprintf("Kinesis %s %s", cur, category.label()), []string{r.TransactionID},
		kinesiscount.Posting{Account: kinesiscount.JoinAccount(yieldIncomeRoot, cur, "Yields"), Units: units.Neg(), Cost: cost},
		kinesiscount.Posting{Account: kinesiscount.JoinAccount(im.cfg.AssetRoot, cur, "Yields"), Units: units, Cost: cost},
	)
	if err := tx.Validate(); err != nil {
		return kinesiscount.Transaction{}, rowError(r, err)
	}
	return tx, nil
}

// yieldCost returns the cost of units received on day: the low of the day's
// candle, in GBP.
func (im *Importer) yieldCost(ctx context.Context, cur string, day date.Date, units kinesiscount.Money) (*kinesiscount.Cost, error) {
	low, err := im.dailyLow(ctx, cur+"_"+yieldQuote, day)
	if err != nil {
		return nil, err
	}
	rate := low.Round(yieldRatePlaces)
	if !units.IsZero() {
		value := units.Number().Mul(low)
		rate = value.Div(units.Number()).Round(yieldRatePlaces)
	}
	return &kinesiscount.Cost{Price: kinesiscount.M(rate, yieldQuote)}, nil
}

// dailyLow returns the low of the first daily candle of pair on day.
// Successful lookups are remembered.
func (im *Importer) dailyLow(ctx context.Context, pair string, day date.Date) (decimal.Decimal, error) {
	key := pair + "@" + day.String()
	if v, found := im.memo.Get(key); found {
		return v.(decimal.Decimal), nil
	}
	if im.prices == nil {
		return decimal.Decimal{}, fmt.Errorf("%s on %s: %w", pair, day, kinesis.ErrUnavailable)
	}
	w := day.Window()
	candles, err := im.prices.Candles(ctx, pair, w.From, w.To, kinesis.Daily)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if len(candles) == 0 {
		return decimal.Decimal{}, fmt.Errorf("%s on %s: %w", pair, day, ErrNoPrice)
	}
	low := candles[0].Low
	im.memo.Set(key, low, cache.DefaultExpiration)
	im.log.Debug().Str("pair", pair).Stringer("day", day).Stringer("low", low).Msg("yield price")
	return low, nil
}

func isStatusError(err error) bool {
	var status *kinesis.StatusError
	return errors.As(err, &status)
}
