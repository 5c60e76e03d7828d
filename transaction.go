package kinesiscount

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/rosskouk/kinesiscount/date"
	"github.com/shopspring/decimal"
)

// Flag marks the state of a transaction.
type Flag rune

// FlagOK is a completed transaction.
const FlagOK Flag = '*'

// Cost is the price per unit at which a lot was acquired.
type Cost struct {
	Price Money // Price of one unit, in the cost currency.
}

// Posting is one leg of a transaction.
type Posting struct {
	Account Account
	Units   Money
	Cost    *Cost // Cost is nil for postings held at no cost.
}

// Weight returns the amount the posting contributes to the transaction
// balance: units times cost in the cost currency, or the units themselves.
func (p Posting) Weight() Money {
	if p.Cost == nil {
		return p.Units
	}
	return p.Cost.Price.Mul(p.Units.Number())
}

// Meta locates the statement row a transaction was built from.
type Meta struct {
	Filename string
	Line     int
}

// Transaction is a balanced set of postings.
type Transaction struct {
	Meta      Meta
	Date      date.Date
	Flag      Flag
	Narration string
	Links     []string // Links are unique, in insertion order.
	Postings  []Posting
}

// NewTransaction creates a completed transaction.
func NewTransaction(meta Meta, day date.Date, narration string, links []string, postings ...Posting) Transaction {
	tx := Transaction{
		Meta:      meta,
		Date:      day,
		Flag:      FlagOK,
		Narration: narration,
		Postings:  postings,
	}
	for _, l := range links {
		if l != "" && !slices.Contains(tx.Links, l) {
			tx.Links = append(tx.Links, l)
		}
	}
	return tx
}

// Residual returns, per currency, the sum of the posting weights.
func (t Transaction) Residual() map[string]decimal.Decimal {
	res := make(map[string]decimal.Decimal)
	for _, p := range t.Postings {
		w := p.Weight()
		res[w.Currency()] = res[w.Currency()].Add(w.Number())
	}
	return res
}

// half is the inferred tolerance multiplier.
var half = decimal.RequireFromString("0.5")

// Tolerances infers, per currency, how far from zero a residual may be.
//
// Uncosted units contribute half a unit of their last written digit. Each
// costed posting contributes its units times half a unit of the last digit of
// its cost, as the cost was rounded before it was written.
func (t Transaction) Tolerances() map[string]decimal.Decimal {
	scales := make(map[string]int32)
	costed := make(map[string]decimal.Decimal)
	for _, p := range t.Postings {
		if p.Cost == nil {
			c := p.Units.Currency()
			scales[c] = max(scales[c], p.Units.Scale())
			continue
		}
		c := p.Cost.Price.Currency()
		if _, ok := scales[c]; !ok {
			scales[c] = 0
		}
		step := half.Shift(-p.Cost.Price.Scale())
		costed[c] = costed[c].Add(p.Units.Number().Abs().Mul(step))
	}
	tol := make(map[string]decimal.Decimal, len(scales))
	for c, s := range scales {
		tol[c] = half.Shift(-s).Add(costed[c])
	}
	return tol
}

// ErrUnbalanced is returned when the postings of a transaction do not sum to
// zero within tolerance.
var ErrUnbalanced = errors.New("transaction does not balance")

// Balance returns an error wrapping ErrUnbalanced for every currency whose
// residual exceeds its tolerance.
func (t Transaction) Balance() error {
	residual, tol := t.Residual(), t.Tolerances()
	var errs error
	for _, c := range slices.Sorted(maps.Keys(residual)) {
		r := residual[c]
		if r.Abs().GreaterThan(tol[c]) {
			errs = errors.Join(errs, fmt.Errorf("%w: residual %s %s exceeds tolerance %s", ErrUnbalanced, r, c, tol[c]))
		}
	}
	return errs
}

// Validate checks the accounts, the balance and that the transaction has at
// least two postings.
func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return errors.New("transaction date is missing")
	}
	if len(t.Postings) < 2 {
		return fmt.Errorf("transaction %q has %d posting(s), need at least 2", t.Narration, len(t.Postings))
	}
	for _, p := range t.Postings {
		if err := p.Account.Validate(); err != nil {
			return err
		}
		if p.Units.Currency() == "" {
			return fmt.Errorf("posting to %s has no currency", p.Account)
		}
	}
	return t.Balance()
}
