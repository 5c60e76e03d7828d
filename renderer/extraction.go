package renderer

import (
	"path/filepath"
	"strings"

	"github.com/rosskouk/kinesiscount"
	"github.com/rosskouk/kinesiscount/importer"
)

// Extraction is the report of one statement extraction.
type Extraction struct {
	Filename     string
	Rows         []CategoryRows
	TotalRows    int
	Duplicates   int
	Errors       []string
	Transactions []Transaction
}

// CategoryRows is the number of rows of a category.
type CategoryRows struct {
	Category string
	Rows     int
}

// Transaction is a transaction ready to print.
type Transaction struct {
	Date      string
	Narration string
	Links     string
	Postings  []Posting
}

// Posting is a posting ready to print: amounts are written with their
// currency, Cost is empty for uncosted postings. Value is the weight of the
// posting, formatted for humans.
type Posting struct {
	Account string
	Units   string
	Cost    string
	Value   string
}

// NewExtraction builds the report of ext.
func NewExtraction(ext *importer.Extraction) *Extraction {
	e := &Extraction{
		Filename:   filepath.Base(ext.Filename),
		Duplicates: ext.Duplicates,
	}
	for _, c := range importer.Categories() {
		n := ext.Counts[c]
		if n == 0 {
			continue
		}
		e.Rows = append(e.Rows, CategoryRows{Category: c.String(), Rows: n})
		e.TotalRows += n
	}
	for _, err := range ext.Errors {
		e.Errors = append(e.Errors, err.Error())
	}
	for tx := range ext.Journal.Transactions() {
		e.Transactions = append(e.Transactions, newTransaction(tx))
	}
	return e
}

func newTransaction(tx kinesiscount.Transaction) Transaction {
	t := Transaction{
		Date:      tx.Date.String(),
		Narration: tx.Narration,
		Links:     strings.Join(tx.Links, " "),
	}
	for _, p := range tx.Postings {
		row := Posting{Account: string(p.Account), Units: amount(p.Units), Value: p.Weight().String()}
		if p.Cost != nil {
			row.Cost = amount(p.Cost.Price)
		}
		t.Postings = append(t.Postings, row)
	}
	return t
}

// amount writes m exactly, e.g. "-8500.00 GBP".
func amount(m kinesiscount.Money) string { return m.Text() + " " + m.Currency() }
