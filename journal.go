package kinesiscount

import (
	"iter"
	"slices"
)

// Journal is an append only list of transactions, kept in the order they
// were appended (statement row order for an import).
type Journal struct {
	transactions []Transaction
	links        map[string]int // index of the first transaction carrying a link
}

// NewJournal creates an empty journal.
func NewJournal() *Journal {
	return &Journal{links: make(map[string]int)}
}

// Append adds transactions at the end of the journal.
func (j *Journal) Append(txs ...Transaction) {
	if j.links == nil {
		j.links = make(map[string]int)
	}
	for _, tx := range txs {
		for _, l := range tx.Links {
			if _, exists := j.links[l]; !exists {
				j.links[l] = len(j.transactions)
			}
		}
		j.transactions = append(j.transactions, tx)
	}
}

// Len returns the number of transactions.
func (j *Journal) Len() int { return len(j.transactions) }

// Linked returns the first transaction carrying link.
func (j *Journal) Linked(link string) (Transaction, bool) {
	i, ok := j.links[link]
	if !ok {
		return Transaction{}, false
	}
	return j.transactions[i], true
}

// Transactions iterates over the transactions in journal order.
func (j *Journal) Transactions() iter.Seq[Transaction] {
	return slices.Values(j.transactions)
}
