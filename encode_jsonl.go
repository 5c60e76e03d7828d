package kinesiscount

import (
	"encoding/json"
	"fmt"
	"io"
)

// MarshalJSON implements json.Marshaler with a fixed field order.
func (c Cost) MarshalJSON() ([]byte, error) { return c.Price.MarshalJSON() }

// MarshalJSON implements json.Marshaler with a fixed field order.
func (p Posting) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("account", p.Account)
	w.EmbedFrom(p.Units)
	if p.Cost != nil {
		w.Append("cost", p.Cost)
	}
	return w.MarshalJSON()
}

// MarshalJSON implements json.Marshaler with a fixed field order.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", t.Date)
	w.Append("flag", string(t.Flag))
	w.Append("narration", t.Narration)
	w.Optional("links", t.Links)
	w.Append("postings", t.Postings)
	w.Optional("filename", t.Meta.Filename)
	w.Optional("lineno", t.Meta.Line)
	return w.MarshalJSON()
}

// EncodeTransaction writes a transaction as a single JSON line.
func EncodeTransaction(w io.Writer, tx Transaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write transaction: %w", err)
	}
	return nil
}

// EncodeJSONL writes the journal in JSONL format, one transaction per line, in
// journal order.
func EncodeJSONL(w io.Writer, j *Journal) error {
	for tx := range j.Transactions() {
		if err := EncodeTransaction(w, tx); err != nil {
			return err
		}
	}
	return nil
}
