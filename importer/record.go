package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Header is the exact first line of a Kinesis account balance statement.
const Header = "DateTime,HIN,Currency_Code,Transaction_Type,Transaction_ID,Order_ID,Currency_Pair,Amount,Trade_Price,Total,Fee,Fee_Currency,Trade_Value,Trade_Value_Currency,Starting_Balance,Starting_Balance_Currency,Closing_Balance,Closing_Balance_Currency"

// bom is the UTF-8 byte order mark some exports start with.
const bom = "\ufeff"

// Record is one statement row, as written. Numbers are parsed by the
// category that needs them.
type Record struct {
	Line int // line number in the file, the header being line 1

	DateTime                string
	HIN                     string
	CurrencyCode            string
	TransactionType         string
	TransactionID           string
	OrderID                 string
	CurrencyPair            string
	Amount                  string
	TradePrice              string
	Total                   string
	Fee                     string
	FeeCurrency             string
	TradeValue              string
	TradeValueCurrency      string
	StartingBalance         string
	StartingBalanceCurrency string
	ClosingBalance          string
	ClosingBalanceCurrency  string
}

// columns maps a header name to the Record field holding it.
var columns = map[string]func(*Record) *string{
	"DateTime":                  func(r *Record) *string { return &r.DateTime },
	"HIN":                       func(r *Record) *string { return &r.HIN },
	"Currency_Code":             func(r *Record) *string { return &r.CurrencyCode },
	"Transaction_Type":          func(r *Record) *string { return &r.TransactionType },
	"Transaction_ID":            func(r *Record) *string { return &r.TransactionID },
	"Order_ID":                  func(r *Record) *string { return &r.OrderID },
	"Currency_Pair":             func(r *Record) *string { return &r.CurrencyPair },
	"Amount":                    func(r *Record) *string { return &r.Amount },
	"Trade_Price":               func(r *Record) *string { return &r.TradePrice },
	"Total":                     func(r *Record) *string { return &r.Total },
	"Fee":                       func(r *Record) *string { return &r.Fee },
	"Fee_Currency":              func(r *Record) *string { return &r.FeeCurrency },
	"Trade_Value":               func(r *Record) *string { return &r.TradeValue },
	"Trade_Value_Currency":      func(r *Record) *string { return &r.TradeValueCurrency },
	"Starting_Balance":          func(r *Record) *string { return &r.StartingBalance },
	"Starting_Balance_Currency": func(r *Record) *string { return &r.StartingBalanceCurrency },
	"Closing_Balance":           func(r *Record) *string { return &r.ClosingBalance },
	"Closing_Balance_Currency":  func(r *Record) *string { return &r.ClosingBalanceCurrency },
}

// ReadRecords reads a statement: a header line naming every column of
// Header, in any order, followed by one row per transaction.
func ReadRecords(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty statement: missing CSV header")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], bom)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, name := range strings.Split(Header, ",") {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("CSV header is missing columns %s", strings.Join(missing, ", "))
	}

	var records []Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		if blank(row) {
			continue
		}
		line, _ := reader.FieldPos(0)
		rec := Record{Line: line}
		for name, field := range columns {
			if i := index[name]; i < len(row) {
				*field(&rec) = strings.TrimSpace(row[i])
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func blank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
