package kinesiscount

import (
	"bytes"
	"testing"

	"github.com/rosskouk/kinesiscount/date"
)

func TestEncodeBeancount(t *testing.T) {
	j := NewJournal()
	j.Append(buyTransaction())
	j.Append(NewTransaction(Meta{}, date.New(2023, 4, 1), `Kinesis KAU "Holders" Yield Payment`, []string{"T 2"},
		Posting{Account: "Income:M:KAU:Yields", Units: M(dec("-0.25"), "KAU")},
		Posting{Account: "Assets:Kinesis:KAU:Yields", Units: M(dec("0.25"), "KAU")},
	))

	var buf bytes.Buffer
	if err := EncodeBeancount(&buf, j); err != nil {
		t.Fatalf("EncodeBeancount() unexpected error: %v", err)
	}

	want := `2023-03-15 * "Kinesis buy KAU for GBP" ^T1
  Assets:Kinesis:GBP                    -8500.00 GBP
  Expenses:Kinesis:KAU:Transaction-Fee         1 KAU {85.00000 GBP}
  Assets:Kinesis:KAU:GBP                      99 KAU {85.00000 GBP}

2023-04-01 * "Kinesis KAU \"Holders\" Yield Payment" ^T-2
  Income:M:KAU:Yields        -0.25 KAU
  Assets:Kinesis:KAU:Yields   0.25 KAU
`
	if got := buf.String(); got != want {
		t.Errorf("EncodeBeancount() =\n%s\nwant:\n%s", got, want)
	}
}
