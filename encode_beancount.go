package kinesiscount

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// invalidLinkChars are the characters Beancount does not accept in a link.
var invalidLinkChars = regexp.MustCompile(`[^A-Za-z0-9\-_/.]`)

// beancountLink renders a link, replacing invalid characters with a dash.
func beancountLink(l string) string { return "^" + invalidLinkChars.ReplaceAllString(l, "-") }

// beancountString quotes s as a Beancount string literal.
func beancountString(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}

// EncodeBeancount writes the journal as Beancount directives, in journal
// order, separated by blank lines. Amounts are written with the digits they
// were created with and aligned per transaction.
func EncodeBeancount(w io.Writer, j *Journal) error {
	bw := bufio.NewWriter(w)
	first := true
	for tx := range j.Transactions() {
		if !first {
			bw.WriteString("\n")
		}
		first = false
		writeBeancountTransaction(bw, tx)
	}
	return bw.Flush()
}

func writeBeancountTransaction(w *bufio.Writer, tx Transaction) {
	header := []string{tx.Date.String(), string(tx.Flag), beancountString(tx.Narration)}
	for _, l := range tx.Links {
		header = append(header, beancountLink(l))
	}
	fmt.Fprintln(w, strings.Join(header, " "))

	accountWidth, numberWidth := 0, 0
	for _, p := range tx.Postings {
		accountWidth = max(accountWidth, len(p.Account))
		numberWidth = max(numberWidth, len(p.Units.Text()))
	}
	for _, p := range tx.Postings {
		line := fmt.Sprintf("  %-*s  %*s %s", accountWidth, p.Account, numberWidth, p.Units.Text(), p.Units.Currency())
		if p.Cost != nil {
			line += fmt.Sprintf(" {%s %s}", p.Cost.Price.Text(), p.Cost.Price.Currency())
		}
		fmt.Fprintln(w, line)
	}
}
