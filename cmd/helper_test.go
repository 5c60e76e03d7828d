package cmd

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/subcommands"
)

const statementName = "Account balance_Statement_KM13451730_2023-04-30.csv"

const statementHeader = "DateTime,HIN,Currency_Code,Transaction_Type,Transaction_ID,Order_ID,Currency_Pair,Amount,Trade_Price,Total,Fee,Fee_Currency,Trade_Value,Trade_Value_Currency,Starting_Balance,Starting_Balance_Currency,Closing_Balance,Closing_Balance_Currency"

const buyRow = `2023-03-15 10:20:30,KM13451730,KAU,Trade_Buy,T1,O1,KAU_GBP,100,85,"8,500.00",1,KAU,8500.00,GBP,0,KAU,99,KAU`

// withSettings sets global flags for the duration of the test.
func withSettings(t *testing.T, values map[*string]string) {
	t.Helper()
	for p, v := range values {
		old := *p
		*p = v
		t.Cleanup(func() { *p = old })
	}
}

// accountSettings are valid account settings.
func accountSettings() map[*string]string {
	return map[*string]string{
		assetRoot:            "Assets:Kinesis",
		expenseRoot:          "Expenses:Kinesis",
		uncategorisedAccount: "Expenses:Uncategorised",
		envFile:              "",
	}
}

// writeStatement writes a statement with rows in a temporary directory.
func writeStatement(t *testing.T, rows ...string) string {
	t.Helper()
	content := statementHeader + "\n"
	for _, r := range rows {
		content += r + "\n"
	}
	path := filepath.Join(t.TempDir(), statementName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() unexpected error: %v", err)
	}
	return path
}

// run parses args with the command's flags and executes it.
func run(t *testing.T, c subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse(%v) unexpected error: %v", args, err)
	}
	return c.Execute(context.Background(), fs)
}
