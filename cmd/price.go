package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
	"github.com/rosskouk/kinesiscount/internal/logger"
)

type priceCmd struct {
	pair string
	path string
	out  io.Writer
}

func (*priceCmd) Name() string     { return "price" }
func (*priceCmd) Synopsis() string { return "display the mid price of a currency pair" }
func (*priceCmd) Usage() string {
	return `kcs price -pair <BASE_QUOTE> [-path <jsonpath>]

  Prints the mid price answer of the Kinesis exchange for a pair, as
  returned by the API. With -path, prints only the number found at that
  JSONPath expression, e.g. -path '$.price'.
`
}

func (c *priceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.pair, "pair", "", "Currency pair, e.g. KAU_GBP.")
	f.StringVar(&c.path, "path", "", "JSONPath expression of the price in the answer.")
}

func (c *priceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.pair == "" {
		fmt.Fprintln(os.Stderr, "Error: -pair is required.")
		return subcommands.ExitUsageError
	}
	client, err := newClient(logger.FromContext(ctx))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	out := c.out
	if out == nil {
		out = os.Stdout
	}

	if c.path == "" {
		raw, err := client.MidPrice(ctx, c.pair)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching mid price of %s: %v\n", c.pair, err)
			return subcommands.ExitFailure
		}
		fmt.Fprintln(out, string(raw))
		return subcommands.ExitSuccess
	}

	price, err := client.MidPriceAt(ctx, c.pair, c.path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching mid price of %s: %v\n", c.pair, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintln(out, price)
	return subcommands.ExitSuccess
}
