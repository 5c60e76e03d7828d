package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/rosskouk/kinesiscount/date"
	"github.com/rosskouk/kinesiscount/internal/logger"
	"github.com/rosskouk/kinesiscount/kinesis"
)

type candlesCmd struct {
	pair      string
	from      string
	to        string
	timeframe int
	out       io.Writer
}

func (*candlesCmd) Name() string     { return "candles" }
func (*candlesCmd) Synopsis() string { return "display the OHLC candles of a currency pair" }
func (*candlesCmd) Usage() string {
	return `kcs candles -pair <BASE_QUOTE> [-from <date>] [-to <date>] [-timeframe <minutes>]

  Displays the candles of a pair on the Kinesis exchange, from the start of
  -from to the end of -to (UTC days, both default to today).
`
}

func (c *candlesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.pair, "pair", "", "Currency pair, e.g. KAU_GBP.")
	f.StringVar(&c.from, "from", "", "First day, YYYY-MM-DD. Defaults to today.")
	f.StringVar(&c.to, "to", "", "Last day, YYYY-MM-DD. Defaults to -from.")
	f.IntVar(&c.timeframe, "timeframe", int(kinesis.Daily), "Candle duration in minutes, e.g. 60 or 1440.")
}

func (c *candlesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.pair == "" {
		fmt.Fprintln(os.Stderr, "Error: -pair is required.")
		return subcommands.ExitUsageError
	}
	if c.timeframe <= 0 {
		fmt.Fprintf(os.Stderr, "Error: invalid timeframe %d.\n", c.timeframe)
		return subcommands.ExitUsageError
	}
	from, to, err := parseDays(c.from, c.to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	client, err := newClient(logger.FromContext(ctx))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	candles, err := client.Candles(ctx, c.pair, from.Window().From, to.Window().To, kinesis.Timeframe(c.timeframe))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching candles of %s: %v\n", c.pair, err)
		return subcommands.ExitFailure
	}
	out := c.out
	if out == nil {
		out = os.Stdout
	}
	printMarkdown(out, candlesMarkdown(c.pair, candles))
	return subcommands.ExitSuccess
}

// parseDays reads the -from and -to flags.
func parseDays(from, to string) (date.Date, date.Date, error) {
	first := date.Today()
	if from != "" {
		d, err := date.Parse(from)
		if err != nil {
			return date.Date{}, date.Date{}, err
		}
		first = d
	}
	last := first
	if to != "" {
		d, err := date.Parse(to)
		if err != nil {
			return date.Date{}, date.Date{}, err
		}
		last = d
	}
	if last.Before(first) {
		return date.Date{}, date.Date{}, fmt.Errorf("-to %s is before -from %s", last, first)
	}
	return first, last, nil
}

func candlesMarkdown(pair string, candles []kinesis.Candle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", pair)
	if len(candles) == 0 {
		b.WriteString("No candles.\n")
		return b.String()
	}
	b.WriteString("| Time | Open | High | Low | Close |\n")
	b.WriteString("|:---|---:|---:|---:|---:|\n")
	for _, k := range candles {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", k.Timestamp.UTC().Format("2006-01-02 15:04"), k.Open, k.High, k.Low, k.Close)
	}
	return b.String()
}
