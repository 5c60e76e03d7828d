package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/google/subcommands"
	"github.com/rosskouk/kinesiscount"
	"github.com/rosskouk/kinesiscount/importer"
	"github.com/rosskouk/kinesiscount/internal/logger"
)

type extractCmd struct {
	format  string
	strict  bool
	offline bool
	out     io.Writer
}

func (*extractCmd) Name() string     { return "extract" }
func (*extractCmd) Synopsis() string { return "convert Kinesis statements into transactions" }
func (*extractCmd) Usage() string {
	return `kcs extract [-format beancount|jsonl] [-strict] [-offline] FILE...

  Converts each Kinesis account balance statement into balanced
  transactions, written to the standard output in row order.

  Yield distributions are priced with the low of the day on the Kinesis
  exchange. When no price can be found, the yield is written without cost
  and a warning is logged, unless -strict is set and the API answered with
  an error. With -offline, no price is looked up at all.

  Files that are not statements are skipped.
`
}

func (c *extractCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.format, "format", "beancount", "Output format: beancount or jsonl.")
	f.BoolVar(&c.strict, "strict", false, "Fail when the Kinesis API answers a price lookup with an error.")
	f.BoolVar(&c.offline, "offline", false, "Do not look up yield prices.")
}

func (c *extractCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	encode, ok := encoders[c.format]
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown format %q, want beancount or jsonl.\n", c.format)
		return subcommands.ExitUsageError
	}
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one statement is required.")
		return subcommands.ExitUsageError
	}
	log := logger.FromContext(ctx)
	im, err := newImporter(log, c.strict, c.offline)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	out := c.out
	if out == nil {
		out = os.Stdout
	}

	for ext, err := range extractAll(ctx, im, f.Args()) {
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		for _, e := range ext.Errors {
			log.Warn().Str("file", ext.Filename).Err(e).Msg("imported with errors")
		}
		if err := encode(out, ext.Journal); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing transactions of %q: %v\n", ext.Filename, err)
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}

// encoders are the output formats of extract.
var encoders = map[string]func(io.Writer, *kinesiscount.Journal) error{
	"beancount": kinesiscount.EncodeBeancount,
	"jsonl":     kinesiscount.EncodeJSONL,
}

// extractAll extracts every statement among paths, in order. Files that are
// not statements are skipped. Iteration stops after the first error.
func extractAll(ctx context.Context, im *importer.Importer, paths []string) iter.Seq2[*importer.Extraction, error] {
	return func(yield func(*importer.Extraction, error) bool) {
		log := logger.FromContext(ctx)
		for _, path := range paths {
			ext, err := im.ExtractFile(ctx, path)
			if errors.Is(err, importer.ErrNotClaimed) {
				log.Warn().Str("file", path).Msg("not a Kinesis statement, skipped")
				continue
			}
			if !yield(ext, err) || err != nil {
				return
			}
		}
	}
}
