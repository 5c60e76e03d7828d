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

type identifyCmd struct {
	out io.Writer
}

func (*identifyCmd) Name() string     { return "identify" }
func (*identifyCmd) Synopsis() string { return "list the files that are Kinesis statements" }
func (*identifyCmd) Usage() string {
	return `kcs identify FILE...

  Prints, for every Kinesis account balance statement among FILE, its path,
  the name to archive it under and the account it belongs to, tab separated.
  Other files are ignored.
`
}

func (c *identifyCmd) SetFlags(f *flag.FlagSet) {}

func (c *identifyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one file is required.")
		return subcommands.ExitUsageError
	}
	log := logger.FromContext(ctx)
	im, err := newImporter(log, false, true)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	out := c.out
	if out == nil {
		out = os.Stdout
	}

	status := subcommands.ExitSuccess
	for _, path := range f.Args() {
		ok, err := im.IdentifyFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %q: %v\n", path, err)
			status = subcommands.ExitFailure
			continue
		}
		if !ok {
			log.Debug().Str("file", path).Msg("not a Kinesis statement")
			continue
		}
		fmt.Fprintf(out, "%s\t%s\t%s\n", path, im.FileName(path), im.FileAccount())
	}
	return status
}
