package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/rosskouk/kinesiscount/internal/logger"
	"github.com/rosskouk/kinesiscount/renderer"
)

type reportCmd struct {
	html    bool
	strict  bool
	offline bool
	out     io.Writer
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "summarize the extraction of Kinesis statements" }
func (*reportCmd) Usage() string {
	return `kcs report [-html] [-strict] [-offline] FILE...

  Extracts each statement and displays a report: the rows per category, the
  errors met, and the transactions produced.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.html, "html", false, "Write the report as HTML instead of rendering it in the terminal.")
	f.BoolVar(&c.strict, "strict", false, "Fail when the Kinesis API answers a price lookup with an error.")
	f.BoolVar(&c.offline, "offline", false, "Do not look up yield prices.")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one statement is required.")
		return subcommands.ExitUsageError
	}
	im, err := newImporter(logger.FromContext(ctx), c.strict, c.offline)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	out := c.out
	if out == nil {
		out = os.Stdout
	}

	var b strings.Builder
	for ext, err := range extractAll(ctx, im, f.Args()) {
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		b.WriteString(renderer.RenderExtraction(renderer.NewExtraction(ext)))
		b.WriteString("\n")
	}

	if !c.html {
		printMarkdown(out, b.String())
		return subcommands.ExitSuccess
	}
	html, err := markdownToHTML(b.String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error converting the report to HTML: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprint(out, html)
	return subcommands.ExitSuccess
}
