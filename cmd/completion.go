package cmd

import (
	"flag"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
	"github.com/rosskouk/kinesiscount/docs"
	"github.com/rosskouk/kinesiscount/kinesis"
)

// Completion returns the shell completion of the commands registered on c.
// Flags of c's top level flag set are completed everywhere.
func Completion(c *subcommands.Commander, top *flag.FlagSet) *complete.Command {
	global := flagPredictors(top)
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: global,
	}
	c.VisitCommands(func(_ *subcommands.CommandGroup, sub subcommands.Command) {
		fs := flag.NewFlagSet(sub.Name(), flag.ContinueOnError)
		sub.SetFlags(fs)
		flags := flagPredictors(fs)
		for name, p := range global {
			flags[name] = p
		}
		root.Sub[sub.Name()] = &complete.Command{Flags: flags, Args: argPredictor(sub.Name())}
	})
	return root
}

// flagPredictors predicts values of known flags, anything for the others.
func flagPredictors(fs *flag.FlagSet) map[string]complete.Predictor {
	flags := map[string]complete.Predictor{}
	fs.VisitAll(func(f *flag.Flag) {
		switch f.Name {
		case "format":
			flags[f.Name] = predict.Set{"beancount", "jsonl"}
		case "v":
			flags[f.Name] = predict.Set{"debug", "info", "warn", "error"}
		case "pair":
			flags[f.Name] = predict.Set{"KAU_GBP", "KAG_GBP", "KVT_GBP", "KAU_USD", "KAG_USD"}
		case "timeframe":
			flags[f.Name] = predict.Set{kinesis.Hourly.String(), kinesis.Daily.String()}
		case "env-file":
			flags[f.Name] = predict.Files("*")
		case "cache-dir":
			flags[f.Name] = predict.Dirs("*")
		default:
			if isBool(f) {
				flags[f.Name] = predict.Nothing
			} else {
				flags[f.Name] = predict.Something
			}
		}
	})
	return flags
}

func isBool(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}

// argPredictor predicts the positional arguments of a subcommand.
func argPredictor(name string) complete.Predictor {
	switch name {
	case "identify", "extract", "report":
		return predict.Files("*.csv")
	case "topic":
		topics, err := docs.All()
		if err != nil {
			return predict.Nothing
		}
		return predict.Set(append(topics, "*"))
	}
	return predict.Nothing
}
