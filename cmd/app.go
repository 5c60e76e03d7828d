// Package cmd implements the kcs command line: import Kinesis account
// statements and query the Kinesis market data API.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/rosskouk/kinesiscount"
	"github.com/rosskouk/kinesiscount/importer"
	"github.com/rosskouk/kinesiscount/internal/logger"
	"github.com/rosskouk/kinesiscount/kinesis"
	"github.com/rs/zerolog"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&identifyCmd{}, "statements")
	c.Register(&extractCmd{}, "statements")
	c.Register(&reportCmd{}, "statements")

	c.Register(&candlesCmd{}, "market")
	c.Register(&priceCmd{}, "market")

	c.Register(&topicCmd{}, "help")
}

// Environment variables read when the matching flag is not set. They can
// also be set in the .env file.
const (
	EnvAssetRoot            = "KINESIS_ASSET_ROOT"
	EnvExpenseRoot          = "KINESIS_EXPENSE_ROOT"
	EnvUncategorisedAccount = "KINESIS_UNCATEGORISED_ACCOUNT"
	EnvPublicKey            = "KINESIS_PUBLIC_KEY"
	EnvPrivateKey           = "KINESIS_PRIVATE_KEY"
	EnvAPIURL               = "KINESIS_API_URL"
	EnvLogLevel             = "KCS_LOG_LEVEL"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var envFile = flag.String("env-file", ".env", "Path to a dotenv file with KINESIS_* settings. Variables already set in the environment win.")
var logLevel = flag.String("v", "", "Log level (debug, info, warn, error). Defaults to $"+EnvLogLevel+" or info.")

var assetRoot = flag.String("asset-root", "", "Root account of Kinesis assets, e.g. Assets:Kinesis. Defaults to $"+EnvAssetRoot+".")
var expenseRoot = flag.String("expense-root", "", "Root account of Kinesis fees, e.g. Expenses:Kinesis. Defaults to $"+EnvExpenseRoot+".")
var uncategorisedAccount = flag.String("uncategorised-account", "", "Account for rows without a booking rule. Defaults to $"+EnvUncategorisedAccount+".")
var statementPattern = flag.String("statement-pattern", importer.DefaultStatementPattern, "Regular expression statement file names must match.")

var publicKey = flag.String("kinesis-public-key", "", "Kinesis API public key. Defaults to $"+EnvPublicKey+".")
var privateKey = flag.String("kinesis-private-key", "", "Kinesis API private key. Defaults to $"+EnvPrivateKey+".")
var apiURL = flag.String("kinesis-api-url", "", "Kinesis API base URL. Defaults to $"+EnvAPIURL+".")
var timeout = flag.Duration("timeout", 30*time.Second, "Timeout of a Kinesis API request. 0 keeps the transport default.")
var requestsPerSecond = flag.Float64("requests-per-second", 0, "Maximum Kinesis API request rate. 0 is unlimited.")
var cacheDir = flag.String("cache-dir", "", "Directory to cache Kinesis API responses for the day. Empty disables the cache.")

var loadEnvOnce sync.Once

// loadEnv loads the dotenv file once. A missing file is not an error.
func loadEnv() {
	loadEnvOnce.Do(func() {
		if *envFile == "" {
			return
		}
		if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Warning: cannot load %q: %v\n", *envFile, err)
		}
	})
}

// setting returns the flag value, or the environment variable if the flag is
// not set.
func setting(flagValue *string, env string) string {
	// If the flag is not set, we try to read it from the environment variable.
	if *flagValue == "" {
		loadEnv()
		*flagValue = os.Getenv(env)
	}
	return *flagValue
}

// Logger returns the logger configured by -v.
func Logger() zerolog.Logger {
	return logger.New(setting(logLevel, EnvLogLevel))
}

// importerConfig returns the importer settings.
func importerConfig(strict bool) importer.Config {
	return importer.Config{
		AssetRoot:            kinesiscount.Account(setting(assetRoot, EnvAssetRoot)),
		ExpenseRoot:          kinesiscount.Account(setting(expenseRoot, EnvExpenseRoot)),
		UncategorisedAccount: kinesiscount.Account(setting(uncategorisedAccount, EnvUncategorisedAccount)),
		StatementPattern:     *statementPattern,
		StrictPricing:        strict,
	}
}

// kinesisConfig returns the API client settings.
func kinesisConfig() kinesis.Config {
	return kinesis.Config{
		PublicKey:         setting(publicKey, EnvPublicKey),
		PrivateKey:        setting(privateKey, EnvPrivateKey),
		BaseURL:           setting(apiURL, EnvAPIURL),
		Timeout:           *timeout,
		RequestsPerSecond: *requestsPerSecond,
		CacheDir:          *cacheDir,
	}
}

// newClient creates the API client.
func newClient(log zerolog.Logger) (*kinesis.Client, error) {
	c, err := kinesis.New(kinesisConfig(), log)
	if err != nil {
		return nil, fmt.Errorf("invalid Kinesis API settings: %w", err)
	}
	return c, nil
}

// newImporter creates an importer. Offline importers leave yields uncosted
// and do not need API settings.
func newImporter(log zerolog.Logger, strict, offline bool) (*importer.Importer, error) {
	var prices importer.CandleSource
	if !offline {
		c, err := newClient(log)
		if err != nil {
			return nil, err
		}
		prices = c
	}
	im, err := importer.New(importerConfig(strict), prices, log)
	if err != nil {
		return nil, fmt.Errorf("invalid importer settings: %w", err)
	}
	return im, nil
}
