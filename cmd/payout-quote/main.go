package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/iwvelando/payout-quote/internal/config"
	"github.com/iwvelando/payout-quote/internal/logging"
	"github.com/iwvelando/payout-quote/internal/postal"
	"github.com/iwvelando/payout-quote/internal/quote"
	"github.com/iwvelando/payout-quote/pkg/constants"
	"github.com/iwvelando/payout-quote/pkg/output"
	"github.com/iwvelando/payout-quote/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	defaults := quote.DefaultInput()

	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	monthly := flag.Int64("monthly", defaults.MonthlyPayout, "monthly payout in DKK")
	lumpSum := flag.Int64("lump-sum", defaults.LumpSumPayout, "lump sum payout in DKK")
	duration := flag.String("duration", quote.DurationLabel(constants.ShortDurationQuarters), "payout horizon: 5 år or 10 år")
	propertyValue := flag.Int64("property-value", defaults.PropertyValue, "property value in DKK")
	equityValue := flag.Int64("equity-value", defaults.EquityValue, "equity value in DKK")
	amortizing := flag.Bool("amortizing", defaults.Amortizing, "the loan is repaid on an ongoing basis")
	ownerAge := flag.Int("owner-age", defaults.OwnerAge, "age of the property owner")
	postalCode := flag.String("postal-code", "", "postal code of the property")
	flag.Parse()

	conf, err := loadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	// Initialize logging based on config and CLI override
	logger, err := logging.New(conf.Logging, *logLevel, "payout-quote")
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	quarters, err := quote.ParseDurationLabel(*duration)
	if err != nil {
		logger.Fatal("invalid duration",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	in := quote.Input{
		MonthlyPayout:    *monthly,
		LumpSumPayout:    *lumpSum,
		DurationQuarters: quarters,
		PropertyValue:    *propertyValue,
		EquityValue:      *equityValue,
		Amortizing:       *amortizing,
		OwnerAge:         *ownerAge,
		PostalCode:       *postalCode,
	}
	if err := conf.Quote.Check(in); err != nil {
		logger.Fatal("quote rejected",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	result, err := quote.Compute(in)
	if err != nil {
		logger.Fatal("failed to compute quote",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	city := ""
	if in.PostalCode != "" && conf.Postal.File != "" {
		table, err := postal.Load(logging.Component(logger, "postal"), conf.Postal.File)
		if err != nil {
			logger.Warn("postal table unavailable",
				zap.String("op", "main"),
				zap.Error(err),
			)
		} else {
			city = table.Lookup(in.PostalCode)
		}
	}

	// Handle output.
	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(in, result, city)
	case constants.OutputFormatCSV:
		output.CsvFormat(result)
	}
}

// loadConfiguration reads the config file, falling back to built-in defaults
// when the default file is absent.
func loadConfiguration(path string) (*config.Configuration, error) {
	conf, err := config.LoadConfiguration(path)
	if err == nil {
		return conf, nil
	}
	if path == constants.DefaultConfigFile {
		if _, statErr := os.Stat(path); errors.Is(statErr, fs.ErrNotExist) {
			return config.LoadDefaults()
		}
	}
	return nil, err
}
