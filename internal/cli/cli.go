package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/fabrikgo/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// overrideFlags collects repeated -set key=value pairs.
type overrideFlags map[string]string

func (o overrideFlags) String() string {
	return fmt.Sprintf("%v", map[string]string(o))
}

func (o overrideFlags) Set(arg string) error {
	key, val, found := strings.Cut(arg, "=")
	if !found || key == "" {
		return fmt.Errorf("override must have the form key=value, got %q", arg)
	}
	o[key] = val
	return nil
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("fabrikgo", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
FabrikGo - a declarative factory engine for building test objects.

Usage:
  fabrikgo [options] FACTORIES_PATH

Arguments:
  FACTORIES_PATH
    Path to a single .hcl definition file or a directory containing them.

Options:
`)
		flagSet.PrintDefaults()
	}

	factoriesFlag := flagSet.String("factories", "", "Path to the definition file or directory.")
	fFlag := flagSet.String("f", "", "Path to the definition file or directory (shorthand).")
	factoryFlag := flagSet.String("factory", "", "Name of the factory to build. Empty lists the loaded factories.")
	strategyFlag := flagSet.String("strategy", "", "Build strategy: 'build', 'create', 'attributes_for' or 'stub'. Empty uses the factory's default.")
	countFlag := flagSet.Int("count", 1, "Number of objects to build.")
	overrides := overrideFlags{}
	flagSet.Var(overrides, "set", "Override an attribute for this run, as key=value. Repeatable.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *factoriesFlag != "" {
		path = *factoriesFlag
	} else if *fFlag != "" {
		path = *fFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}

	if path == "" {
		slog.Debug("No definitions path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		FactoriesPath: path,
		FactoryName:   *factoryFlag,
		Strategy:      strings.ToLower(*strategyFlag),
		Count:         *countFlag,
		Overrides:     overrides,
		LogFormat:     logFormat,
		LogLevel:      logLevel,
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
