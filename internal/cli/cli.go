package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/vk/monoplan/internal/app"
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

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("monoplan", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
Monoplan - A dry-run planner for monorepo task pipelines.

Usage:
  monoplan [options] TASK

Arguments:
  TASK
    Name of the task to plan, as declared in monoplan.hcl.

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "monoplan.hcl", "Path to the root config file or workspace directory.")
	cFlag := flagSet.String("c", "", "Path to the root config file or workspace directory (shorthand).")
	formatFlag := flagSet.String("format", "text", "Report output format. Options: 'text' or 'json'.")
	singlePackageFlag := flagSet.Bool("single-package", false, "Plan against the workspace root only, forbidding cross-package references.")
	cacheDirFlag := flagSet.String("cache-dir", filepath.Join(".monoplan", "cache"), "Local cache directory. Empty disables the local tier.")
	remoteCacheURLFlag := flagSet.String("remote-cache-url", "", "Base URL of the remote cache. Empty disables the remote tier.")
	envFileFlag := flagSet.String("env-file", "", "Optional dotenv file merged under the process environment.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	workersFlag := flagSet.Int("workers", 10, "Number of concurrent workers for the planner.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	configPath := *configFlag
	if *cFlag != "" {
		configPath = *cFlag
	}

	task := ""
	if flagSet.NArg() > 0 {
		task = flagSet.Arg(0)
	}
	slog.Debug("Requested task determined.", "task", task)

	if task == "" {
		slog.Debug("No task provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	format := strings.ToLower(*formatFlag)
	if format != "text" && format != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid format: must be 'text' or 'json'"}
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
		ConfigPath:     configPath,
		Task:           task,
		Format:         format,
		SinglePackage:  *singlePackageFlag,
		CacheDir:       *cacheDirFlag,
		RemoteCacheURL: *remoteCacheURLFlag,
		EnvFile:        *envFileFlag,
		LogFormat:      logFormat,
		LogLevel:       logLevel,
		WorkerCount:    *workersFlag,
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
