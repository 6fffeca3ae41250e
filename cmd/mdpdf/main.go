// Command mdpdf converts a directory of Markdown files to PDF and HTML.
// It reads GitHub Actions INPUT_* variables so it can run as an action step.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain runs the CLI and returns the process exit code.
func runMain(args []string, env *Environment) int {
	f, err := parseFlags(args[1:], env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitUsage
	}
	if f.help {
		printUsage(env.Stdout, f.fs)
		return ExitSuccess
	}
	if f.version {
		fmt.Fprintf(env.Stdout, "mdpdf %s\n", Version)
		return ExitSuccess
	}

	logger := newLogger(env.Stderr, logLevel(f.common))

	// Respect container CPU limits before sizing the worker pool
	if _, err := maxprocs.Set(maxprocs.Logger(logger.Debugf)); err != nil {
		logger.Debug("maxprocs", "err", err)
	}

	ctx, cancel := notifyContext(context.Background())
	defer cancel()

	start := env.Now()
	if err := run(ctx, f, env, logger); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Error("interrupted")
		} else {
			logger.Error(err.Error())
		}
		return exitCodeFor(err)
	}
	logger.Info("done", "elapsed", env.Now().Sub(start).Round(time.Millisecond))
	return ExitSuccess
}
