package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/tdh8316/socialscan/internal/cli"
	"github.com/tdh8316/socialscan/internal/config"
	"github.com/tdh8316/socialscan/internal/history"
	"github.com/tdh8316/socialscan/internal/httpx"
	"github.com/tdh8316/socialscan/internal/logx"
	"github.com/tdh8316/socialscan/internal/output"
	"github.com/tdh8316/socialscan/internal/platform"
	"github.com/tdh8316/socialscan/internal/report"
	"github.com/tdh8316/socialscan/internal/scan"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitFatal = 1
	ExitUsage = 2
)

func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := cli.Parse(args, stdout, stderr, Version())
	if err != nil {
		if errors.Is(err, cli.ErrHelp) {
			return ExitOK
		}
		fmt.Fprintln(stderr, err.Error())
		return ExitUsage
	}

	if opts.NoColor {
		color.NoColor = true
	}
	logger := logx.New(stderr, opts.Verbose)

	settings, cfgPath, err := config.Resolve(opts.ConfigPath, opts.Overrides)
	if err != nil {
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return ExitFatal
	}
	if cfgPath != "" {
		logger.WithField("path", cfgPath).Debug("loaded config file")
	}
	if opts.UpdateDB && settings.SherlockPath == "" {
		fmt.Fprintln(stderr, "--update-db needs a database path: set --sherlock or `sherlock:` in the config file")
		return ExitUsage
	}

	httpClient, err := httpx.NewClient(httpx.ClientConfig{
		WithTor:     settings.WithTor,
		TorProxyURL: settings.ProxyURL,
	})
	if err != nil {
		fmt.Fprintf(stderr, "failed to initialize HTTP client: %v\n", err)
		return ExitFatal
	}

	printer := output.NewPrinter(stdout, opts.NoColor)

	registry, err := buildRegistry(ctx, httpClient, settings, opts.UpdateDB, printer, logger)
	if err != nil {
		fmt.Fprintf(stderr, "platform database error: %v\n", err)
		return ExitFatal
	}

	if opts.ListPlatforms {
		printPlatforms(stdout, registry)
		return ExitOK
	}

	scanner := scan.NewScanner(registry, httpClient, scan.Config{
		UserAgent:   settings.UserAgent,
		Policy:      settings.Policy,
		Concurrency: settings.Concurrency,
	}, logger)

	printer.Banner()
	if settings.WithTor {
		printer.Info("Routing probes through %s", settings.ProxyURL)
	}

	if opts.Validate {
		return runValidate(ctx, scanner, registry, opts, settings, printer)
	}

	printer.Start(opts.Username, settings.Platforms)

	startedAt := time.Now()
	rep, err := scanner.Run(ctx, opts.Username, settings.Platforms, settings.Timeout, printer.Outcome)
	if err != nil {
		fmt.Fprintf(stderr, "[-] Fatal error: %v\n", err)
		return ExitFatal
	}

	printer.Summary(rep)

	// Persistence problems are reported but never change the exit status.
	if opts.Output != "" {
		format := report.FormatFor(opts.Output, opts.Format)
		if err := report.WriteFile(opts.Output, format, rep); err != nil {
			printer.Warn("Error saving results: %v", err)
		} else {
			printer.Info("Results saved to %s", opts.Output)
		}
	}

	if opts.HistoryPath != "" {
		recordHistory(ctx, opts.HistoryPath, rep, startedAt, printer, logger)
	}

	return ExitOK
}

// buildRegistry layers the platform sources: sherlock imports first, then
// the built-in table, then definitions from the config file.
func buildRegistry(
	ctx context.Context,
	client httpx.Doer,
	settings config.Settings,
	updateDB bool,
	printer *output.Printer,
	logger logrus.FieldLogger,
) (*platform.Registry, error) {
	var imported []platform.Spec

	if settings.SherlockPath != "" {
		if updateDB {
			printer.Info("Updating sherlock database at %s", settings.SherlockPath)
			if err := platform.FetchSherlock(ctx, client, settings.UserAgent, settings.SherlockURL, settings.SherlockPath); err != nil {
				printer.Warn("Failed to update database: %v (using existing)", err)
			}
		}

		specs, skipped, err := platform.LoadSherlock(settings.SherlockPath)
		if err != nil {
			return nil, err
		}
		logger.WithFields(logrus.Fields{
			"path":     settings.SherlockPath,
			"imported": len(specs),
			"skipped":  len(skipped),
		}).Debug("imported sherlock platforms")
		imported = specs
	}

	defined, err := platform.SpecsFromDefinitions(settings.Definitions)
	if err != nil {
		return nil, err
	}

	return platform.NewRegistry(imported...).
		With(platform.BuiltinSpecs()...).
		With(defined...), nil
}

func recordHistory(
	ctx context.Context,
	path string,
	rep *scan.Report,
	startedAt time.Time,
	printer *output.Printer,
	logger logrus.FieldLogger,
) {
	store, err := history.Open(path)
	if err != nil {
		printer.Warn("History unavailable: %v", err)
		return
	}
	defer store.Close()

	last, err := store.Last(ctx, rep.Username)
	switch {
	case err == nil:
		printer.Info("Previous run %s found %d of %d platform(s)",
			last.StartedAt.Format(time.RFC3339), last.FoundCount, last.Platforms)
	case errors.Is(err, history.ErrNoRuns):
	default:
		logger.WithError(err).Warn("read history")
	}

	id, err := store.Record(ctx, rep, startedAt)
	if err != nil {
		printer.Warn("Error recording history: %v", err)
		return
	}
	logger.WithField("run", id).Debug("recorded run")
}

// runValidate checks the platforms named with -p, or every registered
// platform, against their claimed/unclaimed usernames. Failing platforms are
// a report, not an error.
func runValidate(
	ctx context.Context,
	scanner *scan.Scanner,
	reg *platform.Registry,
	opts cli.Options,
	settings config.Settings,
	printer *output.Printer,
) int {
	ids := opts.Overrides.Platforms
	if ids == nil {
		ids = reg.Names()
	}

	printer.ValidationStart(len(ids))
	failed, err := scanner.Validate(ctx, ids, settings.Timeout, printer.ValidationFailure)
	if err != nil {
		printer.Warn("Validation aborted: %v", err)
		return ExitFatal
	}
	printer.ValidationDone(len(ids), failed)
	return ExitOK
}

func printPlatforms(stdout io.Writer, reg *platform.Registry) {
	fmt.Fprintf(stdout, "Registered platforms (%d):\n", reg.Len())
	for _, name := range reg.Names() {
		spec, _ := reg.Lookup(name)
		fmt.Fprintf(stdout, "  %-20s %s\n", name, strings.TrimSpace(spec.URLTemplate))
	}
}
