package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/joshp123/hp-instant-ink/internal/logging"
	"github.com/joshp123/hp-instant-ink/internal/metrics"
	"github.com/joshp123/hp-instant-ink/internal/printer"
	"github.com/joshp123/hp-instant-ink/internal/rate"
	"github.com/joshp123/hp-instant-ink/internal/server"
)

const (
	defaultListenAddr = ":9110"
	// scrapeSlack covers gathering on top of the printer request timeout.
	scrapeSlack = 2 * time.Second
)

// exporterCmd serves /metrics, scraping the printer on every collection.
func exporterCmd(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("exporter", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var common printerFlags
	common.register(fs)
	listen := fs.String("listen", defaultListenAddr, "HTTP listen address")
	policy := rate.DefaultPolicy()
	fs.IntVar(&policy.MaxPerMinute, "max-requests-per-minute", policy.MaxPerMinute, "Printer requests allowed per minute (0 disables the limit)")
	fs.DurationVar(&policy.CacheTTL, "cache-ttl", policy.CacheTTL, "Serve the last printer response for this long when rate limited; last_success_timestamp_seconds keeps the time of the real fetch")
	if err := fs.Parse(args); err != nil {
		return parseExit(err)
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected argument %q\n", fs.Arg(0))
		return exitUsage
	}

	logger := logging.New(stderr, common.verbose)
	params, err := resolveParams(common.overrides(fs), logger)
	if err != nil {
		return report(stderr, "", err)
	}
	guard := rate.New(params.PrinterURL, policy)
	m, err := newMonitor(params, logger, printer.WithHTTPClient(guard.Wrap(nil)))
	if err != nil {
		return report(stderr, params.PrinterURL, err)
	}

	collector := metrics.NewCollector(m, params.PrinterURL, params.Timeout, logger, metrics.WithSourceTime(guard.LastFetched))
	registry := metrics.Registry(collector, version)
	registry.MustRegister(guard.Collectors()...)
	mux := server.NewMux(registry, metrics.Dashboards(), params.Timeout+scrapeSlack, logger)
	httpServer := server.NewHTTPServer(*listen, mux)

	fmt.Fprintf(stdout, "Serving metrics for %s on %s\n", params.PrinterURL, *listen)
	if err := httpServer.Run(ctx); err != nil {
		fmt.Fprintf(stderr, "error: http server: %v\n", err)
		return exitError
	}
	return exitOK
}
