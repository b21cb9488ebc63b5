package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/joshp123/hp-instant-ink/internal/config"
	"github.com/joshp123/hp-instant-ink/internal/logging"
	"github.com/joshp123/hp-instant-ink/internal/monitor"
	"github.com/joshp123/hp-instant-ink/internal/output"
	"github.com/joshp123/hp-instant-ink/internal/printer"
	"github.com/joshp123/hp-instant-ink/internal/usage"
)

var version = "dev"

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run dispatches one invocation and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "config":
			return configCmd(args[1:], stdout, stderr)
		case "exporter":
			return exporterCmd(ctx, args[1:], stdout, stderr)
		case "publish":
			return publishCmd(ctx, args[1:], stdout, stderr)
		case "version", "--version":
			fmt.Fprintln(stdout, version)
			return exitOK
		}
	}
	return statusCmd(ctx, args, stdout, stderr)
}

// printerFlags are shared by every command that talks to the printer.
type printerFlags struct {
	printer string
	timeout int
	verbose bool
}

func (p *printerFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&p.printer, "printer", "", "Printer URL/hostname/IP (adds "+printer.StatusPath+" automatically)")
	fs.StringVar(&p.printer, "p", "", "shorthand for --printer")
	fs.IntVar(&p.timeout, "timeout", 0, "Request timeout in seconds")
	fs.IntVar(&p.timeout, "t", 0, "shorthand for --timeout")
	fs.BoolVar(&p.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&p.verbose, "v", false, "shorthand for --verbose")
}

// overrides reports only the flags the user actually set.
func (p *printerFlags) overrides(fs *flag.FlagSet) config.Overrides {
	var o config.Overrides
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "printer", "p":
			o.Printer = &p.printer
		case "timeout", "t":
			o.Timeout = &p.timeout
		}
	})
	return o
}

func statusCmd(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("hp-instant-ink", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(fs.Output()) }

	var common printerFlags
	common.register(fs)
	format := fs.String("format", "", "Output format: table or json")
	fs.StringVar(format, "f", "", "shorthand for --format")
	pretty := fs.Bool("pretty", false, "Indent JSON output")
	if err := fs.Parse(args); err != nil {
		return parseExit(err)
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected argument %q\n", fs.Arg(0))
		printUsage(stderr)
		return exitUsage
	}

	overrides := common.overrides(fs)
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "format", "f":
			overrides.Format = format
		case "pretty":
			overrides.PrettyJSON = pretty
		}
	})

	logger := logging.New(stderr, common.verbose)
	logger.Info().Str("version", version).Msg("hp-instant-ink starting")

	params, err := resolveParams(overrides, logger)
	if err != nil {
		return report(stderr, "", err)
	}

	m, err := newMonitor(params, logger)
	if err != nil {
		return report(stderr, params.PrinterURL, err)
	}
	reading, err := m.Read(ctx)
	if err != nil {
		return report(stderr, params.PrinterURL, err)
	}

	if err := output.Render(stdout, reading, params.Format, params.PrettyJSON); err != nil {
		return report(stderr, params.PrinterURL, err)
	}
	printAlerts(stderr, reading)
	logger.Info().Msg("retrieved printer data")
	return exitOK
}

func resolveParams(overrides config.Overrides, logger zerolog.Logger) (config.Params, error) {
	store, err := openStore()
	if err != nil {
		return config.Params{}, err
	}
	cfg, err := store.Load()
	if err != nil {
		return config.Params{}, err
	}
	logger.Debug().Str("path", store.Path()).Str("printer", cfg.Printer()).Int("timeout", cfg.Timeout).Str("format", string(cfg.Format)).Msg("loaded config")

	params, err := config.Resolve(overrides, cfg)
	if err != nil {
		return config.Params{}, err
	}
	logger.Debug().Str("printer", params.PrinterURL).Dur("timeout", params.Timeout).Str("format", string(params.Format)).Msg("effective settings")
	return params, nil
}

func newMonitor(params config.Params, logger zerolog.Logger, opts ...printer.Option) (*monitor.Monitor, error) {
	client := printer.NewClient(append([]printer.Option{printer.WithLogger(logger)}, opts...)...)
	parser := usage.NewParser(usage.WithParserLogger(logger))
	return monitor.New(client, parser, params.PrinterURL, params.Timeout, logger)
}

func openStore() (*config.Store, error) {
	path, err := config.DefaultPath()
	if err != nil {
		return nil, err
	}
	return config.NewStore(path), nil
}

func printAlerts(w io.Writer, reading usage.Reading) {
	alerts := output.Alerts(reading, output.DefaultAlertThreshold)
	if len(alerts) == 0 {
		return
	}
	fmt.Fprintln(w, "\nALERTS:")
	for _, alert := range alerts {
		fmt.Fprintf(w, "  %s\n", alert)
	}
}

func parseExit(err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	return exitUsage
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "hp-instant-ink [flags]")
	fmt.Fprintln(w, "hp-instant-ink <command> [flags]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Query an HP printer for page usage and ink levels.")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -p, --printer HOST     printer URL/hostname/IP")
	fmt.Fprintln(w, "  -f, --format FORMAT    table or json")
	fmt.Fprintln(w, "      --pretty           indent JSON output")
	fmt.Fprintln(w, "  -t, --timeout SECONDS  request timeout")
	fmt.Fprintln(w, "  -v, --verbose          verbose logging")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  config     show or change saved defaults")
	fmt.Fprintln(w, "  exporter   serve Prometheus metrics for the printer")
	fmt.Fprintln(w, "  publish    publish one reading to an MQTT broker")
	fmt.Fprintln(w, "  version    print the version")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  hp-instant-ink --printer 192.168.1.13")
	fmt.Fprintln(w, "  hp-instant-ink --printer hp-printer.local --format json")
	fmt.Fprintln(w, "  hp-instant-ink config --set-printer 192.168.1.13")
	fmt.Fprintln(w, "  hp-instant-ink config --show")
}
