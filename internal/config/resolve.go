package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joshp123/hp-instant-ink/internal/output"
	"github.com/joshp123/hp-instant-ink/internal/printer"
)

// ErrNoPrinter means neither a flag nor the config file names a printer.
var ErrNoPrinter = errors.New("no printer specified")

// Overrides carries values given explicitly on the command line. Nil means
// the flag was not set.
type Overrides struct {
	Printer    *string
	Format     *string
	PrettyJSON *bool
	Timeout    *int
}

// Params are the effective settings for one invocation.
type Params struct {
	PrinterURL string
	Timeout    time.Duration
	Format     output.Format
	PrettyJSON bool
}

// Resolve layers flag over persisted value over default.
func Resolve(flags Overrides, cfg Config) (Params, error) {
	params := Params{
		PrinterURL: cfg.Printer(),
		Timeout:    time.Duration(cfg.Timeout) * time.Second,
		Format:     cfg.Format,
		PrettyJSON: cfg.PrettyJSON,
	}
	if params.Timeout <= 0 {
		params.Timeout = DefaultTimeoutSeconds * time.Second
	}
	if !params.Format.Valid() {
		params.Format = DefaultFormat
	}

	if flags.Printer != nil {
		endpoint, err := printer.NormalizeURL(*flags.Printer)
		if err != nil {
			return Params{}, err
		}
		params.PrinterURL = endpoint
	}
	if flags.Format != nil {
		format, err := output.ParseFormat(*flags.Format)
		if err != nil {
			return Params{}, fmt.Errorf("--format: %w", err)
		}
		params.Format = format
	}
	if flags.PrettyJSON != nil {
		params.PrettyJSON = *flags.PrettyJSON
	}
	if flags.Timeout != nil {
		if *flags.Timeout <= 0 {
			return Params{}, fmt.Errorf("--timeout must be a positive number of seconds, got %d", *flags.Timeout)
		}
		params.Timeout = time.Duration(*flags.Timeout) * time.Second
	}

	if params.PrinterURL == "" {
		return Params{}, ErrNoPrinter
	}
	return params, nil
}
