package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/joshp123/hp-instant-ink/internal/config"
	"github.com/joshp123/hp-instant-ink/internal/printer"
	"github.com/joshp123/hp-instant-ink/internal/usage"
)

// report prints a diagnostic for err and returns the exit code.
func report(w io.Writer, printerURL string, err error) int {
	for _, line := range describe(printerURL, err) {
		fmt.Fprintln(w, line)
	}
	return exitError
}

func describe(printerURL string, err error) []string {
	var (
		statusErr *printer.HTTPStatusError
		parseErr  *usage.ParseError
		cfgErr    *config.Error
	)

	switch {
	case errors.Is(err, config.ErrNoPrinter):
		return []string{
			"error: no printer specified. Use --printer <host> or set a default with 'config --set-printer <host>'",
			"example: hp-instant-ink --printer 192.168.1.13",
			"         hp-instant-ink config --set-printer 192.168.1.13",
		}
	case errors.Is(err, printer.ErrTimeout):
		return []string{
			fmt.Sprintf("error: printer at %s did not respond in time", printerURL),
			fmt.Sprintf("detail: %v", err),
			"hint: raise --timeout or check that the printer is awake",
		}
	case errors.As(err, &statusErr):
		return []string{
			fmt.Sprintf("error: printer at %s answered HTTP %d", printerURL, statusErr.Code),
			"hint: this model may not serve " + printer.StatusPath,
		}
	case errors.Is(err, printer.ErrNetwork):
		return []string{
			fmt.Sprintf("error: could not connect to printer at %s", printerURL),
			"hint: check that the printer is online and the URL is correct",
			fmt.Sprintf("detail: %v", err),
		}
	case errors.As(err, &cfgErr):
		lines := []string{fmt.Sprintf("error: %v", err)}
		if cfgErr.Kind == config.Corrupt {
			lines = append(lines, "hint: fix the file by hand or run 'config --reset'")
		}
		return lines
	case errors.Is(err, printer.ErrInvalidInput):
		return []string{fmt.Sprintf("error: %v", err)}
	case errors.As(err, &parseErr):
		lines := []string{"error: failed to parse the printer's usage document", fmt.Sprintf("detail: %v", err)}
		if parseErr.Kind != usage.OutOfRange {
			lines = append(lines, "hint: your printer may use a different XML layout; rerun with --verbose to see the document")
		}
		return lines
	default:
		return []string{fmt.Sprintf("error: %v", err)}
	}
}
