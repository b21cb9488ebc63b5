package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/joshp123/hp-instant-ink/internal/config"
)

func configCmd(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { configUsage(fs.Output()) }

	show := fs.Bool("show", false, "Show current configuration")
	reset := fs.Bool("reset", false, "Reset configuration to defaults")
	setPrinter := fs.String("set-printer", "", "Set default printer")
	setFormat := fs.String("set-format", "", "Set default output format (table|json)")
	setTimeout := fs.Int("set-timeout", 0, "Set default timeout in seconds")
	setPretty := fs.String("set-pretty", "", "Set default JSON indentation (true|false)")
	if err := fs.Parse(args); err != nil {
		return parseExit(err)
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected argument %q\n", fs.Arg(0))
		configUsage(stderr)
		return exitUsage
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	store, err := openStore()
	if err != nil {
		return report(stderr, "", err)
	}

	if *reset {
		if _, err := store.Reset(); err != nil {
			return report(stderr, "", err)
		}
		fmt.Fprintln(stdout, "Configuration reset to defaults")
		return exitOK
	}

	if *show {
		cfg, err := store.Show()
		if err != nil {
			return report(stderr, "", err)
		}
		return printConfig(stdout, stderr, store.Path(), cfg)
	}

	changed := false
	if set["set-printer"] {
		cfg, err := store.SetPrinter(*setPrinter)
		if err != nil {
			return report(stderr, "", err)
		}
		fmt.Fprintf(stdout, "Set default printer: %s\n", cfg.Printer())
		changed = true
	}
	if set["set-timeout"] {
		cfg, err := store.SetTimeout(*setTimeout)
		if err != nil {
			return report(stderr, "", err)
		}
		fmt.Fprintf(stdout, "Set default timeout: %ds\n", cfg.Timeout)
		changed = true
	}
	if set["set-format"] {
		cfg, err := store.SetFormat(*setFormat)
		if err != nil {
			return report(stderr, "", err)
		}
		fmt.Fprintf(stdout, "Set default format: %s\n", cfg.Format)
		changed = true
	}
	if set["set-pretty"] {
		pretty, err := strconv.ParseBool(*setPretty)
		if err != nil {
			return report(stderr, "", &config.Error{Kind: config.Invalid, Field: "pretty_json", Err: err})
		}
		cfg, err := store.SetPrettyJSON(pretty)
		if err != nil {
			return report(stderr, "", err)
		}
		fmt.Fprintf(stdout, "Set pretty JSON: %t\n", cfg.PrettyJSON)
		changed = true
	}

	if !changed {
		fmt.Fprintln(stdout, "No configuration changes made. Use --help to see available options.")
		return exitOK
	}
	fmt.Fprintln(stdout, "Configuration saved")
	return exitOK
}

func printConfig(stdout, stderr io.Writer, path string, cfg config.Config) int {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return report(stderr, "", err)
	}
	fmt.Fprintf(stdout, "Current configuration (%s):\n", path)
	fmt.Fprintln(stdout, string(data))
	return exitOK
}

func configUsage(w io.Writer) {
	fmt.Fprintln(w, "hp-instant-ink config [flags]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  --show                  show current configuration")
	fmt.Fprintln(w, "  --set-printer HOST      set default printer")
	fmt.Fprintln(w, "  --set-format FORMAT     set default output format (table|json)")
	fmt.Fprintln(w, "  --set-timeout SECONDS   set default timeout")
	fmt.Fprintln(w, "  --set-pretty BOOL       indent JSON output by default")
	fmt.Fprintln(w, "  --reset                 reset configuration to defaults")
}
