package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/joshp123/hp-instant-ink/internal/logging"
	"github.com/joshp123/hp-instant-ink/internal/mqttpub"
)

// publishCmd reads the printer once and publishes the JSON reading.
func publishCmd(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("publish", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var common printerFlags
	common.register(fs)
	var cfg mqttpub.Config
	fs.StringVar(&cfg.Broker, "broker", "", "MQTT broker (host, host:port or URL)")
	fs.StringVar(&cfg.Topic, "topic", mqttpub.DefaultTopic, "MQTT topic")
	fs.StringVar(&cfg.ClientID, "client-id", "", "MQTT client id (random when empty)")
	fs.StringVar(&cfg.Username, "username", "", "MQTT username")
	fs.StringVar(&cfg.Password, "password", "", "MQTT password")
	qos := fs.Uint("qos", 1, "MQTT QoS (0, 1 or 2)")
	fs.BoolVar(&cfg.Retain, "retain", true, "Retain the message on the broker")
	if err := fs.Parse(args); err != nil {
		return parseExit(err)
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected argument %q\n", fs.Arg(0))
		return exitUsage
	}
	if cfg.Broker == "" {
		fmt.Fprintln(stderr, "error: --broker is required")
		return exitUsage
	}
	if *qos > 2 {
		fmt.Fprintf(stderr, "error: --qos must be 0, 1 or 2, got %d\n", *qos)
		return exitUsage
	}
	cfg.QoS = byte(*qos)

	logger := logging.New(stderr, common.verbose)
	params, err := resolveParams(common.overrides(fs), logger)
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

	publisher, err := mqttpub.Connect(cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "error: mqtt: %v\n", err)
		return exitError
	}
	defer publisher.Close()

	if err := publisher.Publish(ctx, reading); err != nil {
		fmt.Fprintf(stderr, "error: mqtt: %v\n", err)
		return exitError
	}
	fmt.Fprintf(stdout, "Published reading to %s\n", cfg.Topic)
	return exitOK
}
