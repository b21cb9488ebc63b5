package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshp123/hp-instant-ink/internal/config"
	"github.com/joshp123/hp-instant-ink/internal/printer"
)

const usageDocument = `<?xml version="1.0" encoding="UTF-8"?>
<pudyn:ProductUsageDyn xmlns:pudyn="http://www.hp.com/schemas/imaging/con/ledm/productusagedyn/2007/12/11"
  xmlns:dd="http://www.hp.com/schemas/imaging/con/dictionaries/1.0/">
  <pudyn:PrinterSubunit>
    <dd:TotalImpressions PEID="5082">1843</dd:TotalImpressions>
    <pudyn:SubscriptionImpressions>612</pudyn:SubscriptionImpressions>
  </pudyn:PrinterSubunit>
  <pudyn:ConsumableSubunit>
    <pudyn:Consumable>
      <dd:MarkerColor>CyanMagentaYellow</dd:MarkerColor>
      <dd:ConsumableRawPercentageLevelRemaining>64</dd:ConsumableRawPercentageLevelRemaining>
    </pudyn:Consumable>
    <pudyn:Consumable>
      <dd:MarkerColor>Black</dd:MarkerColor>
      <dd:ConsumableRawPercentageLevelRemaining>18</dd:ConsumableRawPercentageLevelRemaining>
    </pudyn:Consumable>
  </pudyn:ConsumableSubunit>
</pudyn:ProductUsageDyn>`

func setup(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	t.Setenv(config.EnvPath, path)
	return path
}

func fakePrinter(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != printer.StatusPath {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestStatusTable(t *testing.T) {
	setup(t)
	server := fakePrinter(t, usageDocument)

	code, stdout, stderr := runCLI("--printer", server.URL)
	require.Equal(t, exitOK, code, stderr)
	require.Contains(t, stdout, "METRIC")
	require.Contains(t, stdout, "Subscription Pages")
	require.Contains(t, stdout, "612")
	require.Contains(t, stdout, "1843")
	require.Contains(t, stdout, "64%")
	require.Contains(t, stderr, "ALERTS:")
	require.Contains(t, stderr, "LOW BLACK INK: 18% remaining")
	require.NotContains(t, stderr, "LOW COLOUR INK")
}

func TestStatusJSON(t *testing.T) {
	setup(t)
	server := fakePrinter(t, usageDocument)

	code, stdout, stderr := runCLI("-p", server.URL, "-f", "json")
	require.Equal(t, exitOK, code, stderr)
	require.Equal(t, 1, strings.Count(stdout, "\n"))

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	require.EqualValues(t, 1843, got["pages_printed"])
	require.EqualValues(t, 612, got["subscription_impressions"])
	require.EqualValues(t, 64, got["colour_ink_level"])
	require.EqualValues(t, 18, got["black_ink_level"])
	require.Contains(t, got, "timestamp")
}

func TestStatusUsesSavedDefaults(t *testing.T) {
	setup(t)
	server := fakePrinter(t, usageDocument)

	code, _, stderr := runCLI("config", "--set-printer", server.URL, "--set-format", "json", "--set-pretty", "true")
	require.Equal(t, exitOK, code, stderr)

	code, stdout, stderr := runCLI()
	require.Equal(t, exitOK, code, stderr)
	require.True(t, strings.HasPrefix(stdout, "{\n  \""), stdout)

	code, stdout, _ = runCLI("--format", "table")
	require.Equal(t, exitOK, code)
	require.Contains(t, stdout, "METRIC")
}

func TestStatusNoPrinter(t *testing.T) {
	setup(t)

	code, stdout, stderr := runCLI()
	require.Equal(t, exitError, code)
	require.Empty(t, stdout)
	require.Contains(t, stderr, "no printer specified")
	require.Contains(t, stderr, "config --set-printer")
}

func TestStatusUnparsableDocument(t *testing.T) {
	setup(t)
	server := fakePrinter(t, "<ProductUsageDyn><PrinterSubunit/></ProductUsageDyn>")

	code, stdout, stderr := runCLI("--printer", server.URL)
	require.Equal(t, exitError, code)
	require.Empty(t, stdout)
	require.Contains(t, stderr, "pages_printed")
	require.Contains(t, stderr, "different XML layout")
}

func TestStatusHTTPError(t *testing.T) {
	setup(t)
	server := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(server.Close)

	code, _, stderr := runCLI("--printer", server.URL)
	require.Equal(t, exitError, code)
	require.Contains(t, stderr, "HTTP 404")
}

func TestStatusTimeout(t *testing.T) {
	setup(t)
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	code, stdout, stderr := runCLI("--printer", server.URL, "--timeout", "1")
	require.Equal(t, exitError, code)
	require.Empty(t, stdout)
	require.Contains(t, stderr, "did not respond in time")
}

func TestUsageErrors(t *testing.T) {
	setup(t)

	code, _, _ := runCLI("--bogus")
	require.Equal(t, exitUsage, code)

	code, _, stderr := runCLI("extra")
	require.Equal(t, exitUsage, code)
	require.Contains(t, stderr, "unexpected argument")

	code, _, _ = runCLI("--help")
	require.Equal(t, exitOK, code)

	code, _, _ = runCLI("publish", "--printer", "p")
	require.Equal(t, exitUsage, code)
}

func TestConfigRoundTrip(t *testing.T) {
	path := setup(t)

	code, stdout, _ := runCLI("config")
	require.Equal(t, exitOK, code)
	require.Contains(t, stdout, "No configuration changes")
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))

	code, stdout, stderr := runCLI("config", "--set-printer", "192.168.1.13", "--set-timeout", "30")
	require.Equal(t, exitOK, code, stderr)
	require.Contains(t, stdout, "Set default printer: http://192.168.1.13/DevMgmt/ProductUsageDyn.xml")
	require.Contains(t, stdout, "Set default timeout: 30s")

	code, stdout, _ = runCLI("config", "--show")
	require.Equal(t, exitOK, code)
	require.Contains(t, stdout, path)
	require.Contains(t, stdout, `"default_printer": "http://192.168.1.13/DevMgmt/ProductUsageDyn.xml"`)
	require.Contains(t, stdout, `"timeout": 30`)

	code, _, stderr = runCLI("config", "--set-timeout", "0")
	require.Equal(t, exitError, code)
	require.Contains(t, stderr, "timeout")

	code, _, _ = runCLI("config", "--set-format", "xml")
	require.Equal(t, exitError, code)

	code, stdout, _ = runCLI("config", "--reset")
	require.Equal(t, exitOK, code)
	require.Contains(t, stdout, "reset")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"default_printer": null`)
}

func TestConfigCorruptFile(t *testing.T) {
	path := setup(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	code, _, stderr := runCLI("config", "--show")
	require.Equal(t, exitError, code)
	require.Contains(t, stderr, "corrupt")
	require.Contains(t, stderr, "--reset")

	code, _, _ = runCLI("config", "--reset")
	require.Equal(t, exitOK, code)
}

func TestVersion(t *testing.T) {
	code, stdout, _ := runCLI("version")
	require.Equal(t, exitOK, code)
	require.Equal(t, version+"\n", stdout)
}

func TestHelpPrintsUsage(t *testing.T) {
	setup(t)

	code, stdout, stderr := runCLI("--help")
	require.Equal(t, exitOK, code)
	require.Empty(t, stdout)
	require.Contains(t, stderr, "hp-instant-ink [flags]")
	require.Contains(t, stderr, "Commands:")

	code, _, stderr = runCLI("--printer", "p", "stray")
	require.Equal(t, exitUsage, code)
	require.Contains(t, stderr, "unexpected argument \"stray\"")
	require.Contains(t, stderr, "Examples:")
}
