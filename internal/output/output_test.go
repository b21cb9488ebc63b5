package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joshp123/hp-instant-ink/internal/usage"
)

var sample = usage.Reading{
	Timestamp:               time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC),
	PagesPrinted:            1843,
	SubscriptionImpressions: 612,
	ColourInkLevel:          64,
	BlackInkLevel:           18,
}

func TestParseFormat(t *testing.T) {
	got, err := ParseFormat("JSON")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, got)

	got, err = ParseFormat(" table ")
	require.NoError(t, err)
	require.Equal(t, FormatTable, got)

	_, err = ParseFormat("csv")
	require.Error(t, err)
}

func TestRenderJSONKeys(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sample, FormatJSON, false))
	require.Equal(t, 1, strings.Count(buf.String(), "\n"))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, map[string]any{
		"timestamp":                "2026-10-18T09:30:00Z",
		"pages_printed":            float64(1843),
		"subscription_impressions": float64(612),
		"colour_ink_level":         float64(64),
		"black_ink_level":          float64(18),
	}, decoded)
}

func TestRenderJSONPretty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sample, FormatJSON, true))
	require.Contains(t, buf.String(), "\n  \"pages_printed\": 1843,\n")
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sample, FormatTable, false))

	out := buf.String()
	for _, want := range []string{"Subscription Pages", "612", "Total Pages", "1843", "Colour Ink Remaining", "64%", "Black Ink Remaining", "18%", "Last Updated"} {
		require.Contains(t, out, want)
	}
	require.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 6)
}

func TestAlerts(t *testing.T) {
	require.Equal(t, []string{"LOW BLACK INK: 18% remaining"}, Alerts(sample, DefaultAlertThreshold))

	low := sample
	low.ColourInkLevel = 20
	require.Equal(t, []string{"LOW COLOUR INK: 20% remaining", "LOW BLACK INK: 18% remaining"}, Alerts(low, DefaultAlertThreshold))

	require.Empty(t, Alerts(sample, 10))
}
