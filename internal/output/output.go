package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joshp123/hp-instant-ink/internal/usage"
)

// Format selects how a Reading is rendered.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// DefaultAlertThreshold is the ink percentage at or below which Alerts fires.
const DefaultAlertThreshold = 20

// ParseFormat accepts "table" or "json", case-insensitively.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (want table or json)", value)
	}
}

func (f Format) Valid() bool {
	return f == FormatTable || f == FormatJSON
}

// Render writes reading to w in the selected format.
func Render(w io.Writer, reading usage.Reading, format Format, pretty bool) error {
	if format == FormatJSON {
		return renderJSON(w, reading, pretty)
	}
	return renderTable(w, reading)
}

func renderJSON(w io.Writer, reading usage.Reading, pretty bool) error {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(reading, "", "  ")
	} else {
		data, err = json.Marshal(reading)
	}
	if err != nil {
		return fmt.Errorf("format json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func renderTable(w io.Writer, reading usage.Reading) error {
	rows := [][]string{
		{"METRIC", "VALUE"},
		{"Subscription Pages", fmt.Sprintf("%d", reading.SubscriptionImpressions)},
		{"Total Pages", fmt.Sprintf("%d", reading.PagesPrinted)},
		{"Colour Ink Remaining", fmt.Sprintf("%d%%", reading.ColourInkLevel)},
		{"Black Ink Remaining", fmt.Sprintf("%d%%", reading.BlackInkLevel)},
		{"Last Updated", reading.Timestamp.In(time.Local).Format("2006-01-02 15:04:05 MST")},
	}

	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// Alerts lists low-ink warnings for levels at or below threshold.
func Alerts(reading usage.Reading, threshold int) []string {
	var alerts []string
	if reading.ColourInkLevel <= threshold {
		alerts = append(alerts, fmt.Sprintf("LOW COLOUR INK: %d%% remaining", reading.ColourInkLevel))
	}
	if reading.BlackInkLevel <= threshold {
		alerts = append(alerts, fmt.Sprintf("LOW BLACK INK: %d%% remaining", reading.BlackInkLevel))
	}
	return alerts
}
