package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joshp123/hp-instant-ink/internal/output"
	"github.com/joshp123/hp-instant-ink/internal/printer"
)

func ptr[T any](v T) *T {
	return &v
}

func TestResolvePrecedence(t *testing.T) {
	persisted := Config{
		DefaultPrinter: ptr("http://saved/DevMgmt/ProductUsageDyn.xml"),
		Timeout:        25,
		Format:         output.FormatJSON,
		PrettyJSON:     true,
	}

	t.Run("persisted values", func(t *testing.T) {
		params, err := Resolve(Overrides{}, persisted)
		require.NoError(t, err)
		require.Equal(t, Params{
			PrinterURL: "http://saved/DevMgmt/ProductUsageDyn.xml",
			Timeout:    25 * time.Second,
			Format:     output.FormatJSON,
			PrettyJSON: true,
		}, params)
	})

	t.Run("flags win", func(t *testing.T) {
		params, err := Resolve(Overrides{
			Printer:    ptr("192.168.1.13"),
			Format:     ptr("table"),
			PrettyJSON: ptr(false),
			Timeout:    ptr(3),
		}, persisted)
		require.NoError(t, err)
		require.Equal(t, Params{
			PrinterURL: "http://192.168.1.13/DevMgmt/ProductUsageDyn.xml",
			Timeout:    3 * time.Second,
			Format:     output.FormatTable,
			PrettyJSON: false,
		}, params)
	})

	t.Run("defaults", func(t *testing.T) {
		params, err := Resolve(Overrides{Printer: ptr("printer")}, Defaults())
		require.NoError(t, err)
		require.Equal(t, 10*time.Second, params.Timeout)
		require.Equal(t, output.FormatTable, params.Format)
		require.False(t, params.PrettyJSON)
	})
}

func TestResolveErrors(t *testing.T) {
	_, err := Resolve(Overrides{}, Defaults())
	require.ErrorIs(t, err, ErrNoPrinter)

	_, err = Resolve(Overrides{Printer: ptr("")}, Defaults())
	require.ErrorIs(t, err, printer.ErrInvalidInput)

	_, err = Resolve(Overrides{Printer: ptr("p"), Timeout: ptr(0)}, Defaults())
	require.Error(t, err)

	_, err = Resolve(Overrides{Printer: ptr("p"), Format: ptr("xml")}, Defaults())
	require.Error(t, err)
}
