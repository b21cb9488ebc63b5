package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshp123/hp-instant-ink/internal/output"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "hp-instant-ink", "config.json"))
}

func requireKind(t *testing.T, err error, kind ErrorKind) *Error {
	t.Helper()
	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr), "expected *config.Error, got %T: %v", err, err)
	require.Equal(t, kind, cfgErr.Kind)
	return cfgErr
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	store := newTestStore(t)

	cfg, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, Defaults(), cfg)

	_, err = os.Stat(store.Path())
	require.True(t, os.IsNotExist(err), "load must not create the file")
}

func TestLoadCorrupt(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o755))

	for _, content := range []string{`{"timeout": `, `[]`, `{"timeout": 0}`, `{"format": "xml"}`, `{"default_printer": "bad host"}`} {
		require.NoError(t, os.WriteFile(store.Path(), []byte(content), 0o600))
		_, err := store.Load()
		requireKind(t, err, Corrupt)
	}
}

func TestLoadPartialFileMergesDefaults(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o755))
	require.NoError(t, os.WriteFile(store.Path(), []byte(`{"format": "json"}`), 0o600))

	cfg, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, output.FormatJSON, cfg.Format)
	require.Equal(t, DefaultTimeoutSeconds, cfg.Timeout)
	require.Nil(t, cfg.DefaultPrinter)
}

func TestSetTimeoutRoundTripIsolatesField(t *testing.T) {
	store := newTestStore(t)
	_, err := store.SetPrinter("192.168.1.13")
	require.NoError(t, err)
	_, err = store.SetFormat("json")
	require.NoError(t, err)

	before, err := store.Load()
	require.NoError(t, err)

	_, err = store.SetTimeout(30)
	require.NoError(t, err)

	after, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, 30, after.Timeout)

	after.Timeout = before.Timeout
	require.Equal(t, before, after)
}

func TestSetPrinterNormalizes(t *testing.T) {
	store := newTestStore(t)

	cfg, err := store.SetPrinter("192.168.1.13")
	require.NoError(t, err)
	require.Equal(t, "http://192.168.1.13/DevMgmt/ProductUsageDyn.xml", cfg.Printer())

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	require.Contains(t, string(data), `"default_printer": "http://192.168.1.13/DevMgmt/ProductUsageDyn.xml"`)
}

func TestSetValidationFailsBeforeWrite(t *testing.T) {
	store := newTestStore(t)

	_, err := store.SetTimeout(0)
	require.Equal(t, "timeout", requireKind(t, err, Invalid).Field)

	_, err = store.SetTimeout(-5)
	requireKind(t, err, Invalid)

	_, err = store.SetFormat("yaml")
	require.Equal(t, "format", requireKind(t, err, Invalid).Field)

	_, err = store.SetPrinter("   ")
	require.Equal(t, "default_printer", requireKind(t, err, Invalid).Field)

	_, statErr := os.Stat(store.Path())
	require.True(t, os.IsNotExist(statErr), "invalid set must not write")
}

func TestResetRestoresDefaults(t *testing.T) {
	store := newTestStore(t)
	_, err := store.SetPrinter("printer.lan")
	require.NoError(t, err)
	_, err = store.SetTimeout(45)
	require.NoError(t, err)
	_, err = store.SetPrettyJSON(true)
	require.NoError(t, err)

	_, err = store.Reset()
	require.NoError(t, err)

	cfg, err := store.Show()
	require.NoError(t, err)
	require.Equal(t, Defaults(), cfg)

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	require.JSONEq(t, `{"default_printer": null, "timeout": 10, "format": "table", "pretty_json": false}`, string(data))
}

func TestResetOverwritesCorruptFile(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o755))
	require.NoError(t, os.WriteFile(store.Path(), []byte("garbage"), 0o600))

	_, err := store.SetTimeout(5)
	requireKind(t, err, Corrupt)

	_, err = store.Reset()
	require.NoError(t, err)
	cfg, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, Defaults(), cfg)
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	store := newTestStore(t)
	for i := 1; i <= 3; i++ {
		_, err := store.SetTimeout(i)
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "config.json", entries[0].Name())
}

func TestReturnedConfigIsACopy(t *testing.T) {
	store := newTestStore(t)
	cfg, err := store.SetPrinter("printer.lan")
	require.NoError(t, err)

	*cfg.DefaultPrinter = "http://elsewhere/DevMgmt/ProductUsageDyn.xml"

	reloaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, "http://printer.lan/DevMgmt/ProductUsageDyn.xml", reloaded.Printer())
}

func TestDefaultPathHonoursEnv(t *testing.T) {
	t.Setenv(EnvPath, "/tmp/custom.json")
	path, err := DefaultPath()
	require.NoError(t, err)
	require.Equal(t, "/tmp/custom.json", path)
}

func TestLoadNormalizesHandEditedPrinter(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o755))
	require.NoError(t, os.WriteFile(store.Path(), []byte(`{"default_printer": " printer.lan/ ", "timeout": 10, "format": "table"}`), 0o600))

	cfg, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, "http://printer.lan/DevMgmt/ProductUsageDyn.xml", cfg.Printer())

	params, err := Resolve(Overrides{}, cfg)
	require.NoError(t, err)
	require.Equal(t, "http://printer.lan/DevMgmt/ProductUsageDyn.xml", params.PrinterURL)

	require.NoError(t, os.WriteFile(store.Path(), []byte(`{"default_printer": "bad host", "timeout": 10, "format": "table"}`), 0o600))
	_, err = store.Load()
	requireKind(t, err, Corrupt)
}
