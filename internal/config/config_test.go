// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	require.Equal(t, Config{Log: Log{Level: "info", Format: "text"}}, cfg)
}

func TestLoadPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "halffit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: warn
  format: json
metrics:
  addr: ":9000"
`), 0o600))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	require.Equal(t, "warn", cfg.Log.Level)
	require.Equal(t, "json", cfg.Log.Format)
	require.Equal(t, ":9000", cfg.Metrics.Addr)

	t.Setenv("HALFFIT_LOG_LEVEL", "error")
	t.Setenv("HALFFIT_METRICS_ADDR", ":9100")
	cfg, err = Load(path, nil)
	require.NoError(t, err)
	require.Equal(t, "error", cfg.Log.Level)
	require.Equal(t, ":9100", cfg.Metrics.Addr)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("log-level", "info", "")
	fs.String("metrics-addr", "", "")
	require.NoError(t, fs.Parse([]string{"--log-level=debug"}))
	cfg, err = Load(path, fs)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.Log.Level, "explicit flag wins")
	require.Equal(t, ":9100", cfg.Metrics.Addr, "unset flag keeps env value")
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)

	t.Setenv("HALFFIT_LOG_FORMAT", "xml")
	_, err = Load("", nil)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestLoadBoundFlagDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "halffit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\n"), 0o600))

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("log-level", "error", "")
	fs.String("log-format", "json", "")
	fs.String("metrics-addr", ":7000", "")
	require.NoError(t, fs.Parse(nil))

	cfg, err := Load(path, fs)
	require.NoError(t, err)
	require.Equal(t, "warn", cfg.Log.Level, "file beats an unchanged flag")
	require.Equal(t, "text", cfg.Log.Format, "unchanged flag default is ignored")
	require.Equal(t, "", cfg.Metrics.Addr)

	t.Setenv("HALFFIT_LOG_FORMAT", "json")
	require.NoError(t, fs.Parse([]string{"--metrics-addr=:7001"}))
	cfg, err = Load(path, fs)
	require.NoError(t, err)
	require.Equal(t, "json", cfg.Log.Format)
	require.Equal(t, ":7001", cfg.Metrics.Addr)
}
