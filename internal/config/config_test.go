package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
env: production
adb:
  serial: emulator-5554
ledger:
  driver: sqlite
  dsn: /tmp/ledger.sqlite
ocr:
  lang: rus+eng
  regions:
    contracts_marker: [10, 20, 300, 60]
    system: [100, 100, 400, 140]
cycle:
  poll_interval: 45s
  cooldown: 2s
  buyback_percent: 85.5
ui:
  open_contracts_steps:
    - action: tap
      x: 100
      y: 200
      delay: 1.5
    - action: sleep
      seconds: 2
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "emulator-5554", cfg.ADB.Serial)
	assert.Equal(t, "rus+eng", cfg.OCR.Lang)
	assert.Equal(t, []int{10, 20, 300, 60}, cfg.OCR.Regions["contracts_marker"])
	assert.Equal(t, 45*time.Second, cfg.Cycle.PollInterval)
	assert.Equal(t, 2*time.Second, cfg.Cycle.Cooldown)
	assert.InDelta(t, 85.5, cfg.Cycle.BuybackPercent, 1e-9)
	require.Len(t, cfg.UI["open_contracts_steps"], 2)
	assert.Equal(t, "tap", cfg.UI["open_contracts_steps"][0]["action"])

	// untouched sections keep their defaults
	assert.Equal(t, 4*time.Second, cfg.Cycle.ActionDelay)
	assert.Equal(t, "fs", cfg.Artifacts.Driver)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "auto", cfg.ADB.Serial)
	assert.Equal(t, 30*time.Second, cfg.Cycle.PollInterval)
	assert.Equal(t, 5*time.Second, cfg.Cycle.Cooldown)
	assert.InDelta(t, 100.0, cfg.Cycle.BuybackPercent, 1e-9)
	assert.NotNil(t, cfg.UI)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("CONTRACTBOT_LEDGER_DRIVER", "postgres")
	t.Setenv("CONTRACTBOT_LEDGER_DSN", "postgres://localhost/contracts")
	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Ledger.Driver)
	assert.Equal(t, "postgres://localhost/contracts", cfg.Ledger.DSN)
}

func TestValidate(t *testing.T) {
	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)

	cfg.Ledger.Driver = "mysql"
	cfg.OCR.Regions["broken"] = []int{1, 2, 3}
	cfg.API.ListenAddr = ":8080"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ledger.driver")
	assert.Contains(t, err.Error(), "ocr.regions.broken")
	assert.Contains(t, err.Error(), "api.jwt_secret")
}

func TestPersistSerial(t *testing.T) {
	path := writeConfig(t, sample)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.PersistSerial("R58M123ABC"))

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "R58M123ABC", again.ADB.Serial)
	assert.Equal(t, "rus+eng", again.OCR.Lang)
}

func TestPersistSerialKeepsEnvAndDefaultsOut(t *testing.T) {
	t.Setenv("CONTRACTBOT_LEDGER_DSN", "postgres://bot:s3cret@db/ledger")
	path := writeConfig(t, "# bench phone\nadb:\n  serial: auto # replaced on first run\nocr:\n  lang: eng\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "postgres://bot:s3cret@db/ledger", cfg.Ledger.DSN)
	require.NoError(t, cfg.PersistSerial("R58M123ABC"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	body := string(raw)
	assert.Contains(t, body, "serial: R58M123ABC")
	assert.Contains(t, body, "# bench phone")
	assert.Contains(t, body, "# replaced on first run")
	assert.Contains(t, body, "lang: eng")
	assert.NotContains(t, body, "s3cret")
	assert.NotContains(t, body, "ledger")
	assert.NotContains(t, body, "max_conns")

	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), st.Mode().Perm())

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "R58M123ABC", again.ADB.Serial)
}

func TestPersistSerialCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.PersistSerial("12345"))

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "12345", again.ADB.Serial)
}
