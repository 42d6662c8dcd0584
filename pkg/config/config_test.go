package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const minimalConfig = `{
	"initial_capital": 200000,
	"runs": [
		{
			"name": "eurusd-grid",
			"ticker": "EURUSD",
			"data_file": "eurusd.csv",
			"variant": "grid_averaging",
			"starting_balance": 10000,
			"max_hold_hours": 48,
			"instrument": {
				"pip_value": 0.0001,
				"contract_volume": 10000,
				"min_lot": 0.01,
				"max_lot": 100,
				"volume_step": 0.01,
				"tick_value_loss": 1
			}
		}
	]
}`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, DefaultLeverage, cfg.Leverage)
	assert.Equal(t, DefaultMarginCallPct, cfg.Margin.CallPct)
	assert.Equal(t, DefaultStopOutPct, cfg.Margin.StopOutPct)

	require.Len(t, cfg.Runs, 1)
	run := cfg.Runs[0]
	assert.Equal(t, DefaultRiskPct, run.RiskPct)
	assert.Equal(t, DefaultRiskReward, run.RiskReward)
	assert.Equal(t, DefaultStopDistancePips, run.StopDistancePips)
	assert.Equal(t, DefaultMaxGridOrders, run.MaxGridOrders)
	assert.Equal(t, DefaultATRPeriod, run.ATRPeriod)
}

func TestRunConfigMappings(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	run := cfg.Runs[0]
	meta := run.Meta()
	assert.Equal(t, "EURUSD", meta.Symbol)
	assert.Equal(t, 0.0001, meta.PipValue)
	assert.Equal(t, 10000.0, meta.ContractVolume)

	params := run.StrategyParams()
	assert.Equal(t, 48*time.Hour, params.MaxHoldPeriod)
	assert.Equal(t, meta, params.Meta)
}

func TestLoadRejectsInvalidConfigs(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "missing capital",
			body: `{"runs": [{"name": "a", "ticker": "EURUSD", "variant": "grid_averaging",
				"starting_balance": 1000, "instrument": {"pip_value": 0.0001}}]}`,
		},
		{
			name: "no runs",
			body: `{"initial_capital": 100000, "runs": []}`,
		},
		{
			name: "duplicate run names",
			body: `{"initial_capital": 100000, "runs": [
				{"name": "a", "ticker": "EURUSD", "variant": "grid_averaging", "starting_balance": 1000,
				 "instrument": {"pip_value": 0.0001}},
				{"name": "a", "ticker": "GBPUSD", "variant": "grid_averaging", "starting_balance": 1000,
				 "instrument": {"pip_value": 0.0001}}]}`,
		},
		{
			name: "unknown variant",
			body: `{"initial_capital": 100000, "runs": [
				{"name": "a", "ticker": "EURUSD", "variant": "martingale", "starting_balance": 1000,
				 "instrument": {"pip_value": 0.0001}}]}`,
		},
		{
			name: "stop-out above call level",
			body: `{"initial_capital": 100000, "margin": {"call_pct": 60, "stop_out_pct": 80}, "runs": [
				{"name": "a", "ticker": "EURUSD", "variant": "grid_averaging", "starting_balance": 1000,
				 "instrument": {"pip_value": 0.0001}}]}`,
		},
		{
			name: "partial instrument without pip value",
			body: `{"initial_capital": 100000, "runs": [
				{"name": "a", "ticker": "EURUSD", "variant": "grid_averaging", "starting_balance": 1000,
				 "instrument": {"contract_volume": 10000}}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadAllowsBrokerResolvedInstrument(t *testing.T) {
	// No instrument block at all: metadata comes from the broker at startup.
	body := `{"initial_capital": 100000, "runs": [
		{"name": "a", "ticker": "EURUSDT", "data_file": "a.csv", "variant": "one_shot_reversal",
		 "starting_balance": 1000}]}`

	cfg, err := Load(writeConfig(t, body))
	require.NoError(t, err)
	require.Len(t, cfg.Runs, 1)
	assert.False(t, cfg.Runs[0].HasInlineInstrument())

	inline, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)
	assert.True(t, inline.Runs[0].HasInlineInstrument())
}

func TestLoadBrokerCredentialsFromEnv(t *testing.T) {
	t.Setenv("BYBIT_API_KEY", "key-from-env")
	t.Setenv("BYBIT_API_SECRET", "secret-from-env")

	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)
	assert.Equal(t, "key-from-env", cfg.Broker.APIKey)
	assert.Equal(t, "secret-from-env", cfg.Broker.APISecret)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
