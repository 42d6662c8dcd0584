package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/logger"
	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/strategy"
	"github.com/SaidJacobo/forex-ml-bot-sub000/pkg/types"
)

// Default parameter values.
const (
	DefaultRiskPct           = 1.0
	DefaultRiskReward        = 2.0
	DefaultStopDistancePips  = 50.0
	DefaultGridMultiplier    = 1.0
	DefaultMaxGridOrders     = 5
	DefaultATRPeriod         = 14
	DefaultATRDistanceFactor = 1.5
	DefaultLeverage          = 100.0
	DefaultMarginCallPct     = 100.0
	DefaultStopOutPct        = 50.0
)

// InstrumentConfig is the per-instrument metadata for offline runs; live
// runs can fetch the same fields from the broker instead.
type InstrumentConfig struct {
	PipValue       float64 `json:"pip_value"`
	ContractVolume float64 `json:"contract_volume"`
	MinLot         float64 `json:"min_lot"`
	MaxLot         float64 `json:"max_lot"`
	VolumeStep     float64 `json:"volume_step"`
	TickValueLoss  float64 `json:"tick_value_loss"`
}

// RunConfig describes one strategy/instrument/risk combination.
type RunConfig struct {
	Name            string           `json:"name"`
	Ticker          string           `json:"ticker"`
	DataFile        string           `json:"data_file"`
	Variant         string           `json:"variant"`
	StartingBalance float64          `json:"starting_balance"`
	Instrument      InstrumentConfig `json:"instrument"`

	RiskPct          float64 `json:"risk_pct"`
	RiskReward       float64 `json:"risk_reward"`
	StopDistancePips float64 `json:"stop_distance_pips"`
	MaxHoldHours     int     `json:"max_hold_hours"`
	LockInPct        float64 `json:"lock_in_pct"`
	TrailingStop     bool    `json:"trailing_stop"`

	GridMultiplier    float64 `json:"grid_multiplier"`
	MaxGridOrders     int     `json:"max_grid_orders"`
	ATRPeriod         int     `json:"atr_period"`
	ATRDistanceFactor float64 `json:"atr_distance_factor"`
}

// BrokerConfig holds the live-mode terminal binding settings. Credentials
// come from the environment, never from the config file.
type BrokerConfig struct {
	APIKey    string `json:"-"`
	APISecret string `json:"-"`
	Testnet   bool   `json:"testnet"`
	Category  string `json:"category"`
}

// MarginConfig keeps the margin-call and stop-out thresholds configurable
// per broker.
type MarginConfig struct {
	CallPct    float64 `json:"call_pct"`
	StopOutPct float64 `json:"stop_out_pct"`
}

// Config is the full engine configuration.
type Config struct {
	InitialCapital float64       `json:"initial_capital"`
	Leverage       float64       `json:"leverage"`
	Margin         MarginConfig  `json:"margin"`
	Log            logger.Config `json:"log"`
	Broker         BrokerConfig  `json:"broker"`
	Runs           []RunConfig   `json:"runs"`
}

// Load reads the JSON config, overlays broker credentials from .env /
// environment, applies defaults, and validates.
func Load(path string) (*Config, error) {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.Broker.APIKey = os.Getenv("BYBIT_API_KEY")
	cfg.Broker.APISecret = os.Getenv("BYBIT_API_SECRET")

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Leverage <= 0 {
		c.Leverage = DefaultLeverage
	}
	if c.Margin.CallPct <= 0 {
		c.Margin.CallPct = DefaultMarginCallPct
	}
	if c.Margin.StopOutPct <= 0 {
		c.Margin.StopOutPct = DefaultStopOutPct
	}
	for i := range c.Runs {
		r := &c.Runs[i]
		if r.RiskPct <= 0 {
			r.RiskPct = DefaultRiskPct
		}
		if r.RiskReward <= 0 {
			r.RiskReward = DefaultRiskReward
		}
		if r.StopDistancePips <= 0 {
			r.StopDistancePips = DefaultStopDistancePips
		}
		if r.GridMultiplier <= 0 {
			r.GridMultiplier = DefaultGridMultiplier
		}
		if r.MaxGridOrders <= 0 {
			r.MaxGridOrders = DefaultMaxGridOrders
		}
		if r.ATRPeriod <= 0 {
			r.ATRPeriod = DefaultATRPeriod
		}
		if r.ATRDistanceFactor <= 0 {
			r.ATRDistanceFactor = DefaultATRDistanceFactor
		}
	}
}

// Validate rejects configurations the engine cannot run.
func (c *Config) Validate() error {
	if c.InitialCapital <= 0 {
		return fmt.Errorf("initial_capital must be positive, got %.2f", c.InitialCapital)
	}
	if len(c.Runs) == 0 {
		return fmt.Errorf("at least one run must be configured")
	}
	if c.Margin.StopOutPct >= c.Margin.CallPct {
		return fmt.Errorf("margin stop_out_pct (%.1f) must be below call_pct (%.1f)",
			c.Margin.StopOutPct, c.Margin.CallPct)
	}
	seen := make(map[string]bool, len(c.Runs))
	for _, r := range c.Runs {
		if r.Name == "" {
			return fmt.Errorf("every run needs a name")
		}
		if seen[r.Name] {
			return fmt.Errorf("duplicate run name %q", r.Name)
		}
		seen[r.Name] = true
		if r.Ticker == "" {
			return fmt.Errorf("run %q: ticker is required", r.Name)
		}
		if r.StartingBalance <= 0 {
			return fmt.Errorf("run %q: starting_balance must be positive", r.Name)
		}
		// An absent instrument block defers to the broker lookup at
		// startup; a partial one is a config mistake.
		if r.HasInlineInstrument() && r.Instrument.PipValue <= 0 {
			return fmt.Errorf("run %q: instrument pip_value must be positive", r.Name)
		}
		if _, err := strategy.New(r.Variant, strategy.Params{ATRPeriod: DefaultATRPeriod}); err != nil {
			return fmt.Errorf("run %q: %w", r.Name, err)
		}
	}
	return nil
}

// HasInlineInstrument reports whether the run carries its own instrument
// metadata. Runs without it resolve the metadata from the broker.
func (r RunConfig) HasInlineInstrument() bool {
	return r.Instrument != (InstrumentConfig{})
}

// Meta converts the inline instrument config into the engine's shape.
func (r RunConfig) Meta() types.InstrumentMeta {
	return types.InstrumentMeta{
		Symbol:         r.Ticker,
		PipValue:       r.Instrument.PipValue,
		ContractVolume: r.Instrument.ContractVolume,
		MinLot:         r.Instrument.MinLot,
		MaxLot:         r.Instrument.MaxLot,
		VolumeStep:     r.Instrument.VolumeStep,
		TickValueLoss:  r.Instrument.TickValueLoss,
	}
}

// StrategyParams maps the run configuration onto strategy parameters.
func (r RunConfig) StrategyParams() strategy.Params {
	return strategy.Params{
		Meta:              r.Meta(),
		RiskPct:           r.RiskPct,
		RiskReward:        r.RiskReward,
		StopDistancePips:  r.StopDistancePips,
		MaxHoldPeriod:     time.Duration(r.MaxHoldHours) * time.Hour,
		LockInPct:         r.LockInPct,
		GridMultiplier:    r.GridMultiplier,
		MaxGridOrders:     r.MaxGridOrders,
		ATRPeriod:         r.ATRPeriod,
		ATRDistanceFactor: r.ATRDistanceFactor,
	}
}
