package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	bybit_api "github.com/bybit-exchange/bybit.go.api"

	"github.com/SaidJacobo/forex-ml-bot-sub000/pkg/types"
)

// Client implements broker.Provider on top of the Bybit v5 API. Instrument
// metadata changes rarely, so lookups are cached for an hour.
type Client struct {
	httpClient *bybit_api.Client
	category   string

	mu         sync.RWMutex
	meta       map[string]types.InstrumentMeta
	lastUpdate time.Time
	cacheTTL   time.Duration
}

// Config holds the Bybit connection settings.
type Config struct {
	APIKey    string
	APISecret string
	Testnet   bool
	Category  string // product category, defaults to "linear"
}

// NewClient builds a Bybit-backed provider.
func NewClient(cfg Config) *Client {
	baseURL := bybit_api.MAINNET
	if cfg.Testnet {
		baseURL = bybit_api.TESTNET
	}
	category := cfg.Category
	if category == "" {
		category = "linear"
	}
	return &Client{
		httpClient: bybit_api.NewBybitHttpClient(cfg.APIKey, cfg.APISecret, bybit_api.WithBaseURL(baseURL)),
		category:   category,
		meta:       make(map[string]types.InstrumentMeta),
		cacheTTL:   time.Hour,
	}
}

// InstrumentMeta fetches and caches the sizing constraints for a symbol.
func (c *Client) InstrumentMeta(ctx context.Context, symbol string) (types.InstrumentMeta, error) {
	c.mu.RLock()
	if meta, ok := c.meta[symbol]; ok && time.Since(c.lastUpdate) < c.cacheTTL {
		c.mu.RUnlock()
		return meta, nil
	}
	c.mu.RUnlock()

	params := map[string]interface{}{
		"category": c.category,
		"symbol":   symbol,
	}
	result, err := c.httpClient.NewUtaBybitServiceWithParams(params).GetInstrumentInfo(ctx)
	if err != nil {
		return types.InstrumentMeta{}, fmt.Errorf("failed to fetch instrument info: %w", err)
	}
	meta, err := parseInstrumentMeta(result, symbol)
	if err != nil {
		return types.InstrumentMeta{}, err
	}

	c.mu.Lock()
	c.meta[symbol] = meta
	c.lastUpdate = time.Now()
	c.mu.Unlock()
	return meta, nil
}

// LatestTick fetches the current best bid/ask for a symbol.
func (c *Client) LatestTick(ctx context.Context, symbol string) (types.Tick, error) {
	params := map[string]interface{}{
		"category": c.category,
		"symbol":   symbol,
	}
	result, err := c.httpClient.NewUtaBybitServiceWithParams(params).GetMarketTickers(ctx)
	if err != nil {
		return types.Tick{}, fmt.Errorf("failed to fetch tickers: %w", err)
	}
	return parseTick(result, symbol)
}

func parseInstrumentMeta(response interface{}, symbol string) (types.InstrumentMeta, error) {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok {
		return types.InstrumentMeta{}, fmt.Errorf("invalid response type")
	}
	if serverResp.RetCode != 0 {
		return types.InstrumentMeta{}, fmt.Errorf("API error: %s (code: %d)", serverResp.RetMsg, serverResp.RetCode)
	}

	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return types.InstrumentMeta{}, fmt.Errorf("failed to marshal result: %w", err)
	}

	var payload struct {
		List []struct {
			Symbol      string `json:"symbol"`
			PriceFilter struct {
				TickSize string `json:"tickSize"`
			} `json:"priceFilter"`
			LotSizeFilter struct {
				MinOrderQty string `json:"minOrderQty"`
				MaxOrderQty string `json:"maxOrderQty"`
				QtyStep     string `json:"qtyStep"`
			} `json:"lotSizeFilter"`
		} `json:"list"`
	}
	if err := json.Unmarshal(resultBytes, &payload); err != nil {
		return types.InstrumentMeta{}, fmt.Errorf("failed to unmarshal instrument result: %w", err)
	}

	for _, item := range payload.List {
		if item.Symbol != symbol {
			continue
		}
		tickSize := parseFloat(item.PriceFilter.TickSize)
		return types.InstrumentMeta{
			Symbol:         item.Symbol,
			PipValue:       tickSize,
			ContractVolume: 1, // qty already denominated in base units
			MinLot:         parseFloat(item.LotSizeFilter.MinOrderQty),
			MaxLot:         parseFloat(item.LotSizeFilter.MaxOrderQty),
			VolumeStep:     parseFloat(item.LotSizeFilter.QtyStep),
			TickValueLoss:  tickSize,
		}, nil
	}
	return types.InstrumentMeta{}, fmt.Errorf("instrument %s not found", symbol)
}

func parseTick(response interface{}, symbol string) (types.Tick, error) {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok {
		return types.Tick{}, fmt.Errorf("invalid response type")
	}
	if serverResp.RetCode != 0 {
		return types.Tick{}, fmt.Errorf("API error: %s (code: %d)", serverResp.RetMsg, serverResp.RetCode)
	}

	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return types.Tick{}, fmt.Errorf("failed to marshal result: %w", err)
	}

	var payload struct {
		List []struct {
			Symbol    string `json:"symbol"`
			Bid1Price string `json:"bid1Price"`
			Ask1Price string `json:"ask1Price"`
		} `json:"list"`
	}
	if err := json.Unmarshal(resultBytes, &payload); err != nil {
		return types.Tick{}, fmt.Errorf("failed to unmarshal tickers result: %w", err)
	}

	for _, item := range payload.List {
		if item.Symbol != symbol {
			continue
		}
		return types.Tick{
			Symbol:    item.Symbol,
			Bid:       parseFloat(item.Bid1Price),
			Ask:       parseFloat(item.Ask1Price),
			Timestamp: time.Now(),
		}, nil
	}
	return types.Tick{}, fmt.Errorf("ticker %s not found", symbol)
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
