package engine

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TradeType identifies the strategy that produced a trade record.
type TradeType string

const (
	TradeArbitrage     TradeType = "arbitrage"
	TradeTokenSnipe    TradeType = "token_snipe"
	TradeSandwich      TradeType = "sandwich"
	TradeEmergencyStop TradeType = "emergency_stop"
	TradeOther         TradeType = "other"
)

// EngineStatus is the engine's self-reported state, replaced wholesale on
// every status fetch. SessionStats and Config are absent until the engine
// has completed at least one scan cycle.
type EngineStatus struct {
	IsRunning            bool          `json:"is_running"`
	WalletAddress        string        `json:"wallet_address,omitempty"`
	WalletBalance        float64       `json:"wallet_balance,omitempty"`
	CurrentOpportunities int           `json:"current_opportunities"`
	ActivePositions      int           `json:"active_positions"`
	SessionStats         *SessionStats `json:"session_stats,omitempty"`
	Config               *EngineConfig `json:"config,omitempty"`
}

// SessionStats holds cumulative counters since the engine's current run began.
type SessionStats struct {
	ProfitLoss         float64 `json:"profit_loss"` // SOL, signed
	TradesExecuted     int     `json:"trades_executed"`
	SuccessRate        float64 `json:"success_rate"` // 0-100
	StartTime          APITime `json:"start_time"`
	TotalScans         int     `json:"total_scans"`
	OpportunitiesFound int     `json:"opportunities_found"`
}

// EngineConfig mirrors the engine's active trading configuration.
type EngineConfig struct {
	EnabledStrategies   []string `json:"enabled_strategies"`
	ScanInterval        float64  `json:"scan_interval"` // seconds
	MaxConcurrentTrades int      `json:"max_concurrent_trades"`
	MinProfitPercentage float64  `json:"min_profit_percentage"`
	MaxPositionSize     float64  `json:"max_position_size"` // SOL
}

// Opportunity is a detected cross-DEX arbitrage candidate.
type Opportunity struct {
	TokenSymbol      string  `json:"token_symbol"`
	TokenMint        string  `json:"token_mint"`
	BuyDex           string  `json:"buy_dex"`
	SellDex          string  `json:"sell_dex"`
	BuyPrice         float64 `json:"buy_price"`
	SellPrice        float64 `json:"sell_price"`
	ProfitPercentage float64 `json:"profit_percentage"`
	ProfitAmount     float64 `json:"profit_amount"` // SOL
	Timestamp        APITime `json:"timestamp"`
}

// Trade is one entry of the engine's bounded recent-trade window. Profit is
// absent for non-settling records (emergency stops) and decodes as zero.
type Trade struct {
	ID        string       `json:"id"`
	Type      TradeType    `json:"type"`
	Token     string       `json:"token"`
	Profit    float64      `json:"profit,omitempty"` // SOL, signed
	Timestamp APITime      `json:"timestamp"`
	Details   TradeDetails `json:"details,omitempty"`
}

// TradeDetails is the per-type payload attached to a trade record. The
// concrete type is selected by Trade.Type during decoding.
type TradeDetails interface {
	tradeDetails()
}

// ArbitrageDetails accompanies arbitrage trades.
type ArbitrageDetails struct {
	BuyDex           string  `json:"buy_dex"`
	SellDex          string  `json:"sell_dex"`
	BuyPrice         float64 `json:"buy_price"`
	SellPrice        float64 `json:"sell_price"`
	ProfitPercentage float64 `json:"profit_percentage"`
}

// SnipeDetails accompanies token_snipe trades.
type SnipeDetails struct {
	MintAddress  string  `json:"mint_address"`
	InitialPrice float64 `json:"initial_price"`
	RiskScore    float64 `json:"risk_score"`
}

// EmergencyStopDetails accompanies emergency_stop records.
type EmergencyStopDetails struct {
	Reason string `json:"reason"`
}

// GenericDetails keeps the raw payload for trade types without a dedicated
// shape (sandwich, other, unknown).
type GenericDetails map[string]interface{}

func (ArbitrageDetails) tradeDetails()     {}
func (SnipeDetails) tradeDetails()         {}
func (EmergencyStopDetails) tradeDetails() {}
func (GenericDetails) tradeDetails()       {}

// UnmarshalJSON decodes the details payload into the variant matching the
// trade type.
func (t *Trade) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        string          `json:"id"`
		Type      TradeType       `json:"type"`
		Token     string          `json:"token"`
		Profit    float64         `json:"profit"`
		Timestamp APITime         `json:"timestamp"`
		Details   json.RawMessage `json:"details"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode trade: %w", err)
	}

	t.ID = raw.ID
	t.Type = raw.Type
	t.Token = raw.Token
	t.Profit = raw.Profit
	t.Timestamp = raw.Timestamp
	t.Details = nil

	if len(raw.Details) == 0 || string(raw.Details) == "null" {
		return nil
	}

	switch raw.Type {
	case TradeArbitrage:
		var d ArbitrageDetails
		if err := json.Unmarshal(raw.Details, &d); err != nil {
			return fmt.Errorf("decode arbitrage details: %w", err)
		}
		t.Details = d
	case TradeTokenSnipe:
		var d SnipeDetails
		if err := json.Unmarshal(raw.Details, &d); err != nil {
			return fmt.Errorf("decode snipe details: %w", err)
		}
		t.Details = d
	case TradeEmergencyStop:
		var d EmergencyStopDetails
		if err := json.Unmarshal(raw.Details, &d); err != nil {
			return fmt.Errorf("decode emergency stop details: %w", err)
		}
		t.Details = d
	default:
		var d GenericDetails
		if err := json.Unmarshal(raw.Details, &d); err != nil {
			return fmt.Errorf("decode trade details: %w", err)
		}
		t.Details = d
	}
	return nil
}

// WalletBalance is the trading-budget view of the wallet.
type WalletBalance struct {
	BalanceSOL          float64 `json:"balance_sol"`
	BalanceUSD          float64 `json:"balance_usd"`
	AvailableForTrading float64 `json:"available_for_trading"`
	MaxTradeSize        float64 `json:"max_trade_size"`
}

// WalletInfo is the pre-setup wallet view, including the reserve the engine
// keeps aside for fees.
type WalletInfo struct {
	WalletAddress       string  `json:"wallet_address"`
	BalanceSOL          float64 `json:"balance_sol"`
	BalanceUSD          float64 `json:"balance_usd"`
	MaxTradeSize        float64 `json:"max_trade_size"`
	ReserveBalance      float64 `json:"reserve_balance"`
	AvailableForTrading float64 `json:"available_for_trading"`
}

// PumpfunToken describes a pump.fun token attached to a snipe opportunity.
type PumpfunToken struct {
	Mint             string  `json:"mint"`
	Name             string  `json:"name"`
	Symbol           string  `json:"symbol"`
	MarketCap        float64 `json:"market_cap"`
	Price            float64 `json:"price"`
	CreatedTimestamp APITime `json:"created_timestamp"`
	ReplyCount       int     `json:"reply_count"`
}

// PumpfunOpportunity is one entry of the sniping feed.
type PumpfunOpportunity struct {
	Token         PumpfunToken `json:"token"`
	RiskScore     float64      `json:"risk_score"`
	SuggestedSize float64      `json:"suggested_size"` // SOL
	Timestamp     APITime      `json:"timestamp"`
}

// MicroOpportunity is one entry of the micro-arbitrage feed.
type MicroOpportunity struct {
	TokenPair          string  `json:"token_pair"`
	BuyDex             string  `json:"buy_dex"`
	SellDex            string  `json:"sell_dex"`
	BuyPrice           float64 `json:"buy_price"`
	SellPrice          float64 `json:"sell_price"`
	ProfitPercentage   float64 `json:"profit_percentage"`
	EstimatedProfitSOL float64 `json:"estimated_profit_sol"`
	EstimatedFees      float64 `json:"estimated_fees"`
	NetProfit          float64 `json:"net_profit"` // SOL
	Timestamp          APITime `json:"timestamp"`
}

// MicroPerformance summarizes the micro-strategy's cumulative results.
type MicroPerformance struct {
	TotalTrades        int     `json:"total_trades"`
	SuccessfulTrades   int     `json:"successful_trades"`
	SuccessRate        float64 `json:"success_rate"`
	TotalProfitSOL     float64 `json:"total_profit_sol"`
	TotalFeesPaid      float64 `json:"total_fees_paid"`
	NetProfitSOL       float64 `json:"net_profit_sol"`
	DailyLosses        float64 `json:"daily_losses"`
	DailyLossLimit     float64 `json:"daily_loss_limit"`
	MaxTradeSize       float64 `json:"max_trade_size"`
	ReserveBalance     float64 `json:"reserve_balance"`
	EstimatedUSDProfit float64 `json:"estimated_usd_profit"`
	ROIPercentage      float64 `json:"roi_percentage"`
}

// SetupRequest is the body of POST /bot/setup.
type SetupRequest struct {
	WalletAddress      string `json:"wallet_address"`
	RPCEndpoint        string `json:"rpc_endpoint,omitempty"`
	PrivateRPCEndpoint string `json:"private_rpc_endpoint,omitempty"`
}

// ConfigUpdate is the body of PUT /bot/config.
type ConfigUpdate struct {
	ScanInterval         int     `json:"scan_interval"`
	MaxConcurrentTrades  int     `json:"max_concurrent_trades"`
	StopLossPercentage   float64 `json:"stop_loss_percentage"`
	TakeProfitPercentage float64 `json:"take_profit_percentage"`
	MinProfitPercentage  float64 `json:"min_profit_percentage"`
	MaxPositionSize      float64 `json:"max_position_size"`
}

// ActionResult is the envelope of every control action response.
type ActionResult struct {
	Status        string                 `json:"status"`
	Message       string                 `json:"message,omitempty"`
	WalletAddress string                 `json:"wallet_address,omitempty"`
	Result        map[string]interface{} `json:"result,omitempty"`
}

// Envelope status values the engine emits.
const (
	StatusSuccess         = "success"
	StatusAlreadyRunning  = "already_running"
	StatusAlreadyStopped  = "already_stopped"
	StatusNoOpportunities = "no_opportunities"
	StatusFailed          = "failed"
)

// OK reports whether the result is a success or an idempotent no-op.
func (r *ActionResult) OK() bool {
	switch r.Status {
	case StatusSuccess, StatusAlreadyRunning, StatusAlreadyStopped:
		return true
	}
	return false
}

// Informational reports whether the result is a neutral outcome rather than
// a success or a failure.
func (r *ActionResult) Informational() bool {
	return r.Status == StatusNoOpportunities
}

// APITime decodes the engine's timestamps, which arrive either as RFC 3339
// or as zone-naive ISO 8601.
type APITime struct {
	time.Time
}

var apiTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

func (t *APITime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range apiTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

func (t APITime) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + t.Time.Format(time.RFC3339Nano) + `"`), nil
}
