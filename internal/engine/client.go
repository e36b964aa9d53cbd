package engine

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ClientConfig carries the connection settings for the engine API.
type ClientConfig struct {
	BaseURL string        // e.g. "http://127.0.0.1:8000/api"
	Timeout time.Duration // per-request deadline
}

// Client is a typed HTTP client for the engine API. Every method performs a
// single attempt bounded by the configured timeout and the caller's context;
// callers own any retry decision.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// errorBody is the engine's HTTP error payload.
type errorBody struct {
	Detail string `json:"detail"`
}

// NewClient creates an engine API client.
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	rc := resty.New().
		SetBaseURL(base).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "mevdash")

	return &Client{
		http:   rc,
		logger: logger.Named("engine"),
	}
}

// newRequest prepares a request with the caller's context and the standard
// error decoder attached.
func (c *Client) newRequest(ctx context.Context) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetError(&errorBody{})
}

// apiError builds the engine-reported error for a non-2xx response.
func apiError(resp *resty.Response) *APIError {
	msg := ""
	if body, ok := resp.Error().(*errorBody); ok && body != nil {
		msg = body.Detail
	}
	return &APIError{StatusCode: resp.StatusCode(), Message: msg}
}

// envelopeError builds the engine-reported error for a 2xx response whose
// envelope status is not a success.
func envelopeError(status, message string) *APIError {
	return &APIError{Status: status, Message: message}
}

// GetStatus fetches the engine's current state. A configured-but-idle engine
// still answers success; an engine that has not been set up yet yields
// ErrNotConfigured.
func (c *Client) GetStatus(ctx context.Context) (*EngineStatus, error) {
	var env struct {
		Status  string        `json:"status"`
		Message string        `json:"message,omitempty"`
		Data    *EngineStatus `json:"data"`
	}
	resp, err := c.newRequest(ctx).SetResult(&env).Get("/bot/status")
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}
	if resp.StatusCode() == http.StatusBadRequest {
		return nil, ErrNotConfigured
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	// Older engine builds answer 200 with a not_initialized envelope
	// instead of 400.
	if env.Status == "not_initialized" {
		return nil, ErrNotConfigured
	}
	if env.Status != StatusSuccess || env.Data == nil {
		return nil, envelopeError(env.Status, env.Message)
	}
	return env.Data, nil
}

// GetOpportunities fetches the current arbitrage opportunity list.
func (c *Client) GetOpportunities(ctx context.Context) ([]Opportunity, error) {
	var env struct {
		Status        string        `json:"status"`
		Message       string        `json:"message,omitempty"`
		Opportunities []Opportunity `json:"opportunities"`
		Count         int           `json:"count"`
	}
	resp, err := c.newRequest(ctx).SetResult(&env).Get("/bot/opportunities")
	if err != nil {
		return nil, fmt.Errorf("get opportunities: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	if env.Status != StatusSuccess {
		return nil, envelopeError(env.Status, env.Message)
	}
	return env.Opportunities, nil
}

// GetTrades fetches the engine's recent-trade window, most recent first.
func (c *Client) GetTrades(ctx context.Context, limit int) ([]Trade, error) {
	var env struct {
		Status  string  `json:"status"`
		Message string  `json:"message,omitempty"`
		Trades  []Trade `json:"trades"`
		Count   int     `json:"count"`
	}
	resp, err := c.newRequest(ctx).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetResult(&env).
		Get("/bot/trades")
	if err != nil {
		return nil, fmt.Errorf("get trades: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	if env.Status != StatusSuccess {
		return nil, envelopeError(env.Status, env.Message)
	}
	return env.Trades, nil
}

// GetWalletBalance fetches the trading-budget view of the wallet.
func (c *Client) GetWalletBalance(ctx context.Context) (*WalletBalance, error) {
	var env struct {
		Status  string `json:"status"`
		Message string `json:"message,omitempty"`
		WalletBalance
	}
	resp, err := c.newRequest(ctx).SetResult(&env).Get("/bot/wallet-balance")
	if err != nil {
		return nil, fmt.Errorf("get wallet balance: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	if env.Status != StatusSuccess {
		return nil, envelopeError(env.Status, env.Message)
	}
	balance := env.WalletBalance
	return &balance, nil
}

// GetWalletInfo fetches the pre-setup wallet view.
func (c *Client) GetWalletInfo(ctx context.Context) (*WalletInfo, error) {
	var env struct {
		Status  string `json:"status"`
		Message string `json:"message,omitempty"`
		WalletInfo
	}
	resp, err := c.newRequest(ctx).SetResult(&env).Get("/bot/wallet-info")
	if err != nil {
		return nil, fmt.Errorf("get wallet info: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	if env.Status != StatusSuccess {
		return nil, envelopeError(env.Status, env.Message)
	}
	info := env.WalletInfo
	return &info, nil
}

// GetPumpfunOpportunities fetches the pump.fun sniping feed.
func (c *Client) GetPumpfunOpportunities(ctx context.Context) ([]PumpfunOpportunity, error) {
	var env struct {
		Status        string               `json:"status"`
		Message       string               `json:"message,omitempty"`
		Opportunities []PumpfunOpportunity `json:"opportunities"`
		Count         int                  `json:"count"`
	}
	resp, err := c.newRequest(ctx).SetResult(&env).Get("/bot/pumpfun-opportunities")
	if err != nil {
		return nil, fmt.Errorf("get pumpfun opportunities: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	if env.Status != StatusSuccess {
		return nil, envelopeError(env.Status, env.Message)
	}
	return env.Opportunities, nil
}

// GetMicroOpportunities fetches the micro-arbitrage feed.
func (c *Client) GetMicroOpportunities(ctx context.Context) ([]MicroOpportunity, error) {
	var env struct {
		Status        string             `json:"status"`
		Message       string             `json:"message,omitempty"`
		Opportunities []MicroOpportunity `json:"opportunities"`
		Count         int                `json:"count"`
	}
	resp, err := c.newRequest(ctx).SetResult(&env).Get("/bot/micro-opportunities")
	if err != nil {
		return nil, fmt.Errorf("get micro opportunities: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	if env.Status != StatusSuccess {
		return nil, envelopeError(env.Status, env.Message)
	}
	return env.Opportunities, nil
}

// GetMicroPerformance fetches the micro-strategy performance summary.
func (c *Client) GetMicroPerformance(ctx context.Context) (*MicroPerformance, error) {
	var env struct {
		Status      string            `json:"status"`
		Message     string            `json:"message,omitempty"`
		Performance *MicroPerformance `json:"performance"`
	}
	resp, err := c.newRequest(ctx).SetResult(&env).Get("/bot/micro-performance")
	if err != nil {
		return nil, fmt.Errorf("get micro performance: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	if env.Status != StatusSuccess || env.Performance == nil {
		return nil, envelopeError(env.Status, env.Message)
	}
	return env.Performance, nil
}

// postAction issues a control POST and returns the engine's envelope. A
// non-2xx answer becomes an APIError; interpreting the envelope status is
// the caller's job.
func (c *Client) postAction(ctx context.Context, path string, body interface{}) (*ActionResult, error) {
	result := &ActionResult{}
	req := c.newRequest(ctx).SetResult(result)
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Post(path)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", path, err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	c.logger.Debug("action dispatched",
		zap.String("path", path),
		zap.String("status", result.Status))
	return result, nil
}

// Setup initializes the engine with a wallet and optional RPC endpoints.
func (c *Client) Setup(ctx context.Context, req SetupRequest) (*ActionResult, error) {
	return c.postAction(ctx, "/bot/setup", req)
}

// Start asks the engine to begin scanning and trading.
func (c *Client) Start(ctx context.Context) (*ActionResult, error) {
	return c.postAction(ctx, "/bot/start", nil)
}

// Stop asks the engine to finish the current cycle and halt.
func (c *Client) Stop(ctx context.Context) (*ActionResult, error) {
	return c.postAction(ctx, "/bot/stop", nil)
}

// EmergencyStop forces the engine to close all positions and halt.
func (c *Client) EmergencyStop(ctx context.Context) (*ActionResult, error) {
	return c.postAction(ctx, "/bot/emergency-stop", nil)
}

// ExecutePumpfunTrade submits a manual pump.fun snipe for the given mint.
func (c *Client) ExecutePumpfunTrade(ctx context.Context, tokenMint string) (*ActionResult, error) {
	return c.postAction(ctx, "/bot/execute-pumpfun-trade", map[string]string{
		"token_mint": tokenMint,
	})
}

// ExecuteMicroArbitrage asks the engine to execute its best current micro
// opportunity. May answer no_opportunities.
func (c *Client) ExecuteMicroArbitrage(ctx context.Context) (*ActionResult, error) {
	return c.postAction(ctx, "/bot/execute-micro-arbitrage", nil)
}

// UpdateConfig replaces the engine's trading configuration.
func (c *Client) UpdateConfig(ctx context.Context, update ConfigUpdate) (*ActionResult, error) {
	result := &ActionResult{}
	resp, err := c.newRequest(ctx).SetResult(result).SetBody(update).Put("/bot/config")
	if err != nil {
		return nil, fmt.Errorf("put /bot/config: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return result, nil
}
