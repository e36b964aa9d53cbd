package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(ClientConfig{BaseURL: srv.URL, Timeout: 2 * time.Second}, zap.NewNop())
	return client, srv
}

func writeJSON(t *testing.T, w http.ResponseWriter, code int, body interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestGetStatusSuccess(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bot/status", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]interface{}{
			"status": "success",
			"data": map[string]interface{}{
				"is_running":            true,
				"wallet_address":        "7xKX...abc",
				"wallet_balance":        0.04,
				"current_opportunities": 3,
				"active_positions":      1,
				"session_stats": map[string]interface{}{
					"profit_loss":         0.05,
					"trades_executed":     10,
					"success_rate":        80.0,
					"start_time":          "2025-06-01T09:00:00",
					"total_scans":         120,
					"opportunities_found": 14,
				},
				"config": map[string]interface{}{
					"enabled_strategies":    []string{"arbitrage", "token_snipe"},
					"scan_interval":         5,
					"max_concurrent_trades": 3,
					"min_profit_percentage": 0.5,
					"max_position_size":     1.0,
				},
			},
		})
	}))

	status, err := client.GetStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, status.IsRunning)
	assert.Equal(t, 3, status.CurrentOpportunities)
	require.NotNil(t, status.SessionStats)
	assert.Equal(t, 0.05, status.SessionStats.ProfitLoss)
	require.NotNil(t, status.Config)
	assert.Equal(t, []string{"arbitrage", "token_snipe"}, status.Config.EnabledStrategies)
}

func TestGetStatusNotConfiguredHTTP400(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusBadRequest, map[string]string{"detail": "Bot not setup"})
	}))

	_, err := client.GetStatus(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGetStatusNotInitializedEnvelope(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]interface{}{
			"status":     "not_initialized",
			"message":    "Bot not setup yet",
			"is_running": false,
		})
	}))

	_, err := client.GetStatus(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGetStatusTransportError(t *testing.T) {
	client, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := client.GetStatus(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotConfigured)
	assert.False(t, IsEngineReported(err))
}

func TestGetTradesPassesLimit(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bot/trades", r.URL.Path)
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		writeJSON(t, w, http.StatusOK, map[string]interface{}{
			"status": "success",
			"trades": []map[string]interface{}{
				{
					"id":        "t-1",
					"type":      "arbitrage",
					"token":     "BONK",
					"profit":    0.01,
					"timestamp": "2025-06-01T10:00:00",
					"details": map[string]interface{}{
						"buy_dex": "Raydium", "sell_dex": "Orca",
						"buy_price": 1.0, "sell_price": 1.1, "profit_percentage": 1.0,
					},
				},
			},
			"count": 1,
		})
	}))

	trades, err := client.GetTrades(context.Background(), 20)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, TradeArbitrage, trades[0].Type)
	_, ok := trades[0].Details.(ArbitrageDetails)
	assert.True(t, ok)
}

func TestGetOpportunitiesEnvelopeFailure(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]interface{}{
			"status":  "failed",
			"message": "scanner offline",
		})
	}))

	_, err := client.GetOpportunities(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "failed", apiErr.Status)
	assert.Equal(t, "scanner offline", apiErr.Message)
}

func TestGetWalletBalanceFlatEnvelope(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bot/wallet-balance", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]interface{}{
			"status":                "success",
			"balance_sol":           0.04,
			"balance_usd":           8.0,
			"available_for_trading": 0.035,
			"max_trade_size":        0.005,
		})
	}))

	balance, err := client.GetWalletBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.04, balance.BalanceSOL)
	assert.Equal(t, 0.035, balance.AvailableForTrading)
}

func TestGetWalletInfo(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]interface{}{
			"status":                "success",
			"wallet_address":        "7xKX...abc",
			"balance_sol":           0.04,
			"balance_usd":           8.0,
			"max_trade_size":        0.005,
			"reserve_balance":       0.005,
			"available_for_trading": 0.035,
		})
	}))

	info, err := client.GetWalletInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "7xKX...abc", info.WalletAddress)
	assert.Equal(t, 0.005, info.ReserveBalance)
}

func TestGetMicroPerformance(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]interface{}{
			"status": "success",
			"performance": map[string]interface{}{
				"total_trades":      12,
				"successful_trades": 9,
				"success_rate":      75.0,
				"total_profit_sol":  0.002,
				"net_profit_sol":    0.0015,
			},
		})
	}))

	perf, err := client.GetMicroPerformance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, perf.TotalTrades)
	assert.Equal(t, 75.0, perf.SuccessRate)
}

func TestStartAlreadyRunning(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/bot/start", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]string{
			"status":  "already_running",
			"message": "Bot is already running",
		})
	}))

	result, err := client.Start(context.Background())
	require.NoError(t, err)
	assert.True(t, result.OK())
	assert.Equal(t, StatusAlreadyRunning, result.Status)
}

func TestExecutePumpfunTradeSendsMint(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "MintAAA", body["token_mint"])
		writeJSON(t, w, http.StatusOK, map[string]interface{}{
			"status": "success",
			"result": map[string]interface{}{"tx": "sig"},
		})
	}))

	result, err := client.ExecutePumpfunTrade(context.Background(), "MintAAA")
	require.NoError(t, err)
	assert.True(t, result.OK())
}

func TestExecutePumpfunTradeNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusNotFound, map[string]string{
			"detail": "Token not found in current opportunities",
		})
	}))

	_, err := client.ExecutePumpfunTrade(context.Background(), "MintZZZ")
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Token not found in current opportunities", apiErr.Message)
}

func TestExecuteMicroArbitrageNoOpportunities(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]string{
			"status":  "no_opportunities",
			"message": "No profitable micro arbitrage opportunities found",
		})
	}))

	result, err := client.ExecuteMicroArbitrage(context.Background())
	require.NoError(t, err)
	assert.False(t, result.OK())
	assert.True(t, result.Informational())
}

func TestUpdateConfigPut(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/bot/config", r.URL.Path)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 5, body["scan_interval"])
		writeJSON(t, w, http.StatusOK, map[string]string{"status": "success"})
	}))

	result, err := client.UpdateConfig(context.Background(), ConfigUpdate{
		ScanInterval:        5,
		MaxConcurrentTrades: 3,
	})
	require.NoError(t, err)
	assert.True(t, result.OK())
}

func TestContextCancellationIsTransport(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.GetOpportunities(ctx)
	require.Error(t, err)
	assert.False(t, IsEngineReported(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
