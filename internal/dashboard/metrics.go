package dashboard

import (
	"github.com/solmev/mevdash/internal/engine"
)

// DerivedMetrics are the aggregate performance numbers computed from the
// latest session stats and the recent-trade window. They are recomputed on
// every status or trade update and never stored independently of their
// inputs.
type DerivedMetrics struct {
	TotalProfit float64 `json:"total_profit"` // SOL, signed, from session stats
	TotalTrades int     `json:"total_trades"`
	SuccessRate float64 `json:"success_rate"` // 0-100, engine-reported
	AvgProfit   float64 `json:"avg_profit"`   // mean over the trade window
	WinRate     float64 `json:"win_rate"`     // 0-100, share of window trades with profit > 0
	BestTrade   float64 `json:"best_trade"`   // largest profit in the window
	WorstTrade  float64 `json:"worst_trade"`  // magnitude of the largest loss, never signed
}

// DeriveMetrics computes DerivedMetrics from session stats and the recent
// trade window. Pure: same inputs always yield the same output. A nil stats
// pointer and an empty window both degrade to zeros. A trade without a
// profit field carries profit 0 and therefore counts toward the average but
// never toward wins, best or worst.
func DeriveMetrics(stats *engine.SessionStats, trades []engine.Trade) DerivedMetrics {
	var m DerivedMetrics

	if stats != nil {
		m.TotalProfit = stats.ProfitLoss
		m.TotalTrades = stats.TradesExecuted
		m.SuccessRate = stats.SuccessRate
	}

	if len(trades) == 0 {
		return m
	}

	var sum float64
	var wins int
	var best, worst float64
	var settled bool
	for _, trade := range trades {
		sum += trade.Profit
		if trade.Profit > 0 {
			wins++
		}
		if trade.Profit == 0 {
			continue
		}
		if !settled {
			best, worst = trade.Profit, trade.Profit
			settled = true
			continue
		}
		if trade.Profit > best {
			best = trade.Profit
		}
		if trade.Profit < worst {
			worst = trade.Profit
		}
	}

	m.AvgProfit = sum / float64(len(trades))
	m.WinRate = 100 * float64(wins) / float64(len(trades))
	if settled {
		m.BestTrade = best
		if worst < 0 {
			m.WorstTrade = -worst
		}
	}
	return m
}
