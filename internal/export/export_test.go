package export

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/solmev/mevdash/internal/dashboard"
	"github.com/solmev/mevdash/internal/engine"
	"go.uber.org/zap"
)

func TestTradeExportCSV(t *testing.T) {
	logger := zap.NewNop()
	exporter := NewTradeExporter(logger)
	tempDir := t.TempDir()

	trades := generateTestTrades()

	options := ExportOptions{
		Format:    FormatCSV,
		OutputDir: tempDir,
	}

	outputPath, err := exporter.ExportTrades(trades, options)
	if err != nil {
		t.Fatalf("Failed to export trades: %v", err)
	}

	content, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to read export file: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != len(trades)+1 {
		t.Errorf("Expected %d CSV lines, got %d", len(trades)+1, len(lines))
	}
	if !strings.HasPrefix(lines[0], "timestamp,id,type,token") {
		t.Errorf("Unexpected CSV header: %s", lines[0])
	}
	if !strings.Contains(string(content), "Raydium->Orca") {
		t.Error("Expected arbitrage details in CSV output")
	}

	t.Logf("Exported CSV to: %s (size: %d bytes)", outputPath, len(content))
}

func TestTradeExportJSON(t *testing.T) {
	logger := zap.NewNop()
	exporter := NewTradeExporter(logger)
	tempDir := t.TempDir()

	trades := generateTestTrades()

	options := ExportOptions{
		Format:    FormatJSON,
		OutputDir: tempDir,
	}

	outputPath, err := exporter.ExportTrades(trades, options)
	if err != nil {
		t.Fatalf("Failed to export trades: %v", err)
	}

	content, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to read export file: %v", err)
	}

	var exported struct {
		TradeCount int           `json:"trade_count"`
		Summary    ExportSummary `json:"summary"`
	}
	if err := json.Unmarshal(content, &exported); err != nil {
		t.Fatalf("Export is not valid JSON: %v", err)
	}
	if exported.TradeCount != len(trades) {
		t.Errorf("Expected trade_count %d, got %d", len(trades), exported.TradeCount)
	}
	if exported.Summary.TotalTrades != len(trades) {
		t.Errorf("Expected summary total %d, got %d", len(trades), exported.Summary.TotalTrades)
	}

	t.Logf("Exported JSON to: %s (size: %d bytes)", outputPath, len(content))
}

func TestTradeExportFilters(t *testing.T) {
	logger := zap.NewNop()
	exporter := NewTradeExporter(logger)
	tempDir := t.TempDir()

	trades := generateTestTrades()

	// Type filter keeps only arbitrage trades
	options := ExportOptions{
		Format:     FormatJSON,
		TypeFilter: engine.TradeArbitrage,
		OutputDir:  tempDir,
	}

	outputPath, err := exporter.ExportTrades(trades, options)
	if err != nil {
		t.Fatalf("Failed to export with type filter: %v", err)
	}

	var exported struct {
		TradeCount int `json:"trade_count"`
	}
	content, _ := os.ReadFile(outputPath)
	if err := json.Unmarshal(content, &exported); err != nil {
		t.Fatalf("Export is not valid JSON: %v", err)
	}
	if exported.TradeCount != 2 {
		t.Errorf("Expected 2 arbitrage trades, got %d", exported.TradeCount)
	}

	// Profit filter drops losses
	options = ExportOptions{
		Format:         FormatJSON,
		OnlyProfitable: true,
		OutputDir:      tempDir,
	}

	outputPath, err = exporter.ExportTrades(trades, options)
	if err != nil {
		t.Fatalf("Failed to export with profit filter: %v", err)
	}
	content, _ = os.ReadFile(outputPath)
	if err := json.Unmarshal(content, &exported); err != nil {
		t.Fatalf("Export is not valid JSON: %v", err)
	}
	if exported.TradeCount != 3 {
		t.Errorf("Expected 3 profitable trades, got %d", exported.TradeCount)
	}

	// Time filter excludes everything before the window
	options = ExportOptions{
		Format:    FormatCSV,
		StartTime: time.Now().Add(-25 * time.Minute),
		OutputDir: tempDir,
	}

	outputPath, err = exporter.ExportTrades(trades, options)
	if err != nil {
		t.Fatalf("Failed to export with time filter: %v", err)
	}
	t.Logf("Time filtered export: %s", outputPath)

	// No matches is an error, not an empty file
	options = ExportOptions{
		Format:     FormatCSV,
		TypeFilter: engine.TradeEmergencyStop,
		OutputDir:  tempDir,
	}
	if _, err := exporter.ExportTrades(trades, options); err == nil {
		t.Error("Expected error when no trades match the criteria")
	}
}

func TestSnapshotExport(t *testing.T) {
	logger := zap.NewNop()
	exporter := NewTradeExporter(logger)
	tempDir := t.TempDir()

	snap := dashboard.Snapshot{
		Status: &engine.EngineStatus{
			IsRunning:     true,
			WalletAddress: "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU",
		},
		Trades:       generateTestTrades(),
		ProfitSeries: []float64{0.1, 0.3, 0.25},
	}

	outputPath, err := exporter.ExportSnapshot(snap, tempDir)
	if err != nil {
		t.Fatalf("Failed to export snapshot: %v", err)
	}

	content, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to read snapshot file: %v", err)
	}

	var exported struct {
		ExportTime time.Time `json:"export_time"`
		Snapshot   struct {
			Status *engine.EngineStatus `json:"Status"`
		} `json:"snapshot"`
	}
	if err := json.Unmarshal(content, &exported); err != nil {
		t.Fatalf("Snapshot export is not valid JSON: %v", err)
	}
	if exported.ExportTime.IsZero() {
		t.Error("Expected export_time to be set")
	}
	if exported.Snapshot.Status == nil || !exported.Snapshot.Status.IsRunning {
		t.Error("Expected engine status in snapshot export")
	}
}

func TestDailyReportExport(t *testing.T) {
	logger := zap.NewNop()
	exporter := NewTradeExporter(logger)
	tempDir := t.TempDir()

	// Pin trades to fixed hours of the report day so the test does not
	// depend on when it runs.
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	trades := []engine.Trade{
		{
			ID:        "t1",
			Type:      engine.TradeArbitrage,
			Token:     "BONK",
			Profit:    0.5,
			Timestamp: engine.APITime{Time: day.Add(9 * time.Hour)},
		},
		{
			ID:        "t2",
			Type:      engine.TradeArbitrage,
			Token:     "WIF",
			Profit:    -0.1,
			Timestamp: engine.APITime{Time: day.Add(9*time.Hour + 30*time.Minute)},
		},
		{
			ID:        "t3",
			Type:      engine.TradeTokenSnipe,
			Token:     "MEW",
			Profit:    0.2,
			Timestamp: engine.APITime{Time: day.Add(15 * time.Hour)},
		},
	}

	outputPath, err := exporter.ExportDailyReport(trades, day, tempDir)
	if err != nil {
		t.Fatalf("Failed to export daily report: %v", err)
	}

	if outputPath == "" {
		t.Fatal("Expected a report path for the day's trades")
	}

	content, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to read daily report: %v", err)
	}

	var report DailyReport
	if err := json.Unmarshal(content, &report); err != nil {
		t.Fatalf("Daily report is not valid JSON: %v", err)
	}
	if report.TradeCount != 3 {
		t.Errorf("Expected 3 trades in report, got %d", report.TradeCount)
	}
	if len(report.HourlyBreakdown) != 2 {
		t.Fatalf("Expected 2 hourly buckets, got %d", len(report.HourlyBreakdown))
	}
	if report.HourlyBreakdown[0].Hour != 9 || report.HourlyBreakdown[0].TradeCount != 2 {
		t.Errorf("Unexpected first hourly bucket: %+v", report.HourlyBreakdown[0])
	}

	t.Logf("Daily report exported to: %s", outputPath)
}

func TestExportSummaryCalculation(t *testing.T) {
	logger := zap.NewNop()
	exporter := NewTradeExporter(logger)

	now := time.Now()
	trades := []engine.Trade{
		{
			ID:        "t1",
			Type:      engine.TradeArbitrage,
			Token:     "BONK",
			Profit:    0.5,
			Timestamp: engine.APITime{Time: now.Add(-2 * time.Hour)},
		},
		{
			ID:        "t2",
			Type:      engine.TradeTokenSnipe,
			Token:     "WIF",
			Profit:    -0.2,
			Timestamp: engine.APITime{Time: now.Add(-time.Hour)},
		},
		{
			ID:        "t3",
			Type:      engine.TradeArbitrage,
			Token:     "BONK",
			Profit:    0.3,
			Timestamp: engine.APITime{Time: now},
		},
	}

	summary := exporter.calculateSummary(trades)

	if summary.TotalTrades != 3 {
		t.Errorf("Expected 3 total trades, got %d", summary.TotalTrades)
	}
	if summary.ArbitrageCount != 2 || summary.SnipeCount != 1 {
		t.Errorf("Expected 2 arbitrage and 1 snipe, got %d and %d",
			summary.ArbitrageCount, summary.SnipeCount)
	}
	if summary.UniqueTokens != 2 {
		t.Errorf("Expected 2 unique tokens, got %d", summary.UniqueTokens)
	}

	wantProfit := 0.5 - 0.2 + 0.3
	if diff := summary.TotalProfit - wantProfit; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Expected total profit %.2f, got %.2f", wantProfit, summary.TotalProfit)
	}
	if summary.WinCount != 2 || summary.LossCount != 1 {
		t.Errorf("Expected 2 wins and 1 loss, got %d and %d", summary.WinCount, summary.LossCount)
	}
	if summary.BestTrade != 0.5 {
		t.Errorf("Expected best trade 0.5, got %.2f", summary.BestTrade)
	}
	if summary.WorstTrade != 0.2 {
		t.Errorf("Expected worst trade 0.2, got %.2f", summary.WorstTrade)
	}

	t.Logf("Export summary: %+v", summary)
}

func TestFilenameGeneration(t *testing.T) {
	logger := zap.NewNop()
	exporter := NewTradeExporter(logger)

	tests := []struct {
		options  ExportOptions
		expected string
	}{
		{
			options: ExportOptions{
				Format: FormatCSV,
			},
			expected: "trades_all",
		},
		{
			options: ExportOptions{
				Format:     FormatJSON,
				TypeFilter: engine.TradeArbitrage,
			},
			expected: "trades_arbitrage",
		},
		{
			options: ExportOptions{
				Format:         FormatCSV,
				TypeFilter:     engine.TradeTokenSnipe,
				OnlyProfitable: true,
			},
			expected: "trades_token_snipe_profitable",
		},
	}

	for _, tt := range tests {
		filename := exporter.generateFilename(tt.options)
		if !strings.HasPrefix(filename, tt.expected) {
			t.Errorf("Expected filename to start with %s, got %s", tt.expected, filename)
		}

		expectedExt := "." + string(tt.options.Format)
		if !strings.HasSuffix(filename, expectedExt) {
			t.Errorf("Expected filename to end with %s, got %s", expectedExt, filename)
		}
	}
}

// Helper function to generate test trades
func generateTestTrades() []engine.Trade {
	now := time.Now()
	return []engine.Trade{
		{
			ID:        "trade1",
			Type:      engine.TradeArbitrage,
			Token:     "BONK",
			Profit:    0.042,
			Timestamp: engine.APITime{Time: now.Add(-time.Hour)},
			Details: engine.ArbitrageDetails{
				BuyDex:           "Raydium",
				SellDex:          "Orca",
				BuyPrice:         0.00001205,
				SellPrice:        0.00001262,
				ProfitPercentage: 4.7,
			},
		},
		{
			ID:        "trade2",
			Type:      engine.TradeTokenSnipe,
			Token:     "WIF",
			Profit:    -0.015,
			Timestamp: engine.APITime{Time: now.Add(-45 * time.Minute)},
			Details: engine.SnipeDetails{
				MintAddress:  "EKpQGSJtjMFqKZ9KQanSqYXRcF8fBopzLHYxdM65zcjm",
				InitialPrice: 0.00000088,
				RiskScore:    6.5,
			},
		},
		{
			ID:        "trade3",
			Type:      engine.TradeArbitrage,
			Token:     "POPCAT",
			Profit:    0.088,
			Timestamp: engine.APITime{Time: now.Add(-30 * time.Minute)},
			Details: engine.ArbitrageDetails{
				BuyDex:           "Meteora",
				SellDex:          "Raydium",
				ProfitPercentage: 2.1,
			},
		},
		{
			ID:        "trade4",
			Type:      engine.TradeSandwich,
			Token:     "MEW",
			Profit:    0.012,
			Timestamp: engine.APITime{Time: now.Add(-10 * time.Minute)},
		},
	}
}
