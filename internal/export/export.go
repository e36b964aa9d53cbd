package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/solmev/mevdash/internal/dashboard"
	"github.com/solmev/mevdash/internal/engine"
	"go.uber.org/zap"
)

// ExportFormat represents the export file format
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

// ExportOptions configures the export behavior
type ExportOptions struct {
	Format         ExportFormat
	StartTime      time.Time
	EndTime        time.Time
	TypeFilter     engine.TradeType // Filter by trade type
	OnlyProfitable bool             // Only export trades with positive profit
	OutputDir      string
}

// TradeExporter writes the trade window and dashboard snapshots to disk.
type TradeExporter struct {
	logger *zap.Logger
}

// NewTradeExporter creates a new trade exporter
func NewTradeExporter(logger *zap.Logger) *TradeExporter {
	return &TradeExporter{
		logger: logger.Named("export"),
	}
}

// ExportTrades exports trades based on the provided options
func (te *TradeExporter) ExportTrades(trades []engine.Trade, options ExportOptions) (string, error) {
	filtered := te.filterTrades(trades, options)

	if len(filtered) == 0 {
		return "", fmt.Errorf("no trades match the export criteria")
	}

	// Sort by timestamp
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Timestamp.Before(filtered[j].Timestamp.Time)
	})

	filename := te.generateFilename(options)
	outputPath := filepath.Join(options.OutputDir, filename)

	if err := os.MkdirAll(options.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	var err error
	switch options.Format {
	case FormatCSV:
		err = te.exportToCSV(filtered, outputPath)
	case FormatJSON:
		err = te.exportToJSON(filtered, outputPath)
	default:
		err = fmt.Errorf("unsupported format: %s", options.Format)
	}

	if err != nil {
		return "", err
	}

	te.logger.Info("Trades exported",
		zap.String("file", outputPath),
		zap.Int("count", len(filtered)),
		zap.String("format", string(options.Format)))

	return outputPath, nil
}

// ExportSnapshot writes the full dashboard state as an indented JSON
// document, timestamped so repeated exports never clobber each other.
func (te *TradeExporter) ExportSnapshot(snap dashboard.Snapshot, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := fmt.Sprintf("snapshot_%s.json", time.Now().Format("20060102_150405"))
	outputPath := filepath.Join(outputDir, filename)

	file, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	exportData := struct {
		ExportTime time.Time          `json:"export_time"`
		Snapshot   dashboard.Snapshot `json:"snapshot"`
	}{
		ExportTime: time.Now(),
		Snapshot:   snap,
	}

	if err := encoder.Encode(exportData); err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	te.logger.Info("Snapshot exported",
		zap.String("file", outputPath),
		zap.Int("trades", len(snap.Trades)),
		zap.Int("opportunities", len(snap.Opportunities)))

	return outputPath, nil
}

// filterTrades applies filters to the trade list
func (te *TradeExporter) filterTrades(trades []engine.Trade, options ExportOptions) []engine.Trade {
	var filtered []engine.Trade

	for _, trade := range trades {
		// Time filter
		if !options.StartTime.IsZero() && trade.Timestamp.Before(options.StartTime) {
			continue
		}
		if !options.EndTime.IsZero() && trade.Timestamp.After(options.EndTime) {
			continue
		}

		// Type filter
		if options.TypeFilter != "" && trade.Type != options.TypeFilter {
			continue
		}

		// Profit filter
		if options.OnlyProfitable && trade.Profit <= 0 {
			continue
		}

		filtered = append(filtered, trade)
	}

	return filtered
}

// generateFilename creates a filename based on export options
func (te *TradeExporter) generateFilename(options ExportOptions) string {
	timestamp := time.Now().Format("20060102_150405")

	var prefix string
	if options.TypeFilter != "" {
		prefix = fmt.Sprintf("trades_%s", options.TypeFilter)
	} else {
		prefix = "trades_all"
	}

	if options.OnlyProfitable {
		prefix += "_profitable"
	}

	return fmt.Sprintf("%s_%s.%s", prefix, timestamp, options.Format)
}

// exportToCSV exports trades to CSV format
func (te *TradeExporter) exportToCSV(trades []engine.Trade, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(tradeCSVHeaders()); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, trade := range trades {
		if err := writer.Write(tradeCSVRow(trade)); err != nil {
			return fmt.Errorf("failed to write trade: %w", err)
		}
	}

	return nil
}

// exportToJSON exports trades to JSON format
func (te *TradeExporter) exportToJSON(trades []engine.Trade, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	exportData := struct {
		ExportTime time.Time      `json:"export_time"`
		TradeCount int            `json:"trade_count"`
		Trades     []engine.Trade `json:"trades"`
		Summary    ExportSummary  `json:"summary"`
	}{
		ExportTime: time.Now(),
		TradeCount: len(trades),
		Trades:     trades,
		Summary:    te.calculateSummary(trades),
	}

	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

// calculateSummary calculates summary statistics for the export
func (te *TradeExporter) calculateSummary(trades []engine.Trade) ExportSummary {
	summary := ExportSummary{
		TotalTrades: len(trades),
	}

	if len(trades) == 0 {
		return summary
	}

	summary.StartDate = trades[0].Timestamp.Time
	summary.EndDate = trades[len(trades)-1].Timestamp.Time

	tokenSet := make(map[string]bool)

	for _, trade := range trades {
		tokenSet[trade.Token] = true
		summary.TotalProfit += trade.Profit

		if trade.Profit > 0 {
			summary.WinCount++
			if trade.Profit > summary.BestTrade {
				summary.BestTrade = trade.Profit
			}
		} else if trade.Profit < 0 {
			summary.LossCount++
			if loss := -trade.Profit; loss > summary.WorstTrade {
				summary.WorstTrade = loss
			}
		}

		switch trade.Type {
		case engine.TradeArbitrage:
			summary.ArbitrageCount++
		case engine.TradeTokenSnipe:
			summary.SnipeCount++
		case engine.TradeSandwich:
			summary.SandwichCount++
		default:
			summary.OtherCount++
		}
	}

	summary.UniqueTokens = len(tokenSet)
	summary.WinRate = float64(summary.WinCount) / float64(len(trades)) * 100
	summary.AvgProfit = summary.TotalProfit / float64(len(trades))

	return summary
}

// ExportSummary contains summary statistics for exported trades
type ExportSummary struct {
	TotalTrades    int       `json:"total_trades"`
	ArbitrageCount int       `json:"arbitrage_count"`
	SnipeCount     int       `json:"snipe_count"`
	SandwichCount  int       `json:"sandwich_count"`
	OtherCount     int       `json:"other_count"`
	UniqueTokens   int       `json:"unique_tokens"`
	TotalProfit    float64   `json:"total_profit"`
	AvgProfit      float64   `json:"avg_profit"`
	WinCount       int       `json:"win_count"`
	LossCount      int       `json:"loss_count"`
	WinRate        float64   `json:"win_rate"`
	BestTrade      float64   `json:"best_trade"`
	WorstTrade     float64   `json:"worst_trade"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
}

// ExportDailyReport exports a daily summary report
func (te *TradeExporter) ExportDailyReport(trades []engine.Trade, date time.Time, outputDir string) (string, error) {
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	options := ExportOptions{
		Format:    FormatJSON,
		StartTime: startOfDay,
		EndTime:   endOfDay,
		OutputDir: outputDir,
	}

	filename := fmt.Sprintf("daily_report_%s.json", startOfDay.Format("20060102"))
	outputPath := filepath.Join(outputDir, filename)

	filtered := te.filterTrades(trades, options)

	if len(filtered) == 0 {
		te.logger.Info("No trades for daily report",
			zap.Time("date", startOfDay))
		return "", nil
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	report := DailyReport{
		Date:            startOfDay,
		TradeCount:      len(filtered),
		Trades:          filtered,
		Summary:         te.calculateSummary(filtered),
		HourlyBreakdown: te.calculateHourlyBreakdown(filtered),
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(report); err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	te.logger.Info("Daily report exported",
		zap.String("file", outputPath),
		zap.Time("date", startOfDay),
		zap.Int("trades", len(filtered)))

	return outputPath, nil
}

// DailyReport represents a daily trading report
type DailyReport struct {
	Date            time.Time      `json:"date"`
	TradeCount      int            `json:"trade_count"`
	Summary         ExportSummary  `json:"summary"`
	HourlyBreakdown []HourlyStats  `json:"hourly_breakdown"`
	Trades          []engine.Trade `json:"trades"`
}

// HourlyStats represents trading statistics for an hour
type HourlyStats struct {
	Hour       int     `json:"hour"`
	TradeCount int     `json:"trade_count"`
	WinCount   int     `json:"win_count"`
	Profit     float64 `json:"profit"`
}

// calculateHourlyBreakdown calculates hourly trading statistics
func (te *TradeExporter) calculateHourlyBreakdown(trades []engine.Trade) []HourlyStats {
	hourlyMap := make(map[int]*HourlyStats)

	for _, trade := range trades {
		hour := trade.Timestamp.Hour()

		stats, exists := hourlyMap[hour]
		if !exists {
			stats = &HourlyStats{Hour: hour}
			hourlyMap[hour] = stats
		}

		stats.TradeCount++
		stats.Profit += trade.Profit
		if trade.Profit > 0 {
			stats.WinCount++
		}
	}

	var breakdown []HourlyStats
	for hour := 0; hour < 24; hour++ {
		if stats, exists := hourlyMap[hour]; exists {
			breakdown = append(breakdown, *stats)
		}
	}

	return breakdown
}

func tradeCSVHeaders() []string {
	return []string{"timestamp", "id", "type", "token", "profit_sol", "details"}
}

func tradeCSVRow(trade engine.Trade) []string {
	return []string{
		trade.Timestamp.Format(time.RFC3339),
		trade.ID,
		string(trade.Type),
		trade.Token,
		strconv.FormatFloat(trade.Profit, 'f', -1, 64),
		detailsColumn(trade.Details),
	}
}

// detailsColumn flattens the per-type details payload into one readable cell.
func detailsColumn(details engine.TradeDetails) string {
	switch d := details.(type) {
	case engine.ArbitrageDetails:
		return fmt.Sprintf("%s->%s %.2f%%", d.BuyDex, d.SellDex, d.ProfitPercentage)
	case engine.SnipeDetails:
		return fmt.Sprintf("mint=%s risk=%.1f", d.MintAddress, d.RiskScore)
	case engine.EmergencyStopDetails:
		return fmt.Sprintf("reason=%s", d.Reason)
	case engine.GenericDetails:
		if len(d) == 0 {
			return ""
		}
		data, err := json.Marshal(d)
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return ""
	}
}
