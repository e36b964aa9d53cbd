package config

import (
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Config is the dashboard's own configuration. Trading parameters are not
// here: those live in the engine and are edited through its config endpoint.
type Config struct {
	EngineURL      string `mapstructure:"engine_url"`
	RequestTimeout int    `mapstructure:"request_timeout"` // ms
	PollInterval   int    `mapstructure:"poll_interval"`   // ms
	TradeLimit     int    `mapstructure:"trade_limit"`

	License      string `mapstructure:"license"`
	DebugLogging bool   `mapstructure:"debug_logging"`
	LogFile      string `mapstructure:"log_file"`
	ExportDir    string `mapstructure:"export_dir"`

	// Setup form prefills, all optional.
	WalletAddress      string `mapstructure:"wallet_address"`
	RPCEndpoint        string `mapstructure:"rpc_endpoint"`
	PrivateRPCEndpoint string `mapstructure:"private_rpc_endpoint"`

	// Opportunity alert thresholds, zero disables.
	AlertMicroNetProfit float64 `mapstructure:"alert_micro_net_profit"`
	AlertPumpfunRisk    float64 `mapstructure:"alert_pumpfun_risk"`
}

const (
	DefaultEngineURL      = "http://127.0.0.1:8000"
	DefaultRequestTimeout = 10000
	DefaultPollInterval   = 5000
	DefaultTradeLimit     = 20
	DefaultLogFile        = "logs/mevdash.log"
	DefaultExportDir      = "exports"
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"engine_url":      DefaultEngineURL,
		"request_timeout": DefaultRequestTimeout,
		"poll_interval":   DefaultPollInterval,
		"trade_limit":     DefaultTradeLimit,
		"log_file":        DefaultLogFile,
		"export_dir":      DefaultExportDir,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if cfg.EngineURL == "" {
		return errors.New("missing engine_url in configuration")
	}
	if err := validateURLWithCache(cfg.EngineURL, "http"); err != nil {
		return errors.New("invalid engine URL protocol")
	}
	if cfg.RPCEndpoint != "" {
		if err := validateURLWithCache(cfg.RPCEndpoint, "http"); err != nil {
			return errors.New("invalid RPC URL protocol")
		}
	}
	if cfg.PrivateRPCEndpoint != "" {
		if err := validateURLWithCache(cfg.PrivateRPCEndpoint, "http"); err != nil {
			return errors.New("invalid private RPC URL protocol")
		}
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.RequestTimeout <= 0 {
		return errors.New("invalid request_timeout")
	}
	if cfg.PollInterval <= 0 {
		return errors.New("invalid poll_interval")
	}
	if cfg.TradeLimit <= 0 {
		return errors.New("invalid trade_limit")
	}
	if cfg.AlertMicroNetProfit < 0 {
		return errors.New("invalid alert_micro_net_profit")
	}
	if cfg.AlertPumpfunRisk < 0 {
		return errors.New("invalid alert_pumpfun_risk")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix("MEVDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if envURL := v.GetString("ENGINE_URL"); envURL != "" {
		cfg.EngineURL = envURL
	}
	if envLicense := v.GetString("LICENSE"); envLicense != "" {
		cfg.License = envLicense
	}
	if envWallet := v.GetString("WALLET_ADDRESS"); envWallet != "" {
		cfg.WalletAddress = envWallet
	}
	return nil
}
