package config

import (
	"os"
	"path/filepath"
	"testing"
)

var validConfigJSON = `{
    "engine_url": "http://127.0.0.1:8000",
    "request_timeout": 10000,
    "poll_interval": 5000,
    "trade_limit": 20,
    "license": "test-license-key",
    "debug_logging": true,
    "wallet_address": "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU",
    "alert_micro_net_profit": 0.001,
    "alert_pumpfun_risk": 3.0
}`

var invalidConfigJSON = `{
    "engine_url": "",
    "poll_interval": -1
}`

func setupTestConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return configPath
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		check   func(*Config) bool
	}{
		{
			name:    "Valid config",
			content: validConfigJSON,
			wantErr: false,
			check: func(cfg *Config) bool {
				return cfg.EngineURL == "http://127.0.0.1:8000" &&
					cfg.License == "test-license-key" &&
					cfg.PollInterval == 5000 &&
					cfg.AlertMicroNetProfit == 0.001
			},
		},
		{
			name:    "Invalid config - bad poll interval",
			content: invalidConfigJSON,
			wantErr: true,
			check:   nil,
		},
		{
			name:    "Invalid JSON syntax",
			content: "{invalid json",
			wantErr: true,
			check:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := setupTestConfig(t, tt.content)

			cfg, err := LoadConfig(configPath)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadConfig() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && tt.check != nil {
				if !tt.check(cfg) {
					t.Error("LoadConfig() returned invalid configuration")
				}
			}
		})
	}
}

func TestValidateConfig(t *testing.T) {
	valid := Config{
		EngineURL:      "http://localhost:8000",
		RequestTimeout: 10000,
		PollInterval:   5000,
		TradeLimit:     20,
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "Valid configuration",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "Missing engine URL",
			mutate:  func(cfg *Config) { cfg.EngineURL = "" },
			wantErr: "missing engine_url in configuration",
		},
		{
			name:    "Engine URL without http scheme",
			mutate:  func(cfg *Config) { cfg.EngineURL = "ws://localhost:8000" },
			wantErr: "invalid engine URL protocol",
		},
		{
			name:    "Invalid poll interval",
			mutate:  func(cfg *Config) { cfg.PollInterval = 0 },
			wantErr: "invalid poll_interval",
		},
		{
			name:    "Invalid trade limit",
			mutate:  func(cfg *Config) { cfg.TradeLimit = -5 },
			wantErr: "invalid trade_limit",
		},
		{
			name:    "Negative alert threshold",
			mutate:  func(cfg *Config) { cfg.AlertMicroNetProfit = -0.1 },
			wantErr: "invalid alert_micro_net_profit",
		},
		{
			name:    "Invalid RPC prefill",
			mutate:  func(cfg *Config) { cfg.RPCEndpoint = "not-a-url" },
			wantErr: "invalid RPC URL protocol",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := validateConfig(&cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("validateConfig() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Error("Expected error but got nil")
				return
			}
			if err.Error() != tt.wantErr {
				t.Errorf("Expected error '%s', got '%s'", tt.wantErr, err.Error())
			}
		})
	}
}

func TestLoadConfigEnvironmentVariables(t *testing.T) {
	t.Setenv("MEVDASH_ENGINE_URL", "http://engine.internal:9000")
	t.Setenv("MEVDASH_LICENSE", "env-license-key")

	configJSON := `{
        "engine_url": "http://127.0.0.1:8000",
        "license": ""
    }`

	configPath := setupTestConfig(t, configJSON)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.EngineURL != "http://engine.internal:9000" {
		t.Errorf("Expected engine URL from env var, got %s", cfg.EngineURL)
	}
	if cfg.License != "env-license-key" {
		t.Errorf("Expected license from env var, got %s", cfg.License)
	}
}

func TestLoadConfigWithDefaults(t *testing.T) {
	configJSON := `{
		"engine_url": "http://127.0.0.1:8000"
	}`

	configPath := setupTestConfig(t, configJSON)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.PollInterval != DefaultPollInterval {
		t.Errorf("Expected default PollInterval %d, got %d", DefaultPollInterval, cfg.PollInterval)
	}
	if cfg.TradeLimit != DefaultTradeLimit {
		t.Errorf("Expected default TradeLimit %d, got %d", DefaultTradeLimit, cfg.TradeLimit)
	}
	if cfg.RequestTimeout != DefaultRequestTimeout {
		t.Errorf("Expected default RequestTimeout %d, got %d", DefaultRequestTimeout, cfg.RequestTimeout)
	}
	if cfg.LogFile != DefaultLogFile {
		t.Errorf("Expected default LogFile %s, got %s", DefaultLogFile, cfg.LogFile)
	}
}
