package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	RPC struct {
		HTTPURL string `yaml:"http_url"`
		WSURL   string `yaml:"ws_url"`
	} `yaml:"rpc"`
	Contract struct {
		Address string `yaml:"address"`
	} `yaml:"contract"`
	Network struct {
		ChainID          uint64 `yaml:"chain_id"`
		Name             string `yaml:"name"`
		ExplorerURL      string `yaml:"explorer_url"`
		CurrencyName     string `yaml:"currency_name"`
		CurrencySymbol   string `yaml:"currency_symbol"`
		CurrencyDecimals int    `yaml:"currency_decimals"`
	} `yaml:"network"`
	Schedule struct {
		PollEvery string `yaml:"poll_every"`
		FeedEvery string `yaml:"feed_every"`
	} `yaml:"schedule"`
	Feed struct {
		WindowBlocks uint64 `yaml:"window_blocks"`
		MaxEntries   int    `yaml:"max_entries"`
	} `yaml:"feed"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Wallet struct {
		PrivateKey string `yaml:"private_key"`
	} `yaml:"wallet"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("RPC_HTTP_URL"); v != "" {
		cfg.RPC.HTTPURL = v
	}
	if v := os.Getenv("RPC_WS_URL"); v != "" {
		cfg.RPC.WSURL = v
	}
	if v := os.Getenv("CONTRACT_ADDRESS"); v != "" {
		cfg.Contract.Address = v
	}
	if v := os.Getenv("TARGET_CHAIN_ID"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Network.ChainID = id
		}
	}
	if v := os.Getenv("POLL_EVERY"); v != "" {
		cfg.Schedule.PollEvery = v
	}
	if v := os.Getenv("FEED_EVERY"); v != "" {
		cfg.Schedule.FeedEvery = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("PRIVATE_KEY"); v != "" {
		cfg.Wallet.PrivateKey = v
	}

	// Defaults
	if cfg.RPC.HTTPURL == "" {
		cfg.RPC.HTTPURL = "https://arb1.arbitrum.io/rpc"
	}
	if cfg.RPC.WSURL == "" {
		cfg.RPC.WSURL = "wss://arb1.arbitrum.io/ws"
	}
	if cfg.Contract.Address == "" {
		cfg.Contract.Address = "0xbf2CfD0c6b0A96e84ED1Ae5630BE0Fbdd1E2A763"
	}
	if cfg.Network.ChainID == 0 {
		cfg.Network.ChainID = 42161
	}
	if cfg.Network.Name == "" {
		cfg.Network.Name = "Arbitrum One"
	}
	if cfg.Network.ExplorerURL == "" {
		cfg.Network.ExplorerURL = "https://arbiscan.io"
	}
	if cfg.Network.CurrencyName == "" {
		cfg.Network.CurrencyName = "ETH"
	}
	if cfg.Network.CurrencySymbol == "" {
		cfg.Network.CurrencySymbol = "ETH"
	}
	if cfg.Network.CurrencyDecimals == 0 {
		cfg.Network.CurrencyDecimals = 18
	}
	if cfg.Schedule.PollEvery == "" {
		cfg.Schedule.PollEvery = "5s"
	}
	if cfg.Schedule.FeedEvery == "" {
		cfg.Schedule.FeedEvery = "10s"
	}
	if cfg.Feed.WindowBlocks == 0 {
		cfg.Feed.WindowBlocks = 5000
	}
	if cfg.Feed.MaxEntries == 0 {
		cfg.Feed.MaxEntries = 7
	}

	return cfg, nil
}

// Validate checks that all required fields are set and well-formed.
func (c *Config) Validate() error {
	if c.RPC.HTTPURL == "" {
		return fmt.Errorf("rpc.http_url is required")
	}
	if !strings.HasPrefix(c.Contract.Address, "0x") || len(c.Contract.Address) != 42 {
		return fmt.Errorf("contract.address must be a 0x-prefixed 20-byte address")
	}
	if c.Network.ChainID == 0 {
		return fmt.Errorf("network.chain_id is required")
	}
	if _, err := time.ParseDuration(c.Schedule.PollEvery); err != nil {
		return fmt.Errorf("schedule.poll_every: %w", err)
	}
	if _, err := time.ParseDuration(c.Schedule.FeedEvery); err != nil {
		return fmt.Errorf("schedule.feed_every: %w", err)
	}
	if c.Feed.MaxEntries < 1 {
		return fmt.Errorf("feed.max_entries must be positive")
	}
	return nil
}
