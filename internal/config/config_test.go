package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Network.ChainID != 42161 {
		t.Errorf("expected Arbitrum One default, got %d", cfg.Network.ChainID)
	}
	if cfg.Schedule.PollEvery != "5s" || cfg.Schedule.FeedEvery != "10s" {
		t.Errorf("wrong default cadence: %+v", cfg.Schedule)
	}
	if cfg.Feed.WindowBlocks != 5000 || cfg.Feed.MaxEntries != 7 {
		t.Errorf("wrong feed defaults: %+v", cfg.Feed)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("schedule:\n  poll_every: 1s\nnetwork:\n  chain_id: 5\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TARGET_CHAIN_ID", "42161")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Schedule.PollEvery != "1s" {
		t.Errorf("expected file value 1s, got %s", cfg.Schedule.PollEvery)
	}
	if cfg.Network.ChainID != 42161 {
		t.Errorf("expected env override 42161, got %d", cfg.Network.ChainID)
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cfg, _ := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	cfg.Contract.Address = "not-an-address"
	if err := cfg.Validate(); err == nil {
		t.Error("expected address validation error")
	}

	cfg, _ = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	cfg.Schedule.PollEvery = "soon"
	if err := cfg.Validate(); err == nil {
		t.Error("expected interval validation error")
	}
}
