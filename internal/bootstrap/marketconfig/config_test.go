package marketconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromPathMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(
		"ledger:\n" +
			"  endpoint: ws://ledger.internal:8546\n" +
			"  contractAddress: \"0x788ff72228dafb0eca5c8c6d8e2d3de1d7324c43\"\n" +
			"rpc:\n" +
			"  addr: 127.0.0.1:9000\n",
	)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := LoadFromPath(path)
	if cfg.LedgerEndpoint != "ws://ledger.internal:8546" {
		t.Fatalf("ledger endpoint not merged: %q", cfg.LedgerEndpoint)
	}
	if cfg.ContractAddress != "0x788ff72228dafb0eca5c8c6d8e2d3de1d7324c43" {
		t.Fatalf("contract address not merged: %q", cfg.ContractAddress)
	}
	if cfg.RPCAddr != "127.0.0.1:9000" {
		t.Fatalf("rpc addr not merged: %q", cfg.RPCAddr)
	}
	// Unset keys keep their defaults.
	if cfg.WalletDir != DefaultConfig().WalletDir {
		t.Fatalf("wallet dir changed without a source: %q", cfg.WalletDir)
	}
}

func TestLoadFromPathMissingFileKeepsDefaults(t *testing.T) {
	cfg := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml"))
	want := DefaultConfig()
	if cfg.LedgerEndpoint != want.LedgerEndpoint || cfg.RPCAddr != want.RPCAddr {
		t.Fatalf("defaults not preserved: %+v", cfg)
	}
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("ledger:\n  endpoint: ws://from-file:8546\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("MARKET_LEDGER_ENDPOINT", "ws://from-env:8546")
	t.Setenv("MARKET_CONTRACT_ADDRESS", "0x0000000000000000000000000000000000000001")
	t.Setenv("MARKET_WALLET_DIR", "/var/lib/marketd/wallet")

	cfg := LoadFromPath(path)
	if cfg.LedgerEndpoint != "ws://from-env:8546" {
		t.Fatalf("env did not override file: %q", cfg.LedgerEndpoint)
	}
	if cfg.ContractAddress != "0x0000000000000000000000000000000000000001" {
		t.Fatalf("env contract address not applied: %q", cfg.ContractAddress)
	}
	if cfg.WalletDir != "/var/lib/marketd/wallet" {
		t.Fatalf("env wallet dir not applied: %q", cfg.WalletDir)
	}
}

func TestMergeIgnoresEmptyFields(t *testing.T) {
	cfg := DefaultConfig()
	Merge(&cfg, File{})
	want := DefaultConfig()
	if cfg != want {
		t.Fatalf("merge of empty file changed config: %+v", cfg)
	}
}
