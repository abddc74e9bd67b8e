// Package marketconfig loads daemon configuration from yaml with
// environment overrides layered on top.
package marketconfig

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LedgerEndpoint  string
	ContractAddress string
	WalletDir       string
	RPCAddr         string
}

func DefaultConfig() Config {
	return Config{
		LedgerEndpoint: "ws://127.0.0.1:8545",
		RPCAddr:        "127.0.0.1:8790",
	}
}

type File struct {
	Ledger FileLedger `yaml:"ledger"`
	Wallet FileWallet `yaml:"wallet"`
	RPC    FileRPC    `yaml:"rpc"`
}

type FileLedger struct {
	Endpoint        string `yaml:"endpoint"`
	ContractAddress string `yaml:"contractAddress"`
}

type FileWallet struct {
	Dir string `yaml:"dir"`
}

type FileRPC struct {
	Addr string `yaml:"addr"`
}

// LoadFromPath merges defaults, the first readable candidate file and
// environment overrides, in that order.
func LoadFromPath(configPath string) Config {
	cfg := DefaultConfig()

	candidates := make([]string, 0, 2)
	if configPath != "" {
		candidates = append(candidates, configPath)
	} else {
		candidates = append(candidates, "configs/config.yaml")
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var parsed File
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			continue
		}
		merged := cfg
		Merge(&merged, parsed)
		ApplyEnvOverrides(&merged)
		return merged
	}

	ApplyEnvOverrides(&cfg)
	return cfg
}

func Merge(dst *Config, src File) {
	if src.Ledger.Endpoint != "" {
		dst.LedgerEndpoint = src.Ledger.Endpoint
	}
	if src.Ledger.ContractAddress != "" {
		dst.ContractAddress = src.Ledger.ContractAddress
	}
	if src.Wallet.Dir != "" {
		dst.WalletDir = src.Wallet.Dir
	}
	if src.RPC.Addr != "" {
		dst.RPCAddr = src.RPC.Addr
	}
}

func ApplyEnvOverrides(cfg *Config) {
	if endpoint := strings.TrimSpace(os.Getenv("MARKET_LEDGER_ENDPOINT")); endpoint != "" {
		cfg.LedgerEndpoint = endpoint
	}
	if address := strings.TrimSpace(os.Getenv("MARKET_CONTRACT_ADDRESS")); address != "" {
		cfg.ContractAddress = address
	}
	if dir := strings.TrimSpace(os.Getenv("MARKET_WALLET_DIR")); dir != "" {
		cfg.WalletDir = dir
	}
}
