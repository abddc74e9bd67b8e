// Package marketserver wires the daemon: configuration, local wallet,
// ledger gateway, client core and the JSON-RPC transport.
package marketserver

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/vismaygawai/marketplace/internal/adapters/rpc"
	"github.com/vismaygawai/marketplace/internal/bootstrap/marketconfig"
	"github.com/vismaygawai/marketplace/internal/ledger"
	"github.com/vismaygawai/marketplace/internal/market"
	"github.com/vismaygawai/marketplace/internal/wallet"
)

// Server owns the composed daemon and its lifecycle.
type Server struct {
	core     *market.Service
	rpc      *rpc.Server
	contract *ledger.Contract
}

// NewServerWithOptions builds a daemon from configuration plus CLI
// overrides. It connects to the ledger endpoint eagerly so a bad
// endpoint or contract address fails at startup, not on first use.
func NewServerWithOptions(ctx context.Context, rpcAddr, configPath, dataDir string, log *slog.Logger) (*Server, error) {
	if log == nil {
		log = slog.Default()
	}
	cfg := marketconfig.LoadFromPath(configPath)
	if rpcAddr != "" {
		cfg.RPCAddr = rpcAddr
	}
	if cfg.WalletDir == "" {
		if dataDir == "" {
			dataDir = "data"
		}
		cfg.WalletDir = filepath.Join(dataDir, "wallet")
	}
	if cfg.ContractAddress == "" {
		return nil, errors.New("marketplace contract address is not configured")
	}

	w := wallet.Open(cfg.WalletDir)
	contract, err := ledger.Dial(ctx, cfg.LedgerEndpoint, cfg.ContractAddress, w, log)
	if err != nil {
		return nil, err
	}
	core := market.New(market.Options{
		Gateway:  contract,
		Provider: w,
		Logger:   log,
	})
	srv, err := rpc.NewServer(cfg.RPCAddr, core, w, log)
	if err != nil {
		contract.Close()
		return nil, err
	}
	return &Server{core: core, rpc: srv, contract: contract}, nil
}

// Run starts the client core, serves RPC until ctx is cancelled and
// tears everything down in reverse order.
func (s *Server) Run(ctx context.Context) error {
	if err := s.core.Start(ctx); err != nil {
		return err
	}
	defer s.contract.Close()
	defer s.core.Stop()
	return s.rpc.Run(ctx)
}
