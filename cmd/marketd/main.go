package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vismaygawai/marketplace/internal/composition/marketserver"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	rpcAddr := flag.String("rpc-addr", "", "JSON-RPC listen address (overrides config)")
	configPath := flag.String("config", "", "Path to config.yaml (optional)")
	dataDir := flag.String("data-dir", "", "Directory for daemon local data (optional)")
	rpcToken := flag.String("rpc-token", "", "RPC token for Authorization/X-Market-RPC-Token (optional)")
	flag.Parse()
	if *showVersion {
		fmt.Printf("marketd version=%s commit=%s build_date=%s\n", version, commit, buildDate)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if *rpcToken != "" {
		_ = os.Setenv("MARKET_RPC_TOKEN", *rpcToken)
	}

	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(log)

	srv, err := marketserver.NewServerWithOptions(ctx, *rpcAddr, *configPath, *dataDir, log)
	if err != nil {
		log.Error("marketd failed to initialize", "err", err)
		os.Exit(1)
	}

	log.Info("marketd starting")
	if err := srv.Run(ctx); err != nil {
		log.Error("marketd failed", "err", err)
		os.Exit(1)
	}
	log.Info("marketd stopped")
}
