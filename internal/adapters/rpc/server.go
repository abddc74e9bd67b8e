// Package rpc exposes the marketplace client core to a local UI over
// JSON-RPC 2.0.
package rpc

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const DefaultRPCAddr = "127.0.0.1:8790"

type Server struct {
	httpServer   *http.Server
	service      MarketService
	wallet       WalletAdmin
	rpcToken     string
	requireRPC   bool
	limiter      *rateLimiter
	notices      *noticeLog
	noticeCancel func()
	log          *slog.Logger
}

// NewServer builds the HTTP surface: POST /rpc, /healthz and /metrics.
func NewServer(rpcAddr string, svc MarketService, admin WalletAdmin, log *slog.Logger) (*Server, error) {
	requireRPC := requiresRPCToken()
	rpcToken := strings.TrimSpace(os.Getenv("MARKET_RPC_TOKEN"))
	if requireRPC && rpcToken == "" {
		return nil, errors.New("MARKET_RPC_TOKEN is required unless MARKET_REQUIRE_RPC_TOKEN=false or MARKET_ENV is test/development/local")
	}
	if rpcAddr == "" {
		rpcAddr = DefaultRPCAddr
	}
	if log == nil {
		log = slog.Default()
	}

	mux := http.NewServeMux()
	s := &Server{
		httpServer: &http.Server{
			Addr:              rpcAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		service:    svc,
		wallet:     admin,
		rpcToken:   rpcToken,
		requireRPC: requireRPC,
		limiter:    newRateLimiter(loadRateLimitConfig()),
		notices:    newNoticeLog(),
		log:        log,
	}
	noticeCh, noticeCancel := svc.Notifications()
	s.noticeCancel = noticeCancel
	go s.notices.collect(noticeCh)
	if s.rpcToken == "" && !s.requireRPC {
		log.Warn("MARKET_RPC_TOKEN is not set; RPC auth disabled")
	}
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/rpc", s.handleRPC)
	mux.Handle("/metrics", promhttp.Handler())
	return s, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		err := s.httpServer.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
			return
		}
		errCh <- err
	}()

	select {
	case <-ctx.Done():
		s.noticeCancel()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	case err := <-errCh:
		s.noticeCancel()
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) authorizeRPC(w http.ResponseWriter, r *http.Request) bool {
	if s.rpcToken == "" {
		return true
	}
	if extractRPCToken(r) == s.rpcToken {
		return true
	}
	http.Error(w, "unauthorized", http.StatusUnauthorized)
	return false
}

func extractRPCToken(r *http.Request) string {
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(r.Header.Get("X-Market-RPC-Token"))
}

func requiresRPCToken() bool {
	if raw := strings.TrimSpace(os.Getenv("MARKET_REQUIRE_RPC_TOKEN")); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			return parsed
		}
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("MARKET_ENV"))) {
	case "test", "testing", "development", "local":
		return false
	}
	return true
}
