package web

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vitos/crypto_trade_ema/internal/domain"
	"github.com/vitos/crypto_trade_ema/internal/usecase"
	"go.uber.org/zap"
)

// CycleSource exposes the most recent cycle summary.
type CycleSource interface {
	LastCycle() *usecase.CycleSummary
}

type Server struct {
	router  *http.ServeMux
	server  *http.Server
	journal domain.JournalRepository
	cycles  CycleSource
	logger  *zap.Logger
}

func NewServer(
	port int,
	journal domain.JournalRepository,
	cycles CycleSource,
	logger *zap.Logger,
) *Server {
	s := &Server{
		router:  http.NewServeMux(),
		journal: journal,
		cycles:  cycles,
		logger:  logger,
	}
	s.routes()
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.router,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.HandleFunc("GET /healthz", s.handleHealth)

	// Last cycle
	s.router.HandleFunc("GET /status", s.handleStatus)

	// Journal
	s.router.HandleFunc("GET /orders", s.handleListOrders)
	s.router.HandleFunc("GET /decisions", s.handleListDecisions)
	s.router.HandleFunc("GET /reports", s.handleListReports)

	s.router.Handle("GET /metrics", promhttp.Handler())
}

func (s *Server) Start() error {
	s.logger.Info("Starting web server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
