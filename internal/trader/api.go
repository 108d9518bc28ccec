package trader

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// APIServer provides a read-only HTTP interface for the running engine.
type APIServer struct {
	server *http.Server
	engine *Engine
	logger *zap.Logger
}

// NewAPIServer creates a new APIServer listening on the given port.
func NewAPIServer(engine *Engine, port int, logger *zap.Logger) *APIServer {
	mux := http.NewServeMux()
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	s := &APIServer{
		server: server,
		engine: engine,
		logger: logger.Named("api-server"),
	}
	mux.HandleFunc("/status", s.statusHandler)
	mux.HandleFunc("/health", s.healthHandler)
	return s
}

// Start runs the HTTP server in a new goroutine.
func (s *APIServer) Start() {
	s.logger.Info("Starting API server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			s.logger.Error("API server failed", zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *APIServer) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server...")
	return s.server.Shutdown(ctx)
}

type symbolStatus struct {
	TradesExecuted    int    `json:"trades_executed"`
	LastSkippedReason string `json:"last_skipped_reason,omitempty"`
	LastTradeClose    string `json:"last_trade_close,omitempty"`
}

func (s *APIServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	states := s.engine.States().Snapshot()
	symbols := make(map[string]symbolStatus, len(states))
	for sym, st := range states {
		ss := symbolStatus{
			TradesExecuted:    st.TradesExecuted,
			LastSkippedReason: st.LastSkippedReason,
		}
		if !st.LastTradeCloseTime.IsZero() {
			ss.LastTradeClose = st.LastTradeCloseTime.Format(time.RFC3339)
		}
		symbols[sym] = ss
	}

	status := struct {
		RunID     string                  `json:"run_id"`
		StartTime string                  `json:"start_time"`
		Uptime    string                  `json:"uptime"`
		Cycles    int64                   `json:"cycles"`
		Symbols   map[string]symbolStatus `json:"symbols"`
	}{
		RunID:     s.engine.RunID,
		StartTime: s.engine.StartTime.Format(time.RFC3339),
		Uptime:    time.Since(s.engine.StartTime).String(),
		Cycles:    s.engine.Cycles(),
		Symbols:   symbols,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		s.logger.Error("Failed to write status response", zap.Error(err))
		http.Error(w, "Failed to encode status", http.StatusInternalServerError)
	}
}

func (s *APIServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}
